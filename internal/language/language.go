package language

import (
	"path"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var localeSuffixes = []string{"-pocket", "_pocket"}

// Normalize folds case and separators of a locale code for comparison (en_us
// and EN-US both become en-US). Tags are parsed without canonicalization, so
// deprecated codes stay distinct: tl_PH does not become fil-PH. Codes the tag
// parser rejects fall back to lower case with hyphen separators.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	hyphenated := strings.ReplaceAll(code, "_", "-")
	tag, err := language.Raw.Parse(hyphenated)
	if err != nil || tag == language.Und {
		return strings.ToLower(hyphenated)
	}
	return tag.String()
}

// LocaleFromPath derives the locale code embedded in a relative output path.
// The directory part and the .lang/.json extension are dropped, as is the
// -pocket suffix some packages carry.
func LocaleFromPath(rel string) string {
	base := path.Base(strings.ReplaceAll(rel, "\\", "/"))
	for _, ext := range []string{".lang", ".json"} {
		if strings.HasSuffix(base, ext) {
			base = strings.TrimSuffix(base, ext)
			break
		}
	}
	for _, suffix := range localeSuffixes {
		base = strings.TrimSuffix(base, suffix)
	}
	return base
}

// DisplayName returns the English name of a locale code, or the code itself
// when the tag is unknown.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	tag, err := language.Parse(strings.ReplaceAll(trimmed, "_", "-"))
	if err != nil {
		return trimmed
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return trimmed
}

// NormalizeList deduplicates and normalizes a list of locale codes, keeping
// the first occurrence order.
func NormalizeList(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		n := Normalize(code)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		normalized = append(normalized, n)
	}
	return normalized
}
