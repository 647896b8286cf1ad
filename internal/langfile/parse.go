package langfile

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

const utf8BOM = "\ufeff"

// Sanitize drops byte sequences that are not valid UTF-8. Locale files
// occasionally ship with stray bytes; the hash is taken over the raw bytes
// while the written text goes through this.
func Sanitize(raw []byte) []byte {
	if utf8.Valid(raw) {
		return raw
	}
	return bytes.ToValidUTF8(raw, nil)
}

// Parse reads the key=value locale format. Blank lines and lines starting
// with # are skipped, the key ends at the first =, and a tab-introduced #
// comment is stripped from the value. A repeated key keeps its first position
// and takes the later value.
func Parse(raw []byte) *Mapping {
	text := string(Sanitize(raw))
	text = strings.TrimPrefix(text, utf8BOM)

	m := NewMapping()
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if idx := strings.Index(value, "\t#"); idx >= 0 {
			value = value[:idx]
		}
		m.Set(key, strings.TrimRight(value, "\t"))
	}
	return m
}
