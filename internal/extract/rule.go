package extract

import (
	"path"
	"strings"

	"mclocale/internal/language"
)

// Rule selects archive entries and names their outputs.
type Rule struct {
	// Name identifies the rule in logs.
	Name string
	// Match reports whether a raw entry path belongs to this rule.
	Match func(entry string) bool
	// Transform maps a raw entry path to the output path relative to the
	// extraction root. For nested rules the result is the prefix under which
	// inner outputs are placed.
	Transform func(entry string) string
	// Filter restricts outputs to allowed locales. The zero value admits all.
	Filter language.Filter
	// Raw writes the entry bytes verbatim without a JSON companion.
	Raw bool
	// Inner, when set, marks matched entries as nested zip containers whose
	// entries are partitioned by these rules.
	Inner []Rule
}

// Nested reports whether r opens matched entries as containers.
func (r Rule) Nested() bool {
	return len(r.Inner) > 0
}

func (r Rule) outputPath(entry string) string {
	if r.Transform == nil {
		return entry
	}
	return r.Transform(entry)
}

// HasPrefix matches entries starting with any of prefixes.
func HasPrefix(prefixes ...string) func(string) bool {
	return func(entry string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(entry, p) {
				return true
			}
		}
		return false
	}
}

// HasSuffix matches entries ending with suffix.
func HasSuffix(suffix string) func(string) bool {
	return func(entry string) bool {
		return strings.HasSuffix(entry, suffix)
	}
}

// Contains matches entries containing sub.
func Contains(sub string) func(string) bool {
	return func(entry string) bool {
		return strings.Contains(entry, sub)
	}
}

// Not negates a predicate.
func Not(fn func(string) bool) func(string) bool {
	return func(entry string) bool {
		return !fn(entry)
	}
}

// All combines predicates with logical AND.
func All(fns ...func(string) bool) func(string) bool {
	return func(entry string) bool {
		for _, fn := range fns {
			if !fn(entry) {
				return false
			}
		}
		return true
	}
}

// Equals matches one of the listed entry paths exactly.
func Equals(entries ...string) func(string) bool {
	return func(entry string) bool {
		for _, e := range entries {
			if entry == e {
				return true
			}
		}
		return false
	}
}

// TrimPrefixes removes the first matching prefix.
func TrimPrefixes(entry string, prefixes ...string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(entry, p) {
			return strings.TrimPrefix(entry, p)
		}
	}
	return entry
}

// CompanionPath returns the JSON companion path of a text output.
func CompanionPath(rel string) string {
	return strings.TrimSuffix(rel, path.Ext(rel)) + ".json"
}
