package language

import "strings"

// Filter is a locale allowlist. The zero value and an empty list admit every
// locale.
type Filter struct {
	allowed map[string]struct{}
	codes   []string
}

// NewFilter builds a filter from configured locale codes.
func NewFilter(codes []string) Filter {
	normalized := NormalizeList(codes)
	if len(normalized) == 0 {
		return Filter{}
	}
	allowed := make(map[string]struct{}, len(normalized))
	for _, code := range normalized {
		allowed[code] = struct{}{}
	}
	return Filter{allowed: allowed, codes: normalized}
}

// Empty reports whether the filter admits every locale.
func (f Filter) Empty() bool {
	return len(f.allowed) == 0
}

// Allows reports whether locale passes the filter.
func (f Filter) Allows(locale string) bool {
	if f.Empty() {
		return true
	}
	_, ok := f.allowed[Normalize(locale)]
	return ok
}

// AllowsPath applies the filter to the locale embedded in a relative path.
func (f Filter) AllowsPath(rel string) bool {
	return f.Allows(LocaleFromPath(rel))
}

// Codes returns the normalized allowlist.
func (f Filter) Codes() []string {
	return append([]string(nil), f.codes...)
}

func (f Filter) String() string {
	if f.Empty() {
		return "all"
	}
	return strings.Join(f.codes, ",")
}
