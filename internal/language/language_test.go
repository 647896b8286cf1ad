package language

import (
	"testing"

	"github.com/go-test/deep"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en_US", "en-US"},
		{"en-US", "en-US"},
		{"EN_us", "en-US"},
		{"zh_CN", "zh-CN"},
		{"tl_PH", "tl-PH"},
		{"iw_IL", "iw-IL"},
		{" fr_FR ", "fr-FR"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"en_US", "en-us"},
		{"pt_BR", "PT-br"},
		{"jbo_EN", "jbo-en"},
	}
	for _, pair := range pairs {
		if Normalize(pair[0]) != Normalize(pair[1]) {
			t.Errorf("Normalize(%q)=%q differs from Normalize(%q)=%q", pair[0], Normalize(pair[0]), pair[1], Normalize(pair[1]))
		}
	}
}

func TestLocaleFromPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"vanilla/en_US.lang", "en_US"},
		{"old/en_US-pocket.lang", "en_US"},
		{"editor/zh_CN.json", "zh_CN"},
		{"fr_FR.lang", "fr_FR"},
		{`persona\de_DE.lang`, "de_DE"},
		{"vanilla/languages.json", "languages"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := LocaleFromPath(tt.input); got != tt.expected {
				t.Errorf("LocaleFromPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	f := NewFilter([]string{"en-US", "en_us", " "})
	if f.Empty() {
		t.Fatal("expected non-empty filter")
	}
	if diff := deep.Equal(f.Codes(), []string{"en-US"}); diff != nil {
		t.Fatalf("codes diff: %v", diff)
	}
	if !f.AllowsPath("vanilla/en_US.lang") {
		t.Error("expected en_US to pass")
	}
	if f.AllowsPath("vanilla/fr_FR.lang") {
		t.Error("expected fr_FR to be rejected")
	}
	if !f.AllowsPath("old/en_US-pocket.lang") {
		t.Error("expected pocket variant to pass")
	}
}

func TestFilterKeepsDeprecatedCodesDistinct(t *testing.T) {
	f := NewFilter([]string{"fil-PH", "he-IL"})
	if !f.AllowsPath("fil_ph.json") {
		t.Error("expected fil_ph to pass")
	}
	if f.AllowsPath("tl_ph.json") {
		t.Error("expected tl_ph to be rejected by a fil-PH allowlist")
	}
	if !f.AllowsPath("he_IL.lang") {
		t.Error("expected he_IL to pass")
	}
	if f.AllowsPath("iw_IL.lang") {
		t.Error("expected iw_IL to be rejected by a he-IL allowlist")
	}
}

func TestEmptyFilterAllowsAll(t *testing.T) {
	var f Filter
	if !f.Allows("xx_YY") {
		t.Fatal("zero filter should admit everything")
	}
	if f.String() != "all" {
		t.Fatalf("unexpected String(): %q", f.String())
	}
	if !NewFilter(nil).Empty() {
		t.Fatal("nil list should build an empty filter")
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("en_US"); got != "American English" {
		t.Errorf("DisplayName(en_US) = %q", got)
	}
	if got := DisplayName(""); got != "Unknown" {
		t.Errorf("DisplayName(\"\") = %q", got)
	}
}
