package nmt

import (
	"sort"
	"testing"

	"github.com/kotobatl/kotoba/internal/engine"
)

func TestLanguages_SortedAndComplete(t *testing.T) {
	langs := Languages()
	if len(langs) != len(languageTable) {
		t.Fatalf("got %d languages, table has %d", len(langs), len(languageTable))
	}
	if !sort.StringsAreSorted(langs) {
		t.Errorf("Languages() not sorted: %v", langs)
	}
	for _, code := range []string{"en", "ja", "zh-cn", "zh-tw", "ko"} {
		if _, err := modelCode(code); err != nil {
			t.Errorf("modelCode(%q) = %v, want ok", code, err)
		}
	}
}

func TestModelCode(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"ja", "jpn_Jpan"},
		{"zh-cn", "zho_Hans"},
		{"zh-tw", "zho_Hant"},
		{"en", "eng_Latn"},
	}
	for _, tc := range tests {
		got, err := modelCode(tc.code)
		if err != nil {
			t.Errorf("modelCode(%q) error: %v", tc.code, err)
			continue
		}
		if got != tc.want {
			t.Errorf("modelCode(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestModelCode_Unsupported(t *testing.T) {
	for _, code := range []string{"", "xx", "JA", "zh"} {
		_, err := modelCode(code)
		if err == nil {
			t.Errorf("modelCode(%q) should fail", code)
			continue
		}
		if got := engine.KindOf(err); got != engine.KindUnsupportedLanguage {
			t.Errorf("modelCode(%q) kind = %v, want %v", code, got, engine.KindUnsupportedLanguage)
		}
	}
}

func TestTagTokens_MatchesTable(t *testing.T) {
	tags := tagTokens()
	if len(tags) != len(languageTable) {
		t.Fatalf("got %d tags, table has %d", len(tags), len(languageTable))
	}
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		seen[tag] = true
	}
	for code, tag := range languageTable {
		if !seen[tag] {
			t.Errorf("tag %q for %q missing from tagTokens()", tag, code)
		}
	}
}
