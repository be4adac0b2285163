package nmt

import (
	"sort"

	"github.com/kotobatl/kotoba/internal/engine"
)

// languageTable maps client-facing language codes to the model-internal tag
// tokens the generator understands. It is the single source of truth: request
// validation, warmup directions, and the detokenizer's tag filter are all
// derived from it, so adding a language here cannot create a silent decoder
// leak.
var languageTable = map[string]string{
	"en":    "eng_Latn",
	"ja":    "jpn_Jpan",
	"zh-cn": "zho_Hans",
	"zh-tw": "zho_Hant",
	"ko":    "kor_Hang",
	"fr":    "fra_Latn",
	"de":    "deu_Latn",
	"es":    "spa_Latn",
	"it":    "ita_Latn",
	"pt":    "por_Latn",
	"ru":    "rus_Cyrl",
	"vi":    "vie_Latn",
}

// Languages returns the declared client-facing enumeration, sorted for stable
// status output.
func Languages() []string {
	codes := make([]string, 0, len(languageTable))
	for code := range languageTable {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// modelCode resolves a client-facing code to its model-internal tag token.
// Any code outside the enumeration is a typed failure, never silently
// accepted.
func modelCode(code string) (string, error) {
	tag, ok := languageTable[code]
	if !ok {
		return "", engine.Errorf(engine.KindUnsupportedLanguage,
			"language %q is not supported; supported: %v", code, Languages())
	}
	return tag, nil
}

// tagTokens returns every model-internal language tag, for the detokenizer
// filter. Derived, never hard-coded.
func tagTokens() []string {
	tags := make([]string, 0, len(languageTable))
	for _, tag := range languageTable {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
