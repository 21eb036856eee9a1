// file: internal/normalize/language.go
// version: 1.0.0
// guid: 91f8e739-19c7-4941-b39b-69fd4c1f5355

package normalize

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language identifies the normalization rules applied to a string.
type Language string

const (
	Arabic  Language = "ar"
	Tagalog Language = "tl"
	// English is the fallback used when a device cannot recognize Arabic or
	// Filipino speech and capture is retried as en-US.
	English Language = "en"
)

// ErrUnsupportedLanguage is returned when a tag does not map to a known language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Languages lists every supported language in a stable order.
func Languages() []Language {
	return []Language{Arabic, Tagalog, English}
}

// ParseLanguage maps a BCP 47 tag ("ar", "ar-EG", "tl", "fil-PH", "en-US")
// onto a supported Language.
func ParseLanguage(tag string) (Language, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", fmt.Errorf("%w: empty tag", ErrUnsupportedLanguage)
	}
	t, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrUnsupportedLanguage, tag, err)
	}
	base, _ := t.Base()
	switch base.String() {
	case "ar":
		return Arabic, nil
	case "tl", "fil":
		return Tagalog, nil
	case "en":
		return English, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, tag)
}

// String returns the short language tag.
func (l Language) String() string {
	return string(l)
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	switch l {
	case Arabic, Tagalog, English:
		return true
	}
	return false
}
