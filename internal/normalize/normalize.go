// file: internal/normalize/normalize.go
// version: 1.0.0
// guid: 39c85abe-e016-4a44-bd3d-3f599f89367f

// Package normalize canonicalizes recognized speech and answer options into
// a comparison-only form. Normalized text is never displayed.
//
// All functions are pure and safe for concurrent use.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// arabicMarks covers the harakat, tanween, shadda, sukun and the combining
// hamza/madda marks (U+064B..U+065F).
var arabicMarks = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x064B, Hi: 0x065F, Stride: 1}},
}

const combiningTilde = '\u0303'

// Normalize returns the comparison form of text for the given language.
// Unknown languages fall back to the English rules.
func Normalize(text string, lang Language) string {
	if text == "" {
		return ""
	}
	switch lang {
	case Arabic:
		return normalizeArabic(text)
	case Tagalog:
		return normalizeLatin(text, true)
	default:
		return normalizeLatin(text, false)
	}
}

// NormalizeAll normalizes each entry of texts, preserving order.
func NormalizeAll(texts []string, lang Language) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = Normalize(t, lang)
	}
	return out
}

// Equal reports whether a and b are the same once normalized.
func Equal(a, b string, lang Language) bool {
	return Normalize(a, lang) == Normalize(b, lang)
}

// normalizeArabic strips diacritics and folds letter variants. Decomposing
// first turns precomposed hamza/madda letters (أ إ آ ؤ ئ) into a base letter
// plus a mark in the stripped range, so both spellings fold the same way.
// Other hamza-bearing letters lose their hamza too (ۀ becomes ە, ۓ becomes ے);
// neither occurs in Arabic words.
func normalizeArabic(text string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(arabicMarks)),
		runes.Map(foldArabicLetter),
		norm.NFC,
	)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

func foldArabicLetter(r rune) rune {
	switch r {
	case 'أ', 'إ', 'آ':
		return 'ا'
	case 'ة':
		return 'ه'
	case 'ي', 'ئ':
		return 'ى'
	case 'ؤ':
		return 'و'
	}
	return r
}

// normalizeLatin lowercases, drops periods and commas, optionally folds ñ
// to n, and trims. Punctuation goes before trimming so "a ." becomes "a".
func normalizeLatin(text string, foldEnye bool) string {
	s := strings.Map(func(r rune) rune {
		if r == '.' || r == ',' {
			return -1
		}
		return r
	}, strings.ToLower(text))
	s = norm.NFD.String(s)
	if foldEnye {
		s = dropEnyeTilde(s)
	}
	return strings.TrimSpace(norm.NFC.String(s))
}

// dropEnyeTilde removes every combining tilde attached to a base 'n' in a
// decomposed string. Other marks on the same base are kept.
func dropEnyeTilde(s string) string {
	if !strings.ContainsRune(s, combiningTilde) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	base := rune(-1)
	for _, r := range s {
		if unicode.Is(unicode.Mn, r) {
			if r == combiningTilde && base == 'n' {
				continue
			}
		} else {
			base = r
		}
		b.WriteRune(r)
	}
	return b.String()
}
