// file: internal/matcher/fuzzy_test.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8901-bcde-f23456789012

package matcher

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"abc", "abc", 0},
		{"ABC", "abc", 3}, // case is the normalizer's job
		{"mabuhay", "maybuhay", 1},
		{"احمد", "محمد", 1},
		{"سلام", "سلم", 1},
	}
	for _, tt := range tests {
		got := Distance(tt.a, tt.b)
		if got != tt.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDistanceMatchesReference(t *testing.T) {
	pool := []rune("abnñ احمدى")
	rng := rand.New(rand.NewSource(7))
	gen := func() string {
		var b strings.Builder
		for i, n := 0, rng.Intn(10); i < n; i++ {
			b.WriteRune(pool[rng.Intn(len(pool))])
		}
		return b.String()
	}
	for i := 0; i < 500; i++ {
		a, b := gen(), gen()
		if got, want := Distance(a, b), fuzzy.LevenshteinDistance(a, b); got != want {
			t.Fatalf("Distance(%q, %q) = %d, reference %d", a, b, got, want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"mabuhay", "mabuhay", 1.0},
		{"maybuhay", "mabuhay", 0.875},
		{"abcde", "abcdx", 0.8},
		{"abcde", "abxyz", 0.4},
		{"abcdefghij", "abcdefgxyz", 0.7},
		{"abc", "", 0.0},
		{"abc", "xyz", 0.0},
		{"احمد", "محمد", 0.75},
	}
	for _, tt := range tests {
		got := Similarity(tt.a, tt.b)
		if got != tt.want {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilaritySymmetricAndBounded(t *testing.T) {
	words := []string{"", "a", "mabuhay", "maybuhay", "salamat", "xyz123", "احمد", "محمد", "على", "oo po"}
	for _, a := range words {
		if s := Similarity(a, a); s != 1.0 {
			t.Errorf("Similarity(%q, %q) = %v, want 1", a, a, s)
		}
		for _, b := range words {
			ab, ba := Similarity(a, b), Similarity(b, a)
			if ab != ba {
				t.Errorf("Similarity(%q, %q) = %v but reversed = %v", a, b, ab, ba)
			}
			if ab < 0 || ab > 1 {
				t.Errorf("Similarity(%q, %q) = %v out of [0,1]", a, b, ab)
			}
		}
	}
}
