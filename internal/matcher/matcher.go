// file: internal/matcher/matcher.go
// version: 2.0.0
// guid: 1f2a3b4c-5d6e-7f8a-9b0c-1d2e3f4a5b6c

package matcher

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jdfalk/voicematch/internal/normalize"
)

// Decision is the three-way outcome of a match attempt.
type Decision string

const (
	AutoAccept Decision = "AUTO_ACCEPT"
	Suggest    Decision = "SUGGEST"
	Reject     Decision = "REJECT"
)

// Default thresholds used by the assessment page.
const (
	DefaultAutoAccept = 0.8
	DefaultSuggest    = 0.6
)

// MaxAlternatives is how many recognition hypotheses a capture requests.
const MaxAlternatives = 3

var (
	// ErrEmptyCandidateSet is returned when Decide is called without options.
	ErrEmptyCandidateSet = errors.New("empty candidate set")
	// ErrNoTranscript is returned when DecideAlternatives gets no transcripts.
	ErrNoTranscript = errors.New("no transcript")
	// ErrInvalidPolicy is returned by Policy.Validate.
	ErrInvalidPolicy = errors.New("invalid match policy")
)

// Candidate is one selectable answer option.
type Candidate struct {
	Display    string `json:"display"`
	Normalized string `json:"normalized"`
}

// NewCandidate prepares a display value for matching in lang.
func NewCandidate(display string, lang normalize.Language) Candidate {
	return Candidate{Display: display, Normalized: normalize.Normalize(display, lang)}
}

// NewCandidates prepares each display value, preserving order.
func NewCandidates(lang normalize.Language, displays ...string) []Candidate {
	out := make([]Candidate, len(displays))
	for i, d := range displays {
		out[i] = NewCandidate(d, lang)
	}
	return out
}

// Result is the outcome of one match attempt.
type Result struct {
	// Best is the selected or suggested candidate; nil on Reject.
	Best *Candidate `json:"best,omitempty"`
	// Index is Best's position in the candidate list, or -1.
	Index      int      `json:"index"`
	Similarity float64  `json:"similarity"`
	Decision   Decision `json:"decision"`
	// Transcript is the normalized transcript that was scored.
	Transcript string `json:"transcript"`
	// Closest is the highest scoring candidate even when rejected. It is
	// kept for logging and must not be treated as a selection.
	Closest      Candidate `json:"-"`
	ClosestIndex int       `json:"-"`
}

// Selected reports whether the result selects a candidate without asking.
func (r Result) Selected() bool {
	return r.Decision == AutoAccept
}

// Policy holds the thresholds for classifying a similarity.
type Policy struct {
	// AutoAccept is the inclusive lower bound for automatic selection.
	AutoAccept float64 `json:"auto_accept" yaml:"auto_accept"`
	// Suggest is the exclusive lower bound for a suggestion.
	Suggest float64 `json:"suggest" yaml:"suggest"`
}

// DefaultPolicy returns the 0.8 / 0.6 thresholds.
func DefaultPolicy() Policy {
	return Policy{AutoAccept: DefaultAutoAccept, Suggest: DefaultSuggest}
}

// Validate checks 0 <= Suggest < AutoAccept <= 1.
func (p Policy) Validate() error {
	if math.IsNaN(p.Suggest) || math.IsNaN(p.AutoAccept) ||
		p.Suggest < 0 || p.AutoAccept > 1 || p.Suggest >= p.AutoAccept {
		return fmt.Errorf("%w: need 0 <= suggest (%.2f) < auto_accept (%.2f) <= 1",
			ErrInvalidPolicy, p.Suggest, p.AutoAccept)
	}
	return nil
}

// Classify maps a similarity onto a decision.
func (p Policy) Classify(similarity float64) Decision {
	switch {
	case similarity >= p.AutoAccept:
		return AutoAccept
	case similarity > p.Suggest:
		return Suggest
	default:
		return Reject
	}
}

// Decide scores transcript against every candidate and classifies the best
// one. The whole list is always scanned; ties keep the earliest candidate.
func (p Policy) Decide(transcript string, lang normalize.Language, candidates []Candidate) (Result, error) {
	if len(candidates) == 0 {
		return Result{Index: -1, ClosestIndex: -1, Decision: Reject}, ErrEmptyCandidateSet
	}

	spoken := normalize.Normalize(strings.TrimSpace(transcript), lang)

	bestIdx := 0
	bestScore := Similarity(spoken, candidates[0].Normalized)
	for i := 1; i < len(candidates); i++ {
		if s := Similarity(spoken, candidates[i].Normalized); s > bestScore {
			bestIdx, bestScore = i, s
		}
	}

	res := Result{
		Index:        -1,
		Similarity:   bestScore,
		Decision:     p.Classify(bestScore),
		Transcript:   spoken,
		Closest:      candidates[bestIdx],
		ClosestIndex: bestIdx,
	}
	if res.Decision != Reject {
		best := candidates[bestIdx]
		res.Best = &best
		res.Index = bestIdx
	}
	return res, nil
}

// DecideAlternatives decides each recognition alternative and returns the
// result with the highest similarity. Ties keep the earlier alternative,
// which recognizers list in order of confidence.
func (p Policy) DecideAlternatives(alternatives []string, lang normalize.Language, candidates []Candidate) (Result, error) {
	if len(alternatives) == 0 {
		return Result{Index: -1, ClosestIndex: -1, Decision: Reject}, ErrNoTranscript
	}
	var best Result
	for i, alt := range alternatives {
		res, err := p.Decide(alt, lang, candidates)
		if err != nil {
			return res, err
		}
		if i == 0 || res.Similarity > best.Similarity {
			best = res
		}
	}
	return best, nil
}

// Decide runs the default policy.
func Decide(transcript string, lang normalize.Language, candidates []Candidate) (Result, error) {
	return DefaultPolicy().Decide(transcript, lang, candidates)
}

// Confirm finds the first candidate equal to value once both are normalized.
// It backs the "yes, select this" step after a suggestion.
func Confirm(value string, lang normalize.Language, candidates []Candidate) (Candidate, int, bool) {
	want := normalize.Normalize(strings.TrimSpace(value), lang)
	for i, c := range candidates {
		if c.Normalized == want {
			return c, i, true
		}
	}
	return Candidate{}, -1, false
}
