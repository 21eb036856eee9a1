// file: internal/matcher/matcher_test.go
// version: 2.0.0
// guid: 7fa41a7d-b060-4730-a00d-48faec6d3b21

package matcher

import (
	"math"
	"sync"
	"testing"

	"github.com/jdfalk/voicematch/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide_ArabicHamzaAlef(t *testing.T) {
	cands := NewCandidates(normalize.Arabic, "احمد", "محمد")

	res, err := Decide("أحمد", normalize.Arabic, cands)
	require.NoError(t, err)
	assert.Equal(t, AutoAccept, res.Decision)
	assert.Equal(t, 1.0, res.Similarity)
	require.NotNil(t, res.Best)
	assert.Equal(t, "احمد", res.Best.Display)
	assert.Equal(t, 0, res.Index)
	assert.True(t, res.Selected())
}

func TestDecide_TagalogPunctuation(t *testing.T) {
	cands := NewCandidates(normalize.Tagalog, "mabuhay", "salamat")

	res, err := Decide("Mabuhay.", normalize.Tagalog, cands)
	require.NoError(t, err)
	assert.Equal(t, AutoAccept, res.Decision)
	assert.Equal(t, "mabuhay", res.Transcript)
	require.NotNil(t, res.Best)
	assert.Equal(t, "mabuhay", res.Best.Display)
}

func TestDecide_OneSubstitution(t *testing.T) {
	res, err := Decide("maybuhay", normalize.Tagalog, NewCandidates(normalize.Tagalog, "mabuhay"))
	require.NoError(t, err)
	assert.Equal(t, 0.875, res.Similarity)
	assert.Equal(t, AutoAccept, res.Decision)
}

func TestDecide_RejectReportsNoBest(t *testing.T) {
	res, err := Decide("xyz123", normalize.Tagalog, NewCandidates(normalize.Tagalog, "mabuhay", "salamat"))
	require.NoError(t, err)
	assert.Equal(t, Reject, res.Decision)
	assert.Nil(t, res.Best)
	assert.Equal(t, -1, res.Index)
	assert.Less(t, res.Similarity, 0.6)
	assert.False(t, res.Selected())
	// The closest option is still available for logging.
	assert.NotEmpty(t, res.Closest.Display)
}

func TestDecide_SuggestAtPointSeven(t *testing.T) {
	res, err := Decide("abcdefgxyz", normalize.English, NewCandidates(normalize.English, "abcdefghij"))
	require.NoError(t, err)
	assert.Equal(t, 0.7, res.Similarity)
	assert.Equal(t, Suggest, res.Decision)
	require.NotNil(t, res.Best)
	assert.Equal(t, "abcdefghij", res.Best.Display)
}

func TestDecide_EmptyCandidates(t *testing.T) {
	res, err := Decide("mabuhay", normalize.Tagalog, nil)
	require.ErrorIs(t, err, ErrEmptyCandidateSet)
	assert.Nil(t, res.Best)
	assert.Equal(t, -1, res.Index)
}

func TestDecide_ThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		candidate  string
		similarity float64
		want       Decision
	}{
		{"exactly auto accept", "abcdx", "abcde", 0.8, AutoAccept},
		{"just below auto accept", "abcx", "abcd", 0.75, Suggest},
		{"just above suggest", "abcdefgxyz", "abcdefghij", 0.7, Suggest},
		{"exactly suggest is rejected", "abcxy", "abcde", 0.6, Reject},
		{"below suggest", "abxyz", "abcde", 0.4, Reject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Decide(tt.transcript, normalize.English, NewCandidates(normalize.English, tt.candidate))
			require.NoError(t, err)
			assert.Equal(t, tt.similarity, res.Similarity)
			assert.Equal(t, tt.want, res.Decision)
		})
	}
}

func TestDecide_TieKeepsEarliest(t *testing.T) {
	// "bat" is one substitution from both options.
	cands := NewCandidates(normalize.English, "cat", "bag")
	res, err := Decide("bat", normalize.English, cands)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, res.Similarity, 1e-9)
	assert.Equal(t, 0, res.ClosestIndex)
	assert.Equal(t, "cat", res.Closest.Display)

	res, err = Decide("bat", normalize.English, NewCandidates(normalize.English, "bag", "cat"))
	require.NoError(t, err)
	assert.Equal(t, "bag", res.Closest.Display)
}

func TestDecide_LaterBetterCandidateWins(t *testing.T) {
	// Both clear 0.8; the later, exact option must take the slot.
	cands := NewCandidates(normalize.Tagalog, "mabuhayy", "mabuhay")
	res, err := Decide("mabuhay", normalize.Tagalog, cands)
	require.NoError(t, err)
	assert.Equal(t, AutoAccept, res.Decision)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, 1.0, res.Similarity)
}

func TestDecide_EmptyTranscriptRejects(t *testing.T) {
	res, err := Decide("   ", normalize.Tagalog, NewCandidates(normalize.Tagalog, "oo", "hindi"))
	require.NoError(t, err)
	assert.Equal(t, Reject, res.Decision)
	assert.Equal(t, 0.0, res.Similarity)
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
	assert.ErrorIs(t, Policy{AutoAccept: 0.6, Suggest: 0.6}.Validate(), ErrInvalidPolicy)
	assert.ErrorIs(t, Policy{AutoAccept: 1.2, Suggest: 0.6}.Validate(), ErrInvalidPolicy)
	assert.ErrorIs(t, Policy{AutoAccept: 0.8, Suggest: -0.1}.Validate(), ErrInvalidPolicy)
	assert.ErrorIs(t, Policy{AutoAccept: math.NaN(), Suggest: 0.6}.Validate(), ErrInvalidPolicy)
	assert.ErrorIs(t, Policy{AutoAccept: 0.8, Suggest: math.NaN()}.Validate(), ErrInvalidPolicy)
}

func TestPolicy_CustomThresholds(t *testing.T) {
	strict := Policy{AutoAccept: 0.9, Suggest: 0.8}
	res, err := strict.Decide("maybuhay", normalize.Tagalog, NewCandidates(normalize.Tagalog, "mabuhay"))
	require.NoError(t, err)
	assert.Equal(t, Suggest, res.Decision)
}

func TestDecideAlternatives(t *testing.T) {
	cands := NewCandidates(normalize.Tagalog, "mabuhay", "salamat")

	res, err := DefaultPolicy().DecideAlternatives([]string{"xyz", "salamat po", "Salamat."}, normalize.Tagalog, cands)
	require.NoError(t, err)
	assert.Equal(t, AutoAccept, res.Decision)
	assert.Equal(t, "salamat", res.Transcript)
	require.NotNil(t, res.Best)
	assert.Equal(t, "salamat", res.Best.Display)

	_, err = DefaultPolicy().DecideAlternatives(nil, normalize.Tagalog, cands)
	assert.ErrorIs(t, err, ErrNoTranscript)

	_, err = DefaultPolicy().DecideAlternatives([]string{"oo"}, normalize.Tagalog, nil)
	assert.ErrorIs(t, err, ErrEmptyCandidateSet)
}

func TestDecideAlternatives_TieKeepsFirst(t *testing.T) {
	cands := NewCandidates(normalize.English, "cat")
	res, err := DefaultPolicy().DecideAlternatives([]string{"bat", "cab"}, normalize.English, cands)
	require.NoError(t, err)
	assert.Equal(t, "bat", res.Transcript)
}

func TestConfirm(t *testing.T) {
	cands := NewCandidates(normalize.Arabic, "مدرسة", "أحمد")

	c, idx, ok := Confirm("احمد", normalize.Arabic, cands)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "أحمد", c.Display)

	_, idx, ok = Confirm("بيت", normalize.Arabic, cands)
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
}

func TestDecide_ConcurrentCalls(t *testing.T) {
	cands := NewCandidates(normalize.Arabic, "احمد", "محمد", "مدرسة")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := Decide("أحمد", normalize.Arabic, cands)
			assert.NoError(t, err)
			assert.Equal(t, AutoAccept, res.Decision)
		}()
	}
	wg.Wait()
}
