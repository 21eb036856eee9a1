// file: internal/eval/eval_test.go
// version: 1.0.0
// guid: 6f1c3a8e-2d4b-4e9a-8c7f-1b0d5e3a9f62

package eval

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jdfalk/voicematch/internal/bank"
	"github.com/jdfalk/voicematch/internal/matcher"
	"github.com/jdfalk/voicematch/internal/models"
	"github.com/jdfalk/voicematch/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const evalBank = `questions:
  - id: tl-greeting-1
    language: tl
    prompt: Greeting
    options: [Mabuhay, Salamat, Paalam]
  - id: ar-school-1
    language: ar
    prompt: Where do you study?
    options: [مدرسة, جامعة]
`

func loadBank(t *testing.T) *bank.Bank {
	t.Helper()
	b, err := bank.Parse([]byte(evalBank))
	require.NoError(t, err)
	return b
}

func TestLoadAttempts(t *testing.T) {
	attempts, err := LoadAttempts(filepath.Join("testdata", "attempts.yaml"))
	require.NoError(t, err)
	require.Len(t, attempts, 7)
	assert.Equal(t, "tl-greeting-1", attempts[0].QuestionID)
	assert.Equal(t, []string{"paalam"}, attempts[6].Alternatives)

	_, err = LoadAttempts(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseAttempts_Invalid(t *testing.T) {
	_, err := ParseAttempts([]byte("attempts:\n  - transcript: oo\n"))
	assert.ErrorContains(t, err, "no question_id")

	_, err = ParseAttempts([]byte("attempts: [unclosed"))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	attempts, err := LoadAttempts(filepath.Join("testdata", "attempts.yaml"))
	require.NoError(t, err)

	report, err := Run(context.Background(), loadBank(t), attempts, matcher.DefaultPolicy(), Options{Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 7, report.Total)
	assert.Equal(t, 3, report.Correct)
	assert.Equal(t, 1, report.Incorrect)
	assert.Equal(t, 1, report.Missing)
	assert.Equal(t, 1, report.Unscored)
	assert.Equal(t, 1, report.Failed)
	assert.InDelta(t, 0.6, report.Accuracy(), 1e-9)

	want := []Outcome{Correct, Incorrect, Missing, Correct, Unscored, Failed, Correct}
	for i, row := range report.Rows {
		assert.Equal(t, want[i], row.Outcome, "row %d", i)
	}
	assert.Equal(t, "Paalam", report.Rows[6].Selected)
	assert.Equal(t, "جامعة", report.Rows[4].Selected)
	assert.ErrorIs(t, report.Errors(), bank.ErrQuestionNotFound)

	total := 0
	for _, d := range report.Decisions() {
		total += report.ByDecision[d]
	}
	assert.Equal(t, 6, total)
}

func TestRun_WithStoreAndProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(evalBank), 0o644))
	store, err := bank.OpenStore(path, 0)
	require.NoError(t, err)

	attempts, err := ParseAttempts([]byte("attempts:\n  - question_id: tl-greeting-1\n    transcript: paalam\n    expected: paalam\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	report, err := Run(context.Background(), store, attempts, matcher.DefaultPolicy(), Options{Progress: true, Out: &out})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Correct)
	assert.Equal(t, 1, report.ByDecision[matcher.AutoAccept])
	assert.NotEmpty(t, out.String())
}

func TestRun_InvalidPolicy(t *testing.T) {
	_, err := Run(context.Background(), loadBank(t), nil, matcher.Policy{AutoAccept: 0.5, Suggest: 0.7}, Options{})
	assert.ErrorIs(t, err, matcher.ErrInvalidPolicy)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts, err := LoadAttempts(filepath.Join("testdata", "attempts.yaml"))
	require.NoError(t, err)
	_, err = Run(ctx, loadBank(t), attempts, matcher.DefaultPolicy(), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReport_AccuracyEmpty(t *testing.T) {
	r := &Report{}
	assert.Equal(t, 0.0, r.Accuracy())
	assert.NoError(t, r.Errors())
}

// cancellingSource cancels the run on its first lookup.
type cancellingSource struct {
	src    Source
	cancel context.CancelFunc
	mu     sync.Mutex
	calls  int
}

func (s *cancellingSource) Candidates(id string) ([]matcher.Candidate, normalize.Language, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	s.cancel()
	return s.src.Candidates(id)
}

func TestRun_CancelledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &cancellingSource{src: loadBank(t), cancel: cancel}

	attempts := make([]models.Attempt, 500)
	for i := range attempts {
		attempts[i] = models.Attempt{QuestionID: "tl-greeting-1", Transcript: "mabuhay"}
	}

	report, err := Run(ctx, src, attempts, matcher.DefaultPolicy(), Options{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)

	src.mu.Lock()
	defer src.mu.Unlock()
	assert.Equal(t, 1, src.calls)
}
