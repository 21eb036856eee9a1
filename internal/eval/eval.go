// file: internal/eval/eval.go
// version: 1.0.0
// guid: 2b7e5d91-3c4a-4f86-b0d2-6a1e9c8f4d35

// Package eval replays recorded voice answers against the question bank and
// reports how the decision policy would have treated them.
package eval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/jdfalk/voicematch/internal/matcher"
	"github.com/jdfalk/voicematch/internal/models"
	"github.com/jdfalk/voicematch/internal/normalize"
	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"
)

// Outcome classifies one replayed attempt.
type Outcome string

const (
	// Correct: the selected or suggested option is the expected one.
	Correct Outcome = "correct"
	// Incorrect: a different option was selected or suggested.
	Incorrect Outcome = "incorrect"
	// Missing: the expected option was known but the attempt was rejected.
	Missing Outcome = "missing"
	// Unscored: the attempt carries no expected option.
	Unscored Outcome = "unscored"
	// Failed: the attempt could not be decided at all.
	Failed Outcome = "failed"
)

// Row is the result of one attempt.
type Row struct {
	Attempt    models.Attempt   `json:"attempt" yaml:"attempt"`
	Decision   matcher.Decision `json:"decision,omitempty" yaml:"decision,omitempty"`
	Similarity float64          `json:"similarity" yaml:"similarity"`
	Selected   string           `json:"selected,omitempty" yaml:"selected,omitempty"`
	Outcome    Outcome          `json:"outcome" yaml:"outcome"`
	Error      string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report aggregates a run.
type Report struct {
	Total      int                      `json:"total" yaml:"total"`
	ByDecision map[matcher.Decision]int `json:"by_decision" yaml:"by_decision"`
	Correct    int                      `json:"correct" yaml:"correct"`
	Incorrect  int                      `json:"incorrect" yaml:"incorrect"`
	Missing    int                      `json:"missing" yaml:"missing"`
	Unscored   int                      `json:"unscored" yaml:"unscored"`
	Failed     int                      `json:"failed" yaml:"failed"`
	Rows       []Row                    `json:"rows" yaml:"rows"`
}

// Accuracy is Correct over all scored attempts, or 0 when none were scored.
func (r *Report) Accuracy() float64 {
	scored := r.Correct + r.Incorrect + r.Missing
	if scored == 0 {
		return 0
	}
	return float64(r.Correct) / float64(scored)
}

// Options tunes a run.
type Options struct {
	// Progress draws a progress bar on Out.
	Progress bool
	// Out receives the progress bar; nil means stderr.
	Out io.Writer
	// Workers bounds concurrent decisions; <= 0 means GOMAXPROCS.
	Workers int
}

// Source yields prepared candidates for a question. *bank.Store and
// *bank.Bank both satisfy it.
type Source interface {
	Candidates(id string) ([]matcher.Candidate, normalize.Language, error)
}

type attemptFile struct {
	Attempts []models.Attempt `yaml:"attempts"`
}

// LoadAttempts reads an attempts YAML file.
func LoadAttempts(path string) ([]models.Attempt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attempts: %w", err)
	}
	return ParseAttempts(data)
}

// ParseAttempts decodes `attempts: [{question_id, transcript, alternatives, expected}]`.
func ParseAttempts(data []byte) ([]models.Attempt, error) {
	var f attemptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse attempts: %w", err)
	}
	for i, a := range f.Attempts {
		if a.QuestionID == "" {
			return nil, fmt.Errorf("parse attempts: attempt %d has no question_id", i)
		}
	}
	return f.Attempts, nil
}

// Run decides every attempt against src. Rows keep attempt order.
func Run(ctx context.Context, src Source, attempts []models.Attempt, policy matcher.Policy, opts Options) (*Report, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var bar *progressbar.ProgressBar
	if opts.Progress {
		out := opts.Out
		if out == nil {
			out = os.Stderr
		}
		bar = progressbar.NewOptions(len(attempts),
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription("evaluating"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	rows := make([]Row, len(attempts))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

	for i := range attempts {
		select {
		case semaphore <- struct{}{}: // Acquire
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		}
		if err := ctx.Err(); err != nil {
			<-semaphore
			wg.Wait()
			return nil, err
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() {
				<-semaphore // Release
				if bar != nil {
					_ = bar.Add(1)
				}
			}()
			if ctx.Err() != nil {
				return
			}
			rows[idx] = replay(src, attempts[idx], policy)
		}(i)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	return summarize(rows), nil
}

func replay(src Source, a models.Attempt, policy matcher.Policy) Row {
	row := Row{Attempt: a}

	cands, lang, err := src.Candidates(a.QuestionID)
	if err != nil {
		row.Outcome, row.Error = Failed, err.Error()
		return row
	}

	res, err := policy.DecideAlternatives(a.Transcripts(), lang, cands)
	if err != nil {
		row.Outcome, row.Error = Failed, err.Error()
		return row
	}
	row.Decision = res.Decision
	row.Similarity = res.Similarity
	if res.Best != nil {
		row.Selected = res.Best.Display
	}

	switch {
	case a.Expected == "":
		row.Outcome = Unscored
	case res.Best == nil:
		row.Outcome = Missing
	default:
		if _, idx, ok := matcher.Confirm(a.Expected, lang, cands); ok && idx == res.Index {
			row.Outcome = Correct
		} else {
			row.Outcome = Incorrect
		}
	}
	return row
}

func summarize(rows []Row) *Report {
	r := &Report{
		Total:      len(rows),
		ByDecision: make(map[matcher.Decision]int),
		Rows:       rows,
	}
	for _, row := range rows {
		if row.Decision != "" {
			r.ByDecision[row.Decision]++
		}
		switch row.Outcome {
		case Correct:
			r.Correct++
		case Incorrect:
			r.Incorrect++
		case Missing:
			r.Missing++
		case Unscored:
			r.Unscored++
		case Failed:
			r.Failed++
		}
	}
	return r
}

// Decisions returns the decisions present in the report in a stable order.
func (r *Report) Decisions() []matcher.Decision {
	out := make([]matcher.Decision, 0, len(r.ByDecision))
	for d := range r.ByDecision {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Errors returns the attempts that could not be decided.
func (r *Report) Errors() error {
	var errs []error
	for _, row := range r.Rows {
		if row.Outcome == Failed {
			errs = append(errs, fmt.Errorf("question %s: %s", row.Attempt.QuestionID, row.Error))
		}
	}
	return errors.Join(errs...)
}
