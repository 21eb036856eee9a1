// file: internal/bank/lint.go
// version: 1.0.0
// guid: 3e8b6f2a-1c9d-4d7e-b5a0-8f2c4e6d1b97

package bank

import (
	"fmt"

	"github.com/jdfalk/voicematch/internal/matcher"
)

// Warning flags a question that loads but will match poorly.
type Warning struct {
	QuestionID string `json:"question_id"`
	Message    string `json:"message"`
}

func (w Warning) String() string {
	return w.QuestionID + ": " + w.Message
}

// Lint reports options that the matcher cannot tell apart under policy:
// options that normalize to nothing, options that normalize identically,
// and pairs close enough that saying one auto-accepts at the other's score.
func (b *Bank) Lint(policy matcher.Policy) []Warning {
	var warnings []Warning
	for i, q := range b.questions {
		cands := matcher.NewCandidates(b.langs[i], q.Options...)
		for x := range cands {
			if cands[x].Normalized == "" {
				warnings = append(warnings, Warning{q.ID, fmt.Sprintf("option %q normalizes to an empty string", cands[x].Display)})
				continue
			}
			for y := x + 1; y < len(cands); y++ {
				if cands[y].Normalized == "" {
					continue
				}
				switch s := matcher.Similarity(cands[x].Normalized, cands[y].Normalized); {
				case s == 1:
					warnings = append(warnings, Warning{q.ID, fmt.Sprintf("options %q and %q are identical once normalized", cands[x].Display, cands[y].Display)})
				case s >= policy.AutoAccept:
					warnings = append(warnings, Warning{q.ID, fmt.Sprintf("options %q and %q are %.2f similar, at or above auto-accept %.2f", cands[x].Display, cands[y].Display, s, policy.AutoAccept)})
				}
			}
		}
	}
	return warnings
}
