// file: cmd/match.go
// version: 1.0.0
// guid: 4f9a1c6e-2b8d-4a7f-9e3c-6d0b8a2f5e71

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jdfalk/voicematch/internal/config"
	"github.com/jdfalk/voicematch/internal/matcher"
	"github.com/jdfalk/voicematch/internal/models"
	"github.com/jdfalk/voicematch/internal/normalize"
	"github.com/jdfalk/voicematch/internal/server"
	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	var (
		lang         string
		candidates   []string
		alternatives []string
		questionID   string
		asJSON       bool
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "match TRANSCRIPT...",
		Short: "Decide which option a transcript refers to",
		Long: `Normalize TRANSCRIPT, score it against each option and print the decision.

Options come either from repeated --candidate flags or from a bank question
via --question, in which case the question's language is used.`,
		Example: `  voicematch match --lang fil --candidate Mabuhay --candidate Salamat "mabuhay."
  voicematch match --question ar-school-1 مدرسه`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if questionID != "" && len(candidates) > 0 {
				return fmt.Errorf("use either --question or --candidate, not both")
			}

			var (
				cands []matcher.Candidate
				l     normalize.Language
				err   error
			)
			if questionID != "" {
				store, err := openStore()
				if err != nil {
					return err
				}
				if cands, l, err = store.Candidates(questionID); err != nil {
					return err
				}
			} else {
				l = config.AppConfig.DefaultLanguage
				if lang != "" {
					if l, err = normalize.ParseLanguage(lang); err != nil {
						return err
					}
				}
				cands = matcher.NewCandidates(l, candidates...)
			}

			attempt := models.Attempt{
				QuestionID:   questionID,
				Transcript:   strings.Join(args, " "),
				Alternatives: alternatives,
			}
			res, err := config.AppConfig.Thresholds.DecideAlternatives(attempt.Transcripts(), l, cands)
			if errors.Is(err, matcher.ErrEmptyCandidateSet) {
				return fmt.Errorf("%w: pass --candidate or --question", err)
			}
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), server.NewMatchResponse(res, l.String(), questionID, "", verbose))
			}
			printResult(cmd, res, l, verbose)
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "language tag: ar, tl, fil, en (default from config)")
	cmd.Flags().StringArrayVar(&candidates, "candidate", nil, "answer option (repeatable)")
	cmd.Flags().StringArrayVar(&alternatives, "alt", nil, "additional recognition alternative (repeatable)")
	cmd.Flags().StringVar(&questionID, "question", "", "take options from this bank question")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the decision as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show the closest option on rejects")
	return cmd
}

func printResult(cmd *cobra.Command, res matcher.Result, lang normalize.Language, verbose bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Decision:   %s\n", styleDecision(res.Decision))
	fmt.Fprintf(out, "Similarity: %.3f\n", res.Similarity)
	fmt.Fprintf(out, "Transcript: %q %s\n", res.Transcript, dimStyle.Render("("+lang.String()+")"))

	switch res.Decision {
	case matcher.AutoAccept:
		fmt.Fprintf(out, "Selected:   %s (#%d)\n", res.Best.Display, res.Index)
	case matcher.Suggest:
		fmt.Fprintf(out, "Did you say %q? (#%d)\n", res.Best.Display, res.Index)
	default:
		fmt.Fprintln(out, "No option matched.")
		if verbose {
			fmt.Fprintf(out, "Closest:    %s (#%d)\n", res.Closest.Display, res.ClosestIndex)
		}
	}
}
