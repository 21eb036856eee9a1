// file: cmd/bank.go
// version: 1.0.0
// guid: 1d6f3b8a-5c2e-4f9b-a7d1-9e4c2b6f0a35

package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jdfalk/voicematch/internal/bank"
	"github.com/jdfalk/voicematch/internal/config"
	"github.com/jdfalk/voicematch/internal/normalize"
	"github.com/spf13/cobra"
)

func newBankCmd() *cobra.Command {
	bankCmd := &cobra.Command{
		Use:   "bank",
		Short: "Inspect the question bank",
	}

	var asJSON bool
	bankCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			questions := store.Bank().List()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), questions)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLANGUAGE\tOPTIONS\tPROMPT")
			for _, q := range questions {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", q.ID, q.Language, len(q.Options), q.Prompt)
			}
			return tw.Flush()
		},
	}

	showCmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a question and its normalized options",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			q, err := store.Bank().Get(args[0])
			if err != nil {
				return err
			}
			cands, lang, err := store.Candidates(q.ID)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"question": q, "candidates": cands})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", headerStyle.Render(q.ID), dimStyle.Render("("+lang.String()+")"))
			if q.Prompt != "" {
				fmt.Fprintln(out, q.Prompt)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tOPTION\tNORMALIZED")
			for i, c := range cands {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", i, c.Display, c.Normalized)
			}
			return tw.Flush()
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Fuzzy search question IDs, prompts and options",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			hits := store.Bank().Search(strings.Join(args, " "))
			if asJSON {
				if hits == nil {
					hits = []bank.SearchHit{}
				}
				return writeJSON(cmd.OutOrStdout(), hits)
			}
			if len(hits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No questions found.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDISTANCE\tPROMPT")
			for _, h := range hits {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", h.Question.ID, h.Distance, h.Question.Prompt)
			}
			return tw.Flush()
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check [FILE]",
		Short: "Validate a bank file and warn about options that cannot be told apart",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.AppConfig.BankPath
			if len(args) == 1 {
				path = args[0]
			}
			b, err := bank.Load(path)
			if err != nil {
				return err
			}
			warnings := b.Lint(config.AppConfig.Thresholds)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"path":      path,
					"questions": b.Len(),
					"languages": countLanguages(b),
					"warnings":  warnings,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d questions", path, b.Len())
			counts := countLanguages(b)
			for _, l := range normalize.Languages() {
				if n := counts[l.String()]; n > 0 {
					fmt.Fprintf(out, ", %d %s", n, l)
				}
			}
			fmt.Fprintln(out)
			for _, w := range warnings {
				fmt.Fprintf(out, "%s %s\n", suggestStyle.Render("warning:"), w)
			}
			if len(warnings) == 0 {
				fmt.Fprintln(out, acceptStyle.Render("ok"))
			}
			return nil
		},
	}

	bankCmd.AddCommand(listCmd, showCmd, searchCmd, checkCmd)
	return bankCmd
}

func countLanguages(b *bank.Bank) map[string]int {
	counts := make(map[string]int)
	for _, q := range b.List() {
		if l, err := b.Language(q.ID); err == nil {
			counts[l.String()]++
		}
	}
	return counts
}
