// file: cmd/output.go
// version: 1.0.0
// guid: 0b4e7a2c-9d1f-4e3a-8c6b-5f2a7d9e1c48

package cmd

import (
	"encoding/json"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/jdfalk/voicematch/internal/matcher"
)

var (
	acceptStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	suggestStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	rejectStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

func styleDecision(d matcher.Decision) string {
	switch d {
	case matcher.AutoAccept:
		return acceptStyle.Render(string(d))
	case matcher.Suggest:
		return suggestStyle.Render(string(d))
	default:
		return rejectStyle.Render(string(d))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
