// file: internal/models/question.go
// version: 1.0.0
// guid: 987b7883-ca3c-465b-8a87-7c7853eedb66

package models

// Question is one assessment item with its selectable answer options.
type Question struct {
	ID       string   `json:"id" yaml:"id"`
	Language string   `json:"language" yaml:"language"`
	Prompt   string   `json:"prompt" yaml:"prompt"`
	Options  []string `json:"options" yaml:"options"`
}

// Attempt is a recorded voice answer used for offline evaluation.
type Attempt struct {
	QuestionID   string   `json:"question_id" yaml:"question_id"`
	Transcript   string   `json:"transcript" yaml:"transcript"`
	Alternatives []string `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
	// Expected is the option the speaker meant; empty when unknown.
	Expected string `json:"expected,omitempty" yaml:"expected,omitempty"`
}

// Transcripts returns the transcript followed by any alternatives, skipping
// blanks. Recognizers list alternatives in confidence order.
func (a Attempt) Transcripts() []string {
	out := make([]string, 0, 1+len(a.Alternatives))
	if a.Transcript != "" {
		out = append(out, a.Transcript)
	}
	for _, alt := range a.Alternatives {
		if alt != "" {
			out = append(out, alt)
		}
	}
	return out
}
