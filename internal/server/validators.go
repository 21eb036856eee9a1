// file: internal/server/validators.go
// version: 2.0.0
// guid: 9b0c1d2e-3f4a-5b6c-7d8e-9f0a1b2c3d4e

package server

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jdfalk/voicematch/internal/matcher"
)

// Upper bounds for request fields. Longer values cannot be real spoken
// answers and would make scoring quadratic in attacker-controlled input.
const (
	maxTranscriptRunes = 512
	maxCandidates      = 256
	maxSessionIDLength = 128
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidationError represents a validation error with code
type ValidationError struct {
	Field   string
	Message string
	Code    string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateID validates a question or session identifier.
func ValidateID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ValidationError{Field: "id", Message: "id is required", Code: "ID_REQUIRED"}
	}
	if len(id) > maxSessionIDLength || !idPattern.MatchString(id) {
		return ValidationError{Field: "id", Message: "id contains invalid characters", Code: "ID_INVALID"}
	}
	return nil
}

// ValidateTranscripts checks the spoken input of a match request: at least
// one non-blank transcript, at most MaxAlternatives hypotheses in total.
func ValidateTranscripts(transcript string, alternatives []string) error {
	total := len(alternatives)
	if transcript != "" {
		total++
	}
	if strings.TrimSpace(transcript) == "" && !anyNonBlank(alternatives) {
		return ValidationError{Field: "transcript", Message: "transcript or alternatives is required", Code: "TRANSCRIPT_REQUIRED"}
	}
	if total > matcher.MaxAlternatives {
		return ValidationError{
			Field:   "alternatives",
			Message: fmt.Sprintf("at most %d transcripts are accepted", matcher.MaxAlternatives),
			Code:    "TOO_MANY_ALTERNATIVES",
		}
	}
	for _, t := range append([]string{transcript}, alternatives...) {
		if len([]rune(t)) > maxTranscriptRunes {
			return ValidationError{
				Field:   "transcript",
				Message: fmt.Sprintf("transcript must not exceed %d characters", maxTranscriptRunes),
				Code:    "TRANSCRIPT_TOO_LONG",
			}
		}
	}
	return nil
}

// ValidateCandidates bounds the option list. An empty list is not a
// validation error; the matcher reports it as ErrEmptyCandidateSet.
func ValidateCandidates(candidates []string) error {
	if len(candidates) > maxCandidates {
		return ValidationError{
			Field:   "candidates",
			Message: fmt.Sprintf("at most %d candidates are accepted", maxCandidates),
			Code:    "TOO_MANY_CANDIDATES",
		}
	}
	for i, c := range candidates {
		if strings.TrimSpace(c) == "" {
			return ValidationError{
				Field:   "candidates",
				Message: fmt.Sprintf("candidate %d is blank", i),
				Code:    "BLANK_CANDIDATE",
			}
		}
		if len([]rune(c)) > maxTranscriptRunes {
			return ValidationError{
				Field:   "candidates",
				Message: fmt.Sprintf("candidate %d must not exceed %d characters", i, maxTranscriptRunes),
				Code:    "CANDIDATE_TOO_LONG",
			}
		}
	}
	return nil
}

// ValidateSessionID accepts an empty session or a well formed ID.
func ValidateSessionID(session string) error {
	if session == "" {
		return nil
	}
	if err := ValidateID(session); err != nil {
		return ValidationError{Field: "session_id", Message: "session_id contains invalid characters", Code: "SESSION_INVALID"}
	}
	return nil
}

func anyNonBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
