// file: internal/server/response_types.go
// version: 2.0.0
// guid: 7f8a9b0c-1d2e-3f4a-5b6c-7d8e9f0a1b2c

package server

import (
	"github.com/jdfalk/voicematch/internal/bank"
	"github.com/jdfalk/voicematch/internal/matcher"
)

// ListResponse provides a consistent format for paginated list responses
type ListResponse struct {
	Items  any `json:"items"`
	Count  int `json:"count"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// NewListResponse creates a ListResponse for one page of total items.
func NewListResponse(items any, count, limit, offset, total int) *ListResponse {
	return &ListResponse{
		Items:  items,
		Count:  count,
		Limit:  limit,
		Offset: offset,
		Total:  total,
	}
}

// MessageResponse provides a consistent format for status messages
type MessageResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status       string         `json:"status"`
	Timestamp    int64          `json:"timestamp"`
	Version      string         `json:"version"`
	Bank         bank.Info      `json:"bank"`
	Policy       matcher.Policy `json:"policy"`
	EventClients int            `json:"event_clients"`
}

// MatchResponse carries a decision. The embedded result supplies decision,
// similarity, best, index and transcript.
type MatchResponse struct {
	matcher.Result
	Language   string `json:"language"`
	QuestionID string `json:"question_id,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
	// Closest is only filled for verbose requests.
	Closest *ClosestCandidate `json:"closest,omitempty"`
}

// ClosestCandidate exposes the runner-up on rejected decisions for debugging.
type ClosestCandidate struct {
	Candidate matcher.Candidate `json:"candidate"`
	Index     int               `json:"index"`
}

// ConfirmResponse reports the option a suggestion confirmation resolved to.
type ConfirmResponse struct {
	QuestionID string            `json:"question_id"`
	Selected   matcher.Candidate `json:"selected"`
	Index      int               `json:"index"`
}

// ReloadResponse reports the bank state after a reload.
type ReloadResponse struct {
	Message string    `json:"message"`
	Bank    bank.Info `json:"bank"`
}

// NewMatchResponse wraps a decision for output. verbose adds the closest
// candidate.
func NewMatchResponse(res matcher.Result, lang, questionID, sessionID string, verbose bool) MatchResponse {
	resp := MatchResponse{
		Result:     res,
		Language:   lang,
		QuestionID: questionID,
		SessionID:  sessionID,
	}
	if verbose && res.ClosestIndex >= 0 {
		resp.Closest = &ClosestCandidate{Candidate: res.Closest, Index: res.ClosestIndex}
	}
	return resp
}
