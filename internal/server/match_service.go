// file: internal/server/match_service.go
// version: 1.0.0
// guid: 3c7a9e1f-5b2d-4f8a-a6c1-9d0e2b4f7a13

package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/jdfalk/voicematch/internal/bank"
	"github.com/jdfalk/voicematch/internal/matcher"
	"github.com/jdfalk/voicematch/internal/metrics"
	"github.com/jdfalk/voicematch/internal/models"
	"github.com/jdfalk/voicematch/internal/normalize"
	"github.com/jdfalk/voicematch/internal/realtime"
)

// ErrOptionNotFound is returned when a confirmation names no option.
var ErrOptionNotFound = errors.New("value matches no option")

// MatchRequest is the body of POST /api/v1/match.
type MatchRequest struct {
	Transcript   string   `json:"transcript"`
	Alternatives []string `json:"alternatives,omitempty"`
	Language     string   `json:"language"`
	Candidates   []string `json:"candidates"`
	SessionID    string   `json:"session_id,omitempty"`
}

// QuestionMatchRequest is the body of POST /api/v1/questions/:id/match. The
// question's own language is used.
type QuestionMatchRequest struct {
	Transcript   string   `json:"transcript"`
	Alternatives []string `json:"alternatives,omitempty"`
	SessionID    string   `json:"session_id,omitempty"`
}

// ConfirmRequest is the body of POST /api/v1/questions/:id/confirm.
type ConfirmRequest struct {
	Value     string `json:"value" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
}

// MatchService decides transcripts and reports each decision.
type MatchService struct {
	store       *bank.Store
	hub         *realtime.EventHub
	policy      matcher.Policy
	defaultLang normalize.Language
}

func NewMatchService(store *bank.Store, hub *realtime.EventHub, policy matcher.Policy, defaultLang normalize.Language) *MatchService {
	if !defaultLang.Valid() {
		defaultLang = normalize.Tagalog
	}
	return &MatchService{store: store, hub: hub, policy: policy, defaultLang: defaultLang}
}

// Policy returns the thresholds in use.
func (ms *MatchService) Policy() matcher.Policy {
	return ms.policy
}

// ResolveLanguage parses a request language tag. Empty means the
// configured default.
func (ms *MatchService) ResolveLanguage(tag string) (normalize.Language, error) {
	if tag == "" {
		return ms.defaultLang, nil
	}
	return normalize.ParseLanguage(tag)
}

// Match decides an ad hoc request carrying its own candidates.
func (ms *MatchService) Match(req MatchRequest, requestID string) (matcher.Result, normalize.Language, error) {
	logger := NewServiceLogger("MatchService", requestID)

	if err := ValidateTranscripts(req.Transcript, req.Alternatives); err != nil {
		return matcher.Result{}, "", err
	}
	if err := ValidateCandidates(req.Candidates); err != nil {
		return matcher.Result{}, "", err
	}
	if err := ValidateSessionID(req.SessionID); err != nil {
		return matcher.Result{}, "", err
	}
	lang, err := ms.ResolveLanguage(req.Language)
	if err != nil {
		metrics.IncMatchError("language")
		return matcher.Result{}, "", err
	}

	cands := matcher.NewCandidates(lang, req.Candidates...)
	res, err := ms.decide(logger, req.Transcript, req.Alternatives, lang, cands, "", req.SessionID, requestID)
	return res, lang, err
}

// MatchQuestion decides a transcript against a bank question's options.
func (ms *MatchService) MatchQuestion(questionID string, req QuestionMatchRequest, requestID string) (matcher.Result, normalize.Language, error) {
	logger := NewServiceLogger("MatchService", requestID)

	if err := ValidateTranscripts(req.Transcript, req.Alternatives); err != nil {
		return matcher.Result{}, "", err
	}
	if err := ValidateSessionID(req.SessionID); err != nil {
		return matcher.Result{}, "", err
	}
	cands, lang, err := ms.store.Candidates(questionID)
	if err != nil {
		metrics.IncMatchError("question")
		return matcher.Result{}, "", err
	}

	res, err := ms.decide(logger, req.Transcript, req.Alternatives, lang, cands, questionID, req.SessionID, requestID)
	return res, lang, err
}

func (ms *MatchService) decide(logger *ServiceLogger, transcript string, alternatives []string, lang normalize.Language,
	cands []matcher.Candidate, questionID, sessionID, requestID string) (matcher.Result, error) {
	attempt := models.Attempt{QuestionID: questionID, Transcript: transcript, Alternatives: alternatives}

	start := time.Now()
	res, err := ms.policy.DecideAlternatives(attempt.Transcripts(), lang, cands)
	metrics.ObserveMatchDuration(time.Since(start))
	if err != nil {
		switch {
		case errors.Is(err, matcher.ErrEmptyCandidateSet):
			metrics.IncMatchError("empty_candidates")
		case errors.Is(err, matcher.ErrNoTranscript):
			metrics.IncMatchError("no_transcript")
		default:
			metrics.IncMatchError("internal")
		}
		logger.LogError("Decide", err)
		return res, err
	}

	metrics.ObserveDecision(lang.String(), string(res.Decision), res.Similarity)
	logger.LogOperation("Decide", map[string]any{
		"language":   lang.String(),
		"question":   questionID,
		"decision":   res.Decision,
		"similarity": fmt.Sprintf("%.3f", res.Similarity),
	})
	if res.Decision == matcher.Reject {
		logger.LogDebug("Decide", fmt.Sprintf("closest was %q at %.3f", res.Closest.Display, res.Similarity))
	}

	if ms.hub != nil {
		data := map[string]any{
			"request_id": requestID,
			"language":   lang.String(),
			"decision":   res.Decision,
			"similarity": res.Similarity,
			"index":      res.Index,
			"transcript": res.Transcript,
		}
		if questionID != "" {
			data["question_id"] = questionID
		}
		if res.Best != nil {
			data["best"] = res.Best.Display
		}
		ms.hub.SendMatchDecision(sessionID, data)
	}
	return res, nil
}

// Confirm resolves the learner's "yes, select this" on a suggestion to a
// question option.
func (ms *MatchService) Confirm(questionID string, req ConfirmRequest, requestID string) (matcher.Candidate, int, error) {
	logger := NewServiceLogger("MatchService", requestID)

	if err := ValidateSessionID(req.SessionID); err != nil {
		return matcher.Candidate{}, -1, err
	}
	cands, lang, err := ms.store.Candidates(questionID)
	if err != nil {
		return matcher.Candidate{}, -1, err
	}

	selected, idx, ok := matcher.Confirm(req.Value, lang, cands)
	if !ok {
		metrics.IncConfirmation("unmatched")
		err := fmt.Errorf("%w: %q", ErrOptionNotFound, req.Value)
		logger.LogError("Confirm", err)
		return matcher.Candidate{}, -1, err
	}
	metrics.IncConfirmation("matched")
	logger.LogOperation("Confirm", map[string]any{"question": questionID, "index": idx})

	if ms.hub != nil {
		ms.hub.SendMatchConfirmed(req.SessionID, map[string]any{
			"request_id":  requestID,
			"question_id": questionID,
			"selected":    selected.Display,
			"index":       idx,
		})
	}
	return selected, idx, nil
}
