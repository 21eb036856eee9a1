// file: internal/bank/bank.go
// version: 1.0.0
// guid: e2ed7f1c-3c63-439f-95b0-1fceaa4d1ff2

// Package bank loads the assessment question bank and serves each question's
// options as prepared match candidates.
package bank

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jdfalk/voicematch/internal/matcher"
	"github.com/jdfalk/voicematch/internal/models"
	"github.com/jdfalk/voicematch/internal/normalize"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"gopkg.in/yaml.v3"
)

var (
	// ErrQuestionNotFound is returned when an ID is not in the bank.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidBank is returned when a bank file fails validation.
	ErrInvalidBank = errors.New("invalid question bank")
)

// file is the on-disk layout.
type file struct {
	Questions []models.Question `yaml:"questions"`
}

// Bank is an immutable, validated set of questions.
type Bank struct {
	questions []models.Question
	byID      map[string]int
	langs     []normalize.Language
}

// Load reads and validates a YAML bank file.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return Parse(data)
}

// Parse validates YAML bank content.
func Parse(data []byte) (*Bank, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return New(nil)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}
	return New(f.Questions)
}

// New validates questions and builds a Bank. IDs must be unique and
// non-empty, languages supported and option lists non-empty.
func New(questions []models.Question) (*Bank, error) {
	b := &Bank{
		questions: make([]models.Question, 0, len(questions)),
		byID:      make(map[string]int, len(questions)),
		langs:     make([]normalize.Language, 0, len(questions)),
	}
	for i, q := range questions {
		q.ID = strings.TrimSpace(q.ID)
		if q.ID == "" {
			return nil, fmt.Errorf("%w: question %d has no id", ErrInvalidBank, i)
		}
		if _, dup := b.byID[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %q", ErrInvalidBank, q.ID)
		}
		lang, err := normalize.ParseLanguage(q.Language)
		if err != nil {
			return nil, fmt.Errorf("%w: question %q: %v", ErrInvalidBank, q.ID, err)
		}
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("%w: question %q has no options", ErrInvalidBank, q.ID)
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return nil, fmt.Errorf("%w: question %q option %d is blank", ErrInvalidBank, q.ID, j)
			}
		}
		q.Language = lang.String()
		b.byID[q.ID] = len(b.questions)
		b.questions = append(b.questions, q)
		b.langs = append(b.langs, lang)
	}
	return b, nil
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	return len(b.questions)
}

// List returns all questions in file order.
func (b *Bank) List() []models.Question {
	out := make([]models.Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// Get returns a question by ID.
func (b *Bank) Get(id string) (models.Question, error) {
	i, ok := b.byID[id]
	if !ok {
		return models.Question{}, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	return b.questions[i], nil
}

// Language returns the parsed language of a question.
func (b *Bank) Language(id string) (normalize.Language, error) {
	i, ok := b.byID[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	return b.langs[i], nil
}

// Candidates prepares a question's options for matching.
func (b *Bank) Candidates(id string) ([]matcher.Candidate, normalize.Language, error) {
	i, ok := b.byID[id]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	lang := b.langs[i]
	return matcher.NewCandidates(lang, b.questions[i].Options...), lang, nil
}

// SearchHit is one ranked search result.
type SearchHit struct {
	Question models.Question `json:"question"`
	Distance int             `json:"distance"`
}

// Search ranks questions whose ID, prompt or options fuzzily contain query.
// Lower distance ranks first; ties keep file order.
func (b *Bank) Search(query string) []SearchHit {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	var hits []SearchHit
	for i, q := range b.questions {
		targets := append([]string{q.ID, q.Prompt}, q.Options...)
		ranks := fuzzy.RankFindNormalizedFold(query, targets)
		if len(ranks) == 0 {
			continue
		}
		sort.Sort(ranks)
		hits = append(hits, SearchHit{Question: b.questions[i], Distance: ranks[0].Distance})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}
