package models

import (
	"encoding/json"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Language is a supported interface language code
type Language string

const (
	LanguageRU Language = "ru"
	LanguageUZ Language = "uz"
)

// Phase is the position of a session in the form flow
type Phase string

const (
	PhaseSelectingLanguage Phase = "selecting_language"
	PhaseCollecting        Phase = "collecting"
	PhaseConfirming        Phase = "confirming"
	PhaseCompleted         Phase = "completed"
	PhaseCancelled         Phase = "cancelled"
)

// Terminal reports whether no further input is accepted in the phase
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseCancelled
}

// Answer is one validated form value
type Answer struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Session is one user's in-progress form submission, keyed by chat ID.
// Answers keep insertion order, which always equals field order.
type Session struct {
	ID        int64
	Language  Language
	Phase     Phase
	Cursor    int
	Answers   *orderedmap.OrderedMap[string, string]
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates a session waiting for the language choice
func NewSession(id int64, now time.Time) *Session {
	return &Session{
		ID:        id,
		Phase:     PhaseSelectingLanguage,
		Answers:   orderedmap.New[string, string](),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Answer returns the stored value for a field
func (s *Session) Answer(field string) (string, bool) {
	return s.Answers.Get(field)
}

// SetAnswer stores a validated value for a field
func (s *Session) SetAnswer(field, value string) {
	s.Answers.Set(field, value)
}

// ClearAnswers removes the values of the given fields
func (s *Session) ClearAnswers(fields ...string) {
	for _, f := range fields {
		s.Answers.Delete(f)
	}
}

// AnswerList returns the answers in field order
func (s *Session) AnswerList() []Answer {
	answers := make([]Answer, 0, s.Answers.Len())
	for pair := s.Answers.Oldest(); pair != nil; pair = pair.Next() {
		answers = append(answers, Answer{Field: pair.Key, Value: pair.Value})
	}
	return answers
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	c := *s
	c.Answers = orderedmap.New[string, string]()
	for pair := s.Answers.Oldest(); pair != nil; pair = pair.Next() {
		c.Answers.Set(pair.Key, pair.Value)
	}
	return &c
}

type sessionJSON struct {
	ID        int64     `json:"id"`
	Language  Language  `json:"language,omitempty"`
	Phase     Phase     `json:"phase"`
	Cursor    int       `json:"cursor"`
	Answers   []Answer  `json:"answers"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalJSON encodes the session with answers as an ordered list
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionJSON{
		ID:        s.ID,
		Language:  s.Language,
		Phase:     s.Phase,
		Cursor:    s.Cursor,
		Answers:   s.AnswerList(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	})
}

// UnmarshalJSON decodes a session produced by MarshalJSON
func (s *Session) UnmarshalJSON(data []byte) error {
	var raw sessionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.ID = raw.ID
	s.Language = raw.Language
	s.Phase = raw.Phase
	s.Cursor = raw.Cursor
	s.CreatedAt = raw.CreatedAt
	s.UpdatedAt = raw.UpdatedAt
	s.Answers = orderedmap.New[string, string]()
	for _, a := range raw.Answers {
		s.Answers.Set(a.Field, a.Value)
	}
	return nil
}

// Record is the finished snapshot of a session handed to the submission sink.
// It is never mutated after creation.
type Record struct {
	ID          string
	SessionID   int64
	Language    Language
	Answers     []Answer
	SubmittedAt time.Time
}

// NewRecord snapshots the session answers
func NewRecord(id string, s *Session, submittedAt time.Time) Record {
	return Record{
		ID:          id,
		SessionID:   s.ID,
		Language:    s.Language,
		Answers:     s.AnswerList(),
		SubmittedAt: submittedAt,
	}
}

// Value returns the answer for a field or an empty string
func (r Record) Value(field string) string {
	for _, a := range r.Answers {
		if a.Field == field {
			return a.Value
		}
	}
	return ""
}
