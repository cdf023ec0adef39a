package domain

import "time"

// QuestionKind discriminates the three fixed question shapes in a catalog.
type QuestionKind string

const (
	KindChoice   QuestionKind = "choice"
	KindBoolean  QuestionKind = "boolean"
	KindFreeText QuestionKind = "free_text"
)

// Choice is one selectable option of a choice question. Labels are
// conventionally "A".."E" and keep their bank order.
type Choice struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question is an immutable catalog entry, resolved once at load time.
// Exactly one shape per kind: choice carries Choices and CorrectLabel,
// boolean carries CorrectBool, free_text carries only CorrectText.
// CorrectText is always populated for feedback display.
type Question struct {
	ID           string       `json:"id"`
	Kind         QuestionKind `json:"kind"`
	Category     string       `json:"category"`
	Prompt       string       `json:"prompt"`
	Choices      []Choice     `json:"choices,omitempty"`
	CorrectLabel string       `json:"correctLabel,omitempty"`
	CorrectBool  bool         `json:"correctBool,omitempty"`
	CorrectText  string       `json:"correctText"`
}

// RoundStateVersion tags the serialized round schema so stored blobs can be
// migrated independently of any storage engine.
const RoundStateVersion = 1

// RoundState is the complete mutable state of one player's round. It is a
// plain serializable record: no live references, safe to persist and restore
// across reconnects and process restarts.
type RoundState struct {
	Version           int            `json:"version"`
	CatalogID         string         `json:"catalogId"`
	QuestionSequence  []string       `json:"questionSequence"`
	Position          int            `json:"position"`
	Score             int            `json:"score"`
	Streak            int            `json:"streak"`
	Bonus             int            `json:"bonus"`
	CorrectCount      int            `json:"correctCount"`
	CategoryTotals    map[string]int `json:"categoryTotals"`
	CategoryCorrect   map[string]int `json:"categoryCorrect"`
	PendingQuestionID string         `json:"pendingQuestionId,omitempty"`
	StartedAt         time.Time      `json:"startedAt"`
}

// Finished reports whether the round has run out of questions.
func (s *RoundState) Finished() bool {
	return s.Position >= len(s.QuestionSequence)
}

// Clone returns a deep copy so stores never hand out aliased mutable state.
func (s *RoundState) Clone() *RoundState {
	if s == nil {
		return nil
	}
	out := *s
	out.QuestionSequence = append([]string(nil), s.QuestionSequence...)
	out.CategoryTotals = make(map[string]int, len(s.CategoryTotals))
	for k, v := range s.CategoryTotals {
		out.CategoryTotals[k] = v
	}
	out.CategoryCorrect = make(map[string]int, len(s.CategoryCorrect))
	for k, v := range s.CategoryCorrect {
		out.CategoryCorrect[k] = v
	}
	return &out
}

// AnswerOutcome summarizes the grading of one submission.
type AnswerOutcome struct {
	QuestionID    string  `json:"questionId"`
	Correct       bool    `json:"correct"`
	Confidence    float64 `json:"confidence"`
	CorrectAnswer string  `json:"correctAnswer"`
	BonusAwarded  bool    `json:"bonusAwarded"`
	Score         int     `json:"score"`
	Streak        int     `json:"streak"`
	Finished      bool    `json:"finished"`
}

// RoundSummary is the frozen end-of-round report.
type RoundSummary struct {
	Score           int            `json:"score"`
	Bonus           int            `json:"bonus"`
	CorrectCount    int            `json:"correctCount"`
	Total           int            `json:"total"`
	CategoryTotals  map[string]int `json:"categoryTotals"`
	CategoryCorrect map[string]int `json:"categoryCorrect"`
	Early           bool           `json:"early"`
}

// RoundProgress is a lightweight snapshot of an in-flight round.
type RoundProgress struct {
	Score    int `json:"score"`
	Bonus    int `json:"bonus"`
	Position int `json:"position"`
	Total    int `json:"total"`
}
