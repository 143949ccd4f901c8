package model

import (
	"github.com/google/uuid"
)

// QuestionType enumerates the supported question formats.
type QuestionType string

const (
	QuestionTypeMCQ       QuestionType = "mcq"
	QuestionTypeTrueFalse QuestionType = "true_false"
	QuestionTypeFillBlank QuestionType = "fill_blank"
)

// Option is a single answer choice. For fill_blank questions the first
// option's text holds the expected answer.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

// Question represents a single exam question, including its answer key.
// It must never reach a student without going through Redact first.
type Question struct {
	ID         uuid.UUID    `json:"id"`
	ExamID     uuid.UUID    `json:"exam_id"`
	Type       QuestionType `json:"type"`
	Body       string       `json:"body"`
	Options    []Option     `json:"options"`
	Marks      int          `json:"marks"`
	Difficulty string       `json:"difficulty,omitempty"`
}

// SafeOption is an answer choice without the correctness flag.
type SafeOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SafeQuestion is the student-facing view of a question.
type SafeQuestion struct {
	ID      uuid.UUID    `json:"id"`
	Type    QuestionType `json:"type"`
	Body    string       `json:"body"`
	Marks   int          `json:"marks"`
	Options []SafeOption `json:"options,omitempty"`
}

// Redact strips all answer-key information from a question. Correctness
// flags are dropped for every type; fill_blank options are removed entirely
// because the option text is the expected answer.
func (q Question) Redact() SafeQuestion {
	safe := SafeQuestion{
		ID:    q.ID,
		Type:  q.Type,
		Body:  q.Body,
		Marks: q.Marks,
	}

	if q.Type == QuestionTypeFillBlank {
		return safe
	}

	safe.Options = make([]SafeOption, len(q.Options))
	for i, o := range q.Options {
		safe.Options[i] = SafeOption{ID: o.ID, Text: o.Text}
	}
	return safe
}
