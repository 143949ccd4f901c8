package model

import (
	"time"

	"github.com/google/uuid"
)

// Answer is a student's answer payload. SelectedID carries the chosen option
// for mcq/true_false questions; Text carries the typed answer for fill_blank.
type Answer struct {
	SelectedID string `json:"selected_id,omitempty"`
	Text       string `json:"text,omitempty"`
}

// Empty reports whether the payload carries no answer at all.
func (a Answer) Empty() bool {
	return a.SelectedID == "" && a.Text == ""
}

// Response is one student's answer to one question within a session.
// IsCorrect and MarksAwarded stay unset until the session is submitted.
// Unique per (session, question): a second save overwrites, never duplicates.
type Response struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"session_id"`
	QuestionID   uuid.UUID `json:"question_id"`
	Answer       Answer    `json:"answer"`
	IsCorrect    *bool     `json:"is_correct,omitempty"`
	MarksAwarded *int      `json:"marks_awarded,omitempty"`
	AnsweredAt   time.Time `json:"answered_at"`
}

// SaveAnswerRequest is the payload for saving an answer to one question.
type SaveAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required,uuid"`
	Answer     Answer `json:"answer" binding:"required"`
}
