package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the lifecycle states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "draft"
	ExamStatusScheduled ExamStatus = "scheduled"
	ExamStatusActive    ExamStatus = "active"
	ExamStatusCompleted ExamStatus = "completed"
)

// Valid reports whether s is one of the known exam statuses.
func (s ExamStatus) Valid() bool {
	switch s {
	case ExamStatusDraft, ExamStatusScheduled, ExamStatusActive, ExamStatusCompleted:
		return true
	}
	return false
}

// Exam represents a school-defined assessment. TotalMarks equals the sum of
// the marks of the attached questions. Status only moves forward, driven by
// the lifecycle worker or an explicit teacher override.
type Exam struct {
	ID              uuid.UUID  `json:"id"`
	SchoolID        int        `json:"school_id"`
	Title           string     `json:"title"`
	DurationMinutes int        `json:"duration_minutes"`
	TotalMarks      int        `json:"total_marks"`
	PassMark        float64    `json:"pass_mark"`
	StartAt         *time.Time `json:"start_at,omitempty"`
	EndAt           *time.Time `json:"end_at,omitempty"`
	Status          ExamStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// OverrideStatusRequest is the payload for a teacher forcing an exam status.
type OverrideStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft scheduled active completed"`
}
