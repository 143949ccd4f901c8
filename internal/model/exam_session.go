package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session states.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusSubmitted  SessionStatus = "submitted"
)

// ExamSession represents a student's single attempt at one exam. At most one
// in_progress session may exist per (exam, student); a submitted session is
// terminal and immutable.
type ExamSession struct {
	ID               uuid.UUID     `json:"id"`
	ExamID           uuid.UUID     `json:"exam_id"`
	StudentID        int           `json:"student_id"`
	Status           SessionStatus `json:"status"`
	TimeRemainingSec int           `json:"time_remaining_sec"`
	Score            *int          `json:"score,omitempty"`
	StartedAt        time.Time     `json:"started_at"`
	SubmittedAt      *time.Time    `json:"submitted_at,omitempty"`
}

// Deadline returns the authoritative end of the attempt: the moment the
// session started plus the time budget fixed at start.
func (s *ExamSession) Deadline() time.Time {
	return s.StartedAt.Add(time.Duration(s.TimeRemainingSec) * time.Second)
}

// StudentResult is one row of a student's results history, combining a
// submitted session with its exam's marking scheme.
type StudentResult struct {
	SessionID   uuid.UUID  `json:"session_id"`
	ExamID      uuid.UUID  `json:"exam_id"`
	ExamTitle   string     `json:"exam_title"`
	Score       int        `json:"score"`
	TotalMarks  int        `json:"total_marks"`
	PassMark    float64    `json:"pass_mark"`
	Percentage  float64    `json:"percentage"`
	Passed      bool       `json:"passed"`
	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at"`
}
