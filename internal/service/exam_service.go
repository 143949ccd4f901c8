package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dmathstuition/cbt-platform/internal/model"
)

// ExamService exposes the exam registry to callers: the student lobby and
// the teacher's manual status override. Everything else about exams is
// ordinary record management handled elsewhere.
type ExamService struct {
	exams ExamRegistry
	log   zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(exams ExamRegistry, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams: exams,
		log:   log.With().Str("component", "exam_service").Logger(),
	}
}

// GetByID retrieves an exam within the caller's school.
func (s *ExamService) GetByID(ctx context.Context, examID uuid.UUID, schoolID int) (*model.Exam, error) {
	return s.exams.GetByID(ctx, examID, schoolID)
}

// ListAvailable returns the exams a student can see in their school:
// currently active ones plus upcoming scheduled ones.
func (s *ExamService) ListAvailable(ctx context.Context, schoolID int) ([]model.Exam, error) {
	exams, err := s.exams.ListBySchool(ctx, schoolID, model.ExamStatusScheduled, model.ExamStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, nil
}

// OverrideStatus forces an exam's status by explicit teacher action. This is
// the one path allowed to move status backwards; the lifecycle worker only
// ever promotes forward.
func (s *ExamService) OverrideStatus(ctx context.Context, examID uuid.UUID, schoolID int, status model.ExamStatus) (*model.Exam, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", status, model.ErrValidation)
	}

	if _, err := s.exams.GetByID(ctx, examID, schoolID); err != nil {
		return nil, err
	}
	if err := s.exams.UpdateStatus(ctx, examID, schoolID, status); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Str("status", string(status)).
		Msg("Exam status overridden")

	return s.exams.GetByID(ctx, examID, schoolID)
}
