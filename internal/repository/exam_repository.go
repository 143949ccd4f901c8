package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmathstuition/cbt-platform/internal/model"
)

const examColumns = `id, school_id, title, duration_minutes, total_marks, pass_mark,
		        start_at, end_at, status, created_at, updated_at`

// ExamRepository handles exam data access. Reads are school-scoped; writes
// are limited to the status field.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

func scanExam(row pgx.Row) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.SchoolID, &e.Title, &e.DurationMinutes, &e.TotalMarks,
		&e.PassMark, &e.StartAt, &e.EndAt, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// GetByID retrieves an exam within the caller's school scope.
// Returns model.ErrNotFound if absent or out of scope.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID, schoolID int) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1 AND school_id = $2`,
		id, schoolID))
}

// UpdateStatus updates an exam's status within the caller's school scope.
func (r *ExamRepository) UpdateStatus(ctx context.Context, id uuid.UUID, schoolID int, status model.ExamStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exams SET status = $1, updated_at = NOW() WHERE id = $2 AND school_id = $3`,
		status, id, schoolID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ListBySchool retrieves a school's exams filtered to the given statuses.
func (r *ExamRepository) ListBySchool(ctx context.Context, schoolID int, statuses ...model.ExamStatus) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+`
		 FROM exams
		 WHERE school_id = $1 AND status = ANY($2)
		 ORDER BY start_at NULLS LAST, created_at DESC`,
		schoolID, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.SchoolID, &e.Title, &e.DurationMinutes, &e.TotalMarks,
			&e.PassMark, &e.StartAt, &e.EndAt, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// ActivateDue promotes every scheduled exam whose start time has passed.
// Set-based and idempotent: a second call finds nothing left to promote.
func (r *ExamRepository) ActivateDue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET status = $1, updated_at = NOW()
		 WHERE status = $2 AND start_at IS NOT NULL AND start_at <= $3`,
		model.ExamStatusActive, model.ExamStatusScheduled, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CompleteDue promotes every active exam whose end time has passed.
func (r *ExamRepository) CompleteDue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET status = $1, updated_at = NOW()
		 WHERE status = $2 AND end_at IS NOT NULL AND end_at <= $3`,
		model.ExamStatusCompleted, model.ExamStatusActive, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
