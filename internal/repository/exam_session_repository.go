package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmathstuition/cbt-platform/internal/grading"
	"github.com/dmathstuition/cbt-platform/internal/model"
)

const sessionColumns = `id, exam_id, student_id, status, time_remaining_sec, score, started_at, submitted_at`

// ExamSessionRepository handles exam session data access. The two mutating
// paths, StartFresh and SubmitGraded, run inside transactions so a session
// is never left caught between states.
type ExamSessionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{pool: pool}
}

func scanSession(row pgx.Row) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := row.Scan(&s.ID, &s.ExamID, &s.StudentID, &s.Status,
		&s.TimeRemainingSec, &s.Score, &s.StartedAt, &s.SubmittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a session by id.
func (r *ExamSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1`, id))
}

// GetByExamAndStudent retrieves the session for an exam-student pair.
func (r *ExamSessionRepository) GetByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions
		 WHERE exam_id = $1 AND student_id = $2`, examID, studentID))
}

// StartFresh creates a new in_progress session, discarding any prior
// in_progress attempt and its responses in the same transaction. The exam's
// status is re-checked under the transaction so a concurrent lifecycle
// promotion cannot slip a start past a just-completed exam. Fills s.ID,
// s.StartedAt and s.Status on success.
//
// Returns model.ErrInvalidState if the exam is no longer active and
// model.ErrAlreadyCompleted if a submitted session exists for the pair.
func (r *ExamSessionRepository) StartFresh(ctx context.Context, s *model.ExamSession) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var status model.ExamStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM exams WHERE id = $1 FOR SHARE`, s.ExamID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrNotFound
		}
		return fmt.Errorf("recheck exam status: %w", err)
	}
	if status != model.ExamStatusActive {
		return model.ErrInvalidState
	}

	// Discard a prior in_progress attempt, responses first.
	_, err = tx.Exec(ctx,
		`DELETE FROM responses WHERE session_id IN (
		     SELECT id FROM exam_sessions
		     WHERE exam_id = $1 AND student_id = $2 AND status = $3)`,
		s.ExamID, s.StudentID, model.SessionStatusInProgress)
	if err != nil {
		return fmt.Errorf("discard responses: %w", err)
	}
	_, err = tx.Exec(ctx,
		`DELETE FROM exam_sessions
		 WHERE exam_id = $1 AND student_id = $2 AND status = $3`,
		s.ExamID, s.StudentID, model.SessionStatusInProgress)
	if err != nil {
		return fmt.Errorf("discard session: %w", err)
	}

	s.Status = model.SessionStatusInProgress
	err = tx.QueryRow(ctx,
		`INSERT INTO exam_sessions (exam_id, student_id, status, time_remaining_sec)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, started_at`,
		s.ExamID, s.StudentID, s.Status, s.TimeRemainingSec,
	).Scan(&s.ID, &s.StartedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// The unique (exam_id, student_id) constraint fired: either a
			// submitted session survives (never deleted above) or a
			// concurrent start won the race.
			existing, fetchErr := r.GetByExamAndStudent(ctx, s.ExamID, s.StudentID)
			if fetchErr == nil && existing.Status == model.SessionStatusSubmitted {
				return model.ErrAlreadyCompleted
			}
			return model.ErrInvalidState
		}
		return fmt.Errorf("insert session: %w", err)
	}

	return tx.Commit(ctx)
}

// SubmitGraded transitions a session to submitted and writes per-response
// grading results in one transaction. The status check is optimistic: the
// UPDATE only matches in_progress, so of two concurrent submitters exactly
// one grades and the other observes model.ErrAlreadyCompleted.
func (r *ExamSessionRepository) SubmitGraded(ctx context.Context, sessionID uuid.UUID, score int, graded []grading.GradedResponse) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $1, score = $2, submitted_at = NOW()
		 WHERE id = $3 AND status = $4`,
		model.SessionStatusSubmitted, score, sessionID, model.SessionStatusInProgress)
	if err != nil {
		return fmt.Errorf("transition session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the session does not exist or it is already submitted;
		// the service has checked existence before calling.
		return model.ErrAlreadyCompleted
	}

	if len(graded) > 0 {
		ids := make([]uuid.UUID, len(graded))
		corrects := make([]bool, len(graded))
		marks := make([]int, len(graded))
		for i, g := range graded {
			ids[i] = g.ResponseID
			corrects[i] = g.Correct
			marks[i] = g.MarksAwarded
		}

		_, err = tx.Exec(ctx, `
			UPDATE responses AS r
			SET is_correct = t.is_correct,
			    marks_awarded = t.marks_awarded
			FROM (
				SELECT u.id, u.is_correct, u.marks_awarded
				FROM UNNEST(
					$1::uuid[],
					$2::bool[],
					$3::int[]
				) AS u (id, is_correct, marks_awarded)
			) AS t
			WHERE r.id = t.id
		`, ids, corrects, marks)
		if err != nil {
			return fmt.Errorf("write grades: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListSubmittedByStudent retrieves a student's results history, most recent
// first, joined with each exam's marking scheme.
func (r *ExamSessionRepository) ListSubmittedByStudent(ctx context.Context, studentID int) ([]model.StudentResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT es.id, es.exam_id, e.title, es.score, e.total_marks, e.pass_mark,
		        es.started_at, es.submitted_at
		 FROM exam_sessions es
		 JOIN exams e ON es.exam_id = e.id
		 WHERE es.student_id = $1 AND es.status = $2
		 ORDER BY es.submitted_at DESC`,
		studentID, model.SessionStatusSubmitted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.StudentResult
	for rows.Next() {
		var res model.StudentResult
		if err := rows.Scan(&res.SessionID, &res.ExamID, &res.ExamTitle, &res.Score,
			&res.TotalMarks, &res.PassMark, &res.StartedAt, &res.SubmittedAt); err != nil {
			return nil, err
		}
		if res.TotalMarks > 0 {
			res.Percentage = float64(res.Score) / float64(res.TotalMarks) * 100
			res.Passed = res.Percentage >= res.PassMark
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
