package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmathstuition/cbt-platform/internal/model"
)

// ResponseRepository handles response data access.
type ResponseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository creates a new ResponseRepository.
func NewResponseRepository(pool *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{pool: pool}
}

// Upsert saves a student's answer for one question. A second save for the
// same (session, question) replaces the answer and its timestamp without
// creating a second row. Grading fields stay untouched until submission.
func (r *ResponseRepository) Upsert(ctx context.Context, sessionID, questionID uuid.UUID, answer model.Answer) error {
	raw, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO responses (session_id, question_id, answer)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id, question_id) DO UPDATE
		 SET answer = EXCLUDED.answer, answered_at = NOW()`,
		sessionID, questionID, raw)
	return err
}

// ListBySession retrieves all responses recorded for a session.
func (r *ResponseRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Response, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, question_id, answer, is_correct, marks_awarded, answered_at
		 FROM responses WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []model.Response
	for rows.Next() {
		var resp model.Response
		var raw []byte
		if err := rows.Scan(&resp.ID, &resp.SessionID, &resp.QuestionID, &raw,
			&resp.IsCorrect, &resp.MarksAwarded, &resp.AnsweredAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &resp.Answer); err != nil {
			return nil, fmt.Errorf("unmarshal answer for response %s: %w", resp.ID, err)
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}
