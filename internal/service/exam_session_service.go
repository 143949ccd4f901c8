package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dmathstuition/cbt-platform/internal/config"
	"github.com/dmathstuition/cbt-platform/internal/grading"
	"github.com/dmathstuition/cbt-platform/internal/model"
	"github.com/dmathstuition/cbt-platform/internal/shuffle"
)

// RestartDiscardsProgress names the restart policy: starting an exam while an
// in_progress session exists silently discards that session and its answers
// and begins a fresh attempt. Change the policy here, not in the
// repositories.
const RestartDiscardsProgress = true

// submitGrace is how far past the session deadline a submit is still
// accepted, absorbing client latency on the final call.
const submitGrace = 30 * time.Second

// ExamRegistry is the session manager's read view of exams, plus the single
// status write used by teacher overrides.
type ExamRegistry interface {
	GetByID(ctx context.Context, examID uuid.UUID, schoolID int) (*model.Exam, error)
	UpdateStatus(ctx context.Context, examID uuid.UUID, schoolID int, status model.ExamStatus) error
	ListBySchool(ctx context.Context, schoolID int, statuses ...model.ExamStatus) ([]model.Exam, error)
}

// QuestionBank supplies an exam's questions, answer keys included.
type QuestionBank interface {
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error)
}

// SessionStore persists exam sessions. StartFresh and SubmitGraded must be
// atomic with respect to concurrent callers (see the pgx implementation).
type SessionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error)
	GetByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.ExamSession, error)
	StartFresh(ctx context.Context, s *model.ExamSession) error
	SubmitGraded(ctx context.Context, sessionID uuid.UUID, score int, graded []grading.GradedResponse) error
	ListSubmittedByStudent(ctx context.Context, studentID int) ([]model.StudentResult, error)
}

// ResponseStore persists per-question answers.
type ResponseStore interface {
	Upsert(ctx context.Context, sessionID, questionID uuid.UUID, answer model.Answer) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Response, error)
}

// ExamSessionService owns the state machine for one student's attempt at one
// exam: start, answer delegation, and exactly-once submit.
type ExamSessionService struct {
	exams     ExamRegistry
	questions QuestionBank
	sessions  SessionStore
	responses ResponseStore
	rdb       *redis.Client // optional; best-effort cache and queue, nil in unit tests
	now       func() time.Time
	log       zerolog.Logger
}

// NewExamSessionService creates a new ExamSessionService. rdb may be nil;
// the service then skips the start-time cache and result queue.
func NewExamSessionService(
	exams ExamRegistry,
	questions QuestionBank,
	sessions SessionStore,
	responses ResponseStore,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExamSessionService {
	return &ExamSessionService{
		exams:     exams,
		questions: questions,
		sessions:  sessions,
		responses: responses,
		rdb:       rdb,
		now:       time.Now,
		log:       log.With().Str("component", "exam_session_service").Logger(),
	}
}

// StartedExam is what a student receives when an attempt begins: the session
// handle, the fixed time budget, and the redacted questions in their
// per-student order.
type StartedExam struct {
	SessionID        uuid.UUID            `json:"session_id"`
	TimeRemainingSec int                  `json:"time_remaining_sec"`
	TotalQuestions   int                  `json:"total_questions"`
	Questions        []model.SafeQuestion `json:"questions"`
}

// Start begins a fresh attempt at an exam. The exam must be active; a
// submitted prior attempt blocks with model.ErrAlreadyCompleted; an
// in_progress one is discarded per RestartDiscardsProgress. The returned
// question order is deterministic for the (exam, student) pair, so a student
// who restarts sees the same order.
func (s *ExamSessionService) Start(ctx context.Context, examID uuid.UUID, studentID, schoolID int) (*StartedExam, error) {
	exam, err := s.exams.GetByID(ctx, examID, schoolID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if exam.Status != model.ExamStatusActive {
		return nil, fmt.Errorf("exam status is %s: %w", exam.Status, model.ErrInvalidState)
	}

	existing, err := s.sessions.GetByExamAndStudent(ctx, examID, studentID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("check existing session: %w", err)
	}
	if existing != nil {
		if existing.Status == model.SessionStatusSubmitted {
			return nil, model.ErrAlreadyCompleted
		}
		if RestartDiscardsProgress {
			s.log.Info().
				Str("session_id", existing.ID.String()).
				Int("student_id", studentID).
				Msg("Discarding in_progress session on restart")
		}
	}

	questions, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, model.ErrNoQuestions
	}

	ordered := shuffle.Deterministic(shuffle.Key(examID.String(), studentID), questions)

	sess := &model.ExamSession{
		ExamID:           examID,
		StudentID:        studentID,
		TimeRemainingSec: exam.DurationMinutes * 60,
	}
	// StartFresh re-checks the exam status transactionally: the lifecycle
	// worker may have completed the exam since the read above.
	if err := s.sessions.StartFresh(ctx, sess); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	s.cacheStartTime(ctx, sess)

	safe := make([]model.SafeQuestion, len(ordered))
	for i, q := range ordered {
		safe[i] = q.Redact()
	}

	return &StartedExam{
		SessionID:        sess.ID,
		TimeRemainingSec: sess.TimeRemainingSec,
		TotalQuestions:   len(safe),
		Questions:        safe,
	}, nil
}

// SaveAnswer records a student's answer to one question. Valid only while
// the session is in_progress and its time budget has not elapsed. Upsert
// semantics: a repeat save for the same question overwrites.
func (s *ExamSessionService) SaveAnswer(ctx context.Context, sessionID, questionID uuid.UUID, studentID int, answer model.Answer) error {
	if answer.Empty() {
		return fmt.Errorf("empty answer payload: %w", model.ErrValidation)
	}

	sess, err := s.loadOwned(ctx, sessionID, studentID)
	if err != nil {
		return err
	}
	if sess.Status != model.SessionStatusInProgress {
		return model.ErrInvalidState
	}
	if s.now().After(sess.Deadline()) {
		return fmt.Errorf("time budget elapsed: %w", model.ErrInvalidState)
	}

	return s.responses.Upsert(ctx, sessionID, questionID, answer)
}

// Submit grades the attempt exactly once. The grade-and-transition step is a
// single transaction behind SessionStore.SubmitGraded; of two concurrent
// submitters exactly one scores, the other gets model.ErrAlreadyCompleted.
func (s *ExamSessionService) Submit(ctx context.Context, sessionID uuid.UUID, studentID, schoolID int) (*grading.Outcome, error) {
	sess, err := s.loadOwned(ctx, sessionID, studentID)
	if err != nil {
		return nil, err
	}
	if sess.Status == model.SessionStatusSubmitted {
		return nil, model.ErrAlreadyCompleted
	}
	if s.now().After(sess.Deadline().Add(submitGrace)) {
		return nil, fmt.Errorf("time budget elapsed: %w", model.ErrInvalidState)
	}

	exam, err := s.exams.GetByID(ctx, sess.ExamID, schoolID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}

	responses, err := s.responses.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	questions, err := s.questions.ListByExam(ctx, sess.ExamID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	graded, score := grading.Grade(responses, questions)

	if err := s.sessions.SubmitGraded(ctx, sessionID, score, graded); err != nil {
		return nil, err
	}

	outcome := grading.Evaluate(score, exam)

	s.clearStartTime(ctx, sess)
	s.enqueueResult(ctx, sess, exam, outcome)

	s.log.Info().
		Str("session_id", sessionID.String()).
		Int("student_id", studentID).
		Int("score", outcome.Score).
		Bool("passed", outcome.Passed).
		Msg("Session submitted")

	return &outcome, nil
}

// SessionState is the live state of an attempt, served on reload so the
// client can restore its countdown and answered set.
type SessionState struct {
	SessionID        uuid.UUID           `json:"session_id"`
	Status           model.SessionStatus `json:"status"`
	TimeRemainingSec int                 `json:"time_remaining_sec"`
	AnsweredCount    int                 `json:"answered_count"`
}

// State returns the remaining time and answered count for the caller's
// session. The countdown served here is advisory; SaveAnswer and Submit
// enforce the deadline server-side regardless.
func (s *ExamSessionService) State(ctx context.Context, sessionID uuid.UUID, studentID int) (*SessionState, error) {
	started, budget, err := s.cachedStartTime(ctx, sessionID, studentID)
	if err != nil {
		sess, dbErr := s.loadOwned(ctx, sessionID, studentID)
		if dbErr != nil {
			return nil, dbErr
		}
		if sess.Status != model.SessionStatusInProgress {
			return nil, model.ErrInvalidState
		}
		started, budget = sess.StartedAt, sess.TimeRemainingSec
		s.cacheStartTime(ctx, sess) // self-heal the cache
	}

	responses, err := s.responses.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}

	remaining := started.Add(time.Duration(budget) * time.Second).Sub(s.now())
	if remaining < 0 {
		remaining = 0
	}

	return &SessionState{
		SessionID:        sessionID,
		Status:           model.SessionStatusInProgress,
		TimeRemainingSec: int(remaining.Seconds()),
		AnsweredCount:    len(responses),
	}, nil
}

// ReviewItem pairs a question with the student's answer and its grading
// outcome for post-submission display.
type ReviewItem struct {
	Question     model.SafeQuestion `json:"question"`
	Answer       *model.Answer      `json:"answer,omitempty"`
	IsCorrect    *bool              `json:"is_correct,omitempty"`
	MarksAwarded *int               `json:"marks_awarded,omitempty"`
}

// SessionReview is the graded breakdown of a submitted session.
type SessionReview struct {
	SessionID   uuid.UUID       `json:"session_id"`
	ExamID      uuid.UUID       `json:"exam_id"`
	ExamTitle   string          `json:"exam_title"`
	Outcome     grading.Outcome `json:"outcome"`
	SubmittedAt *time.Time      `json:"submitted_at"`
	Items       []ReviewItem    `json:"items"`
}

// Review returns the graded per-question breakdown of the caller's submitted
// session. Only submitted sessions are reviewable.
func (s *ExamSessionService) Review(ctx context.Context, sessionID uuid.UUID, studentID, schoolID int) (*SessionReview, error) {
	sess, err := s.loadOwned(ctx, sessionID, studentID)
	if err != nil {
		return nil, err
	}
	if sess.Status != model.SessionStatusSubmitted {
		return nil, fmt.Errorf("session not submitted: %w", model.ErrInvalidState)
	}

	exam, err := s.exams.GetByID(ctx, sess.ExamID, schoolID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	questions, err := s.questions.ListByExam(ctx, sess.ExamID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	responses, err := s.responses.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}

	byQuestion := make(map[uuid.UUID]model.Response, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
	}

	items := make([]ReviewItem, 0, len(questions))
	for _, q := range shuffle.Deterministic(shuffle.Key(sess.ExamID.String(), studentID), questions) {
		item := ReviewItem{Question: q.Redact()}
		if r, ok := byQuestion[q.ID]; ok {
			answer := r.Answer
			item.Answer = &answer
			item.IsCorrect = r.IsCorrect
			item.MarksAwarded = r.MarksAwarded
		}
		items = append(items, item)
	}

	score := 0
	if sess.Score != nil {
		score = *sess.Score
	}

	return &SessionReview{
		SessionID:   sess.ID,
		ExamID:      sess.ExamID,
		ExamTitle:   exam.Title,
		Outcome:     grading.Evaluate(score, exam),
		SubmittedAt: sess.SubmittedAt,
		Items:       items,
	}, nil
}

// Results returns the caller's submitted-session history.
func (s *ExamSessionService) Results(ctx context.Context, studentID int) ([]model.StudentResult, error) {
	results, err := s.sessions.ListSubmittedByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

func (s *ExamSessionService) loadOwned(ctx context.Context, sessionID uuid.UUID, studentID int) (*model.ExamSession, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.StudentID != studentID {
		return nil, model.ErrForbidden
	}
	return sess, nil
}

// ─── Redis fast path (best-effort; PostgreSQL stays authoritative) ─────────

type cachedStart struct {
	StartedAtUnix int64 `json:"started_at"`
	BudgetSec     int   `json:"budget_sec"`
}

func (s *ExamSessionService) cacheStartTime(ctx context.Context, sess *model.ExamSession) {
	if s.rdb == nil {
		return
	}
	raw, _ := json.Marshal(cachedStart{
		StartedAtUnix: sess.StartedAt.Unix(),
		BudgetSec:     sess.TimeRemainingSec,
	})
	key := config.CacheKey.SessionStartKey(sess.ID.String(), sess.StudentID)
	ttl := time.Duration(sess.TimeRemainingSec)*time.Second + time.Hour
	if err := s.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache session start time")
	}
}

func (s *ExamSessionService) cachedStartTime(ctx context.Context, sessionID uuid.UUID, studentID int) (time.Time, int, error) {
	if s.rdb == nil {
		return time.Time{}, 0, redis.Nil
	}
	key := config.CacheKey.SessionStartKey(sessionID.String(), studentID)
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return time.Time{}, 0, err
	}
	var c cachedStart
	if err := json.Unmarshal(raw, &c); err != nil {
		return time.Time{}, 0, err
	}
	return time.Unix(c.StartedAtUnix, 0), c.BudgetSec, nil
}

func (s *ExamSessionService) clearStartTime(ctx context.Context, sess *model.ExamSession) {
	if s.rdb == nil {
		return
	}
	key := config.CacheKey.SessionStartKey(sess.ID.String(), sess.StudentID)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to clear session start cache")
	}
}

// enqueueResult pushes the outcome onto the result-notification queue for
// the notify worker. Best-effort: a queue failure never fails the submit.
func (s *ExamSessionService) enqueueResult(ctx context.Context, sess *model.ExamSession, exam *model.Exam, outcome grading.Outcome) {
	if s.rdb == nil {
		return
	}
	payload := map[string]any{
		"session_id":  sess.ID.String(),
		"exam_id":     exam.ID.String(),
		"exam_title":  exam.Title,
		"student_id":  sess.StudentID,
		"score":       outcome.Score,
		"total_marks": outcome.TotalMarks,
		"percentage":  outcome.Percentage,
		"passed":      outcome.Passed,
	}
	raw, _ := json.Marshal(payload)
	if err := s.rdb.RPush(ctx, config.WorkerKey.ResultNotificationsQueue, raw).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to enqueue result notification")
	}
}
