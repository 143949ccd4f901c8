package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmathstuition/cbt-platform/internal/middleware"
	"github.com/dmathstuition/cbt-platform/internal/model"
	"github.com/dmathstuition/cbt-platform/internal/response"
	"github.com/dmathstuition/cbt-platform/internal/service"
	"github.com/dmathstuition/cbt-platform/internal/validator"
)

// SessionHandler handles student-facing exam session endpoints.
type SessionHandler struct {
	sessionService *service.ExamSessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.ExamSessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// StartExam godoc
// POST /api/v1/student/exams/:exam_id/start
// Begins a fresh attempt. An in_progress attempt is discarded and restarted;
// a submitted one blocks with 409.
func (h *SessionHandler) StartExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	started, err := h.sessionService.Start(c.Request.Context(), examID, claims.UserID, claims.SchoolID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusCreated, started)
}

// SaveAnswer godoc
// PUT /api/v1/student/sessions/:session_id/answer
// Upserts the student's answer to one question.
func (h *SessionHandler) SaveAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SaveAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.sessionService.SaveAnswer(c.Request.Context(), sessionID, questionID, claims.UserID, req.Answer); err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"saved": true})
}

// SubmitExam godoc
// POST /api/v1/student/sessions/:session_id/submit
// Grades the attempt exactly once and returns the outcome.
func (h *SessionHandler) SubmitExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	outcome, err := h.sessionService.Submit(c.Request.Context(), sessionID, claims.UserID, claims.SchoolID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, outcome)
}

// GetSessionState godoc
// GET /api/v1/student/sessions/:session_id/state
// Covers page reload: the frontend restores the countdown and answered set.
func (h *SessionHandler) GetSessionState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.sessionService.State(c.Request.Context(), sessionID, claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// GetSessionReview godoc
// GET /api/v1/student/sessions/:session_id/review
// Returns the graded per-question breakdown of a submitted session.
func (h *SessionHandler) GetSessionReview(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	review, err := h.sessionService.Review(c.Request.Context(), sessionID, claims.UserID, claims.SchoolID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, review)
}

// GetResults godoc
// GET /api/v1/student/results
// Returns the student's submitted-session history.
func (h *SessionHandler) GetResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.sessionService.Results(c.Request.Context(), claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}
	if results == nil {
		results = []model.StudentResult{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// failDomain maps domain sentinel errors onto HTTP codes. Anything
// unrecognized is a 500.
func failDomain(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, model.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, model.ErrAlreadyCompleted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, model.ErrNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	case errors.Is(err, model.ErrInvalidState):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidStateValue)
	case errors.Is(err, model.ErrValidation):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
