package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmathstuition/cbt-platform/internal/middleware"
	"github.com/dmathstuition/cbt-platform/internal/model"
	"github.com/dmathstuition/cbt-platform/internal/response"
	"github.com/dmathstuition/cbt-platform/internal/service"
	"github.com/dmathstuition/cbt-platform/internal/validator"
)

// ExamHandler handles exam listing and teacher-side status overrides.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// ListAvailable godoc
// GET /api/v1/student/exams
// Returns the school's scheduled and active exams.
func (h *ExamHandler) ListAvailable(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	exams, err := h.examService.ListAvailable(c.Request.Context(), claims.SchoolID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// GetExam godoc
// GET /api/v1/teacher/exams/:exam_id
func (h *ExamHandler) GetExam(c *gin.Context) {
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

	exam, err := h.examService.GetByID(c.Request.Context(), examID, claims.SchoolID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, exam)
}

// OverrideStatus godoc
// PATCH /api/v1/teacher/exams/:exam_id/status
// Manual lifecycle override, e.g. closing an exam early.
func (h *ExamHandler) OverrideStatus(c *gin.Context) {
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

	var req model.OverrideStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.OverrideStatus(c.Request.Context(), examID, claims.SchoolID, model.ExamStatus(req.Status))
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, exam)
}
