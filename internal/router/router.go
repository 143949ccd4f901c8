package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dmathstuition/cbt-platform/internal/config"
	"github.com/dmathstuition/cbt-platform/internal/handler"
	"github.com/dmathstuition/cbt-platform/internal/middleware"
	"github.com/dmathstuition/cbt-platform/internal/response"
	"github.com/dmathstuition/cbt-platform/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session *handler.SessionHandler
	Exam    *handler.ExamHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── Student Group (JWT) ───────────────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.GET("/exams", handlers.Exam.ListAvailable)
		studentAPI.POST("/exams/:exam_id/start", handlers.Session.StartExam)
		studentAPI.PUT("/sessions/:session_id/answer", handlers.Session.SaveAnswer)
		studentAPI.POST("/sessions/:session_id/submit", handlers.Session.SubmitExam)
		studentAPI.GET("/sessions/:session_id/state", handlers.Session.GetSessionState)
		studentAPI.GET("/sessions/:session_id/review", handlers.Session.GetSessionReview)
		studentAPI.GET("/results", handlers.Session.GetResults)
	}

	// ─── Teacher Group (JWT) ───────────────────────────────────────────
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		teacherAPI.GET("/exams/:exam_id", handlers.Exam.GetExam)
		teacherAPI.PATCH("/exams/:exam_id/status", handlers.Exam.OverrideStatus)
	}

	return router
}
