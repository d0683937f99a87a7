package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduprep/exam-service/internal/services"
	"github.com/eduprep/exam-service/internal/utils"
)

type HandlerManager struct {
	examHandler   *ExamHandler
	resultHandler *ResultHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		examHandler:   NewExamHandler(serviceManager.Exam(), logger),
		resultHandler: NewResultHandler(serviceManager.Result(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		exams := v1.Group("/exams")
		{
			exams.POST("", hm.examHandler.CreateExam)
			exams.GET("", hm.examHandler.ListExams)
			exams.GET("/:id", hm.examHandler.GetExam)
			exams.PUT("/:id/status", hm.examHandler.UpdateExamStatus)
			exams.DELETE("/:id", hm.examHandler.DeleteExam)

			exams.GET("/:id/results", hm.resultHandler.ListExamResults)
			exams.GET("/:id/results/export", hm.resultHandler.ExportExamResults)
			exams.GET("/:id/stats", hm.resultHandler.GetExamStats)
		}

		results := v1.Group("/exam-results")
		{
			results.POST("", hm.resultHandler.SubmitResult)
			results.GET("/:id", hm.resultHandler.GetResult)
		}

		v1.GET("/students/:student_id/results", hm.resultHandler.ListStudentResults)
	}
}

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "exam-service",
	})
}
