package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eduprep/exam-service/internal/models"
	"github.com/eduprep/exam-service/internal/repositories"
	"github.com/eduprep/exam-service/internal/services"
	"github.com/eduprep/exam-service/internal/utils"
)

type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
}

func NewResultHandler(resultService services.ResultService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
	}
}

// SubmitResult stores a client-computed exam result
// @Summary Submit exam result
// @Tags results
// @Accept json
// @Produce json
// @Param result body models.ExamResult true "Computed result"
// @Success 201 {object} SuccessResponse{data=models.ExamResult}
// @Failure 400 {object} ErrorResponse
// @Router /exam-results [post]
func (h *ResultHandler) SubmitResult(c *gin.Context) {
	h.LogRequest(c, "Submitting exam result")

	var result models.ExamResult
	if err := c.ShouldBindJSON(&result); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	stored, err := h.resultService.Submit(c.Request.Context(), &result)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Success: true, Data: stored})
}

// GetResult returns one stored result
// @Summary Get exam result
// @Tags results
// @Produce json
// @Param id path uint true "Result ID"
// @Success 200 {object} SuccessResponse{data=models.ExamResult}
// @Failure 404 {object} ErrorResponse
// @Router /exam-results/{id} [get]
func (h *ResultHandler) GetResult(c *gin.Context) {
	id := h.parseUintParam(c, "id")
	if id == 0 {
		return
	}

	result, err := h.resultService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: result})
}

// ListExamResults lists stored results for one exam
// @Summary List exam results
// @Tags results
// @Produce json
// @Param exam_id path string true "Exam ID"
// @Success 200 {object} SuccessResponse{data=services.ResultListResponse}
// @Router /exams/{id}/results [get]
func (h *ResultHandler) ListExamResults(c *gin.Context) {
	examID := c.Param("id")
	h.LogRequest(c, "Listing exam results", "exam_id", examID)

	list, err := h.resultService.ListByExam(c.Request.Context(), examID, resultFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: list})
}

// ListStudentResults lists a student's stored results
// @Summary List student results
// @Tags results
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} SuccessResponse{data=services.ResultListResponse}
// @Router /students/{student_id}/results [get]
func (h *ResultHandler) ListStudentResults(c *gin.Context) {
	studentID := c.Param("student_id")
	h.LogRequest(c, "Listing student results", "student_id", studentID)

	list, err := h.resultService.ListByStudent(c.Request.Context(), studentID, resultFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: list})
}

// GetExamStats returns aggregated result statistics for one exam
// @Summary Get exam stats
// @Tags results
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} SuccessResponse{data=repositories.ExamStats}
// @Router /exams/{id}/stats [get]
func (h *ResultHandler) GetExamStats(c *gin.Context) {
	examID := c.Param("id")

	stats, err := h.resultService.GetExamStats(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: stats})
}

// ExportExamResults streams the exam's results as an XLSX download
// @Summary Export exam results
// @Tags results
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Exam ID"
// @Success 200 {file} binary
// @Router /exams/{id}/results/export [get]
func (h *ResultHandler) ExportExamResults(c *gin.Context) {
	examID := c.Param("id")
	h.LogRequest(c, "Exporting exam results", "exam_id", examID)

	data, err := h.resultService.ExportResults(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("exam-%s-results.xlsx", examID)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func resultFilters(c *gin.Context) repositories.ResultFilters {
	filters := repositories.ResultFilters{
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if limit, ok := parseIntQuery(c, "limit"); ok {
		filters.Limit = limit
	}
	if offset, ok := parseIntQuery(c, "offset"); ok {
		filters.Offset = offset
	}
	return filters
}

func parseIntQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}
