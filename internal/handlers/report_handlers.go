package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"restaurant_pos_backend/internal/models"
	"restaurant_pos_backend/internal/services"
	"restaurant_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler holds the report service.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// GenerateEODReport generates an end-of-day report for the requested window,
// optionally persisting it.
func (h *ReportHandler) GenerateEODReport(c *gin.Context) {
	var req models.EODReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "GenerateEODReport: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	generatedBy := usernameFromContext(c)

	data, saved, err := h.reportService.GenerateEODReport(req, generatedBy)
	if err != nil {
		utils.LogError(err, "GenerateEODReport: Error from reportService.GenerateEODReport")
		switch {
		case errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid report window.", err.Error()))
		case errors.Is(err, services.ErrUpstreamFetch):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadGateway, utils.ErrCodeUpstreamUnavailable, "Order source is unavailable.", err.Error()))
		case errors.Is(err, services.ErrInternalConsistency):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Report failed its consistency check.", "Internal error"))
		case errors.Is(err, services.ErrPersistence):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to save report.", "Internal error"))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to generate report.", "Internal error"))
		}
		return
	}

	resp := gin.H{"report": data}
	if saved != nil {
		resp["report_id"] = saved.ID
		resp["report_number"] = saved.ReportNumber
	}
	c.JSON(http.StatusOK, resp)
}

// GetEODReports lists saved reports with pagination and optional date filters.
func (h *ReportHandler) GetEODReports(c *gin.Context) {
	var filters models.ReportFilters

	if startDate := c.Query("start_date"); startDate != "" {
		filters.StartDate = &startDate
	}
	if endDate := c.Query("end_date"); endDate != "" {
		filters.EndDate = &endDate
	}
	filters.Page = 1
	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid page format.", "page must be a positive integer"))
			return
		}
		filters.Page = page
	}
	filters.PageSize = 10
	if pageSizeStr := c.Query("page_size"); pageSizeStr != "" {
		pageSize, err := strconv.Atoi(pageSizeStr)
		if err != nil || pageSize <= 0 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid page_size format.", "page_size must be a positive integer"))
			return
		}
		filters.PageSize = pageSize
	}

	reports, totalCount, err := h.reportService.GetReports(filters)
	if err != nil {
		utils.LogError(err, "GetEODReports: Error from reportService.GetReports")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to list reports.", "Internal error"))
		return
	}

	totalPages := 0
	if filters.PageSize > 0 {
		totalPages = (totalCount + filters.PageSize - 1) / filters.PageSize
	}
	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"pagination": models.Pagination{
			Page:       filters.Page,
			PageSize:   filters.PageSize,
			TotalCount: totalCount,
			TotalPages: totalPages,
		},
	})
}

// GetEODReportByID fetches a single saved report.
func (h *ReportHandler) GetEODReportByID(c *gin.Context) {
	reportID, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid report ID format.", err.Error()))
		return
	}

	report, err := h.reportService.GetReportByID(reportID)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Report not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetEODReportByID: Error from reportService.GetReportByID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to get report.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, report)
}

// DeleteEODReport deletes a saved report.
func (h *ReportHandler) DeleteEODReport(c *gin.Context) {
	reportID, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid report ID format.", err.Error()))
		return
	}

	if err := h.reportService.DeleteReport(reportID); err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Report not found.", err.Error()))
			return
		}
		utils.LogError(err, "DeleteEODReport: Error from reportService.DeleteReport")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete report.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Report deleted successfully."})
}

// PreviewReportNumber returns the next report number without reserving it.
func (h *ReportHandler) PreviewReportNumber(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"report_number": h.reportService.PreviewReportNumber()})
}

// usernameFromContext reads the username the auth middleware stored; falls
// back to "system" for unauthenticated internal callers.
func usernameFromContext(c *gin.Context) string {
	if v, exists := c.Get("username"); exists {
		if username, ok := v.(string); ok && username != "" {
			return username
		}
	}
	return "system"
}
