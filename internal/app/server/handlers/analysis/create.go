package analysis

import (
	"fmt"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"dcb/internal/app/apimodel/request"
	"dcb/internal/app/apimodel/response"
	"dcb/internal/app/pkg/ginx"
	"dcb/internal/entity"
)

// Create 创建分析报告接口
// POST /api/v1/analyses?wait=10
func (h *AnalysisHandler) Create(c *gin.Context) {
	waitSeconds := 0
	if waitStr := c.Query("wait"); waitStr != "" {
		if w, err := strconv.Atoi(waitStr); err == nil && w > 0 {
			waitSeconds = w
		}
	}

	var req request.CreateAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	report, err := h.analysisService.CreateAnalysis(
		c.Request.Context(), req.Depot, req.Question, req.DaysLookback, req.TopN, waitSeconds)
	if err != nil {
		log.Printf("[ERROR] create analysis failed: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}

	if report.Status == entity.ReportStatusAnalyzing {
		pollURL := fmt.Sprintf("/api/v1/analyses/%s", report.ID)
		ginx.Processing(c, report.ID, pollURL)
		return
	}

	ginx.Success(c, response.FromReportEntity(report))
}
