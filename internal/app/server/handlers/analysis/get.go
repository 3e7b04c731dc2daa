package analysis

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"dcb/internal/app/apimodel/response"
	"dcb/internal/app/pkg/ginx"
)

// Get godoc
// @Summary      获取分析报告详情
// @Description  根据报告ID获取分析报告（包含趋势、根因与推荐结果）
// @Description
// @Description  使用场景：
// @Description  - 创建报告返回 code=3001 时，通过此接口轮询结果
// @Description  - 查询历史报告详情
// @Tags         analyses
// @Produce      json
// @Param        id path string true "报告ID（UUID）"
// @Success      200 {object} ginx.Response{data=response.AnalysisResponse} "查询成功"
// @Failure      400 {object} ginx.Response "参数错误"
// @Failure      404 {object} ginx.Response "报告不存在"
// @Router       /analyses/{id} [get]
func (h *AnalysisHandler) Get(c *gin.Context) {
	reportID := c.Param("id")
	if reportID == "" {
		ginx.BadRequest(c, "report_id required")
		return
	}

	report, err := h.analysisService.GetReport(c.Request.Context(), reportID)
	if err != nil {
		log.Printf("[ERROR] get report failed: %v", err)
		ginx.NotFound(c, "report not found")
		return
	}

	ginx.Success(c, response.FromReportEntity(report))
}

// List 查询某仓最近的分析报告
// GET /api/v1/depots/:depot/analyses?limit=20
func (h *AnalysisHandler) List(c *gin.Context) {
	depot := c.Param("depot")
	if depot == "" {
		ginx.BadRequest(c, "depot required")
		return
	}

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	reports, err := h.analysisService.ListReports(c.Request.Context(), depot, limit)
	if err != nil {
		log.Printf("[ERROR] list reports failed: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}

	ginx.Success(c, response.FromReportEntities(reports))
}
