package analysis

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"dcb/internal/app/pkg/ginx"
)

// previewResponse 查询预览响应
type previewResponse struct {
	SQL      string            `json:"sql"`
	Metadata map[string]string `json:"metadata"`
}

// PreviewQuery 根据问题生成查询文本（不执行）
// GET /api/v1/depots/:depot/query?question=...&days=30
// GET /api/v1/query?question=...（走配置的默认仓）
func (h *AnalysisHandler) PreviewQuery(c *gin.Context) {
	depot := c.Param("depot")
	question := c.Query("question")
	if question == "" {
		ginx.BadRequest(c, "question required")
		return
	}

	days := 0
	if daysStr := c.Query("days"); daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 {
			days = d
		}
	}

	sql, metadata, err := h.analysisService.PreviewQuery(question, depot, days)
	if err != nil {
		ginx.BadRequest(c, err.Error())
		return
	}

	ginx.Success(c, previewResponse{
		SQL:      sql,
		Metadata: metadata,
	})
}
