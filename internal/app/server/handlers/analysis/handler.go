package analysis

import "dcb/internal/app/services/svanalysis"

// AnalysisHandler 分析报告 HTTP 处理器
type AnalysisHandler struct {
	analysisService *svanalysis.AnalysisService
}

// NewAnalysisHandler 创建分析处理器实例
func NewAnalysisHandler(analysisService *svanalysis.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}
