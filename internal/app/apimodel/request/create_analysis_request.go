package request

// CreateAnalysisRequest 创建分析报告请求
type CreateAnalysisRequest struct {
	Depot        string `json:"depot" binding:"required" example:"7634"`
	Question     string `json:"question" binding:"required" example:"why did cb% drop last week"`
	DaysLookback int    `json:"days_lookback" binding:"omitempty,min=1,max=365" example:"30"`
	TopN         int    `json:"top_n" binding:"omitempty,min=1,max=50" example:"10"`
}
