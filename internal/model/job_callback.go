package model

// DepotAnalyzeCallback 仓库分析回调消息（标准化）
// 用于 worker → API 侧 callback consumer 的消息传递
type DepotAnalyzeCallback struct {
	RequestID      string              `json:"request_id"`                // 对应请求的 request_id（链路追踪）
	ReportID       string              `json:"report_id"`                 // 分析报告 ID
	Depot          string              `json:"depot"`                     // 仓库 ID
	Status         string              `json:"status"`                    // 回调状态: SUCCESS / FAILED
	AnalysisResult *AnalysisResultData `json:"analysis_result,omitempty"` // 分析结果（成功时返回）
	Error          string              `json:"error,omitempty"`           // 错误信息（失败时返回）
	ProcessedAt    int64               `json:"processed_at"`              // 处理时间戳（Unix timestamp）
}

// 回调状态常量
const (
	CallbackStatusSuccess = "SUCCESS" // 分析成功
	CallbackStatusFailed  = "FAILED"  // 分析失败
)
