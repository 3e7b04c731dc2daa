package model

// DepotAnalyzeJob 仓库分析任务消息（标准化）
// 用于 API 侧 → worker 的消息传递
type DepotAnalyzeJob struct {
	Payload DepotAnalyzePayload `json:"payload"`
}

// DepotAnalyzePayload Job 负载
type DepotAnalyzePayload struct {
	Data DepotAnalyzeData `json:"data"`
}

// DepotAnalyzeData Job 数据层
type DepotAnalyzeData struct {
	// 元信息
	RequestID  string `json:"request_id"`  // 请求 ID（全链路追踪）
	OrgID      string `json:"org_id"`      // 组织 ID（MVP 固定为 "0"）
	ActionType string `json:"action_type"` // 动作类型，固定值 "depot_analyze"
	ID         string `json:"id"`          // 分析报告 ID

	// 业务数据
	Data DepotAnalyzeBusinessData `json:"data"`
}

// DepotAnalyzeBusinessData 仓库分析业务数据
// 包含 worker 执行分析所需的全部参数
type DepotAnalyzeBusinessData struct {
	ReportID          string `json:"report_id"`           // 分析报告 ID
	Depot             string `json:"depot"`               // 仓库 ID（数字字符串）
	Question          string `json:"question"`            // 运营提出的自然语言问题
	DaysLookback      int    `json:"days_lookback"`       // 回看天数（0 表示默认）
	MinOrderFrequency int    `json:"min_order_frequency"` // 缺货商品最小出现次数（0 表示默认）
	TopN              int    `json:"top_n"`               // 推荐条数（0 表示默认）
}

// ActionTypeDepotAnalyze 仓库分析动作类型
const ActionTypeDepotAnalyze = "depot_analyze"
