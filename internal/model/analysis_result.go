package model

import "encoding/json"

// AnalysisResultData 分析结果容器
type AnalysisResultData struct {
	Items []AnalysisItem `json:"items"`
}

// AnalysisItem 单个分析项
type AnalysisItem struct {
	Type     string          `json:"type"`      // trend/root_cause/recommendations/category_focus
	Status   string          `json:"status"`    // SUCCESS/FAILED
	DataJSON json.RawMessage `json:"data_json"` // 具体数据
	Error    string          `json:"error,omitempty"`
}

// 分析项状态常量
const (
	AnalysisStatusSuccess = "SUCCESS"
	AnalysisStatusFailed  = "FAILED"
)

// 分析类型常量
const (
	AnalysisTypeTrend          = "trend"
	AnalysisTypeRootCause      = "root_cause"
	AnalysisTypeRecommendation = "recommendations"
	AnalysisTypeCategoryFocus  = "category_focus"
)
