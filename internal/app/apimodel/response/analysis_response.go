package response

import (
	"encoding/json"
	"time"

	"dcb/internal/entity"
)

// AnalysisResponse 分析报告响应（DTO）
type AnalysisResponse struct {
	ID           string          `json:"id"`
	Depot        string          `json:"depot"`
	Question     string          `json:"question"`
	QuestionType string          `json:"question_type"`
	Status       string          `json:"status"`
	Result       *AnalysisResult `json:"result,omitempty"`
	Error        string          `json:"error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// AnalysisResult 分析结果（DTO）
type AnalysisResult struct {
	Items []*AnalysisItem `json:"items"`
}

// AnalysisItem 分析项（DTO）
type AnalysisItem struct {
	Type     string      `json:"type"`
	Status   string      `json:"status"`
	DataJSON interface{} `json:"data_json"`
	Error    string      `json:"error,omitempty"`
}

// FromReportEntity 将报告实体转换为响应 DTO
func FromReportEntity(report *entity.AnalysisReport) *AnalysisResponse {
	resp := &AnalysisResponse{
		ID:           report.ID,
		Depot:        report.Depot,
		Question:     report.Question,
		QuestionType: report.QuestionType,
		Status:       report.Status,
		Error:        report.ErrorMessage,
		CreatedAt:    report.CreatedAt,
		UpdatedAt:    report.UpdatedAt,
	}

	if len(report.Result) > 0 {
		var result AnalysisResult
		// 结果列反序列化失败不阻断响应，result 字段留空
		if err := json.Unmarshal(report.Result, &result); err == nil {
			resp.Result = &result
		}
	}

	return resp
}

// FromReportEntities 批量转换
func FromReportEntities(reports []*entity.AnalysisReport) []*AnalysisResponse {
	out := make([]*AnalysisResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, FromReportEntity(r))
	}
	return out
}
