package analyze

import (
	"context"
	"encoding/json"
	"fmt"

	"dcb/internal/business"
	"dcb/internal/domains/common"
	"dcb/internal/domains/common/job"
	"dcb/internal/domains/common/response"
	"dcb/internal/model"
)

// AnalyzeHandler 仓库分析 Handler
type AnalyzeHandler struct {
	ctx     context.Context
	meta    *job.Meta
	jobData *model.DepotAnalyzeData
}

// NewAnalyzeHandler 创建分析 Handler
// 解析标准化 Job 消息
func NewAnalyzeHandler(ctx context.Context, meta *job.Meta, payload interface{}) (common.HandlerServ, error) {
	// 解析 payload（业务数据）
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload failed: %w", err)
	}

	var bizData model.DepotAnalyzeBusinessData
	if err := json.Unmarshal(payloadBytes, &bizData); err != nil {
		return nil, fmt.Errorf("unmarshal business data failed: %w", err)
	}

	// 校验必填字段
	if bizData.ReportID == "" {
		return nil, fmt.Errorf("report_id is required")
	}
	if bizData.Depot == "" {
		return nil, fmt.Errorf("depot is required")
	}
	if bizData.Question == "" {
		return nil, fmt.Errorf("question is required")
	}

	// 包装为完整的 DepotAnalyzeData（兼容原有结构）
	jobData := &model.DepotAnalyzeData{
		RequestID:  meta.RequestID,
		OrgID:      meta.OrgID,
		ActionType: meta.ActionType,
		ID:         meta.ID,
		Data:       bizData,
	}

	return &AnalyzeHandler{
		ctx:     ctx,
		meta:    meta,
		jobData: jobData,
	}, nil
}

// GetProcess 处理分析请求
func (h *AnalyzeHandler) GetProcess() *response.Response {
	// 创建结果
	result := response.NewAnalysisResult()

	// 处理业务逻辑
	err := h.process(result)

	// 包装响应
	resp := &response.Response{}
	resp.WrapResponse(result, h.meta, err)

	return resp
}

// process 业务处理逻辑
func (h *AnalyzeHandler) process(result *response.AnalysisResult) error {
	// 从 Context 获取 AnalysisService
	analysisService, ok := h.ctx.Value("analysis_service").(*business.AnalysisService)
	if !ok || analysisService == nil {
		return fmt.Errorf("AnalysisService not found in context")
	}

	// 构造分析输入
	input := &business.AnalyzeInput{
		RequestID:         h.jobData.RequestID,
		ReportID:          h.jobData.Data.ReportID,
		Depot:             h.jobData.Data.Depot,
		Question:          h.jobData.Data.Question,
		DaysLookback:      h.jobData.Data.DaysLookback,
		MinOrderFrequency: h.jobData.Data.MinOrderFrequency,
		TopN:              h.jobData.Data.TopN,
	}

	// 调用 AnalysisService 执行分析并分发结果
	if err := analysisService.ExecuteAnalysis(h.ctx, input); err != nil {
		return err
	}

	return nil
}
