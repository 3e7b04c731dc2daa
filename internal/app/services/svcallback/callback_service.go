package svcallback

import (
	"context"
	"fmt"

	"dcb/internal/entity"
	"dcb/internal/model"
	"dcb/pkg/logger"
)

// ReportStore 报告读写接口（由 mysql.ReportDAO 实现）
type ReportStore interface {
	GetReportByID(ctx context.Context, reportID string) (*entity.AnalysisReport, error)
	UpdateAnalysisResult(ctx context.Context, reportID string, result *model.AnalysisResultData, status string, errorMsg string) error
}

// CallbackService 回调处理服务
// worker 在发回调前已落库，这里做对账：报告状态与回调不一致时以回调为准补写。
// 覆盖 worker 落库成功后进程崩溃、回调被 TTR 重投等场景。
type CallbackService struct {
	reportDAO ReportStore
	logger    logger.Logger
}

// NewCallbackService 创建回调服务实例
func NewCallbackService(reportDAO ReportStore, log logger.Logger) *CallbackService {
	return &CallbackService{
		reportDAO: reportDAO,
		logger:    log,
	}
}

// HandleCallback 处理分析回调
// 返回 error 表示处理失败（需要重试）
func (s *CallbackService) HandleCallback(ctx context.Context, callback *model.DepotAnalyzeCallback) error {
	report, err := s.reportDAO.GetReportByID(ctx, callback.ReportID)
	if err != nil {
		return fmt.Errorf("get report failed: %w", err)
	}

	expected := entity.ReportStatusAnalyzed
	if callback.Status == model.CallbackStatusFailed {
		expected = entity.ReportStatusFailed
	}

	// 状态已一致，幂等跳过
	if report.Status == expected {
		s.logger.Debugf(ctx, "[CallbackService] report %s already in status %s, skipping", report.ID, expected)
		return nil
	}

	s.logger.Warnf(ctx, "[CallbackService] report %s status %s does not match callback %s, reconciling",
		report.ID, report.Status, callback.Status)

	if err := s.reportDAO.UpdateAnalysisResult(ctx, callback.ReportID, callback.AnalysisResult, expected, callback.Error); err != nil {
		return fmt.Errorf("reconcile report failed: %w", err)
	}

	return nil
}
