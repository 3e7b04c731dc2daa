package mysql

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"dcb/internal/entity"
	"dcb/internal/model"
)

// ReportDAO 分析报告数据访问对象
type ReportDAO struct {
	db *gorm.DB
}

// NewReportDAO 创建 ReportDAO 实例
func NewReportDAO(db *gorm.DB) *ReportDAO {
	return &ReportDAO{
		db: db,
	}
}

// CreateReport 创建分析报告（初始状态 ANALYZING）
func (dao *ReportDAO) CreateReport(ctx context.Context, report *entity.AnalysisReport) error {
	result := dao.db.WithContext(ctx).Create(report)
	if result.Error != nil {
		return fmt.Errorf("failed to create report: %w", result.Error)
	}
	return nil
}

// UpdateAnalysisResult 更新报告的分析结果
// 参数：
//   - ctx: 上下文
//   - reportID: 报告 ID
//   - result: 分析结果数据
//   - status: 报告状态（ANALYZED/FAILED）
//   - errorMsg: 错误消息（失败时）
func (dao *ReportDAO) UpdateAnalysisResult(
	ctx context.Context,
	reportID string,
	result *model.AnalysisResultData,
	status string,
	errorMsg string,
) error {
	// 序列化分析结果为 JSON
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	// 构造更新字段
	updates := map[string]interface{}{
		"status": status,
		"result": resultJSON,
	}

	if errorMsg != "" {
		updates["error_message"] = errorMsg
	}

	// 执行更新
	dbResult := dao.db.WithContext(ctx).
		Model(&entity.AnalysisReport{}).
		Where("id = ?", reportID).
		Updates(updates)

	if dbResult.Error != nil {
		return fmt.Errorf("failed to update report: %w", dbResult.Error)
	}

	if dbResult.RowsAffected == 0 {
		return fmt.Errorf("report not found: %s", reportID)
	}

	return nil
}

// GetReportByID 根据报告 ID 获取报告
func (dao *ReportDAO) GetReportByID(ctx context.Context, reportID string) (*entity.AnalysisReport, error) {
	var report entity.AnalysisReport
	result := dao.db.WithContext(ctx).Where("id = ?", reportID).First(&report)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get report: %w", result.Error)
	}
	return &report, nil
}

// ListReportsByDepot 按仓库查询最近的报告（按创建时间倒序）
func (dao *ReportDAO) ListReportsByDepot(ctx context.Context, depot string, limit int) ([]*entity.AnalysisReport, error) {
	if limit <= 0 {
		limit = 20
	}

	var reports []*entity.AnalysisReport
	result := dao.db.WithContext(ctx).
		Where("depot = ?", depot).
		Order("created_at DESC").
		Limit(limit).
		Find(&reports)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to list reports: %w", result.Error)
	}
	return reports, nil
}
