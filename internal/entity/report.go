package entity

import (
	"time"

	"gorm.io/datatypes"
)

// AnalysisReport 分析报告实体（包含分析结果）
type AnalysisReport struct {
	// 基础字段
	ID           string `gorm:"column:id;primaryKey;type:varchar(64)"`
	Depot        string `gorm:"column:depot;type:varchar(32);not null;index:idx_depot_status"`
	Question     string `gorm:"column:question;type:varchar(512);not null"`
	QuestionType string `gorm:"column:question_type;type:varchar(32);not null"`

	// 分析参数
	DaysLookback int `gorm:"column:days_lookback;not null;default:30"`
	TopN         int `gorm:"column:top_n;not null;default:10"`

	// 分析状态与结果
	Status       string         `gorm:"column:status;type:varchar(16);not null;default:'ANALYZING';index:idx_depot_status"`
	Result       datatypes.JSON `gorm:"column:result;type:json"`
	ErrorMessage string         `gorm:"column:error_message;type:varchar(1024)"`

	// 时间戳
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (AnalysisReport) TableName() string {
	return "analysis_reports"
}

// 报告状态常量
const (
	ReportStatusAnalyzing = "ANALYZING"
	ReportStatusAnalyzed  = "ANALYZED"
	ReportStatusFailed    = "FAILED"
)
