package svanalysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"dcb/internal/app/modules/mdanalysis"
	"dcb/internal/engine"
	"dcb/internal/entity"
	pkgconfig "dcb/pkg/config"
	"dcb/pkg/infra/mysql"
)

// AnalysisService 分析服务，负责报告业务编排
type AnalysisService struct {
	reportDAO      *mysql.ReportDAO
	analysisModule *mdanalysis.AnalysisModule
	queries        *engine.QueryLibrary
	engineCfg      pkgconfig.EngineConfig
}

// NewAnalysisService 创建分析服务实例
func NewAnalysisService(
	reportDAO *mysql.ReportDAO,
	analysisModule *mdanalysis.AnalysisModule,
	engineCfg pkgconfig.EngineConfig,
) *AnalysisService {
	return &AnalysisService{
		reportDAO:      reportDAO,
		analysisModule: analysisModule,
		queries:        engine.NewQueryLibrary(),
		engineCfg:      engineCfg,
	}
}

// CreateAnalysis 创建分析报告（完整业务流程）
// 1. 校验仓编号
// 2. 问题分类并落库（状态 ANALYZING）
// 3. 发布到分析队列
// 4. Smart Wait（等待分析结果）
func (s *AnalysisService) CreateAnalysis(
	ctx context.Context,
	depot, question string,
	daysLookback, topN, waitSeconds int,
) (*entity.AnalysisReport, error) {
	if _, err := strconv.Atoi(depot); err != nil {
		return nil, fmt.Errorf("invalid depot id %q: must be numeric", depot)
	}
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	if daysLookback <= 0 {
		daysLookback = s.engineCfg.DefaultLookbackDays
	}
	if topN <= 0 {
		topN = s.engineCfg.RecommendTopN
	}

	questionType := engine.ClassifyQuestion(question)

	now := time.Now()
	report := &entity.AnalysisReport{
		ID:           uuid.New().String(),
		Depot:        depot,
		Question:     question,
		QuestionType: string(questionType),
		DaysLookback: daysLookback,
		TopN:         topN,
		Status:       entity.ReportStatusAnalyzing,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.reportDAO.CreateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("save report failed: %w", err)
	}

	// 发布到分析队列
	if err := s.analysisModule.PublishAnalyzeJob(ctx, report, s.engineCfg.MinOrderFrequency); err != nil {
		// 发布失败只记录日志，客户端可通过重试接口补发
		log.Printf("[WARN] publish analyze job failed: report_id=%s, error=%v", report.ID, err)
	}

	// Smart Wait（等待分析结果）
	if waitSeconds > 0 {
		timeout := time.Duration(waitSeconds) * time.Second
		result, err := s.analysisModule.WaitForAnalysisResult(ctx, report.ID, timeout)

		if err != nil {
			// 超时或订阅失败，只记录日志；报告状态仍为 ANALYZING，客户端轮询
			log.Printf("[WARN] wait for analysis result failed: report_id=%s, error=%v", report.ID, err)
			return report, nil
		}

		if result != nil {
			// worker 已落库，这里只更新内存中的实体用于本次响应
			report.Status = result.Status
			report.ErrorMessage = result.Error
			if result.Result != nil {
				resultJSON, err := json.Marshal(result.Result)
				if err != nil {
					return nil, fmt.Errorf("marshal analysis result failed: %w", err)
				}
				report.Result = resultJSON
			}
		}
	}

	return report, nil
}

// GetReport 查询分析报告
func (s *AnalysisService) GetReport(ctx context.Context, reportID string) (*entity.AnalysisReport, error) {
	return s.reportDAO.GetReportByID(ctx, reportID)
}

// ListReports 查询某仓最近的分析报告
func (s *AnalysisService) ListReports(ctx context.Context, depot string, limit int) ([]*entity.AnalysisReport, error) {
	return s.reportDAO.ListReportsByDepot(ctx, depot, limit)
}

// PreviewQuery 根据问题生成查询文本（不执行）
// 暴露问题分类与模板选择结果，供运营校验查询逻辑；
// 未指定仓编号时回落到配置的默认仓
func (s *AnalysisService) PreviewQuery(question, depot string, lookbackDays int) (string, map[string]string, error) {
	if depot == "" {
		depot = s.engineCfg.DefaultDepot
	}

	sql, _, metadata, err := s.queries.GenerateQueryFromQuestion(question, depot, engine.QueryOptions{
		LookbackDays:      lookbackDays,
		MinOrderFrequency: s.engineCfg.MinOrderFrequency,
	})
	if err != nil {
		return "", nil, err
	}
	return sql, metadata, nil
}
