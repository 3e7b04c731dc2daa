package business

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dcb/internal/engine"
	"dcb/internal/model"
)

// QueryExecutor 数仓查询执行器接口
// engine 只产出查询文本，行数据由执行器物化后交还
type QueryExecutor interface {
	Query(ctx context.Context, sql string) ([]map[string]interface{}, error)
}

// AnalyzeInput 分析输入参数（所有参数从 payload 传入）
type AnalyzeInput struct {
	RequestID         string `json:"request_id"`
	ReportID          string `json:"report_id"`
	Depot             string `json:"depot"`
	Question          string `json:"question"`
	DaysLookback      int    `json:"days_lookback"`
	MinOrderFrequency int    `json:"min_order_frequency"`
	TopN              int    `json:"top_n"`
}

// CompositeAnalyzer 复合分析处理器（组装所有分析结果）
// 各分析项独立执行：单项查询失败产出 FAILED 项，不中断其余分析
type CompositeAnalyzer struct {
	queries       *engine.QueryLibrary
	simulator     *engine.ImpactSimulator
	rootCause     *engine.RootCauseClassifier
	executor      QueryExecutor
	autoRecommend bool
}

// NewCompositeAnalyzer 创建复合分析处理器实例
func NewCompositeAnalyzer(executor QueryExecutor, autoRecommend bool) *CompositeAnalyzer {
	return &CompositeAnalyzer{
		queries:       engine.NewQueryLibrary(),
		simulator:     engine.NewImpactSimulator(),
		rootCause:     engine.NewRootCauseClassifier(),
		executor:      executor,
		autoRecommend: autoRecommend,
	}
}

// trendSection 趋势分析项数据
type trendSection struct {
	Question     string              `json:"question"`
	QuestionType string              `json:"question_type"`
	Summary      engine.TrendSummary `json:"summary"`
	Points       []engine.TrendPoint `json:"points"`
}

// recommendationSection 推荐分析项数据
type recommendationSection struct {
	CaptureRateNote string                          `json:"capture_rate_note"`
	Items           []engine.ImpactSimulationResult `json:"items"`
}

// Analyze 执行完整的仓库分析流程
// 返回 AnalysisResultData（含 trend/root_cause/recommendations/category_focus 四个分析项）
// 仓编号非法等校验错误直接返回 error（整个任务失败，不可重试）
func (a *CompositeAnalyzer) Analyze(ctx context.Context, input *AnalyzeInput) (*model.AnalysisResultData, engine.QuestionType, error) {
	questionType := engine.ClassifyQuestion(input.Question)

	// 仓编号校验前置：非法仓编号是整个任务的失败，而非单项失败
	trendSQL, err := a.queries.BuildTrendQuery(input.Depot, input.DaysLookback)
	if err != nil {
		return nil, questionType, err
	}

	items := make([]model.AnalysisItem, 0, 4)

	// 1. 趋势分析
	points, trendItem := a.analyzeTrend(ctx, input, questionType, trendSQL)
	items = append(items, trendItem)

	// 2. 缺货商品（root_cause 与推荐都依赖它）
	missingItems, missingErr := a.queryMissingItems(ctx, input)

	// 3. 根因分析
	current, rootCauseItem := a.analyzeRootCause(ctx, input, points, missingItems, missingErr)
	items = append(items, rootCauseItem)

	// 4. 商品推荐与品类聚焦
	if a.autoRecommend {
		items = append(items, a.recommendItems(points, current, missingItems, missingErr, input.TopN))
		items = append(items, a.recommendCategoryFocus(missingItems, missingErr))
	}

	return &model.AnalysisResultData{Items: items}, questionType, nil
}

// analyzeTrend 执行趋势分析项
func (a *CompositeAnalyzer) analyzeTrend(
	ctx context.Context,
	input *AnalyzeInput,
	questionType engine.QuestionType,
	trendSQL string,
) ([]engine.TrendPoint, model.AnalysisItem) {
	rows, err := a.executor.Query(ctx, trendSQL)
	if err != nil {
		return nil, failedItem(model.AnalysisTypeTrend, err)
	}

	points := engine.TrendPointsFromRows(rows)
	section := trendSection{
		Question:     input.Question,
		QuestionType: string(questionType),
		Summary:      engine.SummarizeTrend(points),
		Points:       points,
	}

	return points, successItem(model.AnalysisTypeTrend, section)
}

// queryMissingItems 查询缺货商品候选
func (a *CompositeAnalyzer) queryMissingItems(ctx context.Context, input *AnalyzeInput) ([]engine.MissingItemCandidate, error) {
	sql, err := a.queries.BuildMissingItemsQuery(input.Depot, input.DaysLookback, input.MinOrderFrequency)
	if err != nil {
		return nil, err
	}

	rows, err := a.executor.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("missing items query failed: %w", err)
	}

	return engine.MissingItemsFromRows(rows), nil
}

// analyzeRootCause 执行根因分析项
// 对比日取趋势最新数据点的日期，无趋势数据时取当天
func (a *CompositeAnalyzer) analyzeRootCause(
	ctx context.Context,
	input *AnalyzeInput,
	points []engine.TrendPoint,
	missingItems []engine.MissingItemCandidate,
	missingErr error,
) (engine.MetricSnapshot, model.AnalysisItem) {
	var current engine.MetricSnapshot

	if missingErr != nil {
		return current, failedItem(model.AnalysisTypeRootCause, missingErr)
	}

	compareDate := time.Now().Format("2006-01-02")
	if len(points) > 0 && points[0].Date != "" {
		compareDate = points[0].Date
	}

	sql, err := a.queries.BuildEntitlementDropQuery(input.Depot, compareDate, 0)
	if err != nil {
		return current, failedItem(model.AnalysisTypeRootCause, err)
	}

	rows, err := a.executor.Query(ctx, sql)
	if err != nil {
		return current, failedItem(model.AnalysisTypeRootCause, err)
	}
	if len(rows) == 0 {
		return current, failedItem(model.AnalysisTypeRootCause,
			fmt.Errorf("no metrics found for depot %s on %s", input.Depot, compareDate))
	}

	current = engine.SnapshotFromRow(input.Depot, rows[0])
	baseline := engine.BaselineFromRow(input.Depot, rows[0])
	analysis := a.rootCause.Analyze(current, baseline, missingItems)

	// 新仓或基线窗口断档：方差全部按 0 处理，结论前置提示
	if baseline.AvgCatchment == 0 && baseline.AvgEntitled == 0 && baseline.AvgAttained == 0 {
		note := fmt.Sprintf("No comparable baseline for depot %s; variances treated as zero.", input.Depot)
		analysis.Findings = append([]string{note}, analysis.Findings...)
	}

	return current, successItem(model.AnalysisTypeRootCause, analysis)
}

// recommendItems 执行商品推荐分析项
func (a *CompositeAnalyzer) recommendItems(
	points []engine.TrendPoint,
	current engine.MetricSnapshot,
	missingItems []engine.MissingItemCandidate,
	missingErr error,
	topN int,
) model.AnalysisItem {
	if missingErr != nil {
		return failedItem(model.AnalysisTypeRecommendation, missingErr)
	}
	if len(points) == 0 {
		return failedItem(model.AnalysisTypeRecommendation,
			fmt.Errorf("no trend data available for impact simulation"))
	}

	summary := engine.SummarizeTrend(points)
	catchment := current.CatchmentCount
	entitled := current.EntitledCount
	if catchment == 0 {
		// 根因分析缺数据时退回趋势最新数据点的计数
		catchment = points[0].CatchmentCount
		entitled = points[0].EntitledCount
	}

	results := a.simulator.RecommendItems(missingItems, summary.CurrentCB, catchment, entitled, topN)
	section := recommendationSection{
		CaptureRateNote: "Assumes 70% of substitution events convert to full orders once stocked",
		Items:           results,
	}

	return successItem(model.AnalysisTypeRecommendation, section)
}

// recommendCategoryFocus 执行品类聚焦分析项
func (a *CompositeAnalyzer) recommendCategoryFocus(
	missingItems []engine.MissingItemCandidate,
	missingErr error,
) model.AnalysisItem {
	if missingErr != nil {
		return failedItem(model.AnalysisTypeCategoryFocus, missingErr)
	}

	focus := a.simulator.RecommendCategoryFocus(missingItems, 0)
	return successItem(model.AnalysisTypeCategoryFocus, focus)
}

// successItem 构造成功分析项
func successItem(itemType string, data interface{}) model.AnalysisItem {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return model.AnalysisItem{
			Type:   itemType,
			Status: model.AnalysisStatusFailed,
			Error:  "Failed to marshal result: " + err.Error(),
		}
	}

	return model.AnalysisItem{
		Type:     itemType,
		Status:   model.AnalysisStatusSuccess,
		DataJSON: dataJSON,
	}
}

// failedItem 构造失败分析项
func failedItem(itemType string, err error) model.AnalysisItem {
	return model.AnalysisItem{
		Type:   itemType,
		Status: model.AnalysisStatusFailed,
		Error:  err.Error(),
	}
}
