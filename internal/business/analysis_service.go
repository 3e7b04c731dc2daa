package business

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dcb/internal/entity"
	"dcb/internal/model"
	"dcb/pkg/errorutil"
	"dcb/pkg/infra/redis"
)

// ReportStore 报告持久化接口（由 mysql.ReportDAO 实现）
type ReportStore interface {
	UpdateAnalysisResult(ctx context.Context, reportID string, result *model.AnalysisResultData, status string, errorMsg string) error
}

// ResultNotifier 结果通知接口（由 redis.PubSub 实现）
type ResultNotifier interface {
	PublishAnalysisComplete(ctx context.Context, channel string, notification *redis.AnalysisNotification) error
	Publish(ctx context.Context, channel string, message string) error
}

// CallbackPublisher 回调队列发布接口（由 lmstfy.Client 实现）
type CallbackPublisher interface {
	Publish(queue string, data []byte, ttl, delay uint32) error
}

// AnalysisService 分析服务
// 职责：执行分析 → 持久化报告 → Redis 推送结果（Smart Wait）→ 发送回调到 callback 队列
type AnalysisService struct {
	analyzer       *CompositeAnalyzer
	store          ReportStore
	notifier       ResultNotifier
	publisher      CallbackPublisher
	callbackQueue  string
	notifyChannel  string // 分析完成广播频道
	resultChanTmpl string // 单报告结果频道模板（analysis:result:%s）
}

// NewAnalysisService 创建分析服务实例
func NewAnalysisService(
	analyzer *CompositeAnalyzer,
	store ReportStore,
	notifier ResultNotifier,
	publisher CallbackPublisher,
	callbackQueue string,
	notifyChannel string,
	resultChanTmpl string,
) *AnalysisService {
	return &AnalysisService{
		analyzer:       analyzer,
		store:          store,
		notifier:       notifier,
		publisher:      publisher,
		callbackQueue:  callbackQueue,
		notifyChannel:  notifyChannel,
		resultChanTmpl: resultChanTmpl,
	}
}

// ExecuteAnalysis 执行分析并分发结果
// 返回 error 表示整个流程失败（分析失败、持久化失败或回调发送失败）；
// 数仓/Redis/队列的基础设施故障返回可重试错误，由 TTR 重投兜底
func (s *AnalysisService) ExecuteAnalysis(ctx context.Context, input *AnalyzeInput) error {
	// 1. 执行复合分析
	resultData, _, analyzeErr := s.analyzer.Analyze(ctx, input)

	// 2. 持久化报告状态与结果
	status := entity.ReportStatusAnalyzed
	errorMsg := ""
	if analyzeErr != nil {
		status = entity.ReportStatusFailed
		errorMsg = analyzeErr.Error()
	}

	if err := s.store.UpdateAnalysisResult(ctx, input.ReportID, resultData, status, errorMsg); err != nil {
		return errorutil.RetriableWithDetails("failed to persist analysis result", err.Error())
	}

	// 3. 推送结果到单报告频道（API 侧 Smart Wait 订阅此频道）
	if err := s.publishResult(ctx, input, resultData, status, errorMsg); err != nil {
		return err
	}

	// 4. 广播分析完成通知
	notification := &redis.AnalysisNotification{
		ReportID:  input.ReportID,
		Depot:     input.Depot,
		Status:    status,
		Timestamp: time.Now().Unix(),
	}
	if err := s.notifier.PublishAnalysisComplete(ctx, s.notifyChannel, notification); err != nil {
		return errorutil.RetriableWithDetails("failed to publish notification", err.Error())
	}

	// 5. 发送回调到 callback 队列
	if err := s.publishCallback(input, resultData, analyzeErr); err != nil {
		return err
	}

	return nil
}

// publishResult 推送完整结果到单报告频道
func (s *AnalysisService) publishResult(
	ctx context.Context,
	input *AnalyzeInput,
	resultData *model.AnalysisResultData,
	status string,
	errorMsg string,
) error {
	payload := map[string]interface{}{
		"report_id": input.ReportID,
		"status":    status,
		"result":    resultData,
	}
	if errorMsg != "" {
		payload["error"] = errorMsg
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal result payload: %w", err)
	}

	channel := fmt.Sprintf(s.resultChanTmpl, input.ReportID)
	if err := s.notifier.Publish(ctx, channel, string(payloadJSON)); err != nil {
		return errorutil.RetriableWithDetails("failed to publish result", err.Error())
	}

	return nil
}

// publishCallback 发送回调消息到 callback 队列
func (s *AnalysisService) publishCallback(
	input *AnalyzeInput,
	resultData *model.AnalysisResultData,
	analyzeErr error,
) error {
	callback := model.DepotAnalyzeCallback{
		RequestID:   input.RequestID,
		ReportID:    input.ReportID,
		Depot:       input.Depot,
		ProcessedAt: time.Now().Unix(),
	}

	if analyzeErr != nil {
		callback.Status = model.CallbackStatusFailed
		callback.Error = analyzeErr.Error()
	} else {
		callback.Status = model.CallbackStatusSuccess
		callback.AnalysisResult = resultData
	}

	callbackJSON, err := json.Marshal(callback)
	if err != nil {
		return fmt.Errorf("failed to marshal callback: %w", err)
	}

	// ttl=0 表示永不过期, delay=0 表示立即可用
	if err := s.publisher.Publish(s.callbackQueue, callbackJSON, 0, 0); err != nil {
		return errorutil.RetriableWithDetails("failed to publish callback", err.Error())
	}

	return nil
}
