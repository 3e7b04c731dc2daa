package mdanalysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dcb/internal/entity"
	"dcb/internal/model"
	"dcb/pkg/infra/redis"
	"dcb/pkg/lmstfy"
)

// AnalysisModule 分析模块
// 职责：
// 1. 组装 Lmstfy 和 Redis 客户端
// 2. 包含分析任务相关的业务逻辑（消息格式构造、频道命名规则）
type AnalysisModule struct {
	lmstfyClient   *lmstfy.Client
	pubsub         *redis.PubSub
	queueName      string
	resultChanTmpl string
}

// NewAnalysisModule 创建分析模块实例
func NewAnalysisModule(lmstfyClient *lmstfy.Client, pubsub *redis.PubSub, queueName, resultChanTmpl string) *AnalysisModule {
	return &AnalysisModule{
		lmstfyClient:   lmstfyClient,
		pubsub:         pubsub,
		queueName:      queueName,
		resultChanTmpl: resultChanTmpl,
	}
}

// ResultPayload 单报告结果频道上的消息体（worker 推送）
type ResultPayload struct {
	ReportID string                    `json:"report_id"`
	Status   string                    `json:"status"`
	Result   *model.AnalysisResultData `json:"result"`
	Error    string                    `json:"error,omitempty"`
}

// PublishAnalyzeJob 发布仓库分析任务到队列
// 业务逻辑：构造标准化消息格式（包含 RequestID, ActionType, OrgID 等）
func (m *AnalysisModule) PublishAnalyzeJob(ctx context.Context, report *entity.AnalysisReport, minOrderFrequency int) error {
	message := model.DepotAnalyzeJob{
		Payload: model.DepotAnalyzePayload{
			Data: model.DepotAnalyzeData{
				RequestID:  uuid.New().String(), // 生成请求 ID 用于全链路追踪
				OrgID:      "0",                 // MVP 固定值
				ActionType: model.ActionTypeDepotAnalyze,
				ID:         report.ID,
				Data: model.DepotAnalyzeBusinessData{
					ReportID:          report.ID,
					Depot:             report.Depot,
					Question:          report.Question,
					DaysLookback:      report.DaysLookback,
					MinOrderFrequency: minOrderFrequency,
					TopN:              report.TopN,
				},
			},
		},
	}

	// ttl=0 表示永不过期, delay=0 表示立即可用
	if _, err := m.lmstfyClient.PublishJSON(m.queueName, message, 0, 0); err != nil {
		return fmt.Errorf("publish analyze job failed: %w", err)
	}
	return nil
}

// WaitForAnalysisResult 等待分析结果（Smart Wait）
// 业务逻辑：
// 1. 知道订阅哪个频道（业务约定：analysis:result:{reportID}）
// 2. 解析分析结果
func (m *AnalysisModule) WaitForAnalysisResult(ctx context.Context, reportID string, timeout time.Duration) (*ResultPayload, error) {
	channel := fmt.Sprintf(m.resultChanTmpl, reportID)

	payload, err := m.pubsub.SubscribeOnce(ctx, channel, timeout)
	if err != nil {
		return nil, err
	}

	var result ResultPayload
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, err
	}

	return &result, nil
}
