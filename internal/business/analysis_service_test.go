package business

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcb/internal/entity"
	"dcb/internal/model"
	"dcb/pkg/errorutil"
	"dcb/pkg/infra/redis"
)

type fakeStore struct {
	reportID string
	status   string
	errorMsg string
	result   *model.AnalysisResultData
	failWith error
}

func (f *fakeStore) UpdateAnalysisResult(_ context.Context, reportID string, result *model.AnalysisResultData, status string, errorMsg string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.reportID = reportID
	f.status = status
	f.errorMsg = errorMsg
	f.result = result
	return nil
}

type fakeNotifier struct {
	completeChannel string
	notification    *redis.AnalysisNotification
	channels        []string
	payloads        []string
	failWith        error
}

func (f *fakeNotifier) PublishAnalysisComplete(_ context.Context, channel string, n *redis.AnalysisNotification) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.completeChannel = channel
	f.notification = n
	return nil
}

func (f *fakeNotifier) Publish(_ context.Context, channel string, message string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.channels = append(f.channels, channel)
	f.payloads = append(f.payloads, message)
	return nil
}

type fakePublisher struct {
	queue string
	data  []byte
}

func (f *fakePublisher) Publish(queue string, data []byte, ttl, delay uint32) error {
	f.queue = queue
	f.data = data
	return nil
}

func newTestService(executor QueryExecutor, store *fakeStore, notifier *fakeNotifier, publisher *fakePublisher) *AnalysisService {
	analyzer := NewCompositeAnalyzer(executor, true)
	return NewAnalysisService(
		analyzer, store, notifier, publisher,
		"depot_analyze_callback", "depot_analysis_complete", "analysis:result:%s")
}

func TestExecuteAnalysisSuccess(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	publisher := &fakePublisher{}
	svc := newTestService(healthyExecutor(), store, notifier, publisher)

	err := svc.ExecuteAnalysis(context.Background(), analyzeInput())
	require.NoError(t, err)

	// 落库
	assert.Equal(t, "rpt-1", store.reportID)
	assert.Equal(t, entity.ReportStatusAnalyzed, store.status)
	assert.Empty(t, store.errorMsg)
	require.NotNil(t, store.result)
	assert.Len(t, store.result.Items, 4)

	// Smart Wait 频道推送
	require.Len(t, notifier.channels, 1)
	assert.Equal(t, "analysis:result:rpt-1", notifier.channels[0])

	// 完成广播
	assert.Equal(t, "depot_analysis_complete", notifier.completeChannel)
	require.NotNil(t, notifier.notification)
	assert.Equal(t, entity.ReportStatusAnalyzed, notifier.notification.Status)
	assert.Equal(t, "7634", notifier.notification.Depot)

	// 回调消息
	assert.Equal(t, "depot_analyze_callback", publisher.queue)
	var callback model.DepotAnalyzeCallback
	require.NoError(t, json.Unmarshal(publisher.data, &callback))
	assert.Equal(t, model.CallbackStatusSuccess, callback.Status)
	assert.Equal(t, "rpt-1", callback.ReportID)
	assert.Equal(t, "req-1", callback.RequestID)
	require.NotNil(t, callback.AnalysisResult)
}

func TestExecuteAnalysisInvalidDepotMarksFailed(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	publisher := &fakePublisher{}
	svc := newTestService(healthyExecutor(), store, notifier, publisher)

	input := analyzeInput()
	input.Depot = "DEPOT-X"

	err := svc.ExecuteAnalysis(context.Background(), input)
	require.NoError(t, err)

	// 校验失败不是流程失败：报告落库为 FAILED，回调照常发出
	assert.Equal(t, entity.ReportStatusFailed, store.status)
	assert.Contains(t, store.errorMsg, "invalid depot id")

	var callback model.DepotAnalyzeCallback
	require.NoError(t, json.Unmarshal(publisher.data, &callback))
	assert.Equal(t, model.CallbackStatusFailed, callback.Status)
	assert.Contains(t, callback.Error, "invalid depot id")
	assert.Nil(t, callback.AnalysisResult)
}

func TestExecuteAnalysisStoreFailure(t *testing.T) {
	store := &fakeStore{failWith: errors.New("connection reset")}
	notifier := &fakeNotifier{}
	publisher := &fakePublisher{}
	svc := newTestService(healthyExecutor(), store, notifier, publisher)

	err := svc.ExecuteAnalysis(context.Background(), analyzeInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist analysis result")

	// 落库失败是基础设施故障：可重试，交给 TTR 重投
	var infraErr *errorutil.Error
	require.ErrorAs(t, err, &infraErr)
	assert.True(t, infraErr.Retryable)
	assert.Contains(t, infraErr.DevDetails, "connection reset")

	// 落库失败则不发任何通知
	assert.Empty(t, notifier.channels)
	assert.Nil(t, publisher.data)
}

func TestExecuteAnalysisNotifierFailureRetryable(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{failWith: errors.New("redis: connection pool timeout")}
	publisher := &fakePublisher{}
	svc := newTestService(healthyExecutor(), store, notifier, publisher)

	err := svc.ExecuteAnalysis(context.Background(), analyzeInput())
	require.Error(t, err)

	var infraErr *errorutil.Error
	require.ErrorAs(t, err, &infraErr)
	assert.True(t, infraErr.Retryable)
}

func TestExecuteAnalysisResultPayloadShape(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	publisher := &fakePublisher{}
	svc := newTestService(healthyExecutor(), store, notifier, publisher)

	require.NoError(t, svc.ExecuteAnalysis(context.Background(), analyzeInput()))

	require.Len(t, notifier.payloads, 1)
	var payload struct {
		ReportID string                    `json:"report_id"`
		Status   string                    `json:"status"`
		Result   *model.AnalysisResultData `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(notifier.payloads[0]), &payload))
	assert.Equal(t, "rpt-1", payload.ReportID)
	assert.Equal(t, entity.ReportStatusAnalyzed, payload.Status)
	require.NotNil(t, payload.Result)
	assert.Len(t, payload.Result.Items, 4)
}
