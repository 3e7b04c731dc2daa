package framework

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bitleak/lmstfy/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcb/pkg/lmstfyx"
)

type fakeSource struct {
	mu       sync.Mutex
	messages []*Message
	acked    []string
	consumed int
}

func newFakeSource(n int) *fakeSource {
	s := &fakeSource{}
	for i := 0; i < n; i++ {
		s.messages = append(s.messages, &Message{
			ID:    fmt.Sprintf("job-%d", i),
			Queue: "depot_analyze",
			Data:  []byte(`{"payload":{"data":{"action_type":"depot_analyze"}}}`),
		})
	}
	return s
}

func (s *fakeSource) Consume(_ string, _ time.Duration, _ time.Duration) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consumed >= len(s.messages) {
		// 队列空，模拟拉取超时
		return nil, nil
	}
	msg := s.messages[s.consumed]
	s.consumed++
	return msg, nil
}

func (s *fakeSource) Ack(_ string, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acked = append(s.acked, jobID)
	return nil
}

func (s *fakeSource) ackedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.acked...)
}

type testLogger struct{}

func (testLogger) Debugf(context.Context, string, ...interface{}) {}
func (testLogger) Infof(context.Context, string, ...interface{})  {}
func (testLogger) Warnf(context.Context, string, ...interface{})  {}
func (testLogger) Errorf(context.Context, string, ...interface{}) {}

func subscriberConfig() *SubscriberConfig {
	return &SubscriberConfig{
		QueueName:    "depot_analyze",
		Concurrency:  2,
		Timeout:      10 * time.Millisecond,
		TTR:          time.Second,
		Rate:         time.Millisecond,
		ErrorBackoff: time.Millisecond,
	}
}

func processorConfig() *ProcessorConfig {
	return &ProcessorConfig{
		Concurrency: 2,
		BufferSize:  8,
		Timeout:     time.Second,
	}
}

func TestPipelineProcessesAndAcks(t *testing.T) {
	source := newFakeSource(5)

	var mu sync.Mutex
	processed := make([]string, 0, 5)
	proc := func(_ context.Context, job *client.Job) *lmstfyx.JobResp {
		mu.Lock()
		processed = append(processed, job.ID)
		mu.Unlock()
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusSuccess}
	}

	sub := NewSubscriber(subscriberConfig(), source, testLogger{})
	processor := NewProcessor(processorConfig(), proc, source, testLogger{})
	inputChan := make(chan *Message, 8)

	ctx := context.Background()
	require.NoError(t, processor.Start(ctx, inputChan))
	require.NoError(t, sub.Start(ctx, inputChan))

	// 等待全部消息被处理
	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		done := len(processed) == 5
		mu.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for messages to be processed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// 四步关闭：Subscriber 先停，Processor 再 Drain
	sub.Stop()
	sub.Wait()
	processor.SignalShutdown()
	processor.Wait()

	assert.ElementsMatch(t,
		[]string{"job-0", "job-1", "job-2", "job-3", "job-4"},
		source.ackedIDs())
}

func TestPipelineDoesNotAckOnBury(t *testing.T) {
	source := newFakeSource(3)

	proc := func(_ context.Context, _ *client.Job) *lmstfyx.JobResp {
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
	}

	sub := NewSubscriber(subscriberConfig(), source, testLogger{})
	processor := NewProcessor(processorConfig(), proc, source, testLogger{})
	inputChan := make(chan *Message, 8)

	ctx := context.Background()
	require.NoError(t, processor.Start(ctx, inputChan))
	require.NoError(t, sub.Start(ctx, inputChan))

	time.Sleep(100 * time.Millisecond)

	sub.Stop()
	sub.Wait()
	processor.SignalShutdown()
	processor.Wait()

	// 未 ACK 的消息交给 lmstfy 按 TTR 重投
	assert.Empty(t, source.ackedIDs())
}

func TestSubscriberSurvivesConsumeErrors(t *testing.T) {
	source := &flakySource{inner: newFakeSource(2)}

	var mu sync.Mutex
	processed := 0
	proc := func(_ context.Context, _ *client.Job) *lmstfyx.JobResp {
		mu.Lock()
		processed++
		mu.Unlock()
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusSuccess}
	}

	sub := NewSubscriber(subscriberConfig(), source, testLogger{})
	processor := NewProcessor(processorConfig(), proc, source, testLogger{})
	inputChan := make(chan *Message, 8)

	ctx := context.Background()
	require.NoError(t, processor.Start(ctx, inputChan))
	require.NoError(t, sub.Start(ctx, inputChan))

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		done := processed == 2
		mu.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatal("subscriber did not recover from consume errors")
		case <-time.After(5 * time.Millisecond):
		}
	}

	sub.Stop()
	sub.Wait()
	processor.SignalShutdown()
	processor.Wait()
}

// flakySource 每次成功拉取前先失败一次
type flakySource struct {
	mu    sync.Mutex
	inner *fakeSource
	calls int
}

func (s *flakySource) Consume(queue string, timeout time.Duration, ttr time.Duration) (*Message, error) {
	s.mu.Lock()
	s.calls++
	fail := s.calls%2 == 1
	s.mu.Unlock()
	if fail {
		return nil, errors.New("connection refused")
	}
	return s.inner.Consume(queue, timeout, ttr)
}

func (s *flakySource) Ack(queue string, jobID string) error {
	return s.inner.Ack(queue, jobID)
}
