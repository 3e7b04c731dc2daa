package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  name: dcb-worker
  env: test
  log_level: debug

mysql:
  dsn: "user:pass@tcp(127.0.0.1:3306)/warehouse?parseTime=true"

redis:
  addr: "127.0.0.1:6379"
  db: 1

lmstfy:
  host: "127.0.0.1"
  port: 7777
  namespace: dcb
  token: test-token

engine:
  default_depot: "7634"
  recommend_top_n: 5
  auto_recommend: true

workers:
  - name: depot-analyze
    queue_name: depot_analyze
    callback_queue: depot_analyze_callback
    subscriber:
      threads: 2
      rate: 100ms
      timeout: 3s
      ttr: 30s
      error_backoff: 1s
    processor:
      threads: 4
      buffer_size: 16
      timeout: 60s
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, sampleYAML))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "dcb-worker", cfg.App.Name)
	assert.Equal(t, "127.0.0.1", cfg.Lmstfy.Host)
	assert.Equal(t, 7777, cfg.Lmstfy.Port)

	require.Len(t, cfg.Workers, 1)
	worker := cfg.Workers[0]
	assert.Equal(t, "depot_analyze", worker.QueueName)
	assert.Equal(t, "depot_analyze_callback", worker.CallbackQueue)
	assert.Equal(t, 2, worker.Subscriber.Threads)
	assert.Equal(t, 30*time.Second, worker.Subscriber.TTR)
	assert.Equal(t, 16, worker.Processor.BufferSize)
}

func TestLoadAppliesEngineDefaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, sampleYAML))
	require.NoError(t, err)

	// 显式给出的值不被覆盖
	assert.Equal(t, 5, cfg.Engine.RecommendTopN)
	assert.True(t, cfg.Engine.AutoRecommend)

	// 缺省值回填
	assert.Equal(t, 30, cfg.Engine.DefaultLookbackDays)
	assert.Equal(t, 5, cfg.Engine.MinOrderFrequency)
	assert.Equal(t, "depot_analysis_complete", cfg.Engine.NotificationChannel)
	assert.Equal(t, "analysis:result:%s", cfg.Engine.ReportResultChanTmpl)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config failed")
}

func TestValidateMissingFields(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing app name", func(c *Config) { c.App.Name = "" }, "app.name is required"},
		{"missing mysql dsn", func(c *Config) { c.MySQL.DSN = "" }, "mysql.dsn is required"},
		{"missing lmstfy host", func(c *Config) { c.Lmstfy.Host = "" }, "lmstfy.host is required"},
		{"no workers", func(c *Config) { c.Workers = nil }, "at least one worker is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfigFile(t, sampleYAML))
			require.NoError(t, err)
			tc.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
