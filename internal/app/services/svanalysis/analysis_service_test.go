package svanalysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "dcb/pkg/config"
)

func previewService() *AnalysisService {
	engineCfg := pkgconfig.EngineConfig{
		DefaultDepot:      "7634",
		MinOrderFrequency: 5,
	}
	// 查询预览只依赖模板库与引擎配置
	return NewAnalysisService(nil, nil, engineCfg)
}

func TestPreviewQueryDefaultDepot(t *testing.T) {
	svc := previewService()

	sql, metadata, err := svc.PreviewQuery("show me the cb% trend", "", 30)
	require.NoError(t, err)

	assert.Contains(t, sql, "depot_id = 7634")
	assert.Equal(t, "7634", metadata["depot"])
	assert.Equal(t, "cb_trend", metadata["question_type"])
}

func TestPreviewQueryExplicitDepotWins(t *testing.T) {
	svc := previewService()

	sql, metadata, err := svc.PreviewQuery("show me the cb% trend", "8812", 30)
	require.NoError(t, err)

	assert.Contains(t, sql, "depot_id = 8812")
	assert.Equal(t, "8812", metadata["depot"])
}

func TestPreviewQueryInvalidDepot(t *testing.T) {
	svc := previewService()

	_, _, err := svc.PreviewQuery("show me the cb% trend", "DEPOT-X", 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid depot id")
}
