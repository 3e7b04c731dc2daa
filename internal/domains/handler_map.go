package domains

import (
	"dcb/internal/domains/common"
	"dcb/internal/domains/handlers/depot/analyze"
	"dcb/internal/model"
)

// HandlerMap 路由表（ActionType → Handler 映射）
var HandlerMap = map[string]common.HandlerServProc{
	model.ActionTypeDepotAnalyze: analyze.NewAnalyzeHandler,

	// 未来扩展示例：
	// "depot_backfill": backfill.NewBackfillHandler,
}
