package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTrendQuery(t *testing.T) {
	lib := NewQueryLibrary()

	sql, err := lib.BuildTrendQuery("7634", 30)
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM depot_metrics_daily")
	assert.Contains(t, sql, "depot_id = 7634")
	assert.Contains(t, sql, "DATE_SUB(CURRENT_DATE(), INTERVAL 30 DAY)")
	assert.Contains(t, sql, "NULLIF(catchment_order_cnt, 0)")
	assert.Contains(t, sql, "NULLIF(entitled_order_cnt, 0)")
	assert.Contains(t, sql, "ORDER BY delivery_date DESC")
}

func TestBuildTrendQueryInvalidDepot(t *testing.T) {
	lib := NewQueryLibrary()

	sql, err := lib.BuildTrendQuery("abc", 30)
	assert.Error(t, err)
	assert.Empty(t, sql)
}

func TestBuildMissingItemsQuery(t *testing.T) {
	lib := NewQueryLibrary()

	sql, err := lib.BuildMissingItemsQuery("7634", 7, 5)
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM depot_order_items")
	assert.Contains(t, sql, "in_assortment = 0")
	assert.Contains(t, sql, "HAVING COUNT(DISTINCT order_no) >= 5")
	assert.Contains(t, sql, "DATE_SUB(CURRENT_DATE(), INTERVAL 7 DAY)")
	assert.Contains(t, sql, "substituted_flag = 1")
	assert.Contains(t, sql, "ORDER BY order_cnt DESC")
	assert.Contains(t, sql, "LIMIT 100")
}

func TestBuildMissingItemsQueryDefaults(t *testing.T) {
	lib := NewQueryLibrary()

	sql, err := lib.BuildMissingItemsQuery("7634", 0, 0)
	require.NoError(t, err)

	assert.Contains(t, sql, "INTERVAL 7 DAY")
	assert.Contains(t, sql, ">= 5")
}

func TestBuildItemFrequencyQuery(t *testing.T) {
	lib := NewQueryLibrary()

	sql, err := lib.BuildItemFrequencyQuery("7634", 30, 0)
	require.NoError(t, err)

	assert.Contains(t, sql, "assortment_coverage_pct")
	assert.Contains(t, sql, "LIMIT 50")

	sql, err = lib.BuildItemFrequencyQuery("7634", 30, 20)
	require.NoError(t, err)
	assert.Contains(t, sql, "LIMIT 20")
}

func TestBuildEntitlementDropQuery(t *testing.T) {
	lib := NewQueryLibrary()

	sql, err := lib.BuildEntitlementDropQuery("7634", "2026-08-25", 7)
	require.NoError(t, err)

	// 真实基线聚合：对比日前 7 天的滚动均值，而非静态占位值
	assert.Contains(t, sql, "AVG(entitled_order_cnt) AS avg_entitled")
	assert.Contains(t, sql, "AVG(catchment_order_cnt) AS avg_catchment")
	assert.Contains(t, sql, "AVG(attained_order_cnt) AS avg_attained")
	assert.Contains(t, sql, "DATE_SUB('2026-08-25', INTERVAL 7 DAY)")
	assert.Contains(t, sql, "delivery_date < '2026-08-25'")
	assert.Contains(t, sql, "entitlement_variance_pct")
	assert.Contains(t, sql, "catchment_variance_pct")
}

func TestBuildEntitlementDropQueryValidation(t *testing.T) {
	lib := NewQueryLibrary()

	_, err := lib.BuildEntitlementDropQuery("not-a-depot", "2026-08-25", 7)
	assert.Error(t, err)

	_, err = lib.BuildEntitlementDropQuery("7634", "08/25/2026", 7)
	assert.Error(t, err)
}

func TestGenerateQueryFromQuestion(t *testing.T) {
	lib := NewQueryLibrary()

	tests := []struct {
		name         string
		question     string
		wantType     QuestionType
		wantContains string
		wantDesc     string
	}{
		{
			name:         "trend question",
			question:     "show cb% trend over time",
			wantType:     QuestionCBTrend,
			wantContains: "depot_metrics_daily",
			wantDesc:     "CB% trend for depot 7634 (last 30 days)",
		},
		{
			name:         "missing items question",
			question:     "what items are we missing from the assortment",
			wantType:     QuestionMissingItems,
			wantContains: "depot_order_items",
			wantDesc:     "Items ordered but not in assortment",
		},
		{
			name:         "item impact question",
			question:     "which skus would have the biggest impact if added",
			wantType:     QuestionItemImpact,
			wantContains: "assortment_coverage_pct",
			wantDesc:     "Top 50 items by order frequency",
		},
		{
			// 未覆盖类型回落到 30 天趋势查询
			name:         "unhandled type falls back to trend",
			question:     "fulfillment gap between entitled and attained",
			wantType:     QuestionFulfillmentGap,
			wantContains: "INTERVAL 30 DAY",
			wantDesc:     "Analysis query",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, qtype, metadata, err := lib.GenerateQueryFromQuestion(tt.question, "7634", QueryOptions{})
			require.NoError(t, err)

			assert.Equal(t, tt.wantType, qtype)
			assert.Contains(t, sql, tt.wantContains)
			assert.Equal(t, tt.question, metadata["question"])
			assert.Equal(t, string(tt.wantType), metadata["question_type"])
			assert.Equal(t, "7634", metadata["depot"])
			assert.Equal(t, tt.wantDesc, metadata["description"])
		})
	}
}

func TestGenerateQueryFromQuestionInvalidDepot(t *testing.T) {
	lib := NewQueryLibrary()

	_, _, _, err := lib.GenerateQueryFromQuestion("show me the trend", "DEPOT-X", QueryOptions{})
	assert.Error(t, err)
}
