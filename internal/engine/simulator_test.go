package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendItemsScenario(t *testing.T) {
	sim := NewImpactSimulator()

	items := []MissingItemCandidate{
		{
			ItemID:            "ITEM_100",
			ProductName:       "Whole Milk 1L",
			Category:          "Dairy",
			OrderCount:        40,
			SubstitutionCount: 100,
			SubstitutionRate:  0.4,
			AvgQtyPerOrder:    1.5,
		},
	}

	results := sim.RecommendItems(items, 60, 1000, 800, 10)
	require.Len(t, results, 1)

	r := results[0]
	// floor(100 * 0.70) = 70 追加订单，600 + 70 = 670 履约订单
	assert.Equal(t, int64(70), r.EstimatedAdditionalOrders)
	assert.Equal(t, 67.0, r.ProjectedCBPercent)
	assert.Equal(t, 7.0, r.CBLiftPercent)
	// 0.5 + 0.15(order>=20) + 0.1(rate>=0.3) + 0.1(additional>=50)
	assert.Equal(t, 0.85, r.ConfidenceScore)
	assert.Contains(t, r.Rationale, "HIGH IMPACT")
	assert.Contains(t, r.Rationale, "Whole Milk 1L")
	assert.Contains(t, r.Rationale, "7.00pp")
}

func TestRecommendItemsEmptyInput(t *testing.T) {
	sim := NewImpactSimulator()

	results := sim.RecommendItems(nil, 60, 1000, 800, 10)
	assert.Empty(t, results)

	results = sim.RecommendItems([]MissingItemCandidate{}, 60, 1000, 800, 10)
	assert.Empty(t, results)
}

func TestRecommendItemsZeroCatchment(t *testing.T) {
	sim := NewImpactSimulator()

	items := []MissingItemCandidate{
		{ItemID: "A", ProductName: "P", SubstitutionCount: 50, OrderCount: 30},
	}

	results := sim.RecommendItems(items, 60, 0, 0, 10)
	require.Len(t, results, 1)

	assert.Equal(t, 0.0, results[0].ProjectedCBPercent)
	assert.Equal(t, -60.0, results[0].CBLiftPercent)
}

func TestRecommendItemsSortedByLift(t *testing.T) {
	sim := NewImpactSimulator()

	items := []MissingItemCandidate{
		{ItemID: "low", SubstitutionCount: 10, OrderCount: 5},
		{ItemID: "high", SubstitutionCount: 200, OrderCount: 80},
		{ItemID: "mid", SubstitutionCount: 50, OrderCount: 30},
	}

	results := sim.RecommendItems(items, 50, 2000, 1500, 10)
	require.Len(t, results, 3)

	assert.Equal(t, "high", results[0].ItemID)
	assert.Equal(t, "mid", results[1].ItemID)
	assert.Equal(t, "low", results[2].ItemID)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].CBLiftPercent, results[i].CBLiftPercent)
	}
}

func TestRecommendItemsStableOnEqualLift(t *testing.T) {
	sim := NewImpactSimulator()

	// 相同替代量 → 相同提升量，保持输入相对顺序
	items := []MissingItemCandidate{
		{ItemID: "first", SubstitutionCount: 40},
		{ItemID: "second", SubstitutionCount: 40},
		{ItemID: "third", SubstitutionCount: 40},
	}

	results := sim.RecommendItems(items, 50, 1000, 800, 10)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].ItemID)
	assert.Equal(t, "second", results[1].ItemID)
	assert.Equal(t, "third", results[2].ItemID)
}

func TestRecommendItemsTopN(t *testing.T) {
	sim := NewImpactSimulator()

	items := make([]MissingItemCandidate, 20)
	for i := range items {
		items[i] = MissingItemCandidate{SubstitutionCount: int64(i)}
	}

	results := sim.RecommendItems(items, 50, 1000, 800, 5)
	assert.Len(t, results, 5)
}

func TestConfidenceScoreBounds(t *testing.T) {
	sim := NewImpactSimulator()

	// 置信度对任意输入都落在 [0.50, 0.95]
	orderCounts := []int64{0, 5, 10, 20, 50, 500}
	rates := []float64{0, 0.1, 0.3, 0.5, 1.0}
	subCounts := []int64{0, 10, 30, 80, 1000}

	for _, oc := range orderCounts {
		for _, rate := range rates {
			for _, sc := range subCounts {
				items := []MissingItemCandidate{{
					OrderCount:        oc,
					SubstitutionRate:  rate,
					SubstitutionCount: sc,
				}}
				results := sim.RecommendItems(items, 50, 1000, 800, 1)
				require.Len(t, results, 1)
				assert.GreaterOrEqual(t, results[0].ConfidenceScore, 0.50)
				assert.LessOrEqual(t, results[0].ConfidenceScore, 0.95)
			}
		}
	}
}

func TestConfidenceScoreLadder(t *testing.T) {
	tests := []struct {
		name       string
		orderCount int64
		rate       float64
		additional int64
		want       float64
	}{
		{"all floors", 0, 0, 0, 0.5},
		{"order tier low", 10, 0, 0, 0.55},
		{"order tier mid", 20, 0, 0, 0.65},
		{"order tier high", 50, 0, 0, 0.75},
		{"rate tier mid", 0, 0.3, 0, 0.6},
		{"rate tier high", 0, 0.5, 0, 0.7},
		{"additional tier mid", 0, 0, 20, 0.55},
		{"additional tier high", 0, 0, 50, 0.6},
		{"everything maxed clamps to 0.95", 100, 0.8, 100, 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, confidenceScore(tt.orderCount, tt.rate, tt.additional), 1e-9)
		})
	}
}

func TestBuildRationaleTiers(t *testing.T) {
	assert.Contains(t, buildRationale("P", 10, 10, 2.5), "HIGH IMPACT")
	assert.Contains(t, buildRationale("P", 10, 10, 2.0), "HIGH IMPACT")
	assert.Contains(t, buildRationale("P", 10, 10, 1.2), "MEDIUM IMPACT")
	assert.Contains(t, buildRationale("P", 10, 10, 0.4), "LOW IMPACT")
}

func TestRecommendCategoryFocus(t *testing.T) {
	sim := NewImpactSimulator()

	items := []MissingItemCandidate{
		{Category: "Dairy", OrderCount: 30},
		{Category: "Produce", OrderCount: 100},
		{Category: "Dairy", OrderCount: 50},
		{Category: "", OrderCount: 10},
	}

	focus := sim.RecommendCategoryFocus(items, 5)
	require.Len(t, focus, 3)

	assert.Equal(t, "Produce", focus[0].Category)
	assert.Equal(t, int64(100), focus[0].TotalOrders)
	assert.Equal(t, 1, focus[0].ItemCount)

	assert.Equal(t, "Dairy", focus[1].Category)
	assert.Equal(t, int64(80), focus[1].TotalOrders)
	assert.Equal(t, 2, focus[1].ItemCount)

	assert.Equal(t, "Uncategorized", focus[2].Category)
}

func TestRecommendCategoryFocusTopN(t *testing.T) {
	sim := NewImpactSimulator()

	items := []MissingItemCandidate{
		{Category: "A", OrderCount: 5},
		{Category: "B", OrderCount: 4},
		{Category: "C", OrderCount: 3},
	}

	focus := sim.RecommendCategoryFocus(items, 2)
	require.Len(t, focus, 2)
	assert.Equal(t, "A", focus[0].Category)
	assert.Equal(t, "B", focus[1].Category)
}
