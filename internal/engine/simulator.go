package engine

import (
	"fmt"
	"sort"
)

// captureRate 替代购买可转化为完整订单的假设比例
const captureRate = 0.70

// ImpactSimulator CB% 影响测算器（无状态，可并发调用）
type ImpactSimulator struct{}

// NewImpactSimulator 创建测算器实例
func NewImpactSimulator() *ImpactSimulator {
	return &ImpactSimulator{}
}

// RecommendItems 按 CB% 提升量测算并排序候选商品，返回前 topN 个
// 空输入返回空结果；排序为稳定排序，提升量相同的保持输入相对顺序
func (s *ImpactSimulator) RecommendItems(
	missingItems []MissingItemCandidate,
	currentCBPercent float64,
	currentCatchmentCount int64,
	currentEntitledCount int64,
	topN int,
) []ImpactSimulationResult {
	if len(missingItems) == 0 {
		return []ImpactSimulationResult{}
	}
	if topN <= 0 {
		topN = 10
	}

	results := make([]ImpactSimulationResult, 0, len(missingItems))
	for _, item := range missingItems {
		results = append(results, s.simulate(item, currentCBPercent, currentCatchmentCount))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CBLiftPercent > results[j].CBLiftPercent
	})

	if len(results) > topN {
		results = results[:topN]
	}
	return results
}

// simulate 测算单个商品加入假设后的 CB% 变化
func (s *ImpactSimulator) simulate(
	item MissingItemCandidate,
	currentCBPercent float64,
	currentCatchmentCount int64,
) ImpactSimulationResult {
	estimatedAdditional := int64(float64(item.SubstitutionCount) * captureRate)

	currentAttained := deriveAttainedFromCB(currentCBPercent, currentCatchmentCount)

	newAttained := currentAttained + estimatedAdditional
	var projected float64
	if currentCatchmentCount > 0 {
		projected = float64(newAttained) / float64(currentCatchmentCount) * 100
	}

	lift := projected - currentCBPercent

	confidence := confidenceScore(item.OrderCount, item.SubstitutionRate, estimatedAdditional)
	rationale := buildRationale(item.ProductName, item.OrderCount, estimatedAdditional, lift)

	return ImpactSimulationResult{
		ItemID:                    item.ItemID,
		ProductName:               item.ProductName,
		Category:                  item.Category,
		CurrentCBPercent:          round2(currentCBPercent),
		ProjectedCBPercent:        round2(projected),
		CBLiftPercent:             round3(lift),
		EstimatedAdditionalOrders: estimatedAdditional,
		CurrentOrderCount:         item.OrderCount,
		SubstitutionCount:         item.SubstitutionCount,
		SubstitutionRate:          round2(item.SubstitutionRate),
		AvgQtyPerOrder:            round2(item.AvgQtyPerOrder),
		ConfidenceScore:           round3(confidence),
		Rationale:                 rationale,
	}
}

// deriveAttainedFromCB 从 CB% 和 catchment 反推当前履约订单数
// catchment 为 0 时恒为 0
func deriveAttainedFromCB(cbPercent float64, catchmentCount int64) int64 {
	if catchmentCount == 0 {
		return 0
	}
	return int64(cbPercent / 100.0 * float64(catchmentCount))
}

// confidenceScore 计算推荐置信度
// 基准 0.50，按订单量、替代率、预估增量三档加分，封顶 0.95
func confidenceScore(orderCount int64, substitutionRate float64, estimatedAdditional int64) float64 {
	confidence := 0.5

	switch {
	case orderCount >= 50:
		confidence += 0.25
	case orderCount >= 20:
		confidence += 0.15
	case orderCount >= 10:
		confidence += 0.05
	}

	switch {
	case substitutionRate >= 0.5:
		confidence += 0.2
	case substitutionRate >= 0.3:
		confidence += 0.1
	}

	switch {
	case estimatedAdditional >= 50:
		confidence += 0.1
	case estimatedAdditional >= 20:
		confidence += 0.05
	}

	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

// buildRationale 生成推荐理由
// 分档阈值：提升 >= 2.0pp 为 HIGH，>= 1.0pp 为 MEDIUM，其余 LOW
func buildRationale(productName string, orderCount, estimatedAdditional int64, lift float64) string {
	var impactLevel string
	switch {
	case lift >= 2.0:
		impactLevel = "HIGH IMPACT"
	case lift >= 1.0:
		impactLevel = "MEDIUM IMPACT"
	default:
		impactLevel = "LOW IMPACT"
	}

	return fmt.Sprintf("%s - %s has been ordered %d times. Adding it would capture ~%d more orders and lift CB%% by %.2fpp.",
		impactLevel, productName, orderCount, estimatedAdditional, lift)
}

// RecommendCategoryFocus 按品类聚合缺货商品，返回订单量最高的前 topN 个品类
func (s *ImpactSimulator) RecommendCategoryFocus(missingItems []MissingItemCandidate, topN int) []CategoryFocus {
	if topN <= 0 {
		topN = 5
	}

	index := make(map[string]int)
	stats := make([]CategoryFocus, 0)

	for _, item := range missingItems {
		category := item.Category
		if category == "" {
			category = "Uncategorized"
		}

		i, ok := index[category]
		if !ok {
			i = len(stats)
			index[category] = i
			stats = append(stats, CategoryFocus{Category: category})
		}
		stats[i].ItemCount++
		stats[i].TotalOrders += item.OrderCount
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalOrders > stats[j].TotalOrders
	})

	if len(stats) > topN {
		stats = stats[:topN]
	}
	return stats
}
