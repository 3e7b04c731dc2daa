package engine

import "fmt"

// 根因判定阈值
const (
	catchmentDropThreshold   = -10.0 // catchment 方差低于此值判定需求下滑
	entitlementDropThreshold = -15.0 // entitlement 方差低于此值判定商品池缺口
	fulfillmentRateFloor     = 75.0  // 履约率低于此值判定履约问题
	normalVarianceBand       = 10.0  // 正常波动带宽
)

// RootCauseClassifier 根因分类器（无状态，单次调用，可并发）
type RootCauseClassifier struct{}

// NewRootCauseClassifier 创建根因分类器实例
func NewRootCauseClassifier() *RootCauseClassifier {
	return &RootCauseClassifier{}
}

// causeCandidate 候选根因及其置信度
type causeCandidate struct {
	cause      RootCauseType
	confidence float64
}

// Analyze 对比当前快照与基线，判定 CB%/entitlement 下滑的主导根因
// missingItems 可为 nil；结果为单次构造的值，调用间不共享状态
func (c *RootCauseClassifier) Analyze(
	current MetricSnapshot,
	baseline BaselineSnapshot,
	missingItems []MissingItemCandidate,
) RootCauseAnalysis {
	entitlementVariance := variance(float64(current.EntitledCount), baseline.AvgEntitled)
	catchmentVariance := variance(float64(current.CatchmentCount), baseline.AvgCatchment)
	cbVariance := variance(float64(current.AttainedCount), baseline.AvgAttained)

	var fulfillmentRate float64
	if current.EntitledCount > 0 {
		fulfillmentRate = float64(current.AttainedCount) / float64(current.EntitledCount) * 100
	}

	primaryCause, confidence := c.determinePrimaryCause(
		entitlementVariance, catchmentVariance, fulfillmentRate, missingItems)

	findings := c.buildFindings(primaryCause, entitlementVariance, catchmentVariance, fulfillmentRate, missingItems)
	recommendations := c.buildRecommendations(primaryCause)

	return RootCauseAnalysis{
		Depot:                  current.Depot,
		AnalysisDate:           current.Date,
		PrimaryCause:           primaryCause,
		ConfidenceScore:        round3(confidence),
		CBVariancePct:          round2(cbVariance),
		EntitlementVariancePct: round2(entitlementVariance),
		CatchmentVariancePct:   round2(catchmentVariance),
		FulfillmentRatePct:     round2(fulfillmentRate),
		Findings:               findings,
		MissingItems:           missingItems,
		Recommendations:        recommendations,
	}
}

// determinePrimaryCause 根因判定
// 候选按固定顺序追加（catchment → assortment → fulfillment），
// 多个候选同时命中时取置信度最高者，同分保留先追加的；
// 无候选且 entitlement 方差在波动带内返回 normal_variance/0.8，
// 带外返回 normal_variance/0.5（低置信兜底，需人工复核）
func (c *RootCauseClassifier) determinePrimaryCause(
	entitlementVariance, catchmentVariance, fulfillmentRate float64,
	missingItems []MissingItemCandidate,
) (RootCauseType, float64) {
	candidates := make([]causeCandidate, 0, 3)

	if catchmentVariance < catchmentDropThreshold {
		candidates = append(candidates, causeCandidate{
			cause:      CauseCatchmentDrop,
			confidence: 0.8 + abs(catchmentVariance)/100,
		})
	}

	if entitlementVariance < entitlementDropThreshold && catchmentVariance > catchmentDropThreshold {
		confidence := 0.7 + abs(entitlementVariance)/100
		if len(missingItems) > 5 {
			confidence += 0.1
			if confidence > 0.95 {
				confidence = 0.95
			}
		}
		candidates = append(candidates, causeCandidate{
			cause:      CauseAssortmentGap,
			confidence: confidence,
		})
	}

	if fulfillmentRate < fulfillmentRateFloor {
		candidates = append(candidates, causeCandidate{
			cause:      CauseFulfillmentIssue,
			confidence: (1 - fulfillmentRate/100) * 0.8,
		})
	}

	if len(candidates) == 0 {
		if abs(entitlementVariance) <= normalVarianceBand {
			return CauseNormalVariance, 0.8
		}
		return CauseNormalVariance, 0.5
	}

	best := candidates[0]
	for _, cand := range candidates[1:] {
		if cand.confidence > best.confidence {
			best = cand
		}
	}
	// catchment 公式在极端方差下会超过 1，收口到 [0,1]
	if best.confidence > 1.0 {
		best.confidence = 1.0
	}
	return best.cause, best.confidence
}

// buildFindings 按选定根因生成结论文本
func (c *RootCauseClassifier) buildFindings(
	cause RootCauseType,
	entitlementVariance, catchmentVariance, fulfillmentRate float64,
	missingItems []MissingItemCandidate,
) []string {
	findings := make([]string, 0, 2)

	switch cause {
	case CauseCatchmentDrop:
		findings = append(findings,
			fmt.Sprintf("Catchment orders dropped %.1f%% from baseline.", abs(catchmentVariance)))
		findings = append(findings, "Possible factors: seasonal demand shifts or competitor activity in the service area.")
	case CauseAssortmentGap:
		findings = append(findings,
			fmt.Sprintf("Entitlement dropped %.1f%% while catchment remained stable.", abs(entitlementVariance)))
		if len(missingItems) > 0 {
			findings = append(findings,
				fmt.Sprintf("Found %d items customers are ordering but the depot is not carrying.", len(missingItems)))
		}
	case CauseFulfillmentIssue:
		findings = append(findings,
			fmt.Sprintf("Fulfillment rate is only %.1f%%.", fulfillmentRate))
	default:
		findings = append(findings, "Metrics are within normal variance from baseline.")
	}

	return findings
}

// buildRecommendations 按根因生成行动建议，末尾固定追加日常监控建议
func (c *RootCauseClassifier) buildRecommendations(cause RootCauseType) []string {
	recs := make([]string, 0, 3)

	switch cause {
	case CauseCatchmentDrop:
		recs = append(recs, "Monitor competitive activity in the catchment area.")
		recs = append(recs, "Consider promotional campaigns to drive demand.")
	case CauseAssortmentGap:
		recs = append(recs, "Add the missing items to the depot assortment.")
		recs = append(recs, "Review seasonal assortment planning.")
	case CauseFulfillmentIssue:
		recs = append(recs, "Audit fulfillment operations and stock levels.")
		recs = append(recs, "Review delivery window constraints.")
	}

	recs = append(recs, "Monitor metrics daily to catch changes early.")
	return recs
}

// variance 相对基线的百分比方差
// 基线为 0 时恒为 0（无可比基线，不外溢无穷大）
func variance(current, baseline float64) float64 {
	if baseline == 0 {
		return 0.0
	}
	return (current - baseline) / baseline * 100
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
