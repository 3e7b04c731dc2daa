package engine

// QuestionType 问题类型（封闭枚举，运行期不可扩展）
type QuestionType string

const (
	QuestionCBTrend           QuestionType = "cb_trend"
	QuestionEntitlementDrop   QuestionType = "entitlement_drop"
	QuestionMissingItems      QuestionType = "missing_items"
	QuestionItemImpact        QuestionType = "item_impact"
	QuestionCatchmentAnalysis QuestionType = "catchment_analysis"
	QuestionFulfillmentGap    QuestionType = "fulfillment_gap"
)

// RootCauseType 根因类型（封闭枚举）
type RootCauseType string

const (
	CauseAssortmentGap    RootCauseType = "assortment_gap"
	CauseCatchmentDrop    RootCauseType = "catchment_drop"
	CauseFulfillmentIssue RootCauseType = "fulfillment_issue"
	CauseNormalVariance   RootCauseType = "normal_variance"
)

// MetricSnapshot 某仓某日的履约指标快照
// 期望关系 attained <= entitled <= catchment，但引擎不强制，
// 脏数据按原值计算，除法处统一走安全除法
type MetricSnapshot struct {
	Depot          string `json:"depot"`
	Date           string `json:"date"`
	CatchmentCount int64  `json:"catchment_count"` // 服务区内全部可履约订单数
	EntitledCount  int64  `json:"entitled_count"`  // 本仓有履约资格的订单数
	AttainedCount  int64  `json:"attained_count"`  // 实际履约完成的订单数
}

// BaselineSnapshot 历史窗口内的均值基线（用于方差对比）
type BaselineSnapshot struct {
	Depot        string  `json:"depot"`
	Date         string  `json:"date"`
	AvgCatchment float64 `json:"avg_catchment"`
	AvgEntitled  float64 `json:"avg_entitled"`
	AvgAttained  float64 `json:"avg_attained"`
}

// MissingItemCandidate 未入池但被高频下单的候选商品
// 替代购买行为（substitution）作为需求被压制的代理信号
type MissingItemCandidate struct {
	ItemID            string  `json:"item_id"`
	ProductName       string  `json:"product_name"`
	Category          string  `json:"category"`
	OrderCount        int64   `json:"order_count"`        // 含该商品的去重订单数
	SubstitutionCount int64   `json:"substitution_count"` // 发生替代购买的订单数
	SubstitutionRate  float64 `json:"substitution_rate"`  // 归一化到 0~1
	AvgQtyPerOrder    float64 `json:"avg_qty_per_order"`
}

// ImpactSimulationResult 单品加入假设下的 CB% 影响测算结果
// 构造后不可变，数值字段在构造时完成固定精度舍入：
// 百分比 2 位，提升值与置信度 3 位
type ImpactSimulationResult struct {
	ItemID                    string  `json:"item_id"`
	ProductName               string  `json:"product_name"`
	Category                  string  `json:"category"`
	CurrentCBPercent          float64 `json:"current_cb_percent"`
	ProjectedCBPercent        float64 `json:"projected_cb_percent"`
	CBLiftPercent             float64 `json:"cb_lift_percent"`
	EstimatedAdditionalOrders int64   `json:"estimated_additional_orders"`
	CurrentOrderCount         int64   `json:"current_order_count"`
	SubstitutionCount         int64   `json:"substitution_count"`
	SubstitutionRate          float64 `json:"substitution_rate"`
	AvgQtyPerOrder            float64 `json:"avg_qty_per_order"`
	ConfidenceScore           float64 `json:"confidence_score"`
	Rationale                 string  `json:"rationale"`
}

// CategoryFocus 按品类聚合的缺货商品统计
type CategoryFocus struct {
	Category    string `json:"category"`
	ItemCount   int    `json:"item_count"`
	TotalOrders int64  `json:"total_orders"`
}

// RootCauseAnalysis 根因分析结果
type RootCauseAnalysis struct {
	Depot                  string                 `json:"depot"`
	AnalysisDate           string                 `json:"analysis_date"`
	PrimaryCause           RootCauseType          `json:"primary_cause"`
	ConfidenceScore        float64                `json:"confidence_score"`
	CBVariancePct          float64                `json:"cb_variance_pct"`
	EntitlementVariancePct float64                `json:"entitlement_variance_pct"`
	CatchmentVariancePct   float64                `json:"catchment_variance_pct"`
	FulfillmentRatePct     float64                `json:"fulfillment_rate_pct"`
	Findings               []string               `json:"findings"`
	MissingItems           []MissingItemCandidate `json:"missing_items_list"`
	Recommendations        []string               `json:"recommendations"`
}

// round2 四舍五入到 2 位小数
func round2(f float64) float64 {
	if f < 0 {
		return float64(int64(f*100-0.5)) / 100
	}
	return float64(int64(f*100+0.5)) / 100
}

// round3 四舍五入到 3 位小数
func round3(f float64) float64 {
	if f < 0 {
		return float64(int64(f*1000-0.5)) / 1000
	}
	return float64(int64(f*1000+0.5)) / 1000
}
