package engine

import (
	"fmt"
	"strconv"
	"time"
)

// 数仓表名
const (
	metricsTable    = "depot_metrics_daily" // 仓×日指标宽表
	orderItemsTable = "depot_order_items"   // 订单×商品明细表
)

// 查询默认参数
const (
	DefaultTrendLookbackDays   = 30
	DefaultMissingLookbackDays = 7
	DefaultMinOrderFrequency   = 5
	DefaultItemFrequencyLimit  = 50
	missingItemsRowCap         = 100
)

// QueryOptions 由问题生成查询时的可选参数
type QueryOptions struct {
	LookbackDays      int
	MinOrderFrequency int
	Limit             int
}

// QueryLibrary 查询模板库
// 只负责生成查询文本，不执行查询；执行由外部协作方（数仓执行器）完成
type QueryLibrary struct{}

// NewQueryLibrary 创建查询模板库实例
func NewQueryLibrary() *QueryLibrary {
	return &QueryLibrary{}
}

// parseDepot 仓编号必须可转为整数，否则返回校验错误
func parseDepot(depotID string) (int, error) {
	depot, err := strconv.Atoi(depotID)
	if err != nil {
		return 0, fmt.Errorf("invalid depot id %q: must be numeric", depotID)
	}
	return depot, nil
}

// BuildTrendQuery 生成 CB% 趋势查询
// 三个比率均走安全除法（NULLIF），分母为 0 时产出 NULL 而非报错
func (q *QueryLibrary) BuildTrendQuery(depotID string, lookbackDays int) (string, error) {
	depot, err := parseDepot(depotID)
	if err != nil {
		return "", err
	}
	if lookbackDays <= 0 {
		lookbackDays = DefaultTrendLookbackDays
	}

	sql := fmt.Sprintf(`SELECT
    delivery_date,
    depot_id,
    catchment_order_cnt,
    entitled_order_cnt,
    attained_order_cnt,
    ROUND(attained_order_cnt / NULLIF(catchment_order_cnt, 0) * 100, 2) AS cb_percent,
    ROUND(attained_order_cnt / NULLIF(entitled_order_cnt, 0) * 100, 2) AS fulfillment_rate,
    ROUND(entitled_order_cnt / NULLIF(catchment_order_cnt, 0) * 100, 2) AS entitlement_rate
FROM %s
WHERE depot_id = %d
  AND delivery_date >= DATE_SUB(CURRENT_DATE(), INTERVAL %d DAY)
  AND delivery_date IS NOT NULL
ORDER BY delivery_date DESC`, metricsTable, depot, lookbackDays)

	return sql, nil
}

// BuildMissingItemsQuery 生成缺货商品查询
// 找出未入池（in_assortment = 0）但在回看窗口内被高频下单的商品，
// 替代购买订单数作为需求压制信号
func (q *QueryLibrary) BuildMissingItemsQuery(depotID string, lookbackDays, minOrderFrequency int) (string, error) {
	depot, err := parseDepot(depotID)
	if err != nil {
		return "", err
	}
	if lookbackDays <= 0 {
		lookbackDays = DefaultMissingLookbackDays
	}
	if minOrderFrequency <= 0 {
		minOrderFrequency = DefaultMinOrderFrequency
	}

	sql := fmt.Sprintf(`WITH recent_orders AS (
    SELECT
        item_id,
        product_name,
        category,
        COUNT(DISTINCT order_no) AS order_cnt,
        COUNT(DISTINCT CASE WHEN substituted_flag = 1 THEN order_no END) AS substitution_cnt,
        SUM(quantity) AS total_qty
    FROM %s
    WHERE depot_id = %d
      AND delivery_date >= DATE_SUB(CURRENT_DATE(), INTERVAL %d DAY)
      AND in_assortment = 0
    GROUP BY item_id, product_name, category
    HAVING COUNT(DISTINCT order_no) >= %d
)
SELECT
    item_id,
    product_name,
    category,
    'MISSING' AS assortment_status,
    order_cnt,
    substitution_cnt,
    ROUND(substitution_cnt / NULLIF(order_cnt, 0) * 100, 2) AS substitution_rate,
    total_qty,
    ROUND(total_qty / NULLIF(order_cnt, 0), 2) AS avg_qty_per_order
FROM recent_orders
ORDER BY order_cnt DESC
LIMIT %d`, orderItemsTable, depot, lookbackDays, minOrderFrequency, missingItemsRowCap)

	return sql, nil
}

// BuildItemFrequencyQuery 生成高频商品查询（含入池覆盖率）
func (q *QueryLibrary) BuildItemFrequencyQuery(depotID string, lookbackDays, limit int) (string, error) {
	depot, err := parseDepot(depotID)
	if err != nil {
		return "", err
	}
	if lookbackDays <= 0 {
		lookbackDays = DefaultTrendLookbackDays
	}
	if limit <= 0 {
		limit = DefaultItemFrequencyLimit
	}

	sql := fmt.Sprintf(`SELECT
    item_id,
    product_name,
    category,
    COUNT(DISTINCT order_no) AS order_cnt,
    SUM(quantity) AS total_qty,
    COUNT(DISTINCT CASE WHEN substituted_flag = 1 THEN order_no END) AS substitution_cnt,
    COUNT(DISTINCT CASE WHEN in_assortment = 1 THEN order_no END) AS orders_with_assort,
    ROUND(COUNT(DISTINCT CASE WHEN in_assortment = 1 THEN order_no END) / NULLIF(COUNT(DISTINCT order_no), 0) * 100, 2) AS assortment_coverage_pct
FROM %s
WHERE depot_id = %d
  AND delivery_date >= DATE_SUB(CURRENT_DATE(), INTERVAL %d DAY)
GROUP BY item_id, product_name, category
ORDER BY order_cnt DESC
LIMIT %d`, orderItemsTable, depot, lookbackDays, limit)

	return sql, nil
}

// BuildEntitlementDropQuery 生成基线对比查询
// 当日计数 JOIN 对比日前 baselineDays 天的滚动均值，方差在 SQL 内算好
func (q *QueryLibrary) BuildEntitlementDropQuery(depotID, compareDate string, baselineDays int) (string, error) {
	depot, err := parseDepot(depotID)
	if err != nil {
		return "", err
	}
	if _, err := time.Parse("2006-01-02", compareDate); err != nil {
		return "", fmt.Errorf("invalid compare date %q: want YYYY-MM-DD", compareDate)
	}
	if baselineDays <= 0 {
		baselineDays = DefaultMissingLookbackDays
	}

	sql := fmt.Sprintf(`SELECT
    cur.delivery_date,
    cur.depot_id,
    cur.catchment_order_cnt,
    cur.entitled_order_cnt,
    cur.attained_order_cnt,
    base.avg_catchment,
    base.avg_entitled,
    base.avg_attained,
    ROUND((cur.catchment_order_cnt - base.avg_catchment) / NULLIF(base.avg_catchment, 0) * 100, 2) AS catchment_variance_pct,
    ROUND((cur.entitled_order_cnt - base.avg_entitled) / NULLIF(base.avg_entitled, 0) * 100, 2) AS entitlement_variance_pct
FROM (
    SELECT delivery_date, depot_id, catchment_order_cnt, entitled_order_cnt, attained_order_cnt
    FROM %s
    WHERE depot_id = %d AND delivery_date = '%s'
) cur
JOIN (
    SELECT
        AVG(catchment_order_cnt) AS avg_catchment,
        AVG(entitled_order_cnt) AS avg_entitled,
        AVG(attained_order_cnt) AS avg_attained
    FROM %s
    WHERE depot_id = %d
      AND delivery_date >= DATE_SUB('%s', INTERVAL %d DAY)
      AND delivery_date < '%s'
) base ON 1 = 1`,
		metricsTable, depot, compareDate,
		metricsTable, depot, compareDate, baselineDays, compareDate)

	return sql, nil
}

// GenerateQueryFromQuestion 问题 → 查询的组合入口
// 先分类再选模板，metadata 至少携带问题原文、类型、仓编号和一行描述；
// 未覆盖的类型回落到 30 天趋势查询
func (q *QueryLibrary) GenerateQueryFromQuestion(question, depotID string, opts QueryOptions) (string, QuestionType, map[string]string, error) {
	qtype := ClassifyQuestion(question)

	metadata := map[string]string{
		"question":      question,
		"question_type": string(qtype),
		"depot":         depotID,
	}

	var sql string
	var err error

	switch qtype {
	case QuestionCBTrend:
		days := opts.LookbackDays
		if days <= 0 {
			days = DefaultTrendLookbackDays
		}
		sql, err = q.BuildTrendQuery(depotID, days)
		metadata["description"] = fmt.Sprintf("CB%% trend for depot %s (last %d days)", depotID, days)
	case QuestionMissingItems:
		days := opts.LookbackDays
		if days <= 0 {
			days = DefaultMissingLookbackDays
		}
		sql, err = q.BuildMissingItemsQuery(depotID, days, opts.MinOrderFrequency)
		metadata["description"] = "Items ordered but not in assortment"
	case QuestionItemImpact:
		limit := opts.Limit
		if limit <= 0 {
			limit = DefaultItemFrequencyLimit
		}
		sql, err = q.BuildItemFrequencyQuery(depotID, opts.LookbackDays, limit)
		metadata["description"] = fmt.Sprintf("Top %d items by order frequency", limit)
	default:
		sql, err = q.BuildTrendQuery(depotID, DefaultTrendLookbackDays)
		metadata["description"] = "Analysis query"
	}

	if err != nil {
		return "", qtype, nil, err
	}
	return sql, qtype, metadata, nil
}
