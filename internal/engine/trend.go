package engine

// TrendPoint 趋势查询中的单日数据点
type TrendPoint struct {
	Date            string  `json:"date"`
	CatchmentCount  int64   `json:"catchment_count"`
	EntitledCount   int64   `json:"entitled_count"`
	AttainedCount   int64   `json:"attained_count"`
	CBPercent       float64 `json:"cb_percent"`
	FulfillmentRate float64 `json:"fulfillment_rate"`
	EntitlementRate float64 `json:"entitlement_rate"`
}

// TrendSummary 趋势窗口的汇总统计（看板指标卡数据）
type TrendSummary struct {
	CurrentCB float64 `json:"current_cb"`
	AvgCB     float64 `json:"avg_cb"`
	MaxCB     float64 `json:"max_cb"`
	MinCB     float64 `json:"min_cb"`
	Days      int     `json:"days"`
}

// TrendPointsFromRows 从趋势查询结果构造数据点序列（保持行序，日期降序）
func TrendPointsFromRows(rows []map[string]interface{}) []TrendPoint {
	points := make([]TrendPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, TrendPoint{
			Date:            rowString(row, "delivery_date", ""),
			CatchmentCount:  rowInt64(row, "catchment_order_cnt"),
			EntitledCount:   rowInt64(row, "entitled_order_cnt"),
			AttainedCount:   rowInt64(row, "attained_order_cnt"),
			CBPercent:       rowFloat(row, "cb_percent"),
			FulfillmentRate: rowFloat(row, "fulfillment_rate"),
			EntitlementRate: rowFloat(row, "entitlement_rate"),
		})
	}
	return points
}

// SummarizeTrend 计算趋势窗口的当前值/均值/最大/最小 CB%
// 首个数据点视为当前值（行序为日期降序）；空输入返回零值
func SummarizeTrend(points []TrendPoint) TrendSummary {
	if len(points) == 0 {
		return TrendSummary{}
	}

	summary := TrendSummary{
		CurrentCB: round2(points[0].CBPercent),
		MaxCB:     points[0].CBPercent,
		MinCB:     points[0].CBPercent,
		Days:      len(points),
	}

	total := 0.0
	for _, p := range points {
		total += p.CBPercent
		if p.CBPercent > summary.MaxCB {
			summary.MaxCB = p.CBPercent
		}
		if p.CBPercent < summary.MinCB {
			summary.MinCB = p.CBPercent
		}
	}

	summary.AvgCB = round2(total / float64(len(points)))
	summary.MaxCB = round2(summary.MaxCB)
	summary.MinCB = round2(summary.MinCB)
	return summary
}
