package engine

import (
	"strconv"
	"time"
)

// 行边界转换：把执行器返回的弱类型行（map）一次性转成强类型值。
// 缺失字段取中性默认值（计数 0、名称 Unknown/Uncategorized），
// 单条脏记录不影响整批处理。

// rowString 容错读取字符串字段
func rowString(row map[string]interface{}, key, fallback string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return fallback
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return fallback
		}
		return s
	case []byte:
		if len(s) == 0 {
			return fallback
		}
		return string(s)
	case time.Time:
		return s.Format("2006-01-02")
	default:
		return fallback
	}
}

// rowInt64 容错读取整数字段
// MySQL 驱动对同一列可能返回 int64/uint64/float64/[]byte，统一收口
func rowInt64(row map[string]interface{}, key string) int64 {
	v, ok := row[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	case []byte:
		parsed, err := strconv.ParseInt(string(n), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// rowFloat 容错读取浮点字段（DECIMAL 列常以 []byte 返回）
func rowFloat(row map[string]interface{}, key string) float64 {
	v, ok := row[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case []byte:
		parsed, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return 0
		}
		return parsed
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// SnapshotFromRow 从趋势/基线查询的一行构造当前指标快照
func SnapshotFromRow(depot string, row map[string]interface{}) MetricSnapshot {
	return MetricSnapshot{
		Depot:          depot,
		Date:           rowString(row, "delivery_date", ""),
		CatchmentCount: rowInt64(row, "catchment_order_cnt"),
		EntitledCount:  rowInt64(row, "entitled_order_cnt"),
		AttainedCount:  rowInt64(row, "attained_order_cnt"),
	}
}

// BaselineFromRow 从基线对比查询的一行构造基线快照
func BaselineFromRow(depot string, row map[string]interface{}) BaselineSnapshot {
	return BaselineSnapshot{
		Depot:        depot,
		Date:         rowString(row, "delivery_date", ""),
		AvgCatchment: rowFloat(row, "avg_catchment"),
		AvgEntitled:  rowFloat(row, "avg_entitled"),
		AvgAttained:  rowFloat(row, "avg_attained"),
	}
}

// MissingItemsFromRows 从缺货商品查询结果构造候选商品列表
// substitution_rate 源端可能是 0~1 或 0~100 两种量纲，
// 大于 1 的按百分比处理，归一化到 0~1
func MissingItemsFromRows(rows []map[string]interface{}) []MissingItemCandidate {
	items := make([]MissingItemCandidate, 0, len(rows))

	for _, row := range rows {
		rate := rowFloat(row, "substitution_rate")
		if rate > 1 {
			rate = rate / 100
		}

		items = append(items, MissingItemCandidate{
			ItemID:            rowString(row, "item_id", ""),
			ProductName:       rowString(row, "product_name", "Unknown"),
			Category:          rowString(row, "category", "Uncategorized"),
			OrderCount:        rowInt64(row, "order_cnt"),
			SubstitutionCount: rowInt64(row, "substitution_cnt"),
			SubstitutionRate:  rate,
			AvgQtyPerOrder:    rowFloat(row, "avg_qty_per_order"),
		})
	}

	return items
}
