package engine

import "strings"

// questionRule 单条问题匹配规则
type questionRule struct {
	qtype    QuestionType
	keywords []string
}

// questionRules 规则表（有序）
// 遍历顺序即为平局裁决顺序：只有命中数严格更大才会替换当前最优，
// 不依赖 map 迭代顺序
var questionRules = []questionRule{
	{QuestionCBTrend, []string{"trend", "cb%", "complete basket", "over time"}},
	{QuestionEntitlementDrop, []string{"drop", "why", "entitle", "decline"}},
	{QuestionMissingItems, []string{"missing", "items", "carrying", "assortment"}},
	{QuestionItemImpact, []string{"add", "impact", "if", "would", "increase"}},
	{QuestionCatchmentAnalysis, []string{"catchment", "orders", "demand"}},
	{QuestionFulfillmentGap, []string{"fulfillment", "entitled", "attained", "gap"}},
}

// ClassifyQuestion 将自由文本问题归类到分析类型
// 纯函数：任意输入都有确定结果，无关键词命中时返回 QuestionCBTrend
func ClassifyQuestion(question string) QuestionType {
	lower := strings.ToLower(question)

	detected := QuestionCBTrend
	maxMatches := 0

	for _, rule := range questionRules {
		matches := 0
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				matches++
			}
		}
		if matches > maxMatches {
			maxMatches = matches
			detected = rule.qtype
		}
	}

	return detected
}
