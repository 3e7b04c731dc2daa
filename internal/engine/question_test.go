package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     QuestionType
	}{
		{
			name:     "cb trend",
			question: "Show me the CB% trend over time",
			want:     QuestionCBTrend,
		},
		{
			name:     "entitlement drop",
			question: "Why did entitlement decline yesterday?",
			want:     QuestionEntitlementDrop,
		},
		{
			name:     "missing items",
			question: "Which items are we missing from the assortment?",
			want:     QuestionMissingItems,
		},
		{
			name:     "catchment analysis",
			question: "How is catchment demand developing?",
			want:     QuestionCatchmentAnalysis,
		},
		{
			name:     "fulfillment gap",
			question: "Is there a fulfillment gap between entitled and attained?",
			want:     QuestionFulfillmentGap,
		},
		{
			name:     "empty string falls back to trend",
			question: "",
			want:     QuestionCBTrend,
		},
		{
			name:     "irrelevant text falls back to trend",
			question: "hello there",
			want:     QuestionCBTrend,
		},
		{
			name:     "case insensitive",
			question: "COMPLETE BASKET TREND",
			want:     QuestionCBTrend,
		},
		{
			// drop/missing 各命中一个关键词，先声明的类型胜出
			name:     "tie keeps first declared type",
			question: "drop missing",
			want:     QuestionEntitlementDrop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyQuestion(tt.question))
		})
	}
}

func TestClassifyQuestionDeterministic(t *testing.T) {
	question := "why are orders dropping and what items should we add?"
	first := ClassifyQuestion(question)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, ClassifyQuestion(question))
	}
}
