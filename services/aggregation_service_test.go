// services/aggregation_service_test.go
package services

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name           string
		resultMentions [][]Mention
		distinctBrands int
		want           Summary
	}{
		{
			name: "one mention across two brands and two models",
			resultMentions: [][]Mention{
				{{Brand: "Notion", Mentioned: true, Confidence: 1.0}, {Brand: "Obsidian"}},
				{{Brand: "Notion"}, {Brand: "Obsidian"}},
			},
			distinctBrands: 2,
			want:           Summary{TotalMentions: 1, MentionRate: 0.25, AvgConfidence: 1.0},
		},
		{
			name: "all mentioned",
			resultMentions: [][]Mention{
				{{Brand: "Notion", Mentioned: true, Confidence: 1.0}},
				{{Brand: "Notion", Mentioned: true, Confidence: 0.85}},
			},
			distinctBrands: 1,
			want:           Summary{TotalMentions: 2, MentionRate: 1.0, AvgConfidence: 0.925},
		},
		{
			name:           "no successful results",
			resultMentions: nil,
			distinctBrands: 3,
			want:           Summary{},
		},
		{
			name: "no brands",
			resultMentions: [][]Mention{
				{},
			},
			distinctBrands: 0,
			want:           Summary{},
		},
		{
			name: "nothing mentioned keeps avg confidence zero",
			resultMentions: [][]Mention{
				{{Brand: "Notion"}, {Brand: "Obsidian"}},
			},
			distinctBrands: 2,
			want:           Summary{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.resultMentions, tt.distinctBrands)
			if got.TotalMentions != tt.want.TotalMentions {
				t.Errorf("TotalMentions = %d, want %d", got.TotalMentions, tt.want.TotalMentions)
			}
			if math.Abs(got.MentionRate-tt.want.MentionRate) > 1e-9 {
				t.Errorf("MentionRate = %v, want %v", got.MentionRate, tt.want.MentionRate)
			}
			if math.Abs(got.AvgConfidence-tt.want.AvgConfidence) > 1e-9 {
				t.Errorf("AvgConfidence = %v, want %v", got.AvgConfidence, tt.want.AvgConfidence)
			}
		})
	}
}
