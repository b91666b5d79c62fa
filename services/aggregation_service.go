// services/aggregation_service.go
package services

// Summarize folds per-model, per-brand mention rows into check-level stats.
//
// The mention rate is total mentions over the number of (brand, successful
// result) cells, so a check that queried 2 brands across 2 successful models
// and found 1 mention reports 0.25. Failed results never contribute cells.
func Summarize(resultMentions [][]Mention, distinctBrands int) Summary {
	var summary Summary

	successful := len(resultMentions)
	if successful == 0 || distinctBrands == 0 {
		return summary
	}

	var confidenceSum float64
	for _, mentions := range resultMentions {
		for _, m := range mentions {
			if !m.Mentioned {
				continue
			}
			summary.TotalMentions++
			confidenceSum += m.Confidence
		}
	}

	summary.MentionRate = float64(summary.TotalMentions) / float64(distinctBrands*successful)
	if summary.TotalMentions > 0 {
		summary.AvgConfidence = confidenceSum / float64(summary.TotalMentions)
	}

	return summary
}
