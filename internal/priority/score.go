// Package priority implements the weighted sales-priority scoring used to
// rank L2 splitters and the aggregated Happy Blocks built from them.
package priority

import (
	"math"

	"github.com/sells-group/eagle-eye-cli/internal/model"
)

// Aging urgency bands, expressed on a 0-100 scale before weighting.
const (
	agingScoreNew    = 100 // in service <= new threshold
	agingScoreMedium = 60  // between thresholds
	agingScoreOld    = 20  // past the medium threshold, and the missing-data default
)

// L2Score computes the composite priority for one L2: the port-availability
// ratio scaled to the port weight plus the aging urgency band scaled to the
// aging weight. The result is rounded to one decimal and clamped to [0,100].
func L2Score(availPorts, totalPorts int, agingDays float64, w Weights) float64 {
	var portScore float64
	if totalPorts > 0 {
		portScore = float64(availPorts) / float64(totalPorts) * (w.Port * 100)
	}

	band := agingBand(agingDays, w)
	agingScore := float64(band) * w.Aging

	score := portScore + agingScore
	score = math.Round(score*10) / 10
	return math.Min(math.Max(score, 0), 100)
}

func agingBand(agingDays float64, w Weights) int {
	switch {
	case math.IsNaN(agingDays) || agingDays < 0:
		return agingScoreOld
	case agingDays <= w.NewThresholdDays:
		return agingScoreNew
	case agingDays <= w.MediumThresholdDays:
		return agingScoreMedium
	default:
		return agingScoreOld
	}
}

// Label buckets a 0-100 score into its priority band.
func Label(score float64) model.PriorityLabel {
	switch {
	case score >= 80:
		return model.PriorityVeryHigh
	case score >= 60:
		return model.PriorityHigh
	case score >= 40:
		return model.PriorityMedium
	case score >= 20:
		return model.PriorityLow
	default:
		return model.PriorityVeryLow
	}
}

// StatusForAging classifies equipment age.
func StatusForAging(agingDays float64, w Weights) model.InstallStatus {
	switch {
	case agingDays <= w.NewThresholdDays:
		return model.InstallNew
	case agingDays <= w.MediumThresholdDays:
		return model.InstallMedium
	default:
		return model.InstallOld
	}
}

// Score fills the computed fields of an L2 record in place.
func Score(l2 *model.L2Port, w Weights) {
	l2.PriorityScore = L2Score(l2.AvailPorts, l2.TotalPorts, l2.AgingDays, w)
	l2.PriorityLabel = Label(l2.PriorityScore)
	l2.InstallStatus = StatusForAging(l2.AgingDays, w)
}

// Opportunity combines the four visit-planning components, each on a 0-100
// scale, into a single weighted score rounded to two decimals.
func Opportunity(pattern, historical, context, travel float64, w OpportunityWeights) float64 {
	score := w.Pattern*pattern + w.Historical*historical + w.Context*context + w.Travel*travel
	return math.Round(score*100) / 100
}

// PatternScore maps POI popularity (0-100) straight through.
func PatternScore(popularity float64) float64 {
	if popularity < 0 {
		return 0
	}
	return popularity
}

// HistoricalScore rescales a 0-1 hit rate to 0-100.
func HistoricalScore(hitRate float64) float64 {
	if hitRate < 0 {
		return 0
	}
	return 100 * hitRate
}

// TravelScore maps a travel-time bucket to 0-100. Unknown buckets score as mid.
func TravelScore(bucket string) float64 {
	switch bucket {
	case "short": // <= 10 min
		return 100
	case "mid": // 10-20 min
		return 80
	case "long": // > 20 min
		return 60
	default:
		return 80
	}
}
