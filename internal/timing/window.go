package timing

import (
	"fmt"

	"github.com/sells-group/eagle-eye-cli/pkg/besttime"
)

// visitWindowHours is the span of the recommended visiting window.
const visitWindowHours = 2

// BestContiguousWindow slides a span-hour window over one forecast day and
// returns the start hour of the window with the highest average intensity.
// Windows touching a closed hour or a gap in the hour sequence are skipped.
// ok is false when the day has no qualifying window.
func BestContiguousWindow(f *besttime.Forecast, dayIndex, span int) (start int, avg float64, ok bool) {
	if f == nil || dayIndex < 0 || dayIndex >= len(f.Analysis) || span <= 0 {
		return 0, 0, false
	}
	hours := f.Analysis[dayIndex].HourAnalysis

	bestAvg := -1.0
	for i := 0; i+span <= len(hours); i++ {
		sum := 0
		contiguous := true
		for j := 0; j < span; j++ {
			h := hours[i+j]
			if h.IntensityNr == closedIntensity || (j > 0 && h.Hour != hours[i+j-1].Hour+1) {
				contiguous = false
				break
			}
			sum += h.IntensityNr
		}
		if !contiguous {
			continue
		}
		if windowAvg := float64(sum) / float64(span); windowAvg > bestAvg {
			bestAvg = windowAvg
			start = hours[i].Hour
			ok = true
		}
	}
	return start, bestAvg, ok
}

// FormatWindow renders a visiting window like "17:00-19:00".
func FormatWindow(start, span int) string {
	return fmt.Sprintf("%02d:00-%02d:00", start, start+span)
}

// windowFromPeaks anchors a visiting window on the first peak hour, for
// patterns that have no hourly forecast behind them.
func windowFromPeaks(peaks []string) string {
	if len(peaks) == 0 {
		return ""
	}
	var hour int
	if _, err := fmt.Sscanf(peaks[0], "%d:00", &hour); err != nil {
		return ""
	}
	return FormatWindow(hour, visitWindowHours)
}
