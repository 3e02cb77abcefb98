// Package timing derives door-knocking hour recommendations from venue
// foot-traffic forecasts, with synthetic fallbacks when no forecast exists.
package timing

import (
	"fmt"
	"strings"

	"github.com/sells-group/eagle-eye-cli/internal/model"
	"github.com/sells-group/eagle-eye-cli/pkg/besttime"
)

// Forecast day indexes; BestTime counts from Monday.
const (
	dayMonday   = 0
	daySaturday = 5
)

// closedIntensity is BestTime's marker for closed hours.
const closedIntensity = 999

// Default peaks used when a day's analysis yields nothing.
var (
	defaultWeekdayPeaks = []string{"17:00", "18:00", "19:00"}
	defaultWeekendPeaks = []string{"12:00", "17:00", "18:00"}
)

// maxPeaks caps how many peak hours a day contributes.
const maxPeaks = 3

// ExtractPeakHours pulls the first peak hours from one forecast day. Closed
// hours are skipped, and intensities below minIntensity don't count.
func ExtractPeakHours(f *besttime.Forecast, dayIndex, minIntensity int) []string {
	if f == nil || dayIndex >= len(f.Analysis) {
		return nil
	}

	var peaks []string
	for _, h := range f.Analysis[dayIndex].HourAnalysis {
		if h.IntensityNr == closedIntensity || h.IntensityNr < minIntensity {
			continue
		}
		peaks = append(peaks, fmt.Sprintf("%02d:00", h.Hour))
		if len(peaks) == maxPeaks {
			break
		}
	}
	return peaks
}

// Corrected builds a timing pattern from a live forecast. Empty days fall
// back to the default evening peaks.
func Corrected(f *besttime.Forecast) model.TimingPattern {
	weekday := ExtractPeakHours(f, dayMonday, 1)
	weekend := ExtractPeakHours(f, daySaturday, 1)

	p := model.TimingPattern{
		VenueName:  f.VenueInfo.VenueName,
		VenueID:    f.VenueInfo.VenueID,
		Weekday:    weekday,
		Weekend:    weekend,
		BestDay:    "Tuesday",
		Status:     model.TimingLive,
		Confidence: model.ConfidenceHigh,
		DataSource: "BestTime API - " + f.VenueInfo.VenueName,
	}

	if len(weekend) > 0 {
		p.BestDay = "Saturday"
	}
	if len(p.Weekday) == 0 {
		p.Weekday = defaultWeekdayPeaks
	}
	if len(p.Weekend) == 0 {
		p.Weekend = defaultWeekendPeaks
	}

	windowDay := dayMonday
	if p.BestDay == "Saturday" {
		windowDay = daySaturday
	}
	if start, _, ok := BestContiguousWindow(f, windowDay, visitWindowHours); ok {
		p.VisitWindow = FormatWindow(start, visitWindowHours)
	} else {
		p.VisitWindow = windowFromPeaks(p.Weekday)
	}

	if len(weekday) >= 2 {
		p.ActivityLevel = "High"
	} else {
		p.ActivityLevel = "Medium"
	}
	return p
}

// FormatHours joins peak hours for report cells.
func FormatHours(hours []string) string {
	return strings.Join(hours, ", ")
}
