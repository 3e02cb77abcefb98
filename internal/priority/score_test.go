package priority

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/eagle-eye-cli/internal/model"
)

func TestL2Score(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		name  string
		avail int
		total int
		aging float64
		want  float64
	}{
		{"all ports free, new install", 16, 16, 90, 100},
		{"all ports free, medium install", 16, 16, 300, 76},
		{"all ports free, old install", 16, 16, 800, 52},
		{"half free, new install", 8, 16, 30, 80},
		{"no ports free, old install", 0, 16, 900, 12},
		{"zero total ports scores aging only", 5, 0, 90, 60},
		{"negative aging treated as missing", 16, 16, -1, 52},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := L2Score(tt.avail, tt.total, tt.aging, w)
			assert.InDelta(t, tt.want, got, 0.05)
		})
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  model.PriorityLabel
	}{
		{95, model.PriorityVeryHigh},
		{80, model.PriorityVeryHigh},
		{79.9, model.PriorityHigh},
		{60, model.PriorityHigh},
		{45, model.PriorityMedium},
		{20, model.PriorityLow},
		{19.9, model.PriorityVeryLow},
		{0, model.PriorityVeryLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Label(tt.score), "score %.1f", tt.score)
	}
}

func TestStatusForAging(t *testing.T) {
	w := DefaultWeights()

	assert.Equal(t, model.InstallNew, StatusForAging(0, w))
	assert.Equal(t, model.InstallNew, StatusForAging(180, w))
	assert.Equal(t, model.InstallMedium, StatusForAging(181, w))
	assert.Equal(t, model.InstallMedium, StatusForAging(365, w))
	assert.Equal(t, model.InstallOld, StatusForAging(366, w))
}

func TestScoreFillsComputedFields(t *testing.T) {
	l2 := model.L2Port{Name: "SPL-001", AvailPorts: 16, TotalPorts: 16, AgingDays: 90}
	Score(&l2, DefaultWeights())

	assert.InDelta(t, 100, l2.PriorityScore, 0.01)
	assert.Equal(t, model.PriorityVeryHigh, l2.PriorityLabel)
	assert.Equal(t, model.InstallNew, l2.InstallStatus)
}

func TestOpportunity(t *testing.T) {
	w := DefaultWeights().Opportunity

	// 0.45*80 + 0.35*50 + 0.10*70 + 0.10*80 = 68.5
	got := Opportunity(80, 50, 70, 80, w)
	assert.InDelta(t, 68.5, got, 0.001)
}

func TestComponentScores(t *testing.T) {
	assert.Equal(t, 0.0, PatternScore(-3))
	assert.Equal(t, 72.0, PatternScore(72))
	assert.Equal(t, 35.0, HistoricalScore(0.35))
	assert.Equal(t, 0.0, HistoricalScore(-0.1))
	assert.Equal(t, 100.0, TravelScore("short"))
	assert.Equal(t, 80.0, TravelScore("mid"))
	assert.Equal(t, 60.0, TravelScore("long"))
	assert.Equal(t, 80.0, TravelScore("unknown"))
}

func TestLoadWeights(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 0.5\naging: 0.5\nnew_threshold_days: 90\n"), 0o644))

	w, err := LoadWeights(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, w.Port)
	assert.Equal(t, 0.5, w.Aging)
	assert.Equal(t, 90.0, w.NewThresholdDays)
	// Untouched fields keep their defaults.
	assert.Equal(t, 365.0, w.MediumThresholdDays)
	assert.Equal(t, 0.45, w.Opportunity.Pattern)
}

func TestLoadWeightsInvalidSum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 0.9\naging: 0.5\n"), 0o644))

	_, err := LoadWeights(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1.0")
}

func TestLoadWeightsMissingFile(t *testing.T) {
	_, err := LoadWeights(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
