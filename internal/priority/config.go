package priority

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Weights controls the composite L2 priority score and the opportunity score.
type Weights struct {
	// L2 priority: Port + Aging must sum to 1.0.
	Port  float64 `yaml:"port"`
	Aging float64 `yaml:"aging"`

	// Aging urgency thresholds in days.
	NewThresholdDays    float64 `yaml:"new_threshold_days"`
	MediumThresholdDays float64 `yaml:"medium_threshold_days"`

	Opportunity OpportunityWeights `yaml:"opportunity"`
}

// OpportunityWeights weight the four opportunity-score components.
type OpportunityWeights struct {
	Pattern    float64 `yaml:"pattern"`
	Historical float64 `yaml:"historical"`
	Context    float64 `yaml:"context"`
	Travel     float64 `yaml:"travel"`
}

// DefaultWeights returns the production scoring weights: 40% port
// availability, 60% aging urgency.
func DefaultWeights() Weights {
	return Weights{
		Port:                0.4,
		Aging:               0.6,
		NewThresholdDays:    180,
		MediumThresholdDays: 365,
		Opportunity: OpportunityWeights{
			Pattern:    0.45,
			Historical: 0.35,
			Context:    0.10,
			Travel:     0.10,
		},
	}
}

// LoadWeights reads weight overrides from a YAML file. Zero-valued fields
// fall back to the defaults.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()

	data, err := os.ReadFile(path)
	if err != nil {
		return w, eris.Wrapf(err, "priority: read weights %s", path)
	}

	var override Weights
	if err := yaml.Unmarshal(data, &override); err != nil {
		return w, eris.Wrapf(err, "priority: parse weights %s", path)
	}

	if override.Port > 0 || override.Aging > 0 {
		w.Port = override.Port
		w.Aging = override.Aging
	}
	if override.NewThresholdDays > 0 {
		w.NewThresholdDays = override.NewThresholdDays
	}
	if override.MediumThresholdDays > 0 {
		w.MediumThresholdDays = override.MediumThresholdDays
	}
	if ow := override.Opportunity; ow.Pattern > 0 || ow.Historical > 0 || ow.Context > 0 || ow.Travel > 0 {
		w.Opportunity = ow
	}

	if err := w.Validate(); err != nil {
		return DefaultWeights(), err
	}
	return w, nil
}

// Validate checks weight consistency.
func (w Weights) Validate() error {
	if sum := w.Port + w.Aging; sum < 0.99 || sum > 1.01 {
		return eris.Errorf("priority: port+aging weights must sum to 1.0, got %.2f", sum)
	}
	if w.NewThresholdDays <= 0 || w.MediumThresholdDays <= w.NewThresholdDays {
		return eris.New("priority: aging thresholds must be positive and increasing")
	}
	return nil
}
