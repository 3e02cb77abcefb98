package anthropic

import "go.uber.org/zap"

// TokenUsage tallies what a call consumed.
type TokenUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

// modelRate holds USD per million tokens.
type modelRate struct {
	input  float64
	output float64
}

var modelRates = map[string]modelRate{
	"claude-haiku-4-5-20251001":  {input: 0.80, output: 4.00},
	"claude-sonnet-4-5-20250929": {input: 3.00, output: 15.00},
	"claude-opus-4-5-20251101":   {input: 5.00, output: 25.00},
}

// Cache writes bill at a premium on the input rate, reads at a discount.
const (
	cacheWriteMultiplier = 1.25
	cacheReadMultiplier  = 0.1
)

// EstimateCost converts usage into USD for a known model, 0 otherwise.
func (u TokenUsage) EstimateCost(model string) float64 {
	rate, ok := modelRates[model]
	if !ok {
		return 0
	}
	perM := func(tokens int64) float64 { return float64(tokens) / 1e6 }
	return perM(u.InputTokens)*rate.input +
		perM(u.OutputTokens)*rate.output +
		perM(u.CacheCreationInputTokens)*rate.input*cacheWriteMultiplier +
		perM(u.CacheReadInputTokens)*rate.input*cacheReadMultiplier
}

// LogCost records usage and estimated spend for one briefing phase.
func (u TokenUsage) LogCost(model, phase string) {
	zap.L().Info("cost attribution",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Int64("cache_write_tokens", u.CacheCreationInputTokens),
		zap.Int64("cache_read_tokens", u.CacheReadInputTokens),
		zap.Float64("estimated_cost_usd", u.EstimateCost(model)),
	)
}
