package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/eagle-eye-cli/internal/model"
	"github.com/sells-group/eagle-eye-cli/pkg/anthropic"
)

const briefingSystemPrompt = `You are a field sales operations analyst for a fiber broadband provider in Thailand.
You receive a prioritized list of Happy Blocks (5x5 grid cells with available L2 splitter ports) and write a short door-knocking briefing for the sales team.
For each block mention the village, why it matters (score, ports, installation age), and when to visit if timing data is present.
Keep the briefing under 400 words, in plain prose with one short paragraph per block, ordered exactly as given.`

// GenerateBriefing asks Claude for a door-knocking briefing covering the
// report's top blocks. topN bounds how many OVERVIEW rows are included.
func GenerateBriefing(ctx context.Context, ai anthropic.Client, modelID string, rows []model.ReportRow, topN int) (string, error) {
	summary := briefingInput(rows, topN)
	if summary == "" {
		return "", eris.New("report: no overview rows to brief")
	}

	resp, err := ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     modelID,
		MaxTokens: 1024,
		System:    anthropic.BuildCachedSystemBlocks(briefingSystemPrompt),
		Messages:  []anthropic.Message{{Role: "user", Content: summary}},
	})
	if err != nil {
		return "", eris.Wrap(err, "report: briefing request")
	}
	resp.Usage.LogCost(modelID, "briefing")

	text := resp.Text()
	if text == "" {
		return "", eris.New("report: empty briefing response")
	}
	return text, nil
}

// briefingInput flattens the top OVERVIEW rows into the prompt body.
func briefingInput(rows []model.ReportRow, topN int) string {
	var b strings.Builder
	n := 0
	for _, r := range rows {
		if r.Level != model.LevelOverview {
			continue
		}
		if topN > 0 && n >= topN {
			break
		}
		n++

		fmt.Fprintf(&b, "%d. Block %s, village %s (%s, %s): score %.1f (%s), %d ports across %d L2s.",
			n, r.HappyBlock, r.Village, r.District, r.Province,
			r.PriorityScore, r.PriorityLabel, r.AvailPorts, r.L2Count)
		if r.POIName != "" {
			fmt.Fprintf(&b, " Landmark: %s.", r.POIName)
		}
		if r.BestDay != "" {
			fmt.Fprintf(&b, " Best visit: %s, weekday peaks %s.", r.BestDay, r.TimingWeekday)
		}
		b.WriteString("\n")
	}
	return b.String()
}
