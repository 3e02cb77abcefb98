package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/eagle-eye-cli/internal/model"
	"github.com/sells-group/eagle-eye-cli/pkg/anthropic"
)

// fakeAI implements anthropic.Client.
type fakeAI struct {
	createFn func(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error)
}

func (f *fakeAI) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	return f.createFn(ctx, req)
}

func TestGenerateBriefing(t *testing.T) {
	var gotReq anthropic.MessageRequest
	ai := &fakeAI{
		createFn: func(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
			gotReq = req
			return &anthropic.MessageResponse{
				Content: []anthropic.ContentBlock{{Type: "text", Text: "Visit Ban Don first."}},
			}, nil
		},
	}

	rows := []model.ReportRow{
		{
			Level:         model.LevelOverview,
			HappyBlock:    "09320-099700",
			Village:       "Ban Don",
			District:      "Mueang Surat Thani",
			Province:      "Surat Thani",
			PriorityScore: 85.3,
			PriorityLabel: model.PriorityVeryHigh,
			AvailPorts:    12,
			L2Count:       2,
			POIName:       "7-Eleven Talat",
			BestDay:       "Saturday",
			TimingWeekday: "11:00, 17:00",
		},
		{Level: model.LevelDetail, HappyBlock: "09320-099700", L2Name: "SPL-001"},
	}

	text, err := GenerateBriefing(context.Background(), ai, "claude-haiku-4-5-20251001", rows, 10)
	require.NoError(t, err)
	assert.Equal(t, "Visit Ban Don first.", text)

	require.Len(t, gotReq.Messages, 1)
	body := gotReq.Messages[0].Content
	assert.Contains(t, body, "Block 09320-099700, village Ban Don")
	assert.Contains(t, body, "score 85.3 (VERY_HIGH)")
	assert.Contains(t, body, "Landmark: 7-Eleven Talat.")
	assert.Contains(t, body, "Best visit: Saturday")
	require.Len(t, gotReq.System, 1)
	assert.NotNil(t, gotReq.System[0].CacheControl)
}

func TestGenerateBriefing_TopNBound(t *testing.T) {
	ai := &fakeAI{
		createFn: func(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
			assert.NotContains(t, req.Messages[0].Content, "09330-099710")
			return &anthropic.MessageResponse{
				Content: []anthropic.ContentBlock{{Type: "text", Text: "ok"}},
			}, nil
		},
	}

	rows := []model.ReportRow{
		{Level: model.LevelOverview, HappyBlock: "09320-099700", Village: "A"},
		{Level: model.LevelOverview, HappyBlock: "09325-099705", Village: "B"},
		{Level: model.LevelOverview, HappyBlock: "09330-099710", Village: "C"},
	}

	_, err := GenerateBriefing(context.Background(), ai, "claude-haiku-4-5-20251001", rows, 2)
	require.NoError(t, err)
}

func TestGenerateBriefing_NoRows(t *testing.T) {
	ai := &fakeAI{
		createFn: func(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
			t.Fatal("no request expected")
			return nil, nil
		},
	}

	_, err := GenerateBriefing(context.Background(), ai, "claude-haiku-4-5-20251001", nil, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no overview rows")
}

func TestGenerateBriefing_EmptyResponse(t *testing.T) {
	ai := &fakeAI{
		createFn: func(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
			return &anthropic.MessageResponse{}, nil
		},
	}

	rows := []model.ReportRow{{Level: model.LevelOverview, HappyBlock: "09320-099700"}}
	_, err := GenerateBriefing(context.Background(), ai, "claude-haiku-4-5-20251001", rows, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty briefing response")
}
