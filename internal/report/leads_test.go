package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/eagle-eye-cli/internal/model"
	"github.com/sells-group/eagle-eye-cli/pkg/salesforce"
)

// fakeSF implements salesforce.Client with function fields.
type fakeSF struct {
	queryFn            func(ctx context.Context, soql string, out any) error
	insertCollectionFn func(ctx context.Context, sObjectName string, records []map[string]any) ([]salesforce.CollectionResult, error)
	updateCollectionFn func(ctx context.Context, sObjectName string, records []salesforce.CollectionRecord) ([]salesforce.CollectionResult, error)
}

func (f *fakeSF) Query(ctx context.Context, soql string, out any) error {
	if f.queryFn != nil {
		return f.queryFn(ctx, soql, out)
	}
	return nil
}

func (f *fakeSF) InsertCollection(ctx context.Context, sObjectName string, records []map[string]any) ([]salesforce.CollectionResult, error) {
	if f.insertCollectionFn != nil {
		return f.insertCollectionFn(ctx, sObjectName, records)
	}
	results := make([]salesforce.CollectionResult, len(records))
	for i := range records {
		results[i] = salesforce.CollectionResult{Success: true}
	}
	return results, nil
}

func (f *fakeSF) UpdateCollection(ctx context.Context, sObjectName string, records []salesforce.CollectionRecord) ([]salesforce.CollectionResult, error) {
	if f.updateCollectionFn != nil {
		return f.updateCollectionFn(ctx, sObjectName, records)
	}
	results := make([]salesforce.CollectionResult, len(records))
	for i, r := range records {
		results[i] = salesforce.CollectionResult{ID: r.ID, Success: true}
	}
	return results, nil
}

func leadRows() []model.ReportRow {
	return []model.ReportRow{
		{
			Level:           model.LevelOverview,
			HappyBlock:      "09320-099700",
			Village:         "Ban Don",
			District:        "Mueang Surat Thani",
			Province:        "Surat Thani",
			PriorityScore:   85.3,
			PriorityLabel:   model.PriorityVeryHigh,
			Recommendations: "URGENT - 85.3 priority, New installation",
		},
		{
			Level:         model.LevelOverview,
			HappyBlock:    "09325-099705",
			Village:       "Khlong Hae",
			PriorityScore: 62.0,
			PriorityLabel: model.PriorityHigh,
		},
		{
			Level:      model.LevelDetail,
			HappyBlock: "09320-099700",
			L2Name:     "SPL-001",
		},
	}
}

func TestPushLeads_InsertsNewBlocks(t *testing.T) {
	var inserted []map[string]any
	sf := &fakeSF{
		insertCollectionFn: func(ctx context.Context, sObjectName string, records []map[string]any) ([]salesforce.CollectionResult, error) {
			assert.Equal(t, "Lead", sObjectName)
			inserted = records
			results := make([]salesforce.CollectionResult, len(records))
			for i := range records {
				results[i] = salesforce.CollectionResult{Success: true}
			}
			return results, nil
		},
		updateCollectionFn: func(ctx context.Context, sObjectName string, records []salesforce.CollectionRecord) ([]salesforce.CollectionResult, error) {
			t.Fatal("no updates expected when nothing exists")
			return nil, nil
		},
	}

	res, err := PushLeads(context.Background(), sf, leadRows())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Zero(t, res.Updated)

	require.Len(t, inserted, 2)
	assert.Equal(t, "Ban Don", inserted[0]["Company"])
	assert.Equal(t, "09320-099700", inserted[0]["Happy_Block__c"])
	assert.Equal(t, "Hot", inserted[0]["Rating"])
	assert.Equal(t, "Eagle Eye", inserted[0]["LeadSource"])
	assert.Equal(t, "Warm", inserted[1]["Rating"])
}

func TestPushLeads_UpdatesExistingBlocks(t *testing.T) {
	var updated []salesforce.CollectionRecord
	sf := &fakeSF{
		queryFn: func(ctx context.Context, soql string, out any) error {
			leads := out.(*[]salesforce.Lead)
			*leads = []salesforce.Lead{
				{ID: "00Qaa", HappyBlockID: "09320-099700", PriorityScore: 70},
			}
			return nil
		},
		updateCollectionFn: func(ctx context.Context, sObjectName string, records []salesforce.CollectionRecord) ([]salesforce.CollectionResult, error) {
			updated = records
			return []salesforce.CollectionResult{{ID: "00Qaa", Success: true}}, nil
		},
	}

	res, err := PushLeads(context.Background(), sf, leadRows())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Updated)

	require.Len(t, updated, 1)
	assert.Equal(t, "00Qaa", updated[0].ID)
	assert.Equal(t, 85.3, updated[0].Fields["Priority_Score__c"])
	assert.Equal(t, "Hot", updated[0].Fields["Rating"])
}

func TestPushLeads_NoOverviewRows(t *testing.T) {
	sf := &fakeSF{
		queryFn: func(ctx context.Context, soql string, out any) error {
			t.Fatal("query should not run without overview rows")
			return nil
		},
	}

	rows := []model.ReportRow{{Level: model.LevelDetail, L2Name: "SPL-001"}}
	res, err := PushLeads(context.Background(), sf, rows)
	require.NoError(t, err)
	assert.Zero(t, res.Inserted)
	assert.Zero(t, res.Updated)
}

func TestPushLeads_QueryError(t *testing.T) {
	sf := &fakeSF{
		queryFn: func(ctx context.Context, soql string, out any) error {
			return assert.AnError
		},
	}

	_, err := PushLeads(context.Background(), sf, leadRows())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report: dedupe leads")
}

func TestLeadRating(t *testing.T) {
	assert.Equal(t, "Hot", leadRating(model.PriorityVeryHigh))
	assert.Equal(t, "Warm", leadRating(model.PriorityHigh))
	assert.Equal(t, "Cold", leadRating(model.PriorityMedium))
	assert.Equal(t, "Cold", leadRating(model.PriorityLow))
}
