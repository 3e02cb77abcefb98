package report

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/eagle-eye-cli/internal/model"
	"github.com/sells-group/eagle-eye-cli/pkg/salesforce"
)

// LeadPushResult counts what a Salesforce push touched.
type LeadPushResult struct {
	Inserted int
	Updated  int
}

// PushLeads mirrors the report's OVERVIEW rows into Salesforce: new blocks
// become leads, blocks that already have a lead get their score and rating
// refreshed.
func PushLeads(ctx context.Context, c salesforce.Client, rows []model.ReportRow) (LeadPushResult, error) {
	var res LeadPushResult

	var overview []model.ReportRow
	var blockIDs []string
	for _, r := range rows {
		if r.Level == model.LevelOverview {
			overview = append(overview, r)
			blockIDs = append(blockIDs, r.HappyBlock)
		}
	}
	if len(overview) == 0 {
		return res, nil
	}

	existing, err := salesforce.FindLeadsByBlockIDs(ctx, c, blockIDs)
	if err != nil {
		return res, eris.Wrap(err, "report: dedupe leads")
	}
	leadByBlock := make(map[string]salesforce.Lead, len(existing))
	for _, l := range existing {
		leadByBlock[l.HappyBlockID] = l
	}

	var inserts []salesforce.Lead
	var updates []salesforce.LeadUpdate
	for _, r := range overview {
		if lead, ok := leadByBlock[r.HappyBlock]; ok {
			updates = append(updates, salesforce.LeadUpdate{
				ID: lead.ID,
				Fields: map[string]any{
					"Priority_Score__c": r.PriorityScore,
					"Rating":            leadRating(r.PriorityLabel),
					"Description":       r.Recommendations,
				},
			})
			continue
		}
		inserts = append(inserts, leadFromRow(r))
	}

	insertResults, err := salesforce.BulkInsertLeads(ctx, c, inserts)
	if err != nil {
		return res, eris.Wrap(err, "report: insert leads")
	}
	for _, ir := range insertResults {
		if ir.Success {
			res.Inserted++
		}
	}

	updateResults, err := salesforce.BulkUpdateLeads(ctx, c, updates)
	if err != nil {
		return res, eris.Wrap(err, "report: update leads")
	}
	for _, ur := range updateResults {
		if ur.Success {
			res.Updated++
		}
	}

	zap.L().Info("salesforce push complete",
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
	)
	return res, nil
}

func leadFromRow(r model.ReportRow) salesforce.Lead {
	return salesforce.Lead{
		Company:       r.Village,
		LastName:      "Happy Block " + r.HappyBlock,
		City:          r.District,
		State:         r.Province,
		Country:       "Thailand",
		Description:   r.Recommendations,
		LeadSource:    "Eagle Eye",
		Rating:        leadRating(r.PriorityLabel),
		HappyBlockID:  r.HappyBlock,
		PriorityScore: r.PriorityScore,
	}
}

func leadRating(label model.PriorityLabel) string {
	switch label {
	case model.PriorityVeryHigh:
		return "Hot"
	case model.PriorityHigh:
		return "Warm"
	default:
		return "Cold"
	}
}
