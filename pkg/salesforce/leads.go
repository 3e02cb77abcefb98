package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// maxBatchSize is the Salesforce Collections API limit per request.
const maxBatchSize = 200

// Lead represents a Salesforce Lead record created from a Happy Block.
type Lead struct {
	ID            string  `json:"Id" salesforce:"Id"`
	Company       string  `json:"Company" salesforce:"Company"`
	LastName      string  `json:"LastName" salesforce:"LastName"`
	Street        string  `json:"Street" salesforce:"Street"`
	City          string  `json:"City" salesforce:"City"`
	State         string  `json:"State" salesforce:"State"`
	Country       string  `json:"Country" salesforce:"Country"`
	Description   string  `json:"Description" salesforce:"Description"`
	LeadSource    string  `json:"LeadSource" salesforce:"LeadSource"`
	Rating        string  `json:"Rating" salesforce:"Rating"`
	HappyBlockID  string  `json:"Happy_Block__c" salesforce:"Happy_Block__c"`
	PriorityScore float64 `json:"Priority_Score__c" salesforce:"Priority_Score__c"`
}

// leadFields are the SOQL fields selected for Lead queries.
var leadFields = []string{
	"Id", "Company", "LastName", "Street", "City", "State", "Country",
	"Description", "LeadSource", "Rating",
	"Happy_Block__c", "Priority_Score__c",
}

// FindLeadsByBlockIDs queries Salesforce for existing leads whose
// Happy_Block__c matches any of the given block IDs. Used to dedupe
// before pushing a new report's top blocks.
func FindLeadsByBlockIDs(ctx context.Context, c Client, blockIDs []string) ([]Lead, error) {
	if len(blockIDs) == 0 {
		return nil, nil
	}

	quoted := make([]string, len(blockIDs))
	for i, id := range blockIDs {
		quoted[i] = "'" + escapeSoql(id) + "'"
	}
	soql := fmt.Sprintf(
		"SELECT %s FROM Lead WHERE Happy_Block__c IN (%s)",
		strings.Join(leadFields, ", "),
		strings.Join(quoted, ", "),
	)

	var leads []Lead
	if err := c.Query(ctx, soql, &leads); err != nil {
		return nil, eris.Wrap(err, "sf: find leads by block ids")
	}
	return leads, nil
}

// Fields converts the lead into the map shape the Collections API expects.
// The Id field is omitted; Salesforce assigns it on insert.
func (l Lead) Fields() map[string]any {
	return map[string]any{
		"Company":           l.Company,
		"LastName":          l.LastName,
		"Street":            l.Street,
		"City":              l.City,
		"State":             l.State,
		"Country":           l.Country,
		"Description":       l.Description,
		"LeadSource":        l.LeadSource,
		"Rating":            l.Rating,
		"Happy_Block__c":    l.HappyBlockID,
		"Priority_Score__c": l.PriorityScore,
	}
}

// BulkInsertLeads splits leads into batches of 200 (SF Collections API limit)
// and sends them via InsertCollection.
func BulkInsertLeads(ctx context.Context, c Client, leads []Lead) ([]CollectionResult, error) {
	if len(leads) == 0 {
		return nil, nil
	}

	var allResults []CollectionResult

	for start := 0; start < len(leads); start += maxBatchSize {
		end := min(start+maxBatchSize, len(leads))
		batch := leads[start:end]

		records := make([]map[string]any, len(batch))
		for i, l := range batch {
			records[i] = l.Fields()
		}

		results, err := c.InsertCollection(ctx, "Lead", records)
		if err != nil {
			return allResults, eris.Wrap(err, fmt.Sprintf("sf: bulk insert leads batch %d-%d", start, end))
		}
		allResults = append(allResults, results...)
	}

	return allResults, nil
}

// LeadUpdate holds a lead ID and the fields to update.
type LeadUpdate struct {
	ID     string
	Fields map[string]any
}

// BulkUpdateLeads splits updates into batches of 200 and sends them via
// UpdateCollection. Used to refresh priority scores on leads that already
// exist for a block.
func BulkUpdateLeads(ctx context.Context, c Client, updates []LeadUpdate) ([]CollectionResult, error) {
	if len(updates) == 0 {
		return nil, nil
	}

	var allResults []CollectionResult

	for start := 0; start < len(updates); start += maxBatchSize {
		end := min(start+maxBatchSize, len(updates))
		batch := updates[start:end]

		records := make([]CollectionRecord, len(batch))
		for i, u := range batch {
			records[i] = CollectionRecord(u)
		}

		results, err := c.UpdateCollection(ctx, "Lead", records)
		if err != nil {
			return allResults, eris.Wrap(err, fmt.Sprintf("sf: bulk update leads batch %d-%d", start, end))
		}
		allResults = append(allResults, results...)
	}

	return allResults, nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
