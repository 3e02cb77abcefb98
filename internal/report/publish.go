package report

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/eagle-eye-cli/internal/model"
	"github.com/sells-group/eagle-eye-cli/pkg/notion"
)

// PublishResult counts what a Notion publish touched.
type PublishResult struct {
	Created int
	Updated int
}

// PublishToNotion upserts one Notion page per OVERVIEW row. Existing pages
// are matched on the "Happy Block" rich-text property so re-publishing a
// later report updates them instead of duplicating.
func PublishToNotion(ctx context.Context, c notion.Client, dbID string, rows []model.ReportRow) (PublishResult, error) {
	var res PublishResult

	existing, err := notion.ExistingBlockPages(ctx, c, dbID)
	if err != nil {
		return res, eris.Wrap(err, "report: notion lookup")
	}

	for _, r := range rows {
		if r.Level != model.LevelOverview {
			continue
		}

		props := blockPageProperties(r)
		if page, ok := existing[r.HappyBlock]; ok {
			if _, err := c.UpdatePage(ctx, string(page.ID), &notionapi.PageUpdateRequest{
				Properties: props,
			}); err != nil {
				return res, eris.Wrapf(err, "report: notion update block %s", r.HappyBlock)
			}
			res.Updated++
			continue
		}

		if _, err := c.CreatePage(ctx, &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(dbID),
			},
			Properties: props,
		}); err != nil {
			return res, eris.Wrapf(err, "report: notion create block %s", r.HappyBlock)
		}
		res.Created++
	}

	zap.L().Info("notion publish complete",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
	)
	return res, nil
}

func blockPageProperties(r model.ReportRow) notionapi.Properties {
	return notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Title: richText(fmt.Sprintf("%s %s", r.Village, r.HappyBlock)),
		},
		"Happy Block": notionapi.RichTextProperty{
			RichText: richText(r.HappyBlock),
		},
		"Village": notionapi.RichTextProperty{
			RichText: richText(r.Village),
		},
		"Priority": notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(r.PriorityLabel)},
		},
		"Priority Score": notionapi.NumberProperty{
			Number: r.PriorityScore,
		},
		"Ports Available": notionapi.NumberProperty{
			Number: float64(r.AvailPorts),
		},
		"L2 Count": notionapi.NumberProperty{
			Number: float64(r.L2Count),
		},
		"District": notionapi.RichTextProperty{
			RichText: richText(r.District),
		},
		"POI": notionapi.RichTextProperty{
			RichText: richText(r.POIName),
		},
		"Best Day": notionapi.RichTextProperty{
			RichText: richText(r.BestDay),
		},
		"Weekday Peaks": notionapi.RichTextProperty{
			RichText: richText(r.TimingWeekday),
		},
		"Maps": notionapi.URLProperty{
			URL: r.MapsURL,
		},
		"Recommendation": notionapi.RichTextProperty{
			RichText: richText(r.Recommendations),
		},
	}
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: s},
		},
	}
}
