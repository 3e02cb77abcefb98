package notion

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func blockPage(id notionapi.ObjectID, blockID string) notionapi.Page {
	return notionapi.Page{
		ID: id,
		Properties: notionapi.Properties{
			"Happy Block": &notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{PlainText: blockID}},
			},
		},
	}
}

func TestQueryAll_SinglePage(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-blocks", mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{
				blockPage("p1", "09320-099700"),
				blockPage("p2", "09325-099705"),
			},
			HasMore: false,
		}, nil).Once()

	pages, err := QueryAll(ctx, mc, "db-blocks", nil)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
	mc.AssertExpectations(t)
}

func TestQueryAll_FollowsCursor(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-blocks", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		return req.StartCursor == ""
	})).Return(&notionapi.DatabaseQueryResponse{
		Results:    []notionapi.Page{blockPage("p1", "09320-099700")},
		HasMore:    true,
		NextCursor: notionapi.Cursor("cursor-abc"),
	}, nil).Once()

	mc.On("QueryDatabase", ctx, "db-blocks", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		return req.StartCursor == notionapi.Cursor("cursor-abc")
	})).Return(&notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{blockPage("p2", "07010-100470")},
		HasMore: false,
	}, nil).Once()

	pages, err := QueryAll(ctx, mc, "db-blocks", nil)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, notionapi.ObjectID("p1"), pages[0].ID)
	assert.Equal(t, notionapi.ObjectID("p2"), pages[1].ID)
	mc.AssertExpectations(t)
}

func TestQueryAll_CarriesFilterAcrossPages(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	filter := &notionapi.DatabaseQueryRequest{PageSize: 50}

	mc.On("QueryDatabase", ctx, "db-blocks", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		return req.PageSize == 50 && req.StartCursor == ""
	})).Return(&notionapi.DatabaseQueryResponse{
		HasMore:    true,
		NextCursor: notionapi.Cursor("c1"),
	}, nil).Once()

	mc.On("QueryDatabase", ctx, "db-blocks", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		return req.PageSize == 50 && req.StartCursor == notionapi.Cursor("c1")
	})).Return(&notionapi.DatabaseQueryResponse{HasMore: false}, nil).Once()

	_, err := QueryAll(ctx, mc, "db-blocks", filter)
	require.NoError(t, err)
	mc.AssertExpectations(t)
}

func TestQueryAll_Error(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-blocks", mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(nil, assert.AnError).Once()

	pages, err := QueryAll(ctx, mc, "db-blocks", nil)
	assert.Error(t, err)
	assert.Nil(t, pages)
	mc.AssertExpectations(t)
}

func TestExistingBlockPages(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	noKey := notionapi.Page{
		ID: "stray",
		Properties: notionapi.Properties{
			"Name": notionapi.TitleProperty{},
		},
	}

	mc.On("QueryDatabase", ctx, "db-blocks", mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{
				blockPage("p1", "09320-099700"),
				blockPage("p2", "09325-099705"),
				noKey,
			},
			HasMore: false,
		}, nil).Once()

	byBlock, err := ExistingBlockPages(ctx, mc, "db-blocks")
	require.NoError(t, err)
	require.Len(t, byBlock, 2)
	assert.Equal(t, notionapi.ObjectID("p1"), byBlock["09320-099700"].ID)
	assert.Equal(t, notionapi.ObjectID("p2"), byBlock["09325-099705"].ID)
	assert.NotContains(t, byBlock, "stray")
	mc.AssertExpectations(t)
}

func TestExistingBlockPages_Error(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-blocks", mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(nil, assert.AnError).Once()

	_, err := ExistingBlockPages(ctx, mc, "db-blocks")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notion: load block pages")
}

func TestPageBlockID(t *testing.T) {
	tests := []struct {
		name string
		page notionapi.Page
		want string
	}{
		{"plain text from api", blockPage("p1", "09320-099700"), "09320-099700"},
		{
			"text content from local request",
			notionapi.Page{Properties: notionapi.Properties{
				"Happy Block": notionapi.RichTextProperty{
					RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: "07010-100470"}}},
				},
			}},
			"07010-100470",
		},
		{"missing property", notionapi.Page{Properties: notionapi.Properties{}}, ""},
		{
			"empty rich text",
			notionapi.Page{Properties: notionapi.Properties{
				"Happy Block": &notionapi.RichTextProperty{},
			}},
			"",
		},
		{
			"wrong property type",
			notionapi.Page{Properties: notionapi.Properties{
				"Happy Block": notionapi.NumberProperty{Number: 1},
			}},
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pageBlockID(tt.page))
		})
	}
}
