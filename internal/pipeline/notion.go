package pipeline

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
)

// NotionClipper handles clipping crawled records to a Notion database.
type NotionClipper struct {
	client *notionapi.Client
	dbID   notionapi.DatabaseID
}

// NewNotionClipper creates a new Notion clipper.
func NewNotionClipper(token, databaseID string) (*NotionClipper, error) {
	if token == "" {
		return nil, fmt.Errorf("NOTION_TOKEN is required")
	}

	nc := &NotionClipper{client: notionapi.NewClient(notionapi.Token(token))}
	if databaseID != "" {
		nc.dbID = notionapi.DatabaseID(databaseID)
	}
	return nc, nil
}

// CreateDatabase creates a new Notion database for record clipping and
// returns its ID.
func (nc *NotionClipper) CreateDatabase(ctx context.Context, pageID string) (string, error) {
	if pageID == "" {
		return "", fmt.Errorf("NOTION_PAGE_ID is required to create a new database")
	}

	dbRequest := &notionapi.DatabaseCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(pageID),
		},
		Title: []notionapi.RichText{
			{Text: &notionapi.Text{Content: "Med-Ref Updates"}},
		},
		Properties: notionapi.PropertyConfigs{
			"Title": notionapi.TitlePropertyConfig{
				Type: notionapi.PropertyConfigTypeTitle,
			},
			"URL": notionapi.URLPropertyConfig{
				Type: notionapi.PropertyConfigTypeURL,
			},
			"Publisher": notionapi.SelectPropertyConfig{
				Type: notionapi.PropertyConfigTypeSelect,
				Select: notionapi.Select{
					Options: []notionapi.Option{
						{Name: "MHLW", Color: notionapi.ColorBlue},
						{Name: "PMDA", Color: notionapi.ColorGreen},
						{Name: "AMED", Color: notionapi.ColorPurple},
						{Name: "JST", Color: notionapi.ColorYellow},
						{Name: "FDA", Color: notionapi.ColorRed},
						{Name: "EC DG SANTE", Color: notionapi.ColorOrange},
					},
				},
			},
			"DocType": notionapi.SelectPropertyConfig{
				Type: notionapi.PropertyConfigTypeSelect,
				Select: notionapi.Select{
					Options: []notionapi.Option{
						{Name: "call", Color: notionapi.ColorGreen},
						{Name: "guidance", Color: notionapi.ColorBlue},
						{Name: "notice", Color: notionapi.ColorGray},
						{Name: "safety", Color: notionapi.ColorRed},
						{Name: "news", Color: notionapi.ColorYellow},
						{Name: "other", Color: notionapi.ColorDefault},
					},
				},
			},
			"Change": notionapi.SelectPropertyConfig{
				Type: notionapi.PropertyConfigTypeSelect,
				Select: notionapi.Select{
					Options: []notionapi.Option{
						{Name: "new", Color: notionapi.ColorGreen},
						{Name: "updated", Color: notionapi.ColorOrange},
						{Name: "unchanged", Color: notionapi.ColorGray},
					},
				},
			},
			"Date": notionapi.RichTextPropertyConfig{
				Type: notionapi.PropertyConfigTypeRichText,
			},
			"Summary": notionapi.RichTextPropertyConfig{
				Type: notionapi.PropertyConfigTypeRichText,
			},
		},
	}

	db, err := nc.client.Database.Create(ctx, dbRequest)
	if err != nil {
		return "", fmt.Errorf("failed to create Notion database: %w", err)
	}

	nc.dbID = notionapi.DatabaseID(db.ID)
	return string(db.ID), nil
}

// ClipRecord clips one record to the Notion database.
func (nc *NotionClipper) ClipRecord(ctx context.Context, rec Record) error {
	if nc.dbID == "" {
		return fmt.Errorf("database ID not set")
	}

	properties := notionapi.Properties{
		"Title": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Text: &notionapi.Text{Content: rec.Title}},
			},
		},
		"URL": notionapi.URLProperty{
			Type: notionapi.PropertyTypeURL,
			URL:  rec.Citation.Link,
		},
		"Publisher": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: rec.Citation.Publisher},
		},
		"DocType": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: string(rec.DocType)},
		},
		"Date": notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Text: &notionapi.Text{Content: rec.Date}},
			},
		},
		"Summary": notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Text: &notionapi.Text{Content: rec.Summary}},
			},
		},
	}

	if rec.ChangeType != "" {
		properties["Change"] = notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: string(rec.ChangeType)},
		}
	}

	_, err := nc.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: nc.dbID,
		},
		Properties: properties,
	})
	if err != nil {
		return fmt.Errorf("failed to clip record %q: %w", rec.Title, err)
	}
	return nil
}

// ClipFreshRecords clips every new or updated record in the bundle and
// returns the number of pages created. Per-record failures are logged and
// skipped.
func (nc *NotionClipper) ClipFreshRecords(ctx context.Context, bundle ReferenceBundle) int {
	clipped := 0
	for _, src := range bundle.Sources {
		for _, rec := range src.Items {
			if rec.ChangeType == ChangeUnchanged {
				continue
			}
			if err := nc.ClipRecord(ctx, rec); err != nil {
				warnf("notion: %v", err)
				continue
			}
			clipped++
		}
	}
	return clipped
}
