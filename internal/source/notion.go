package source

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jomei/notionapi"
)

// notionPageSize is the largest page the Notion API returns.
const notionPageSize = 100

// DatabaseQuerier runs a query against a Notion database.
type DatabaseQuerier interface {
	QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

// notionClient adapts the SDK client to DatabaseQuerier.
type notionClient struct {
	client *notionapi.Client
}

func (n *notionClient) QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	resp, err := n.client.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
	if err != nil {
		return nil, fmt.Errorf("QueryDatabase: %w", err)
	}
	return resp, nil
}

// NotionSource reads transactions kept as pages of a Notion database. Each
// page is a row and each property a column.
type NotionSource struct {
	databaseID string
	querier    DatabaseQuerier
}

// NewNotionSource reads databaseID with an integration token.
func NewNotionSource(token, databaseID string) (*NotionSource, error) {
	if token == "" {
		return nil, fmt.Errorf("NewNotionSource: integration token is required")
	}
	return NewNotionSourceWithQuerier(databaseID, &notionClient{client: notionapi.NewClient(notionapi.Token(token))})
}

// NewNotionSourceWithQuerier builds a NotionSource around an existing querier.
func NewNotionSourceWithQuerier(databaseID string, q DatabaseQuerier) (*NotionSource, error) {
	databaseID = strings.TrimSpace(databaseID)
	if databaseID == "" {
		return nil, fmt.Errorf("NewNotionSource: database ID is required")
	}
	return &NotionSource{databaseID: databaseID, querier: q}, nil
}

func (s *NotionSource) Name() string { return "notion://" + s.databaseID }

func (s *NotionSource) Close() error { return nil }

// Fetch pages through the whole database. Columns are the union of property
// names across pages, sorted.
func (s *NotionSource) Fetch(ctx context.Context) (*RawTable, error) {
	var pages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: notionPageSize}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := s.querier.QueryDatabase(ctx, s.databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("NotionSource.Fetch: %w", err)
		}
		pages = append(pages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	seen := make(map[string]struct{})
	for _, p := range pages {
		for name := range p.Properties {
			seen[name] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for name := range seen {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	table := &RawTable{Columns: columns, Rows: make([][]any, len(pages))}
	for r, p := range pages {
		row := make([]any, len(columns))
		for c, name := range columns {
			if prop, ok := p.Properties[name]; ok {
				row[c] = propertyValue(prop)
			}
		}
		table.Rows[r] = row
	}
	return table, nil
}

// propertyValue extracts a cell from a property. Types with no tabular
// meaning, and empty values, read as nil.
func propertyValue(prop notionapi.Property) any {
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		return plainText(p.Title)
	case *notionapi.RichTextProperty:
		return plainText(p.RichText)
	case *notionapi.SelectProperty:
		if p.Select.Name == "" {
			return nil
		}
		return p.Select.Name
	case *notionapi.NumberProperty:
		return p.Number
	case *notionapi.DateProperty:
		if p.Date == nil || p.Date.Start == nil {
			return nil
		}
		return time.Time(*p.Date.Start)
	default:
		return nil
	}
}

func plainText(parts []notionapi.RichText) any {
	var b strings.Builder
	for _, rt := range parts {
		b.WriteString(rt.PlainText)
	}
	if b.Len() == 0 {
		return nil
	}
	return b.String()
}
