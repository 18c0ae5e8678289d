package search

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/qifparse/internal/db"
)

type searchOptions struct {
	limit   int
	account string
	kind    string
	since   time.Time
	orderBy db.OrderBy
}

// SearchOption is a function that modifies search options
type SearchOption func(*searchOptions)

// WithLimit sets the limit for search
func WithLimit(limit int) SearchOption {
	return func(opts *searchOptions) {
		opts.limit = limit
	}
}

// WithAccount restricts results to one account
func WithAccount(name string) SearchOption {
	return func(opts *searchOptions) {
		opts.account = name
	}
}

// WithKind restricts results to transaction, investment or memorized activity
func WithKind(kind string) SearchOption {
	return func(opts *searchOptions) {
		opts.kind = kind
	}
}

// WithSince drops activity dated before since
func WithSince(since time.Time) SearchOption {
	return func(opts *searchOptions) {
		opts.since = since
	}
}

// OrderByRelevance sets the order by relevance
func OrderByRelevance() SearchOption {
	return func(opts *searchOptions) {
		opts.orderBy = db.OrderByRelevance
	}
}

// OrderByDate sets the order by date
func OrderByDate() SearchOption {
	return func(opts *searchOptions) {
		opts.orderBy = db.OrderByDate
	}
}

// Results is one page of search results
type Results struct {
	Results    []db.ActivityRow `json:"results"`
	TotalCount int              `json:"total_count"`
	Limit      int              `json:"limit,omitempty"`
}

func buildOptions(opts []SearchOption) searchOptions {
	options := searchOptions{orderBy: db.OrderByDate}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func (o searchOptions) queryOptions() []db.ActivityQueryOption {
	var dbOpts []db.ActivityQueryOption
	if o.limit > 0 {
		dbOpts = append(dbOpts, db.WithLimit(o.limit))
	}
	if o.account != "" {
		dbOpts = append(dbOpts, db.FilterByAccount(o.account))
	}
	if o.kind != "" {
		dbOpts = append(dbOpts, db.FilterByKind(o.kind))
	}
	if !o.since.IsZero() {
		dbOpts = append(dbOpts, db.FilterSince(o.since))
	}
	return dbOpts
}

// MatchQuery turns free text into an FTS5 query that matches every word.
// Words are quoted so punctuation such as the colon in "Housing:Rent" is
// not read as query syntax.
func MatchQuery(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}

// TextSearch performs a full-text search over stored activity
func TextSearch(ctx context.Context, logger *log.Logger, dbConn *db.DB, query string, opts ...SearchOption) (Results, error) {
	options := buildOptions(opts)
	match := MatchQuery(query)
	if match == "" {
		return Results{Results: []db.ActivityRow{}, Limit: options.limit}, nil
	}

	startTime := time.Now()
	rows, total, err := dbConn.SearchActivities(ctx, match, options.orderBy, options.queryOptions()...)
	if err != nil {
		return Results{}, err
	}
	if rows == nil {
		rows = []db.ActivityRow{}
	}

	logger.Debug("Text search completed",
		"query", query,
		"results", len(rows),
		"total_count", total,
		"orderBy", options.orderBy,
		"duration", time.Since(startTime))

	return Results{
		Results:    rows,
		TotalCount: total,
		Limit:      options.limit,
	}, nil
}

// List returns stored activity newest first without a text query
func List(ctx context.Context, dbConn *db.DB, opts ...SearchOption) ([]db.ActivityRow, error) {
	options := buildOptions(opts)
	rows, err := dbConn.ListActivities(ctx, options.queryOptions()...)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []db.ActivityRow{}
	}
	return rows, nil
}
