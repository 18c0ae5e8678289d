package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lox/qifparse/internal/types"
)

// OrderBy selects the ordering of search results
type OrderBy string

const (
	OrderByDate      OrderBy = "date"
	OrderByRelevance OrderBy = "relevance"
)

type activityQuery struct {
	limit    int
	account  string
	kind     string
	importID string
	since    time.Time
}

// ActivityQueryOption narrows an activity listing or search
type ActivityQueryOption func(*activityQuery)

// WithLimit caps the number of rows returned
func WithLimit(limit int) ActivityQueryOption {
	return func(q *activityQuery) {
		q.limit = limit
	}
}

// FilterByAccount keeps activities recorded under the named account
func FilterByAccount(name string) ActivityQueryOption {
	return func(q *activityQuery) {
		q.account = name
	}
}

// FilterByKind keeps one activity kind: transaction, investment or memorized
func FilterByKind(kind string) ActivityQueryOption {
	return func(q *activityQuery) {
		q.kind = kind
	}
}

// FilterByImport keeps activities from a single import
func FilterByImport(importID string) ActivityQueryOption {
	return func(q *activityQuery) {
		q.importID = importID
	}
}

// FilterSince keeps dated activities on or after since
func FilterSince(since time.Time) ActivityQueryOption {
	return func(q *activityQuery) {
		q.since = since
	}
}

func (q activityQuery) where() (string, []any) {
	var clauses []string
	var args []any
	if q.account != "" {
		clauses = append(clauses, "a.name = ?")
		args = append(args, q.account)
	}
	if q.kind != "" {
		clauses = append(clauses, "t.kind = ?")
		args = append(args, q.kind)
	}
	if q.importID != "" {
		clauses = append(clauses, "t.import_id = ?")
		args = append(args, q.importID)
	}
	if !q.since.IsZero() {
		clauses = append(clauses, "t.date != '' AND t.date >= ?")
		args = append(args, types.FormatDate(q.since))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

// ActivityRow is a stored activity with the account it belongs to, if any
type ActivityRow struct {
	ID          int64  `json:"id"`
	ImportID    string `json:"import_id"`
	Account     string `json:"account,omitempty"`
	AccountType string `json:"account_type,omitempty"`
	types.ActivityDoc
}

// AccountRow is a stored account with its activity count
type AccountRow struct {
	ID            int64  `json:"id"`
	ImportID      string `json:"import_id"`
	Name          string `json:"name"`
	Type          string `json:"type,omitempty"`
	Description   string `json:"description,omitempty"`
	CreditLimit   string `json:"credit_limit,omitempty"`
	BalanceAmount string `json:"balance_amount,omitempty"`
	BalanceDate   string `json:"balance_date,omitempty"`
	Activities    int    `json:"activities"`
}

// CategoryCount is the number of activities and splits booked to a category
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

const activityColumns = `
	t.id, t.import_id, COALESCE(a.name, ''), COALESCE(a.type, ''),
	t.header, t.kind, t.date, t.num, t.amount, t.cleared, t.payee, t.memo, t.category, t.transfer, t.address,
	t.memorized_type, t.action, t.security, t.price, t.quantity, t.transfer_amount, t.commission, t.first_line`

func scanActivity(rows *sql.Rows) (ActivityRow, error) {
	var r ActivityRow
	var address string
	err := rows.Scan(
		&r.ID, &r.ImportID, &r.Account, &r.AccountType,
		&r.Header, &r.Kind, &r.Date, &r.Num, &r.Amount, &r.Cleared, &r.Payee, &r.Memo, &r.Category, &r.Transfer, &address,
		&r.MemorizedType, &r.Action, &r.Security, &r.Price, &r.Quantity, &r.TransferAmount, &r.Commission, &r.FirstLine,
	)
	r.Address = splitLines(address)
	return r, err
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// ListActivities returns stored activities, newest first
func (d *DB) ListActivities(ctx context.Context, opts ...ActivityQueryOption) ([]ActivityRow, error) {
	var q activityQuery
	for _, opt := range opts {
		opt(&q)
	}
	filter, args := q.where()

	query := `SELECT ` + activityColumns + `
		FROM activities t
		LEFT JOIN accounts a ON a.id = t.account_id
		WHERE 1 = 1` + filter + `
		ORDER BY t.date DESC, t.id`
	if q.limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []ActivityRow
	for rows.Next() {
		r, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	if err := d.loadSplits(ctx, activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// SearchActivities runs a full-text query over payees, memos, categories,
// transfers, securities and account names. It returns the matching page and
// the total number of matches before the limit is applied.
func (d *DB) SearchActivities(ctx context.Context, text string, orderBy OrderBy, opts ...ActivityQueryOption) ([]ActivityRow, int, error) {
	var q activityQuery
	for _, opt := range opts {
		opt(&q)
	}
	filter, filterArgs := q.where()

	from := `
		FROM activities t
		JOIN activities_fts fts ON t.id = fts.rowid
		LEFT JOIN accounts a ON a.id = t.account_id
		WHERE fts.search_body MATCH ?` + filter
	args := append([]any{text}, filterArgs...)

	var total int
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*)"+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	order := " ORDER BY t.date DESC, t.id"
	if orderBy == OrderByRelevance {
		order = " ORDER BY fts.rank, t.date DESC"
	}
	query := "SELECT " + activityColumns + from + order
	if q.limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search activities: %w", err)
	}
	defer rows.Close()

	var activities []ActivityRow
	for rows.Next() {
		r, err := scanActivity(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating activities: %w", err)
	}

	if err := d.loadSplits(ctx, activities); err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

func (d *DB) loadSplits(ctx context.Context, activities []ActivityRow) error {
	if len(activities) == 0 {
		return nil
	}
	byID := make(map[int64]*ActivityRow, len(activities))
	placeholders := make([]string, len(activities))
	args := make([]any, len(activities))
	for i := range activities {
		byID[activities[i].ID] = &activities[i]
		placeholders[i] = "?"
		args[i] = activities[i].ID
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT activity_id, category, transfer, memo, amount, address
		FROM splits
		WHERE activity_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY activity_id, position
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to query splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var s types.SplitDoc
		var address string
		if err := rows.Scan(&id, &s.Category, &s.Transfer, &s.Memo, &s.Amount, &address); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		s.Address = splitLines(address)
		if r, ok := byID[id]; ok {
			r.Splits = append(r.Splits, s)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating splits: %w", err)
	}
	return nil
}

// ListAccounts returns every stored account in import order
func (d *DB) ListAccounts(ctx context.Context) ([]AccountRow, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT
			a.id, a.import_id, a.name, a.type, a.description,
			a.credit_limit, a.balance_amount, a.balance_date,
			(SELECT COUNT(*) FROM activities t WHERE t.account_id = a.id) AS activities
		FROM accounts a
		JOIN imports i ON i.id = a.import_id
		ORDER BY i.rowid, a.position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []AccountRow
	for rows.Next() {
		var a AccountRow
		if err := rows.Scan(
			&a.ID, &a.ImportID, &a.Name, &a.Type, &a.Description,
			&a.CreditLimit, &a.BalanceAmount, &a.BalanceDate, &a.Activities,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// GetCategories returns every category used by an activity or split with
// its usage count, most used first
func (d *DB) GetCategories(ctx context.Context) ([]CategoryCount, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT category, COUNT(*) AS count
		FROM (
			SELECT category FROM activities WHERE category != ''
			UNION ALL
			SELECT category FROM splits WHERE category != ''
		)
		GROUP BY category
		ORDER BY count DESC, category ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []CategoryCount
	for rows.Next() {
		var cat CategoryCount
		if err := rows.Scan(&cat.Category, &cat.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}
