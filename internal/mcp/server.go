package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/qifparse/internal/db"
	"github.com/lox/qifparse/internal/search"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type Server struct {
	db     *db.DB
	logger *log.Logger
}

func New(db *db.DB, logger *log.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
	}
}

// MCPServer builds the tool server without starting a transport
func (s *Server) MCPServer() *server.MCPServer {
	mcpServer := server.NewMCPServer(
		"QIF Transaction Browser",
		"1.0.0",
	)

	mcpServer.AddTool(mcp.NewTool("list_accounts",
		mcp.WithDescription("List imported accounts with their balances and activity counts"),
	), s.listAccountsHandler)

	mcpServer.AddTool(mcp.NewTool("search_transactions",
		mcp.WithDescription("Full-text search over imported payees, memos, categories and accounts"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query - what you're looking for"),
		),
		mcp.WithString("limit",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
		mcp.WithString("account",
			mcp.Description("Only search activity in this account. Use list_accounts to see account names."),
		),
		mcp.WithString("kind",
			mcp.Description("Filter by activity kind (transaction, investment, memorized)"),
		),
	), s.searchTransactionsHandler)

	mcpServer.AddTool(mcp.NewTool("list_transactions",
		mcp.WithDescription("List imported activity, newest first, with optional filters"),
		mcp.WithString("limit",
			mcp.Description("Maximum number of results to return (default: 50)"),
		),
		mcp.WithString("account",
			mcp.Description("Only list activity in this account. Use list_accounts to see account names."),
		),
		mcp.WithString("kind",
			mcp.Description("Filter by activity kind (transaction, investment, memorized)"),
		),
		mcp.WithString("since",
			mcp.Description("Only list activity dated on or after this date (YYYY-MM-DD)"),
		),
	), s.listTransactionsHandler)

	mcpServer.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List all categories used by transactions and splits with their counts"),
	), s.listCategoriesHandler)

	return mcpServer
}

func (s *Server) Run() error {
	// Start the stdio server
	if err := server.ServeStdio(s.MCPServer()); err != nil {
		return err
	}

	return nil
}

// intArg reads an optional integer argument sent as a number or a string
func intArg(args map[string]interface{}, name string, def int) (int, error) {
	val, ok := args[name]
	if !ok {
		return def, nil
	}
	switch v := val.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	case string:
		if v == "" {
			return def, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", name, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number or string", name)
	}
}

func filterOptions(args map[string]interface{}) []search.SearchOption {
	var opts []search.SearchOption
	if account, _ := args["account"].(string); account != "" {
		opts = append(opts, search.WithAccount(account))
	}
	if kind, _ := args["kind"].(string); kind != "" {
		opts = append(opts, search.WithKind(kind))
	}
	return opts
}

func formatActivity(b *strings.Builder, r db.ActivityRow) {
	date := r.Date
	if date == "" {
		date = "(undated)"
	}
	fmt.Fprintf(b, "%s: %s - %s\n", date, r.Amount, r.Payee)
	fmt.Fprintf(b, "  Kind: %s\n", r.Kind)
	if r.Account != "" {
		fmt.Fprintf(b, "  Account: %s (%s)\n", r.Account, r.AccountType)
	}
	if r.Num != "" {
		fmt.Fprintf(b, "  Number: %s\n", r.Num)
	}
	if r.Category != "" {
		fmt.Fprintf(b, "  Category: %s\n", r.Category)
	}
	if r.Transfer != "" {
		fmt.Fprintf(b, "  Transfer: %s\n", r.Transfer)
	}
	if r.Memo != "" {
		fmt.Fprintf(b, "  Memo: %s\n", r.Memo)
	}
	if r.Action != "" {
		fmt.Fprintf(b, "  Action: %s\n", r.Action)
	}
	if r.Security != "" {
		fmt.Fprintf(b, "  Security: %s\n", r.Security)
	}
	if r.Quantity != "" {
		fmt.Fprintf(b, "  Quantity: %s @ %s\n", r.Quantity, r.Price)
	}
	for _, s := range r.Splits {
		target := s.Category
		if s.Transfer != "" {
			target = "[" + s.Transfer + "]"
		}
		fmt.Fprintf(b, "  Split: %s %s", s.Amount, target)
		if s.Memo != "" {
			fmt.Fprintf(b, " (%s)", s.Memo)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (s *Server) listAccountsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	accounts, err := s.db.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	var b strings.Builder
	for _, a := range accounts {
		fmt.Fprintf(&b, "%s (%s): %d activities\n", a.Name, a.Type, a.Activities)
		if a.Description != "" {
			fmt.Fprintf(&b, "  Description: %s\n", a.Description)
		}
		if a.BalanceAmount != "" {
			fmt.Fprintf(&b, "  Balance: %s", a.BalanceAmount)
			if a.BalanceDate != "" {
				fmt.Fprintf(&b, " as of %s", a.BalanceDate)
			}
			b.WriteString("\n")
		}
		if a.CreditLimit != "" {
			fmt.Fprintf(&b, "  Credit Limit: %s\n", a.CreditLimit)
		}
	}
	fmt.Fprintf(&b, "\nTotal Accounts: %d\n", len(accounts))

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) searchTransactionsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments
	query, ok := args["query"].(string)
	if !ok {
		return nil, errors.New("query must be a string")
	}

	limit, err := intArg(args, "limit", 10)
	if err != nil {
		return nil, err
	}

	opts := append(filterOptions(args), search.WithLimit(limit), search.OrderByRelevance())
	results, err := search.TextSearch(ctx, s.logger, s.db, query, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to search transactions: %w", err)
	}

	var b strings.Builder
	for _, r := range results.Results {
		formatActivity(&b, r)
	}
	fmt.Fprintf(&b, "Showing %d of %d matches\n", len(results.Results), results.TotalCount)

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) listTransactionsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments

	limit, err := intArg(args, "limit", 50)
	if err != nil {
		return nil, err
	}

	opts := append(filterOptions(args), search.WithLimit(limit))
	if since, _ := args["since"].(string); since != "" {
		t, err := time.Parse("2006-01-02", since)
		if err != nil {
			return nil, fmt.Errorf("since must be a YYYY-MM-DD date: %w", err)
		}
		opts = append(opts, search.WithSince(t))
	}

	activities, err := search.List(ctx, s.db, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	var b strings.Builder
	for _, r := range activities {
		formatActivity(&b, r)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) listCategoriesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categories, err := s.db.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	var b strings.Builder
	b.WriteString("Transaction Categories\n\n")

	var total int
	for _, cat := range categories {
		fmt.Fprintf(&b, "%-30s %d uses\n", cat.Category, cat.Count)
		total += cat.Count
	}

	fmt.Fprintf(&b, "\nTotal Categorized Entries: %d\n", total)

	return mcp.NewToolResultText(b.String()), nil
}
