package mcp

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/qifparse/internal/db"
	"github.com/lox/qifparse/internal/qif"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQIF = `!Account
NEveryday
TBank
DJoint account
$812.40
/01/31/2024
^
!Type:Bank
D01/12/2024
T-42.00
PGas Company
LUtilities:Gas
^
D01/20/2024
T-120.00
PSupermarket
SGroceries
$-100.00
SUtilities:Gas
EReimbursed
$-20.00
^
`

func setupServer(t *testing.T) *Server {
	t.Helper()
	logger := log.New(io.Discard)

	dbConn, err := db.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { dbConn.Close() })

	doc, err := qif.New(qif.WithMonthBeforeDay(true)).ParseString(context.Background(), testQIF)
	require.NoError(t, err)
	_, err = dbConn.StoreQif(context.Background(), "fixture.qif", doc, nil)
	require.NoError(t, err)

	return New(dbConn, logger)
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		expected int
		wantErr  bool
	}{
		{name: "missing", args: map[string]interface{}{}, expected: 7},
		{name: "int", args: map[string]interface{}{"limit": 3}, expected: 3},
		{name: "float", args: map[string]interface{}{"limit": float64(4)}, expected: 4},
		{name: "string", args: map[string]interface{}{"limit": "5"}, expected: 5},
		{name: "empty string", args: map[string]interface{}{"limit": ""}, expected: 7},
		{name: "bad string", args: map[string]interface{}{"limit": "five"}, wantErr: true},
		{name: "bad type", args: map[string]interface{}{"limit": true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := intArg(tt.args, "limit", 7)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestListAccountsHandler(t *testing.T) {
	s := setupServer(t)

	result, err := s.listAccountsHandler(context.Background(), callTool("list_accounts", nil))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Everyday (Bank): 2 activities")
	assert.Contains(t, text, "Balance: 812.4 as of 2024-01-31")
	assert.Contains(t, text, "Total Accounts: 1")
}

func TestSearchTransactionsHandler(t *testing.T) {
	s := setupServer(t)

	result, err := s.searchTransactionsHandler(context.Background(), callTool("search_transactions", map[string]interface{}{
		"query": "reimbursed",
		"limit": float64(5),
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "2024-01-20: -120 - Supermarket")
	assert.Contains(t, text, "Split: -20 Utilities:Gas (Reimbursed)")
	assert.NotContains(t, text, "Gas Company")
	assert.Contains(t, text, "Showing 1 of 1 matches")

	_, err = s.searchTransactionsHandler(context.Background(), callTool("search_transactions", map[string]interface{}{}))
	assert.Error(t, err)
}

func TestListTransactionsHandler(t *testing.T) {
	s := setupServer(t)

	result, err := s.listTransactionsHandler(context.Background(), callTool("list_transactions", map[string]interface{}{
		"since": "2024-01-15",
	}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Supermarket")
	assert.NotContains(t, text, "Gas Company")

	_, err = s.listTransactionsHandler(context.Background(), callTool("list_transactions", map[string]interface{}{
		"since": "last week",
	}))
	assert.Error(t, err)
}

func TestListCategoriesHandler(t *testing.T) {
	s := setupServer(t)

	result, err := s.listCategoriesHandler(context.Background(), callTool("list_categories", nil))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Utilities:Gas")
	assert.Contains(t, text, "Groceries")
	assert.Contains(t, text, "Total Categorized Entries: 3")
}

func TestMCPServerRegistersTools(t *testing.T) {
	s := setupServer(t)
	assert.NotNil(t, s.MCPServer())
}
