package db

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/qifparse/internal/qif"
	"github.com/lox/qifparse/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQIF = `!Type:Cat
NGroceries
E
^
!Type:Memorized
KP
T-12.00
PStreaming Co
LEntertainment
^
!Account
NChecking
TBank
$1,500.25
/12/31/2000
^
!Type:Bank
D01/06/2001
T-250.00
PLandlord
MJanuary rent
LHousing:Rent
A12 High St
^
D01/07/2001
T-80.00
PFarmers Market
SGroceries
EFruit
$-30.00
S[Savings]
ETop up
$-50.00
^
!Account
NBroker
TInvst
^
!Type:Invst
D02/01/2001
NBuy
YAcme Corp
Q100
T1,050.00
^
`

func setupTestDB(t *testing.T) (*DB, func()) {
	// Create a temporary directory for the test database
	tempDir, err := os.MkdirTemp("", "qifparse-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	// Create a logger that discards output
	logger := log.New(io.Discard)
	logger.SetLevel(log.DebugLevel)

	db, err := New(tempDir, logger)
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("failed to create database: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.RemoveAll(tempDir)
	}

	return db, cleanup
}

func storeTestQIF(t *testing.T, db *DB) string {
	t.Helper()
	doc, err := qif.New(qif.WithMonthBeforeDay(true)).ParseString(context.Background(), testQIF)
	require.NoError(t, err)

	var stored int
	importID, err := db.StoreQif(context.Background(), "test.qif", doc, func() { stored++ })
	require.NoError(t, err)
	require.NotEmpty(t, importID)
	require.Equal(t, doc.ActivityCount(), stored)
	return importID
}

func TestStoreAndListAccounts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	importID := storeTestQIF(t, db)

	accounts, err := db.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, importID, accounts[0].ImportID)
	assert.Equal(t, "Checking", accounts[0].Name)
	assert.Equal(t, "Bank", accounts[0].Type)
	assert.Equal(t, "1500.25", accounts[0].BalanceAmount)
	assert.Equal(t, "2000-12-31", accounts[0].BalanceDate)
	assert.Equal(t, 2, accounts[0].Activities)

	assert.Equal(t, "Broker", accounts[1].Name)
	assert.Equal(t, 1, accounts[1].Activities)
}

func TestListActivities(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storeTestQIF(t, db)
	ctx := context.Background()

	count, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	activities, err := db.ListActivities(ctx, FilterByAccount("Checking"))
	require.NoError(t, err)
	require.Len(t, activities, 2)

	// Newest first
	market := activities[0]
	assert.Equal(t, "2001-01-07", market.Date)
	assert.Equal(t, "Checking", market.Account)
	assert.Equal(t, "Bank", market.AccountType)
	assert.Equal(t, "-80", market.Amount)
	require.Len(t, market.Splits, 2)
	assert.Equal(t, types.SplitDoc{Category: "Groceries", Memo: "Fruit", Amount: "-30"}, market.Splits[0])
	assert.Equal(t, types.SplitDoc{Transfer: "Savings", Memo: "Top up", Amount: "-50"}, market.Splits[1])

	rent := activities[1]
	assert.Equal(t, "Housing:Rent", rent.Category)
	assert.Equal(t, []string{"12 High St"}, rent.Address)
	assert.Empty(t, rent.Splits)

	memorized, err := db.ListActivities(ctx, FilterByKind("memorized"))
	require.NoError(t, err)
	require.Len(t, memorized, 1)
	assert.Equal(t, "", memorized[0].Account)
	assert.Equal(t, "P", memorized[0].MemorizedType)
	assert.Equal(t, "!Type:Memorized", memorized[0].Header)

	recent, err := db.ListActivities(ctx, FilterSince(time.Date(2001, 2, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "investment", recent[0].Kind)
	assert.Equal(t, "Acme Corp", recent[0].Security)

	limited, err := db.ListActivities(ctx, WithLimit(1))
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSearchActivities(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storeTestQIF(t, db)
	ctx := context.Background()

	tests := []struct {
		name     string
		query    string
		opts     []ActivityQueryOption
		expected []string
		total    int
	}{
		{name: "payee", query: "landlord", expected: []string{"Landlord"}, total: 1},
		{name: "memo", query: "rent", expected: []string{"Landlord"}, total: 1},
		{name: "split memo", query: "fruit", expected: []string{"Farmers Market"}, total: 1},
		{name: "account name", query: "checking", expected: []string{"Farmers Market", "Landlord"}, total: 2},
		{name: "limited", query: "checking", opts: []ActivityQueryOption{WithLimit(1)}, expected: []string{"Farmers Market"}, total: 2},
		{name: "no match", query: "casino", expected: nil, total: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, total, err := db.SearchActivities(ctx, tt.query, OrderByDate, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)

			var payees []string
			for _, r := range results {
				payees = append(payees, r.Payee)
			}
			assert.Equal(t, tt.expected, payees)
		})
	}
}

func TestGetCategories(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storeTestQIF(t, db)

	categories, err := db.GetCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []CategoryCount{
		{Category: "Entertainment", Count: 1},
		{Category: "Groceries", Count: 1},
		{Category: "Housing:Rent", Count: 1},
	}, categories)
}

func TestStoreTwiceKeepsImportsApart(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	first := storeTestQIF(t, db)
	second := storeTestQIF(t, db)
	assert.NotEqual(t, first, second)

	activities, err := db.ListActivities(context.Background(), FilterByImport(second))
	require.NoError(t, err)
	assert.Len(t, activities, 4)

	count, err := db.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, count)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := log.New(io.Discard)
	require.NoError(t, ApplyMigrations(context.Background(), db.DB(), logger))

	var applied int
	require.NoError(t, db.DB().QueryRow("SELECT COUNT(*) FROM migrations").Scan(&applied))
	assert.Equal(t, len(migrations), applied)
}

func TestActivityReporterSkipsReplayedActivity(t *testing.T) {
	var calls int
	report := activityReporter(func() { calls++ })

	// First attempt writes two activities then hits a busy database
	report(1)
	report(2)
	assert.Equal(t, 2, calls)

	// The retry writes everything again
	report(1)
	report(2)
	assert.Equal(t, 2, calls)
	report(3)
	assert.Equal(t, 3, calls)

	// A nil callback is allowed
	assert.NotPanics(t, func() { activityReporter(nil)(5) })
}

func TestStoreQifRetryReportsEachActivityOnce(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	doc, err := qif.New(qif.WithMonthBeforeDay(true)).ParseString(context.Background(), testQIF)
	require.NoError(t, err)

	var calls int
	report := activityReporter(func() { calls++ })

	// A failed attempt rolls back after reporting its progress
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, db.storeQif(ctx, "first-attempt", "test.qif", doc, report))

	require.NoError(t, db.storeQif(context.Background(), "second-attempt", "test.qif", doc, report))
	assert.Equal(t, doc.ActivityCount(), calls)

	count, err := db.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, doc.ActivityCount(), count)
}
