package importer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/qifparse/internal/db"
	"github.com/lox/qifparse/internal/qif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQIF = "!Type:Class\r\nNHousehold\r\n^\r\n" +
	"!Account\r\nNChecking\r\nTBank\r\n^\r\n" +
	"!Type:Bank\r\nD15/03/2024\r\nT-19.99\r\nPHardware Store\r\nLHome:Repairs\r\n^\r\n" +
	"D16/03/2024\r\nT2,500.00\r\nPEmployer\r\nLSalary\r\n^"

func setupImporter(t *testing.T) (*Importer, *db.DB) {
	t.Helper()
	logger := log.New(io.Discard)

	dbConn, err := db.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { dbConn.Close() })

	return New(logger, qif.New(qif.WithLogger(logger)), dbConn), dbConn
}

func TestImport(t *testing.T) {
	imp, dbConn := setupImporter(t)
	ctx := context.Background()

	result, err := imp.Import(ctx, "stdin", strings.NewReader(testQIF), Config{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.ImportID)
	assert.Equal(t, "stdin", result.Source)
	assert.Equal(t, 1, result.Accounts)
	assert.Equal(t, 2, result.Activities)
	assert.Equal(t, 1, result.Classes)

	activities, err := dbConn.ListActivities(ctx, db.FilterByImport(result.ImportID))
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, "Employer", activities[0].Payee)
	assert.Equal(t, "2500", activities[0].Amount)
	assert.Equal(t, "2024-03-16", activities[0].Date)
	assert.Equal(t, "Checking", activities[0].Account)
}

func TestImportDryRun(t *testing.T) {
	imp, dbConn := setupImporter(t)
	ctx := context.Background()

	result, err := imp.Import(ctx, "stdin", strings.NewReader(testQIF), Config{DryRun: true})
	require.NoError(t, err)
	assert.Empty(t, result.ImportID)
	assert.Equal(t, 2, result.Activities)

	count, err := dbConn.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestImportFile(t *testing.T) {
	imp, _ := setupImporter(t)

	path := filepath.Join(t.TempDir(), "export.qif")
	require.NoError(t, os.WriteFile(path, []byte(testQIF), 0o644))

	result, err := imp.ImportFile(context.Background(), path, Config{})
	require.NoError(t, err)
	assert.Equal(t, path, result.Source)

	_, err = imp.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.qif"), Config{})
	assert.Error(t, err)
}

func TestImportParseErrorStoresNothing(t *testing.T) {
	imp, dbConn := setupImporter(t)
	ctx := context.Background()

	_, err := imp.Import(ctx, "broken.qif", strings.NewReader("!Type:Bank\nDnot a date\n^\n"), Config{})
	require.ErrorIs(t, err, qif.ErrMalformedDate)
	assert.True(t, qif.IsParseError(err))
	assert.Contains(t, err.Error(), "broken.qif")

	count, err := dbConn.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
