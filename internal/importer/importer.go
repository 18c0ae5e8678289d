package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/qifparse/internal/db"
	"github.com/lox/qifparse/internal/qif"
	"github.com/lox/qifparse/internal/types"
)

// Config controls a single import
type Config struct {
	// Progress shows a progress bar while activity is stored
	Progress bool
	// DryRun parses the input without storing it
	DryRun bool
}

// Result summarizes an import
type Result struct {
	ImportID   string
	Source     string
	Accounts   int
	Activities int
	Categories int
	Classes    int
	Securities int
	Duration   time.Duration
}

// Importer parses QIF input and stores it
type Importer struct {
	logger *log.Logger
	parser *qif.Parser
	db     *db.DB
}

// New creates a new importer
func New(logger *log.Logger, parser *qif.Parser, db *db.DB) *Importer {
	return &Importer{
		logger: logger,
		parser: parser,
		db:     db,
	}
}

// ImportFile imports the QIF file at path
func (i *Importer) ImportFile(ctx context.Context, path string, config Config) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return i.Import(ctx, path, f, config)
}

// Import parses r and stores the document under source
func (i *Importer) Import(ctx context.Context, source string, r io.Reader, config Config) (Result, error) {
	startTime := time.Now()

	doc, err := i.parser.Parse(ctx, r)
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse %s: %w", source, err)
	}

	result := summarize(source, doc)
	i.logger.Info("Parsed QIF document",
		"source", source,
		"accounts", result.Accounts,
		"activities", result.Activities,
		"categories", result.Categories)

	if config.DryRun {
		i.logger.Info("Dry run, not storing document", "source", source)
		result.Duration = time.Since(startTime)
		return result, nil
	}

	var progress Progress
	if !config.Progress || result.Activities == 0 {
		progress = NewNoopProgress()
	} else {
		progress = NewBarProgress(result.Activities, "Storing activity")
	}
	defer progress.Close()

	importID, err := i.db.StoreQif(ctx, source, doc, func() {
		if err := progress.Add(1); err != nil {
			i.logger.Warn("Failed to update progress", "error", err)
		}
	})
	if err != nil {
		return Result{}, err
	}

	result.ImportID = importID
	result.Duration = time.Since(startTime)
	i.logger.Info("Import complete",
		"import_id", importID,
		"source", source,
		"duration", result.Duration)
	return result, nil
}

func summarize(source string, doc *types.Qif) Result {
	return Result{
		Source:     source,
		Accounts:   len(doc.Accounts()),
		Activities: doc.ActivityCount(),
		Categories: len(doc.Categories),
		Classes:    len(doc.Classes),
		Securities: len(doc.Securities),
	}
}
