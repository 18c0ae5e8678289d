package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/lox/qifparse/internal/db"
	"github.com/lox/qifparse/internal/profile"
	"github.com/lox/qifparse/internal/qif"
)

// SetupLogger creates a stderr logger at the configured level
func SetupLogger(config CommonConfig) (*log.Logger, error) {
	logger := log.New(os.Stderr)

	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	return logger, nil
}

// SetupDatabase opens the store in the configured data directory
func SetupDatabase(config CommonConfig, logger *log.Logger) (*db.DB, error) {
	database, err := db.New(config.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return database, nil
}

// ParserOptions resolves the profile and flag overrides into parser options
func ParserOptions(config DateConfig, registry *profile.Registry, logger *log.Logger) ([]qif.Option, error) {
	p, err := registry.Lookup(config.Profile)
	if err != nil {
		return nil, err
	}

	dates := p.Dates
	switch config.DateOrder {
	case "mdy":
		dates.MonthBeforeDay = true
	case "dmy":
		dates.MonthBeforeDay = false
	}
	switch config.Y2K {
	case "on":
		dates.Y2KRule = true
	case "off":
		dates.Y2KRule = false
	}

	logger.Debug("Using date convention",
		"profile", p.Name,
		"month_before_day", dates.MonthBeforeDay,
		"y2k", dates.Y2KRule)

	return []qif.Option{
		qif.WithDateOptions(dates),
		qif.WithConcurrency(config.Concurrency),
		qif.WithLogger(logger),
	}, nil
}

// NewParser builds a parser from the default profile registry
func NewParser(config DateConfig, logger *log.Logger) (*qif.Parser, error) {
	opts, err := ParserOptions(config, profile.Default(), logger)
	if err != nil {
		return nil, err
	}
	return qif.New(opts...), nil
}
