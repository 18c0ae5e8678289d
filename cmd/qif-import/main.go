package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lox/qifparse/internal/commands"
	"github.com/lox/qifparse/internal/importer"
	"github.com/lox/qifparse/internal/qif"
)

type CLI struct {
	commands.CommonConfig
	commands.DateConfig

	Files    []string `arg:"" help:"QIF files to import" type:"existingfile"`
	Progress bool     `help:"Show a progress bar while storing" default:"true" negatable:""`
	DryRun   bool     `help:"Parse the files without storing them"`
}

func (c *CLI) Run() error {
	ctx := context.Background()

	logger, err := commands.SetupLogger(c.CommonConfig)
	if err != nil {
		return err
	}

	parser, err := commands.NewParser(c.DateConfig, logger)
	if err != nil {
		return err
	}

	database, err := commands.SetupDatabase(c.CommonConfig, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	imp := importer.New(logger, parser, database)
	config := importer.Config{
		Progress: c.Progress,
		DryRun:   c.DryRun,
	}

	for _, file := range c.Files {
		result, err := imp.ImportFile(ctx, file, config)
		if err != nil {
			return err
		}

		if c.DryRun {
			fmt.Printf("%s: %d accounts, %d activities (not stored)\n",
				result.Source, result.Accounts, result.Activities)
			continue
		}
		fmt.Printf("%s: %d accounts, %d activities, %d categories imported as %s in %v\n",
			result.Source, result.Accounts, result.Activities, result.Categories,
			result.ImportID, result.Duration.Round(time.Millisecond))
	}

	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("qif-import"),
		kong.Description("Import Quicken Interchange Format files into the local database"),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		// Bad QIF content exits 2 so scripts can tell it from I/O failures
		if qif.IsParseError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
