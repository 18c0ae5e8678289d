package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/lox/qifparse/internal/commands"
	"github.com/lox/qifparse/internal/qif"
	"github.com/lox/qifparse/internal/types"
	"gopkg.in/yaml.v3"
)

type CLI struct {
	LogLevel string `help:"Log level (debug, info, warn, error)" default:"warn" enum:"debug,info,warn,error"`
	commands.DateConfig

	File   string `arg:"" help:"QIF file to parse, or - for stdin" default:"-"`
	Format string `help:"Output format" default:"summary" enum:"summary,json,yaml"`
}

func (c *CLI) Run() error {
	ctx := context.Background()

	logger, err := commands.SetupLogger(commands.CommonConfig{LogLevel: c.LogLevel})
	if err != nil {
		return err
	}

	parser, err := commands.NewParser(c.DateConfig, logger)
	if err != nil {
		return err
	}

	var r io.Reader = os.Stdin
	if c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", c.File, err)
		}
		defer f.Close()
		r = f
	}

	doc, err := parser.Parse(ctx, r)
	if err != nil {
		return err
	}

	switch c.Format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc.Document())
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(doc.Document())
	default:
		printSummary(os.Stdout, doc)
		return nil
	}
}

// printSummary writes one line per account plus totals
func printSummary(w io.Writer, doc *types.Qif) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tTYPE\tACTIVITIES\tBALANCE")
	for _, a := range doc.Accounts() {
		balance := ""
		if a.Balance != nil && a.Balance.Amount.Valid {
			balance = a.Balance.Amount.Decimal.StringFixed(2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", a.Name, a.Type, len(a.Entries), balance)
	}
	for _, h := range doc.Headers() {
		fmt.Fprintf(tw, "(no account)\t%s\t%d\t\n", h, len(doc.Activities(h)))
	}
	tw.Flush()

	fmt.Fprintf(w, "\nActivities: %d\n", doc.ActivityCount())
	fmt.Fprintf(w, "Categories: %d\n", len(doc.Categories))
	fmt.Fprintf(w, "Classes:    %d\n", len(doc.Classes))
	fmt.Fprintf(w, "Securities: %d\n", len(doc.Securities))
	fmt.Fprintf(w, "AutoSwitch: %t\n", doc.AutoSwitch)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("qif-parse"),
		kong.Description("Parse a Quicken Interchange Format file and print its contents"),
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
