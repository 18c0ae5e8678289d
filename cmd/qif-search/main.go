package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lox/qifparse/internal/commands"
	"github.com/lox/qifparse/internal/db"
	"github.com/lox/qifparse/internal/search"
)

type CLI struct {
	commands.CommonConfig

	Query     string `arg:"" optional:"" help:"Search query - what you're looking for. Lists recent activity when empty."`
	Limit     int    `help:"Maximum number of results to return" default:"20"`
	Account   string `help:"Only show activity in this account"`
	Kind      string `help:"Only show one kind of activity (transaction, investment, memorized)"`
	Since     string `help:"Only show activity dated on or after this date (YYYY-MM-DD)"`
	Relevance bool   `help:"Order search results by relevance instead of date"`
}

func (c *CLI) Run() error {
	ctx := context.Background()

	logger, err := commands.SetupLogger(c.CommonConfig)
	if err != nil {
		return err
	}

	database, err := commands.SetupDatabase(c.CommonConfig, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	opts := []search.SearchOption{search.WithLimit(c.Limit)}
	if c.Account != "" {
		opts = append(opts, search.WithAccount(c.Account))
	}
	if c.Kind != "" {
		opts = append(opts, search.WithKind(c.Kind))
	}
	if c.Since != "" {
		since, err := time.Parse("2006-01-02", c.Since)
		if err != nil {
			return fmt.Errorf("invalid --since date: %w", err)
		}
		opts = append(opts, search.WithSince(since))
	}

	if c.Query == "" {
		activities, err := search.List(ctx, database, opts...)
		if err != nil {
			return err
		}
		if len(activities) == 0 {
			fmt.Println("No activity found")
			return nil
		}
		for _, a := range activities {
			printActivity(a)
		}
		return nil
	}

	if c.Relevance {
		opts = append(opts, search.OrderByRelevance())
	} else {
		opts = append(opts, search.OrderByDate())
	}
	results, err := search.TextSearch(ctx, logger, database, c.Query, opts...)
	if err != nil {
		return err
	}

	if len(results.Results) == 0 {
		fmt.Println("No transactions found")
		return nil
	}

	fmt.Printf("Found %d transactions (showing %d):\n\n", results.TotalCount, len(results.Results))
	for _, a := range results.Results {
		printActivity(a)
	}

	return nil
}

// printActivity prints the details of a stored activity
func printActivity(a db.ActivityRow) {
	date := a.Date
	if date == "" {
		date = "(undated)"
	}
	fmt.Printf("%s: %s - %s\n", date, a.Amount, a.Payee)
	if a.Account != "" {
		fmt.Printf("  Account: %s\n", a.Account)
	}
	if a.Category != "" {
		fmt.Printf("  Category: %s\n", a.Category)
	}
	if a.Transfer != "" {
		fmt.Printf("  Transfer: %s\n", a.Transfer)
	}
	if a.Memo != "" {
		fmt.Printf("  Memo: %s\n", a.Memo)
	}
	if a.Security != "" {
		fmt.Printf("  %s %s %s @ %s\n", a.Action, a.Quantity, a.Security, a.Price)
	}
	for _, s := range a.Splits {
		target := s.Category
		if s.Transfer != "" {
			target = "[" + s.Transfer + "]"
		}
		fmt.Printf("  Split: %s %s %s\n", s.Amount, target, s.Memo)
	}
	fmt.Println()
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("qif-search"),
		kong.Description("Search activity imported from QIF files"),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
