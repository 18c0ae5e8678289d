package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lox/qifparse/internal/commands"
	"github.com/lox/qifparse/internal/mcp"
)

type CLI struct {
	commands.CommonConfig
}

func (c *CLI) Run() error {
	logger, err := commands.SetupLogger(c.CommonConfig)
	if err != nil {
		return err
	}

	database, err := commands.SetupDatabase(c.CommonConfig, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	logger.Info("Starting MCP server", "data_dir", c.DataDir)
	return mcp.New(database, logger).Run()
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("qif-mcp-server"),
		kong.Description("Serve imported QIF activity to MCP clients over stdio"),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
