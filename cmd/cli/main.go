// techmart reports on the TechMart transactions dataset from the command
// line.
//
// Usage:
//
//	techmart kpis --county Nairobi
//	techmart view --kind drill --level hourly --date 2024-01-01 --date 2024-01-31
//	techmart stores --county Nairobi --county Mombasa
//	techmart filters --json
package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/dvloznov/techmart-analytics/internal/config"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "techmart",
		Usage: "TechMart retail sales analytics",

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "source",
				Value:   config.DefaultSource,
				Usage:   "Data source URI (https://, file://, gs://, postgres://, clickhouse://, sqlite://, bigquery://, notion://)",
				EnvVars: []string{"TECHMART_SOURCE"},
			},
			&cli.StringFlag{
				Name:    "table",
				Value:   "transactions",
				Usage:   "Table for SQL and BigQuery sources",
				EnvVars: []string{"TECHMART_TABLE"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: config.GetEnvDuration("TECHMART_HTTP_TIMEOUT", 0),
				Usage: "Timeout for downloading remote CSV files",
			},
			&cli.StringFlag{
				Name:    "notion-token",
				Usage:   "Integration token for notion:// sources",
				EnvVars: []string{"NOTION_TOKEN"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"TECHMART_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print JSON instead of text",
			},
		},

		Commands: []*cli.Command{
			kpisCommand(),
			viewCommand(),
			storesCommand(),
			filtersCommand(),
		},
	}
}
