package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dvloznov/techmart-analytics/internal/dataset"
	"github.com/dvloznov/techmart-analytics/internal/domain"
	"github.com/dvloznov/techmart-analytics/internal/logger"
	"github.com/dvloznov/techmart-analytics/internal/pipeline"
	"github.com/dvloznov/techmart-analytics/internal/source"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Print JSON instead of text"}
}

// jsonOutput reports whether --json was given before or after the command
// name.
func jsonOutput(c *cli.Context) bool {
	for _, ctx := range c.Lineage() {
		if ctx.Bool("json") {
			return true
		}
	}
	return false
}

// filterFlags are accepted by every reporting command.
func filterFlags() []cli.Flag {
	return []cli.Flag{
		jsonFlag(),
		&cli.StringSliceFlag{Name: "county", Usage: "Keep only these counties (repeatable)"},
		&cli.StringSliceFlag{Name: "store", Usage: "Keep only these store names (repeatable)"},
		&cli.StringSliceFlag{Name: "category", Usage: "Keep only these categories (repeatable)"},
		&cli.StringSliceFlag{Name: "product", Usage: "Keep only these products (repeatable)"},
		&cli.StringSliceFlag{Name: "payment-method", Usage: "Keep only these payment methods (repeatable)"},
		&cli.StringSliceFlag{Name: "gender", Usage: "Keep only these genders (repeatable)"},
		&cli.StringSliceFlag{Name: "age-group", Usage: "Keep only these age groups: Minor, Youth, Adult (repeatable)"},
		&cli.StringSliceFlag{Name: "date", Usage: "One date (YYYY-MM-DD) for a single day, or two for an inclusive range"},
	}
}

func filtersFromFlags(c *cli.Context) (pipeline.Filters, error) {
	f := pipeline.Filters{
		Counties:       c.StringSlice("county"),
		StoreNames:     c.StringSlice("store"),
		Categories:     c.StringSlice("category"),
		Products:       c.StringSlice("product"),
		PaymentMethods: c.StringSlice("payment-method"),
		Genders:        c.StringSlice("gender"),
	}
	for _, label := range c.StringSlice("age-group") {
		g, ok := domain.ParseAgeGroup(label)
		if !ok {
			return pipeline.Filters{}, fmt.Errorf("%w: age group %q (want one of Minor, Youth, Adult)", pipeline.ErrInvalidFilter, label)
		}
		f.AgeGroups = append(f.AgeGroups, g)
	}
	dates, err := pipeline.ParseDateRange(c.StringSlice("date")...)
	if err != nil {
		return pipeline.Filters{}, err
	}
	f.Dates = dates
	return f, f.Validate()
}

// loadRows reads the dataset once. ok is false when the dataset is empty;
// the notice has already been printed.
func loadRows(c *cli.Context) (rows []domain.Transaction, ok bool, err error) {
	log, err := logger.NewFromConfig(os.Stderr, c.String("log-level"), logger.FormatConsole)
	if err != nil {
		return nil, false, err
	}

	ctx := logger.WithContext(c.Context, log)

	src, err := source.Open(ctx, c.String("source"), source.Options{
		Table:       c.String("table"),
		HTTPTimeout: c.Duration("timeout"),
		NotionToken: c.String("notion-token"),
	})
	if err != nil {
		return nil, false, err
	}
	defer src.Close()

	rs, err := dataset.NewLoader(src, log).Load(ctx)
	if dataset.IsEmptyDataset(err) {
		fmt.Fprintln(c.App.Writer, "No data available. Please verify your data source.")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if jsonOutput(c) {
		return rs.Rows(), true, nil
	}
	fmt.Fprintf(c.App.Writer, "Data last loaded: %s (%d transactions from %s)\n\n",
		rs.LoadedAt.Format(time.DateTime), rs.Len(), rs.Source)
	return rs.Rows(), true, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func kpisCommand() *cli.Command {
	return &cli.Command{
		Name:  "kpis",
		Usage: "Print transaction count, revenue, discount and average sale",
		Flags: filterFlags(),
		Action: func(c *cli.Context) error {
			filters, err := filtersFromFlags(c)
			if err != nil {
				return err
			}
			rows, ok, err := loadRows(c)
			if err != nil || !ok {
				return err
			}

			k := pipeline.ComputeKPIs(pipeline.Apply(rows, filters))
			if jsonOutput(c) {
				return writeJSON(c.App.Writer, k)
			}
			renderKPIs(c.App.Writer, k)
			return nil
		},
	}
}

func viewCommand() *cli.Command {
	flags := append(filterFlags(),
		&cli.StringFlag{Name: "kind", Value: pipeline.KindLocation, Usage: "View: location, drill, rollup or pivot"},
		&cli.StringFlag{Name: "level", Usage: "Drill level: monthly, daily or hourly"},
		&cli.StringFlag{Name: "period", Usage: "Roll-up period: monthly or quarterly"},
	)

	return &cli.Command{
		Name:  "view",
		Usage: "Print one aggregated view",
		Flags: flags,
		Action: func(c *cli.Context) error {
			filters, err := filtersFromFlags(c)
			if err != nil {
				return err
			}
			granularity := c.String("level")
			if c.String("kind") == pipeline.KindRollup {
				granularity = c.String("period")
			}
			view, err := pipeline.ParseView(c.String("kind"), granularity)
			if err != nil {
				return err
			}

			rows, ok, err := loadRows(c)
			if err != nil || !ok {
				return err
			}

			result, err := pipeline.Run(rows, filters, view)
			if err != nil {
				return err
			}
			if jsonOutput(c) {
				return writeJSON(c.App.Writer, result)
			}
			renderResult(c.App.Writer, result)
			return nil
		},
	}
}

func storesCommand() *cli.Command {
	return &cli.Command{
		Name:  "stores",
		Usage: "List store names, optionally only those in the given counties",
		Flags: []cli.Flag{
			jsonFlag(),
			&cli.StringSliceFlag{Name: "county", Usage: "Counties to list stores for (repeatable)"},
		},
		Action: func(c *cli.Context) error {
			rows, ok, err := loadRows(c)
			if err != nil || !ok {
				return err
			}

			stores := pipeline.FilterDomains(rows, c.StringSlice("county")).StoreNames
			if jsonOutput(c) {
				return writeJSON(c.App.Writer, stores)
			}
			for _, s := range stores {
				fmt.Fprintln(c.App.Writer, s)
			}
			return nil
		},
	}
}

func filtersCommand() *cli.Command {
	return &cli.Command{
		Name:  "filters",
		Usage: "List the values available for each filter",
		Flags: []cli.Flag{
			jsonFlag(),
			&cli.StringSliceFlag{Name: "county", Usage: "Restrict store names to these counties (repeatable)"},
		},
		Action: func(c *cli.Context) error {
			rows, ok, err := loadRows(c)
			if err != nil || !ok {
				return err
			}

			d := pipeline.FilterDomains(rows, c.StringSlice("county"))
			if jsonOutput(c) {
				return writeJSON(c.App.Writer, d)
			}
			renderDomains(c.App.Writer, d)
			return nil
		},
	}
}
