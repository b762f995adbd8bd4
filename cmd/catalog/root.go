package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nutrimatch/backend/config"
	"github.com/nutrimatch/backend/internal/app"
	"github.com/nutrimatch/backend/internal/infrastructure/catalog"
	"github.com/nutrimatch/backend/internal/infrastructure/usda"
	"github.com/nutrimatch/backend/internal/usecase"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// cliOptions holds the persistent flags shared by every subcommand
type cliOptions struct {
	cfgFile  string
	dbPath   string
	seedFile string
}

// newRootCmd builds the command tree. A fresh tree per call keeps flag state
// out of package globals.
func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "nutrimatch-catalog",
		Short: "Manage and query the NutriMatch food catalog",
		Long: `nutrimatch-catalog imports reference foods into the SQLite catalog,
pulls foods from USDA FoodData Central and runs the food-name matcher
against the configured catalog from the command line.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite catalog file (selects the sqlite driver)")
	root.PersistentFlags().StringVar(&opts.seedFile, "seed", "", "catalog seed file (json, yaml or csv)")

	root.AddCommand(
		newImportCmd(opts),
		newImportUSDACmd(opts),
		newMatchCmd(opts),
		newStatsCmd(opts),
	)
	return root
}

// load reads configuration and applies the command-line overrides
func (o *cliOptions) load() (*config.Config, error) {
	cfg, err := config.LoadFrom(o.cfgFile)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.Catalog.Driver = catalog.DriverSQLite
		cfg.Catalog.Path = o.dbPath
	}
	if o.seedFile != "" {
		cfg.Catalog.SeedFile = o.seedFile
	}
	return cfg, nil
}

// openStore opens the configured SQLite catalog for writing
func (o *cliOptions) openStore() (*catalog.SQLiteCatalog, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	if cfg.Catalog.Driver != catalog.DriverSQLite {
		return nil, fmt.Errorf("imports need the sqlite driver (use --db or NUTRIMATCH_CATALOG_DRIVER=sqlite)")
	}
	return catalog.NewSQLiteCatalog(cfg.Catalog.Path)
}

func newImportCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import foods from a json, yaml or csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}

			bar := progressbar.NewOptions(len(entries),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("importing"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			importer := usecase.NewImportService(store, nil)
			importer.OnProgress(func(n int) { _ = bar.Add(n) })

			n, err := importer.ImportEntries(cmd.Context(), entries)
			if err != nil {
				return fmt.Errorf("import failed after %d foods: %w", n, err)
			}
			_ = bar.Finish()

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d foods from %s\n", n, args[0])
			return nil
		},
	}
}

func newImportUSDACmd(opts *cliOptions) *cobra.Command {
	var (
		pageSize int
		fdcID    string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "import-usda [query]",
		Short: "Import foods from USDA FoodData Central",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.USDA.APIKey == "" {
				return fmt.Errorf("USDA API key is required (set NUTRIMATCH_USDA_API_KEY)")
			}
			if len(args) == 0 && fdcID == "" {
				return fmt.Errorf("either a search query or --fdc-id is required")
			}

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			client := usda.NewClient(cfg.USDA.APIKey, cfg.USDA.BaseURL)
			client.SetDebug(cfg.Matching.EnableDebugLogging)
			importer := usecase.NewImportService(store, client)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if fdcID != "" {
				entry, err := importer.ImportUSDAFood(ctx, fdcID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s)\n", entry.Name, entry.ID)
				return nil
			}

			n, err := importer.ImportUSDASearch(ctx, args[0], pageSize)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d foods for %q\n", n, args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", 25, "number of USDA search results to import")
	cmd.Flags().StringVar(&fdcID, "fdc-id", "", "import a single food by FDC id")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall import timeout")
	return cmd
}

func newMatchCmd(opts *cliOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "match <food name>...",
		Short: "Match free-text food names against the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.FoodService.MatchAll(cmd.Context(), args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			for _, r := range results {
				if r.BestMatch == nil {
					fmt.Fprintf(out, "%s -> no match\n", r.OriginalQuery)
					continue
				}
				fmt.Fprintf(out, "%s -> %s [%s] (%s, %.2f)\n",
					r.OriginalQuery, r.BestMatch.Name, r.BestMatch.ID, r.Tier(), r.Confidence)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print full match results as JSON")
	return cmd
}

func newStatsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			store, err := catalog.Open(cmd.Context(), catalog.Options{
				Driver:   cfg.Catalog.Driver,
				Path:     cfg.Catalog.Path,
				SeedFile: cfg.Catalog.SeedFile,
			})
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Sample(cmd.Context(), 0)
			if err != nil {
				return err
			}

			var withFiber, withSodium int
			for _, e := range entries {
				if e.Nutrients.Fiber != nil {
					withFiber++
				}
				if e.Nutrients.Sodium != nil {
					withSodium++
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Driver: %s\n", cfg.Catalog.Driver)
			fmt.Fprintf(out, "Foods: %d\n", len(entries))
			fmt.Fprintf(out, "With fiber: %d\n", withFiber)
			fmt.Fprintf(out, "With sodium: %d\n", withSodium)
			return nil
		},
	}
}
