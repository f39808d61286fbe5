package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"nutricalc/internal/config"
	"nutricalc/internal/db"
	applog "nutricalc/internal/log"
)

var openDatabase = db.Configure

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "import_ingredients",
		Usage:     "Import ingredients from a CSV or PDF table",
		ArgsUsage: "<file.csv|file.pdf>",
		Description: `Reads a table with the columns name, calories, protein, fat and carbs
(values per 100 g) and upserts every row into the owner's ingredients.
Rows are matched to existing ingredients by case-insensitive name.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "owner",
				Usage:   "Username that will own the imported ingredients (default: first user)",
				Sources: cli.EnvVars("NUTRICALC_IMPORT_OWNER"),
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Parse and match rows without writing anything",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error)",
				Value: "info",
			},
		},
		Action: runImport,
	}
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	if err := applog.SetLevel(cmd.String("log-level")); err != nil {
		return err
	}

	path := strings.TrimSpace(cmd.Args().First())
	if path == "" {
		return errors.New("an input file is required")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("locate input: %w", err)
	}

	rows, err := readRows(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := openDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	owner, err := resolveOwner(ctx, database, cmd.String("owner"))
	if err != nil {
		return fmt.Errorf("resolve owner: %w", err)
	}

	imp := &importer{db: database, ownerID: owner.ID, dryRun: cmd.Bool("dry-run")}
	result, err := imp.importRows(ctx, rows)
	if err != nil {
		return err
	}

	verb := "Imported"
	if imp.dryRun {
		verb = "Would import"
	}
	fmt.Fprintf(cmd.Writer, "%s %d ingredients for %s from %s (%d created, %d updated)\n",
		verb, result.Created+result.Updated, owner.Username, filepath.Base(path),
		result.Created, result.Updated)
	return nil
}
