package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/woodshedhq/woodshed/internal/config"
	"github.com/woodshedhq/woodshed/internal/importer"
	"github.com/woodshedhq/woodshed/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "path to directory of exported .csv/.json files (required)")
	stateDir := flag.String("state-dir", "", "directory for the import state db (defaults to the export path)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: woodshed-import -config config.yaml -path /path/to/export [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export path does not exist or is not a directory", "path", *exportPath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	schemaVersion, err := storage.RunMigrations(dsn, "migrations")
	if err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied", "schema_version", schemaVersion)

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	if *stateDir == "" {
		*stateDir = *exportPath
	}
	state, err := importer.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open import state db", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	students, err := db.ListProfiles(ctx, "")
	if err != nil {
		log.Error("failed to list profiles", "error", err)
		os.Exit(1)
	}
	known := make(map[string]string, len(students))
	for _, p := range students {
		known[strings.ToLower(p.Login)] = p.ID
		known[strings.ToLower(p.ID)] = p.ID
	}
	dataset := importer.SessionsDataset(known)

	files, err := listExportFiles(*exportPath)
	if err != nil {
		log.Error("failed to scan export directory", "error", err)
		os.Exit(1)
	}

	var total importer.ApplyStats
	var processed, skipped, errored int

	for _, path := range files {
		rel, _ := filepath.Rel(*exportPath, path)

		hash, err := importer.HashFile(path)
		if err != nil {
			log.Warn("hashing file failed", "file", rel, "error", err)
			errored++
			continue
		}
		fi, err := os.Stat(path)
		if err != nil {
			errored++
			continue
		}

		prev, err := state.Lookup(rel, fi.Size(), hash)
		if err != nil {
			log.Warn("state lookup failed", "file", rel, "error", err)
		}
		if prev != nil {
			log.Info("file already applied", "file", rel,
				"dataset", prev.Dataset,
				"rows_inserted", prev.Inserted,
				"rows_skipped", prev.Skipped,
				"rows_failed", prev.Failed,
			)
			skipped++
			continue
		}

		format := "csv"
		if strings.EqualFold(filepath.Ext(path), ".json") {
			format = "json"
		}

		f, err := os.Open(path)
		if err != nil {
			log.Warn("opening file failed", "file", rel, "error", err)
			errored++
			continue
		}

		report, err := importer.Run(ctx, dataset, f, format, nil)
		f.Close()
		if err != nil {
			log.Warn("import pipeline failed", "file", rel, "error", err)
			errored++
			continue
		}

		log.Info("file parsed", "file", rel,
			"rows", report.Summary.Total,
			"valid", report.Summary.Valid,
			"errors", report.Summary.Errors,
			"warnings", report.Summary.Warnings,
		)

		if *dryRun {
			processed++
			continue
		}

		stats, err := importer.ApplySessions(ctx, db, report, log)
		if err != nil {
			log.Error("apply failed", "file", rel, "error", err)
			errored++
			continue
		}
		total.Inserted += stats.Inserted
		total.Skipped += stats.Skipped
		total.Failed += stats.Failed
		processed++

		if err := state.MarkApplied(rel, fi.Size(), hash, dataset.Name, stats); err != nil {
			log.Warn("marking file applied failed", "file", rel, "error", err)
		}
	}

	log.Info("import stats",
		"files_processed", processed,
		"files_skipped", skipped,
		"files_errored", errored,
		"rows_inserted", total.Inserted,
		"rows_skipped", total.Skipped,
		"rows_failed", total.Failed,
	)
	log.Info("import complete")
}

// listExportFiles returns the .csv and .json files under dir, sorted so
// re-runs process them in a stable order.
func listExportFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv", ".json":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
