// Package main provides a command-line utility to import tool lists into the sqlite tools table
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	prof "github.com/go-while/go-cpu-mem-profiler"

	"github.com/go-while/go-toolsite/internal/catalog"
	"github.com/go-while/go-toolsite/internal/config"
	"github.com/go-while/go-toolsite/internal/database"
	"github.com/go-while/go-toolsite/internal/models"
)

var Prof *prof.Profiler

var appVersion = "-unset-"

func main() {
	config.AppVersion = appVersion
	var (
		dataDir   = flag.String("data", "./data", "Directory of the main database (data/cfg/toolsite.sq3)")
		file      = flag.String("file", "", "Tool list to import (.json or .csv)")
		charset   = flag.String("charset", "utf-8", "Charset of the input file (e.g. latin1, windows-1252)")
		dryRun    = flag.Bool("dry-run", false, "Parse the file and print what would be imported")
		bundled   = flag.Bool("bundled", false, "Import the bundled static and imported datasets")
		listRuns  = flag.Int("list-runs", 0, "Print the last N import runs and exit")
		pprofAddr = flag.String("pprof", "", "Serve pprof on this address, e.g. :51112 (default: disabled)")
	)
	flag.Parse()

	log.Printf("Starting go-toolsite IMPORT-TOOLS (version: %s)", config.AppVersion)

	if *file == "" && !*bundled && *listRuns == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-data <path>] -file <tools.json|tools.csv> [-charset <name>] [-dry-run]\n", os.Args[0])
		fmt.Println("          -data <path>        Directory of the main database (default: ./data)")
		fmt.Println("          -file <path>        Tool list to import (.json or .csv)")
		fmt.Println("          -charset <name>     Input charset (default: utf-8)")
		fmt.Println("          -bundled            Import the bundled datasets instead of a file")
		fmt.Println("          -list-runs <n>      Print the last n import runs")
		fmt.Println("          -dry-run            Parse only, do not write")
		os.Exit(1)
	}

	if *pprofAddr != "" {
		Prof = prof.NewProf()
		go Prof.PprofWeb(*pprofAddr)
		Prof.StartMemProfile(5*time.Minute, 30*time.Second)
	}

	ctx := context.Background()

	dbConfig := database.DefaultDBConfig()
	dbConfig.DataDir = *dataDir

	if *listRuns > 0 {
		if err := listImportRuns(ctx, dbConfig, *listRuns); err != nil {
			log.Fatalf("[IMPORT-TOOLS]: %v", err)
		}
		return
	}

	source := *file
	var tools []models.ToolEntry
	if *bundled {
		static, imported, err := catalog.LoadDatasets()
		if err != nil {
			log.Fatalf("[IMPORT-TOOLS]: Failed to load bundled datasets: %v", err)
		}
		tools = catalog.Concat(static, imported)
		source = "bundled"
	} else {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("[IMPORT-TOOLS]: Failed to read %s: %v", *file, err)
		}
		tools, err = catalog.ParseToolFile(*file, data, *charset)
		if err != nil {
			log.Fatalf("[IMPORT-TOOLS]: %v", err)
		}
	}
	log.Printf("[IMPORT-TOOLS]: Parsed %d tools from %s", len(tools), source)

	if *dryRun {
		for _, t := range tools {
			fmt.Printf("%-24s %-32s %s\n", t.ID, t.Name, t.Category)
		}
		return
	}

	if err := importTools(ctx, dbConfig, source, tools); err != nil {
		log.Fatalf("[IMPORT-TOOLS]: %v", err)
	}
}

// listImportRuns prints the last n import runs
func listImportRuns(ctx context.Context, dbConfig *database.DBConfig, n int) error {
	db, err := database.OpenDatabase(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Shutdown()

	runs, err := db.GetImportRuns(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to read import runs: %w", err)
	}
	for _, r := range runs {
		fmt.Printf("%4d  %s  imported=%d skipped=%d  %s\n", r.ID, r.CreatedAt.Format(time.RFC3339), r.Imported, r.Skipped, r.SourceFile)
	}
	return nil
}

// importTools upserts tools and records the run. The database is closed on every path.
func importTools(ctx context.Context, dbConfig *database.DBConfig, source string, tools []models.ToolEntry) error {
	db, err := database.OpenDatabase(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Shutdown(); err != nil {
			log.Printf("[IMPORT-TOOLS]: %v", err)
		}
	}()

	start := time.Now()
	imported, skipped, err := db.UpsertTools(ctx, tools)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	if _, err := db.RecordImportRun(ctx, source, imported, skipped); err != nil {
		log.Printf("[IMPORT-TOOLS]: Warning: failed to record import run: %v", err)
	}

	total, _ := db.CountTools(ctx)
	log.Printf("[IMPORT-TOOLS]: Imported %d tools, skipped %d, table now holds %d (took %v)", imported, skipped, total, time.Since(start))
	return nil
}
