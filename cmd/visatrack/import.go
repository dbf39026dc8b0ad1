package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kmorales/visatrack/config"
)

func handleImport(cfg *config.FileConfig, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	start := fs.String("start", "2006-01", "First month to import (YYYY-MM)")
	end := fs.String("end", "", "Last month to import (YYYY-MM, required)")
	concurrency := fs.Int("concurrency", 0, "Months fetched in parallel (default from config)")
	fs.Parse(args)

	if *end == "" {
		fmt.Fprintln(os.Stderr, "Error: --end is required")
		os.Exit(1)
	}

	startMonth, err := parseMonth(*start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	endMonth, err := parseMonth(*end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	st := openStore(cfg)
	defer st.Close()

	imp := newImporter(cfg, st, *concurrency)

	fmt.Printf("Importing bulletins from %s to %s...\n", startMonth.Key(), endMonth.Key())
	summary, err := imp.ImportRange(context.Background(), startMonth, endMonth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: import interrupted: %v\n", err)
	}
	printSummary(summary)

	if len(summary.Errors) > 0 {
		os.Exit(1)
	}
}
