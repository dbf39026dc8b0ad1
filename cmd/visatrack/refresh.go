package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/kmorales/visatrack/config"
)

func handleRefresh(cfg *config.FileConfig, args []string) {
	fs := flag.NewFlagSet("refresh", flag.ExitOnError)
	limit := fs.Int("limit", 3, "How many of the most recent bulletins to import")
	fs.Parse(args)

	st := openStore(cfg)
	defer st.Close()

	imp := newImporter(cfg, st, 0)

	fmt.Println("Checking the bulletin index for new months...")
	summary, err := imp.RefreshLatest(context.Background(), *limit)
	if err != nil {
		fmt.Printf("Error: refresh failed: %v\n", err)
		return
	}

	if summary.Imported == 0 && len(summary.Errors) == 0 {
		fmt.Println("All recent bulletins already imported.")
		return
	}
	printSummary(summary)
}
