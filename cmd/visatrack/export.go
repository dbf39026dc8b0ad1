package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kmorales/visatrack/config"
)

func handleExport(cfg *config.FileConfig, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "bulletin_data.json", "Output file path")
	fs.Parse(args)

	st := openStore(cfg)
	defer st.Close()

	months, err := st.Months()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read store: %v\n", err)
		os.Exit(1)
	}
	if len(months) == 0 {
		fmt.Fprintln(os.Stderr, "No data in database. Run 'visatrack import' first.")
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := st.Export(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: export failed: %v\n", err)
		os.Exit(1)
	}

	info, err := f.Stat()
	if err == nil {
		fmt.Printf("Exported %d months to %s (%.1f KB)\n", len(months), *out, float64(info.Size())/1024)
	} else {
		fmt.Printf("Exported %d months to %s\n", len(months), *out)
	}
}
