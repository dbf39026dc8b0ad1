package main

import (
	"fmt"
	"os"

	"github.com/kmorales/visatrack/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Database = getEnv("VISATRACK_DB", cfg.Database)

	subcommand := os.Args[1]
	args := os.Args[2:]

	switch subcommand {
	case "import":
		handleImport(cfg, args)
	case "refresh":
		handleRefresh(cfg, args)
	case "months":
		handleMonths(cfg, args)
	case "export":
		handleExport(cfg, args)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("visatrack - Visa bulletin tracker CLI")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  visatrack <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  import     Import a range of bulletin months")
	fmt.Println("  refresh    Import the latest bulletins from the index page")
	fmt.Println("  months     List stored bulletin months")
	fmt.Println("  export     Export all stored data to a JSON file")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  VISATRACK_DB  Path to the bulletin database (default: visatrack.db)")
}
