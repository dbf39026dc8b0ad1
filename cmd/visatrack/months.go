package main

import (
	"fmt"
	"os"

	"github.com/kmorales/visatrack/config"
)

func handleMonths(cfg *config.FileConfig, args []string) {
	st := openStore(cfg)
	defer st.Close()

	months, err := st.Months()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list months: %v\n", err)
		os.Exit(1)
	}

	if len(months) == 0 {
		fmt.Println("No bulletins stored yet. Run 'visatrack import' or 'visatrack refresh'.")
		return
	}

	for _, month := range months {
		fmt.Println(month)
	}
}
