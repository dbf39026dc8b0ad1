package main

import (
	"log"
	"os"

	"github.com/kmorales/visatrack/api"
	"github.com/kmorales/visatrack/config"
	"github.com/kmorales/visatrack/store"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	dbPath := getEnv("VISATRACK_DB", cfg.Database)
	addr := getEnv("VISATRACK_ADDR", cfg.ListenAddr)

	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	server := api.NewServer(st)
	router := server.SetupRouter()

	log.Printf("Starting visa bulletin API on http://%s/api/v1/months", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
