package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/orgball2608/reel-studio/internal/migrations"
	"github.com/orgball2608/reel-studio/pkg/config"
)

const usage = "Usage: migrate [up|up-by-one|down|redo|reset|status|version|create <name>]"

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}
	command, args := os.Args[1], os.Args[2:]

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// New migrations are Go files written next to the compiled ones
	if command == "create" {
		if len(args) == 0 {
			log.Fatal("Usage: migrate create <name>")
		}
		if err := migrations.Create(cfg.Postgres.MigrationsDir, args[0]); err != nil {
			log.Fatalf("Failed to create migration: %v", err)
		}
		fmt.Printf("Created migration %q in %s, rebuild to apply it\n", args[0], cfg.Postgres.MigrationsDir)
		return
	}

	db, err := migrations.Open(cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(context.Background(), db, command, args...); err != nil {
		log.Fatalf("Migration %s failed: %v", command, err)
	}
	fmt.Printf("Migration %s finished\n", command)
}
