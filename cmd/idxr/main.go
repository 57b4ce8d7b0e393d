package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	indexer "agrimarket-api-io/api"
	"agrimarket-api-io/api/config"
	"agrimarket-api-io/api/pkg/util"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// dbEnv is the subset of the server environment the index tool needs.
type dbEnv struct {
	DatabaseURL string `env:"DATABASE_URL" envDefault:"mongodb://localhost:27017"`
	DBName      string `env:"DB_NAME" envDefault:"agrimarket"`
}

func main() {
	var (
		action      = flag.String("action", "create", "Action: create, drop, list, stats, migrate, rollback, status")
		uri         = flag.String("uri", "", "MongoDB URI (defaults to env DATABASE_URL)")
		dbName      = flag.String("db", "", "Database name (defaults to env DB_NAME)")
		collection  = flag.String("collection", "", "Collection name (for list/stats)")
		target      = flag.String("target", "", "Version to roll back to (rollback keeps migrations <= target)")
		timeout     = flag.Duration("timeout", 60*time.Second, "Operation timeout")
		continueErr = flag.Bool("continue-on-error", true, "Continue on error")
		skipExists  = flag.Bool("skip-if-exists", true, "Skip existing indexes")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format")
		logLevel    = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	util.InitLogger(util.LogConfig{Level: *logLevel})
	log := util.Log

	_ = godotenv.Load()
	var e dbEnv
	if err := env.Parse(&e); err != nil {
		log.WithError(err).Fatal("failed to parse environment")
	}
	if *uri != "" {
		e.DatabaseURL = *uri
	}
	if *dbName != "" {
		e.DBName = *dbName
	}

	cfg := &config.Config{DatabaseURL: e.DatabaseURL, DBName: e.DBName}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := config.ConnectDB(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			util.LogError("failed to disconnect", err)
		}
	}()

	db := cfg.Database(client)

	manager := indexer.NewManager(db, &indexer.Options{
		Timeout:         *timeout,
		ContinueOnError: *continueErr,
		SkipIfExists:    *skipExists,
	}).LoadDefaults()
	migrations := indexer.NewMigrationManager(db).LoadDefaults()

	switch *action {
	case "create":
		if !*jsonOutput {
			fmt.Printf("Creating indexes in database: %s\n", e.DBName)
		}

		result, err := manager.Create(ctx)
		if *jsonOutput {
			outputJSON(map[string]any{
				"success": err == nil,
				"result":  result,
				"error":   errorString(err),
			})
			return
		}
		if err != nil {
			log.WithError(err).Warn("index creation completed with errors")
		}
		fmt.Printf("\nResults:\n")
		fmt.Printf("  Created: %d\n", result.SuccessCount)
		fmt.Printf("  Skipped: %d\n", result.SkippedCount)
		fmt.Printf("  Failed: %d\n", result.FailedCount)
		fmt.Printf("  Duration: %v\n", result.Duration)
		if len(result.Failures) > 0 {
			fmt.Printf("\nFailures:\n")
			for _, f := range result.Failures {
				fmt.Printf("  - %s.%s: %s\n", f.Collection, f.IndexName, f.Error)
			}
		}

	case "drop":
		collections := flag.Args()
		err := manager.Drop(ctx, collections...)
		if *jsonOutput {
			outputJSON(map[string]any{"success": err == nil, "error": errorString(err)})
			return
		}
		if err != nil {
			log.WithError(err).Fatal("failed to drop indexes")
		}
		fmt.Println("Indexes dropped successfully")

	case "list":
		if *collection == "" {
			log.Fatal("collection name required for list action (-collection flag)")
		}

		indexes, err := manager.List(ctx, *collection)
		if err != nil {
			log.WithError(err).Fatal("failed to list indexes")
		}

		if *jsonOutput {
			outputJSON(indexes)
			return
		}
		fmt.Printf("Indexes for collection %s:\n", *collection)
		for _, idx := range indexes {
			fmt.Printf("  - %v\n", idx["name"])
			if key, ok := idx["key"]; ok {
				fmt.Printf("    Keys: %v\n", key)
			}
			if ttl, ok := idx["expireAfterSeconds"]; ok {
				fmt.Printf("    TTL: %vs\n", ttl)
			}
		}

	case "stats":
		stats := map[string][]indexer.IndexStats{}
		if *collection == "" {
			stats, err = manager.StatsAll(ctx)
		} else {
			stats[*collection], err = manager.Stats(ctx, *collection)
		}
		if err != nil {
			log.WithError(err).Fatal("failed to get stats")
		}

		if *jsonOutput {
			outputJSON(stats)
			return
		}
		for coll, collStats := range stats {
			fmt.Printf("\n=== %s ===\n", coll)
			for _, stat := range collStats {
				fmt.Printf("  %s:\n", stat.Name)
				fmt.Printf("    Accesses: %d\n", stat.Accesses)
				fmt.Printf("    Since: %v\n", stat.Since)
				if stat.Building {
					fmt.Printf("    Status: BUILDING\n")
				}
			}
		}

	case "migrate":
		if err := migrations.Run(ctx); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
		fmt.Println("Migrations applied")

	case "rollback":
		if *target == "" {
			log.Fatal("target version required for rollback (-target flag)")
		}
		if err := migrations.Rollback(ctx, *target); err != nil {
			log.WithError(err).Fatal("rollback failed")
		}
		fmt.Printf("Rolled back to %s\n", *target)

	case "status":
		statuses, err := migrations.Status(ctx)
		if err != nil {
			log.WithError(err).Fatal("failed to read migration status")
		}
		if *jsonOutput {
			outputJSON(statuses)
			return
		}
		for _, s := range statuses {
			state := "ok"
			if !s.Success {
				state = "FAILED: " + s.Error
			}
			fmt.Printf("  %s  %s  %s\n", s.Version, s.AppliedAt.Format(time.RFC3339), state)
		}

	default:
		fmt.Printf("Unknown action: %s\n", *action)
		fmt.Println("Available actions: create, drop, list, stats, migrate, rollback, status")
		os.Exit(1)
	}
}

func outputJSON(data any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		util.Log.WithError(err).Fatal("failed to encode JSON")
	}
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
