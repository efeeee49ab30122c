// Command import-questions reads a JSON question pack and imports it
// into the Postgres database for the game server to draw from.
//
// Usage:
//
//	go run ./cmd/import-questions/ --input questions.json --db postgres://...
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/iamstoobit/Triviador/internal/repository/postgres"
	"github.com/iamstoobit/Triviador/internal/trivia"
)

func main() {
	inputFile := flag.String("input", "", "Path to question pack JSON file")
	dbURL := flag.String("db", os.Getenv("DATABASE_URL"), "Postgres connection URL")
	reset := flag.Bool("reset-usage", false, "Mark all questions unused after import")
	flag.Parse()

	if *inputFile == "" {
		log.Fatal("--input is required")
	}
	if *dbURL == "" {
		log.Fatal("--db or DATABASE_URL is required")
	}

	questions, err := trivia.LoadJSON(*inputFile)
	if err != nil {
		log.Fatalf("load question pack: %v", err)
	}

	db, err := postgres.Connect(*dbURL)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer db.Close()

	repo := postgres.NewQuestionRepo(db)
	ctx := context.Background()

	inserted, err := repo.Import(ctx, questions)
	if err != nil {
		log.Fatalf("import questions: %v", err)
	}
	if *reset {
		if err := repo.ResetUsage(ctx); err != nil {
			log.Fatalf("reset usage: %v", err)
		}
	}

	log.Printf("imported %d of %d questions (%d duplicates skipped)",
		inserted, len(questions), len(questions)-inserted)
}
