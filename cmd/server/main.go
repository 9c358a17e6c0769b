package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/engezna/settlement-engine/internal/api"
	"github.com/engezna/settlement-engine/internal/domain"
	"github.com/engezna/settlement-engine/internal/finance"
	"github.com/engezna/settlement-engine/internal/repository"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "engezna.db"
	}

	log.Printf("Initializing database at %s", dbPath)
	db, err := repository.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	// Create repositories.
	repos := finance.Repos{
		Facts:       repository.NewFactRepo(db),
		Providers:   repository.NewProviderRepo(db),
		Settlements: repository.NewSettlementRepo(db),
		Audit:       repository.NewAuditRepo(db),
	}

	// Seed the database if it is empty.
	ctx := context.Background()
	count, err := repos.Facts.Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count facts: %v", err)
	}
	if count == 0 {
		log.Println("Database is empty, seeding from testdata...")
		if err := seed(ctx, repos); err != nil {
			log.Printf("WARNING: Failed to seed: %v", err)
		}
	} else {
		log.Printf("Database already has %d fact rows, skipping seed", count)
	}

	router := api.NewRouter(repos)

	log.Printf("Engezna Settlement Engine")
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("API base: http://localhost:%s/api/v1", port)
	log.Printf("")
	log.Printf("Endpoints:")
	log.Printf("  GET    /api/v1/finance/facts")
	log.Printf("  GET    /api/v1/finance/summary")
	log.Printf("  GET    /api/v1/finance/summary/provider/{id}")
	log.Printf("  GET    /api/v1/finance/summary/regional")
	log.Printf("  GET    /api/v1/finance/summary/regional/{governorateID}")
	log.Printf("  GET    /api/v1/settlements")
	log.Printf("  GET    /api/v1/settlements/{id}")
	log.Printf("  GET    /api/v1/settlements/{id}/report")
	log.Printf("  POST   /api/v1/settlements/{id}/payments")
	log.Printf("  GET    /api/v1/settlements/{id}/audit")
	log.Printf("  GET    /api/v1/settlements/export/csv")
	log.Printf("  GET    /api/v1/settlements/export/report")

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func seed(ctx context.Context, repos finance.Repos) error {
	var providers []domain.Provider
	if err := loadJSON("providers.json", &providers); err != nil {
		return err
	}
	if err := repos.Providers.BulkInsert(ctx, providers); err != nil {
		return fmt.Errorf("seed providers: %w", err)
	}

	var facts []domain.FinancialFact
	if err := loadJSON("financial_facts.json", &facts); err != nil {
		return err
	}
	if err := repos.Facts.BulkInsert(ctx, facts); err != nil {
		return fmt.Errorf("seed facts: %w", err)
	}

	var settlements []domain.Settlement
	if err := loadJSON("settlements.json", &settlements); err != nil {
		return err
	}
	if err := repos.Settlements.BulkInsert(ctx, settlements); err != nil {
		return fmt.Errorf("seed settlements: %w", err)
	}

	log.Printf("Seeded %d providers, %d facts, %d settlements",
		len(providers), len(facts), len(settlements))
	return nil
}

func loadJSON(name string, v any) error {
	// Try multiple possible locations for testdata.
	candidates := []string{
		filepath.Join("testdata", name),
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(dir, "testdata", name),
			filepath.Join(dir, "..", "..", "testdata", name),
		)
	}

	var data []byte
	var loadErr error
	for _, path := range candidates {
		data, loadErr = os.ReadFile(path)
		if loadErr == nil {
			log.Printf("Loaded %s from %s", name, path)
			break
		}
	}
	if loadErr != nil {
		return fmt.Errorf("could not find %s in any candidate path: %w", name, loadErr)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return nil
}
