package main

import (
	"log"
	"net/http"

	"github.com/lisdrive/repasse/internal/adminfee"
	"github.com/lisdrive/repasse/internal/api"
	"github.com/lisdrive/repasse/internal/bonus"
	"github.com/lisdrive/repasse/internal/config"
	"github.com/lisdrive/repasse/internal/financing"
	"github.com/lisdrive/repasse/internal/repository"
	"github.com/lisdrive/repasse/internal/settlement"
)

func main() {
	cfg := config.Load()

	log.Printf("Initializing database at %s", cfg.DBPath)
	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	// Repositories.
	driverRepo := repository.NewDriverRepo(db)
	entryRepo := repository.NewEntryRepo(db)
	financingRepo := repository.NewFinancingRepo(db)
	bonusRepo := repository.NewBonusRepo(db)
	settRepo := repository.NewSettlementRepo(db)

	// Services.
	ledger := financing.NewLedger(financingRepo)
	aggregator := bonus.NewStored(bonusRepo)
	gate := settlement.NewGate(settRepo)
	engine := settlement.NewEngine(driverRepo, entryRepo, ledger, aggregator, gate, settlement.Config{
		VATPercent: cfg.VATPercent,
		Fee: adminfee.Config{
			Percent: cfg.AdminFeePercent,
			Fixed:   cfg.AdminFeeFixed,
		},
	})

	router := api.NewRouter(engine, settRepo, entryRepo)

	log.Printf("TVDE Weekly Driver Settlement Service")
	log.Printf("Listening on http://localhost:%s", cfg.Port)
	log.Printf("API base: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("")
	log.Printf("Endpoints:")
	log.Printf("  POST   /api/v1/weeks/{weekID}/process")
	log.Printf("  GET    /api/v1/weeks/{weekID}/settlements")
	log.Printf("  GET    /api/v1/weeks/{weekID}/summary")
	log.Printf("  GET    /api/v1/settlements")
	log.Printf("  GET    /api/v1/settlements/{id}")
	log.Printf("  GET    /api/v1/settlements/{id}/display")
	log.Printf("  POST   /api/v1/settlements/{id}/pay")
	log.Printf("  POST   /api/v1/entries/import")

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
