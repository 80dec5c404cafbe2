// cmd/cron/main.go
//
// One-shot renewal-notification run. The external scheduler executes this
// binary once a day; it exits non-zero when the run aborts so the scheduler
// can alert.
package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/afyacard/healthcard-backend/internal/config"
	"github.com/afyacard/healthcard-backend/internal/db"
	"github.com/afyacard/healthcard-backend/internal/gateway"
	"github.com/afyacard/healthcard-backend/internal/repository"
	"github.com/afyacard/healthcard-backend/internal/service"
)

func main() {
	cfg, err := config.LoadFromEnv(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	conn, err := db.Connect(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to DB:", err)
	}
	defer conn.Close()

	renewalService, err := service.NewRenewalService(
		&repository.PatientRepository{DB: conn},
		&repository.NotificationRepository{DB: conn},
		gateway.NewClient(cfg),
		cfg,
		&service.FixedDelayPacer{Delay: cfg.Notifications.MessageDelay()},
	)
	if err != nil {
		log.Fatal("failed to build renewal service:", err)
	}

	orchestrator := &service.Orchestrator{Service: renewalService}
	summary, err := orchestrator.RunRenewalCampaigns()
	if err != nil {
		log.Fatal("renewal run aborted:", err)
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	os.Stdout.Write(append(out, '\n'))
}
