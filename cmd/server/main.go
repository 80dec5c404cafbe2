// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/afyacard/healthcard-backend/internal/config"
	"github.com/afyacard/healthcard-backend/internal/controller"
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

	patientRepo := &repository.PatientRepository{DB: conn}
	notificationRepo := &repository.NotificationRepository{DB: conn}

	renewalService, err := service.NewRenewalService(
		patientRepo,
		notificationRepo,
		gateway.NewClient(cfg),
		cfg,
		&service.FixedDelayPacer{Delay: cfg.Notifications.MessageDelay()},
	)
	if err != nil {
		log.Fatal("failed to build renewal service:", err)
	}

	notificationController := &controller.NotificationController{
		Orchestrator:  &service.Orchestrator{Service: renewalService},
		Notifications: notificationRepo,
		Patients:      patientRepo,
	}

	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Notification routes
	r.Post("/cron/renewal-notifications", notificationController.RunRenewalNotifications)
	r.Get("/notifications/stats", notificationController.GetNotificationStats)
	r.Get("/patients/{id}/notification", notificationController.GetPatientNotification)

	log.Println("server running on", cfg.Server.Addr())
	log.Fatal(http.ListenAndServe(cfg.Server.Addr(), r))
}
