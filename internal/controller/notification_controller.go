// internal/controller/notification_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/afyacard/healthcard-backend/internal/errors"
	"github.com/afyacard/healthcard-backend/internal/model"
	"github.com/afyacard/healthcard-backend/internal/repository"
	"github.com/afyacard/healthcard-backend/internal/service"
)

type NotificationController struct {
	Orchestrator  *service.Orchestrator
	Notifications *repository.NotificationRepository
	Patients      repository.PatientRepositoryInterface
}

// RunRenewalNotifications triggers a full renewal run synchronously and
// returns the per-campaign summary. The external scheduler hits this
// endpoint once a day.
func (c *NotificationController) RunRenewalNotifications(w http.ResponseWriter, r *http.Request) {
	summary, err := c.Orchestrator.RunRenewalCampaigns()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// GetNotificationStats returns ledger counts by campaign type and status.
func (c *NotificationController) GetNotificationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Notifications.StatsByCampaign()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"stats": stats,
	})
}

// GetPatientNotification returns the ledger row for one patient and
// campaign, if any.
func (c *NotificationController) GetPatientNotification(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}

	campaign := model.CampaignType(r.URL.Query().Get("campaign"))
	if !campaign.Valid() {
		http.Error(w, "unknown campaign type", http.StatusBadRequest)
		return
	}

	if _, err := c.Patients.GetByID(id); err != nil {
		var notFound *appErrors.ErrPatientNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rec, err := c.Notifications.GetByKey(id, campaign)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "no notification recorded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}
