// internal/service/orchestrator.go
package service

import (
	"time"

	"github.com/google/uuid"

	appErrors "github.com/afyacard/healthcard-backend/internal/errors"
	"github.com/afyacard/healthcard-backend/internal/model"
	"github.com/afyacard/healthcard-backend/internal/pkg/logger"
)

// RunSummary aggregates a full orchestrator run over the three campaigns.
type RunSummary struct {
	RunID     string             `json:"run_id"`
	Disabled  bool               `json:"disabled,omitempty"`
	Campaigns []*CampaignSummary `json:"campaigns"`
	Duration  time.Duration      `json:"duration_ns"`
}

// Orchestrator is the scheduled entry point. It gates on the master kill
// switch, validates configuration up front, and runs the three renewal
// campaigns strictly in sequence.
type Orchestrator struct {
	Service *RenewalService
}

// RunRenewalCampaigns runs D-7, then D0, then D+30. A disabled kill switch
// returns cleanly with an empty summary. A configuration problem or a
// selector failure aborts the whole run; per-patient failures never do.
func (o *Orchestrator) RunRenewalCampaigns() (*RunSummary, error) {
	cfg := o.Service.Config
	summary := &RunSummary{
		RunID:     uuid.New().String(),
		Campaigns: []*CampaignSummary{},
	}

	if !cfg.Notifications.Enabled {
		logger.Info("renewal notifications disabled, skipping run", "run_id", summary.RunID)
		summary.Disabled = true
		return summary, nil
	}

	// Fail before touching any patient when the gateway cannot be reached
	// anyway, or when a non-prod environment has no test destination to
	// redirect to. Non-prod must never contact real customers.
	if err := cfg.Gateway.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Notifications.IsProduction() && cfg.Notifications.TestDestination == "" {
		return nil, appErrors.NewMissingGatewayConfig("test_destination (required outside prod)")
	}

	started := time.Now()
	logger.Info("starting renewal notification run",
		"run_id", summary.RunID, "environment", cfg.Notifications.Environment)

	for _, campaign := range model.AllCampaignTypes {
		cs, err := o.Service.RunCampaign(campaign)
		if err != nil {
			// Selector failures are infrastructure failures; the rest of
			// the run is aborted rather than limped through.
			logger.Error("campaign aborted run",
				"run_id", summary.RunID, "campaign", campaign, "error", err)
			return nil, err
		}
		summary.Campaigns = append(summary.Campaigns, cs)
	}

	summary.Duration = time.Since(started)

	var sent, failed, skipped int
	for _, cs := range summary.Campaigns {
		sent += cs.Sent
		failed += cs.Failed
		skipped += cs.SkippedInvalidPhone + cs.SkippedAlreadyNotified
	}
	logger.Info("renewal notification run finished",
		"run_id", summary.RunID,
		"sent", sent,
		"failed", failed,
		"skipped", skipped,
		"duration", summary.Duration,
	)
	return summary, nil
}
