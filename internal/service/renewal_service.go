// internal/service/renewal_service.go
package service

import (
	"time"

	"github.com/afyacard/healthcard-backend/internal/config"
	"github.com/afyacard/healthcard-backend/internal/gateway"
	"github.com/afyacard/healthcard-backend/internal/model"
	"github.com/afyacard/healthcard-backend/internal/phone"
	"github.com/afyacard/healthcard-backend/internal/pkg/logger"
	"github.com/afyacard/healthcard-backend/internal/repository"
	"github.com/afyacard/healthcard-backend/internal/template"
)

// Sender delivers one resolved template message to a destination.
// *gateway.Client is the production implementation.
type Sender interface {
	Send(destination string, msg template.Message) gateway.SendResult
}

// Per-patient terminal outcomes for the batch summary.
const (
	OutcomeSent                   = "sent"
	OutcomeFailed                 = "failed"
	OutcomeSkippedInvalidPhone    = "skipped_invalid_phone"
	OutcomeSkippedAlreadyNotified = "skipped_already_notified"
)

// PatientOutcome is one line of a campaign summary.
type PatientOutcome struct {
	PatientID int    `json:"patient_id"`
	Outcome   string `json:"outcome"`
	Reason    string `json:"reason,omitempty"`
}

// CampaignSummary aggregates one campaign run.
type CampaignSummary struct {
	Campaign               model.CampaignType `json:"campaign"`
	Eligible               int                `json:"eligible"`
	Sent                   int                `json:"sent"`
	Failed                 int                `json:"failed"`
	SkippedInvalidPhone    int                `json:"skipped_invalid_phone"`
	SkippedAlreadyNotified int                `json:"skipped_already_notified"`
	Duration               time.Duration      `json:"duration_ns"`
	Outcomes               []PatientOutcome   `json:"outcomes"`
}

// RenewalService processes one renewal campaign end to end: select the
// eligible patients for the campaign's window, then for each one resolve
// the template, acquire the ledger lock, deliver, and record the outcome.
type RenewalService struct {
	Patients      repository.PatientRepositoryInterface
	Notifications repository.NotificationRepositoryInterface
	Sender        Sender
	Config        *config.Config
	Pacer         Pacer

	// Now is the clock used for window computation; tests pin it.
	Now func() time.Time

	loc *time.Location
}

// NewRenewalService wires a service from its collaborators. It fails only
// when the configured business timezone cannot be resolved.
func NewRenewalService(
	patients repository.PatientRepositoryInterface,
	notifications repository.NotificationRepositoryInterface,
	sender Sender,
	cfg *config.Config,
	pacer Pacer,
) (*RenewalService, error) {
	loc, err := cfg.Notifications.Location()
	if err != nil {
		return nil, err
	}
	return &RenewalService{
		Patients:      patients,
		Notifications: notifications,
		Sender:        sender,
		Config:        cfg,
		Pacer:         pacer,
		Now:           time.Now,
		loc:           loc,
	}, nil
}

// RunCampaign executes one campaign. A selector failure is fatal to the
// campaign and returned; a failure on an individual patient is recorded in
// the summary and never stops the remaining patients.
func (s *RenewalService) RunCampaign(campaign model.CampaignType) (*CampaignSummary, error) {
	started := time.Now()

	from, to := CampaignWindow(s.Now(), campaign, s.loc)
	logger.Info("selecting eligible patients",
		"campaign", campaign,
		"window_from", from.Format(time.RFC3339),
		"window_to", to.Format(time.RFC3339),
	)

	patients, err := s.Patients.SelectEligible(campaign, from, to)
	if err != nil {
		return nil, err
	}

	summary := &CampaignSummary{
		Campaign: campaign,
		Eligible: len(patients),
		Outcomes: []PatientOutcome{},
	}

	for i, p := range patients {
		if i > 0 {
			s.Pacer.Pause()
		}

		outcome := s.processPatient(campaign, p)
		summary.Outcomes = append(summary.Outcomes, outcome)

		switch outcome.Outcome {
		case OutcomeSent:
			summary.Sent++
		case OutcomeFailed:
			summary.Failed++
		case OutcomeSkippedInvalidPhone:
			summary.SkippedInvalidPhone++
		case OutcomeSkippedAlreadyNotified:
			summary.SkippedAlreadyNotified++
		}
	}

	summary.Duration = time.Since(started)
	logger.Info("campaign finished",
		"campaign", campaign,
		"eligible", summary.Eligible,
		"sent", summary.Sent,
		"failed", summary.Failed,
		"skipped_invalid_phone", summary.SkippedInvalidPhone,
		"skipped_already_notified", summary.SkippedAlreadyNotified,
		"duration", summary.Duration,
	)
	return summary, nil
}

// processPatient walks one patient through the per-patient state machine:
// validate phone, resolve template, acquire lock, redirect, deliver, record.
// Every exit path is terminal; nothing loops back.
func (s *RenewalService) processPatient(campaign model.CampaignType, p repository.EligiblePatient) PatientOutcome {
	digits, err := phone.Normalize(p.Phone)
	if err != nil {
		// No ledger row for an undeliverable number: the patient stays
		// eligible for a later run once the record is corrected.
		logger.Warn("skipping patient with invalid phone",
			"campaign", campaign, "patient_id", p.ID, "error", err)
		return PatientOutcome{PatientID: p.ID, Outcome: OutcomeSkippedInvalidPhone, Reason: err.Error()}
	}

	msg := template.Resolve(campaign, p.FullName(), p.ExpirationDate.In(s.loc), p.ClinicName)

	rec := &model.NotificationRecord{
		PatientID:    p.ID,
		ClinicID:     p.ClinicID,
		CampaignType: campaign,
		TemplateName: msg.TemplateName,
		Destination:  digits,
	}
	lock, err := s.Notifications.TryAcquire(rec)
	if err != nil {
		logger.Error("ledger insert failed",
			"campaign", campaign, "patient_id", p.ID, "error", err)
		return PatientOutcome{PatientID: p.ID, Outcome: OutcomeFailed, Reason: err.Error()}
	}
	if lock == repository.LockAlreadyHeld {
		// Another run won the insert race, or a previous run already
		// handled this patient. Expected, not an error.
		return PatientOutcome{PatientID: p.ID, Outcome: OutcomeSkippedAlreadyNotified}
	}

	// In non-production every real destination is swapped for the test
	// number before the call leaves the process. The ledger keeps the
	// patient's real (normalized) number for audit.
	target := digits
	if !s.Config.Notifications.IsProduction() && s.Config.Notifications.TestDestination != "" {
		target = s.Config.Notifications.TestDestination
		logger.Debug("redirecting to test destination",
			"campaign", campaign, "patient_id", p.ID, "original_destination", digits)
	}

	res := s.Sender.Send(target, msg)
	if err := s.Notifications.RecordOutcome(p.ID, campaign, res.Success); err != nil {
		logger.Error("failed to record delivery outcome",
			"campaign", campaign, "patient_id", p.ID, "error", err)
	}

	if !res.Success {
		reason := "delivery failed"
		if res.Err != nil {
			reason = res.Err.Error()
		}
		logger.Warn("delivery failed",
			"campaign", campaign, "patient_id", p.ID, "destination", digits, "error", reason)
		return PatientOutcome{PatientID: p.ID, Outcome: OutcomeFailed, Reason: reason}
	}

	logger.Info("notification sent",
		"campaign", campaign, "patient_id", p.ID, "destination", digits, "provider_message_id", res.MessageID)
	return PatientOutcome{PatientID: p.ID, Outcome: OutcomeSent}
}
