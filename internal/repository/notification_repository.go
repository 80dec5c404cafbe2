package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/afyacard/healthcard-backend/internal/model"
)

// LockResult is the tri-state outcome of TryAcquire. A failed store call is
// reported through the separate error return.
type LockResult int

const (
	LockAcquired LockResult = iota
	LockAlreadyHeld
)

// uniqueViolation is the postgres SQLSTATE for a unique constraint hit.
const uniqueViolation = "23505"

// NotificationRepositoryInterface defines the ledger operations used by the
// renewal service
type NotificationRepositoryInterface interface {
	TryAcquire(rec *model.NotificationRecord) (LockResult, error)
	RecordOutcome(patientID int, campaign model.CampaignType, success bool) error
}

// NotificationRepository persists the renewal-notification ledger: one row
// per (patient, campaign type), acting as idempotency lock, delivery-status
// state machine and audit trail at once.
type NotificationRepository struct {
	DB *sql.DB
}

// TryAcquire inserts the pending ledger row for (patient, campaign). The
// insert races against concurrent runs on the unique (patient_id,
// campaign_type) constraint; losing that race comes back as LockAlreadyHeld
// and is an expected outcome, not an error. Any other store failure
// propagates. The row must exist before any send is attempted — a crash
// between insert and send leaves a pending row and the patient is never
// retried, which is the accepted at-most-once trade-off.
func (r *NotificationRepository) TryAcquire(rec *model.NotificationRecord) (LockResult, error) {
	query := `
		INSERT INTO renewal_notifications (patient_id, clinic_id, campaign_type, template_name, destination, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRow(query, rec.PatientID, rec.ClinicID, string(rec.CampaignType), rec.TemplateName, rec.Destination).
		Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return LockAlreadyHeld, nil
		}
		return 0, err
	}

	rec.Status = model.NotificationStatusPending
	return LockAcquired, nil
}

// RecordOutcome transitions the ledger row out of pending: to sent with a
// sent timestamp, or to failed. It follows exactly one successful
// TryAcquire, so the row is always there.
func (r *NotificationRepository) RecordOutcome(patientID int, campaign model.CampaignType, success bool) error {
	if success {
		query := `UPDATE renewal_notifications SET status=$1, sent_at=$2, updated_at=NOW() WHERE patient_id=$3 AND campaign_type=$4`
		_, err := r.DB.Exec(query, model.NotificationStatusSent, time.Now().UTC(), patientID, string(campaign))
		return err
	}
	query := `UPDATE renewal_notifications SET status=$1, updated_at=NOW() WHERE patient_id=$2 AND campaign_type=$3`
	_, err := r.DB.Exec(query, model.NotificationStatusFailed, patientID, string(campaign))
	return err
}

// GetByKey fetches the ledger row for one (patient, campaign) pair.
func (r *NotificationRepository) GetByKey(patientID int, campaign model.CampaignType) (*model.NotificationRecord, error) {
	query := `
		SELECT id, patient_id, clinic_id, campaign_type, template_name, destination, status, sent_at, created_at, updated_at
		FROM renewal_notifications
		WHERE patient_id=$1 AND campaign_type=$2
	`
	var rec model.NotificationRecord
	err := r.DB.QueryRow(query, patientID, string(campaign)).Scan(
		&rec.ID, &rec.PatientID, &rec.ClinicID, &rec.CampaignType,
		&rec.TemplateName, &rec.Destination, &rec.Status,
		&rec.SentAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// StatsByCampaign returns ledger counts grouped by campaign type and
// status, for the operator-facing stats endpoint.
func (r *NotificationRepository) StatsByCampaign() (map[string]map[string]int, error) {
	query := `SELECT campaign_type, status, COUNT(*) FROM renewal_notifications GROUP BY campaign_type, status`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]map[string]int{}
	for _, c := range model.AllCampaignTypes {
		stats[string(c)] = map[string]int{
			model.NotificationStatusPending: 0,
			model.NotificationStatusSent:    0,
			model.NotificationStatusFailed:  0,
		}
	}

	for rows.Next() {
		var campaign, status string
		var count int
		if err := rows.Scan(&campaign, &status, &count); err != nil {
			return nil, err
		}
		if _, ok := stats[campaign]; !ok {
			stats[campaign] = map[string]int{}
		}
		stats[campaign][status] = count
	}
	return stats, rows.Err()
}

var _ NotificationRepositoryInterface = (*NotificationRepository)(nil)
