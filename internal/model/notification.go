// internal/model/notification.go
package model

import "time"

// CampaignType identifies one of the three fixed renewal campaigns,
// named by the day offset relative to the patient's expiration date.
type CampaignType string

const (
	CampaignRenewalD7  CampaignType = "RENEWAL_D_7"  // 7 days before expiration
	CampaignRenewalD0  CampaignType = "RENEWAL_D_0"  // day of expiration
	CampaignRenewalD30 CampaignType = "RENEWAL_D_30" // 30 days after expiration
)

// AllCampaignTypes lists the campaigns in the order the orchestrator runs them.
var AllCampaignTypes = []CampaignType{CampaignRenewalD7, CampaignRenewalD0, CampaignRenewalD30}

// OffsetDays returns the day offset added to "today" (business timezone)
// to obtain the expiration day this campaign targets. D-7 looks 7 days
// ahead; D+30 looks 30 days back.
func (c CampaignType) OffsetDays() int {
	switch c {
	case CampaignRenewalD7:
		return 7
	case CampaignRenewalD0:
		return 0
	case CampaignRenewalD30:
		return -30
	}
	return 0
}

func (c CampaignType) Valid() bool {
	switch c {
	case CampaignRenewalD7, CampaignRenewalD0, CampaignRenewalD30:
		return true
	}
	return false
}

// Notification statuses. A row is created as "pending" before the send is
// attempted and finishes as exactly one of "sent" or "failed".
const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

// NotificationRecord is one row of the renewal-notification ledger. The
// unique (patient_id, campaign_type) pair doubles as the idempotency lock:
// whichever run inserts the row owns the send, every later run skips.
type NotificationRecord struct {
	ID           int          `db:"id" json:"id"`
	PatientID    int          `db:"patient_id" json:"patient_id"`
	ClinicID     int          `db:"clinic_id" json:"clinic_id"`
	CampaignType CampaignType `db:"campaign_type" json:"campaign_type"`
	TemplateName string       `db:"template_name" json:"template_name"`
	// Destination is the normalized patient phone as recorded for audit.
	// It stays the real number even when a non-prod run redirects the
	// actual outbound call to a test destination.
	Destination string     `db:"destination" json:"destination"`
	Status      string     `db:"status" json:"status"`
	SentAt      *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
