// Package template maps a renewal campaign to the pre-approved gateway
// template it must be sent with. The gateway rejects anything that is not
// an approved template outside a live conversation window, so this package
// never builds free-form message text.
package template

import (
	"fmt"
	"time"

	"github.com/afyacard/healthcard-backend/internal/model"
)

// Message is a resolved template: the provider-side template identifier and
// the ordered substitution values bound to its placeholders. Order matters;
// the gateway binds parameters positionally.
type Message struct {
	TemplateName string
	Parameters   []string
}

// Provider template identifiers. These are registered and approved on the
// gateway side; renaming one here without re-approving it there makes every
// send fail with a terminal error.
const (
	TemplateRenewalUpcoming = "card_renewal_upcoming"
	TemplateRenewalDueToday = "card_renewal_due_today"
	TemplateRenewalLapsed   = "card_renewal_lapsed"
)

// dateFormat is the human-readable expiration date placed into templates.
const dateFormat = "02 Jan 2006"

// Resolve returns the message for one campaign type. An unknown campaign
// type is a programming error and panics; callers only ever pass the three
// fixed campaign constants.
func Resolve(campaign model.CampaignType, patientName string, expiration time.Time, clinicName string) Message {
	date := expiration.Format(dateFormat)

	switch campaign {
	case model.CampaignRenewalD7:
		// {{1}} name, {{2}} expiration date, {{3}} clinic
		return Message{
			TemplateName: TemplateRenewalUpcoming,
			Parameters:   []string{patientName, date, clinicName},
		}
	case model.CampaignRenewalD0:
		// {{1}} name, {{2}} clinic
		return Message{
			TemplateName: TemplateRenewalDueToday,
			Parameters:   []string{patientName, clinicName},
		}
	case model.CampaignRenewalD30:
		// {{1}} name, {{2}} expiration date, {{3}} clinic
		return Message{
			TemplateName: TemplateRenewalLapsed,
			Parameters:   []string{patientName, date, clinicName},
		}
	}

	panic(fmt.Sprintf("template: unknown campaign type %q", campaign))
}
