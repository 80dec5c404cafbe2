// internal/model/patient.go
package model

import "time"

type Patient struct {
	ID              int       `db:"id" json:"id"`
	ClinicID        int       `db:"clinic_id" json:"clinic_id"`
	FirstName       string    `db:"first_name" json:"first_name"`
	LastName        string    `db:"last_name" json:"last_name"`
	Phone           string    `db:"phone" json:"phone"`
	ExpirationDate  time.Time `db:"expiration_date" json:"expiration_date"`
	Active          bool      `db:"active" json:"active"`
	WhatsappConsent bool      `db:"whatsapp_consent" json:"whatsapp_consent"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// FullName joins first and last name for template parameters.
func (p *Patient) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
