package repository

import (
	"database/sql"
	"time"

	appErrors "github.com/afyacard/healthcard-backend/internal/errors"
	"github.com/afyacard/healthcard-backend/internal/model"
)

// EligiblePatient is one selector row: the patient plus the clinic display
// name used as a template parameter.
type EligiblePatient struct {
	model.Patient
	ClinicName string
}

// PatientRepositoryInterface defines methods used by the renewal service
type PatientRepositoryInterface interface {
	GetByID(id int) (*model.Patient, error)
	SelectEligible(campaign model.CampaignType, from, to time.Time) ([]EligiblePatient, error)
}

// PatientRepository is the concrete implementation
type PatientRepository struct {
	DB *sql.DB
}

// GetByID fetches a patient by ID
func (r *PatientRepository) GetByID(id int) (*model.Patient, error) {
	query := `
		SELECT id, clinic_id, first_name, last_name, phone, expiration_date, active, whatsapp_consent, created_at
		FROM patients
		WHERE id = $1
	`
	row := r.DB.QueryRow(query, id)

	var p model.Patient
	if err := row.Scan(&p.ID, &p.ClinicID, &p.FirstName, &p.LastName, &p.Phone, &p.ExpirationDate, &p.Active, &p.WhatsappConsent, &p.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewPatientNotFound(id)
		}
		return nil, err
	}
	return &p, nil
}

// SelectEligible returns patients whose expiration falls inside the UTC
// window [from, to], who have given messaging consent, and who have no
// ledger row yet for the given campaign. The anti-join on the ledger is
// only a pre-filter; the authoritative duplicate guard is the unique
// constraint hit at lock-acquisition time.
//
// Only the D-7 campaign filters on the active flag. D0 must still reach
// patients a nightly job already deactivated on their expiration day, and
// D+30 targets lapsed renewals, who are inactive almost by definition.
func (r *PatientRepository) SelectEligible(campaign model.CampaignType, from, to time.Time) ([]EligiblePatient, error) {
	query := `
		SELECT p.id, p.clinic_id, p.first_name, p.last_name, p.phone, p.expiration_date, p.active, p.whatsapp_consent, p.created_at, c.name
		FROM patients p
		JOIN clinics c ON c.id = p.clinic_id
		LEFT JOIN renewal_notifications n
			ON n.patient_id = p.id AND n.campaign_type = $1
		WHERE p.expiration_date >= $2
		  AND p.expiration_date <= $3
		  AND p.whatsapp_consent = TRUE
		  AND n.id IS NULL
	`
	if campaign == model.CampaignRenewalD7 {
		query += ` AND p.active = TRUE`
	}
	query += ` ORDER BY p.id`

	rows, err := r.DB.Query(query, string(campaign), from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := []EligiblePatient{}
	for rows.Next() {
		var ep EligiblePatient
		if err := rows.Scan(&ep.ID, &ep.ClinicID, &ep.FirstName, &ep.LastName, &ep.Phone, &ep.ExpirationDate, &ep.Active, &ep.WhatsappConsent, &ep.CreatedAt, &ep.ClinicName); err != nil {
			return nil, err
		}
		patients = append(patients, ep)
	}
	return patients, rows.Err()
}

var _ PatientRepositoryInterface = (*PatientRepository)(nil)
