// internal/errors/errors.go
package appErrors

import "fmt"

// ErrPatientNotFound is a sentinel error
type ErrPatientNotFound struct {
	PatientID int
}

func (e *ErrPatientNotFound) Error() string {
	return fmt.Sprintf("patient with ID %d not found", e.PatientID)
}

// Helper constructor
func NewPatientNotFound(id int) error {
	return &ErrPatientNotFound{PatientID: id}
}

// ErrMissingGatewayConfig means a required gateway credential is absent.
// Sends fail fast on this, never degrade to a silent no-op.
type ErrMissingGatewayConfig struct {
	Field string
}

func (e *ErrMissingGatewayConfig) Error() string {
	return fmt.Sprintf("gateway configuration missing: %s", e.Field)
}

func NewMissingGatewayConfig(field string) error {
	return &ErrMissingGatewayConfig{Field: field}
}

// ErrNotificationsDisabled is returned when the master kill switch is off
// and a component is asked to send anyway.
type ErrNotificationsDisabled struct{}

func (e *ErrNotificationsDisabled) Error() string {
	return "renewal notifications are disabled"
}

func NewNotificationsDisabled() error {
	return &ErrNotificationsDisabled{}
}
