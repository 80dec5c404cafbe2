// internal/model/clinic.go
package model

type Clinic struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
