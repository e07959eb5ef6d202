package model

import (
	"time"

	"github.com/google/uuid"
)

// Clinic is the tenant boundary. ClinicCode is assigned once at creation
// and never rewritten.
type Clinic struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	ClinicCode string    `db:"clinic_code" json:"clinic_code"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type CreateClinicInput struct {
	Name string `json:"name" validate:"required,max=255"`
}
