package model

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile binds one staff user to exactly one clinic.
type UserProfile struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ClinicID  uuid.UUID `db:"clinic_id" json:"clinic_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
