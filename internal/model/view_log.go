package model

import (
	"time"

	"github.com/google/uuid"
)

// PublicViewLog records one read of a follow-up through its public token.
// Rows are append-only.
type PublicViewLog struct {
	ID         uuid.UUID `db:"id" json:"id"`
	FollowUpID uuid.UUID `db:"followup_id" json:"followup_id"`
	ViewedAt   time.Time `db:"viewed_at" json:"viewed_at"`
	IPAddress  *string   `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
}
