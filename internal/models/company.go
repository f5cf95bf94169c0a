package models

import (
	"time"
)

// Company represents a corporate trip operator. Company onboarding and
// profile management belong to the identity service; the booking core reads
// companies only to resolve operator authorization.
type Company struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
