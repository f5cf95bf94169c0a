package models

import (
	"time"
)

// User represents a platform account. Authentication and profile flows are
// owned by the identity service; the booking core reads users to resolve
// names for seat occupancy and the company linkage for operator checks.
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	CompanyID *string   `json:"company_id,omitempty" db:"company_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// BelongsToCompany checks the profile-side company linkage. This is one of
// the two onboarding paths that establish operator rights; the other is the
// created_by field on the company record itself.
func (u *User) BelongsToCompany(companyID string) bool {
	return u.CompanyID != nil && *u.CompanyID == companyID
}
