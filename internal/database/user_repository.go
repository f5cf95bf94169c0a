package database

import (
	"database/sql"

	"github.com/rahhal/travel-backend/internal/models"
)

// UserRepository handles read access to the users table
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(userID string) (*models.User, error) {
	query := `
		SELECT id, name, phone, company_id, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	var companyID sql.NullString

	err := r.db.QueryRow(query, userID).Scan(
		&user.ID, &user.Name, &user.Phone, &companyID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if companyID.Valid {
		user.CompanyID = &companyID.String
	}

	return user, nil
}
