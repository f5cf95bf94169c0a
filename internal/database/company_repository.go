package database

import (
	"github.com/rahhal/travel-backend/internal/models"
)

// CompanyRepository handles read access to the companies table
type CompanyRepository struct {
	db DB
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(db DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// GetByID retrieves a company by ID
func (r *CompanyRepository) GetByID(companyID string) (*models.Company, error) {
	query := `
		SELECT id, name, created_by, created_at, updated_at
		FROM companies
		WHERE id = $1
	`

	company := &models.Company{}
	err := r.db.QueryRow(query, companyID).Scan(
		&company.ID, &company.Name, &company.CreatedBy, &company.CreatedAt, &company.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return company, nil
}

// GetByCreatedBy retrieves the company a user created, if any. This is the
// company-side half of the dual-path operator linkage.
func (r *CompanyRepository) GetByCreatedBy(userID string) (*models.Company, error) {
	query := `
		SELECT id, name, created_by, created_at, updated_at
		FROM companies
		WHERE created_by = $1
	`

	company := &models.Company{}
	err := r.db.QueryRow(query, userID).Scan(
		&company.ID, &company.Name, &company.CreatedBy, &company.CreatedAt, &company.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return company, nil
}
