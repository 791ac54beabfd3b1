package repository

import (
	"database/sql"
	"time"

	"github.com/blackleo/outreach-backend/internal/model"
)

// CompanyRepositoryInterface defines methods used by the clients endpoints.
type CompanyRepositoryInterface interface {
	Create(c *model.Company) error
	List(offset, limit int, email string) ([]model.Company, int, error)
}

// CompanyRepository is the concrete implementation
type CompanyRepository struct {
	DB *sql.DB
}

func (r *CompanyRepository) Create(c *model.Company) error {
	c.CreatedAt = time.Now()
	query := `
		INSERT INTO companies (first_name, last_name, email, phone, company_name, company_desc,
							   industry, position, website, employees, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.DB.QueryRow(query,
		c.FirstName, c.LastName, c.Email, c.Phone, c.CompanyName, c.CompanyDesc,
		c.Industry, c.Position, c.Website, c.Employees, c.CreatedAt,
	).Scan(&c.ID)
}

func (r *CompanyRepository) List(offset, limit int, email string) ([]model.Company, int, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, company_name, company_desc,
			   industry, position, website, employees, created_at
		FROM companies
	`
	args := []interface{}{}
	if email != "" {
		query += ` WHERE email=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, email, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	companies := []model.Company{}
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(
			&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
			&c.CompanyName, &c.CompanyDesc, &c.Industry, &c.Position,
			&c.Website, &c.Employees, &c.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		companies = append(companies, c)
	}

	countQuery := `SELECT COUNT(*) FROM companies`
	countArgs := []interface{}{}
	if email != "" {
		countQuery += ` WHERE email=$1`
		countArgs = append(countArgs, email)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}

var _ CompanyRepositoryInterface = (*CompanyRepository)(nil)
