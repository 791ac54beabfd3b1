// internal/model/company.go
package model

import "time"

// Company is a client record: the business on whose behalf campaigns run.
type Company struct {
	ID          int       `db:"id" json:"id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	Email       string    `db:"email" json:"email"`
	Phone       string    `db:"phone" json:"phone"`
	CompanyName string    `db:"company_name" json:"company_name"`
	CompanyDesc string    `db:"company_desc" json:"company_desc"`
	Industry    string    `db:"industry" json:"industry"`
	Position    string    `db:"position" json:"position"`
	Website     string    `db:"website" json:"website"`
	Employees   int       `db:"employees" json:"employees"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
