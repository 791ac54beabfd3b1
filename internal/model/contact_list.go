// internal/model/contact_list.go
package model

import "time"

// ContactList is a named recipient list, optionally owned by a company.
type ContactList struct {
	ID        int       `db:"id" json:"id"`
	ListName  string    `db:"list_name" json:"listName"`
	Emails    []string  `db:"emails" json:"emails"`
	CompanyID *int      `db:"company_id" json:"company,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
