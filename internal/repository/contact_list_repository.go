package repository

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/blackleo/outreach-backend/internal/model"
)

type ContactListRepositoryInterface interface {
	Create(l *model.ContactList) error
	ListAll() ([]model.ContactList, error)
	ListByCompany(companyID int) ([]model.ContactList, error)
	Delete(id int) (bool, error)
}

type ContactListRepository struct {
	DB *sql.DB
}

func (r *ContactListRepository) Create(l *model.ContactList) error {
	l.CreatedAt = time.Now()
	query := `
		INSERT INTO contact_lists (list_name, emails, company_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRow(query, l.ListName, pq.Array(l.Emails), l.CompanyID, l.CreatedAt).Scan(&l.ID)
}

func (r *ContactListRepository) ListAll() ([]model.ContactList, error) {
	return r.list(`SELECT id, list_name, emails, company_id, created_at FROM contact_lists ORDER BY id DESC`)
}

func (r *ContactListRepository) ListByCompany(companyID int) ([]model.ContactList, error) {
	return r.list(
		`SELECT id, list_name, emails, company_id, created_at FROM contact_lists WHERE company_id=$1 ORDER BY id DESC`,
		companyID,
	)
}

func (r *ContactListRepository) list(query string, args ...interface{}) ([]model.ContactList, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []model.ContactList{}
	for rows.Next() {
		var l model.ContactList
		if err := rows.Scan(&l.ID, &l.ListName, pq.Array(&l.Emails), &l.CompanyID, &l.CreatedAt); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, nil
}

// Delete removes a list; the bool result reports whether it existed.
func (r *ContactListRepository) Delete(id int) (bool, error) {
	res, err := r.DB.Exec(`DELETE FROM contact_lists WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

var _ ContactListRepositoryInterface = (*ContactListRepository)(nil)
