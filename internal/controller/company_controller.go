// internal/controller/company_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/blackleo/outreach-backend/internal/model"
	"github.com/blackleo/outreach-backend/internal/repository"
)

type CompanyController struct {
	Repo repository.CompanyRepositoryInterface
}

func (c *CompanyController) AddClient(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName          string `json:"firstName"`
		LastName           string `json:"lastName"`
		Email              string `json:"email"`
		Phone              string `json:"phone"`
		CompanyName        string `json:"companyName"`
		CompanyDescription string `json:"companyDescription"`
		Industry           string `json:"industry"`
		Position           string `json:"position"`
		Website            string `json:"website"`
		Employees          int    `json:"employees"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if body.Email == "" || body.CompanyName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message": "email and companyName are required",
		})
		return
	}

	company := &model.Company{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		Email:       body.Email,
		Phone:       body.Phone,
		CompanyName: body.CompanyName,
		CompanyDesc: body.CompanyDescription,
		Industry:    body.Industry,
		Position:    body.Position,
		Website:     body.Website,
		Employees:   body.Employees,
	}
	if err := c.Repo.Create(company); err != nil {
		http.Error(w, "failed to add client: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      company.ID,
		"message": "Client added successfully",
	})
}

func (c *CompanyController) GetClients(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	companies, total, err := c.Repo.List(offset, limit, email)
	if err != nil {
		http.Error(w, "failed to fetch clients: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":   total,
		"page":    page,
		"limit":   limit,
		"clients": companies,
	})
}
