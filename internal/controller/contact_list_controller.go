// internal/controller/contact_list_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/blackleo/outreach-backend/internal/model"
	"github.com/blackleo/outreach-backend/internal/repository"
)

type ContactListController struct {
	Repo repository.ContactListRepositoryInterface
}

func (c *ContactListController) CreateContactList(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ListName  string   `json:"listName"`
		Emails    []string `json:"emails"`
		CompanyID *int     `json:"companyId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "invalid body",
		})
		return
	}

	if body.ListName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "listName is required",
		})
		return
	}
	if len(body.Emails) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "emails must be a non-empty array",
		})
		return
	}

	list := &model.ContactList{
		ListName:  body.ListName,
		Emails:    body.Emails,
		CompanyID: body.CompanyID,
	}
	if err := c.Repo.Create(list); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Failed to create contact list",
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Contact list created successfully",
	})
}

func (c *ContactListController) GetAllContactLists(w http.ResponseWriter, r *http.Request) {
	lists, err := c.Repo.ListAll()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Failed to fetch contact lists",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    lists,
	})
}

func (c *ContactListController) GetContactListsByCompany(w http.ResponseWriter, r *http.Request) {
	// The path segment carries a company id here; the DELETE route reuses the
	// same wildcard for the list id.
	companyID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Valid companyId is required in the URL",
		})
		return
	}

	lists, err := c.Repo.ListByCompany(companyID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Failed to fetch contact lists for company",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    lists,
	})
}

func (c *ContactListController) DeleteContactList(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid contact list ID",
		})
		return
	}

	deleted, err := c.Repo.Delete(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Failed to delete contact list",
		})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": "Contact list not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Contact list deleted successfully",
	})
}
