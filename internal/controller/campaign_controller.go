// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/blackleo/outreach-backend/internal/errors"
	"github.com/blackleo/outreach-backend/internal/model"
	"github.com/blackleo/outreach-backend/internal/repository"
)

type CampaignController struct {
	CampaignRepo repository.CampaignRepositoryInterface
	BatchRepo    repository.BatchRepositoryInterface
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string `json:"name"`
		CompanyID int    `json:"company_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if body.CompanyID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "company_id is required"})
		return
	}

	campaign := &model.Campaign{
		Name:      body.Name,
		CompanyID: body.CompanyID,
	}
	if err := c.CampaignRepo.Create(campaign); err != nil {
		http.Error(w, "failed to create campaign: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Campaign created",
		"campaign": campaign,
	})
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	companyID, _ := strconv.Atoi(r.URL.Query().Get("company_id"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	campaigns, total, err := c.CampaignRepo.ListCampaigns(offset, limit, companyID)
	if err != nil {
		http.Error(w, "failed to fetch campaigns: "+err.Error(), http.StatusInternalServerError)
		return
	}

	totalPages := (total + limit - 1) / limit
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": campaigns,
		"pagination": map[string]int{
			"page":        page,
			"limit":       limit,
			"total_count": total,
			"total_pages": totalPages,
		},
	})
}

// GetCampaignReport returns the campaign with all of its send batches and
// the reply total.
func (c *CampaignController) GetCampaignReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "campaignId"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	campaign, err := c.CampaignRepo.GetByID(id)
	if err != nil {
		if appErrors.IsNotFound(err) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "Campaign not found"})
			return
		}
		http.Error(w, "failed to fetch campaign: "+err.Error(), http.StatusInternalServerError)
		return
	}

	batches, err := c.BatchRepo.ListByCampaign(id)
	if err != nil {
		http.Error(w, "failed to fetch batches: "+err.Error(), http.StatusInternalServerError)
		return
	}

	totalReplies, err := c.BatchRepo.CountReplies(id)
	if err != nil {
		http.Error(w, "failed to count replies: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"campaign":       campaign,
		"emailCampaigns": batches,
		"totalReplies":   totalReplies,
	})
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "campaignId"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	if err := c.CampaignRepo.Delete(id); err != nil {
		if appErrors.IsNotFound(err) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "Campaign not found"})
			return
		}
		http.Error(w, "failed to delete campaign: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Campaign deleted"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
