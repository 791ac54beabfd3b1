// internal/controller/email_controller.go
package controller

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appErrors "github.com/blackleo/outreach-backend/internal/errors"
	"github.com/blackleo/outreach-backend/internal/repository"
	"github.com/blackleo/outreach-backend/internal/service"
)

// trackingPixel is the fixed 1x1 transparent PNG served by the open beacon.
var trackingPixel, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR4nGNgYAAAAAMAASsJTYQAAAAASUVORK5CYII=",
)

type EmailController struct {
	SendService *service.SendService
	Tracking    *service.TrackingService
	BatchRepo   repository.BatchRepositoryInterface
	Log         *zap.Logger
}

// SendEmail runs the full send flow synchronously: the response is not
// written until every wave has completed.
func (c *EmailController) SendEmail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CampaignID int    `json:"campaignId"`
		Subject    string `json:"subject"`
		From       string `json:"from"`
		Content    struct {
			HTML string `json:"html"`
		} `json:"content"`
		Recipients []string `json:"recipients"`
		Type       string   `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if body.CampaignID == 0 || body.Subject == "" || body.Content.HTML == "" || len(body.Recipients) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "Missing required fields"})
		return
	}

	results, batch, err := c.SendService.SendCampaign(r.Context(), service.SendRequest{
		CampaignID: body.CampaignID,
		Subject:    body.Subject,
		From:       body.From,
		HTML:       body.Content.HTML,
		Recipients: body.Recipients,
		Kind:       body.Type,
	})
	if err != nil {
		if appErrors.IsNotFound(err) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "Campaign not found"})
			return
		}
		c.Log.Error("send campaign failed", zap.Int("campaign_id", body.CampaignID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"message": "Internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":       "Emails sent and campaign stored",
		"campaignId":    body.CampaignID,
		"emailCampaign": batch,
		"results":       results,
	})
}

// TrackOpen serves the open beacon. The pixel is always returned, whatever
// happened underneath, so mail clients never render a broken image.
func (c *EmailController) TrackOpen(w http.ResponseWriter, r *http.Request) {
	messageID := r.URL.Query().Get("messageId")
	email := r.URL.Query().Get("email")

	if messageID == "" || email == "" {
		c.Log.Info("beacon hit with missing params",
			zap.String("message_id", messageID),
			zap.String("email", email),
		)
		servePixel(w)
		return
	}

	c.Tracking.TrackOpen(messageID)
	servePixel(w)
}

// BatchReport returns a single send batch with its recipients.
func (c *EmailController) BatchReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid batch id", http.StatusBadRequest)
		return
	}

	batch, err := c.BatchRepo.GetByID(id)
	if err != nil {
		if appErrors.IsNotFound(err) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "Campaign not found"})
			return
		}
		http.Error(w, "failed to fetch report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"emailCampaign": batch})
}

func servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(trackingPixel)
}
