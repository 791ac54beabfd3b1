package controller_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/blackleo/outreach-backend/internal/controller"
	appErrors "github.com/blackleo/outreach-backend/internal/errors"
	"github.com/blackleo/outreach-backend/internal/mail"
	"github.com/blackleo/outreach-backend/internal/model"
	"github.com/blackleo/outreach-backend/internal/queue"
	"github.com/blackleo/outreach-backend/internal/service"
)

var pixelBytes, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR4nGNgYAAAAAMAASsJTYQAAAAASUVORK5CYII=",
)

type stubCampaignRepo struct {
	campaigns map[int]*model.Campaign
}

func (s *stubCampaignRepo) Create(c *model.Campaign) error { return nil }
func (s *stubCampaignRepo) Delete(id int) error            { return nil }
func (s *stubCampaignRepo) ListCampaigns(offset, limit int, companyID int) ([]*model.Campaign, int, error) {
	return []*model.Campaign{}, 0, nil
}
func (s *stubCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	if c, ok := s.campaigns[id]; ok {
		return c, nil
	}
	return nil, appErrors.NewCampaignNotFound(id)
}

type stubSender struct{}

func (stubSender) Send(ctx context.Context, msg mail.Message) error { return nil }

func newEmailController(repo *memBatchRepo) *controller.EmailController {
	campaigns := &stubCampaignRepo{campaigns: map[int]*model.Campaign{1: {ID: 1, Name: "Outreach"}}}
	tracking := &service.TrackingService{BatchRepo: repo, Events: queue.NopPublisher{}, Log: zap.NewNop()}
	return &controller.EmailController{
		SendService: &service.SendService{
			CampaignRepo: campaigns,
			BatchRepo:    repo,
			Mailer:       stubSender{},
			Events:       queue.NopPublisher{},
			Log:          zap.NewNop(),
			BaseURL:      "http://localhost:8080",
			ReplyTo:      "replies@example.com",
			Sleep:        func(time.Duration) {},
		},
		Tracking:  tracking,
		BatchRepo: repo,
		Log:       zap.NewNop(),
	}
}

func TestTrackOpenServesPixel(t *testing.T) {
	repo := newMemBatchRepo()
	repo.seed("msg-20", 1)
	ec := newEmailController(repo)

	req := httptest.NewRequest(http.MethodGet, "/email/track?messageId=msg-20&email=investor%40example.com", nil)
	w := httptest.NewRecorder()
	ec.TrackOpen(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	if !bytes.Equal(w.Body.Bytes(), pixelBytes) {
		t.Error("response body is not the tracking pixel")
	}
	if !repo.recipients["msg-20"].opened {
		t.Error("recipient not marked opened")
	}
	if repo.counters["opened"] != 1 {
		t.Errorf("opened counter = %d, want 1", repo.counters["opened"])
	}
}

func TestTrackOpenCountsOnce(t *testing.T) {
	repo := newMemBatchRepo()
	repo.seed("msg-21", 1)
	ec := newEmailController(repo)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/email/track?messageId=msg-21&email=a%40b.com", nil)
		w := httptest.NewRecorder()
		ec.TrackOpen(w, req)

		if w.Code != http.StatusOK || !bytes.Equal(w.Body.Bytes(), pixelBytes) {
			t.Fatalf("hit %d did not serve the pixel", i)
		}
	}

	if repo.counters["opened"] != 1 {
		t.Errorf("opened counter = %d after repeat hits, want 1", repo.counters["opened"])
	}
}

func TestTrackOpenMissingParamsStillServesPixel(t *testing.T) {
	repo := newMemBatchRepo()
	ec := newEmailController(repo)

	req := httptest.NewRequest(http.MethodGet, "/email/track", nil)
	w := httptest.NewRecorder()
	ec.TrackOpen(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), pixelBytes) {
		t.Error("response body is not the tracking pixel")
	}
}

func TestTrackOpenUnknownMessageIDStillServesPixel(t *testing.T) {
	repo := newMemBatchRepo()
	ec := newEmailController(repo)

	req := httptest.NewRequest(http.MethodGet, "/email/track?messageId=ghost&email=a%40b.com", nil)
	w := httptest.NewRecorder()
	ec.TrackOpen(w, req)

	if w.Code != http.StatusOK || !bytes.Equal(w.Body.Bytes(), pixelBytes) {
		t.Error("beacon did not absorb the unknown id")
	}
	if repo.counters["opened"] != 0 {
		t.Errorf("opened counter moved for an unknown id")
	}
}

func TestSendEmailValidation(t *testing.T) {
	repo := newMemBatchRepo()
	ec := newEmailController(repo)

	cases := []struct {
		name string
		body string
	}{
		{"missing campaignId", `{"subject":"Hi","content":{"html":"<p>x</p>"},"recipients":["a@b.com"]}`},
		{"missing subject", `{"campaignId":1,"content":{"html":"<p>x</p>"},"recipients":["a@b.com"]}`},
		{"missing html", `{"campaignId":1,"subject":"Hi","recipients":["a@b.com"]}`},
		{"empty recipients", `{"campaignId":1,"subject":"Hi","content":{"html":"<p>x</p>"},"recipients":[]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/email/send", bytes.NewBufferString(tc.body))
			w := httptest.NewRecorder()
			ec.SendEmail(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestSendEmailUnknownCampaign(t *testing.T) {
	repo := newMemBatchRepo()
	ec := newEmailController(repo)

	body := `{"campaignId":99,"subject":"Hi","from":"f@acme.com","content":{"html":"<p>x</p>"},"recipients":["a@b.com"]}`
	req := httptest.NewRequest(http.MethodPost, "/email/send", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	ec.SendEmail(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSendEmailSuccess(t *testing.T) {
	repo := newMemBatchRepo()
	ec := newEmailController(repo)

	body := `{"campaignId":1,"subject":"Hi","from":"f@acme.com","content":{"html":"<p>x</p>"},"recipients":["a@b.com","c@d.com"]}`
	req := httptest.NewRequest(http.MethodPost, "/email/send", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	ec.SendEmail(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Message       string                    `json:"message"`
		CampaignID    int                       `json:"campaignId"`
		EmailCampaign *model.EmailBatch         `json:"emailCampaign"`
		Results       []service.RecipientResult `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.CampaignID != 1 {
		t.Errorf("campaignId = %d, want 1", resp.CampaignID)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	for _, res := range resp.Results {
		if res.Status != model.StatusSent {
			t.Errorf("result for %s has status %q", res.Recipient, res.Status)
		}
		if res.MessageID == "" {
			t.Errorf("result for %s has no messageId", res.Recipient)
		}
	}
	if resp.EmailCampaign == nil || resp.EmailCampaign.SentCount != 2 {
		t.Errorf("stored batch missing or wrong sent count: %+v", resp.EmailCampaign)
	}

	// The stored recipients are now addressable by their messageIds.
	for _, res := range resp.Results {
		if _, ok := repo.recipients[res.MessageID]; !ok {
			t.Errorf("messageId %s not registered in the store", res.MessageID)
		}
	}
}

func TestBatchReport(t *testing.T) {
	repo := newMemBatchRepo()
	repo.batches[5] = &model.EmailBatch{ID: 5, CampaignID: 1, Subject: "Hi", SentCount: 2}

	ec := newEmailController(repo)

	r := chi.NewRouter()
	r.Get("/email/report/{id}", ec.BatchReport)

	req := httptest.NewRequest(http.MethodGet, "/email/report/5", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		EmailCampaign *model.EmailBatch `json:"emailCampaign"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.EmailCampaign == nil || resp.EmailCampaign.ID != 5 {
		t.Errorf("wrong batch returned: %+v", resp.EmailCampaign)
	}
}

func TestBatchReportNotFound(t *testing.T) {
	repo := newMemBatchRepo()
	ec := newEmailController(repo)

	r := chi.NewRouter()
	r.Get("/email/report/{id}", ec.BatchReport)

	req := httptest.NewRequest(http.MethodGet, "/email/report/123", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
