package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/blackleo/outreach-backend/internal/errors"
	"github.com/blackleo/outreach-backend/internal/mail"
	"github.com/blackleo/outreach-backend/internal/model"
	"github.com/blackleo/outreach-backend/internal/queue"
	"github.com/blackleo/outreach-backend/internal/repository"
	"github.com/blackleo/outreach-backend/internal/service"
)

// --- Mock repositories ---

type mockCampaignRepo struct {
	campaigns map[int]*model.Campaign
}

func (m *mockCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	if c, ok := m.campaigns[id]; ok {
		return c, nil
	}
	return nil, appErrors.NewCampaignNotFound(id)
}

func (m *mockCampaignRepo) Create(c *model.Campaign) error { return nil }
func (m *mockCampaignRepo) Delete(id int) error            { return nil }
func (m *mockCampaignRepo) ListCampaigns(offset, limit int, companyID int) ([]*model.Campaign, int, error) {
	return []*model.Campaign{}, 0, nil
}

type mockBatchRepo struct {
	mu            sync.Mutex
	created       *model.EmailBatch
	sentIncrement int
}

func (m *mockBatchRepo) CreateBatch(batch *model.EmailBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch.ID = 1
	batch.SentCount = len(batch.Recipients)
	m.created = batch
	m.sentIncrement += batch.SentCount
	return nil
}

func (m *mockBatchRepo) GetByID(id int) (*model.EmailBatch, error) { return nil, nil }
func (m *mockBatchRepo) ListByCampaign(campaignID int) ([]*model.EmailBatch, error) {
	return nil, nil
}
func (m *mockBatchRepo) RecordDeliveryEvent(messageID, eventType string) (*repository.EventTarget, error) {
	return nil, nil
}
func (m *mockBatchRepo) RecordOpen(messageID string) (*repository.EventTarget, bool, error) {
	return nil, false, nil
}
func (m *mockBatchRepo) RecordReply(reply *model.EmailReply) error { return nil }
func (m *mockBatchRepo) CountReplies(campaignID int) (int, error)  { return 0, nil }
func (m *mockBatchRepo) ListReplies(campaignID int) ([]*model.EmailReply, error) {
	return nil, nil
}

// waveSender records which wave each send landed in. The wave counter is
// advanced by the service's Sleep hook, which runs between waves.
type waveSender struct {
	mu      sync.Mutex
	wave    int
	perWave map[int]int
	total   int
	failFor map[string]bool
}

func (s *waveSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	s.perWave[s.wave]++
	s.total++
	s.mu.Unlock()

	if s.failFor[msg.To] {
		return errors.New("provider rejected message")
	}
	return nil
}

func (s *waveSender) advanceWave() {
	s.mu.Lock()
	s.wave++
	s.mu.Unlock()
}

func newSendService(campaigns *mockCampaignRepo, batches *mockBatchRepo, sender *waveSender) *service.SendService {
	return &service.SendService{
		CampaignRepo: campaigns,
		BatchRepo:    batches,
		Mailer:       sender,
		Events:       queue.NopPublisher{},
		Log:          zap.NewNop(),
		BaseURL:      "http://localhost:8080",
		ReplyTo:      "replies@example.com",
		BatchSize:    10,
		Sleep:        func(time.Duration) { sender.advanceWave() },
	}
}

func recipientList(n int) []string {
	recipients := make([]string, n)
	for i := range recipients {
		recipients[i] = "investor" + string(rune('a'+i%26)) + "@example.com"
	}
	return recipients
}

func TestSendCampaignWaves(t *testing.T) {
	campaigns := &mockCampaignRepo{campaigns: map[int]*model.Campaign{1: {ID: 1, Name: "Outreach"}}}
	batches := &mockBatchRepo{}
	sender := &waveSender{perWave: map[int]int{}, failFor: map[string]bool{}}

	svc := newSendService(campaigns, batches, sender)

	results, _, err := svc.SendCampaign(context.Background(), service.SendRequest{
		CampaignID: 1,
		Subject:    "Hello",
		From:       "founder@acme.com",
		HTML:       "<p>Hi</p>",
		Recipients: recipientList(25),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 25 {
		t.Fatalf("expected 25 results, got %d", len(results))
	}

	// 25 recipients at batch size 10 means exactly 3 waves: 10, 10, 5.
	if sender.wave != 3 {
		t.Errorf("expected 3 waves, got %d", sender.wave)
	}
	expected := map[int]int{0: 10, 1: 10, 2: 5}
	for wave, count := range expected {
		if sender.perWave[wave] != count {
			t.Errorf("wave %d: expected %d sends, got %d", wave, count, sender.perWave[wave])
		}
	}
	if sender.total != 25 {
		t.Errorf("expected 25 sends total, got %d", sender.total)
	}
}

func TestSendCampaignPartialFailure(t *testing.T) {
	campaigns := &mockCampaignRepo{campaigns: map[int]*model.Campaign{1: {ID: 1}}}
	batches := &mockBatchRepo{}
	sender := &waveSender{
		perWave: map[int]int{},
		failFor: map[string]bool{"bad@example.com": true},
	}

	svc := newSendService(campaigns, batches, sender)

	results, batch, err := svc.SendCampaign(context.Background(), service.SendRequest{
		CampaignID: 1,
		Subject:    "Hello",
		From:       "founder@acme.com",
		HTML:       "<p>Hi</p>",
		Recipients: []string{"one@example.com", "bad@example.com", "three@example.com"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	var failed int
	for _, res := range results {
		if res.Status == model.StatusFailed {
			failed++
			if res.Recipient != "bad@example.com" {
				t.Errorf("wrong recipient failed: %s", res.Recipient)
			}
			if res.Error == "" {
				t.Error("failed result is missing its error string")
			}
		} else if res.MessageID == "" {
			t.Errorf("sent result for %s has no messageId", res.Recipient)
		}
	}
	if failed != 1 {
		t.Errorf("expected exactly 1 failure, got %d", failed)
	}

	// Every attempt is stored, failures included, and the campaign sent
	// total moves by the attempt count.
	if batches.sentIncrement != 3 {
		t.Errorf("expected sent total increment of 3, got %d", batches.sentIncrement)
	}
	if len(batch.Recipients) != 3 {
		t.Fatalf("expected 3 stored recipients, got %d", len(batch.Recipients))
	}
	for _, rec := range batch.Recipients {
		if rec.MessageID == "" {
			t.Errorf("recipient %s stored without a messageId", rec.Email)
		}
	}
}

func TestSendCampaignUnknownCampaign(t *testing.T) {
	campaigns := &mockCampaignRepo{campaigns: map[int]*model.Campaign{}}
	batches := &mockBatchRepo{}
	sender := &waveSender{perWave: map[int]int{}, failFor: map[string]bool{}}

	svc := newSendService(campaigns, batches, sender)

	_, _, err := svc.SendCampaign(context.Background(), service.SendRequest{
		CampaignID: 42,
		Subject:    "Hello",
		From:       "founder@acme.com",
		HTML:       "<p>Hi</p>",
		Recipients: []string{"one@example.com"},
	})
	if err == nil {
		t.Fatal("expected error for unknown campaign")
	}
	if !appErrors.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
	if sender.total != 0 {
		t.Errorf("expected no sends, got %d", sender.total)
	}
}

func TestSendCampaignBeaconEmbedded(t *testing.T) {
	campaigns := &mockCampaignRepo{campaigns: map[int]*model.Campaign{1: {ID: 1}}}
	batches := &mockBatchRepo{}

	var captured mail.Message
	sender := &captureSender{captured: &captured}

	svc := &service.SendService{
		CampaignRepo: campaigns,
		BatchRepo:    batches,
		Mailer:       sender,
		Events:       queue.NopPublisher{},
		Log:          zap.NewNop(),
		BaseURL:      "https://outreach.example.com",
		ReplyTo:      "replies@example.com",
		Sleep:        func(time.Duration) {},
	}

	results, _, err := svc.SendCampaign(context.Background(), service.SendRequest{
		CampaignID: 1,
		Subject:    "Hello",
		From:       "founder@acme.com",
		HTML:       "<p>Hi</p>",
		Recipients: []string{"one@example.com"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(captured.HTML, "https://outreach.example.com/email/track?messageId="+results[0].MessageID) {
		t.Errorf("beacon URL missing from body: %q", captured.HTML)
	}
	if !strings.HasPrefix(captured.HTML, "<p>Hi</p>") {
		t.Errorf("original HTML not preserved: %q", captured.HTML)
	}
	if captured.Tags["campaignId"] != "1" {
		t.Errorf("expected campaignId tag, got %v", captured.Tags)
	}
	if captured.ReplyTo != "replies@example.com" {
		t.Errorf("expected reply-to header, got %q", captured.ReplyTo)
	}
}

type captureSender struct {
	mu       sync.Mutex
	captured *mail.Message
}

func (s *captureSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.captured = msg
	return nil
}
