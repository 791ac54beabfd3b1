package mail_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/blackleo/outreach-backend/internal/mail"
)

func TestAPIClientSend(t *testing.T) {
	var gotPath string
	var gotMsg mail.Message

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotMsg); err != nil {
			t.Errorf("invalid request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := mail.NewAPIClient(srv.URL)
	err := client.Send(context.Background(), mail.Message{
		From:    "founder@acme.com",
		To:      "investor@example.com",
		Subject: "Hello",
		HTML:    "<p>Hi</p>",
		ReplyTo: "replies@acme.com",
		Tags:    map[string]string{"campaignId": "1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/v2/email/outbound" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotMsg.To != "investor@example.com" || gotMsg.Subject != "Hello" {
		t.Errorf("wrong payload: %+v", gotMsg)
	}
	if gotMsg.Tags["campaignId"] != "1" {
		t.Errorf("tags not forwarded: %+v", gotMsg.Tags)
	}
}

func TestAPIClientSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("address suppressed"))
	}))
	defer srv.Close()

	client := mail.NewAPIClient(srv.URL)
	err := client.Send(context.Background(), mail.Message{To: "bounced@example.com"})
	if err == nil {
		t.Fatal("expected error for rejected send")
	}
	if !strings.Contains(err.Error(), "address suppressed") {
		t.Errorf("provider response missing from error: %v", err)
	}
}

func TestAPIClientContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := mail.NewAPIClient(srv.URL)
	if err := client.Send(ctx, mail.Message{To: "a@b.com"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
