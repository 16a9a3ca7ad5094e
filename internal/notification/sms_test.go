package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSMSProvider_SendText(t *testing.T) {
	var got smsPayload
	var contentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := NewSMSProvider(server.URL, time.Second)
	ok, err := p.SendText(context.Background(), "12025551234", "hello")
	if err != nil {
		t.Fatalf("SendText returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected delivery on 200")
	}

	if contentType != "application/json" {
		t.Errorf("unexpected content type %q", contentType)
	}
	if len(got.Phone) != 1 || got.Phone[0] != "12025551234" {
		t.Errorf("unexpected phone list %v", got.Phone)
	}
	if got.Method != "SMS" || got.Text != "hello" {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestSMSProvider_NonOKIsNotDelivered(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusAccepted, http.StatusBadRequest, http.StatusInternalServerError} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		ok, err := NewSMSProvider(server.URL, time.Second).SendText(context.Background(), "1", "x")
		server.Close()

		if err != nil {
			t.Fatalf("status %d: unexpected error %v", status, err)
		}
		if ok {
			t.Fatalf("status %d: expected not delivered", status)
		}
	}
}

func TestSMSProvider_Errors(t *testing.T) {
	if _, err := NewSMSProvider("", time.Second).SendText(context.Background(), "1", "x"); err != ErrNoGatewayURL {
		t.Fatalf("expected ErrNoGatewayURL, got %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	if _, err := NewSMSProvider(url, time.Second).SendText(context.Background(), "1", "x"); err == nil {
		t.Fatal("expected transport error for closed server")
	}
}
