package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"technews/internal/retry"
)

func TestSendPostsPayload(t *testing.T) {
	t.Parallel()

	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New("token", "42", retry.Config{}, nil)
	n.apiURL = srv.URL

	if err := n.Send(context.Background(), "<b>run done</b>"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got["chat_id"] != "42" || got["text"] != "<b>run done</b>" {
		t.Errorf("payload = %v", got)
	}
	if got["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %v", got["parse_mode"])
	}
}

func TestSendRetriesOnServerError(t *testing.T) {
	t.Parallel()

	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New("token", "42", retry.Config{MaxAttempts: 3, Delay: time.Millisecond}, nil)
	n.apiURL = srv.URL

	if err := n.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send after retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestNewAppliesRetryConfig(t *testing.T) {
	t.Parallel()

	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := New("token", "42", retry.Config{MaxAttempts: 5, Delay: time.Millisecond}, nil)
	n.apiURL = srv.URL

	if err := n.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected error when every attempt fails")
	}
	if attempts != 5 {
		t.Errorf("attempts = %d, want configured 5", attempts)
	}

	// Zero-value config keeps the 3-attempt default.
	d := New("token", "42", retry.Config{}, nil)
	if d.retry.MaxAttempts != 3 || d.retry.Delay != 2*time.Second {
		t.Errorf("defaults = %+v", d.retry)
	}
}

func TestSendDisabledIsNoop(t *testing.T) {
	t.Parallel()

	n := New("", "", retry.Config{}, nil)
	if n.Enabled() {
		t.Error("notifier without token must be disabled")
	}
	if err := n.Send(context.Background(), "ignored"); err != nil {
		t.Errorf("disabled Send should be nil, got %v", err)
	}
}
