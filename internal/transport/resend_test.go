package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewResend_RequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewResend(ResendConfig{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewResend() error = %v, want ErrInvalidConfig", err)
	}
}

func TestResend_Send(t *testing.T) {
	t.Parallel()

	var got map[string]any
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`)
	}))
	t.Cleanup(srv.Close)

	r, err := NewResend(ResendConfig{APIKey: "re_test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewResend() error = %v", err)
	}
	if err := r.Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if path != "/emails" {
		t.Errorf("path = %q, want /emails", path)
	}
	if auth != "Bearer re_test" {
		t.Errorf("Authorization = %q", auth)
	}
	if got["from"] != "IT Department <it@college.edu>" {
		t.Errorf("from = %v", got["from"])
	}
	if got["subject"] != "Certificate of Participation" {
		t.Errorf("subject = %v", got["subject"])
	}
	if atts, ok := got["attachments"].([]any); !ok || len(atts) != 1 {
		t.Errorf("attachments = %v, want one", got["attachments"])
	}
}

func TestResend_Send_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"statusCode":422,"name":"validation_error","message":"Invalid from field"}`)
	}))
	t.Cleanup(srv.Close)

	r, err := NewResend(ResendConfig{APIKey: "re_test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewResend() error = %v", err)
	}
	if err := r.Send(context.Background(), testMessage()); !errors.Is(err, ErrDelivery) {
		t.Errorf("Send() error = %v, want ErrDelivery", err)
	}
}

func TestResend_Send_RequiresFrom(t *testing.T) {
	t.Parallel()

	r, err := NewResend(ResendConfig{APIKey: "re_test"})
	if err != nil {
		t.Fatalf("NewResend() error = %v", err)
	}
	msg := testMessage()
	msg.From = ""
	if err := r.Send(context.Background(), msg); !errors.Is(err, ErrInvalidMsg) {
		t.Errorf("Send() error = %v, want ErrInvalidMsg", err)
	}
}

func TestFormatAddress(t *testing.T) {
	t.Parallel()

	if got := formatAddress("", "a@b.c"); got != "a@b.c" {
		t.Errorf("formatAddress(\"\", a@b.c) = %q", got)
	}
	if got := formatAddress("IT Dept", "a@b.c"); got != "IT Dept <a@b.c>" {
		t.Errorf("formatAddress = %q", got)
	}
	if got := formatAddress("Département", "a@b.c"); got == "Département <a@b.c>" {
		t.Errorf("non-ASCII name should be encoded, got %q", got)
	}
}
