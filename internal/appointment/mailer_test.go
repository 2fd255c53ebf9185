package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	apperr "github.com/yungbote/clinicscribe-backend/internal/pkg/errors"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
	"github.com/yungbote/clinicscribe-backend/internal/platform/sendgrid"
)

func newSendGrid(t *testing.T, status int, calls *int32, got *map[string]any) sendgrid.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if got != nil {
			_ = json.NewDecoder(r.Body).Decode(got)
		}
		w.Header().Set("X-Message-Id", "msg-1")
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	c, err := sendgrid.New(logger.Nop(), sendgrid.Config{APIKey: "SG.test", BaseURL: srv.URL, DefaultFromEmail: "clinic@example.com"})
	if err != nil {
		t.Fatalf("sendgrid.New: %v", err)
	}
	return c
}

func TestSendGridMailerSends(t *testing.T) {
	var calls int32
	var payload map[string]any
	m := NewSendGridMailer(logger.Nop(), newSendGrid(t, http.StatusAccepted, &calls, &payload), true)

	msg, err := m.Send(context.Background(), "pat@example.com", Compose("Follow-up Friday", "Rest"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg != "Email sent to pat@example.com" {
		t.Fatalf("unexpected message: %q", msg)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("unexpected calls: got=%d want=1", atomic.LoadInt32(&calls))
	}
	if payload["subject"] != Subject {
		t.Fatalf("unexpected subject: %v", payload["subject"])
	}
}

func TestSendGridMailerFailureIsNotRetried(t *testing.T) {
	var calls int32
	m := NewSendGridMailer(logger.Nop(), newSendGrid(t, http.StatusServiceUnavailable, &calls, nil), true)
	if _, err := m.Send(context.Background(), "pat@example.com", Compose("a", "b")); err == nil {
		t.Fatalf("expected error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("unexpected calls: got=%d want=1", atomic.LoadInt32(&calls))
	}
}

func TestSendGridMailerDisabled(t *testing.T) {
	var calls int32
	m := NewSendGridMailer(logger.Nop(), newSendGrid(t, http.StatusAccepted, &calls, nil), false)
	_, err := m.Send(context.Background(), "pat@example.com", Compose("a", "b"))
	if !errors.Is(err, apperr.ErrEmailDisabled) {
		t.Fatalf("unexpected error: got=%v want=%v", err, apperr.ErrEmailDisabled)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("disabled mailer made %d calls", atomic.LoadInt32(&calls))
	}
}

func TestSendGridMailerWithoutClient(t *testing.T) {
	_, err := NewSendGridMailer(logger.Nop(), nil, true).Send(context.Background(), "pat@example.com", Compose("a", "b"))
	if !errors.Is(err, apperr.ErrNotConfigured) {
		t.Fatalf("unexpected error: %v", err)
	}
}
