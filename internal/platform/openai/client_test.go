package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yungbote/clinicscribe-backend/internal/platform/httpx"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, url, mode string) Client {
	t.Helper()
	c, err := New(logger.Nop(), Config{APIKey: "sk-test", BaseURL: url, Model: "test-model", Mode: mode})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestGenerateTextResponsesAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var req responsesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(req.Input) != 2 || req.Input[0].Role != "system" || req.Input[1].Content != "hello" {
			t.Errorf("unexpected input: %+v", req.Input)
		}
		_, _ = w.Write([]byte(`{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"hi "},{"type":"output_text","text":"there"}]}]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv.URL, ModeResponses).GenerateText(context.Background(), "be brief", "hello")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "hi there" {
		t.Fatalf("unexpected text: got=%q want=%q", got, "hi there")
	}
}

func TestGenerateTextChatMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"YES"}}]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv.URL, ModeChat).GenerateText(context.Background(), "", "related?")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "YES" {
		t.Fatalf("unexpected text: got=%q want=YES", got)
	}
}

func TestGenerateTextHTTPErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, ModeResponses).GenerateText(context.Background(), "", "x")
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpx.StatusCode(err) != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got=%d", httpx.StatusCode(err))
	}
}

func TestGenerateTextEmptyOutputIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[]}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(t, srv.URL, ModeResponses).GenerateText(context.Background(), "", "x"); err == nil {
		t.Fatalf("expected error for empty output")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(logger.Nop(), Config{Model: "m"}); err == nil {
		t.Fatalf("expected missing key error")
	}
}
