package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type statusErr int

func (e statusErr) Error() string       { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatusCode() int { return int(e) }

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"429", statusErr(http.StatusTooManyRequests), true},
		{"503 wrapped", fmt.Errorf("call: %w", statusErr(503)), true},
		{"400", statusErr(400), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryableError(tc.err); got != tc.want {
				t.Fatalf("IsRetryableError: got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestDoSingleAttemptWhenNoRetries(t *testing.T) {
	calls := 0
	_, _, err := Do(context.Background(), 0, func(ctx context.Context) (*http.Response, []byte, error) {
		calls++
		return nil, nil, statusErr(503)
	}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("unexpected attempts: got=%d want=1", calls)
	}
}

func TestDoRetriesTransientFailure(t *testing.T) {
	calls := 0
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "0")
	_, raw, err := Do(context.Background(), 2, func(ctx context.Context) (*http.Response, []byte, error) {
		calls++
		if calls == 1 {
			return resp, nil, statusErr(429)
		}
		return &http.Response{StatusCode: 200}, []byte("ok"), nil
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != "ok" || calls != 2 {
		t.Fatalf("unexpected result: raw=%q calls=%d", raw, calls)
	}
}

func TestRetryAfterDurationCapped(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "120")
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 10*time.Second {
		t.Fatalf("RetryAfterDuration: got=%v want=10s", got)
	}
	if got := RetryAfterDuration(nil, 2*time.Second, 0); got != 2*time.Second {
		t.Fatalf("RetryAfterDuration fallback: got=%v want=2s", got)
	}
}
