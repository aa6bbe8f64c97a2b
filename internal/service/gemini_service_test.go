package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/genai"
)

func breakerOpenService() *GeminiService {
	s := &GeminiService{
		MaxRetries:        1,
		BaseDelay:         time.Millisecond,
		MaxDelay:          time.Millisecond,
		RequestTimeout:    time.Second,
		circuitBreakerMax: 5,
	}
	s.consecutiveErrors.Store(5)
	return s
}

func TestCircuitBreakerShortCircuits(t *testing.T) {
	s := breakerOpenService()

	if _, err := s.GenerateContent(context.Background(), "gemini-2.5-flash", "hello"); err == nil || !strings.Contains(err.Error(), "circuit breaker open") {
		t.Fatalf("GenerateContent err = %v, want circuit breaker open", err)
	}
	if _, err := s.GenerateEmbedding(context.Background(), "hello"); err == nil || !strings.Contains(err.Error(), "circuit breaker open") {
		t.Fatalf("GenerateEmbedding err = %v, want circuit breaker open", err)
	}
}

func TestCircuitBreakerStateUnderConcurrency(t *testing.T) {
	s := breakerOpenService()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.GenerateContent(context.Background(), "gemini-2.5-flash", "hello")
			_, _ = s.GenerateEmbedding(context.Background(), "hello")
		}()
	}
	wg.Wait()
}

func TestGenerateContentValidatesInput(t *testing.T) {
	s := breakerOpenService()

	if _, err := s.GenerateContent(context.Background(), "", "prompt"); err == nil {
		t.Error("empty model name must fail")
	}
	if _, err := s.GenerateContent(context.Background(), "gemini-2.5-flash", "   "); err == nil {
		t.Error("blank prompt must fail")
	}
	if _, err := s.GenerateEmbedding(context.Background(), "   "); err == nil {
		t.Error("blank embedding text must fail")
	}
}

func TestCalculateBackoffGrowsAndCaps(t *testing.T) {
	s := &GeminiService{BaseDelay: time.Second, MaxDelay: 4 * time.Second}

	first := s.calculateBackoff(1)
	if first < 700*time.Millisecond || first > 1300*time.Millisecond {
		t.Errorf("attempt 1 backoff = %v, want ~1s with jitter", first)
	}
	capped := s.calculateBackoff(10)
	if capped > 5*time.Second {
		t.Errorf("attempt 10 backoff = %v, want capped near MaxDelay", capped)
	}
}

func TestIsRetryableError(t *testing.T) {
	s := &GeminiService{}

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &genai.APIError{Code: 429, Message: "quota"}, true},
		{"server error", &genai.APIError{Code: 503, Message: "unavailable"}, true},
		{"bad request", &genai.APIError{Code: 400, Message: "invalid"}, false},
		{"unauthorized", &genai.APIError{Code: 401, Message: "key"}, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"context canceled", errors.New("context canceled"), false},
		{"unknown", errors.New("something else"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.isRetryableError(tc.err); got != tc.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
