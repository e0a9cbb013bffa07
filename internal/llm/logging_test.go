package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/abhisek/skillroute/internal/store"
)

type recordingRepo struct {
	store.EventRepo
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func TestLogging_RecordsSuccess(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"pathTitle":"x"}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 34},
	})
	p := WithLogging(mock, "mock", repo, zap.NewNop())

	ctx := WithPurpose(context.Background(), "path-gen")
	_, err := p.Generate(ctx, Request{System: "sys", Messages: UserPrompt("hello")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	e := repo.events[0]
	if e.Purpose != "path-gen" || !e.Success || e.Provider != "mock" || e.Model != "mock" {
		t.Fatalf("unexpected event: %+v", e)
	}
	if e.InputTokens != 12 || e.OutputTokens != 34 {
		t.Fatalf("unexpected tokens: %+v", e)
	}
	if !strings.Contains(e.RequestBody, "[system]\nsys") || !strings.Contains(e.RequestBody, "[user]\nhello") {
		t.Fatalf("unexpected request body: %q", e.RequestBody)
	}
	if e.ResponseBody != `{"pathTitle":"x"}` {
		t.Fatalf("unexpected response body: %q", e.ResponseBody)
	}
}

func TestLogging_RecordsFailureAndSurvivesRepoError(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	p := WithLogging(mock, "mock", repo, nil)

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected provider error to pass through, got: %T", err)
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Fatalf("unexpected events: %+v", repo.events)
	}
	if repo.events[0].Purpose != "unknown" {
		t.Fatalf("expected default purpose, got %q", repo.events[0].Purpose)
	}
}

func TestLogging_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`"ok"`)})
	p := WithLogging(mock, "mock", nil, zap.NewNop())
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewProviderIfConfigured(t *testing.T) {
	p, err := NewProviderIfConfigured(context.Background(), Config{Provider: "gemini"}, nil, zap.NewNop())
	if err != nil || p != nil {
		t.Fatalf("expected (nil, nil) without credential, got (%v, %v)", p, err)
	}

	p, err = NewProviderIfConfigured(context.Background(), Config{Provider: "mock"}, nil, zap.NewNop())
	if err != nil || p == nil {
		t.Fatalf("expected mock provider, got (%v, %v)", p, err)
	}
}
