package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ignis-bot/internal/storage/models"
	"ignis-bot/pkg/llm/providers"

	"go.uber.org/zap"
)

type fakeProvider struct {
	mu        sync.Mutex
	calls     int
	errs      []error
	responses []*ChatResponse
	lastSent  []Message
}

func (f *fakeProvider) GetName() string              { return "fake" }
func (f *fakeProvider) GetSupportedModels() []string { return []string{"fake-1"} }
func (f *fakeProvider) ValidateConfig() error        { return nil }

func (f *fakeProvider) ChatCompletion(_ context.Context, messages []Message) (*ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	f.lastSent = messages
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return textResponse("ok"), nil
}

func textResponse(text string) *ChatResponse {
	return &ChatResponse{
		Model:   "fake-1",
		Choices: []Choice{{Message: Message{Role: "assistant", Content: text}, FinishReason: "stop"}},
	}
}

func fastRetry(n int) RetryConfig {
	return NewRetryConfig(n, time.Millisecond, 2*time.Millisecond)
}

func TestClient_CompleteTrims(t *testing.T) {
	p := &fakeProvider{responses: []*ChatResponse{textResponse("  \n A cell is...\n ")}}
	c := NewClientWithProvider(p, fastRetry(0), zap.NewNop())

	got, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "Define: cell"}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "A cell is..." {
		t.Errorf("unexpected text %q", got)
	}
}

func TestClient_CompleteNoChoices(t *testing.T) {
	p := &fakeProvider{responses: []*ChatResponse{{Model: "fake-1"}}}
	c := NewClientWithProvider(p, fastRetry(0), zap.NewNop())

	if _, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "x"}}); !errors.Is(err, ErrNoChoices) {
		t.Fatalf("expected ErrNoChoices, got %v", err)
	}
}

func TestClient_CompleteEmptyMessages(t *testing.T) {
	p := &fakeProvider{}
	c := NewClientWithProvider(p, fastRetry(3), zap.NewNop())

	if _, err := c.Complete(context.Background(), nil); !errors.Is(err, ErrEmptyMessages) {
		t.Fatalf("expected ErrEmptyMessages, got %v", err)
	}
	if p.calls != 0 {
		t.Errorf("provider must not be called, got %d calls", p.calls)
	}
}

func TestClient_RetriesRateLimit(t *testing.T) {
	limited := fmt.Errorf("openai: %w", providers.ErrRateLimited)
	p := &fakeProvider{errs: []error{limited, limited}}
	c := NewClientWithProvider(p, fastRetry(2), zap.NewNop())

	got, err := c.CompleteWithRetry(context.Background(), []Message{{Role: "user", Content: "x"}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "ok" || p.calls != 3 {
		t.Errorf("expected success on third call, got %q after %d calls", got, p.calls)
	}
}

func TestClient_RetryExhausted(t *testing.T) {
	limited := fmt.Errorf("gemini: %w", ErrRateLimited)
	p := &fakeProvider{errs: []error{limited, limited, limited}}
	c := NewClientWithProvider(p, fastRetry(1), zap.NewNop())

	_, err := c.CompleteWithRetry(context.Background(), []Message{{Role: "user", Content: "x"}})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected wrapped ErrRateLimited, got %v", err)
	}
	if p.calls != 2 {
		t.Errorf("expected 2 calls, got %d", p.calls)
	}
}

func TestClient_NoRetryOnOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	p := &fakeProvider{errs: []error{boom}}
	c := NewClientWithProvider(p, fastRetry(3), zap.NewNop())

	if _, err := c.CompleteWithRetry(context.Background(), []Message{{Role: "user", Content: "x"}}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if p.calls != 1 {
		t.Errorf("expected a single call, got %d", p.calls)
	}
}

func TestClient_RetryHonoursContext(t *testing.T) {
	p := &fakeProvider{errs: []error{ErrRateLimited, ErrRateLimited}}
	c := NewClientWithProvider(p, NewRetryConfig(1, time.Hour, time.Hour), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.CompleteWithRetry(ctx, []Message{{Role: "user", Content: "x"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestClient_CompleteDoesNotRetry(t *testing.T) {
	p := &fakeProvider{errs: []error{ErrRateLimited}}
	c := NewClientWithProvider(p, fastRetry(3), zap.NewNop())

	if _, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "x"}}); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if p.calls != 1 {
		t.Errorf("expected a single call, got %d", p.calls)
	}
}

func TestBackoffDelay(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 3 * time.Second, BackoffMultiplier: 2}
	for attempt, want := range map[int]time.Duration{1: time.Second, 2: 2 * time.Second, 3: 3 * time.Second} {
		if got := backoffDelay(cfg, attempt); got != want {
			t.Errorf("attempt %d: got %v, want %v", attempt, got, want)
		}
	}
}

func TestConvertAndSystemPrompt(t *testing.T) {
	history := []models.Message{models.NewUserMessage("q"), models.NewAssistantMessage("a")}
	msgs := WithSystemPrompt("be short", ConvertToLLMMessages(history)...)

	if len(msgs) != 3 || msgs[0].Role != "system" || msgs[2].Role != "assistant" || msgs[2].Content != "a" {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	if got := WithSystemPrompt("", Message{Role: "user", Content: "q"}); len(got) != 1 {
		t.Errorf("empty prompt must not add a message, got %+v", got)
	}
}

func TestRegistry_AvailableProviders(t *testing.T) {
	infos := NewRegistry(zap.NewNop()).GetAvailableProviders()
	if len(infos) != 3 {
		t.Fatalf("expected 3 providers, got %d", len(infos))
	}
	for _, info := range infos {
		if len(info.SupportedModels) == 0 {
			t.Errorf("%s has no models listed", info.ID)
		}
	}
}
