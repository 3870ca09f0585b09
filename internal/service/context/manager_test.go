package context

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"ignis-bot/internal/storage/memory"
	"ignis-bot/internal/storage/models"
	"ignis-bot/pkg/llm"

	"go.uber.org/zap"
)

func echo(prefix string) CompleteFunc {
	return func(_ context.Context, messages []llm.Message) (string, error) {
		return prefix + messages[len(messages)-1].Content, nil
	}
}

func TestManager_ExchangeStoresPair(t *testing.T) {
	m := NewManager(memory.New(10), zap.NewNop())
	ctx := context.Background()

	reply, err := m.Exchange(ctx, "u1", "what is 2+2?", echo("re: "))
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if reply != "re: what is 2+2?" {
		t.Errorf("unexpected reply %q", reply)
	}

	history, _ := m.History(ctx, "u1")
	want := []models.Message{models.NewUserMessage("what is 2+2?"), models.NewAssistantMessage("re: what is 2+2?")}
	if len(history) != len(want) {
		t.Fatalf("expected %d messages, got %+v", len(want), history)
	}
	for i := range want {
		if history[i] != want[i] {
			t.Errorf("message %d: got %+v, want %+v", i, history[i], want[i])
		}
	}
}

func TestManager_ExchangeSendsTrimmedHistory(t *testing.T) {
	m := NewManager(memory.New(4), zap.NewNop())
	ctx := context.Background()

	var seen [][]llm.Message
	complete := func(_ context.Context, messages []llm.Message) (string, error) {
		seen = append(seen, messages)
		return "a", nil
	}

	for i := 0; i < 3; i++ {
		if _, err := m.Exchange(ctx, "u1", fmt.Sprintf("q%d", i), complete); err != nil {
			t.Fatalf("Exchange: %v", err)
		}
	}

	last := seen[len(seen)-1]
	if len(last) != 4 {
		t.Fatalf("expected 4 messages sent, got %d", len(last))
	}
	if last[0].Content != "q1" || last[3].Content != "q2" || last[3].Role != "user" {
		t.Errorf("unexpected context sent: %+v", last)
	}
}

func TestManager_ExchangeFailureKeepsQuestion(t *testing.T) {
	m := NewManager(memory.New(10), zap.NewNop())
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := m.Exchange(ctx, "u1", "q", func(context.Context, []llm.Message) (string, error) { return "", boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	history, _ := m.History(ctx, "u1")
	if len(history) != 1 || history[0].Role != models.RoleUser {
		t.Errorf("expected only the question stored, got %+v", history)
	}
}

func TestManager_Reset(t *testing.T) {
	m := NewManager(memory.New(10), zap.NewNop())
	ctx := context.Background()

	_, _ = m.Exchange(ctx, "u1", "q", echo(""))
	_, _ = m.Exchange(ctx, "u2", "q", echo(""))

	for i := 0; i < 2; i++ {
		if err := m.Reset(ctx, "u1"); err != nil {
			t.Fatalf("Reset: %v", err)
		}
	}

	if h, _ := m.History(ctx, "u1"); len(h) != 0 {
		t.Errorf("expected empty history, got %+v", h)
	}
	if h, _ := m.History(ctx, "u2"); len(h) != 2 {
		t.Errorf("other user affected: %+v", h)
	}
}

func TestManager_ConcurrentExchangesKeepPairsAdjacent(t *testing.T) {
	m := NewManager(memory.New(100), zap.NewNop())
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			complete := func(_ context.Context, messages []llm.Message) (string, error) {
				time.Sleep(time.Millisecond)
				return "answer to " + messages[len(messages)-1].Content, nil
			}
			if _, err := m.Exchange(ctx, "u1", fmt.Sprintf("q%d", i), complete); err != nil {
				t.Errorf("Exchange: %v", err)
			}
		}(i)
	}
	wg.Wait()

	history, _ := m.History(ctx, "u1")
	if len(history) != 2*n {
		t.Fatalf("expected %d messages, got %d", 2*n, len(history))
	}
	for i := 0; i < len(history); i += 2 {
		q, a := history[i], history[i+1]
		if q.Role != models.RoleUser || a.Role != models.RoleAssistant {
			t.Fatalf("pair %d has roles %s/%s", i/2, q.Role, a.Role)
		}
		if !strings.HasSuffix(a.Content, q.Content) || a.Content != "answer to "+q.Content {
			t.Fatalf("pair %d interleaved: %q / %q", i/2, q.Content, a.Content)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.locks) != 0 {
		t.Errorf("expected user locks to be released, %d left", len(m.locks))
	}
}

func TestManager_DifferentUsersDoNotBlock(t *testing.T) {
	m := NewManager(memory.New(10), zap.NewNop())
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = m.Exchange(ctx, "slow", "q", func(context.Context, []llm.Message) (string, error) {
			close(started)
			<-release
			return "a", nil
		})
	}()
	<-started
	defer close(release)

	done := make(chan error, 1)
	go func() {
		_, err := m.Exchange(ctx, "fast", "q", echo(""))
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Exchange: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("exchange for another user was blocked")
	}
}
