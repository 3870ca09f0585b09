// Package storagetest holds the behaviour every ContextStore backend must share.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"ignis-bot/internal/storage/interfaces"
	"ignis-bot/internal/storage/models"
)

// Factory returns an empty store bounded to maxHistory messages per user.
type Factory func(t *testing.T, maxHistory int) interfaces.ContextStore

// Run executes the shared ContextStore contract against the backend built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("EmptyConversation", func(t *testing.T) { testEmpty(t, newStore) })
	t.Run("KeepsLastN", func(t *testing.T) { testKeepsLastN(t, newStore) })
	t.Run("PairAtBound", func(t *testing.T) { testPairAtBound(t, newStore) })
	t.Run("Reset", func(t *testing.T) { testReset(t, newStore) })
	t.Run("UsersIsolated", func(t *testing.T) { testIsolation(t, newStore) })
	t.Run("ConcurrentAppends", func(t *testing.T) { testConcurrent(t, newStore) })
	t.Run("Ping", func(t *testing.T) { testPing(t, newStore) })
}

func numbered(i int) models.Message {
	if i%2 == 0 {
		return models.NewUserMessage(fmt.Sprintf("q%d", i))
	}
	return models.NewAssistantMessage(fmt.Sprintf("a%d", i))
}

func testEmpty(t *testing.T, newStore Factory) {
	store := newStore(t, 10)
	got, err := store.GetAll(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty conversation, got %d messages", len(got))
	}
}

func testKeepsLastN(t *testing.T, newStore Factory) {
	const maxHistory = 10
	for _, n := range []int{0, 1, 9, 10, 11, 25} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t, maxHistory)
			user := fmt.Sprintf("user-%d", n)

			for i := 0; i < n; i++ {
				if err := store.Append(ctx, user, numbered(i)); err != nil {
					t.Fatalf("Append %d: %v", i, err)
				}
				got, err := store.GetAll(ctx, user)
				if err != nil {
					t.Fatalf("GetAll: %v", err)
				}
				if len(got) > maxHistory {
					t.Fatalf("bound violated after append %d: %d messages", i, len(got))
				}
			}

			got, err := store.GetAll(ctx, user)
			if err != nil {
				t.Fatalf("GetAll: %v", err)
			}

			want := n
			if want > maxHistory {
				want = maxHistory
			}
			if len(got) != want {
				t.Fatalf("expected %d messages, got %d", want, len(got))
			}
			for i, msg := range got {
				expected := numbered(n - want + i)
				if msg != expected {
					t.Errorf("message %d: got %+v, want %+v", i, msg, expected)
				}
			}
		})
	}
}

func testPairAtBound(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := newStore(t, 4)

	for i := 0; i < 4; i++ {
		if err := store.Append(ctx, "u", numbered(i)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	if err := store.Append(ctx, "u", models.NewUserMessage("new question")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, _ := store.GetAll(ctx, "u")
	if len(got) != 4 || got[0] != numbered(1) {
		t.Fatalf("expected oldest dropped after user append, got %+v", got)
	}

	if err := store.Append(ctx, "u", models.NewAssistantMessage("new answer")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, _ = store.GetAll(ctx, "u")
	want := []models.Message{
		numbered(2),
		numbered(3),
		models.NewUserMessage("new question"),
		models.NewAssistantMessage("new answer"),
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func testReset(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := newStore(t, 10)

	for i := 0; i < 3; i++ {
		_ = store.Append(ctx, "u", numbered(i))
	}

	for round := 0; round < 2; round++ {
		if err := store.Reset(ctx, "u"); err != nil {
			t.Fatalf("Reset round %d: %v", round, err)
		}
		got, err := store.GetAll(ctx, "u")
		if err != nil {
			t.Fatalf("GetAll: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("round %d: expected empty after reset, got %d", round, len(got))
		}
	}

	if err := store.Reset(ctx, "never-seen"); err != nil {
		t.Fatalf("Reset of unknown user: %v", err)
	}

	if err := store.Append(ctx, "u", numbered(0)); err != nil {
		t.Fatalf("Append after reset: %v", err)
	}
	got, _ := store.GetAll(ctx, "u")
	if len(got) != 1 {
		t.Fatalf("expected fresh conversation after reset, got %d", len(got))
	}
}

func testIsolation(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := newStore(t, 3)

	_ = store.Append(ctx, "b", models.NewUserMessage("b-only"))
	for i := 0; i < 7; i++ {
		_ = store.Append(ctx, "a", numbered(i))
	}
	_ = store.Reset(ctx, "a")

	got, err := store.GetAll(ctx, "b")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(got) != 1 || got[0].Content != "b-only" {
		t.Fatalf("user b affected by user a: %+v", got)
	}
}

func testConcurrent(t *testing.T, newStore Factory) {
	ctx := context.Background()
	const maxHistory = 10
	store := newStore(t, maxHistory)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				if err := store.Append(ctx, "shared", models.NewUserMessage(fmt.Sprintf("g%d-%d", g, i))); err != nil {
					t.Errorf("Append: %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	got, err := store.GetAll(ctx, "shared")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(got) != maxHistory {
		t.Fatalf("expected %d messages after concurrent appends, got %d", maxHistory, len(got))
	}
}

func testPing(t *testing.T, newStore Factory) {
	store := newStore(t, 10)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
