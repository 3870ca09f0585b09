package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ignis-bot/internal/api/handlers"
	"ignis-bot/internal/config"
	"ignis-bot/internal/service/chat"
	contextmgr "ignis-bot/internal/service/context"
	"ignis-bot/internal/storage/memory"
	"ignis-bot/pkg/llm"

	"go.uber.org/zap"
)

type staticLLM struct{ answer string }

func (s staticLLM) Complete(context.Context, []llm.Message) (string, error) { return s.answer, nil }
func (s staticLLM) CompleteWithRetry(context.Context, []llm.Message) (string, error) {
	return s.answer, nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func newTestServer(t *testing.T, pinger handlers.Pinger) http.Handler {
	t.Helper()
	logger := zap.NewNop()

	cfg := &config.Config{
		LLM:     config.LLMConfig{Provider: "openai", Model: "gpt-4o-mini", APIKey: "secret-key"},
		Store:   config.StoreConfig{Driver: "memory"},
		Chat:    config.ChatConfig{MaxHistory: 10, MaxResponseLength: 2000, TruncationNotice: "ellipsis"},
		Logging: config.LoggingConfig{Level: "info"},
	}

	store := memory.New(cfg.Chat.MaxHistory)
	svc := chat.NewService(contextmgr.NewManager(store, logger), staticLLM{answer: "42"}, &cfg.Chat, logger)
	if pinger == nil {
		pinger = svc
	}

	return SetupRoutes(cfg, logger,
		handlers.NewChatHandler(svc, logger),
		handlers.NewHealthHandler(pinger, logger),
		handlers.NewModelsHandler(llm.NewRegistry(logger), logger),
	)
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var decoded map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

func TestHealth(t *testing.T) {
	w, body := do(t, newTestServer(t, nil), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || body["status"] != "healthy" {
		t.Errorf("unexpected health response %d %v", w.Code, body)
	}

	w, body = do(t, newTestServer(t, failingPinger{}), http.MethodGet, "/health", "")
	if w.Code != http.StatusServiceUnavailable || body["status"] != "unhealthy" {
		t.Errorf("expected 503, got %d %v", w.Code, body)
	}
}

func TestInvokeAndContext(t *testing.T) {
	h := newTestServer(t, nil)

	w, body := do(t, h, http.MethodPost, "/api/v1/commands/ask", `{"user_id": "7", "args": {"question": "meaning of life?"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("invoke: %d %s", w.Code, w.Body.String())
	}
	if body["content"] != "<@7> asked Ignis: meaning of life?\n\n42" || body["deferred"] != true {
		t.Errorf("unexpected invoke body %v", body)
	}

	w, body = do(t, h, http.MethodGet, "/api/v1/context/7", "")
	if w.Code != http.StatusOK || body["total"] != float64(2) {
		t.Fatalf("unexpected context %d %v", w.Code, body)
	}

	w, _ = do(t, h, http.MethodDelete, "/api/v1/context/7", "")
	if w.Code != http.StatusOK {
		t.Fatalf("reset: %d", w.Code)
	}

	_, body = do(t, h, http.MethodGet, "/api/v1/context/7", "")
	if body["total"] != float64(0) {
		t.Errorf("context not reset: %v", body)
	}

	w, body = do(t, h, http.MethodGet, "/api/v1/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"command":"ask"`) {
		t.Errorf("unexpected metrics %d %v", w.Code, body)
	}
}

func TestInvokeErrors(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		path   string
		body   string
		status int
		code   string
	}{
		{"/api/v1/commands/dance", `{"user_id": "7"}`, http.StatusNotFound, "UNKNOWN_COMMAND"},
		{"/api/v1/commands/quiz", `{"user_id": "7", "args": {"topic": "cells", "num_questions": "0"}}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"/api/v1/commands/define", `{"user_id": "7", "args": {"term": " "}}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"/api/v1/commands/help", `{}`, http.StatusBadRequest, "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		w, body := do(t, h, http.MethodPost, tt.path, tt.body)
		if w.Code != tt.status || body["code"] != tt.code {
			t.Errorf("%s: got %d %v, want %d %s", tt.path, w.Code, body, tt.status, tt.code)
		}
	}
}

func TestCommandsAndInfo(t *testing.T) {
	h := newTestServer(t, nil)

	w, body := do(t, h, http.MethodGet, "/api/v1/commands", "")
	if w.Code != http.StatusOK || body["help"] != chat.HelpText {
		t.Errorf("unexpected commands response %d", w.Code)
	}

	w, _ = do(t, h, http.MethodGet, "/api/v1/config/info", "")
	if w.Code != http.StatusOK || strings.Contains(w.Body.String(), "secret-key") {
		t.Errorf("config info failed or leaked the API key: %s", w.Body.String())
	}

	w, body = do(t, h, http.MethodGet, "/api/v1/models", "")
	if w.Code != http.StatusOK || body["current_provider"] != "openai" || body["current_model"] != "gpt-4o-mini" {
		t.Errorf("unexpected models response %d %v", w.Code, body)
	}
}
