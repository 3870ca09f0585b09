package main

import (
	"testing"

	"ignis-bot/internal/config"

	"go.uber.org/zap"
)

func TestMaskDatabaseURL(t *testing.T) {
	tests := map[string]string{
		"":                                       "",
		"postgres://ignis:hunter2@db:5432/ignis": "postgres://ignis:***@db:5432/ignis",
		"postgres://db:5432/ignis":               "postgres://db:5432/ignis",
		"host=db user=ignis":                     "host=db user=ignis",
		"postgres://ignis@db/ignis?sslmode=disable": "postgres://ignis@db/ignis?sslmode=disable",
	}
	for in, want := range tests {
		if got := maskDatabaseURL(in); got != want {
			t.Errorf("maskDatabaseURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSetupLogger(t *testing.T) {
	logger, err := setupLogger(config.LoggingConfig{Level: "warn", Format: "console"})
	if err != nil {
		t.Fatalf("setupLogger: %v", err)
	}
	if logger.Core().Enabled(zap.InfoLevel) || !logger.Core().Enabled(zap.WarnLevel) {
		t.Error("level not applied")
	}
}
