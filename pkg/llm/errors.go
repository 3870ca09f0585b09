package llm

import (
	"errors"

	"ignis-bot/pkg/llm/providers"
)

var (
	ErrEmptyMessages = errors.New("messages cannot be empty")
	ErrNoChoices     = errors.New("LLM returned no choices")
	ErrRateLimited   = providers.ErrRateLimited
)
