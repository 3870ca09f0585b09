package llm

import (
	"context"
)

// Completer то, что нужно сервисам: история на вход, текст ответа на выход
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	CompleteWithRetry(ctx context.Context, messages []Message) (string, error)
}

// Verify interface implementation
var _ Completer = (*Client)(nil)
