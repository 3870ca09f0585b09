package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ignis-bot/internal/config"
	contextmgr "ignis-bot/internal/service/context"
	"ignis-bot/internal/storage/models"
	"ignis-bot/pkg/llm"

	"go.uber.org/zap"
)

// FriendlyError ответ пользователю, когда модель или хранилище недоступны
const FriendlyError = "Sorry, Ignis couldn't answer that right now. Please try again in a moment."

type Service struct {
	contextManager contextmgr.ContextManager
	llmClient      llm.Completer
	config         *config.ChatConfig
	metrics        *SimpleMetrics
	logger         *zap.Logger
}

func NewService(
	contextManager contextmgr.ContextManager,
	llmClient llm.Completer,
	config *config.ChatConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		contextManager: contextManager,
		llmClient:      llmClient,
		config:         config,
		metrics:        NewSimpleMetrics(),
		logger:         logger.With(zap.String("component", "chat_service")),
	}
}

// Reply готовый текст для платформы
type Reply struct {
	Content  string `json:"content"`
	Deferred bool   `json:"deferred"`
}

// Handle выполняет команду. Ошибка означает, что пользователю нужно показать ErrorReply(err).
func (s *Service) Handle(ctx context.Context, inv models.CommandInvocation) (*Reply, error) {
	startTime := time.Now()

	cmd, ok := LookupCommand(inv.Command)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, inv.Command)
	}

	logger := s.logger.With(
		zap.String("invocation_id", inv.ID),
		zap.String("command", cmd.Name),
		zap.String("user_id", inv.UserID),
	)

	reply, err := s.dispatch(ctx, cmd, inv)
	s.recordMetrics(cmd.Name, time.Since(startTime), err)

	if err != nil {
		if isUserError(err) {
			logger.Info("Command rejected", zap.Error(err))
		} else {
			logger.Error("Command failed", zap.Error(err), zap.Duration("duration", time.Since(startTime)))
		}
		return nil, err
	}

	logger.Info("Command handled",
		zap.Int("reply_length", len([]rune(reply))),
		zap.Duration("duration", time.Since(startTime)),
	)

	return &Reply{Content: reply, Deferred: cmd.Deferred}, nil
}

func (s *Service) dispatch(ctx context.Context, cmd Command, inv models.CommandInvocation) (string, error) {
	if err := ValidateInvocation(cmd, inv); err != nil {
		return "", err
	}

	switch cmd.Name {
	case CommandHelp:
		return HelpText, nil

	case CommandReset:
		if err := s.contextManager.Reset(ctx, inv.UserID); err != nil {
			return "", err
		}
		return ResetReply, nil

	case CommandAsk:
		return s.ask(ctx, inv)

	case CommandDefine:
		return s.complete(ctx, definePrompt(inv.UserMention, inv.Arg("term")))

	case CommandExplainLikeIm5:
		return s.complete(ctx, explainPrompt(inv.UserMention, inv.Arg("concept")))

	case CommandSummarise:
		return s.complete(ctx, summarisePrompt(inv.UserMention, inv.Arg("text")))

	case CommandTranslate:
		return s.complete(ctx, translatePrompt(inv.UserMention, inv.Arg("text"), inv.Arg("language")))

	case CommandQuiz:
		n, err := parseQuestionCount(inv.Arg("num_questions"))
		if err != nil {
			return "", err
		}
		return s.complete(ctx, quizPrompt(inv.UserMention, inv.Arg("topic"), n))
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Name)
}

// ask единственная команда с памятью: вопрос и ответ попадают в контекст пользователя
func (s *Service) ask(ctx context.Context, inv models.CommandInvocation) (string, error) {
	question := inv.Arg("question")

	answer, err := s.contextManager.Exchange(ctx, inv.UserID, question, s.llmClient.CompleteWithRetry)
	if err != nil {
		return "", err
	}

	return s.shape(askHeader(inv.UserMention, question), answer), nil
}

// complete одноразовый запрос без чтения и записи контекста
func (s *Service) complete(ctx context.Context, p prompt) (string, error) {
	messages := llm.WithSystemPrompt(p.system, llm.Message{Role: string(models.RoleUser), Content: p.user})

	answer, err := s.llmClient.CompleteWithRetry(ctx, messages)
	if err != nil {
		return "", err
	}

	return s.shape(p.header, answer), nil
}

func (s *Service) shape(header, body string) string {
	limit := s.config.MaxResponseLength
	if limit <= 0 || limit > DiscordMessageLimit {
		limit = DiscordMessageLimit
	}
	return BuildReply(header, body, limit, TruncationMarker(s.config.TruncationNotice))
}

// History сохраненный контекст пользователя
func (s *Service) History(ctx context.Context, userID string) ([]models.Message, error) {
	return s.contextManager.History(ctx, userID)
}

// Reset то же, что /reset, без форматирования ответа
func (s *Service) Reset(ctx context.Context, userID string) error {
	return s.contextManager.Reset(ctx, userID)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.contextManager.Ping(ctx)
}

func (s *Service) Metrics() []CommandStats {
	return s.metrics.GetStats()
}

func isUserError(err error) bool {
	return errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrEmptyUserID) ||
		errors.Is(err, ErrEmptyArgument) ||
		errors.Is(err, ErrArgumentTooLong) ||
		errors.Is(err, ErrInvalidQuestionCount)
}

// ErrorReply текст для пользователя вместо сырой ошибки
func ErrorReply(err error) string {
	switch {
	case errors.Is(err, ErrUnknownCommand):
		return "Unknown command. Type /help for usage!"
	case errors.Is(err, ErrEmptyArgument):
		return "Please fill in every option of the command."
	case errors.Is(err, ErrArgumentTooLong):
		return fmt.Sprintf("That input is too long, please keep it under %d characters.", MaxArgumentLength)
	case errors.Is(err, ErrInvalidQuestionCount):
		return fmt.Sprintf("Please ask for between 1 and %d quiz questions.", MaxQuizQuestions)
	case errors.Is(err, llm.ErrRateLimited):
		return "Ignis is getting too many requests right now. Please try again in a minute."
	default:
		return FriendlyError
	}
}
