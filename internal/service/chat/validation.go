package chat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"ignis-bot/internal/storage/models"
)

var (
	ErrUnknownCommand       = errors.New("unknown command")
	ErrEmptyUserID          = errors.New("user ID cannot be empty")
	ErrEmptyArgument        = errors.New("argument cannot be empty")
	ErrArgumentTooLong      = errors.New("argument is too long")
	ErrInvalidQuestionCount = errors.New("number of questions must be a positive integer")
)

const (
	MaxArgumentLength = 6000 // Discord ограничивает строковую опцию 6000 символами
	MaxUserIDLength   = 100
)

func ValidateInvocation(cmd Command, inv models.CommandInvocation) error {
	if strings.TrimSpace(inv.UserID) == "" {
		return ErrEmptyUserID
	}

	if len(inv.UserID) > MaxUserIDLength {
		return fmt.Errorf("%w: user ID too long", ErrArgumentTooLong)
	}

	for _, opt := range cmd.Options {
		value := inv.Arg(opt.Name)
		if value == "" {
			if opt.Required {
				return fmt.Errorf("%w: %s", ErrEmptyArgument, opt.Name)
			}
			continue
		}

		if utf8.RuneCountInString(value) > MaxArgumentLength {
			return fmt.Errorf("%w: %s", ErrArgumentTooLong, opt.Name)
		}
	}

	return nil
}

// parseQuestionCount num_questions должен быть целым >= 1; больше MaxQuizQuestions допустимо
func parseQuestionCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuestionCount, raw)
	}
	return n, nil
}
