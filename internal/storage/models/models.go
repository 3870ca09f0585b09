package models

import (
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid сообщает, является ли роль одной из поддерживаемых
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message одно сообщение разговора. После создания не изменяется.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// CommandInvocation один вызов слэш-команды. Живёт только во время обработки.
type CommandInvocation struct {
	ID          string            `json:"id"`
	Command     string            `json:"command"`
	UserID      string            `json:"user_id"`
	UserMention string            `json:"user_mention"`
	Args        map[string]string `json:"args,omitempty"`
}

func NewCommandInvocation(command, userID string, args map[string]string) CommandInvocation {
	if args == nil {
		args = map[string]string{}
	}
	return CommandInvocation{
		ID:          uuid.New().String(),
		Command:     strings.ToLower(strings.TrimSpace(command)),
		UserID:      userID,
		UserMention: "<@" + userID + ">",
		Args:        args,
	}
}

// Arg возвращает аргумент команды без пробелов по краям
func (c CommandInvocation) Arg(name string) string {
	return strings.TrimSpace(c.Args[name])
}
