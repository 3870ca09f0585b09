package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidRole = errors.New("invalid message role")

// wireMessage is the stored shape of a message. It is kept separate from Message
// so the in-memory type can change without breaking data already in the store.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// EncodeMessage serializes a message into the compact form kept in external stores.
func EncodeMessage(msg Message) (string, error) {
	if !msg.Role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, msg.Role)
	}

	b, err := json.Marshal(wireMessage{Role: string(msg.Role), Content: msg.Content})
	if err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}
	return string(b), nil
}

// DecodeMessage is the inverse of EncodeMessage.
func DecodeMessage(raw string) (Message, error) {
	var w wireMessage
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return Message{}, fmt.Errorf("failed to decode message: %w", err)
	}

	role := Role(w.Role)
	if !role.Valid() {
		return Message{}, fmt.Errorf("%w: %q", ErrInvalidRole, w.Role)
	}

	return Message{Role: role, Content: w.Content}, nil
}
