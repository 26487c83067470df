package ai

import (
	"context"
)

// Role tags a chat message with its author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Request is a single completion call.
type Request struct {
	// Model overrides the backend default when set.
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature *float32
}

// Backend is a hosted chat-completion provider.
type Backend interface {
	Generate(ctx context.Context, req Request) (string, error)
	Provider() string
	Model() string
}

// Completer is what the interview core consumes.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Temperature returns a pointer suitable for Request.Temperature.
func Temperature(v float32) *float32 {
	return &v
}
