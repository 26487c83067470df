// Package openai is a completion backend for OpenAI-compatible chat
// completion endpoints (Groq, OpenAI, local gateways).
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/spigell/interview-coach/internal/ai"
)

const (
	provider = "openai"

	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama3-8b-8192"
)

type chatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

type Client struct {
	chat      chatModel
	modelName string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &ai.ConfigError{Provider: provider, Reason: "api key is required"}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = DefaultModel
	}

	chat, err := einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	return &Client{chat: chat, modelName: modelName}, nil
}

func (c *Client) Generate(ctx context.Context, req ai.Request) (string, error) {
	if c == nil || c.chat == nil {
		return "", errors.New("openai client is not initialized")
	}

	resp, err := c.chat.Generate(ctx, toSchema(req.Messages), options(req)...)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", errors.New("no choices returned")
	}

	return resp.Content, nil
}

func options(req ai.Request) []model.Option {
	var opts []model.Option
	if m := strings.TrimSpace(req.Model); m != "" {
		opts = append(opts, model.WithModel(m))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature != nil {
		opts = append(opts, model.WithTemperature(*req.Temperature))
	}
	return opts
}

func toSchema(messages []ai.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleSystem:
			out = append(out, schema.SystemMessage(msg.Content))
		case ai.RoleAssistant:
			out = append(out, schema.AssistantMessage(msg.Content, nil))
		default:
			out = append(out, schema.UserMessage(msg.Content))
		}
	}
	return out
}

func (c *Client) Provider() string { return provider }

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.modelName
}

var _ ai.Backend = (*Client)(nil)
