package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/interview"
)

func clearKeys(t *testing.T) {
	t.Helper()
	for _, envs := range apiKeyEnv {
		for _, key := range envs {
			t.Setenv(key, "")
		}
	}
}

func TestNewCompleterRequiresKey(t *testing.T) {
	clearKeys(t)

	for _, provider := range []string{"", "openai", "groq", "gemini"} {
		_, err := newCompleter(context.Background(), &AIConfig{Provider: provider}, zap.NewNop())

		var cfgErr *ai.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("provider %q: expected ConfigError, got %v", provider, err)
		}
	}
}

func TestNewCompleterUnsupportedProvider(t *testing.T) {
	_, err := newCompleter(context.Background(), &AIConfig{Provider: "anthropic", APIKey: "key"}, zap.NewNop())

	var cfgErr *ai.ConfigError
	if !errors.As(err, &cfgErr) || !strings.Contains(err.Error(), "unsupported provider") {
		t.Fatalf("expected unsupported provider error, got %v", err)
	}
}

func TestNewCompleterFromGrokVariable(t *testing.T) {
	clearKeys(t)
	t.Setenv("GROK_API_KEY", "gsk-test")

	adapter, err := newCompleter(context.Background(), &AIConfig{Provider: "openai"}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adapter == nil {
		t.Fatal("expected an adapter")
	}
}

func TestNewQuestionProvider(t *testing.T) {
	completer := &ai.Adapter{}

	config := &Config{AI: &AIConfig{MaxTokens: 150}, Interview: &InterviewConfig{}}

	provider, err := newQuestionProvider(config, completer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Name() != interview.SourceModel {
		t.Fatalf("expected model provider by default, got %s", provider.Name())
	}

	config.Interview.QuestionSource = "Bank"
	config.Interview.QuestionBank = map[string]any{"java": []any{"What is the JIT?"}}

	provider, err = newQuestionProvider(config, completer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := interview.NewSession()
	s.Mode, s.Topic, s.TotalQuestions = interview.ModeTopic, interview.TopicJava, 5

	question, err := provider.NextQuestion(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if question != "What is the JIT?" {
		t.Fatalf("expected the configured question to override the bank, got %q", question)
	}

	config.Interview.QuestionSource = "random"
	if _, err := newQuestionProvider(config, completer); err == nil {
		t.Fatal("expected an error for an unknown question source")
	}
}

func TestNewQuestionProviderBankFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	if err := os.WriteFile(path, []byte("Python:\n  - What does the GIL protect?\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	config := &Config{AI: &AIConfig{}, Interview: &InterviewConfig{QuestionSource: "bank", QuestionBankFile: path}}

	provider, err := newQuestionProvider(config, &ai.Adapter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := interview.NewSession()
	s.Mode, s.Topic, s.TotalQuestions = interview.ModeTopic, interview.TopicPython, 5

	question, err := provider.NextQuestion(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if question != "What does the GIL protect?" {
		t.Fatalf("unexpected question %q", question)
	}
}

func TestRedactedConfig(t *testing.T) {
	config := &Config{AI: &AIConfig{APIKey: "secret"}}

	if got := redacted(config).AI.APIKey; got != "<redacted>" {
		t.Fatalf("expected redacted key, got %q", got)
	}
	if config.AI.APIKey != "secret" {
		t.Fatal("redaction must not modify the original config")
	}
}
