package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/logger"
)

const (
	defaultTimeout      = 60 * time.Second
	defaultMaxLogLength = 200
)

// Adapter is a thin pass-through to a Backend. It bounds every call with a
// deadline and turns any backend failure into an *UpstreamError.
type Adapter struct {
	backend   Backend
	timeout   time.Duration
	maxLogLen int
	logger    *zap.Logger
}

type AdapterConfig struct {
	Timeout      time.Duration
	MaxLogLength int
}

func NewAdapter(backend Backend, cfg AdapterConfig, log *zap.Logger) (*Adapter, error) {
	if backend == nil {
		return nil, &ConfigError{Reason: "completion backend is not configured"}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Adapter{
		backend:   backend,
		timeout:   timeout,
		maxLogLen: maxLogLen,
		logger:    logger.WithCommonFields(log, backend.Provider(), backend.Model()),
	}, nil
}

// Complete issues exactly one completion call.
func (a *Adapter) Complete(ctx context.Context, req Request) (string, error) {
	if len(req.Messages) == 0 {
		return "", a.upstream(req, errors.New("at least one message must be provided"))
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.logger.Debug("completion request",
		zap.Int("messages", len(req.Messages)),
		zap.Int("max_tokens", req.MaxTokens),
		zap.Int("prompt_length", promptLength(req.Messages)),
		zap.String("prompt_preview", logger.TruncateForLog(req.Messages[len(req.Messages)-1].Content, a.maxLogLen)),
	)

	started := time.Now()
	text, err := a.backend.Generate(ctx, req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("no response within %s: %w", a.timeout, err)
		}
		a.logger.Warn("completion failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return "", a.upstream(req, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", a.upstream(req, errors.New("empty completion"))
	}

	a.logger.Debug("completion response",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("response_length", utf8.RuneCountInString(text)),
		zap.String("response_preview", logger.TruncateForLog(text, a.maxLogLen)),
	)

	return text, nil
}

func (a *Adapter) upstream(req Request, err error) error {
	model := req.Model
	if model == "" {
		model = a.backend.Model()
	}
	return &UpstreamError{Provider: a.backend.Provider(), Model: model, Err: err}
}

func promptLength(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += utf8.RuneCountInString(m.Content)
	}
	return total
}

var _ Completer = (*Adapter)(nil)
