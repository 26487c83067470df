package interview

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spigell/interview-coach/internal/ai"
)

// QuestionProvider produces the next question for a session.
type QuestionProvider interface {
	NextQuestion(ctx context.Context, s *Session) (string, error)
	Name() string
}

const (
	SourceModel = "model"
	SourceBank  = "bank"
)

// ModelGenerated asks the completion endpoint for an adaptive question.
type ModelGenerated struct {
	completer   ai.Completer
	maxTokens   int
	temperature *float32
}

func NewModelGenerated(completer ai.Completer, maxTokens int, temperature *float32) *ModelGenerated {
	return &ModelGenerated{completer: completer, maxTokens: maxTokens, temperature: temperature}
}

func (p *ModelGenerated) Name() string { return SourceModel }

func (p *ModelGenerated) NextQuestion(ctx context.Context, s *Session) (string, error) {
	return p.completer.Complete(ctx, ai.Request{
		Messages:    BuildNextQuestionPrompt(s.Context(), s.History, s.Mode),
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
}

// StaticBank draws one question per step from a fixed bank without calling
// the model. Questions already asked in the session are skipped until the
// bank runs out, after which any question may repeat.
type StaticBank struct {
	bank Bank
	rng  *rand.Rand
}

func NewStaticBank(bank Bank, rng *rand.Rand) *StaticBank {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &StaticBank{bank: bank, rng: rng}
}

func (p *StaticBank) Name() string { return SourceBank }

func (p *StaticBank) NextQuestion(_ context.Context, s *Session) (string, error) {
	topic := s.Topic
	if s.Mode == ModeResume {
		topic = generalBankID
	}

	candidates := p.bank.Questions(topic)
	if len(candidates) == 0 {
		return "", fmt.Errorf("question bank has no questions for %q", topic)
	}

	asked := make(map[string]struct{}, len(s.History))
	for _, pair := range s.History {
		asked[strings.TrimSpace(pair.Question)] = struct{}{}
	}

	fresh := make([]string, 0, len(candidates))
	for _, q := range candidates {
		if _, ok := asked[q]; !ok {
			fresh = append(fresh, q)
		}
	}
	if len(fresh) == 0 {
		fresh = candidates
	}

	return fresh[p.rng.IntN(len(fresh))], nil
}

var (
	_ QuestionProvider = (*ModelGenerated)(nil)
	_ QuestionProvider = (*StaticBank)(nil)
)
