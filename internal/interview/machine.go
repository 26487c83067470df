package interview

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
)

const (
	DefaultTopicQuestions  = 5
	DefaultResumeQuestions = 10

	defaultEvaluationMaxTokens = 1024
	defaultFeedbackMaxTokens   = 200
)

type Config struct {
	TopicQuestions      int
	ResumeQuestions     int
	EvaluationMaxTokens int
	FeedbackMaxTokens   int
	Temperature         *float32
}

// Machine drives the question/answer loop. It holds no session state: every
// transition takes the caller's *Session and either mutates it completely or
// leaves it untouched.
type Machine struct {
	questions QuestionProvider
	completer ai.Completer
	cfg       Config
	logger    *zap.Logger
}

func NewMachine(questions QuestionProvider, completer ai.Completer, cfg Config, logger *zap.Logger) *Machine {
	if cfg.TopicQuestions <= 0 {
		cfg.TopicQuestions = DefaultTopicQuestions
	}
	if cfg.ResumeQuestions <= 0 {
		cfg.ResumeQuestions = DefaultResumeQuestions
	}
	if cfg.EvaluationMaxTokens <= 0 {
		cfg.EvaluationMaxTokens = defaultEvaluationMaxTokens
	}
	if cfg.FeedbackMaxTokens <= 0 {
		cfg.FeedbackMaxTokens = defaultFeedbackMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Machine{
		questions: questions,
		completer: completer,
		cfg:       cfg,
		logger:    logger,
	}
}

// TotalQuestions is the fixed question count for mode.
func (m *Machine) TotalQuestions(mode Mode) int {
	if mode == ModeResume {
		return m.cfg.ResumeQuestions
	}
	return m.cfg.TopicQuestions
}

// SelectMode starts a new attempt. In topic mode input is the topic name, in
// resume mode the extracted resume text.
func (m *Machine) SelectMode(s *Session, mode Mode, input string) error {
	var topic, resume string

	switch mode {
	case ModeTopic:
		canonical, ok := CanonicalTopic(input)
		if !ok {
			return &ValidationError{Field: "topic", Reason: fmt.Sprintf("%q is not one of: %s", input, strings.Join(Topics, ", "))}
		}
		topic = canonical
	case ModeResume:
		resume = strings.TrimSpace(input)
		if resume == "" {
			return &ValidationError{Field: "resume", Reason: "upload and process a resume before starting a resume-based interview"}
		}
	default:
		return &ValidationError{Field: "mode", Reason: fmt.Sprintf("unknown interview mode %q", mode)}
	}

	*s = Session{
		Mode:           mode,
		Topic:          topic,
		ResumeText:     resume,
		Step:           1,
		TotalQuestions: m.TotalQuestions(mode),
		History:        []QAPair{},
	}

	m.logger.Info("interview mode selected",
		zap.String("mode", string(mode)),
		zap.String("topic", topic),
		zap.Int("resume_length", len(resume)),
		zap.Int("total_questions", s.TotalQuestions),
	)

	return nil
}

// EnsureQuestion fills CurrentQuestion when the session is waiting for one.
// It is a no-op in every other state, so repeated calls issue at most one
// provider call per step.
func (m *Machine) EnsureQuestion(ctx context.Context, s *Session) error {
	if s.State() != AwaitingQuestion {
		return nil
	}

	question, err := m.questions.NextQuestion(ctx, s)
	if err != nil {
		return fmt.Errorf("next question for step %d: %w", s.Step, err)
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return fmt.Errorf("next question for step %d: provider %s returned an empty question", s.Step, m.questions.Name())
	}

	s.CurrentQuestion = question

	m.logger.Debug("question ready",
		zap.Int("step", s.Step),
		zap.String("source", m.questions.Name()),
	)

	return nil
}

// SubmitAnswer records the answer to the current question and advances.
func (m *Machine) SubmitAnswer(s *Session, text string) error {
	switch s.State() {
	case AwaitingMode:
		return &ValidationError{Field: "answer", Reason: "select an interview mode first"}
	case Completed:
		return &ValidationError{Field: "answer", Reason: "the interview is already completed"}
	case AwaitingQuestion:
		return &ValidationError{Field: "answer", Reason: "there is no question to answer yet"}
	}

	answer := strings.TrimSpace(text)
	if answer == "" {
		return &ValidationError{Field: "answer", Reason: "answer must not be empty"}
	}

	s.History = append(s.History, QAPair{Question: s.CurrentQuestion, Answer: answer})
	s.CurrentQuestion = ""
	s.Step++

	m.logger.Info("answer recorded",
		zap.Int("answered", len(s.History)),
		zap.Int("total_questions", s.TotalQuestions),
	)

	return nil
}

// EnsureReport returns the final evaluation, calling the model only the first
// time. A failed call leaves nothing cached so the caller can retry.
func (m *Machine) EnsureReport(ctx context.Context, s *Session) (string, error) {
	if s.State() != Completed {
		return "", &ValidationError{Field: "report", Reason: "the interview is not completed yet"}
	}

	if s.Report != "" {
		return s.Report, nil
	}

	report, err := m.completer.Complete(ctx, ai.Request{
		Messages:    BuildFinalEvaluationPrompt(s.Context(), s.History, s.Mode),
		MaxTokens:   m.cfg.EvaluationMaxTokens,
		Temperature: m.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("final evaluation: %w", err)
	}

	s.Report = report

	m.logger.Info("final evaluation ready", zap.Int("answered", len(s.History)))

	return report, nil
}

// Feedback returns short feedback on the answer at index, cached on the pair.
func (m *Machine) Feedback(ctx context.Context, s *Session, index int) (string, error) {
	if index < 0 || index >= len(s.History) {
		return "", &ValidationError{Field: "feedback", Reason: fmt.Sprintf("no answer with index %d", index)}
	}

	pair := s.History[index]
	if pair.Feedback != "" {
		return pair.Feedback, nil
	}

	feedback, err := m.completer.Complete(ctx, ai.Request{
		Messages:    BuildFeedbackPrompt(pair.Question, pair.Answer),
		MaxTokens:   m.cfg.FeedbackMaxTokens,
		Temperature: m.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("feedback for answer %d: %w", index+1, err)
	}

	s.History[index].Feedback = feedback
	return feedback, nil
}

// Restart begins the same interview again: same mode and context, no progress.
func (m *Machine) Restart(s *Session) error {
	if s.Mode == ModeNone {
		return &ValidationError{Field: "mode", Reason: "select an interview mode first"}
	}
	return m.SelectMode(s, s.Mode, s.Context())
}

// Reset discards the session entirely and waits for a new mode.
func (m *Machine) Reset(s *Session) {
	*s = *NewSession()
	m.logger.Info("session reset")
}
