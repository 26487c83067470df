package interview

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/spigell/interview-coach/internal/ai"
)

var (
	//go:embed prompts/next_question.md
	nextQuestionTemplate string
	//go:embed prompts/final_evaluation.md
	finalEvaluationTemplate string
	//go:embed prompts/feedback.md
	feedbackTemplate string
)

const (
	fallbackNextQuestion    = "You are a technical interviewer for {{CONTEXT_LABEL}}: {{CONTEXT}}. Output only the next question. Do not give feedback or praise. Escalate difficulty adaptively."
	fallbackFinalEvaluation = "You are a hiring manager. Score the candidate out of 10 for {{CONTEXT_LABEL}}: {{CONTEXT}}. List strengths and areas for improvement."
	fallbackFeedback        = "You are a senior software engineer conducting a technical interview. Keep your feedback concise and technical."

	feedbackRequest = "Question asked: %s\nCandidate's answer: %s\nPlease provide brief feedback on this answer, highlighting any technical inaccuracies and suggesting improvements."
)

// BuildNextQuestionPrompt asks for the next question. Past turns are replayed
// in order, question as assistant and answer as user, so a stateless endpoint
// sees the whole interview. Nothing is summarised or truncated.
func BuildNextQuestionPrompt(context string, history []QAPair, mode Mode) []ai.Message {
	messages := make([]ai.Message, 0, 1+2*len(history))
	messages = append(messages, ai.System(render(nextQuestionTemplate, fallbackNextQuestion, context, mode)))

	for _, pair := range history {
		messages = append(messages, ai.Assistant(pair.Question), ai.User(pair.Answer))
	}

	return messages
}

// BuildFinalEvaluationPrompt asks for the report over the whole transcript.
func BuildFinalEvaluationPrompt(context string, history []QAPair, mode Mode) []ai.Message {
	return []ai.Message{
		ai.System(render(finalEvaluationTemplate, fallbackFinalEvaluation, context, mode)),
		ai.User(FormatHistory(history)),
	}
}

// BuildFeedbackPrompt asks for short feedback on a single answer.
func BuildFeedbackPrompt(question, answer string) []ai.Message {
	system := strings.TrimSpace(feedbackTemplate)
	if system == "" {
		system = fallbackFeedback
	}

	return []ai.Message{
		ai.System(system),
		ai.User(fmt.Sprintf(feedbackRequest, question, answer)),
	}
}

// FormatHistory serialises pairs as "Q{i}: ...\nA{i}: ...\n\n", 1-based.
func FormatHistory(history []QAPair) string {
	var b strings.Builder
	for i, pair := range history {
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n\n", i+1, pair.Question, i+1, pair.Answer)
	}
	return b.String()
}

func render(template, fallback, context string, mode Mode) string {
	if strings.TrimSpace(template) == "" {
		template = fallback
	}

	prompt := strings.ReplaceAll(template, "{{CONTEXT_LABEL}}", contextLabel(mode))
	prompt = strings.ReplaceAll(prompt, "{{CONTEXT}}", strings.TrimSpace(context))
	return strings.TrimSpace(prompt)
}

func contextLabel(mode Mode) string {
	if mode == ModeResume {
		return "the candidate's resume"
	}
	return "the topic"
}
