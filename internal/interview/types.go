package interview

import (
	"fmt"
	"strings"
)

type Mode string

const (
	ModeNone   Mode = ""
	ModeTopic  Mode = "topic"
	ModeResume Mode = "resume"
)

// Label is the user-facing name of the mode.
func (m Mode) Label() string {
	switch m {
	case ModeTopic:
		return "Topic-Based"
	case ModeResume:
		return "Resume-Based"
	default:
		return "Not selected"
	}
}

// ParseMode accepts both the short names and the labels.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "topic", "topic-based", "topic based":
		return ModeTopic, nil
	case "resume", "resume-based", "resume based":
		return ModeResume, nil
	default:
		return ModeNone, &ValidationError{Field: "mode", Reason: fmt.Sprintf("unknown interview mode %q", s)}
	}
}

const (
	TopicJava     = "Java"
	TopicPython   = "Python"
	TopicML       = "Machine Learning"
	TopicOS       = "Operating Systems"
	TopicDBMS     = "DBMS"
	TopicDSA      = "Data Structures and Algorithms"
	generalBankID = "General"
)

// Topics is the fixed set offered in topic-based mode.
var Topics = []string{TopicJava, TopicPython, TopicML, TopicOS, TopicDBMS, TopicDSA}

// CanonicalTopic matches s against Topics ignoring case and surrounding space.
func CanonicalTopic(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, t := range Topics {
		if strings.EqualFold(t, s) {
			return t, true
		}
	}
	return "", false
}

// QAPair is one asked question and its submitted answer. Feedback is filled
// later, on request, and never changes the question or the answer.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Feedback string `json:"feedback,omitempty"`
}

type State int

const (
	AwaitingMode State = iota
	AwaitingQuestion
	AwaitingAnswer
	Completed
)

func (s State) String() string {
	switch s {
	case AwaitingMode:
		return "awaiting_mode"
	case AwaitingQuestion:
		return "awaiting_question"
	case AwaitingAnswer:
		return "awaiting_answer"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ValidationError blocks a transition because of bad user input. The session
// is left unchanged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
