package interview

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Transcript renders the session as plain text for download.
func Transcript(s *Session, at time.Time) string {
	var b strings.Builder
	_ = WriteTranscript(&b, s, at)
	return b.String()
}

func WriteTranscript(w io.Writer, s *Session, at time.Time) error {
	var b strings.Builder

	b.WriteString("Mock interview transcript\n")
	fmt.Fprintf(&b, "Date: %s\n", at.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Mode: %s\n", s.Mode.Label())
	switch s.Mode {
	case ModeTopic:
		fmt.Fprintf(&b, "Topic: %s\n", s.Topic)
	case ModeResume:
		fmt.Fprintf(&b, "Resume: %d characters\n", len([]rune(s.ResumeText)))
	}
	fmt.Fprintf(&b, "Answered: %d/%d\n\n", len(s.History), s.TotalQuestions)

	for i, pair := range s.History {
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n", i+1, pair.Question, i+1, pair.Answer)
		if pair.Feedback != "" {
			fmt.Fprintf(&b, "Feedback: %s\n", pair.Feedback)
		}
		b.WriteString("\n")
	}

	if s.Report != "" {
		b.WriteString("Final evaluation:\n")
		b.WriteString(s.Report)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
