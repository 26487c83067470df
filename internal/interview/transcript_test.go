package interview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTranscript(t *testing.T) {
	s := &Session{
		Mode:           ModeTopic,
		Topic:          TopicJava,
		Step:           3,
		TotalQuestions: 2,
		History: []QAPair{
			{Question: "What is the JVM?", Answer: "A virtual machine", Feedback: "Add JIT details."},
			{Question: "What is GC?", Answer: "Automatic memory management"},
		},
		Report: "Score: 8/10",
	}

	got := Transcript(s, time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC))

	want := "Mock interview transcript\n" +
		"Date: 2026-10-16T09:30:00Z\n" +
		"Mode: Topic-Based\n" +
		"Topic: Java\n" +
		"Answered: 2/2\n\n" +
		"Q1: What is the JVM?\nA1: A virtual machine\nFeedback: Add JIT details.\n\n" +
		"Q2: What is GC?\nA2: Automatic memory management\n\n" +
		"Final evaluation:\nScore: 8/10\n"
	assert.Equal(t, want, got)
}

func TestTranscriptResumeModeOmitsResumeBody(t *testing.T) {
	s := &Session{Mode: ModeResume, ResumeText: "secret resume body", Step: 1, TotalQuestions: 10}

	got := Transcript(s, time.Now())

	assert.Contains(t, got, "Mode: Resume-Based\n")
	assert.Contains(t, got, "Resume: 18 characters\n")
	assert.NotContains(t, got, "secret resume body")
}
