package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for input, want := range map[string]Mode{
		"topic":        ModeTopic,
		"Topic-Based":  ModeTopic,
		" resume ":     ModeResume,
		"Resume-Based": ModeResume,
	} {
		got, err := ParseMode(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseMode("quiz")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "mode", verr.Field)
}

func TestSessionProgress(t *testing.T) {
	s := &Session{Mode: ModeTopic, Step: 6, TotalQuestions: 5}
	step, total := s.Progress()
	assert.Equal(t, 5, step)
	assert.Equal(t, 5, total)
	assert.Equal(t, Completed, s.State())
	assert.Equal(t, "completed", s.State().String())
}
