package interview

// Session is one candidate's interview attempt. It is a plain value owned by
// the caller; only Machine transitions mutate it.
type Session struct {
	Mode            Mode     `json:"mode"`
	Topic           string   `json:"topic,omitempty"`
	ResumeText      string   `json:"-"`
	Step            int      `json:"step"`
	TotalQuestions  int      `json:"total_questions"`
	CurrentQuestion string   `json:"current_question,omitempty"`
	History         []QAPair `json:"history"`
	Report          string   `json:"report,omitempty"`
}

// NewSession returns a session waiting for a mode.
func NewSession() *Session {
	return &Session{Step: 1, History: []QAPair{}}
}

func (s *Session) State() State {
	switch {
	case s.Mode == ModeNone:
		return AwaitingMode
	case s.Step > s.TotalQuestions:
		return Completed
	case s.CurrentQuestion == "":
		return AwaitingQuestion
	default:
		return AwaitingAnswer
	}
}

// Context is the topic name or the resume text, depending on the mode.
func (s *Session) Context() string {
	if s.Mode == ModeResume {
		return s.ResumeText
	}
	return s.Topic
}

// Progress returns the question number shown to the user and the total.
// It never reports more than TotalQuestions.
func (s *Session) Progress() (int, int) {
	step := s.Step
	if step > s.TotalQuestions {
		step = s.TotalQuestions
	}
	return step, s.TotalQuestions
}

// Clone returns a deep copy, used to render a session outside its lock.
func (s *Session) Clone() *Session {
	c := *s
	c.History = append([]QAPair{}, s.History...)
	return &c
}
