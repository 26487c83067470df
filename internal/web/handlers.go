package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/resume"
)

type view struct {
	Topics      []string
	Mode        string
	ModeLabel   string
	Topic       string
	ResumeChars int
	State       string
	Step        int
	Total       int
	Question    string
	History     []interview.QAPair
	Report      string
	Warning     string
	Feedback    bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.sessionLogger()

	switch s.session.State() {
	case interview.AwaitingQuestion:
		if err := s.machine.EnsureQuestion(r.Context(), s.session); err != nil {
			s.warn(log, "preparing the next question", err)
		}
	case interview.Completed:
		if _, err := s.machine.EnsureReport(r.Context(), s.session); err != nil {
			s.warn(log, "preparing the final evaluation", err)
		}
	}

	data := s.view()
	s.warning = ""

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		log.Error("rendering the page", zap.Error(err))
	}
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer redirectHome(w, r)

	if err := r.ParseMultipartForm(maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.warn(s.sessionLogger(), "reading the form", err)
		return
	}

	mode, err := interview.ParseMode(r.FormValue("mode"))
	if err != nil {
		s.warn(s.sessionLogger(), "selecting a mode", err)
		return
	}

	input := r.FormValue("topic")
	if mode == interview.ModeResume {
		input, err = readUpload(r)
		if err != nil {
			s.warn(s.sessionLogger(), "processing the resume", err)
			return
		}
	}

	if err := s.machine.SelectMode(s.session, mode, input); err != nil {
		s.warn(s.sessionLogger(), "selecting a mode", err)
		return
	}

	s.sessionID = uuid.NewString()
	s.sessionLogger().Info("interview started", zap.String("topic", s.session.Topic))
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer redirectHome(w, r)

	log := s.sessionLogger()

	if err := s.machine.SubmitAnswer(s.session, r.FormValue("answer")); err != nil {
		s.warn(log, "submitting the answer", err)
		return
	}

	if !s.cfg.Feedback {
		return
	}

	if _, err := s.machine.Feedback(r.Context(), s.session, len(s.session.History)-1); err != nil {
		s.warn(log, "preparing feedback", err)
	}
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer redirectHome(w, r)

	if err := s.machine.Restart(s.session); err != nil {
		s.warn(s.sessionLogger(), "restarting the interview", err)
		return
	}
	s.sessionID = uuid.NewString()
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.machine.Reset(s.session)
	s.sessionID = uuid.NewString()
	s.warning = ""

	redirectHome(w, r)
}

func (s *Server) handleTranscript(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Mode == interview.ModeNone {
		Error(w, http.StatusConflict, "no interview in progress")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "interview-"+s.sessionID+".txt"))

	if err := interview.WriteTranscript(w, s.session, s.now()); err != nil {
		s.sessionLogger().Error("writing the transcript", zap.Error(err))
	}
}

type sessionResponse struct {
	ID      string             `json:"id"`
	State   string             `json:"state"`
	Session *interview.Session `json:"session"`
	Warning string             `json:"warning,omitempty"`
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	resp := sessionResponse{
		ID:      s.sessionID,
		State:   s.session.State().String(),
		Session: s.session.Clone(),
		Warning: s.warning,
	}
	s.mu.Unlock()

	JSON(w, http.StatusOK, resp)
}

// view must be called with mu held.
func (s *Server) view() view {
	step, total := s.session.Progress()

	return view{
		Topics:      interview.Topics,
		Mode:        string(s.session.Mode),
		ModeLabel:   s.session.Mode.Label(),
		Topic:       s.session.Topic,
		ResumeChars: len([]rune(s.session.ResumeText)),
		State:       s.session.State().String(),
		Step:        step,
		Total:       total,
		Question:    s.session.CurrentQuestion,
		History:     append([]interview.QAPair{}, s.session.History...),
		Report:      s.session.Report,
		Warning:     s.warning,
		Feedback:    s.cfg.Feedback,
	}
}

// warn logs err and keeps a message for the next page render.
func (s *Server) warn(log *zap.Logger, action string, err error) {
	log.Warn(action, zap.Error(err))
	s.warning = warningText(err)
}

func warningText(err error) string {
	var upstream *ai.UpstreamError
	if errors.As(err, &upstream) {
		return "The model service did not answer, please try again. " + upstream.Error()
	}
	return err.Error()
}

func readUpload(r *http.Request) (string, error) {
	file, header, err := r.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, resume.MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("reading upload %q: %w", header.Filename, err)
	}

	return resume.Extract(header.Filename, data)
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
