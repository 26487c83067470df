// Package web serves the interview as a local browser form. The server holds
// exactly one session; requests on it are serialised with a mutex.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
)

//go:embed templates/*.html
var templates embed.FS

// maxUpload bounds the multipart body of the mode form.
const maxUpload = 12 << 20

type Config struct {
	// Feedback requests short feedback on every submitted answer.
	Feedback bool
}

type Server struct {
	machine *interview.Machine
	cfg     Config
	logger  *zap.Logger
	page    *template.Template
	now     func() time.Time

	mu        sync.Mutex
	session   *interview.Session
	sessionID string
	warning   string
}

func New(machine *interview.Machine, cfg Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	page, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, err
	}

	return &Server{
		machine:   machine,
		cfg:       cfg,
		logger:    log,
		page:      page,
		now:       time.Now,
		session:   interview.NewSession(),
		sessionID: uuid.NewString(),
	}, nil
}

// Routes returns the HTTP handler of the form.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Get("/", s.handleIndex)
	r.Post("/mode", s.handleMode)
	r.Post("/answer", s.handleAnswer)
	r.Post("/restart", s.handleRestart)
	r.Post("/reset", s.handleReset)
	r.Get("/transcript", s.handleTranscript)
	r.Get("/api/session", s.handleSession)

	return r
}

// sessionLogger must be called with mu held.
func (s *Server) sessionLogger() *zap.Logger {
	return logger.WithSession(s.logger, s.sessionID, string(s.session.Mode))
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
			)
		})
	}
}
