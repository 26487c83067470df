package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/interview"
)

type fakeCompleter struct {
	mu              sync.Mutex
	questionCalls   int
	evaluationCalls int
	err             error
}

func (f *fakeCompleter) Complete(_ context.Context, req ai.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}

	system := req.Messages[0].Content
	switch {
	case strings.Contains(system, "hiring manager"):
		f.evaluationCalls++
		return "Score: 8/10", nil
	case strings.Contains(system, "senior software engineer"):
		return "Mostly correct.", nil
	default:
		f.questionCalls++
		return fmt.Sprintf("Question %d?", f.questionCalls), nil
	}
}

func (f *fakeCompleter) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func newTestServer(t *testing.T, c *fakeCompleter, cfg Config) http.Handler {
	t.Helper()

	machine := interview.NewMachine(
		interview.NewModelGenerated(c, 150, nil),
		c,
		interview.Config{TopicQuestions: 2, ResumeQuestions: 3},
		zap.NewNop(),
	)

	srv, err := New(machine, cfg, zap.NewNop())
	require.NoError(t, err)

	return srv.Routes()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))
}

func postUpload(t *testing.T, h http.Handler, filename string, content []byte) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("mode", "resume"))
	if filename != "" {
		part, err := mw.CreateFormFile("resume", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/mode", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
}

func state(t *testing.T, h http.Handler) sessionResponse {
	t.Helper()

	w := get(t, h, "/api/session")
	require.Equal(t, http.StatusOK, w.Code)

	var resp sessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestTopicInterviewFlow(t *testing.T) {
	c := &fakeCompleter{}
	h := newTestServer(t, c, Config{})

	postForm(t, h, "/mode", url.Values{"mode": {"topic"}, "topic": {"python"}})

	page := get(t, h, "/").Body.String()
	assert.Contains(t, page, "Question 1?")
	assert.Contains(t, page, "Question 1 of 2")
	assert.Contains(t, page, "Python")

	// Rendering twice asks for no new question.
	get(t, h, "/")
	assert.Equal(t, 1, c.questionCalls)

	postForm(t, h, "/answer", url.Values{"answer": {"GIL serialises bytecode"}})
	assert.Contains(t, get(t, h, "/").Body.String(), "Question 2?")

	postForm(t, h, "/answer", url.Values{"answer": {"Generators are lazy"}})

	page = get(t, h, "/").Body.String()
	assert.Contains(t, page, "Final evaluation")
	assert.Contains(t, page, "Score: 8/10")

	get(t, h, "/")
	assert.Equal(t, 2, c.questionCalls)
	assert.Equal(t, 1, c.evaluationCalls)

	resp := state(t, h)
	assert.Equal(t, "completed", resp.State)
	assert.Len(t, resp.Session.History, 2)

	w := get(t, h, "/transcript")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), resp.ID)

	transcript := w.Body.String()
	assert.Contains(t, transcript, "Q1: Question 1?\nA1: GIL serialises bytecode\n")
	assert.Contains(t, transcript, "Final evaluation:\nScore: 8/10")
}

func TestBlankAnswerIsRejected(t *testing.T) {
	h := newTestServer(t, &fakeCompleter{}, Config{})

	postForm(t, h, "/mode", url.Values{"mode": {"topic"}, "topic": {"Java"}})
	get(t, h, "/")
	postForm(t, h, "/answer", url.Values{"answer": {"   "}})

	assert.Contains(t, get(t, h, "/").Body.String(), "answer must not be empty")

	resp := state(t, h)
	assert.Equal(t, "awaiting_answer", resp.State)
	assert.Empty(t, resp.Session.History)
	assert.Equal(t, 1, resp.Session.Step)

	// The warning is shown once.
	assert.NotContains(t, get(t, h, "/").Body.String(), "answer must not be empty")
}

func TestUnknownTopicIsRejected(t *testing.T) {
	h := newTestServer(t, &fakeCompleter{}, Config{})

	postForm(t, h, "/mode", url.Values{"mode": {"topic"}, "topic": {"Cooking"}})

	assert.Contains(t, get(t, h, "/").Body.String(), "invalid topic")
	assert.Equal(t, "awaiting_mode", state(t, h).State)
}

func TestResumeUploadMustBePDF(t *testing.T) {
	h := newTestServer(t, &fakeCompleter{}, Config{})

	postUpload(t, h, "cv.txt", []byte("plain text resume"))

	assert.Contains(t, get(t, h, "/").Body.String(), "only .pdf files are supported")
	assert.Equal(t, "awaiting_mode", state(t, h).State)
}

func TestResumeUploadUnreadable(t *testing.T) {
	h := newTestServer(t, &fakeCompleter{}, Config{})

	postUpload(t, h, "cv.pdf", []byte("not really a pdf"))

	assert.Contains(t, get(t, h, "/").Body.String(), "cannot read cv.pdf")
	assert.Equal(t, "awaiting_mode", state(t, h).State)
}

func TestResumeModeWithoutUpload(t *testing.T) {
	h := newTestServer(t, &fakeCompleter{}, Config{})

	postUpload(t, h, "", nil)

	assert.Contains(t, get(t, h, "/").Body.String(), "upload and process a resume")
	assert.Equal(t, "awaiting_mode", state(t, h).State)
}

func TestUpstreamFailureKeepsSession(t *testing.T) {
	c := &fakeCompleter{}
	h := newTestServer(t, c, Config{})

	postForm(t, h, "/mode", url.Values{"mode": {"topic"}, "topic": {"DBMS"}})

	c.fail(&ai.UpstreamError{Provider: "openai", Model: "llama3-8b-8192", Err: errors.New("connection refused")})

	assert.Contains(t, get(t, h, "/").Body.String(), "The model service did not answer")
	resp := state(t, h)
	assert.Equal(t, "awaiting_question", resp.State)
	assert.Empty(t, resp.Session.CurrentQuestion)

	c.fail(nil)

	assert.Contains(t, get(t, h, "/").Body.String(), "Question 1?")
	assert.Equal(t, "awaiting_answer", state(t, h).State)
}

func TestFeedbackOnAnswers(t *testing.T) {
	h := newTestServer(t, &fakeCompleter{}, Config{Feedback: true})

	postForm(t, h, "/mode", url.Values{"mode": {"topic"}, "topic": {"Operating Systems"}})
	get(t, h, "/")
	postForm(t, h, "/answer", url.Values{"answer": {"A process owns an address space"}})

	assert.Contains(t, get(t, h, "/").Body.String(), "Mostly correct.")
	assert.Equal(t, "Mostly correct.", state(t, h).Session.History[0].Feedback)
}

func TestRestartKeepsTopic(t *testing.T) {
	h := newTestServer(t, &fakeCompleter{}, Config{})

	postForm(t, h, "/mode", url.Values{"mode": {"topic"}, "topic": {"Java"}})
	get(t, h, "/")
	postForm(t, h, "/answer", url.Values{"answer": {"JVM"}})
	before := state(t, h).ID

	postForm(t, h, "/restart", nil)

	resp := state(t, h)
	assert.Equal(t, "Java", resp.Session.Topic)
	assert.Equal(t, 1, resp.Session.Step)
	assert.Empty(t, resp.Session.History)
	assert.NotEqual(t, before, resp.ID)
}

func TestResetAndTranscriptWithoutSession(t *testing.T) {
	h := newTestServer(t, &fakeCompleter{}, Config{})

	w := get(t, h, "/transcript")
	assert.Equal(t, http.StatusConflict, w.Code)

	postForm(t, h, "/mode", url.Values{"mode": {"topic"}, "topic": {"Java"}})
	postForm(t, h, "/reset", nil)

	resp := state(t, h)
	assert.Equal(t, "awaiting_mode", resp.State)
	assert.Equal(t, interview.NewSession(), resp.Session)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &fakeCompleter{}, Config{})

	w := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Equal(t, ".", string(body))
}
