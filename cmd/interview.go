package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/resume"
)

const (
	PromptRetry          = "Retry"
	PromptQuit           = "Quit"
	PromptSaveTranscript = "Save transcript"
	PromptRestart        = "Restart the same interview"
	PromptNewInterview   = "Start a new interview"
	PromptResumePDF      = "PDF file"
	PromptResumeHH       = "hh.ru resume"

	commandRestart = "/restart"
	commandReset   = "/reset"
	commandQuit    = "/quit"
)

var errExit = errors.New("exit requested")

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run a mock interview in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		runInterview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().StringP("mode", "m", "", "interview mode: topic or resume (asked when empty)")
	interviewCmd.Flags().StringP("topic", "t", "", "topic for a topic-based interview")
	interviewCmd.Flags().StringP("resume", "r", "", "path to a .pdf resume for a resume-based interview")
	interviewCmd.Flags().String("hh-resume", "", "title of your hh.ru resume for a resume-based interview")
	interviewCmd.Flags().Bool("feedback", false, "show feedback after every answer")

	viper.BindPFlag("hh.resume", interviewCmd.Flags().Lookup("hh-resume"))
}

// terminalSession is the interactive loop over one session.
type terminalSession struct {
	*deps
	ctx       context.Context
	out       io.Writer
	session   *interview.Session
	sessionID string

	// initial selection from flags, used once
	mode, topic, resumePath string
}

func runInterview(cmd *cobra.Command) {
	ctx := context.Background()

	t := &terminalSession{
		deps:       setup(ctx),
		ctx:        ctx,
		out:        os.Stdout,
		session:    interview.NewSession(),
		mode:       cmd.Flag("mode").Value.String(),
		topic:      cmd.Flag("topic").Value.String(),
		resumePath: cmd.Flag("resume").Value.String(),
	}

	if feedback, _ := cmd.Flags().GetBool("feedback"); feedback {
		t.config.Interview.Feedback = true
	}

	if err := t.loop(); err != nil && !errors.Is(err, errExit) {
		t.logger.Fatal("exiting", zap.Error(err))
	}

	t.logger.Info("exiting", zap.String("reason", "interview finished"))
}

func (t *terminalSession) loop() error {
	for {
		var err error

		switch t.session.State() {
		case interview.AwaitingMode:
			err = t.selectMode()
		case interview.AwaitingQuestion:
			err = t.nextQuestion()
		case interview.AwaitingAnswer:
			err = t.answer()
		case interview.Completed:
			err = t.finish()
		}

		if err == nil {
			continue
		}

		if errors.Is(err, errExit) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return errExit
		}

		return err
	}
}

func (t *terminalSession) log() *zap.Logger {
	return logger.WithSession(t.logger, t.sessionID, string(t.session.Mode))
}

// warn reports a recoverable error. The session is left as it was.
func (t *terminalSession) warn(action string, err error) {
	t.log().Warn(action, zap.Error(err))
	fmt.Fprintf(t.out, "\n! %s\n\n", err)
}

func (t *terminalSession) selectMode() error {
	mode, input, err := t.modeInput()
	if err != nil {
		var unreadable *resume.UnreadableDocumentError
		var validation *interview.ValidationError
		if errors.As(err, &unreadable) || errors.As(err, &validation) {
			t.warn("selecting a mode", err)
			return nil
		}
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return err
		}
		// hh.ru failures are not fatal, another source can be chosen.
		t.warn("loading the resume", err)
		return nil
	}

	if err := t.machine.SelectMode(t.session, mode, input); err != nil {
		t.warn("selecting a mode", err)
		return nil
	}

	t.sessionID = uuid.NewString()
	t.log().Info("interview started", zap.String("topic", t.session.Topic))

	fmt.Fprintf(t.out, "\n%s interview, %d questions. Type %s, %s or %s instead of an answer at any time.\n\n",
		t.session.Mode.Label(), t.session.TotalQuestions, commandRestart, commandReset, commandQuit)

	return nil
}

// modeInput returns the chosen mode with its topic or resume text, taking the
// command line flags first.
func (t *terminalSession) modeInput() (interview.Mode, string, error) {
	flagMode, flagTopic, flagResume := t.mode, t.topic, t.resumePath
	t.mode, t.topic, t.resumePath = "", "", ""

	var mode interview.Mode
	if flagMode != "" {
		parsed, err := interview.ParseMode(flagMode)
		if err != nil {
			return interview.ModeNone, "", err
		}
		mode = parsed
	} else {
		modes := []interview.Mode{interview.ModeTopic, interview.ModeResume}
		modePrompt := promptui.Select{
			Label: "Choose an interview mode",
			Items: []string{modes[0].Label(), modes[1].Label()},
		}

		idx, _, err := modePrompt.Run()
		if err != nil {
			return interview.ModeNone, "", err
		}
		mode = modes[idx]
	}

	if mode == interview.ModeTopic {
		if flagTopic != "" {
			return mode, flagTopic, nil
		}

		topicPrompt := promptui.Select{
			Label: "Choose a topic",
			Items: interview.Topics,
			Size:  len(interview.Topics),
		}

		_, topic, err := topicPrompt.Run()
		return mode, topic, err
	}

	text, err := t.resumeText(flagResume)
	return mode, text, err
}

func (t *terminalSession) resumeText(path string) (string, error) {
	title := t.config.HH.Resume
	hhAvailable := t.config.HH.TokenFile != ""

	switch {
	case path != "":
		return resume.ReadFile(path)
	case title != "" && hhAvailable:
		return t.hhResume(title)
	case hhAvailable:
		sourcePrompt := promptui.Select{
			Label: "Where is the resume?",
			Items: []string{PromptResumePDF, PromptResumeHH},
		}

		_, source, err := sourcePrompt.Run()
		if err != nil {
			return "", err
		}

		if source == PromptResumeHH {
			titlePrompt := promptui.Prompt{Label: "hh.ru resume title (empty for the only one)"}
			title, err := titlePrompt.Run()
			if err != nil {
				return "", err
			}
			return t.hhResume(title)
		}
	}

	pathPrompt := promptui.Prompt{
		Label: "Path to your resume (.pdf)",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("path is required")
			}
			return nil
		},
	}

	path, err := pathPrompt.Run()
	if err != nil {
		return "", err
	}

	return resume.ReadFile(path)
}

func (t *terminalSession) hhResume(title string) (string, error) {
	text, err := hhResumeText(t.ctx, t.config, title, t.logger)
	if err != nil {
		return "", err
	}

	t.logger.Info("loaded resume from hh.ru", zap.String("title", title), zap.Int("length", len(text)))
	return text, nil
}

func (t *terminalSession) nextQuestion() error {
	err := t.machine.EnsureQuestion(t.ctx, t.session)
	if err == nil {
		return nil
	}

	t.warn("preparing the next question", err)
	return t.retryOrQuit(err)
}

func (t *terminalSession) answer() error {
	step, total := t.session.Progress()
	fmt.Fprintf(t.out, "Question %d of %d\n%s\n\n", step, total, t.session.CurrentQuestion)

	answerPrompt := promptui.Prompt{Label: "Your answer"}

	text, err := answerPrompt.Run()
	if err != nil {
		return err
	}

	switch strings.TrimSpace(text) {
	case commandQuit:
		return errExit
	case commandReset:
		t.machine.Reset(t.session)
		return nil
	case commandRestart:
		return t.restart()
	}

	if err := t.machine.SubmitAnswer(t.session, text); err != nil {
		t.warn("submitting the answer", err)
		return nil
	}

	if !t.config.Interview.Feedback {
		return nil
	}

	feedback, err := t.machine.Feedback(t.ctx, t.session, len(t.session.History)-1)
	if err != nil {
		// The answer is recorded already; feedback is optional.
		t.warn("preparing feedback", err)
		return nil
	}

	fmt.Fprintf(t.out, "\nFeedback: %s\n\n", feedback)
	return nil
}

func (t *terminalSession) finish() error {
	report, err := t.machine.EnsureReport(t.ctx, t.session)
	if err != nil {
		t.warn("preparing the final evaluation", err)
		return t.retryOrQuit(err)
	}

	fmt.Fprintf(t.out, "\nFinal evaluation\n\n%s\n\n", report)

	for {
		actionPrompt := promptui.Select{
			Label: "What next?",
			Items: []string{PromptSaveTranscript, PromptRestart, PromptNewInterview, PromptQuit},
		}

		_, action, err := actionPrompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptSaveTranscript:
			path, err := t.saveTranscript()
			if err != nil {
				t.warn("saving the transcript", err)
				continue
			}
			fmt.Fprintf(t.out, "Transcript saved to %s\n", path)
		case PromptRestart:
			return t.restart()
		case PromptNewInterview:
			t.machine.Reset(t.session)
			return nil
		case PromptQuit:
			return errExit
		}
	}
}

func (t *terminalSession) restart() error {
	if err := t.machine.Restart(t.session); err != nil {
		t.warn("restarting the interview", err)
		return nil
	}
	t.sessionID = uuid.NewString()
	return nil
}

// retryOrQuit asks what to do after a failed model call.
func (t *terminalSession) retryOrQuit(err error) error {
	var upstream *ai.UpstreamError
	if !errors.As(err, &upstream) {
		return err
	}

	retryPrompt := promptui.Select{
		Label: "The model service did not answer",
		Items: []string{PromptRetry, PromptQuit},
	}

	_, action, promptErr := retryPrompt.Run()
	if promptErr != nil {
		return promptErr
	}

	if action == PromptQuit {
		return errExit
	}
	return nil
}

func (t *terminalSession) saveTranscript() (string, error) {
	dir := t.config.TranscriptDir
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating transcript dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("interview-%s.txt", t.sessionID))
	if err := os.WriteFile(path, []byte(interview.Transcript(t.session, time.Now())), 0o644); err != nil {
		return "", fmt.Errorf("writing transcript: %w", err)
	}

	t.log().Info("transcript saved", zap.String("path", path))
	return path, nil
}
