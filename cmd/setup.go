package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/ai/gemini"
	"github.com/spigell/interview-coach/internal/ai/openai"
	"github.com/spigell/interview-coach/internal/headhunter"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/secrets"
)

const (
	providerOpenAI = "openai"
	providerGemini = "gemini"
)

// apiKeyEnv lists the variables checked for each provider's key. GROK_API_KEY
// is a common misspelling of the Groq variable and is accepted as well.
var apiKeyEnv = map[string][]string{
	providerOpenAI: {"GROQ_API_KEY", "GROK_API_KEY", "OPENAI_API_KEY"},
	providerGemini: {"GEMINI_API_KEY"},
}

type deps struct {
	logger  *zap.Logger
	config  *Config
	machine *interview.Machine
}

// setup builds the logger, config and interview machine. Any configuration
// problem is fatal: nothing is shown to the user before it is resolved.
func setup(ctx context.Context) *deps {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the interview-coach", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	completer, err := newCompleter(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the completion client", zap.Error(err),
			zap.String("hint", "set GROQ_API_KEY, OPENAI_API_KEY or GEMINI_API_KEY, or ai.api-key-file in the configuration file"),
		)
	}

	questions, err := newQuestionProvider(config, completer)
	if err != nil {
		logger.Fatal("building the question provider", zap.Error(err))
	}

	machine := interview.NewMachine(questions, completer, interview.Config{
		TopicQuestions:      config.Interview.TopicQuestions,
		ResumeQuestions:     config.Interview.ResumeQuestions,
		EvaluationMaxTokens: config.Interview.EvaluationMaxTokens,
		Temperature:         config.AI.Temperature,
	}, logger)

	logger.Info("interview machine ready",
		zap.String("question_source", questions.Name()),
		zap.Int("topic_questions", machine.TotalQuestions(interview.ModeTopic)),
		zap.Int("resume_questions", machine.TotalQuestions(interview.ModeResume)),
	)

	return &deps{logger: logger, config: config, machine: machine}
}

func newCompleter(ctx context.Context, cfg *AIConfig, log *zap.Logger) (*ai.Adapter, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" || provider == "groq" {
		provider = providerOpenAI
	}

	envs, ok := apiKeyEnv[provider]
	if !ok {
		return nil, &ai.ConfigError{Provider: cfg.Provider, Reason: "unsupported provider, use openai or gemini"}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  provider + " api key",
		File:  cfg.APIKeyFile,
		Value: cfg.APIKey,
		Env:   envs,
	})
	if err != nil {
		return nil, &ai.ConfigError{Provider: provider, Reason: err.Error()}
	}

	var backend ai.Backend
	switch provider {
	case providerGemini:
		backend, err = gemini.NewGenerator(ctx, apiKey, cfg.Model)
	default:
		backend, err = openai.New(ctx, openai.Config{
			APIKey:  apiKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	}
	if err != nil {
		return nil, err
	}

	return ai.NewAdapter(backend, ai.AdapterConfig{
		Timeout:      cfg.Timeout,
		MaxLogLength: cfg.MaxLogLength,
	}, log)
}

func newQuestionProvider(config *Config, completer ai.Completer) (interview.QuestionProvider, error) {
	cfg := config.Interview

	switch strings.ToLower(strings.TrimSpace(cfg.QuestionSource)) {
	case "", interview.SourceModel:
		return interview.NewModelGenerated(completer, config.AI.MaxTokens, config.AI.Temperature), nil
	case interview.SourceBank:
		bank, err := interview.DefaultBank()
		if err != nil {
			return nil, fmt.Errorf("default question bank: %w", err)
		}

		if cfg.QuestionBankFile != "" {
			fromFile, err := interview.LoadBankFile(cfg.QuestionBankFile)
			if err != nil {
				return nil, err
			}
			bank = bank.Merge(fromFile)
		}

		if len(cfg.QuestionBank) > 0 {
			fromConfig, err := interview.BankFromMap(cfg.QuestionBank)
			if err != nil {
				return nil, fmt.Errorf("interview.question-bank: %w", err)
			}
			bank = bank.Merge(fromConfig)
		}

		return interview.NewStaticBank(bank, nil), nil
	default:
		return nil, fmt.Errorf("unknown question source %q, use %s or %s", cfg.QuestionSource, interview.SourceModel, interview.SourceBank)
	}
}

// hhResumeText loads the resume named title from hh.ru.
func hhResumeText(ctx context.Context, config *Config, title string, log *zap.Logger) (string, error) {
	token, err := secrets.Load(secrets.Source{
		Name: "headhunter token",
		File: config.HH.TokenFile,
	})
	if err != nil {
		return "", fmt.Errorf("%w (set HH_TOKEN_FILE or hh.token-file)", err)
	}

	hh := headhunter.New(ctx, log, token)
	if config.HH.UserAgent != "" {
		hh.UserAgent = config.HH.UserAgent
	}

	return hh.ResumeText(title)
}

func redacted(config *Config) *Config {
	c := *config
	aiCfg := *config.AI
	if aiCfg.APIKey != "" {
		aiCfg.APIKey = "<redacted>"
	}
	c.AI = &aiCfg
	return &c
}
