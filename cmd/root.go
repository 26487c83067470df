package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "interview-coach"
)

type Config struct {
	AI            *AIConfig        `mapstructure:"ai"`
	Interview     *InterviewConfig `mapstructure:"interview"`
	HH            *HHConfig        `mapstructure:"hh"`
	Serve         *ServeConfig     `mapstructure:"serve"`
	TranscriptDir string           `mapstructure:"transcript-dir"`
}

type AIConfig struct {
	// Provider is openai (any OpenAI-compatible endpoint, Groq by default) or gemini.
	Provider     string        `mapstructure:"provider"`
	Model        string        `mapstructure:"model"`
	BaseURL      string        `mapstructure:"base-url"`
	APIKey       string        `mapstructure:"api-key"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Temperature  *float32      `mapstructure:"temperature"`
	MaxTokens    int           `mapstructure:"max-tokens"`
	MaxLogLength int           `mapstructure:"max-log-length"`
}

type InterviewConfig struct {
	TopicQuestions      int            `mapstructure:"topic-questions"`
	ResumeQuestions     int            `mapstructure:"resume-questions"`
	EvaluationMaxTokens int            `mapstructure:"evaluation-max-tokens"`
	QuestionSource      string         `mapstructure:"question-source"`
	QuestionBank        map[string]any `mapstructure:"question-bank"`
	QuestionBankFile    string         `mapstructure:"question-bank-file"`
	Feedback            bool           `mapstructure:"feedback"`
}

type HHConfig struct {
	TokenFile string `mapstructure:"token-file"`
	Resume    string `mapstructure:"resume"`
	UserAgent string `mapstructure:"user-agent"`
}

type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interview-coach runs mock technical interviews against a hosted chat model",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// The .env file is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if err := viper.BindEnv("hh.token-file", "HH_TOKEN_FILE"); err != nil {
		log.Fatalf("binding HH_TOKEN_FILE environment variable: %v", err)
	}

	viper.SetDefault("ai.provider", providerOpenAI)
	viper.SetDefault("ai.timeout", "60s")
	viper.SetDefault("ai.max-tokens", 150)
	viper.SetDefault("interview.topic-questions", 5)
	viper.SetDefault("interview.resume-questions", 10)
	viper.SetDefault("interview.question-source", "model")
	viper.SetDefault("serve.addr", "127.0.0.1:8080")
	viper.SetDefault("transcript-dir", ".")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-coach.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("provider", "", "completion provider: openai or gemini")
	rootCmd.PersistentFlags().String("model", "", "model name, provider default when empty")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("ai.provider", rootCmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("ai.model", rootCmd.PersistentFlags().Lookup("model"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		// An explicitly given config must be readable.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.Interview == nil {
		config.Interview = &InterviewConfig{}
	}
	if config.HH == nil {
		config.HH = &HHConfig{}
	}
	if config.Serve == nil {
		config.Serve = &ServeConfig{}
	}

	return config, nil
}
