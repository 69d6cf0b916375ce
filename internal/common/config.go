package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/quote-compare/constants"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Extraction ExtractionConfig
	LLM        LLMConfig
	Heuristics HeuristicsConfig
	Upload     UploadConfig
	Auth       AuthConfig
	Storage    StorageConfig
	Report     ReportConfig
	LogLevel   slog.Level
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	GRPCHealthAddr  string // empty disables the gRPC health listener
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database-related configuration. DSN selects postgres,
// SQLitePath selects sqlite; neither means the in-memory store.
type DatabaseConfig struct {
	DSN              string
	SQLitePath       string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ExtractionConfig covers the hosted extraction backend and the local fallback.
type ExtractionConfig struct {
	WhispererAPIKey  string
	WhispererBaseURL string
	Modes            []string
	PollInterval     time.Duration
	MaxPolls         int
	ModeTimeout      time.Duration
	LocalOnly        bool
	MinTextChars     int

	Pdftotext   string
	Pdftoppm    string
	Tesseract   string
	TessdataDir string
	MaxPages    int
}

// LLMConfig holds structured-extraction provider configuration
type LLMConfig struct {
	Enabled        bool
	Timeout        time.Duration
	MaxPromptChars int
	Temperature    float32

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	AnthropicAPIKey string
	AnthropicModel  string

	GeminiAPIKey string
	GeminiModel  string
}

// HeuristicsConfig points at optional plausibility-rule overrides.
type HeuristicsConfig struct {
	RulesFile string
}

// UploadConfig bounds uploads and batch processing.
type UploadConfig struct {
	MaxFileSize       int64
	MaxFiles          int
	Concurrency       int
	ProcessingTimeout time.Duration
}

// AuthConfig configures bearer-token verification.
type AuthConfig struct {
	StaticToken string
	TokenBcrypt string
	JWTSecret   string
}

// StorageConfig selects where rendered reports live.
type StorageConfig struct {
	Type         string // "local" | "s3"
	LocalPath    string
	S3Bucket     string
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
}

// ReportConfig configures report generation.
type ReportConfig struct {
	AutoGenerate  bool
	Workers       int
	PublicBaseURL string
	Timeout       time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8000"),
			GRPCHealthAddr:  getEnv("GRPC_HEALTH_ADDR", ":8081"),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 60*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 6*time.Minute),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			SQLitePath:       getEnv("SQLITE_PATH", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Extraction: ExtractionConfig{
			WhispererAPIKey:  getEnv("LLMWHISPERER_API_KEY", getEnv("LLM_API_KEY", "")),
			WhispererBaseURL: getEnv("LLMWHISPERER_BASE_URL", "https://llmwhisperer-api.us-central.unstract.com/api/v2"),
			Modes:            getEnvAsList("LLMWHISPERER_MODES", []string{"high_quality", "low_cost", "form", "native_text"}),
			PollInterval:     getEnvAsDuration("LLMWHISPERER_POLL_INTERVAL", 2*time.Second),
			MaxPolls:         getEnvAsInt("LLMWHISPERER_MAX_POLLS", 60),
			ModeTimeout:      getEnvAsDuration("LLMWHISPERER_MODE_TIMEOUT", 150*time.Second),
			LocalOnly:        getEnvAsBool("LOCAL_PROCESSING_ONLY", false),
			MinTextChars:     getEnvAsInt("MIN_TEXT_CHARS", 100),
			Pdftotext:        getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:         getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:        getEnv("TESSERACT_BIN", "tesseract"),
			TessdataDir:      getEnv("TESSDATA_PREFIX", ""),
			MaxPages:         getEnvAsInt("OCR_MAX_PAGES", 20),
		},
		LLM: LLMConfig{
			Enabled:         getEnvAsBool("LLM_ENABLED", true),
			Timeout:         getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
			MaxPromptChars:  getEnvAsInt("LLM_MAX_PROMPT_CHARS", 4000),
			Temperature:     getEnvAsFloat32("LLM_TEMPERATURE", 0.1),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
			GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		},
		Heuristics: HeuristicsConfig{
			RulesFile: getEnv("HEURISTICS_RULES_FILE", ""),
		},
		Upload: UploadConfig{
			MaxFileSize:       getEnvAsInt64("MAX_FILE_SIZE", constants.MaxFileSizeDefault),
			MaxFiles:          getEnvAsInt("MAX_FILES", constants.MaxFilesDefault),
			Concurrency:       getEnvAsInt("UPLOAD_CONCURRENCY", 5),
			ProcessingTimeout: getEnvAsDuration("PROCESSING_TIMEOUT", 300*time.Second),
		},
		Auth: AuthConfig{
			StaticToken: getEnv("AUTH_TOKEN", ""),
			TokenBcrypt: getEnv("AUTH_TOKEN_BCRYPT", ""),
			JWTSecret:   getEnv("AUTH_JWT_SECRET", ""),
		},
		Storage: StorageConfig{
			Type:         getEnv("STORAGE_TYPE", "local"),
			LocalPath:    getEnv("STORAGE_LOCAL_PATH", "./reports"),
			S3Bucket:     getEnv("AWS_S3_BUCKET", ""),
			S3Region:     getEnv("AWS_REGION", "us-east-1"),
			AWSAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			AWSSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Report: ReportConfig{
			AutoGenerate:  getEnvAsBool("REPORT_AUTO_GENERATE", false),
			Workers:       getEnvAsInt("REPORT_WORKERS", 2),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
			Timeout:       getEnvAsDuration("REPORT_TIMEOUT", time.Minute),
		},
		LogLevel: getEnvAsLogLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvAsLogLevel(key string, defaultValue slog.Level) slog.Level {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(value)); err != nil {
		return defaultValue
	}
	return lvl
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError(CodeConfig, "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Auth.StaticToken == "" && c.Auth.TokenBcrypt == "" && c.Auth.JWTSecret == "" {
		return NewAppError(CodeConfig, "one of AUTH_TOKEN, AUTH_TOKEN_BCRYPT or AUTH_JWT_SECRET is required", ErrInvalidInput)
	}
	if c.Upload.MaxFileSize <= 0 {
		return NewAppError(CodeConfig, "MAX_FILE_SIZE must be positive", ErrInvalidInput)
	}
	if c.Upload.MaxFiles <= 0 {
		return NewAppError(CodeConfig, "MAX_FILES must be positive", ErrInvalidInput)
	}
	if c.Extraction.MaxPolls <= 0 || c.Extraction.PollInterval <= 0 {
		return NewAppError(CodeConfig, "LLMWHISPERER_MAX_POLLS and LLMWHISPERER_POLL_INTERVAL must be positive", ErrInvalidInput)
	}
	switch c.Storage.Type {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return NewAppError(CodeConfig, "AWS_S3_BUCKET is required for s3 storage", ErrInvalidInput)
		}
	default:
		return NewAppError(CodeConfig, "STORAGE_TYPE must be local or s3", ErrInvalidInput)
	}
	if c.Database.DSN != "" && c.Database.SQLitePath != "" {
		return NewAppError(CodeConfig, "set either DB_URL or SQLITE_PATH, not both", ErrInvalidInput)
	}
	return nil
}

// LLMProviders returns the configured structured-extraction providers in fallback order.
func (c *Config) LLMProviders() []string {
	if !c.LLM.Enabled {
		return nil
	}
	var out []string
	if c.LLM.OpenAIAPIKey != "" {
		out = append(out, "openai")
	}
	if c.LLM.AnthropicAPIKey != "" {
		out = append(out, "anthropic")
	}
	if c.LLM.GeminiAPIKey != "" {
		out = append(out, "gemini")
	}
	return out
}
