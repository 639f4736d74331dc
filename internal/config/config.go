// Package config provides application configuration through environment variables.
//
// Load reads the environment (after merging the nearest .env file), coerces and
// defaults every value, and validates the result. Any failure is collected per
// variable; callers must not start serving with a config that failed to load.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	apperrors "github.com/aicoder/backend/internal/errors"
	appvalidation "github.com/aicoder/backend/internal/validation"
)

// Environment is the runtime mode of the process.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTest        Environment = "test"
	EnvProduction  Environment = "production"
)

// EncryptionKeySize is the length in bytes of the AES-256 key supplied via ENCRYPTION_KEY.
const EncryptionKeySize = 32

// MinSecretLength is the minimum length of signing secrets (JWT_SECRET, JWT_REFRESH_SECRET).
const MinSecretLength = 32

// Credential prefixes of the AI providers.
const (
	OpenAIKeyPrefix    = "sk-"
	AnthropicKeyPrefix = "sk-ant-"
)

// ErrInvalidConfig is returned by Load when one or more variables fail validation.
// The wrapped validation.Errors can be listed with FieldErrors.
var ErrInvalidConfig = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid configuration")

// Config holds all application configuration.
type Config struct {
	// Environment is the runtime mode (development, test, production).
	Environment Environment

	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int
	// FrontendURL is the only origin allowed by CORS.
	FrontendURL string
	// ShutdownTimeout bounds graceful shutdown of the servers.
	ShutdownTimeout time.Duration

	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// RedisURL is the Redis connection URL.
	RedisURL string

	// JWTSecret signs access tokens.
	JWTSecret string
	// JWTRefreshSecret signs refresh tokens.
	JWTRefreshSecret string
	// BcryptRounds is the bcrypt cost used for password hashing.
	BcryptRounds int

	// OpenAIAPIKey is the OpenAI credential (sk-...).
	OpenAIAPIKey string
	// AnthropicAPIKey is the Anthropic credential (sk-ant-...).
	AnthropicAPIKey string

	// RateLimitMax is the number of requests allowed per client IP per window.
	RateLimitMax int
	// RateLimitWindowMS is the rate limit window in milliseconds.
	RateLimitWindowMS int

	// UploadPath is the directory for uploaded files.
	UploadPath string
	// MaxFileSize is the maximum accepted request body size in bytes.
	MaxFileSize int

	// GitSigningKey is an optional commit signing key.
	GitSigningKey string
	// GitUserName is the committer name.
	GitUserName string
	// GitUserEmail is the committer email.
	GitUserEmail string

	// EncryptionKey is the hex-encoded key (or hex-encoded KMS ciphertext when KMSKeyURI is set).
	// Required in production.
	EncryptionKey string
	// KMSKeyURI optionally points at the KMS key that wraps EncryptionKey.
	KMSKeyURI string

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file and validates it.
// On failure the returned error wraps ErrInvalidConfig and lists every invalid variable.
func Load() (*Config, error) {
	// Try to load .env file recursively
	loadDotEnv()

	p := &parser{errs: validation.Errors{}}

	cfg := &Config{
		Environment: p.environment(),

		// Server configuration
		ServerHost:      env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:      p.int("PORT", 3001),
		FrontendURL:     env.GetString("FRONTEND_URL", ""),
		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT_SECONDS", 10, time.Second),

		// Database configuration
		DatabaseURL:          env.GetString("DATABASE_URL", ""),
		DBMaxOpenConnections: p.int("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: p.int("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    p.duration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Redis
		RedisURL: env.GetString("REDIS_URL", ""),

		// Authentication
		JWTSecret:        env.GetString("JWT_SECRET", ""),
		JWTRefreshSecret: env.GetString("JWT_REFRESH_SECRET", ""),
		BcryptRounds:     p.int("BCRYPT_ROUNDS", 12),

		// AI providers
		OpenAIAPIKey:    env.GetString("OPENAI_API_KEY", ""),
		AnthropicAPIKey: env.GetString("ANTHROPIC_API_KEY", ""),

		// Rate limiting
		RateLimitMax:      p.int("RATE_LIMIT_MAX", 100),
		RateLimitWindowMS: p.int("RATE_LIMIT_WINDOW_MS", 900000),

		// File upload
		UploadPath:  env.GetString("UPLOAD_PATH", "./uploads"),
		MaxFileSize: p.int("MAX_FILE_SIZE", 10485760),

		// Git
		GitSigningKey: env.GetString("GIT_SIGNING_KEY", ""),
		GitUserName:   env.GetString("GIT_USER_NAME", "AI Coder Bot"),
		GitUserEmail:  env.GetString("GIT_USER_EMAIL", ""),

		// Encryption
		EncryptionKey: strings.TrimSpace(env.GetString("ENCRYPTION_KEY", "")),
		KMSKeyURI:     env.GetString("KMS_KEY_URI", ""),

		// Logging
		LogLevel: strings.ToLower(env.GetString("LOG_LEVEL", "info")),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "aicoder"),
		MetricsPort:      p.int("METRICS_PORT", 9090),
	}

	errs := cfg.validate()
	// Coercion failures win over range checks on the defaulted value.
	for key, err := range p.errs {
		errs[key] = err
	}

	if err := errs.Filter(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// Validate checks every field and returns validation.Errors keyed by environment
// variable name, or nil.
func (c *Config) Validate() error {
	return c.validate().Filter()
}

func (c *Config) validate() validation.Errors {
	encryptionKeyRules := []validation.Rule{
		validation.When(
			c.Environment == EnvProduction,
			validation.Required.Error("is required in production"),
		),
	}
	if c.KMSKeyURI == "" {
		encryptionKeyRules = append(encryptionKeyRules, appvalidation.HexKey(EncryptionKeySize))
	} else {
		encryptionKeyRules = append(encryptionKeyRules, appvalidation.Hex)
	}

	return validation.Errors{
		"APP_ENV": validation.Validate(
			string(c.Environment),
			validation.In(string(EnvDevelopment), string(EnvTest), string(EnvProduction)).
				Error("must be one of development, test, production"),
		),
		"SERVER_HOST": validation.Validate(c.ServerHost, validation.Required.Error("is required")),
		"PORT":        validation.Validate(c.ServerPort, appvalidation.IntRange(1, 65535)),
		"FRONTEND_URL": validation.Validate(
			c.FrontendURL,
			validation.Required.Error("is required"),
			appvalidation.URL("http", "https"),
		),
		"SHUTDOWN_TIMEOUT_SECONDS": validation.Validate(
			int(c.ShutdownTimeout/time.Second),
			appvalidation.IntMin(1),
		),
		"DATABASE_URL": validation.Validate(
			c.DatabaseURL,
			validation.Required.Error("is required"),
			appvalidation.URL("postgres", "postgresql"),
		),
		"DB_MAX_OPEN_CONNECTIONS": validation.Validate(c.DBMaxOpenConnections, appvalidation.IntMin(1)),
		"DB_MAX_IDLE_CONNECTIONS": validation.Validate(c.DBMaxIdleConnections, appvalidation.IntMin(0)),
		"DB_CONN_MAX_LIFETIME": validation.Validate(
			int(c.DBConnMaxLifetime/time.Minute),
			appvalidation.IntMin(1),
		),
		"REDIS_URL": validation.Validate(
			c.RedisURL,
			validation.Required.Error("is required"),
			appvalidation.URL("redis", "rediss"),
		),
		"JWT_SECRET": validation.Validate(
			c.JWTSecret,
			validation.Required.Error("is required"),
			validation.RuneLength(MinSecretLength, 0).
				Error(fmt.Sprintf("must be at least %d characters", MinSecretLength)),
		),
		"JWT_REFRESH_SECRET": validation.Validate(
			c.JWTRefreshSecret,
			validation.Required.Error("is required"),
			validation.RuneLength(MinSecretLength, 0).
				Error(fmt.Sprintf("must be at least %d characters", MinSecretLength)),
		),
		"BCRYPT_ROUNDS": validation.Validate(c.BcryptRounds, appvalidation.IntRange(10, 15)),
		"OPENAI_API_KEY": validation.Validate(
			c.OpenAIAPIKey,
			validation.Required.Error("is required"),
			appvalidation.NoWhitespace,
			appvalidation.HasPrefix(OpenAIKeyPrefix, "invalid OpenAI API key format"),
		),
		"ANTHROPIC_API_KEY": validation.Validate(
			c.AnthropicAPIKey,
			validation.Required.Error("is required"),
			appvalidation.NoWhitespace,
			appvalidation.HasPrefix(AnthropicKeyPrefix, "invalid Anthropic API key format"),
		),
		"RATE_LIMIT_MAX":       validation.Validate(c.RateLimitMax, appvalidation.IntMin(1)),
		"RATE_LIMIT_WINDOW_MS": validation.Validate(c.RateLimitWindowMS, appvalidation.IntMin(1)),
		"MAX_FILE_SIZE":        validation.Validate(c.MaxFileSize, appvalidation.IntMin(1)),
		"GIT_USER_EMAIL": validation.Validate(
			c.GitUserEmail,
			validation.Required.Error("is required"),
			appvalidation.Email.Error("invalid git user email"),
		),
		"ENCRYPTION_KEY": validation.Validate(c.EncryptionKey, encryptionKeyRules...),
		"LOG_LEVEL": validation.Validate(
			c.LogLevel,
			validation.In("debug", "info", "warn", "error").Error("must be one of debug, info, warn, error"),
		),
		"METRICS_PORT": validation.Validate(
			c.MetricsPort,
			validation.When(c.MetricsEnabled, appvalidation.IntRange(1, 65535)),
		),
	}
}

// FieldErrors returns one "VARIABLE: message" line per invalid variable, sorted by
// variable name. It returns nil if err carries no field errors.
func FieldErrors(err error) []string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil
	}

	keys := make([]string, 0, len(errs))
	for key, fieldErr := range errs {
		if fieldErr != nil {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", key, errs[key].Error()))
	}
	return lines
}

// IsProduction reports whether the process runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// RateLimitWindow returns the rate limit window as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMS) * time.Millisecond
}

// HasAIProvider reports whether at least one AI credential carries its provider prefix.
func (c *Config) HasAIProvider() bool {
	return strings.HasPrefix(c.OpenAIAPIKey, OpenAIKeyPrefix) ||
		strings.HasPrefix(c.AnthropicAPIKey, AnthropicKeyPrefix)
}

// GetGinMode returns the appropriate Gin mode based on log level and environment.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" && c.IsDevelopment() {
		return "debug"
	}
	return "release"
}

// parser coerces integer variables and records coercion failures by variable name.
type parser struct {
	errs validation.Errors
}

func lookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func (p *parser) int(key string, defaultValue int) int {
	raw := lookup(key)
	if raw == "" {
		return defaultValue
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
		p.errs[key] = validation.NewError("validation_is_int", "must be an integer")
		return defaultValue
	}
	return int(n)
}

// duration reads a count of unit. Counts that would overflow time.Duration are
// rejected before conversion; counts below one yield zero for validate to report.
func (p *parser) duration(key string, defaultValue int, unit time.Duration) time.Duration {
	raw := lookup(key)
	if raw == "" {
		return time.Duration(defaultValue) * unit
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.errs[key] = validation.NewError("validation_is_int", "must be an integer")
		return time.Duration(defaultValue) * unit
	}

	limit := int64(math.MaxInt64 / unit)
	if n > limit {
		p.errs[key] = validation.NewError("validation_int_max", fmt.Sprintf("must be at most %d", limit))
		return time.Duration(defaultValue) * unit
	}
	if n < 1 {
		return 0
	}
	return time.Duration(n) * unit
}

// environment reads APP_ENV and falls back to NODE_ENV. When both are set they
// must agree.
func (p *parser) environment() Environment {
	appEnv := strings.ToLower(lookup("APP_ENV"))
	nodeEnv := strings.ToLower(lookup("NODE_ENV"))

	switch {
	case appEnv == "" && nodeEnv == "":
		return EnvDevelopment
	case appEnv == "":
		return Environment(nodeEnv)
	case nodeEnv != "" && nodeEnv != appEnv:
		p.errs["APP_ENV"] = validation.NewError(
			"validation_env_conflict",
			fmt.Sprintf("conflicts with NODE_ENV=%s", nodeEnv),
		)
	}
	return Environment(appEnv)
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
