package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"propcheck/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Analyzer   AnalyzerConfig
	Resilience ResilienceConfig
	Upload     UploadConfig
	S3         S3Config
	Log        LogConfig
	CORS       CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// AnalyzerConfig holds settings for the remote document-understanding model.
type AnalyzerConfig struct {
	Provider        string  `mapstructure:"provider"`
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	Endpoint        string  `mapstructure:"endpoint"`
	Temperature     float64 `mapstructure:"temperature"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
	TimeoutSecs     int     `mapstructure:"timeout_secs"`
}

// Timeout returns the per-analysis deadline.
func (a *AnalyzerConfig) Timeout() time.Duration {
	if a.TimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(a.TimeoutSecs) * time.Second
}

// ResilienceConfig holds the optional retry, circuit breaker and rate limit policy
// wrapped around the analyzer. MaxRetries 0 sends exactly one request per analysis.
type ResilienceConfig struct {
	MaxRetries         int           `mapstructure:"max_retries"`
	InitialBackoff     time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff         time.Duration `mapstructure:"max_backoff"`
	BreakerEnabled     bool          `mapstructure:"breaker_enabled"`
	BreakerMinRequests uint32        `mapstructure:"breaker_min_requests"`
	BreakerFailRatio   float64       `mapstructure:"breaker_failure_ratio"`
	BreakerOpenTimeout time.Duration `mapstructure:"breaker_open_timeout"`
	RequestsPerMinute  int           `mapstructure:"requests_per_minute"`
}

// Enabled reports whether any resilience feature is switched on.
func (r *ResilienceConfig) Enabled() bool {
	return r.MaxRetries > 0 || r.BreakerEnabled || r.RequestsPerMinute > 0
}

// UploadConfig holds upload validation settings.
type UploadConfig struct {
	MaxFileSizeMB    int64 `mapstructure:"max_file_size_mb"`
	EnforceSizeLimit bool  `mapstructure:"enforce_size_limit"`
}

// MaxBytes returns the size limit in bytes, or 0 when the limit is not enforced.
func (u *UploadConfig) MaxBytes() int64 {
	if !u.EnforceSizeLimit || u.MaxFileSizeMB <= 0 {
		return 0
	}
	return u.MaxFileSizeMB * 1024 * 1024
}

// S3Config holds settings for the optional S3 document source.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Enabled   bool   `mapstructure:"enabled"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the PROPCHECK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PROPCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.environment", "development")

	// Analyzer defaults
	v.SetDefault("analyzer.provider", "gemini")
	v.SetDefault("analyzer.api_key", "")
	v.SetDefault("analyzer.model", "gemini-2.5-flash")
	v.SetDefault("analyzer.endpoint", "")
	v.SetDefault("analyzer.temperature", 0.2)
	v.SetDefault("analyzer.max_output_tokens", 16384)
	v.SetDefault("analyzer.timeout_secs", 120)

	// Resilience defaults (off: one request per analysis)
	v.SetDefault("resilience.max_retries", 0)
	v.SetDefault("resilience.initial_backoff", "500ms")
	v.SetDefault("resilience.max_backoff", "8s")
	v.SetDefault("resilience.breaker_enabled", false)
	v.SetDefault("resilience.breaker_min_requests", 5)
	v.SetDefault("resilience.breaker_failure_ratio", 0.6)
	v.SetDefault("resilience.breaker_open_timeout", "30s")
	v.SetDefault("resilience.requests_per_minute", 0)

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 20)
	v.SetDefault("upload.enforce_size_limit", true)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.enabled", false)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                      "PROPCHECK_SERVER_PORT",
		"server.read_timeout":              "PROPCHECK_SERVER_READ_TIMEOUT",
		"server.write_timeout":             "PROPCHECK_SERVER_WRITE_TIMEOUT",
		"server.shutdown_timeout":          "PROPCHECK_SERVER_SHUTDOWN_TIMEOUT",
		"server.environment":               "PROPCHECK_SERVER_ENVIRONMENT",
		"analyzer.provider":                "PROPCHECK_ANALYZER_PROVIDER",
		"analyzer.api_key":                 "PROPCHECK_ANALYZER_API_KEY",
		"analyzer.model":                   "PROPCHECK_ANALYZER_MODEL",
		"analyzer.endpoint":                "PROPCHECK_ANALYZER_ENDPOINT",
		"analyzer.temperature":             "PROPCHECK_ANALYZER_TEMPERATURE",
		"analyzer.max_output_tokens":       "PROPCHECK_ANALYZER_MAX_OUTPUT_TOKENS",
		"analyzer.timeout_secs":            "PROPCHECK_ANALYZER_TIMEOUT_SECS",
		"resilience.max_retries":           "PROPCHECK_RESILIENCE_MAX_RETRIES",
		"resilience.initial_backoff":       "PROPCHECK_RESILIENCE_INITIAL_BACKOFF",
		"resilience.max_backoff":           "PROPCHECK_RESILIENCE_MAX_BACKOFF",
		"resilience.breaker_enabled":       "PROPCHECK_RESILIENCE_BREAKER_ENABLED",
		"resilience.breaker_min_requests":  "PROPCHECK_RESILIENCE_BREAKER_MIN_REQUESTS",
		"resilience.breaker_failure_ratio": "PROPCHECK_RESILIENCE_BREAKER_FAILURE_RATIO",
		"resilience.breaker_open_timeout":  "PROPCHECK_RESILIENCE_BREAKER_OPEN_TIMEOUT",
		"resilience.requests_per_minute":   "PROPCHECK_RESILIENCE_REQUESTS_PER_MINUTE",
		"upload.max_file_size_mb":          "PROPCHECK_UPLOAD_MAX_FILE_SIZE_MB",
		"upload.enforce_size_limit":        "PROPCHECK_UPLOAD_ENFORCE_SIZE_LIMIT",
		"s3.region":                        "PROPCHECK_S3_REGION",
		"s3.bucket":                        "PROPCHECK_S3_BUCKET",
		"s3.endpoint":                      "PROPCHECK_S3_ENDPOINT",
		"s3.access_key":                    "PROPCHECK_S3_ACCESS_KEY",
		"s3.secret_key":                    "PROPCHECK_S3_SECRET_KEY",
		"s3.enabled":                       "PROPCHECK_S3_ENABLED",
		"log.level":                        "PROPCHECK_LOG_LEVEL",
		"log.format":                       "PROPCHECK_LOG_FORMAT",
		"cors.allowed_origins":             "PROPCHECK_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if PROPCHECK_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PROPCHECK_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
	}

	// Fall back to the key names used by existing deployments and the Gemini SDKs.
	apiKey := v.GetString("analyzer.api_key")
	for _, env := range []string{"GEMINI_API_KEY", "API_KEY"} {
		if apiKey != "" {
			break
		}
		apiKey = os.Getenv(env)
	}

	cfg.Analyzer = AnalyzerConfig{
		Provider:        v.GetString("analyzer.provider"),
		APIKey:          apiKey,
		Model:           v.GetString("analyzer.model"),
		Endpoint:        v.GetString("analyzer.endpoint"),
		Temperature:     v.GetFloat64("analyzer.temperature"),
		MaxOutputTokens: v.GetInt("analyzer.max_output_tokens"),
		TimeoutSecs:     v.GetInt("analyzer.timeout_secs"),
	}
	cfg.Resilience = ResilienceConfig{
		MaxRetries:         v.GetInt("resilience.max_retries"),
		InitialBackoff:     v.GetDuration("resilience.initial_backoff"),
		MaxBackoff:         v.GetDuration("resilience.max_backoff"),
		BreakerEnabled:     v.GetBool("resilience.breaker_enabled"),
		BreakerMinRequests: v.GetUint32("resilience.breaker_min_requests"),
		BreakerFailRatio:   v.GetFloat64("resilience.breaker_failure_ratio"),
		BreakerOpenTimeout: v.GetDuration("resilience.breaker_open_timeout"),
		RequestsPerMinute:  v.GetInt("resilience.requests_per_minute"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB:    v.GetInt64("upload.max_file_size_mb"),
		EnforceSizeLimit: v.GetBool("upload.enforce_size_limit"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		Enabled:   v.GetBool("s3.enabled"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}

// Validate checks settings without which the service cannot run.
func (c *Config) Validate() error {
	if c.Analyzer.APIKey == "" {
		return domain.ErrMissingAPIKey
	}
	if c.Analyzer.Temperature < 0 || c.Analyzer.Temperature > 2 {
		return fmt.Errorf("analyzer temperature %.2f out of range [0,2]", c.Analyzer.Temperature)
	}
	if c.Resilience.MaxRetries < 0 {
		return fmt.Errorf("resilience max_retries must not be negative")
	}
	return nil
}
