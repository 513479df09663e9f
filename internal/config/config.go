package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DevJWTSecret signs tokens in development and test when JWT_SECRET is unset.
// It is public and must never be used in production.
const DevJWTSecret = "eventreg-development-secret-do-not-use"

type Config struct {
	Server      ServerConfig  `yaml:"server"`
	Auth        AuthConfig    `yaml:"auth"`
	Logging     LoggingConfig `yaml:"logging"`
	Email       EmailConfig   `yaml:"email"`
	CORS        CORSConfig    `yaml:"cors"`
	Tracing     TracingConfig `yaml:"tracing"`
	Environment string        `yaml:"environment"`
}

type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	JWTExpiry time.Duration `yaml:"jwt_expiry"`
	JWTIssuer string        `yaml:"jwt_issuer"`
	// InsecureDefaultSecret is set when DevJWTSecret was substituted for a missing JWT_SECRET.
	InsecureDefaultSecret bool `yaml:"-"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type EmailConfig struct {
	// Provider is one of "log", "smtp" or "resend". Empty selects by environment.
	Provider     string        `yaml:"provider"`
	From         string        `yaml:"from"`
	SMTPHost     string        `yaml:"smtp_host"`
	SMTPPort     int           `yaml:"smtp_port"`
	SMTPUser     string        `yaml:"smtp_user"`
	SMTPPassword string        `yaml:"smtp_password"`
	ResendAPIKey string        `yaml:"resend_api_key"`
	Timeout      time.Duration `yaml:"timeout"`
}

type CORSConfig struct {
	AllowAllOrigins bool     `yaml:"allow_all_origins"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

const (
	EmailProviderLog    = "log"
	EmailProviderSMTP   = "smtp"
	EmailProviderResend = "resend"
)

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    3000,
			BaseURL: "http://localhost:3000",
		},
		Auth: AuthConfig{
			JWTExpiry: 24 * time.Hour,
			JWTIssuer: "eventreg",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Email: EmailConfig{
			From:     `"Event Management" <noreply@eventmanagement.com>`,
			SMTPPort: 587,
			Timeout:  10 * time.Second,
		},
		Tracing: TracingConfig{
			Exporter:    "stdout",
			ServiceName: "eventreg",
			SampleRate:  1.0,
		},
		Environment: "development",
	}
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile reads an optional YAML file and then applies environment overrides.
func LoadFile(path string) (Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", getEnvInt("PORT", cfg.Server.Port))
	cfg.Server.BaseURL = getEnv("SERVER_BASE_URL", cfg.Server.BaseURL)

	cfg.Environment = getEnv("ENVIRONMENT", getEnv("NODE_ENV", cfg.Environment))

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	if hours := getEnvInt("JWT_EXPIRY_HOURS", 0); hours > 0 {
		cfg.Auth.JWTExpiry = time.Duration(hours) * time.Hour
	}
	cfg.Auth.JWTIssuer = getEnv("JWT_ISSUER", cfg.Auth.JWTIssuer)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Email.Provider = strings.ToLower(getEnv("EMAIL_PROVIDER", cfg.Email.Provider))
	cfg.Email.From = getEnv("EMAIL_FROM", cfg.Email.From)
	cfg.Email.SMTPHost = getEnv("EMAIL_HOST", cfg.Email.SMTPHost)
	cfg.Email.SMTPPort = getEnvInt("EMAIL_PORT", cfg.Email.SMTPPort)
	cfg.Email.SMTPUser = getEnv("EMAIL_USER", cfg.Email.SMTPUser)
	cfg.Email.SMTPPassword = getEnv("EMAIL_PASS", cfg.Email.SMTPPassword)
	cfg.Email.ResendAPIKey = getEnv("RESEND_API_KEY", cfg.Email.ResendAPIKey)
	if secs := getEnvInt("EMAIL_TIMEOUT_SECONDS", 0); secs > 0 {
		cfg.Email.Timeout = time.Duration(secs) * time.Second
	}

	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.CORS.AllowedOrigins = splitList(origins)
	}
	cfg.CORS.AllowAllOrigins = getEnvBool("CORS_ALLOW_ALL", cfg.CORS.AllowAllOrigins || cfg.IsDevelopment())

	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = getEnv("TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.ServiceName = getEnv("TRACING_SERVICE_NAME", cfg.Tracing.ServiceName)
	cfg.Tracing.OTLPEndpoint = getEnv("TRACING_OTLP_ENDPOINT", cfg.Tracing.OTLPEndpoint)
	cfg.Tracing.SampleRate = getEnvFloat("TRACING_SAMPLE_RATE", cfg.Tracing.SampleRate)

	if cfg.Email.Provider == "" {
		cfg.Email.Provider = defaultEmailProvider(cfg)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET is required in %s", c.Environment)
		}
		c.Auth.JWTSecret = DevJWTSecret
		c.Auth.InsecureDefaultSecret = true
	}
	if c.Auth.JWTExpiry <= 0 {
		return fmt.Errorf("JWT expiry must be positive")
	}
	switch c.Email.Provider {
	case EmailProviderLog:
	case EmailProviderSMTP:
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("EMAIL_HOST is required for smtp email provider")
		}
	case EmailProviderResend:
		if c.Email.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required for resend email provider")
		}
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER %q (must be log, smtp or resend)", c.Email.Provider)
	}
	if c.Environment == "production" && !c.CORS.AllowAllOrigins && len(c.CORS.AllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS is required in production")
	}
	return nil
}

// IsDevelopment reports whether the environment tolerates development defaults.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "test"
}

// Test and development without an SMTP host get the logging transport.
func defaultEmailProvider(cfg Config) string {
	if cfg.Environment == "test" {
		return EmailProviderLog
	}
	if cfg.Environment == "development" && cfg.Email.SMTPHost == "" {
		return EmailProviderLog
	}
	return EmailProviderSMTP
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
