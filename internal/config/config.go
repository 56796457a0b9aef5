package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Twilio       TwilioConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	PublicBaseURL         string
	RequestTimeoutSeconds int
	CSRFEnabled           bool
	SecureCookies         bool
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines agent session parameters.
type AuthConfig struct {
	SessionSecret          string
	SessionTTLMinutes      int
	BcryptCost             int
	BootstrapAgentName     string
	BootstrapAgentEmail    string
	BootstrapAgentPassword string
}

// TwilioConfig holds the deployment-wide telephony credentials.
type TwilioConfig struct {
	AccountSID       string
	AuthToken        string
	ApplicationSID   string
	CallerID         string
	ValidateWebhooks bool
}

// NotificationConfig configures outbound event webhooks. An empty WebhookURL disables delivery.
type NotificationConfig struct {
	WebhookURL            string
	WebhookTimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "browser-calls"),
			Env:                   env,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			PublicBaseURL:         strings.TrimRight(os.Getenv("APP_PUBLIC_BASE_URL"), "/"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			CSRFEnabled:           getEnvAsBool("HTTP_CSRF_ENABLED", true),
			SecureCookies:         getEnvAsBool("HTTP_SECURE_COOKIES", env == "production"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			SessionSecret:          getEnv("AUTH_SESSION_SECRET", "dev-secret"),
			SessionTTLMinutes:      getEnvAsInt("AUTH_SESSION_TTL_MINUTES", 480),
			BcryptCost:             getEnvAsInt("AUTH_BCRYPT_COST", 12),
			BootstrapAgentName:     getEnv("AGENT_BOOTSTRAP_NAME", "Support Agent"),
			BootstrapAgentEmail:    os.Getenv("AGENT_BOOTSTRAP_EMAIL"),
			BootstrapAgentPassword: os.Getenv("AGENT_BOOTSTRAP_PASSWORD"),
		},
		Twilio: TwilioConfig{
			AccountSID:       os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:        os.Getenv("TWILIO_AUTH_TOKEN"),
			ApplicationSID:   os.Getenv("TWIML_APPLICATION_SID"),
			CallerID:         os.Getenv("TWILIO_NUMBER"),
			ValidateWebhooks: getEnvAsBool("TWILIO_VALIDATE_WEBHOOKS", env == "production"),
		},
		Notification: NotificationConfig{
			WebhookURL:            os.Getenv("NOTIFY_WEBHOOK_URL"),
			WebhookTimeoutSeconds: getEnvAsInt("NOTIFY_WEBHOOK_TIMEOUT_SECONDS", 5),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// WebhookTimeout bounds a single webhook delivery.
func (n NotificationConfig) WebhookTimeout() time.Duration {
	if n.WebhookTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(n.WebhookTimeoutSeconds) * time.Second
}

// SessionTTL returns how long an agent session cookie stays valid.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionTTLMinutes <= 0 {
		return 8 * time.Hour
	}
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}

// HasBootstrapAgent reports whether an initial agent account should be ensured at startup.
func (a AuthConfig) HasBootstrapAgent() bool {
	return a.BootstrapAgentEmail != "" && a.BootstrapAgentPassword != ""
}

// MissingTokenKeys lists the environment keys needed to sign capability tokens that are unset.
func (t TwilioConfig) MissingTokenKeys() []string {
	var missing []string
	if strings.TrimSpace(t.AccountSID) == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID")
	}
	if strings.TrimSpace(t.AuthToken) == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN")
	}
	if strings.TrimSpace(t.ApplicationSID) == "" {
		missing = append(missing, "TWIML_APPLICATION_SID")
	}
	return missing
}

// MissingKeys lists every unset telephony key.
func (t TwilioConfig) MissingKeys() []string {
	missing := t.MissingTokenKeys()
	if strings.TrimSpace(t.CallerID) == "" {
		missing = append(missing, "TWILIO_NUMBER")
	}
	return missing
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
