package config

import (
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port string

	LogLevel  string
	LogFormat string

	// Inference
	DefaultEngine   string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string

	// History
	HistoryBackend string // "firestore" | "postgres" | "sqlite" | "none"
	Firebase       Firebase
	DatabaseURL    string
	SQLitePath     string

	// Telegram front end
	TelegramBotToken string
	WebhookURL       string
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn(".env not loaded")
	}

	return &Config{
		Port: getEnv("PORT", "8000"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DefaultEngine:   getEnv("INFERENCE_PROVIDER", "openai"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),

		HistoryBackend: strings.ToLower(getEnv("HISTORY_BACKEND", "firestore")),
		Firebase:       loadFirebase(),
		DatabaseURL:    resolveDSN(),
		SQLitePath:     getEnv("SQLITE_PATH", "math_problems.db"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
	}
}

// SetupLogging applies LOG_LEVEL / LOG_FORMAT to the standard logrus logger.
func (c *Config) SetupLogging() {
	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("unknown log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func resolveDSN() string {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		return v
	}
	pass := os.Getenv("POSTGRES_PASSWORD")
	if pass == "" && os.Getenv("POSTGRES_USER") == "" {
		return ""
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("POSTGRES_USER", "mathsolver"), pass),
		Host:     net.JoinHostPort(getEnv("PGHOST", "db"), getEnv("PGPORT", "5432")),
		Path:     "/" + getEnv("POSTGRES_DB", "mathsolver"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SafeDSNSummary renders a DSN for logs without the password.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	host, port := u.Host, ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	s := "host=" + host
	if port != "" {
		s += " port=" + port
	}
	return s + " db=" + db + " user=" + u.User.Username()
}
