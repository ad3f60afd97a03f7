package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names an optional YAML file of KEY: value pairs using the same
// keys as the environment. Environment variables take precedence.
const ConfigFileEnv = "ACCOUNTS_CONFIG_FILE"

type Config struct {
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	BaseURL             string        // Public origin used in verification links (default: http://localhost:8080)

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database file (default: accounts.db)
	DatabaseURL    string // Postgres DSN, required for the postgres driver

	SecretKey      string        // Session token signing secret; required outside dev
	TokenTTL       time.Duration // Session token lifetime (default: 23h)
	PasswordHasher string        // argon2id or bcrypt (default: argon2id)
	BcryptCost     int           // (default: 10)
	PepperFile     string        // Pepper for argon2id hashes, created on first run (default: pepper)

	MailTransport string // smtp or log (default: log)
	MailHost      string
	MailPort      int // (default: 2525)
	MailUsername  string
	MailPassword  string
	MailFrom      string

	PublicDir      string // Local avatar storage root (default: public)
	TempDir        string // Upload spool directory (default: tmp)
	AvatarStorage  string // local or s3 (default: local)
	S3Bucket       string
	S3Region       string
	S3Endpoint     string // Optional S3-compatible endpoint
	S3AccessKey    string // Optional; the default AWS credential chain is used otherwise
	S3SecretKey    string
	MaxUploadBytes int64 // (default: 5 MiB)

	CORSAllowedOrigins   []string      // (default: *)
	HousekeepingInterval time.Duration // (default: 1h)
	TempUploadMaxAge     time.Duration // (default: 1h)
}

// LoadConfig reads the configuration from the environment, seeded by the
// YAML file named in ACCOUNTS_CONFIG_FILE when set.
func LoadConfig() (Config, error) {
	s := settings{}
	if path := os.Getenv(ConfigFileEnv); path != "" {
		var err error
		if s, err = readSettings(path); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		Env:                 s.getEnvOrDefault("ENV", "dev"),
		LogLevel:            s.getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           s.getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                s.getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: s.getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		BaseURL:             s.getEnvOrDefault("BASE_URL", "http://localhost:8080"),

		DatabaseDriver: strings.ToLower(s.getEnvOrDefault("DATABASE_DRIVER", "sqlite")),
		DatabaseFile:   s.getEnvOrDefault("DATABASE_FILE", "accounts.db"),
		DatabaseURL:    s.getEnv("DATABASE_URL"),

		SecretKey:      s.getEnv("SECRET_KEY"),
		TokenTTL:       s.getEnvDurationOrDefault("TOKEN_TTL", 23*time.Hour),
		PasswordHasher: s.getEnvOrDefault("PASSWORD_HASHER", "argon2id"),
		BcryptCost:     s.getEnvIntOrDefault("BCRYPT_COST", 10),
		PepperFile:     s.getEnvOrDefault("PEPPER_FILE", "pepper"),

		MailTransport: strings.ToLower(s.getEnvOrDefault("MAIL_TRANSPORT", "log")),
		MailHost:      s.getEnv("MAIL_HOST"),
		MailPort:      s.getEnvIntOrDefault("MAIL_PORT", 2525),
		MailUsername:  s.getEnv("MAIL_USERNAME"),
		MailPassword:  s.getEnv("MAIL_PASSWORD"),
		MailFrom:      s.getEnvOrDefault("MAIL_FROM", "no-reply@localhost"),

		PublicDir:      s.getEnvOrDefault("PUBLIC_DIR", "public"),
		TempDir:        s.getEnvOrDefault("TEMP_DIR", "tmp"),
		AvatarStorage:  strings.ToLower(s.getEnvOrDefault("AVATAR_STORAGE", "local")),
		S3Bucket:       s.getEnv("S3_BUCKET"),
		S3Region:       s.getEnvOrDefault("S3_REGION", "us-east-1"),
		S3Endpoint:     s.getEnv("S3_ENDPOINT"),
		S3AccessKey:    s.getEnv("S3_ACCESS_KEY"),
		S3SecretKey:    s.getEnv("S3_SECRET_KEY"),
		MaxUploadBytes: int64(s.getEnvIntOrDefault("MAX_UPLOAD_BYTES", 5<<20)),

		CORSAllowedOrigins:   s.getEnvListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
		HousekeepingInterval: s.getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		TempUploadMaxAge:     s.getEnvDurationOrDefault("TEMP_UPLOAD_MAX_AGE", 1*time.Hour),
	}

	return cfg, cfg.Validate()
}

// IsDev reports whether the service runs in the development environment.
func (c Config) IsDev() bool { return c.Env == "dev" }

// Validate rejects combinations the application cannot start with.
func (c Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver))
	}

	switch c.MailTransport {
	case "log":
	case "smtp":
		if c.MailHost == "" {
			errs = append(errs, errors.New("MAIL_HOST is required for the smtp transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_TRANSPORT %q", c.MailTransport))
	}

	switch c.AvatarStorage {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for s3 avatar storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AVATAR_STORAGE %q", c.AvatarStorage))
	}

	if c.SecretKey == "" && !c.IsDev() {
		errs = append(errs, errors.New("SECRET_KEY is required outside dev"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}

	return errors.Join(errs...)
}

// settings holds values read from the config file.
type settings map[string]string

func readSettings(path string) (settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	s := make(settings, len(doc))
	for key, value := range doc {
		switch v := value.(type) {
		case nil:
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, fmt.Sprint(item))
			}
			s[strings.ToUpper(key)] = strings.Join(parts, ",")
		default:
			s[strings.ToUpper(key)] = fmt.Sprint(v)
		}
	}
	return s, nil
}

func (s settings) getEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return s[key]
}

func (s settings) getEnvOrDefault(key, defaultValue string) string {
	if value := s.getEnv(key); value != "" {
		return value
	}
	return defaultValue
}

func (s settings) getEnvIntOrDefault(key string, defaultValue int) int {
	value := s.getEnv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func (s settings) getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := s.getEnv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func (s settings) getEnvListOrDefault(key string, defaultValue []string) []string {
	value := s.getEnv(key)
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
