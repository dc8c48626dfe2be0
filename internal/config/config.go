package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"

	UploadDriverLocal = "local"
	UploadDriverS3    = "s3"

	minSecretKeyLength        = 32
	defaultRateLimitPerMinute = 120
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type S3 struct {
	Bucket    string
	Region    string
	Prefix    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type Config struct {
	Port               string
	SecretKey          string
	Location           *time.Location
	DBDriver           string
	DBPath             string
	DatabaseURL        string
	CookieSecure       bool
	UploadDriver       string
	UploadDir          string
	S3                 S3
	CORSAllowedOrigins []string
	RateLimitPerMinute int
}

// source resolves keys from the environment first and then from the
// optional YAML file named by CONFIG_FILE.
type source struct {
	file map[string]string
}

func (src source) get(key string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	if value := strings.TrimSpace(src.file[key]); value != "" {
		return value
	}
	return fallback
}

// Load reads and validates the whole configuration up front.
func Load() (Config, error) {
	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}
	src := source{file: file}

	secretKey, err := resolveSecretKey(src.get("SECRET_KEY", ""))
	if err != nil {
		return Config{}, err
	}
	port, err := resolvePort(src.get("PORT", "8080"))
	if err != nil {
		return Config{}, err
	}
	location, err := time.LoadLocation(src.get("TZ", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TZ: %w", err)
	}
	cookieSecure, err := parseBool(src.get("COOKIE_SECURE", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}
	rateLimit, err := strconv.Atoi(src.get("RATE_LIMIT_PER_MINUTE", strconv.Itoa(defaultRateLimitPerMinute)))
	if err != nil || rateLimit < 0 {
		return Config{}, errors.New("RATE_LIMIT_PER_MINUTE must be a non-negative integer")
	}

	cfg := Config{
		Port:         port,
		SecretKey:    secretKey,
		Location:     location,
		DBDriver:     strings.ToLower(src.get("DB_DRIVER", DriverSQLite)),
		DBPath:       src.get("DB_PATH", filepath.Join("data", "ereceipt.db")),
		DatabaseURL:  src.get("DATABASE_URL", ""),
		CookieSecure: cookieSecure,
		UploadDriver: strings.ToLower(src.get("UPLOAD_DRIVER", UploadDriverLocal)),
		UploadDir:    src.get("UPLOAD_DIR", "uploads"),
		S3: S3{
			Bucket:    src.get("S3_BUCKET", ""),
			Region:    src.get("S3_REGION", ""),
			Prefix:    src.get("S3_PREFIX", ""),
			Endpoint:  src.get("S3_ENDPOINT", ""),
			AccessKey: src.get("S3_ACCESS_KEY", ""),
			SecretKey: src.get("S3_SECRET_KEY", ""),
		},
		CORSAllowedOrigins: parseCSV(src.get("CORS_ALLOWED_ORIGINS", "")),
		RateLimitPerMinute: rateLimit,
	}

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres, DriverMySQL:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for DB_DRIVER=%s", cfg.DBDriver)
		}
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	switch cfg.UploadDriver {
	case UploadDriverLocal:
	case UploadDriverS3:
		if cfg.S3.Bucket == "" {
			return Config{}, errors.New("S3_BUCKET is required for UPLOAD_DRIVER=s3")
		}
	default:
		return Config{}, fmt.Errorf("unsupported UPLOAD_DRIVER %q", cfg.UploadDriver)
	}

	return cfg, nil
}

// LoadDatabase resolves only the database settings. The admin commands use it
// so they run without a server secret.
func LoadDatabase() (Config, error) {
	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}
	src := source{file: file}
	cfg := Config{
		DBDriver:    strings.ToLower(src.get("DB_DRIVER", DriverSQLite)),
		DBPath:      src.get("DB_PATH", filepath.Join("data", "ereceipt.db")),
		DatabaseURL: src.get("DATABASE_URL", ""),
	}
	if cfg.DBDriver != DriverSQLite && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required for DB_DRIVER=%s", cfg.DBDriver)
	}
	return cfg, nil
}

func loadFile(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return map[string]string{}, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(content, &values); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return values, nil
}

func resolveSecretKey(raw string) (string, error) {
	secret := strings.TrimSpace(raw)
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

func resolvePort(raw string) (string, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("PORT must be a number between 1 and 65535, got %q", raw)
	}
	return strconv.Itoa(port), nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "", "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognised boolean %q", raw)
	}
}

func parseCSV(raw string) []string {
	values := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
