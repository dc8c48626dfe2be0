package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "SECRET_KEY", "PORT", "TZ", "DB_DRIVER", "DB_PATH", "DATABASE_URL",
		"COOKIE_SECURE", "UPLOAD_DRIVER", "UPLOAD_DIR", "S3_BUCKET", "S3_REGION", "S3_PREFIX",
		"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_PER_MINUTE",
	} {
		t.Setenv(key, "")
	}
}

func TestResolveSecretKey(t *testing.T) {
	if _, err := resolveSecretKey(""); err == nil {
		t.Fatal("expected error when SECRET_KEY is empty")
	}
	if _, err := resolveSecretKey("change_me_in_production"); err == nil {
		t.Fatal("expected error when SECRET_KEY uses insecure placeholder")
	}
	if _, err := resolveSecretKey("replace_with_at_least_32_random_characters"); err == nil {
		t.Fatal("expected error when SECRET_KEY uses example placeholder")
	}
	if _, err := resolveSecretKey("too-short-secret"); err == nil {
		t.Fatal("expected error when SECRET_KEY is too short")
	}

	secret, err := resolveSecretKey(" " + validSecret + " ")
	if err != nil {
		t.Fatalf("expected valid secret, got error: %v", err)
	}
	if secret != validSecret {
		t.Fatalf("expected %q, got %q", validSecret, secret)
	}
}

func TestResolvePort(t *testing.T) {
	port, err := resolvePort("9090")
	if err != nil || port != "9090" {
		t.Fatalf("expected port 9090, got %q, %v", port, err)
	}
	for _, raw := range []string{"0", "70000", "not-a-number", ""} {
		if _, err := resolvePort(raw); err == nil {
			t.Fatalf("expected port %q to fail", raw)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("SECRET_KEY", validSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBDriver != DriverSQLite || cfg.UploadDriver != UploadDriverLocal {
		t.Fatalf("unexpected defaults %#v", cfg)
	}
	if cfg.DBPath != filepath.Join("data", "ereceipt.db") || cfg.UploadDir != "uploads" {
		t.Fatalf("unexpected default paths db=%q uploads=%q", cfg.DBPath, cfg.UploadDir)
	}
	if cfg.Location.String() != "UTC" || cfg.CookieSecure || cfg.RateLimitPerMinute != 120 {
		t.Fatalf("unexpected defaults %#v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Fatalf("expected CORS to be disabled by default")
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "SECRET_KEY: " + validSecret + "\nPORT: 9000\nCOOKIE_SECURE: true\nCORS_ALLOWED_ORIGINS: https://a.example, https://b.example\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "9100" {
		t.Fatalf("expected environment PORT to win, got %q", cfg.Port)
	}
	if !cfg.CookieSecure {
		t.Fatalf("expected COOKIE_SECURE from file")
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, want) {
		t.Fatalf("CORS origins = %v, want %v", cfg.CORSAllowedOrigins, want)
	}
}

func TestLoadRejectsInconsistentDrivers(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown db driver", env: map[string]string{"DB_DRIVER": "oracle"}},
		{name: "postgres without url", env: map[string]string{"DB_DRIVER": "postgres"}},
		{name: "s3 without bucket", env: map[string]string{"UPLOAD_DRIVER": "s3"}},
		{name: "unknown upload driver", env: map[string]string{"UPLOAD_DRIVER": "ftp"}},
		{name: "bad timezone", env: map[string]string{"TZ": "Mars/Olympus"}},
		{name: "bad rate limit", env: map[string]string{"RATE_LIMIT_PER_MINUTE": "-1"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv("SECRET_KEY", validSecret)
			for key, value := range testCase.env {
				t.Setenv(key, value)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected Load to fail")
			}
		})
	}
}

func TestLoadDatabaseSkipsServerSettings(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DB_PATH", "custom.db")

	cfg, err := LoadDatabase()
	if err != nil {
		t.Fatalf("LoadDatabase returned error: %v", err)
	}
	if cfg.DBDriver != DriverSQLite || cfg.DBPath != "custom.db" {
		t.Fatalf("unexpected database config %#v", cfg)
	}
}
