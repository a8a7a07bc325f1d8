package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"APP_ENV", "DB_PATH", "PORT", "LOG_LEVEL", "FX_PRIMARY_URL", "FX_FALLBACK_URL", "FX_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Env != "development" || !cfg.IsDev() {
		t.Fatalf("Env=%q, want development", cfg.Env)
	}
	if cfg.DBPath != "./landed.db" {
		t.Fatalf("DBPath=%q, want ./landed.db", cfg.DBPath)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port=%q, want 8080", cfg.Port)
	}
	if cfg.FX.Timeout != 5*time.Second {
		t.Fatalf("FX.Timeout=%s, want 5s", cfg.FX.Timeout)
	}
}

func TestLoad_ReadsDotEnvWithoutOverridingEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "")
	t.Setenv("FX_TIMEOUT", "")
	os.Unsetenv("DB_PATH")
	os.Unsetenv("FX_TIMEOUT")

	content := []byte(`
# comment

DB_PATH=/tmp/from-dotenv.db
export PORT=7070
FX_TIMEOUT="2s"
`)
	if err := os.WriteFile(filepath.Join(dir, ".env"), content, 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	cfg := Load()

	if cfg.DBPath != "/tmp/from-dotenv.db" {
		t.Fatalf("DBPath=%q, want value from .env", cfg.DBPath)
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port=%q, want environment value 9090", cfg.Port)
	}
	if cfg.FX.Timeout != 2*time.Second {
		t.Fatalf("FX.Timeout=%s, want 2s", cfg.FX.Timeout)
	}
}

func TestConfig_IsDev(t *testing.T) {
	cases := map[string]bool{"development": true, "DEV": true, "local": true, "production": false, "staging": false}
	for env, want := range cases {
		if got := (Config{Env: env}).IsDev(); got != want {
			t.Fatalf("IsDev(%q)=%v, want %v", env, got, want)
		}
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup, like testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
