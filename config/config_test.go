package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pontos-detect/pontos/artifact"
	"github.com/pontos-detect/pontos/config"
	"github.com/pontos-detect/pontos/internal/validate"
)

// env returns a lookup over vars; HOME points at an empty directory
// unless vars sets it.
func env(t *testing.T, vars map[string]string) config.Option {
	t.Helper()

	home := t.TempDir()
	return config.WithLookupEnv(func(key string) (string, bool) {
		if v, ok := vars[key]; ok {
			return v, true
		}
		if key == "HOME" {
			return home, true
		}
		return "", false
	})
}

func writeINI(t *testing.T, dir, body string) string {
	t.Helper()

	path := filepath.Join(dir, config.DefaultFile)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(env(t, nil))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Precedence(t *testing.T) {
	home := t.TempDir()
	writeINI(t, home, `
model_path   = /srv/models/yolo.pt
patch_size   = 640
http_timeout = 90s
max_workers  = 2
`)

	cfg, err := config.Load(
		env(t, map[string]string{
			"HOME":               home,
			"PONTOS_PATCH_SIZE":  "512",
			"PONTOS_MAX_RETRIES": "5",
		}),
		config.WithOverride(func(c *config.Config) { c.MaxWorkers = 8 }),
	)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	want := config.Default()
	want.ModelPath = "/srv/models/yolo.pt" // file
	want.HTTPTimeout = 90 * time.Second    // file
	want.PatchSize = 512                   // env beats file
	want.MaxRetries = 5                    // env
	want.MaxWorkers = 8                    // override beats file

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := writeINI(t, t.TempDir(), "progress = log\nlog_level = debug\n")

	cfg, err := config.Load(env(t, nil), config.WithFile(path))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.Progress != "log" || cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("file values not applied: %+v", cfg)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := config.Load(env(t, nil), config.WithFile(filepath.Join(t.TempDir(), "missing.ini")))
	if err == nil {
		t.Fatal("expected error for missing explicit file")
	}
}

func TestLoad_SentinelAliases(t *testing.T) {
	testCases := []struct {
		name   string
		vars   map[string]string
		expID  string
		expKey string
	}{
		{
			name:   "Sentinel Hub variables",
			vars:   map[string]string{"SH_CLIENT_ID": "id", "SH_CLIENT_SECRET": "secret"},
			expID:  "id",
			expKey: "secret",
		},
		{
			name: "Prefixed variables win",
			vars: map[string]string{
				"SH_CLIENT_ID":              "id",
				"PONTOS_SENTINEL_CLIENT_ID": "pontos-id",
				"SH_CLIENT_SECRET":          "secret",
			},
			expID:  "pontos-id",
			expKey: "secret",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := config.Load(env(t, tc.vars))
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}

			if cfg.SentinelClientID != tc.expID || cfg.SentinelClientSecret != tc.expKey {
				t.Errorf("got id=%q secret=%q", cfg.SentinelClientID, cfg.SentinelClientSecret)
			}
			if err := cfg.RequireSentinel(); err != nil {
				t.Errorf("expected credentials to be complete, got: %v", err)
			}
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name      string
		vars      map[string]string
		expFields []string
	}{
		{
			name:      "Unparsable int",
			vars:      map[string]string{"PONTOS_PATCH_SIZE": "big"},
			expFields: nil,
		},
		{
			name:      "Relative model URL",
			vars:      map[string]string{"PONTOS_MODEL_URL": "models/yolo.pt"},
			expFields: []string{"model_url"},
		},
		{
			name: "Out of range values",
			vars: map[string]string{
				"PONTOS_CONFIDENCE_THRESHOLD": "1.5",
				"PONTOS_PROGRESS":             "spinner",
				"PONTOS_MODEL_SHA256":         "abc",
			},
			expFields: []string{"model_sha256", "confidence_threshold", "progress"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(env(t, tc.vars))
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got: %v", err)
			}

			if tc.expFields == nil {
				return
			}

			var fields validate.FieldErrors
			if !errors.As(err, &fields) {
				t.Fatalf("expected field errors, got: %v", err)
			}
			if diff := cmp.Diff(tc.expFields, fields.Fields()); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_RateLimitBurstDefaultsToOne(t *testing.T) {
	cfg, err := config.Load(env(t, map[string]string{"PONTOS_RATE_LIMIT_RPS": "3"}))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if !cfg.RateLimited() || cfg.RateLimitBurst != 1 {
		t.Errorf("expected rps 3 burst 1, got rps %d burst %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestConfig_ModelDescriptor(t *testing.T) {
	got := config.Default().ModelDescriptor()

	want := artifact.Descriptor{
		SourceURL: config.DefaultModelURL,
		Path:      config.DefaultModelPath,
		Digest:    config.DefaultModelSHA256,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("default descriptor must be valid: %v", err)
	}
}

func TestConfig_RequireSentinel(t *testing.T) {
	cfg := config.Default()
	cfg.SentinelClientID = "id"

	err := cfg.RequireSentinel()
	if !errors.Is(err, config.ErrSentinelCredentials) {
		t.Fatalf("expected ErrSentinelCredentials, got: %v", err)
	}
	if !strings.Contains(err.Error(), "sentinel_client_secret") || strings.Contains(err.Error(), "sentinel_client_id") {
		t.Errorf("expected only the secret to be reported, got: %v", err)
	}
}

func TestConfig_StringRedactsSecret(t *testing.T) {
	cfg := config.Default()
	cfg.SentinelClientSecret = "hunter2"

	s := cfg.String()
	if strings.Contains(s, "hunter2") {
		t.Errorf("secret leaked: %s", s)
	}
	if !strings.Contains(s, "REDACTED") {
		t.Errorf("expected redaction marker: %s", s)
	}
}
