package main

// Notes:
// - loadEnvConfig: we test every CERTMAIL_* setting variable across 3 tiers.
// - warnUnknownEnvVars: we test typo detection and that known vars,
//   including credential aliases, don't warn.
// - applyEnvConfig: we test priority behavior (env doesn't override config).
// - The environment is injected, so these tests run in parallel.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alnah/go-certmail/internal/config"
)

func mapEnv(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable loading
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	env := loadEnvConfig(mapEnv(map[string]string{
		"CERTMAIL_CONFIG":         "/etc/certmail.yaml",
		"CERTMAIL_SPREADSHEET_ID": "1AbC",
		"CERTMAIL_SHEET":          "Responses",
		"CERTMAIL_OUTPUT_DIR":     "/tmp/out",
		"CERTMAIL_TEMPLATE":       "cert.pdf",
		"CERTMAIL_FONT_PATH":      "font.ttf",
		"CERTMAIL_MAIL_PROVIDER":  "resend",
		"CERTMAIL_MAIL_FROM":      "events@example.com",
		"CERTMAIL_DATE":           "auto:long",
		"CERTMAIL_S3_BUCKET":      "certs",
		"CERTMAIL_S3_REGION":      "eu-west-1",
		"CERTMAIL_S3_ENDPOINT":    "http://minio:9000",
	}))

	checks := []struct {
		name, got, want string
	}{
		{"ConfigPath", env.ConfigPath, "/etc/certmail.yaml"},
		{"SpreadsheetID", env.SpreadsheetID, "1AbC"},
		{"Sheet", env.Sheet, "Responses"},
		{"OutputDir", env.OutputDir, "/tmp/out"},
		{"Template", env.Template, "cert.pdf"},
		{"FontPath", env.FontPath, "font.ttf"},
		{"MailProvider", env.MailProvider, "resend"},
		{"MailFrom", env.MailFrom, "events@example.com"},
		{"Date", env.Date, "auto:long"},
		{"S3Bucket", env.S3Bucket, "certs"},
		{"S3Region", env.S3Region, "eu-west-1"},
		{"S3Endpoint", env.S3Endpoint, "http://minio:9000"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		environ  []string
		wantWarn string
	}{
		{"typo warns", []string{"CERTMAIL_SPREADSHEET=1AbC"}, "CERTMAIL_SPREADSHEET"},
		{"known var is silent", []string{"CERTMAIL_SHEET=Responses"}, ""},
		{"credential alias is silent", []string{"CERTMAIL_SMTP_PASSWORD=secret"}, ""},
		{"other prefixes are ignored", []string{"GMAIL_USRE=me"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			warnUnknownEnvVars(&buf, tt.environ)

			if tt.wantWarn == "" {
				if buf.Len() != 0 {
					t.Errorf("unexpected warning: %q", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tt.wantWarn) {
				t.Errorf("warning %q should mention %s", buf.String(), tt.wantWarn)
			}
			if strings.Contains(buf.String(), "secret") {
				t.Error("warning must not print variable values")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Priority over config file
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("fills empty fields", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{}
		applyEnvConfig(&envConfig{
			SpreadsheetID: "1AbC",
			OutputDir:     "/tmp/out",
			FontPath:      "font.ttf",
			MailFrom:      "events@example.com",
			S3Bucket:      "certs",
		}, cfg)

		if cfg.Source.SpreadsheetID != "1AbC" {
			t.Errorf("SpreadsheetID = %q, want 1AbC", cfg.Source.SpreadsheetID)
		}
		if cfg.Output.Dir != "/tmp/out" {
			t.Errorf("Output.Dir = %q, want /tmp/out", cfg.Output.Dir)
		}
		if cfg.Certificate.Font.Path != "font.ttf" || cfg.Certificate.Font.Family != config.DefaultFontFamily {
			t.Errorf("Font = %+v, want font.ttf with default family", cfg.Certificate.Font)
		}
		if cfg.Mail.From != "events@example.com" {
			t.Errorf("Mail.From = %q", cfg.Mail.From)
		}
		if !cfg.Output.S3.Enabled() {
			t.Error("S3 should be enabled by CERTMAIL_S3_BUCKET")
		}
	})

	t.Run("config file wins", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{}
		cfg.Source.SpreadsheetID = "from-file"
		cfg.Output.Dir = "certificates"
		applyEnvConfig(&envConfig{SpreadsheetID: "from-env", OutputDir: "/tmp/out"}, cfg)

		if cfg.Source.SpreadsheetID != "from-file" {
			t.Errorf("SpreadsheetID = %q, want from-file", cfg.Source.SpreadsheetID)
		}
		if cfg.Output.Dir != "certificates" {
			t.Errorf("Output.Dir = %q, want certificates", cfg.Output.Dir)
		}
	})

	t.Run("empty env changes nothing", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{}
		applyEnvConfig(&envConfig{}, cfg)
		if *cfg != (config.Config{}) {
			t.Errorf("config changed: %+v", cfg)
		}
	})
}
