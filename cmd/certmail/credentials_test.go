package main

// Notes:
// - loadCredentials: we test aliases, inline vs file service account JSON,
//   and a missing credentials file.
// - missing: we test which variables each source/provider combination needs.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/alnah/go-certmail/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadCredentials - Environment credential lookup
// ---------------------------------------------------------------------------

func TestLoadCredentials(t *testing.T) {
	t.Parallel()

	t.Run("gmail names win over aliases", func(t *testing.T) {
		t.Parallel()

		c, err := loadCredentials(mapEnv(map[string]string{
			envGmailUser:     "events@gmail.com",
			envSMTPUser:      "other@example.com",
			envSMTPPassword:  "alias-secret",
			envResendAPIKey:  "re_123",
			envS3AccessKey:   "AKIA",
			envS3SecretKey:   "s3-secret",
			envGmailPassword: "",
		}))
		if err != nil {
			t.Fatalf("loadCredentials() error = %v", err)
		}
		if c.SMTPUser != "events@gmail.com" {
			t.Errorf("SMTPUser = %q, want events@gmail.com", c.SMTPUser)
		}
		if c.SMTPPassword != "alias-secret" {
			t.Errorf("SMTPPassword = %q, want alias fallback", c.SMTPPassword)
		}
		if c.ResendAPIKey != "re_123" || c.S3AccessKey != "AKIA" || c.S3SecretKey != "s3-secret" {
			t.Errorf("credentials = %+v", c)
		}
	})

	t.Run("service account from file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, filepath.Join(t.TempDir(), "sa.json"), `{"client_email":"bot@p.iam.gserviceaccount.com"}`)
		c, err := loadCredentials(mapEnv(map[string]string{envGoogleCredentialsFile: path}))
		if err != nil {
			t.Fatalf("loadCredentials() error = %v", err)
		}
		if len(c.GoogleJSON) == 0 {
			t.Error("GoogleJSON should be read from the file")
		}
	})

	t.Run("inline JSON wins over file", func(t *testing.T) {
		t.Parallel()

		c, err := loadCredentials(mapEnv(map[string]string{
			envGoogleCredentials:     `{"inline":true}`,
			envGoogleCredentialsFile: "/nonexistent/sa.json",
		}))
		if err != nil {
			t.Fatalf("loadCredentials() error = %v", err)
		}
		if string(c.GoogleJSON) != `{"inline":true}` {
			t.Errorf("GoogleJSON = %s, want inline value", c.GoogleJSON)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := loadCredentials(mapEnv(map[string]string{envGoogleCredentialsFile: "/nonexistent/sa.json"}))
		if !errors.Is(err, ErrReadCredentials) {
			t.Errorf("error = %v, want ErrReadCredentials", err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, should wrap os.ErrNotExist", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestCredentials_Missing - Required variables per configuration
// ---------------------------------------------------------------------------

func TestCredentials_Missing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		creds  credentials
		want   []string
	}{
		{
			name:  "sheets and gmail need everything",
			creds: credentials{},
			want: []string{
				"GOOGLE_CREDENTIALS (or CERTMAIL_GOOGLE_CREDENTIALS_FILE)",
				"GMAIL_USER (or CERTMAIL_SMTP_USER)",
				"GMAIL_APP_PASSWORD (or CERTMAIL_SMTP_PASSWORD)",
			},
		},
		{
			name:  "all present",
			creds: credentials{GoogleJSON: []byte("{}"), SMTPUser: "u", SMTPPassword: "p"},
		},
		{
			name: "csv with local relay needs nothing",
			mutate: func(c *config.Config) {
				c.Source.Kind = config.SourceCSV
				c.Mail.SMTP.Security = config.SecurityNone
			},
		},
		{
			name: "resend needs an API key",
			mutate: func(c *config.Config) {
				c.Source.Kind = config.SourceCSV
				c.Mail.Provider = config.ProviderResend
			},
			want: []string{"RESEND_API_KEY"},
		},
		{
			name: "s3 archive needs keys",
			mutate: func(c *config.Config) {
				c.Source.Kind = config.SourceCSV
				c.Mail.SMTP.Security = config.SecurityNone
				c.Output.S3.Bucket = "certs"
			},
			want: []string{"CERTMAIL_S3_ACCESS_KEY", "CERTMAIL_S3_SECRET_KEY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			got := tt.creds.missing(cfg)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("missing() = %q, want %q", got, tt.want)
			}
		})
	}
}
