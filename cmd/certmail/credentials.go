package main

import (
	"fmt"
	"os"

	"github.com/alnah/go-certmail/internal/config"
)

// Credential variables. The unprefixed names match what Gmail, Google Cloud
// and Resend users already export; the CERTMAIL_* names are aliases.
const (
	envGmailUser             = "GMAIL_USER"
	envGmailPassword         = "GMAIL_APP_PASSWORD"
	envSMTPUser              = "CERTMAIL_SMTP_USER"
	envSMTPPassword          = "CERTMAIL_SMTP_PASSWORD"
	envGoogleCredentials     = "GOOGLE_CREDENTIALS"
	envGoogleCredentialsFile = "CERTMAIL_GOOGLE_CREDENTIALS_FILE"
	envResendAPIKey          = "RESEND_API_KEY"
	envS3AccessKey           = "CERTMAIL_S3_ACCESS_KEY"
	envS3SecretKey           = "CERTMAIL_S3_SECRET_KEY"
)

// credentials are secrets read from the environment, never from config files.
type credentials struct {
	SMTPUser     string
	SMTPPassword string
	GoogleJSON   []byte
	ResendAPIKey string
	S3AccessKey  string
	S3SecretKey  string
}

// loadCredentials reads every credential variable. GOOGLE_CREDENTIALS holds
// the service account JSON inline and wins over the file variable.
func loadCredentials(getenv func(string) string) (*credentials, error) {
	c := &credentials{
		SMTPUser:     firstNonEmpty(getenv(envGmailUser), getenv(envSMTPUser)),
		SMTPPassword: firstNonEmpty(getenv(envGmailPassword), getenv(envSMTPPassword)),
		ResendAPIKey: getenv(envResendAPIKey),
		S3AccessKey:  getenv(envS3AccessKey),
		S3SecretKey:  getenv(envS3SecretKey),
	}

	if inline := getenv(envGoogleCredentials); inline != "" {
		c.GoogleJSON = []byte(inline)
	} else if path := getenv(envGoogleCredentialsFile); path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's environment
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrReadCredentials, envGoogleCredentialsFile, err)
		}
		c.GoogleJSON = data
	}
	return c, nil
}

// missing lists the variables the configuration needs but the environment
// does not provide.
func (c *credentials) missing(cfg *config.Config) []string {
	var vars []string
	if cfg.Source.Kind == config.SourceSheets && len(c.GoogleJSON) == 0 {
		vars = append(vars, envGoogleCredentials+" (or "+envGoogleCredentialsFile+")")
	}
	switch cfg.Mail.Provider {
	case config.ProviderSMTP:
		if cfg.Mail.SMTP.Security == config.SecurityNone {
			break
		}
		if c.SMTPUser == "" {
			vars = append(vars, envGmailUser+" (or "+envSMTPUser+")")
		}
		if c.SMTPPassword == "" {
			vars = append(vars, envGmailPassword+" (or "+envSMTPPassword+")")
		}
	case config.ProviderResend:
		if c.ResendAPIKey == "" {
			vars = append(vars, envResendAPIKey)
		}
	}
	if cfg.Output.S3.Enabled() {
		if c.S3AccessKey == "" {
			vars = append(vars, envS3AccessKey)
		}
		if c.S3SecretKey == "" {
			vars = append(vars, envS3SecretKey)
		}
	}
	return vars
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
