package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-certmail/internal/config"
)

// envPrefix marks variables owned by certmail.
const envPrefix = "CERTMAIL_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath    string // CERTMAIL_CONFIG: config file name or path
	SpreadsheetID string // CERTMAIL_SPREADSHEET_ID: Google spreadsheet ID
	Sheet         string // CERTMAIL_SHEET: sheet (tab) name
	OutputDir     string // CERTMAIL_OUTPUT_DIR: certificate output directory

	// Tier 2 - Certificate and mail
	Template     string // CERTMAIL_TEMPLATE: certificate PDF template
	FontPath     string // CERTMAIL_FONT_PATH: TrueType font file
	MailProvider string // CERTMAIL_MAIL_PROVIDER: smtp or resend
	MailFrom     string // CERTMAIL_MAIL_FROM: sender address
	Date         string // CERTMAIL_DATE: issue date ("auto", "auto:FORMAT" or literal)

	// Tier 3 - Archive
	S3Bucket   string // CERTMAIL_S3_BUCKET: archive bucket
	S3Region   string // CERTMAIL_S3_REGION: archive region
	S3Endpoint string // CERTMAIL_S3_ENDPOINT: S3-compatible endpoint
}

// knownEnvVars lists valid CERTMAIL_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"CERTMAIL_CONFIG":         true,
	"CERTMAIL_SPREADSHEET_ID": true,
	"CERTMAIL_SHEET":          true,
	"CERTMAIL_OUTPUT_DIR":     true,
	// Tier 2 - Certificate and mail
	"CERTMAIL_TEMPLATE":      true,
	"CERTMAIL_FONT_PATH":     true,
	"CERTMAIL_MAIL_PROVIDER": true,
	"CERTMAIL_MAIL_FROM":     true,
	"CERTMAIL_DATE":          true,
	// Tier 3 - Archive
	"CERTMAIL_S3_BUCKET":   true,
	"CERTMAIL_S3_REGION":   true,
	"CERTMAIL_S3_ENDPOINT": true,
	// Credentials
	envSMTPUser:              true,
	envSMTPPassword:          true,
	envGoogleCredentialsFile: true,
	envS3AccessKey:           true,
	envS3SecretKey:           true,
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized CERTMAIL_* values.
func loadEnvConfig(getenv func(string) string) *envConfig {
	return &envConfig{
		// Tier 1
		ConfigPath:    getenv("CERTMAIL_CONFIG"),
		SpreadsheetID: getenv("CERTMAIL_SPREADSHEET_ID"),
		Sheet:         getenv("CERTMAIL_SHEET"),
		OutputDir:     getenv("CERTMAIL_OUTPUT_DIR"),
		// Tier 2
		Template:     getenv("CERTMAIL_TEMPLATE"),
		FontPath:     getenv("CERTMAIL_FONT_PATH"),
		MailProvider: getenv("CERTMAIL_MAIL_PROVIDER"),
		MailFrom:     getenv("CERTMAIL_MAIL_FROM"),
		Date:         getenv("CERTMAIL_DATE"),
		// Tier 3
		S3Bucket:   getenv("CERTMAIL_S3_BUCKET"),
		S3Region:   getenv("CERTMAIL_S3_REGION"),
		S3Endpoint: getenv("CERTMAIL_S3_ENDPOINT"),
	}
}

// warnUnknownEnvVars logs warnings for unrecognized CERTMAIL_* variables.
// Helps catch typos like CERTMAIL_SPREADSHEET instead of CERTMAIL_SPREADSHEET_ID.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values if the env var is set AND the config value is empty.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags, defaults after that)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1 - Source and output
	if env.SpreadsheetID != "" && cfg.Source.SpreadsheetID == "" {
		cfg.Source.SpreadsheetID = env.SpreadsheetID
	}
	if env.Sheet != "" && cfg.Source.Sheet == "" {
		cfg.Source.Sheet = env.Sheet
	}
	if env.OutputDir != "" && cfg.Output.Dir == "" {
		cfg.Output.Dir = env.OutputDir
	}

	// Tier 2 - Certificate
	if env.Template != "" && cfg.Certificate.Template == "" {
		cfg.Certificate.Template = env.Template
	}
	if env.FontPath != "" && cfg.Certificate.Font.Path == "" {
		cfg.Certificate.Font.Path = env.FontPath
		if cfg.Certificate.Font.Family == "" {
			cfg.Certificate.Font.Family = config.DefaultFontFamily
		}
	}
	if env.Date != "" && cfg.Certificate.Date.Value == "" {
		cfg.Certificate.Date.Value = env.Date
	}

	// Tier 2 - Mail
	if env.MailProvider != "" && cfg.Mail.Provider == "" {
		cfg.Mail.Provider = env.MailProvider
	}
	if env.MailFrom != "" && cfg.Mail.From == "" {
		cfg.Mail.From = env.MailFrom
	}

	// Tier 3 - Archive
	if env.S3Bucket != "" && cfg.Output.S3.Bucket == "" {
		cfg.Output.S3.Bucket = env.S3Bucket
	}
	if env.S3Region != "" && cfg.Output.S3.Region == "" {
		cfg.Output.S3.Region = env.S3Region
	}
	if env.S3Endpoint != "" && cfg.Output.S3.Endpoint == "" {
		cfg.Output.S3.Endpoint = env.S3Endpoint
	}
}
