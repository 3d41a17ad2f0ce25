package config

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alnah/go-certmail/internal/fileutil"
	"github.com/alnah/go-certmail/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrMissingField    = errors.New("required field missing")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength    = 4096
	MaxIDLength      = 200 // Google spreadsheet IDs are ~44 chars
	MaxColumnLength  = 100
	MaxNameLength    = 100
	MaxEmailLength   = 254 // RFC 5321
	MaxSubjectLength = 200
	MaxDateLength    = 60
	MaxHostLength    = 253
	MaxBucketLength  = 63
	MaxURLLength     = 2048
)

// Source kinds.
const (
	SourceSheets = "sheets"
	SourceCSV    = "csv"
)

// Box units.
const (
	UnitsInches = "in"
	UnitsPoints = "pt"
)

// Mail providers.
const (
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
)

// SMTP connection security.
const (
	SecuritySSL      = "ssl"      // implicit TLS, port 465
	SecuritySTARTTLS = "starttls" // mandatory STARTTLS, port 587
	SecurityNone     = "none"     // plain connection, local relays only
)

// Defaults reproduce the calibration of the ITRONIX certificate template.
const (
	DefaultConfigName   = "certmail"
	DefaultTemplatePath = "Certificate.pdf"
	DefaultFontFamily   = "Playfair"
	DefaultFontPath     = "PlayfairDisplay-Regular.ttf"
	DefaultOutputDir    = "output"
	DefaultSubject      = "Certificate of Participation – ITRONIX"
	DefaultMailTemplate = "participation"
	DefaultSMTPHost     = "smtp.gmail.com"
	DefaultSMTPPort     = 465
	DefaultSMTPTimeout  = "30s"
	DefaultDateValue    = "auto"
	DefaultMinFontSize  = 8
	DefaultBaseline     = 8
	DefaultS3Region     = "us-east-1"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Config holds all configuration for a certificate run.
// Credentials never live here: they are read from the environment.
type Config struct {
	Source      SourceConfig      `yaml:"source"`
	Certificate CertificateConfig `yaml:"certificate"`
	Output      OutputConfig      `yaml:"output"`
	Mail        MailConfig        `yaml:"mail"`
}

// SourceConfig defines where participant records are read from.
type SourceConfig struct {
	Kind          string        `yaml:"kind"`          // "sheets" (default) or "csv"
	SpreadsheetID string        `yaml:"spreadsheetId"` // sheets only
	Sheet         string        `yaml:"sheet"`         // sheets only, empty = first sheet
	Path          string        `yaml:"path"`          // csv only
	Columns       ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig names the spreadsheet columns. Empty values use the
// registration form defaults.
type ColumnsConfig struct {
	Name   string `yaml:"name"`
	Event  string `yaml:"event"`
	Email  string `yaml:"email"`
	Status string `yaml:"status"`
}

// CertificateConfig defines the template and where text goes on it.
type CertificateConfig struct {
	Template string     `yaml:"template"`
	Font     FontConfig `yaml:"font"`
	Units    string     `yaml:"units"` // "in" (default) or "pt", applies to box geometry
	Color    string     `yaml:"color"` // "#RRGGBB", empty = black
	Name     BoxConfig  `yaml:"name"`
	Event    BoxConfig  `yaml:"event"`
	Date     DateConfig `yaml:"date"`
}

// FontConfig selects the font used for every box. An empty path selects a
// built-in PDF font (Helvetica, Times, Courier).
type FontConfig struct {
	Family string `yaml:"family"`
	Path   string `yaml:"path"`
}

// BoxConfig is the geometry of one text line. Font sizes and the baseline
// lift are always points.
type BoxConfig struct {
	X        float64  `yaml:"x"`
	Y        float64  `yaml:"y"`
	Width    float64  `yaml:"width"`
	Height   float64  `yaml:"height"`
	Size     float64  `yaml:"size"`
	MinSize  float64  `yaml:"minSize"`
	Baseline *float64 `yaml:"baseline"`
}

// DateConfig defines the optional issue date line. The resolved value is
// also offered to mail templates, even when the box is disabled.
type DateConfig struct {
	Enabled bool      `yaml:"enabled"`
	Value   string    `yaml:"value"` // "auto", "auto:FORMAT" or literal text
	Box     BoxConfig `yaml:"box"`
}

// OutputConfig defines where certificates are written.
type OutputConfig struct {
	Dir string   `yaml:"dir"`
	S3  S3Config `yaml:"s3"`
}

// S3Config defines the optional S3 archive. Empty bucket disables it.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // custom endpoint for S3-compatible stores
	Prefix    string `yaml:"prefix"`
	PathStyle bool   `yaml:"pathStyle"`
}

// Enabled reports whether artifacts are archived to S3.
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// MailConfig defines how certificates are delivered.
type MailConfig struct {
	Provider string     `yaml:"provider"` // "smtp" (default) or "resend"
	From     string     `yaml:"from"`     // empty = SMTP user
	FromName string     `yaml:"fromName"`
	Subject  string     `yaml:"subject"`  // text/template with .Name, .Event, .Date
	Template string     `yaml:"template"` // body template name or path
	SMTP     SMTPConfig `yaml:"smtp"`
}

// SMTPConfig defines the SMTP relay.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Security string `yaml:"security"` // "ssl" (default), "starttls" or "none"
	Timeout  string `yaml:"timeout"`  // Go duration, e.g. "30s"
}

// TimeoutDuration returns the parsed timeout. Validate guarantees it parses.
func (s SMTPConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// DefaultConfig returns the configuration matching the stock template.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field. A box without a size is unset and
// replaced by the stock box, converted to the configured units.
func (c *Config) ApplyDefaults() {
	setDefault(&c.Source.Kind, SourceSheets)

	cert := &c.Certificate
	setDefault(&cert.Template, DefaultTemplatePath)
	if cert.Font.Family == "" && cert.Font.Path == "" {
		cert.Font = FontConfig{Family: DefaultFontFamily, Path: DefaultFontPath}
	}
	setDefault(&cert.Units, UnitsInches)
	scale := 1.0
	if cert.Units == UnitsPoints {
		scale = 72
	}
	fillBox(&cert.Name, BoxConfig{X: 3.62 * scale, Y: 4.23 * scale, Width: 3.26 * scale, Size: 26})
	fillBox(&cert.Event, BoxConfig{X: 0.78 * scale, Y: 4.85 * scale, Width: 2.29 * scale, Size: 20})
	fillBox(&cert.Date.Box, BoxConfig{X: 3.62 * scale, Y: 5.6 * scale, Width: 3.26 * scale, Size: 12})
	setDefault(&cert.Date.Value, DefaultDateValue)

	setDefault(&c.Output.Dir, DefaultOutputDir)
	if c.Output.S3.Enabled() {
		setDefault(&c.Output.S3.Region, DefaultS3Region)
	}

	mc := &c.Mail
	setDefault(&mc.Provider, ProviderSMTP)
	setDefault(&mc.Subject, DefaultSubject)
	setDefault(&mc.Template, DefaultMailTemplate)
	setDefault(&mc.SMTP.Host, DefaultSMTPHost)
	if mc.SMTP.Port == 0 {
		mc.SMTP.Port = DefaultSMTPPort
	}
	setDefault(&mc.SMTP.Security, SecuritySSL)
	setDefault(&mc.SMTP.Timeout, DefaultSMTPTimeout)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func fillBox(b *BoxConfig, stock BoxConfig) {
	if b.Size == 0 {
		baseline := b.Baseline
		*b = stock
		b.Baseline = baseline
	}
	if b.MinSize == 0 {
		b.MinSize = DefaultMinFontSize
	}
	if b.Baseline == nil {
		lift := float64(DefaultBaseline)
		b.Baseline = &lift
	}
}

// BaselineLift returns the baseline lift in points.
func (b BoxConfig) BaselineLift() float64 {
	if b.Baseline == nil {
		return DefaultBaseline
	}
	return *b.Baseline
}

// Validate checks required fields, allowed values and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateCertificate(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	return c.validateMail()
}

func (c *Config) validateSource() error {
	s := c.Source
	switch s.Kind {
	case SourceSheets:
		if s.SpreadsheetID == "" {
			return fmt.Errorf("%w: source.spreadsheetId (required when source.kind is %q)", ErrMissingField, SourceSheets)
		}
	case SourceCSV:
		if s.Path == "" {
			return fmt.Errorf("%w: source.path (required when source.kind is %q)", ErrMissingField, SourceCSV)
		}
	default:
		return fmt.Errorf("%w: source.kind %q (must be sheets or csv)", ErrInvalidValue, s.Kind)
	}

	fields := []struct {
		name, value string
		max         int
	}{
		{"source.spreadsheetId", s.SpreadsheetID, MaxIDLength},
		{"source.sheet", s.Sheet, MaxColumnLength},
		{"source.path", s.Path, MaxPathLength},
		{"source.columns.name", s.Columns.Name, MaxColumnLength},
		{"source.columns.event", s.Columns.Event, MaxColumnLength},
		{"source.columns.email", s.Columns.Email, MaxColumnLength},
		{"source.columns.status", s.Columns.Status, MaxColumnLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateCertificate() error {
	cert := c.Certificate
	if cert.Template == "" {
		return fmt.Errorf("%w: certificate.template", ErrMissingField)
	}
	if err := validateFieldLength("certificate.template", cert.Template, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("certificate.font.path", cert.Font.Path, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("certificate.font.family", cert.Font.Family, MaxNameLength); err != nil {
		return err
	}
	if cert.Units != UnitsInches && cert.Units != UnitsPoints {
		return fmt.Errorf("%w: certificate.units %q (must be in or pt)", ErrInvalidValue, cert.Units)
	}
	if cert.Color != "" && !hexColorPattern.MatchString(cert.Color) {
		return fmt.Errorf("%w: certificate.color %q (must be #RRGGBB)", ErrInvalidValue, cert.Color)
	}
	if err := validateBox("certificate.name", cert.Name); err != nil {
		return err
	}
	if err := validateBox("certificate.event", cert.Event); err != nil {
		return err
	}
	if err := validateFieldLength("certificate.date.value", cert.Date.Value, MaxDateLength); err != nil {
		return err
	}
	if cert.Date.Enabled {
		return validateBox("certificate.date.box", cert.Date.Box)
	}
	return nil
}

func validateBox(field string, b BoxConfig) error {
	switch {
	case b.X < 0 || b.Y < 0:
		return fmt.Errorf("%w: %s position must not be negative (x=%.2f, y=%.2f)", ErrInvalidValue, field, b.X, b.Y)
	case b.Width < 0:
		return fmt.Errorf("%w: %s.width must not be negative, got %.2f", ErrInvalidValue, field, b.Width)
	case b.Height < 0:
		return fmt.Errorf("%w: %s.height must not be negative, got %.2f", ErrInvalidValue, field, b.Height)
	case b.Size <= 0:
		return fmt.Errorf("%w: %s.size must be positive, got %.2f", ErrInvalidValue, field, b.Size)
	case b.MinSize < 0 || b.MinSize > b.Size:
		return fmt.Errorf("%w: %s.minSize must be between 0 and %.2f, got %.2f", ErrInvalidValue, field, b.Size, b.MinSize)
	}
	return nil
}

func (c *Config) validateOutput() error {
	o := c.Output
	if err := validateFieldLength("output.dir", o.Dir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.s3.bucket", o.S3.Bucket, MaxBucketLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.s3.endpoint", o.S3.Endpoint, MaxURLLength); err != nil {
		return err
	}
	return validateFieldLength("output.s3.prefix", o.S3.Prefix, MaxPathLength)
}

func (c *Config) validateMail() error {
	m := c.Mail
	switch m.Provider {
	case ProviderSMTP, ProviderResend:
	default:
		return fmt.Errorf("%w: mail.provider %q (must be smtp or resend)", ErrInvalidValue, m.Provider)
	}
	if m.Provider == ProviderResend && m.From == "" {
		return fmt.Errorf("%w: mail.from (required when mail.provider is %q)", ErrMissingField, ProviderResend)
	}
	if err := validateFieldLength("mail.from", m.From, MaxEmailLength); err != nil {
		return err
	}
	if m.From != "" {
		if _, err := mail.ParseAddress(m.From); err != nil {
			return fmt.Errorf("%w: mail.from %q is not an email address", ErrInvalidValue, m.From)
		}
	}
	if err := validateFieldLength("mail.fromName", m.FromName, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("mail.subject", m.Subject, MaxSubjectLength); err != nil {
		return err
	}
	if err := validateFieldLength("mail.template", m.Template, MaxPathLength); err != nil {
		return err
	}

	if m.Provider != ProviderSMTP {
		return nil
	}
	if err := validateFieldLength("mail.smtp.host", m.SMTP.Host, MaxHostLength); err != nil {
		return err
	}
	if m.SMTP.Port < 1 || m.SMTP.Port > 65535 {
		return fmt.Errorf("%w: mail.smtp.port must be between 1 and 65535, got %d", ErrInvalidValue, m.SMTP.Port)
	}
	switch m.SMTP.Security {
	case SecuritySSL, SecuritySTARTTLS, SecurityNone:
	default:
		return fmt.Errorf("%w: mail.smtp.security %q (must be ssl, starttls or none)", ErrInvalidValue, m.SMTP.Security)
	}
	if d, err := time.ParseDuration(m.SMTP.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("%w: mail.smtp.timeout %q (must be a positive duration like 30s)", ErrInvalidValue, m.SMTP.Timeout)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name, then
// applies defaults and validates it.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	cfg, err := ReadConfig(nameOrPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ReadConfig decodes a config file as written, without defaults or
// validation. The CLI layers environment and flags on top before calling
// ApplyDefaults, so that only fields left empty everywhere get defaults.
func ReadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return &cfg, nil
}

// Marshal renders the configuration as YAML, for `certmail init`.
func (c *Config) Marshal() ([]byte, error) {
	return yamlutil.Marshal(c)
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return fileutil.IsFilePath(s) || strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-certmail/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-certmail", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
