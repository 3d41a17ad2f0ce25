package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	flag "github.com/spf13/pflag"

	certmail "github.com/alnah/go-certmail"
	"github.com/alnah/go-certmail/internal/assets"
	"github.com/alnah/go-certmail/internal/config"
	"github.com/alnah/go-certmail/internal/fileutil"
	"github.com/alnah/go-certmail/internal/hints"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status      string          `json:"status"` // "ready", "warnings", "errors"
	Config      configInfo      `json:"config"`
	Template    templateInfo    `json:"template"`
	Font        fontInfo        `json:"font"`
	Mail        mailInfo        `json:"mail"`
	Credentials credentialsInfo `json:"credentials"`
	Output      outputInfo      `json:"output"`
	Env         envInfo         `json:"environment"`
	Warnings    []string        `json:"warnings,omitempty"`
	Errors      []string        `json:"errors,omitempty"`
}

// configInfo describes the resolved configuration.
type configInfo struct {
	Valid    bool   `json:"valid"`
	Source   string `json:"source"`             // sheets or csv
	Ledger   string `json:"ledger,omitempty"`   // spreadsheet ID or CSV path
	Provider string `json:"provider,omitempty"` // smtp or resend
}

// templateInfo holds certificate template checks.
type templateInfo struct {
	Path   string  `json:"path"`
	Loaded bool    `json:"loaded"`
	Pages  int     `json:"pages,omitempty"`
	Width  float64 `json:"width_pt,omitempty"`
	Height float64 `json:"height_pt,omitempty"`
}

// fontInfo holds font checks.
type fontInfo struct {
	Family string `json:"family"`
	Path   string `json:"path,omitempty"`
	Loaded bool   `json:"loaded"`
	Core   bool   `json:"core"`
}

// mailInfo holds mail template checks.
type mailInfo struct {
	Template string `json:"template"`
	Subject  string `json:"subject,omitempty"` // rendered for a sample participant
}

// credentialsInfo lists credential variables the config needs but lacks.
type credentialsInfo struct {
	Missing []string `json:"missing,omitempty"`
}

// outputInfo holds output directory checks.
type outputInfo struct {
	Dir      string `json:"dir"`
	Writable bool   `json:"writable"`
	S3Bucket string `json:"s3_bucket,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
	CI   bool   `json:"ci"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	result := runDoctor(flags.common.config, env)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks. It never contacts a service.
func runDoctor(configName string, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
			CI:   hints.InCI(),
		},
	}

	cfg, err := resolveConfig(configName, env)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		cfg = &config.Config{}
	}
	cfg.ApplyDefaults()

	checkConfig(result, cfg)
	checkTemplate(result, cfg.Certificate)
	checkFont(result, cfg.Certificate.Font)
	checkMail(result, cfg.Mail)
	checkCredentials(result, cfg, env)
	checkOutput(result, cfg.Output)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

func checkConfig(result *doctorResult, cfg *config.Config) {
	result.Config.Source = cfg.Source.Kind
	result.Config.Provider = cfg.Mail.Provider
	if cfg.Source.Kind == config.SourceCSV {
		result.Config.Ledger = cfg.Source.Path
	} else {
		result.Config.Ledger = cfg.Source.SpreadsheetID
	}

	if err := cfg.Validate(); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.Config.Valid = true

	if cfg.Source.Kind == config.SourceCSV && !fileutil.FileExists(cfg.Source.Path) {
		result.Errors = append(result.Errors, fmt.Sprintf("CSV ledger not found: %s", cfg.Source.Path))
	}
}

func checkTemplate(result *doctorResult, cert config.CertificateConfig) {
	result.Template.Path = cert.Template

	tpl, err := certmail.LoadTemplate(cert.Template)
	if err != nil {
		result.Errors = append(result.Errors, err.Error()+hints.ForTemplateNotFound(cert.Template))
		return
	}
	result.Template.Loaded = true
	result.Template.Pages = tpl.Pages()
	result.Template.Width = tpl.Width()
	result.Template.Height = tpl.Height()

	if tpl.Pages() > 1 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("template has %d pages, only the first is used", tpl.Pages()))
	}
}

func checkFont(result *doctorResult, fc config.FontConfig) {
	result.Font.Family = fc.Family
	result.Font.Path = fc.Path

	font, err := certmail.LoadFont(fc.Family, fc.Path)
	if err != nil {
		result.Errors = append(result.Errors, err.Error()+hints.ForFontNotFound())
		return
	}
	result.Font.Loaded = true
	result.Font.Core = font.IsCore()
	if font.IsCore() {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("built-in font %s only covers Latin-1; names outside it will not render", fc.Family))
	}
}

func checkMail(result *doctorResult, mc config.MailConfig) {
	result.Mail.Template = mc.Template

	body, err := loadMailBody(mc)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, assets.ErrTemplateNotFound) {
			msg += fmt.Sprintf(" (built-in templates: %s)", strings.Join(assets.NewEmbeddedLoader().Names(), ", "))
		}
		result.Errors = append(result.Errors, msg)
		return
	}
	sample, err := body.Render(certmail.BodyData{Name: "Ada Lovelace", Event: "Sample Event", Date: "today"})
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.Mail.Subject = sample.Subject
}

func checkCredentials(result *doctorResult, cfg *config.Config, env *Environment) {
	creds, err := loadCredentials(env.Getenv)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	missing := creds.missing(cfg)
	result.Credentials.Missing = missing
	if len(missing) > 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%v: %v%s", ErrMissingCredentials, missing, hints.ForMissingCredentials(missing)))
	}
	if cfg.Mail.Provider == config.ProviderSMTP && cfg.Mail.From == "" && creds.SMTPUser == "" {
		result.Warnings = append(result.Warnings, "no sender address: set mail.from or GMAIL_USER")
	}
}

func checkOutput(result *doctorResult, oc config.OutputConfig) {
	result.Output.Dir = oc.Dir
	result.Output.S3Bucket = oc.S3.Bucket

	if err := fileutil.DirWritable(oc.Dir); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("output directory not writable: %s%s", oc.Dir, hints.ForOutputDirectory()))
		return
	}
	result.Output.Writable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "certmail doctor")
	fmt.Fprintln(w)

	// Config section
	fmt.Fprintln(w, "Configuration")
	if r.Config.Valid {
		fmt.Fprintf(w, "  [OK] Source: %s %s\n", r.Config.Source, r.Config.Ledger)
		fmt.Fprintf(w, "  [OK] Mail provider: %s\n", r.Config.Provider)
	} else {
		fmt.Fprintln(w, "  [ERROR] Invalid")
	}
	fmt.Fprintln(w)

	// Certificate section
	fmt.Fprintln(w, "Certificate")
	if r.Template.Loaded {
		fmt.Fprintf(w, "  [OK] Template: %s (%d page(s), %.0fx%.0f pt)\n",
			r.Template.Path, r.Template.Pages, r.Template.Width, r.Template.Height)
	} else {
		fmt.Fprintf(w, "  [ERROR] Template: %s\n", r.Template.Path)
	}
	switch {
	case r.Font.Loaded && r.Font.Core:
		fmt.Fprintf(w, "  [OK] Font: %s (built-in)\n", r.Font.Family)
	case r.Font.Loaded:
		fmt.Fprintf(w, "  [OK] Font: %s (%s)\n", r.Font.Family, r.Font.Path)
	default:
		fmt.Fprintf(w, "  [ERROR] Font: %s\n", r.Font.Family)
	}
	fmt.Fprintln(w)

	// Mail section
	fmt.Fprintln(w, "Mail")
	if r.Mail.Subject != "" {
		fmt.Fprintf(w, "  [OK] Template: %s\n", r.Mail.Template)
		fmt.Fprintf(w, "  [OK] Subject: %s\n", r.Mail.Subject)
	} else {
		fmt.Fprintf(w, "  [ERROR] Template: %s\n", r.Mail.Template)
	}
	if len(r.Credentials.Missing) == 0 {
		fmt.Fprintln(w, "  [OK] Credentials: present")
	} else {
		fmt.Fprintf(w, "  [ERROR] Credentials: %d missing\n", len(r.Credentials.Missing))
	}
	fmt.Fprintln(w)

	// Output section
	fmt.Fprintln(w, "Output")
	if r.Output.Writable {
		fmt.Fprintf(w, "  [OK] Directory: %s (writable)\n", r.Output.Dir)
	} else {
		fmt.Fprintf(w, "  [ERROR] Directory: %s (not writable)\n", r.Output.Dir)
	}
	if r.Output.S3Bucket != "" {
		fmt.Fprintf(w, "  [OK] Archive: s3://%s\n", r.Output.S3Bucket)
	}
	fmt.Fprintln(w)

	// Environment section
	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to send")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
