package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"

	certmail "github.com/alnah/go-certmail"
	"github.com/alnah/go-certmail/internal/config"
	"github.com/alnah/go-certmail/internal/dateutil"
	"github.com/alnah/go-certmail/internal/hints"
	"github.com/alnah/go-certmail/internal/transport"
)

// runSendCmd parses flags, runs one pass over the ledger and returns an exit code.
func runSendCmd(args []string, env *Environment) int {
	flags, err := parseSendFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runSend(ctx, flags, env); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runSend orchestrates a run. Setup errors abort before any record is
// processed; per-record failures are written to the ledger and only turn
// into an error with --strict.
func runSend(ctx context.Context, flags *sendFlags, env *Environment) error {
	warnUnknownEnvVars(env.Stderr, env.Environ())

	cfg, err := resolveConfig(flags.common.config, env)
	if err != nil {
		return err
	}

	// Merge CLI flags into config (CLI wins), then fill what is still empty
	mergeFlags(flags, cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	creds, err := loadCredentials(env.Getenv)
	if err != nil {
		return err
	}
	if missing := creds.missing(cfg); len(missing) > 0 {
		return fmt.Errorf("%w: %s%s", ErrMissingCredentials, strings.Join(missing, ", "), hints.ForMissingCredentials(missing))
	}

	// Resolve "auto" date once for the entire run
	date, err := dateutil.Resolve(cfg.Certificate.Date.Value, env.Now())
	if err != nil {
		return fmt.Errorf("certificate.date.value: %w", err)
	}

	logger := newLogger(env.Stderr, flags).With(slog.String("run_id", uuid.NewString()))

	p, err := buildPipeline(ctx, cfg, creds, date, env.Now, logger)
	if err != nil {
		return err
	}

	logger.DebugContext(ctx, "run started",
		slog.String("source", cfg.Source.Kind),
		slog.String("template", cfg.Certificate.Template),
		slog.String("output", cfg.Output.Dir),
	)

	report, err := p.processor.Process(ctx)
	if errors.Is(err, certmail.ErrInterrupted) {
		printReport(env, report, cfg, flags.common.quiet)
		return err
	}
	if err != nil {
		return fmt.Errorf("%w%s", err, sourceHint(err, creds))
	}

	failed := printReport(env, report, cfg, flags.common.quiet)
	if flags.strict && failed > 0 {
		return fmt.Errorf("%w: %d failed", ErrRecordsFailed, failed)
	}
	return nil
}

// resolveConfig reads the config file named by --config or CERTMAIL_CONFIG,
// or the default certmail.yaml when present, and applies the environment
// tier. Without any file the run is configured by env, flags and defaults.
func resolveConfig(flagConfig string, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv)
	name := firstNonEmpty(flagConfig, envCfg.ConfigPath)

	var cfg *config.Config
	var err error
	if name != "" {
		cfg, err = config.ReadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w%s", err, configHint(err, name))
		}
	} else {
		cfg, err = config.ReadConfig(config.DefaultConfigName)
		switch {
		case errors.Is(err, config.ErrConfigNotFound):
			cfg = &config.Config{}
		case err != nil:
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

func configHint(err error, name string) string {
	if !errors.Is(err, config.ErrConfigNotFound) {
		return ""
	}
	var searched []string
	if dir, derr := os.UserConfigDir(); derr == nil {
		searched = append(searched, filepath.Join(dir, "go-certmail", name+".yaml"))
	}
	return hints.ForConfigNotFound(searched)
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *sendFlags, cfg *config.Config) {
	// Source flags
	if flags.source.csv != "" {
		cfg.Source.Kind = config.SourceCSV
		cfg.Source.Path = flags.source.csv
	}
	if flags.source.spreadsheetID != "" {
		cfg.Source.Kind = config.SourceSheets
		cfg.Source.SpreadsheetID = flags.source.spreadsheetID
	}
	if flags.source.sheet != "" {
		cfg.Source.Sheet = flags.source.sheet
	}

	// Certificate flags
	if flags.template != "" {
		cfg.Certificate.Template = flags.template
	}
	if flags.font != "" {
		cfg.Certificate.Font.Path = flags.font
		if cfg.Certificate.Font.Family == "" {
			cfg.Certificate.Font.Family = config.DefaultFontFamily
		}
	}
	if flags.date != "" {
		cfg.Certificate.Date.Value = flags.date
	}
	if flags.output != "" {
		cfg.Output.Dir = flags.output
	}

	// Mail flags
	if flags.from != "" {
		cfg.Mail.From = flags.from
	}
	if flags.mailBody != "" {
		cfg.Mail.Template = flags.mailBody
	}
}

// newLogger builds the run logger on w. Per-record lines are info;
// --verbose adds skipped records, --quiet keeps only errors.
func newLogger(w io.Writer, flags *sendFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case flags.common.verbose:
		level = slog.LevelDebug
	case flags.common.quiet:
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if flags.logJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// printReport writes the summary line and returns the number of failed records.
func printReport(env *Environment, report *certmail.Report, cfg *config.Config, quiet bool) int {
	sent, failed, skipped := report.Counts()

	for _, o := range report.Failures() {
		if errors.Is(o.Err, transport.ErrAuth) && cfg.Mail.Provider == config.ProviderSMTP {
			fmt.Fprintf(env.Stderr, "warning: SMTP login rejected%s\n", hints.ForSMTPAuth(cfg.Mail.SMTP.Host))
			break
		}
	}

	switch {
	case quiet:
	case report.Remaining > 0:
		fmt.Fprintf(env.Stdout, "Interrupted: %d sent, %d failed, %d skipped, %d not processed (run again to continue)\n",
			sent, failed, skipped, report.Remaining)
	default:
		fmt.Fprintf(env.Stdout, "All certificates processed: %d sent, %d failed, %d skipped\n", sent, failed, skipped)
	}
	return failed
}
