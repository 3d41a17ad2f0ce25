package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	certmail "github.com/alnah/go-certmail"
	"github.com/alnah/go-certmail/internal/assets"
	"github.com/alnah/go-certmail/internal/config"
	"github.com/alnah/go-certmail/internal/fileutil"
	"github.com/alnah/go-certmail/internal/hints"
	"github.com/alnah/go-certmail/internal/ledger"
	"github.com/alnah/go-certmail/internal/mailbody"
	"github.com/alnah/go-certmail/internal/storage"
	"github.com/alnah/go-certmail/internal/transport"
)

// pipeline is everything a run needs, built and checked before the first
// record is touched.
type pipeline struct {
	source    certmail.RecordSource
	renderer  *certmail.Renderer
	mailer    *certmail.Mailer
	processor *certmail.Processor
}

// buildPipeline loads local inputs first so that a typo in a path fails
// before any service is contacted.
func buildPipeline(ctx context.Context, cfg *config.Config, creds *credentials, date string, now func() time.Time, logger *slog.Logger) (*pipeline, error) {
	store, err := openStore(cfg, creds)
	if err != nil {
		return nil, err
	}

	renderer, err := newRenderer(cfg, store, date, now)
	if err != nil {
		return nil, err
	}

	body, err := loadMailBody(cfg.Mail)
	if err != nil {
		return nil, err
	}

	tr, err := openTransport(cfg.Mail, creds)
	if err != nil {
		return nil, err
	}
	from := cfg.Mail.From
	if from == "" {
		from = creds.SMTPUser
	}
	mailer := certmail.NewMailer(tr, body, from, cfg.Mail.FromName).WithDate(date)

	source, err := openLedger(ctx, cfg.Source, creds)
	if err != nil {
		return nil, err
	}

	processor := certmail.NewProcessor(source, renderer, mailer,
		certmail.WithLogger(logger),
		certmail.WithColumns(columnsFromConfig(cfg.Source.Columns)),
		certmail.WithProcessorClock(now),
	)

	return &pipeline{source: source, renderer: renderer, mailer: mailer, processor: processor}, nil
}

// newRenderer loads the template and font once for the whole run.
func newRenderer(cfg *config.Config, store certmail.ArtifactStore, date string, now func() time.Time) (*certmail.Renderer, error) {
	cert := cfg.Certificate

	if !fileutil.FileExists(cert.Template) {
		return nil, fmt.Errorf("%w: %s not found%s", certmail.ErrTemplateLoad, cert.Template, hints.ForTemplateNotFound(cert.Template))
	}
	tpl, err := certmail.LoadTemplate(cert.Template)
	if err != nil {
		return nil, err
	}

	if cert.Font.Path != "" && !fileutil.FileExists(cert.Font.Path) {
		return nil, fmt.Errorf("%w: %s not found%s", certmail.ErrFontLoad, cert.Font.Path, hints.ForFontNotFound())
	}
	font, err := certmail.LoadFont(cert.Font.Family, cert.Font.Path)
	if err != nil {
		return nil, err
	}

	red, green, blue, err := parseHexColor(cert.Color)
	if err != nil {
		return nil, err
	}

	opts := []certmail.RendererOption{
		certmail.WithTextColor(red, green, blue),
		certmail.WithRenderClock(now),
	}
	if cert.Date.Enabled {
		opts = append(opts, certmail.WithIssueDate(date))
	}
	return certmail.NewRenderer(tpl, font, layoutFromConfig(cert), store, opts...)
}

// layoutFromConfig converts configured boxes to points.
func layoutFromConfig(cert config.CertificateConfig) certmail.Layout {
	layout := certmail.Layout{
		Name:  boxFromConfig(cert.Name, cert.Units),
		Event: boxFromConfig(cert.Event, cert.Units),
	}
	if cert.Date.Enabled {
		b := boxFromConfig(cert.Date.Box, cert.Units)
		layout.Date = &b
	}
	return layout
}

func boxFromConfig(b config.BoxConfig, units string) certmail.Box {
	box := certmail.Box{
		X:        b.X,
		Y:        b.Y,
		Width:    b.Width,
		Height:   b.Height,
		MaxSize:  b.Size,
		MinSize:  b.MinSize,
		Baseline: b.BaselineLift(),
	}
	if units == config.UnitsInches {
		box = box.Inches()
	}
	return box
}

// parseHexColor parses "#RRGGBB". Empty is black.
func parseHexColor(hex string) (red, green, blue int, err error) {
	if hex == "" {
		return 0, 0, 0, nil
	}
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, fmt.Errorf("%w: certificate.color %q (must be #RRGGBB)", config.ErrInvalidValue, hex)
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: certificate.color %q (must be #RRGGBB)", config.ErrInvalidValue, hex)
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), nil
}

func columnsFromConfig(c config.ColumnsConfig) certmail.Columns {
	return certmail.Columns{Name: c.Name, Event: c.Event, Email: c.Email, Status: c.Status}
}

// openStore builds the output directory store, fanned out to S3 when a
// bucket is configured. The local directory stays the primary location.
func openStore(cfg *config.Config, creds *credentials) (certmail.ArtifactStore, error) {
	dir, err := storage.NewDir(cfg.Output.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w%s", ErrOutputDir, err, hints.ForOutputDirectory())
	}
	if !cfg.Output.S3.Enabled() {
		return dir, nil
	}

	s3cfg := cfg.Output.S3
	archive, err := storage.NewS3(storage.S3Config{
		Bucket:    s3cfg.Bucket,
		Region:    s3cfg.Region,
		Endpoint:  s3cfg.Endpoint,
		Prefix:    s3cfg.Prefix,
		PathStyle: s3cfg.PathStyle,
		AccessKey: creds.S3AccessKey,
		SecretKey: creds.S3SecretKey,
	})
	if err != nil {
		return nil, err
	}
	return storage.NewFanout(dir, archive)
}

// loadMailBody resolves the body template and parses it with the subject.
func loadMailBody(mc config.MailConfig) (*mailbody.Renderer, error) {
	body, err := assets.Load(mc.Template)
	if err != nil {
		return nil, fmt.Errorf("mail.template: %w", err)
	}
	return mailbody.New(mc.Subject, body)
}

// openTransport builds the configured mail transport. Nothing is dialed here.
func openTransport(mc config.MailConfig, creds *credentials) (certmail.Transport, error) {
	switch mc.Provider {
	case config.ProviderResend:
		return transport.NewResend(transport.ResendConfig{APIKey: creds.ResendAPIKey})
	default:
		return transport.NewSMTP(transport.SMTPConfig{
			Host:     mc.SMTP.Host,
			Port:     mc.SMTP.Port,
			Security: transport.Security(mc.SMTP.Security),
			Username: creds.SMTPUser,
			Password: creds.SMTPPassword,
			Timeout:  mc.SMTP.TimeoutDuration(),
		})
	}
}

// openLedger builds the record source. The Sheets client validates the
// credentials; access to the spreadsheet itself is checked by the first read.
func openLedger(ctx context.Context, sc config.SourceConfig, creds *credentials) (certmail.RecordSource, error) {
	opt := ledger.WithStatusColumn(sc.Columns.Status)
	if sc.Kind == config.SourceCSV {
		return ledger.NewCSV(sc.Path, opt), nil
	}

	src, err := ledger.NewSheets(ctx, sc.SpreadsheetID, sc.Sheet, creds.GoogleJSON, opt)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// sourceHint explains a failed ledger read.
func sourceHint(err error, creds *credentials) string {
	if errors.Is(err, ledger.ErrAccessDenied) {
		return hints.ForSheetsAccess(ledger.ServiceAccountEmail(creds.GoogleJSON))
	}
	return ""
}
