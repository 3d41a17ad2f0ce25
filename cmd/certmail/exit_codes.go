package main

import (
	"errors"
	"os"

	certmail "github.com/alnah/go-certmail"
	"github.com/alnah/go-certmail/internal/assets"
	"github.com/alnah/go-certmail/internal/config"
	"github.com/alnah/go-certmail/internal/dateutil"
	"github.com/alnah/go-certmail/internal/ledger"
	"github.com/alnah/go-certmail/internal/mailbody"
	"github.com/alnah/go-certmail/internal/storage"
	"github.com/alnah/go-certmail/internal/transport"
)

// Exit codes for certmail CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Run finished (per-record failures are in the ledger)
	ExitGeneral = 1 // General/unexpected error, or failed records with --strict
	ExitUsage   = 2 // Invalid flags, config, credentials or templates
	ExitIO      = 3 // Template, font, ledger file or output not accessible
	ExitRemote  = 4 // Spreadsheet, mail or storage service refused the run

	ExitInterrupted = 130 // Stopped by SIGINT or SIGTERM between records
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, certmail.ErrInterrupted) {
		return ExitInterrupted
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, certmail.ErrTemplateLoad) ||
		errors.Is(err, certmail.ErrTemplateEmpty) ||
		errors.Is(err, certmail.ErrFontLoad) ||
		errors.Is(err, ErrReadCredentials) ||
		errors.Is(err, ErrOutputDir) {
		return ExitIO
	}

	// Remote service errors (exit 4)
	if errors.Is(err, ledger.ErrAccessDenied) ||
		errors.Is(err, certmail.ErrSourceRead) ||
		errors.Is(err, storage.ErrAccessDenied) ||
		errors.Is(err, storage.ErrUploadFailed) ||
		errors.Is(err, transport.ErrAuth) ||
		errors.Is(err, transport.ErrDelivery) {
		return ExitRemote
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrMissingField) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, certmail.ErrInvalidBox) ||
		errors.Is(err, ledger.ErrCredentials) ||
		errors.Is(err, storage.ErrInvalidConfig) ||
		errors.Is(err, transport.ErrInvalidConfig) ||
		errors.Is(err, mailbody.ErrTemplateParse) ||
		errors.Is(err, mailbody.ErrEmptySubject) ||
		errors.Is(err, assets.ErrTemplateNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrPathTraversal) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, ErrMissingCredentials) ||
		errors.Is(err, ErrUnexpectedArgs) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrConfigExists) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}
