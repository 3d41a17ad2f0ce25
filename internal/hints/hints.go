// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"
)

// InCI detects CI runners, where credentials come from repository secrets.
var InCI = func() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForMissingCredentials returns hints for unset credential variables.
func ForMissingCredentials(vars []string) string {
	if len(vars) == 0 {
		return ""
	}
	hints := []string{"set " + strings.Join(vars, ", ")}
	if InCI() {
		hints = append(hints, "store them as CI secrets and expose them to the job environment")
	}
	return formatHints(hints)
}

// ForSMTPAuth returns hints for SMTP authentication failures.
// Gmail rejects account passwords and needs an app password.
func ForSMTPAuth(host string) string {
	if strings.Contains(strings.ToLower(host), "gmail") {
		return format("Gmail needs an app password (2-Step Verification on, then myaccount.google.com/apppasswords) in GMAIL_APP_PASSWORD")
	}
	return format("check CERTMAIL_SMTP_USER and CERTMAIL_SMTP_PASSWORD, and that mail.smtp.security matches the port")
}

// ForSheetsAccess returns hints for spreadsheet permission or lookup errors.
func ForSheetsAccess(serviceAccount string) string {
	if serviceAccount == "" {
		return format("share the spreadsheet with the service account email as Editor and check source.spreadsheetId")
	}
	return format("share the spreadsheet with " + serviceAccount + " as Editor and check source.spreadsheetId")
}

// ForTemplateNotFound returns hints for a missing certificate template.
func ForTemplateNotFound(path string) string {
	return format("set certificate.template in the config or place " + path + " in the working directory")
}

// ForFontNotFound returns hints for a missing font file.
func ForFontNotFound() string {
	return format("leave certificate.font.path empty to use a built-in font (Helvetica, Times, Courier)")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag, certmail init, and a config in ~/.config/go-certmail/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml, run 'certmail init'"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-certmail") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
