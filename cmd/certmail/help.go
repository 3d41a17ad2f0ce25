package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: certmail [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  send       Render and email pending certificates (default)")
	fmt.Fprintln(w, "  doctor     Check configuration, files and credentials")
	fmt.Fprintln(w, "  init       Write a starter config file")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'certmail help <command>' for details on a specific command.")
}

// printSendUsage prints usage for the send command.
func printSendUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: certmail send [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a certificate for every record not yet sent, email it, and write")
	fmt.Fprintln(w, "the status back to the spreadsheet. Safe to run again after a crash:")
	fmt.Fprintln(w, "records marked sent are skipped, everything else is retried.")
	fmt.Fprintln(w, "Ctrl-C stops after the record in progress (exit 130).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Source:")
	fmt.Fprintln(w, "      --spreadsheet <id>    Google spreadsheet ID")
	fmt.Fprintln(w, "      --sheet <name>        Sheet (tab) name, default first sheet")
	fmt.Fprintln(w, "      --csv <path>          Read records from a CSV file instead")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Certificate:")
	fmt.Fprintln(w, "  -t, --template <path>     PDF template (default Certificate.pdf)")
	fmt.Fprintln(w, "      --font <path>         TrueType font file")
	fmt.Fprintln(w, "      --date <s>            Issue date: \"auto\", \"auto:FORMAT\", or literal")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D")
	fmt.Fprintln(w, "                            Presets (case-insensitive): iso, european, us, long")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default output)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Mail:")
	fmt.Fprintln(w, "      --from <addr>         Sender address (default SMTP user)")
	fmt.Fprintln(w, "      --mail-template <s>   Body template name or .md path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --strict              Exit 1 when any record failed")
	fmt.Fprintln(w, "      --log-json            Write logs as JSON")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show per-record details")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Credentials (environment only):")
	fmt.Fprintln(w, "  GMAIL_USER, GMAIL_APP_PASSWORD        SMTP login (or CERTMAIL_SMTP_USER/_PASSWORD)")
	fmt.Fprintln(w, "  GOOGLE_CREDENTIALS                    Service account JSON (or CERTMAIL_GOOGLE_CREDENTIALS_FILE)")
	fmt.Fprintln(w, "  RESEND_API_KEY                        When mail.provider is resend")
	fmt.Fprintln(w, "  CERTMAIL_S3_ACCESS_KEY, _SECRET_KEY   When output.s3.bucket is set")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  certmail")
	fmt.Fprintln(w, "  certmail send --spreadsheet 1AbC... --sheet Responses")
	fmt.Fprintln(w, "  certmail send --csv participants.csv --date auto:long")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: certmail doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the configuration, template, font, credentials and output")
	fmt.Fprintln(w, "directory without contacting any service.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --json                Output results as JSON")
}

// printInitUsage prints usage for the init command.
func printInitUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: certmail init [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Write a config file with every default spelled out.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       File to write (default certmail.yaml)")
	fmt.Fprintln(w, "  -f, --force               Overwrite an existing file")
}

// runHelp prints help for the given command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "send":
		printSendUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "init":
		printInitUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: certmail version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: certmail help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "%v: %s\n", ErrUnknownCommand, args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
