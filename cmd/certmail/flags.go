package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// sourceFlags override the ledger location.
type sourceFlags struct {
	spreadsheetID string
	sheet         string
	csv           string
}

// sendFlags holds all flags for the send command.
type sendFlags struct {
	common   commonFlags
	source   sourceFlags
	output   string
	template string
	font     string
	from     string
	date     string
	mailBody string
	logJSON  bool
	strict   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-record details")
}

// addSourceFlags adds ledger flags to a FlagSet.
func addSourceFlags(fs *flag.FlagSet, f *sourceFlags) {
	fs.StringVar(&f.spreadsheetID, "spreadsheet", "", "Google spreadsheet ID")
	fs.StringVar(&f.sheet, "sheet", "", "sheet (tab) name, default first sheet")
	fs.StringVar(&f.csv, "csv", "", "read records from a CSV file instead of Google Sheets")
}

// buildSendFlagSet registers every send flag on a new FlagSet bound to f.
func buildSendFlagSet(f *sendFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "certificate output directory")
	fs.StringVarP(&f.template, "template", "t", "", "certificate PDF template")
	fs.StringVar(&f.font, "font", "", "TrueType font file")
	fs.StringVar(&f.from, "from", "", "sender address")
	fs.StringVar(&f.date, "date", "", "issue date: \"auto\", \"auto:FORMAT\" or literal")
	fs.StringVar(&f.mailBody, "mail-template", "", "email body template name or path")

	// Run behavior
	fs.BoolVar(&f.logJSON, "log-json", false, "write logs as JSON")
	fs.BoolVar(&f.strict, "strict", false, "exit non-zero when any record failed")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addSourceFlags(fs, &f.source)

	fs.Usage = func() { printSendUsage(os.Stderr) }
	return fs
}

// parseSendFlags parses send command flags. The command takes no
// positional arguments.
func parseSendFlags(args []string) (*sendFlags, error) {
	f := &sendFlags{}
	fs := buildSendFlagSet(f)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedArgs, fs.Args())
	}
	return f, nil
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
}

func buildDoctorFlagSet(f *doctorFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.BoolVar(&f.json, "json", false, "output results as JSON")
	addCommonFlags(fs, &f.common)
	fs.Usage = func() { printDoctorUsage(os.Stderr) }
	return fs
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string) (*doctorFlags, error) {
	f := &doctorFlags{}
	fs := buildDoctorFlagSet(f)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedArgs, fs.Args())
	}
	return f, nil
}

// initFlags holds flags for the init command.
type initFlags struct {
	output string
	force  bool
}

func buildInitFlagSet(f *initFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.StringVarP(&f.output, "output", "o", defaultInitPath, "config file to write")
	fs.BoolVarP(&f.force, "force", "f", false, "overwrite an existing file")
	fs.Usage = func() { printInitUsage(os.Stderr) }
	return fs
}

// parseInitFlags parses init command flags.
func parseInitFlags(args []string) (*initFlags, error) {
	f := &initFlags{}
	fs := buildInitFlagSet(f)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedArgs, fs.Args())
	}
	return f, nil
}
