package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Sentinel errors for CLI operations.
var (
	ErrUnknownCommand     = errors.New("unknown command")
	ErrUnexpectedArgs     = errors.New("unexpected arguments")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrReadCredentials    = errors.New("failed to read credentials")
	ErrOutputDir          = errors.New("output directory not usable")
	ErrConfigExists       = errors.New("config file already exists")
	ErrRecordsFailed      = errors.New("some certificates were not sent")
)

func main() {
	// Configure GOMAXPROCS with conditional logging
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if wantsVerbose(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches to a command and returns the process exit code.
// With no command, or when the first argument is a flag, it runs send.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 || (strings.HasPrefix(args[1], "-") && !isHelpFlag(args[1])) {
		return runSendCmd(args[min(len(args), 1):], env)
	}

	cmd, rest := args[1], args[2:]
	if !isCommand(cmd) && !isHelpFlag(cmd) {
		fmt.Fprintf(env.Stderr, "%v: %s\n", ErrUnknownCommand, cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	switch cmd {
	case "send":
		return runSendCmd(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "init":
		return runInitCmd(rest, env)
	case "completion":
		return runCompletionCmd(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "certmail %s\n", Version)
		return ExitSuccess
	default:
		return runHelp(rest, env)
	}
}

// isCommand reports whether name is a certmail command.
func isCommand(name string) bool {
	switch name {
	case "send", "doctor", "init", "completion", "version", "help":
		return true
	}
	return false
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help"
}

// wantsVerbose scans raw arguments for -v/--verbose before flags are parsed.
func wantsVerbose(args []string) bool {
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}
