package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-certmail/internal/config"
	"github.com/alnah/go-certmail/internal/fileutil"
)

// defaultInitPath is where `certmail init` writes, found by name on the next run.
const defaultInitPath = config.DefaultConfigName + ".yaml"

const initHeader = `# certmail configuration.
# Credentials are never read from this file; see 'certmail help send'.
`

// runInitCmd writes a starter config file and returns an exit code.
func runInitCmd(args []string, env *Environment) int {
	flags, err := parseInitFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	if err := runInit(flags); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}
	fmt.Fprintf(env.Stdout, "Created %s\n", flags.output)
	return ExitSuccess
}

func runInit(flags *initFlags) error {
	if fileutil.FileExists(flags.output) && !flags.force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, flags.output)
	}

	data, err := config.DefaultConfig().Marshal()
	if err != nil {
		return fmt.Errorf("rendering config: %w", err)
	}
	if err := fileutil.WriteFileAtomic(flags.output, append([]byte(initHeader), data...)); err != nil {
		return fmt.Errorf("writing %s: %w", flags.output, err)
	}
	return nil
}
