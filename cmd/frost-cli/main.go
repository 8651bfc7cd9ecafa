// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	"github.com/xyproto/env/v2"

	"frost/grammar"
	"frost/internal/build"
	"frost/internal/errors"
	"frost/internal/freeze"
	"frost/internal/module"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: frost <file.fst>")
		os.Exit(1)
	}

	configureLogging()

	startTime := time.Now()
	path := os.Args[1]

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %v\n", err)
		os.Exit(1)
	}

	file, err := grammar.ParseSource(path, string(source))
	if err != nil {
		grammar.ReportParseError(string(source), err)
		color.Red("Compilation failed after %s", formatDuration(time.Since(startTime)))
		os.Exit(1)
	}

	hierarchy, diagnostics := build.Build(file)

	reporter := errors.NewErrorReporter(path, string(source))
	hasErrors := false
	for _, d := range diagnostics {
		fmt.Print(reporter.FormatError(d))
		if d.Level == errors.Error {
			hasErrors = true
		}
	}
	if hasErrors {
		color.Red("Compilation failed after %s", formatDuration(time.Since(startTime)))
		os.Exit(1)
	}

	frozen, err := freeze.Freeze(hierarchy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "freeze: %v\n", err)
		color.Red("Freezing failed after %s", formatDuration(time.Since(startTime)))
		os.Exit(1)
	}

	fmt.Print(module.Format(frozen))
	color.Green("Successfully froze %s in %s", path, formatDuration(time.Since(startTime)))
}

// configureLogging wires commonlog from the environment. FROST_VERBOSE
// raises the verbosity (2 enables the per-pass freeze dumps) and
// FROST_LOG_FILE redirects log output away from the terminal so it does
// not interleave with the printed module.
func configureLogging() {
	verbosity := env.Int("FROST_VERBOSE", 0)
	if logFile := env.Str("FROST_LOG_FILE"); logFile != "" {
		commonlog.Configure(verbosity, &logFile)
		return
	}
	commonlog.Configure(verbosity, nil)
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
