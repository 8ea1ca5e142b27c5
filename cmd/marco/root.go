package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "marco",
	Short: "Marco markdown engine test harness and string runner",
	Long: `marco drives the Marco parsing/rendering core from the command line:
run a JSON test spec against it, or render a single markdown string.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(stringCmd)
}

// exitError lets a subcommand pick its own process exit code (spec
// §6: 0 all pass, 1 one or more failures, 2 infrastructure error)
// while still reporting through cobra's normal error path.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	if ee, ok := err.(*exitError); ok {
		return ee.code
	}
	return 1
}
