package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JamieLittle16/marco/internal/logging"
	"github.com/JamieLittle16/marco/internal/pipeline"
)

var stringExpectedHTML string

var stringCmd = &cobra.Command{
	Use:   "string <markdown>",
	Short: "Render a single markdown string and print the HTML",
	Args:  cobra.ExactArgs(1),
	RunE:  runString,
}

func init() {
	stringCmd.Flags().StringVar(&stringExpectedHTML, "expect-html", "", "if set, compare rendered output against this HTML instead of printing it")
}

func runString(cmd *cobra.Command, args []string) error {
	engine, err := pipeline.NewEngine(0, logging.Noop())
	if err != nil {
		return &exitError{code: 2, err: fmt.Errorf("start engine: %w", err)}
	}

	res, err := engine.Process([]byte(args[0]), pipeline.Options{Format: pipeline.FormatHTML})
	if err != nil {
		return &exitError{code: 2, err: fmt.Errorf("render: %w", err)}
	}

	if !cmd.Flags().Changed("expect-html") {
		fmt.Fprintln(cmd.OutOrStdout(), res.Output)
		return nil
	}

	if res.Output != stringExpectedHTML {
		fmt.Fprintf(cmd.OutOrStdout(), "want: %q\ngot:  %q\n", stringExpectedHTML, res.Output)
		return &exitError{code: 1, err: fmt.Errorf("rendered output did not match expected HTML")}
	}
	fmt.Fprintln(cmd.OutOrStdout(), "match")
	return nil
}
