package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JamieLittle16/marco/internal/logging"
	"github.com/JamieLittle16/marco/internal/pipeline"
)

// specCase is one record of a test spec file (spec §6 "Spec file
// schema").
type specCase struct {
	Markdown  string `json:"markdown"`
	HTML      string `json:"html"`
	Example   uint32 `json:"example"`
	StartLine uint32 `json:"start_line"`
	EndLine   uint32 `json:"end_line"`
	Section   string `json:"section"`
}

type specFile struct {
	Source string     `json:"source"`
	Tests  []specCase `json:"tests"`
}

var testCmd = &cobra.Command{
	Use:   "test <spec-file.json>",
	Short: "Run a JSON spec file of markdown/expected-HTML cases against the engine",
	Args:  cobra.ExactArgs(1),
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return &exitError{code: 2, err: fmt.Errorf("read spec file: %w", err)}
	}

	var spec specFile
	if err := json.Unmarshal(data, &spec); err != nil {
		return &exitError{code: 2, err: fmt.Errorf("parse spec file: %w", err)}
	}

	engine, err := pipeline.NewEngine(0, logging.Noop())
	if err != nil {
		return &exitError{code: 2, err: fmt.Errorf("start engine: %w", err)}
	}

	failures := 0
	for i, tc := range spec.Tests {
		res, err := engine.Process([]byte(tc.Markdown), pipeline.Options{Format: pipeline.FormatHTML})
		if err != nil {
			failures++
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL #%d example=%d section=%q (lines %d-%d): engine error: %v\n",
				i, tc.Example, tc.Section, tc.StartLine, tc.EndLine, err)
			continue
		}
		if res.Output != tc.HTML {
			failures++
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL #%d example=%d section=%q (lines %d-%d):\n  want: %q\n  got:  %q\n",
				i, tc.Example, tc.Section, tc.StartLine, tc.EndLine, tc.HTML, res.Output)
			continue
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d/%d passed\n", len(spec.Tests)-failures, len(spec.Tests))
	if failures > 0 {
		return &exitError{code: 1, err: fmt.Errorf("%d test case(s) failed", failures)}
	}
	return nil
}
