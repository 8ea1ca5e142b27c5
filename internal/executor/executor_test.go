package executor

import (
	"os"
	"strings"
	"testing"

	"github.com/JamieLittle16/marco/internal/logging"
	"github.com/JamieLittle16/marco/internal/pipeline"
)

func newTestExecutor(t *testing.T, cfg Config) (*Executor, *pipeline.Engine) {
	t.Helper()
	e, err := pipeline.NewEngine(64, logging.Noop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return New(e, cfg), e
}

func TestProcessBatchPreservesInputOrder(t *testing.T) {
	ex, _ := newTestExecutor(t, Config{})
	inputs := [][]byte{
		[]byte("# One\n"),
		[]byte("# Two\n"),
		[]byte("# Three\n"),
		[]byte("# Four\n"),
		[]byte("# Five\n"),
	}
	results := ex.ProcessBatch(inputs, pipeline.Options{Format: pipeline.FormatHTML})
	if len(results) != len(inputs) {
		t.Fatalf("expected %d results, got %d", len(inputs), len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("result %d: %v", i, r.Err)
		}
		want := strings.TrimSpace(strings.Split(string(inputs[i]), " ")[1])
		if !strings.Contains(r.Result.Output, want) {
			t.Errorf("result %d: expected output to contain %q, got %q", i, want, r.Result.Output)
		}
	}
}

func TestProcessBadFormatFailsWithoutAffectingOtherInput(t *testing.T) {
	ex, _ := newTestExecutor(t, Config{})
	inputs := [][]byte{[]byte("# Good\n"), []byte("# Also good\n")}
	opts := []pipeline.Options{{Format: pipeline.FormatHTML}, {Format: pipeline.Format(99)}}

	results := make([]BatchResult, len(inputs))
	for i := range inputs {
		res, err := ex.engine.Process(inputs[i], opts[i])
		results[i] = BatchResult{Result: res, Err: err}
	}
	if results[0].Err != nil {
		t.Errorf("expected first input to succeed, got %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("expected second input (bad format) to fail")
	}
}

func TestProcessFilesPreservesPathOrder(t *testing.T) {
	ex, _ := newTestExecutor(t, Config{})
	dir := t.TempDir()
	paths := make([]string, 3)
	for i, name := range []string{"a.md", "b.md", "c.md"} {
		p := dir + "/" + name
		writeFile(t, p, "# "+name+"\n")
		paths[i] = p
	}

	results := ex.ProcessFiles(paths, pipeline.Options{Format: pipeline.FormatHTML})
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("path %d: %v", i, r.Err)
		}
		if r.Path != paths[i] {
			t.Errorf("expected path %q at index %d, got %q", paths[i], i, r.Path)
		}
	}
}

func TestProcessLargeDocumentMergedMatchesPlainProcess(t *testing.T) {
	ex, engine := newTestExecutor(t, Config{ChunkLines: 2})
	src := []byte("# A\n\npara a\n\n# B\n\npara b\n\n# C\n\npara c\n")

	plain, err := engine.Process(src, pipeline.Options{Format: pipeline.FormatHTML})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	large, err := ex.ProcessLargeDocument(src, pipeline.Options{Format: pipeline.FormatHTML})
	if err != nil {
		t.Fatalf("ProcessLargeDocument: %v", err)
	}
	if plain.Output != large.Output {
		t.Errorf("expected merged-AST chunked output to match unchunked:\n%q\nvs\n%q", plain.Output, large.Output)
	}
}

func TestProcessLargeDocumentParallelRenderingWrapsContainer(t *testing.T) {
	ex, _ := newTestExecutor(t, Config{ChunkLines: 2, ParallelRendering: true})
	src := []byte("# A\n\npara a\n\n# B\n\npara b\n")

	res, err := ex.ProcessLargeDocument(src, pipeline.Options{Format: pipeline.FormatHTML})
	if err != nil {
		t.Fatalf("ProcessLargeDocument: %v", err)
	}
	if !strings.HasPrefix(res.Output, `<div class="marco-document">`) {
		t.Errorf("expected container wrapper, got %q", res.Output)
	}
	if !strings.Contains(res.Output, "<h1>A</h1>") || !strings.Contains(res.Output, "<h1>B</h1>") {
		t.Errorf("expected both chunk headings rendered, got %q", res.Output)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
