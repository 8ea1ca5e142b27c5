package pipeline

import (
	"os"
	"strings"
	"testing"

	"github.com/JamieLittle16/marco/internal/logging"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(16, logging.Noop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestProcessRendersHTML(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.Process([]byte("# Title\n\nHello *world*.\n"), Options{Format: FormatHTML})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(res.Output, "<h1>Title</h1>") {
		t.Errorf("expected rendered heading, got %q", res.Output)
	}
	if !strings.Contains(res.Output, "<em>world</em>") {
		t.Errorf("expected rendered emphasis, got %q", res.Output)
	}
}

func TestProcessRendersJSON(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.Process([]byte("# Title\n"), Options{Format: FormatJSONCompact})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(res.Output, `"type"`) {
		t.Errorf("expected json envelope, got %q", res.Output)
	}
}

func TestProcessCachesSecondCall(t *testing.T) {
	e := newTestEngine(t)
	src := []byte("# Cached\n")
	first, err := e.Process(src, Options{Format: FormatHTML})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	second, err := e.Process(src, Options{Format: FormatHTML})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if first.Output != second.Output {
		t.Errorf("expected identical output on repeat call, got %q vs %q", first.Output, second.Output)
	}
	hits, _ := e.Parses.Stats()
	if hits < 1 {
		t.Errorf("expected at least one cache hit, got hits=%d", hits)
	}
}

func TestProcessDifferentFormatsDoNotCollide(t *testing.T) {
	e := newTestEngine(t)
	src := []byte("# Title\n")
	html, err := e.Process(src, Options{Format: FormatHTML})
	if err != nil {
		t.Fatalf("Process html: %v", err)
	}
	js, err := e.Process(src, Options{Format: FormatJSONCompact})
	if err != nil {
		t.Fatalf("Process json: %v", err)
	}
	if html.Output == js.Output {
		t.Error("expected html and json outputs to differ")
	}
}

func TestProcessFileReadsThroughFileCache(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	path := dir + "/doc.md"
	if err := os.WriteFile(path, []byte("# From disk\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	res, err := e.ProcessFile(path, Options{Format: FormatHTML})
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if !strings.Contains(res.Output, "From disk") {
		t.Errorf("expected file contents rendered, got %q", res.Output)
	}
}

func TestProcessUnknownFormatErrors(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Process([]byte("x"), Options{Format: Format(99)}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSplitIntoChunksRespectsFencedBoundaries(t *testing.T) {
	src := "para one\n\n```\nfenced\n\nstill fenced\n```\n\npara two\n"
	chunks := splitIntoChunks(src, 2)
	var rebuilt strings.Builder
	for _, c := range chunks {
		rebuilt.WriteString(c.Text)
	}
	if rebuilt.String() != src {
		t.Errorf("chunk texts must reconstruct the source exactly, got %q", rebuilt.String())
	}
	for _, c := range chunks {
		if strings.Count(c.Text, "```")%2 != 0 {
			t.Errorf("chunk split inside a fenced block: %q", c.Text)
		}
	}
}

func TestProcessChunkedMatchesUnchunkedRendering(t *testing.T) {
	e := newTestEngine(t)
	src := []byte("# One\n\npara one\n\n# Two\n\npara two\n\n# Three\n\npara three\n")
	whole, err := e.Process(src, Options{Format: FormatHTML})
	if err != nil {
		t.Fatalf("Process whole: %v", err)
	}
	chunked, err := e.Process(src, Options{Format: FormatHTML, ChunkLines: 2})
	if err != nil {
		t.Fatalf("Process chunked: %v", err)
	}
	if whole.Output != chunked.Output {
		t.Errorf("expected chunked rendering to match unchunked:\n%q\nvs\n%q", whole.Output, chunked.Output)
	}
}
