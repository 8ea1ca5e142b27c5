package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeSpecFile(t *testing.T, spec specFile) string {
	t.Helper()
	data, err := json.Marshal(spec)
	if err != nil {
		t.Fatalf("marshal spec: %v", err)
	}
	path := filepath.Join(t.TempDir(), "spec.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write spec file: %v", err)
	}
	return path
}

func TestTestCommandAllPassExitsZero(t *testing.T) {
	path := writeSpecFile(t, specFile{
		Source: "test",
		Tests: []specCase{
			{Markdown: "# Hi\n", HTML: "<h1>Hi</h1>\n", Example: 1, Section: "headings"},
		},
	})
	out, err := execRoot(t, "test", path)
	if err != nil {
		t.Fatalf("expected success, got %v (output: %s)", err, out)
	}
}

func TestTestCommandFailureExitsOne(t *testing.T) {
	path := writeSpecFile(t, specFile{
		Source: "test",
		Tests: []specCase{
			{Markdown: "# Hi\n", HTML: "<h1>Nope</h1>\n", Example: 2, Section: "headings"},
		},
	})
	_, err := execRoot(t, "test", path)
	if err == nil {
		t.Fatal("expected a failure error")
	}
	if exitCodeFor(err) != 1 {
		t.Errorf("expected exit code 1, got %d", exitCodeFor(err))
	}
}

func TestTestCommandMissingFileExitsTwo(t *testing.T) {
	_, err := execRoot(t, "test", filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err == nil {
		t.Fatal("expected an error for a missing spec file")
	}
	if exitCodeFor(err) != 2 {
		t.Errorf("expected exit code 2, got %d", exitCodeFor(err))
	}
}

func TestTestCommandMalformedJSONExitsTwo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write bad spec: %v", err)
	}
	_, err := execRoot(t, "test", path)
	if err == nil {
		t.Fatal("expected an error for malformed spec JSON")
	}
	if exitCodeFor(err) != 2 {
		t.Errorf("expected exit code 2, got %d", exitCodeFor(err))
	}
}

func TestStringCommandPrintsRenderedHTML(t *testing.T) {
	out, err := execRoot(t, "string", "# Hi\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<h1>Hi</h1>\n"
	if out != want+"\n" {
		t.Errorf("got %q, want %q followed by newline", out, want)
	}
}

func TestStringCommandExpectHTMLMatch(t *testing.T) {
	_, err := execRoot(t, "string", "# Hi\n", "--expect-html", "<h1>Hi</h1>\n")
	if err != nil {
		t.Fatalf("expected match, got error: %v", err)
	}
}

func TestStringCommandExpectHTMLMismatchExitsOne(t *testing.T) {
	_, err := execRoot(t, "string", "# Hi\n", "--expect-html", "<h1>Bye</h1>\n")
	if err == nil {
		t.Fatal("expected a mismatch error")
	}
	if exitCodeFor(err) != 1 {
		t.Errorf("expected exit code 1, got %d", exitCodeFor(err))
	}
}
