// Package executor is a thin parallel layer over package pipeline
// (spec §4.8): it fans a slice of inputs out across goroutines and
// collects results back in input order, regardless of which goroutine
// finishes first. A failure on one input never affects the others.
package executor

import (
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/JamieLittle16/marco/internal/pipeline"
)

// Config tunes how an Executor schedules work.
type Config struct {
	// MaxThreads bounds concurrent goroutines. Zero or negative means
	// GOMAXPROCS.
	MaxThreads int
	// ChunkLines sets pipeline.Options.ChunkLines for
	// ProcessLargeDocument when the call's own Options leave it at
	// zero; zero here means pipeline.DefaultChunkLines.
	ChunkLines int
	// ParallelRendering also parallelizes per-chunk rendering inside
	// ProcessLargeDocument, rather than rendering the merged document
	// once. Kept for parity with the configuration shape of spec
	// §4.8; the default (false) renders the merged AST once, which is
	// simpler and byte-identical to an unchunked render.
	ParallelRendering bool
}

func (c Config) limit() int {
	if c.MaxThreads > 0 {
		return c.MaxThreads
	}
	return runtime.GOMAXPROCS(0)
}

// Executor runs batches of pipeline work against a shared Engine.
type Executor struct {
	engine *pipeline.Engine
	cfg    Config
}

// New builds an Executor over engine with the given Config.
func New(engine *pipeline.Engine, cfg Config) *Executor {
	return &Executor{engine: engine, cfg: cfg}
}

// BatchResult is one ProcessBatch outcome, aligned by index with its
// input.
type BatchResult struct {
	Result *pipeline.Result
	Err    error
}

// ProcessBatch runs Process over every input in inputs, in parallel,
// and returns results in input order (spec §5 "input order, not
// completion order"). An error on one input is reported in its own
// slot and does not abort the others.
func (e *Executor) ProcessBatch(inputs [][]byte, opts pipeline.Options) []BatchResult {
	results := make([]BatchResult, len(inputs))
	if len(inputs) == 0 {
		return results
	}

	g := new(errgroup.Group)
	g.SetLimit(e.cfg.limit())
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			res, err := e.engine.Process(in, opts)
			results[i] = BatchResult{Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// FileResult pairs a requested path with its outcome.
type FileResult struct {
	Path   string
	Result *pipeline.Result
	Err    error
}

// ProcessFiles runs ProcessFile over every path in paths, in parallel,
// returning results in input order.
func (e *Executor) ProcessFiles(paths []string, opts pipeline.Options) []FileResult {
	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return results
	}

	g := new(errgroup.Group)
	g.SetLimit(e.cfg.limit())
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			res, err := e.engine.ProcessFile(p, opts)
			results[i] = FileResult{Path: p, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ProcessLargeDocument runs the opt-in chunked path (spec §4.6, §4.8).
// By default it delegates to Engine.Process with ChunkLines set: the
// chunks are built one after another and merged into a single
// document, so the output is byte-identical to a plain Process call
// over the same source and carries no container element. This applies
// to JSON output as well: the merged AST is returned rather than a
// chunk array.
//
// Only when Config.ParallelRendering is set and the format is HTML are
// the chunks built and rendered in parallel and the concatenated HTML
// wrapped in a container element (processLargeDocumentParallel).
func (e *Executor) ProcessLargeDocument(source []byte, opts pipeline.Options) (*pipeline.Result, error) {
	if opts.ChunkLines <= 0 {
		opts.ChunkLines = e.cfg.ChunkLines
	}
	if opts.ChunkLines <= 0 {
		opts.ChunkLines = pipeline.DefaultChunkLines
	}

	if e.cfg.ParallelRendering && opts.Format == pipeline.FormatHTML {
		return e.processLargeDocumentParallel(source, opts)
	}
	return e.engine.Process(source, opts)
}

// processLargeDocumentParallel renders each chunk independently and
// concatenates the HTML, rather than merging ASTs first. It is used
// only when Config.ParallelRendering is set, trading the byte-for-byte
// equivalence of the merged-AST path for chunk-level render
// parallelism.
func (e *Executor) processLargeDocumentParallel(source []byte, opts pipeline.Options) (*pipeline.Result, error) {
	chunks := pipeline.BuildChunks(string(source), opts.ChunkLines)
	htmls := make([]string, len(chunks))
	var mu sync.Mutex
	var errs []error

	g := new(errgroup.Group)
	g.SetLimit(e.cfg.limit())
	for i, ch := range chunks {
		i, ch := i, ch
		g.Go(func() error {
			doc, berrs := pipeline.BuildChunk(ch)
			htmls[i] = pipeline.RenderHTML(doc)
			if len(berrs) > 0 {
				mu.Lock()
				errs = append(errs, berrs...)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	var sb strings.Builder
	sb.WriteString(`<div class="marco-document">`)
	for _, h := range htmls {
		sb.WriteString(h)
	}
	sb.WriteString(`</div>`)

	return &pipeline.Result{Output: sb.String(), Errors: errs}, nil
}
