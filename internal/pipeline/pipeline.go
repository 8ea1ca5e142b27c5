// Package pipeline composes the per-document processing flow of spec
// §4.6: sanitize raw bytes, fingerprint the sanitized content against
// the active options, consult the parse cache, build the AST on a
// miss, then render. Large documents can opt into chunked, parallel
// processing via package executor.
package pipeline

import (
	"strconv"
	"strings"

	"github.com/JamieLittle16/marco/internal/ast"
	"github.com/JamieLittle16/marco/internal/builder"
	"github.com/JamieLittle16/marco/internal/cache"
	"github.com/JamieLittle16/marco/internal/errtax"
	"github.com/JamieLittle16/marco/internal/grammar"
	"github.com/JamieLittle16/marco/internal/logging"
	"github.com/JamieLittle16/marco/internal/render"
	"github.com/JamieLittle16/marco/internal/sanitize"
	"github.com/JamieLittle16/marco/internal/span"
)

// DefaultChunkLines is the large-document chunk target when a caller
// enables chunking without naming a line count (spec §4.6 "default
// ~100 lines").
const DefaultChunkLines = 100

// Format selects the rendered output shape.
type Format int

const (
	FormatHTML Format = iota
	FormatJSONCompact
	FormatJSONPretty
)

// Options configures a single Process call. Every field that affects
// parsing or rendering must be folded into the fingerprint, so two
// calls with different Options never collide in the cache.
type Options struct {
	Format Format
	// ChunkLines, if > 0, enables chunked large-document processing:
	// the source is split at safe block boundaries into chunks of
	// roughly this many lines, which are parsed and built one after
	// another and merged into a single document (spec §4.6, §4.8).
	// Zero processes the document as a single unit.
	ChunkLines int
}

func (o Options) cacheKey() string {
	var sb strings.Builder
	sb.WriteString("format=")
	sb.WriteString(strconv.Itoa(int(o.Format)))
	sb.WriteString(";chunk=")
	sb.WriteString(strconv.Itoa(o.ChunkLines))
	return sb.String()
}

// Engine bundles the caches the pipeline needs across calls. A host
// typically constructs one Engine and reuses it for the process
// lifetime.
type Engine struct {
	Parses *cache.ParseCache
	Files  *cache.FileCache
	Log    logging.Sink
}

// NewEngine builds an Engine with fresh caches of the given parse
// cache capacity.
func NewEngine(parseCacheCapacity int, log logging.Sink) (*Engine, error) {
	if log == nil {
		log = logging.Noop()
	}
	pc, err := cache.NewParseCache(parseCacheCapacity, log)
	if err != nil {
		return nil, err
	}
	return &Engine{Parses: pc, Files: cache.NewFileCache(log), Log: log}, nil
}

// Result is the output of a single Process call.
type Result struct {
	Document *ast.Document
	Output   string
	Errors   []error
}

// Process sanitizes, fingerprints, parses (cache permitting), builds,
// and renders source according to opts.
func (e *Engine) Process(source []byte, opts Options) (*Result, error) {
	sanitized, _ := sanitize.Sanitize(source, "")
	fp := cache.Fingerprint(sanitized, opts.cacheKey())

	var buildErrs []error
	doc, err := e.Parses.GetOrBuild(fp, func() (*ast.Document, error) {
		d, berrs := buildDocument(sanitized, opts)
		buildErrs = berrs
		return d, nil
	})
	if err != nil {
		return nil, errtax.Wrap(errtax.Build, "build document", err)
	}

	output, err := renderDocument(doc, opts.Format)
	if err != nil {
		return nil, err
	}
	return &Result{Document: doc, Output: output, Errors: buildErrs}, nil
}

// ProcessFile reads path through the file cache and runs Process on
// its contents.
func (e *Engine) ProcessFile(path string, opts Options) (*Result, error) {
	data, err := e.Files.Read(path)
	if err != nil {
		return nil, err
	}
	return e.Process(data, opts)
}

func buildDocument(source string, opts Options) (*ast.Document, []error) {
	if opts.ChunkLines > 0 {
		if chunks := splitIntoChunks(source, opts.ChunkLines); len(chunks) > 1 {
			return buildChunked(source, chunks)
		}
	}
	pairs, parseErrs := grammar.ParseBlocks(source)
	doc, buildErrs := builder.BuildDocument(pairs, documentSpan(source))
	return doc, append(parseErrs, buildErrs...)
}

func documentSpan(source string) span.Span {
	loc := span.FromSource(source)
	return span.FromLocated(loc, loc.Advance(len(source)))
}

// RenderHTML exposes the HTML renderer for callers (package executor)
// that build documents chunk-by-chunk outside of Process.
func RenderHTML(doc *ast.Document) string {
	return render.HTML(doc)
}

func renderDocument(doc *ast.Document, format Format) (string, error) {
	switch format {
	case FormatHTML:
		return render.HTML(doc), nil
	case FormatJSONCompact:
		data, err := render.JSONCompact(doc)
		if err != nil {
			return "", errtax.Wrap(errtax.Render, "encode json", err)
		}
		return string(data), nil
	case FormatJSONPretty:
		data, err := render.JSONPretty(doc)
		if err != nil {
			return "", errtax.Wrap(errtax.Render, "encode json", err)
		}
		return string(data), nil
	default:
		return "", errtax.New(errtax.Invalid, "unknown output format")
	}
}
