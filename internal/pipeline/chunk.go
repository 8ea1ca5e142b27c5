package pipeline

import (
	"strings"

	"github.com/JamieLittle16/marco/internal/ast"
	"github.com/JamieLittle16/marco/internal/builder"
	"github.com/JamieLittle16/marco/internal/grammar"
	"github.com/JamieLittle16/marco/internal/span"
)

// splitIntoChunks finds safe chunk boundaries: a blank line outside
// any fenced code block, at or after every chunkLines lines (spec
// §4.6 "never inside fenced code"). The last chunk always runs to the
// end of source, even if shorter than chunkLines.
func splitIntoChunks(source string, chunkLines int) []span.Located {
	base := span.FromSource(source)
	if chunkLines <= 0 {
		return []span.Located{base}
	}

	var offsets []int
	lineCount := 0
	inFence := false
	var fenceChar byte

	i := 0
	for i <= len(source) {
		nl := strings.IndexByte(source[i:], '\n')
		lineEnd := len(source)
		if nl >= 0 {
			lineEnd = i + nl
		}
		line := source[i:lineEnd]
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			ch := trimmed[0]
			if !inFence {
				inFence, fenceChar = true, ch
			} else if ch == fenceChar {
				inFence = false
			}
		}
		lineCount++
		if !inFence && strings.TrimSpace(line) == "" && lineCount >= chunkLines && lineEnd+1 < len(source) {
			offsets = append(offsets, lineEnd+1)
			lineCount = 0
		}
		if nl < 0 {
			break
		}
		i = lineEnd + 1
	}

	var chunks []span.Located
	start := 0
	for _, off := range offsets {
		if off <= start {
			continue
		}
		chunks = append(chunks, locatedSlice(base, source, start, off))
		start = off
	}
	chunks = append(chunks, locatedSlice(base, source, start, len(source)))
	return chunks
}

func locatedSlice(base span.Located, source string, start, end int) span.Located {
	pos := base.Advance(start).Pos()
	return span.Located{Text: source[start:end], Offset: pos.Offset, Line: pos.Line, Column: pos.Column}
}

// buildChunked parses and builds each chunk independently, then
// concatenates their top-level children into a single document
// spanning the whole source. Running the chunks concurrently is
// package executor's job (ProcessLargeDocument); this function itself
// is ordering-preserving and sequential.
func buildChunked(source string, chunks []span.Located) (*ast.Document, []error) {
	var errs []error
	var children []ast.Node
	for _, ch := range chunks {
		pairs, perrs := grammar.ParseBlocksAt(ch)
		chunkSpan := span.FromLocated(ch, ch.Advance(len(ch.Text)))
		doc, berrs := builder.BuildDocument(pairs, chunkSpan)
		errs = append(errs, perrs...)
		errs = append(errs, berrs...)
		children = append(children, doc.Children...)
	}
	return &ast.Document{Children: children, Sp: documentSpan(source)}, errs
}

// BuildChunks is the executor-facing entry point: it returns the
// located chunks only; each one is built with BuildChunk, and how
// those builds are scheduled is left to the caller.
func BuildChunks(source string, chunkLines int) []span.Located {
	return splitIntoChunks(source, chunkLines)
}

// BuildChunk builds a single previously-split chunk.
func BuildChunk(chunk span.Located) (*ast.Document, []error) {
	pairs, perrs := grammar.ParseBlocksAt(chunk)
	chunkSpan := span.FromLocated(chunk, chunk.Advance(len(chunk.Text)))
	doc, berrs := builder.BuildDocument(pairs, chunkSpan)
	return doc, append(perrs, berrs...)
}
