// Package diff computes line-based diffs using the sergi/go-diff
// engine rather than a hand-rolled LCS.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType classifies a diff line.
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

// Line is one line of a computed diff.
type Line struct {
	Type    LineType
	Content string
}

// Engine wraps a diffmatchpatch instance configured for code.
type Engine struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

func NewEngine() *Engine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // favor accuracy over speed on code-sized inputs
	return &Engine{dmp: dmp}
}

// Lines computes a line-level diff between two file bodies. The
// char-mapping reduction keeps diffs on line boundaries instead of
// mid-line character runs.
func (e *Engine) Lines(oldContent, newContent string) []Line {
	a, b, lineArray := e.dmp.DiffLinesToChars(oldContent, newContent)
	diffs := e.dmp.DiffMain(a, b, false)
	diffs = e.dmp.DiffCleanupSemantic(diffs)
	diffs = e.dmp.DiffCharsToLines(diffs, lineArray)

	var out []Line
	for _, d := range diffs {
		lineType := LineContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			lineType = LineAdded
		case diffmatchpatch.DiffDelete:
			lineType = LineRemoved
		}
		for _, content := range splitLines(d.Text) {
			out = append(out, Line{Type: lineType, Content: content})
		}
	}
	return out
}

// Render writes a diff in the classic -/+ prefixed text form.
func Render(lines []Line) string {
	var b strings.Builder
	for _, line := range lines {
		switch line.Type {
		case LineAdded:
			b.WriteString("+ ")
		case LineRemoved:
			b.WriteString("- ")
		default:
			b.WriteString("  ")
		}
		b.WriteString(line.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// Compute is the one-call path used by the chat assistant: diff two
// bodies and render the textual form.
func (e *Engine) Compute(oldContent, newContent string) string {
	return Render(e.Lines(oldContent, newContent))
}

// HasChanges reports whether a computed diff contains any non-context line.
func HasChanges(lines []Line) bool {
	for _, line := range lines {
		if line.Type != LineContext {
			return true
		}
	}
	return false
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
