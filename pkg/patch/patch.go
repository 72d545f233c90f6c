// Package patch applies loosely structured textual patches of the kind
// a language model emits: -/+ prefixed line blocks, not RFC-style
// unified diffs. It is deliberate substring surgery behind a narrow
// interface so a real merge algorithm can replace it without touching
// callers.
package patch

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrNotApplicable means the patch could not be matched against the
	// original text.
	ErrNotApplicable = errors.New("patch not applicable")
	// ErrEmptyPatch means the patch carried no change lines at all.
	ErrEmptyPatch = errors.New("patch contains no changes")
)

var fenceRe = regexp.MustCompile("(?s)```[a-zA-Z]*\\n(.*?)```")

// Apply replaces the removed block of the patch with its added block
// inside original. Matching tries, in order, an exact substring match
// of the removed block, then a first/last-line span match.
func Apply(original, patchText string) (string, error) {
	removed, added := changeLines(patchText)
	if len(removed) == 0 && len(added) == 0 {
		return "", ErrEmptyPatch
	}

	// Pure addition with no anchor: nothing sane to do textually.
	if len(removed) == 0 {
		return "", ErrNotApplicable
	}

	oldBlock := strings.Join(removed, "\n")
	newBlock := strings.Join(added, "\n")

	if strings.Contains(original, oldBlock) {
		return strings.Replace(original, oldBlock, newBlock, 1), nil
	}

	// Fall back to matching the span between the first and last removed
	// lines, ignoring surrounding whitespace.
	lines := strings.Split(original, "\n")
	first := strings.TrimSpace(removed[0])
	last := strings.TrimSpace(removed[len(removed)-1])

	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == first {
			start = i
			break
		}
	}
	if start < 0 {
		return "", ErrNotApplicable
	}

	end := -1
	for i := start; i < len(lines) && i < start+len(removed)+4; i++ {
		if strings.TrimSpace(lines[i]) == last {
			end = i
			break
		}
	}
	if end < 0 {
		return "", ErrNotApplicable
	}

	var out []string
	out = append(out, lines[:start]...)
	if newBlock != "" {
		out = append(out, added...)
	}
	out = append(out, lines[end+1:]...)
	return strings.Join(out, "\n"), nil
}

// changeLines splits a patch into its removed and added line bodies,
// dropping the -/+ markers.
func changeLines(patchText string) (removed, added []string) {
	for _, line := range strings.Split(patchText, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		switch {
		case strings.HasPrefix(trimmed, "+++"), strings.HasPrefix(trimmed, "---"):
			// file headers, not content
		case strings.HasPrefix(trimmed, "-"):
			removed = append(removed, strings.TrimPrefix(trimmed, "- "))
		case strings.HasPrefix(trimmed, "+"):
			added = append(added, strings.TrimPrefix(trimmed, "+ "))
		}
	}
	return removed, added
}

// ExtractFullRewrite recognizes patches that are really a complete
// replacement file: a fenced code block of meaningful size, or a patch
// where nearly every line is an addition.
func ExtractFullRewrite(patchText string) (string, bool) {
	if m := fenceRe.FindStringSubmatch(patchText); m != nil {
		body := strings.TrimRight(m[1], "\n")
		if strings.Count(body, "\n") >= 3 {
			return body, true
		}
	}

	total, plus := 0, 0
	var addedLines []string
	for _, line := range strings.Split(patchText, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		total++
		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
			plus++
			addedLines = append(addedLines, strings.TrimPrefix(strings.TrimPrefix(line, "+ "), "+"))
		}
	}
	if total >= 5 && plus*10 >= total*8 {
		return strings.Join(addedLines, "\n"), true
	}
	return "", false
}
