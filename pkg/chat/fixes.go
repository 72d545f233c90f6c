package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/saishankar404/tidy/pkg/model"
	"github.com/saishankar404/tidy/pkg/patch"
	"github.com/saishankar404/tidy/pkg/prompts"
)

// FixResult always carries runnable code and a textual diff, even when
// no automated fix applied.
type FixResult struct {
	FixedCode string `json:"fixedCode"`
	Diff      string `json:"diff"`
}

// GenerateFix produces a corrected file for one issue. Resolution
// order: structural pattern fixes, textual application of the supplied
// diff, full-rewrite extraction from that diff, and finally an LLM
// whole-file rewrite. The last resort is a descriptive no-op diff.
func (a *Assistant) GenerateFix(ctx context.Context, issue model.Issue, code, filePath, suggestionDiff string) FixResult {
	if fixed, ok := applyPatternFix(issue, code); ok {
		return FixResult{FixedCode: fixed, Diff: a.differ.Compute(code, fixed)}
	}

	if suggestionDiff != "" {
		if fixed, err := patch.Apply(code, suggestionDiff); err == nil {
			return FixResult{FixedCode: fixed, Diff: a.differ.Compute(code, fixed)}
		}
		if rewrite, ok := patch.ExtractFullRewrite(suggestionDiff); ok {
			return FixResult{FixedCode: rewrite, Diff: a.differ.Compute(code, rewrite)}
		}
	}

	prompt := prompts.BuildRewritePrompt(issue.Title, issue.Description, filePath, code)
	if raw, err := a.gateway.GenerateCompletion(ctx, prompt); err == nil {
		rewrite := stripCodeFences(raw)
		if strings.TrimSpace(rewrite) != "" && rewrite != code {
			return FixResult{FixedCode: rewrite, Diff: a.differ.Compute(code, rewrite)}
		}
	} else {
		a.log.Warn("rewrite completion failed", zap.Error(err))
	}

	return FixResult{
		FixedCode: code,
		Diff:      fmt.Sprintf("  // No automated fix available for: %s\n  // %s\n", issue.Title, issue.Description),
	}
}

// ---------------------------------------------------------------------------
// Pattern fix library
// ---------------------------------------------------------------------------

// applyPatternFix runs the structural fixes in order and returns the
// first that changes the code.
func applyPatternFix(issue model.Issue, code string) (string, bool) {
	text := strings.ToLower(issue.Title + " " + issue.Description)

	if strings.Contains(text, "error handling") || strings.Contains(text, "try/catch") ||
		strings.Contains(text, "unhandled") || strings.Contains(text, "async") {
		if fixed, ok := applyErrorHandlingPattern(code); ok {
			return fixed, true
		}
	}
	if strings.Contains(text, "any") || strings.Contains(text, "type") {
		if fixed, ok := applyAnyTypePattern(code); ok {
			return fixed, true
		}
	}
	if strings.Contains(text, "null") || strings.Contains(text, "getelementbyid") ||
		strings.Contains(text, "element") {
		if fixed, ok := applyNullGuardPattern(code); ok {
			return fixed, true
		}
	}
	return "", false
}

var asyncFuncRe = regexp.MustCompile(`async\s+(?:function\s+\w*\s*\([^)]*\)|\([^)]*\)\s*=>|\w+\s*\([^)]*\))\s*\{`)

var tryStmtRe = regexp.MustCompile(`\btry\s*\{`)

// applyErrorHandlingPattern wraps the body of the first bare async
// function in try/catch. Bodies that already handle errors are left
// alone.
func applyErrorHandlingPattern(code string) (string, bool) {
	loc := asyncFuncRe.FindStringIndex(code)
	if loc == nil {
		return "", false
	}

	open := loc[1] - 1 // index of the opening brace
	close := matchingBrace(code, open)
	if close < 0 {
		return "", false
	}

	body := code[open+1 : close]
	if tryStmtRe.MatchString(body) || strings.TrimSpace(body) == "" {
		return "", false
	}

	indented := indentLines(strings.Trim(body, "\n"), "  ")
	wrapped := fmt.Sprintf("\n  try {\n%s\n  } catch (error) {\n    console.error('Operation failed:', error);\n    throw error;\n  }\n", indented)

	return code[:open+1] + wrapped + code[close:], true
}

var anyParamRe = regexp.MustCompile(`(\w+)\s*:\s*any\b`)

// applyAnyTypePattern replaces `: any` parameter annotations with a
// type inferred from the parameter name.
func applyAnyTypePattern(code string) (string, bool) {
	if !anyParamRe.MatchString(code) {
		return "", false
	}
	fixed := anyParamRe.ReplaceAllStringFunc(code, func(m string) string {
		sub := anyParamRe.FindStringSubmatch(m)
		return sub[1] + ": " + inferTypeFromName(sub[1])
	})
	return fixed, fixed != code
}

func inferTypeFromName(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "is") || strings.HasPrefix(lower, "has") ||
		strings.Contains(lower, "enabled") || strings.Contains(lower, "flag"):
		return "boolean"
	case strings.Contains(lower, "count") || strings.Contains(lower, "index") ||
		strings.Contains(lower, "num") || strings.Contains(lower, "size") ||
		strings.HasSuffix(lower, "id"):
		return "number"
	case strings.Contains(lower, "items") || strings.Contains(lower, "list") ||
		strings.HasSuffix(lower, "s"):
		return "unknown[]"
	case strings.Contains(lower, "name") || strings.Contains(lower, "text") ||
		strings.Contains(lower, "path") || strings.Contains(lower, "url") ||
		strings.Contains(lower, "key"):
		return "string"
	default:
		return "unknown"
	}
}

var getElementRe = regexp.MustCompile(`(?m)^(\s*)(const|let|var)\s+(\w+)\s*=\s*document\.getElementById\(([^)]*)\);?\s*$`)

// applyNullGuardPattern adds a null guard after the first unguarded
// getElementById assignment.
func applyNullGuardPattern(code string) (string, bool) {
	m := getElementRe.FindStringSubmatchIndex(code)
	if m == nil {
		return "", false
	}

	indent := code[m[2]:m[3]]
	name := code[m[6]:m[7]]

	// Already guarded right after the lookup.
	rest := code[m[1]:]
	if strings.Contains(rest, "if (!"+name+")") || strings.Contains(rest, "if ("+name+" === null)") {
		return "", false
	}

	guard := fmt.Sprintf("\n%sif (!%s) {\n%s  throw new Error('Element not found: ' + %s);\n%s}",
		indent, name, indent, code[m[8]:m[9]], indent)
	return code[:m[1]] + guard + code[m[1]:], true
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// matchingBrace finds the index of the brace closing the one at open,
// skipping string literals.
func matchingBrace(code string, open int) int {
	depth := 0
	inString := byte(0)
	for i := open; i < len(code); i++ {
		c := code[i]
		if inString != 0 {
			if c == '\\' {
				i++
			} else if c == inString {
				inString = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			inString = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func indentLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
