// Package prompts builds the role-specific prompts sent to the
// completion gateway. Every analyzer prompt requests the same fixed
// JSON schema so replies normalize uniformly.
package prompts

import (
	"fmt"
	"strings"

	"github.com/saishankar404/tidy/pkg/model"
)

const resultSchema = `Respond in JSON format with this structure:
{
  "score": 0-100,
  "summary": "one-paragraph assessment",
  "issues": [
    {
      "severity": "low|medium|high|critical",
      "title": "short issue title",
      "description": "what's wrong and why it matters",
      "location": {"line": 1, "column": 1},
      "fix": "concrete fix if applicable",
      "category": "issue category",
      "confidence": 0.0-1.0
    }
  ],
  "suggestions": [
    {
      "title": "short suggestion title",
      "description": "what to change",
      "impact": "low|medium|high",
      "effort": "low|medium|high",
      "code": "replacement snippet if applicable",
      "explanation": "why this helps"
    }
  ]
}

Return only the JSON object. Be specific and reference line numbers where possible.`

var analyzerRoles = map[model.AnalyzerKind]string{
	model.KindSecurity: `You are a security engineer reviewing code for vulnerabilities.
Look for injection risks, unsafe input handling, secrets in code, insecure
API usage, XSS vectors, and unsafe deserialization.`,
	model.KindQuality: `You are a senior engineer reviewing code quality.
Look for readability problems, dead code, inconsistent style, overly complex
functions, magic values, and poor naming.`,
	model.KindPerformance: `You are a performance engineer reviewing code.
Look for unnecessary allocations, repeated work inside loops, blocking calls
on hot paths, missing memoization, and O(n^2) patterns on large inputs.`,
	model.KindMaintainability: `You are reviewing code for long-term maintainability.
Look for tight coupling, missing abstractions, duplicated logic, unclear
module boundaries, and fragile type usage.`,
	model.KindTesting: `You are reviewing code for testability and test coverage gaps.
Look for untested branches, hard-to-mock dependencies, nondeterminism, and
missing edge-case handling that tests should pin down.`,
	model.KindDocumentation: `You are reviewing code documentation.
Look for missing or stale comments on exported surfaces, undocumented
parameters and invariants, and unclear intent in tricky sections.`,
}

// BuildAnalyzerPrompt assembles the prompt for one analyzer pass.
func BuildAnalyzerPrompt(kind model.AnalyzerKind, ctx model.CodeContext) string {
	var b strings.Builder

	role, ok := analyzerRoles[kind]
	if !ok {
		role = analyzerRoles[model.KindQuality]
	}
	b.WriteString(role)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "File: %s\nLanguage: %s\n", ctx.FilePath, ctx.Language)
	if ctx.Framework != "" {
		fmt.Fprintf(&b, "Framework: %s\n", ctx.Framework)
	}
	if len(ctx.Dependencies) > 0 {
		fmt.Fprintf(&b, "Dependencies: %s\n", strings.Join(ctx.Dependencies, ", "))
	}
	if len(ctx.ProjectStructure) > 0 {
		fmt.Fprintf(&b, "Project files: %s\n", strings.Join(ctx.ProjectStructure, ", "))
	}

	b.WriteString("\nCode:\n```")
	b.WriteString(ctx.Language)
	b.WriteString("\n")
	b.WriteString(ctx.Content)
	b.WriteString("\n```\n\n")
	b.WriteString(resultSchema)

	return b.String()
}

const chatPersona = `You are Tidy, an AI assistant embedded in a code editor.
You help with the file the user is editing. Be concise, concrete, and refer
to the code by line where possible. When proposing code, use fenced blocks.`

// ChatContext carries everything the assistant prompt stuffs around the
// user's message.
type ChatContext struct {
	FilePath       string
	Code           string // already truncated by the caller
	AnalysisDigest string
	History        []model.ChatMessage
}

// BuildChatPrompt assembles the context-stuffed assistant prompt.
func BuildChatPrompt(userMessage string, cc ChatContext) string {
	var b strings.Builder
	b.WriteString(chatPersona)
	b.WriteString("\n\n")

	if cc.Code != "" {
		fmt.Fprintf(&b, "Current file (%s), truncated:\n```\n%s\n```\n\n", cc.FilePath, cc.Code)
	}
	if cc.AnalysisDigest != "" {
		fmt.Fprintf(&b, "Latest analysis:\n%s\n\n", cc.AnalysisDigest)
	}
	if len(cc.History) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, msg := range cc.History {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "user: %s\nassistant:", userMessage)
	return b.String()
}

// BuildRewritePrompt asks for a complete corrected file addressing one
// issue. The reply must be only code so the caller can diff it against
// the original.
func BuildRewritePrompt(issueTitle, issueDescription, filePath, code string) string {
	return fmt.Sprintf(`You are fixing a specific issue in a source file.

Issue: %s
Details: %s
File: %s

Current content:
%s

Rewrite the complete file with the issue fixed. Keep every unrelated line
exactly as it is. Respond with only the full corrected file content, no
explanations and no markdown fences.`, issueTitle, issueDescription, filePath, code)
}
