package prompts

import (
	"strings"
	"testing"
	"time"

	"github.com/saishankar404/tidy/pkg/model"
)

func TestBuildAnalyzerPrompt(t *testing.T) {
	cctx := model.CodeContext{
		FilePath:     "src/app.ts",
		Content:      "const x = 1;",
		Language:     "typescript",
		Framework:    "react",
		Dependencies: []string{"react", "axios"},
	}

	for _, kind := range model.AllAnalyzers() {
		prompt := BuildAnalyzerPrompt(kind, cctx)
		for _, want := range []string{
			"src/app.ts",
			"typescript",
			"const x = 1;",
			`"score": 0-100`,
			"Return only the JSON object.",
		} {
			if !strings.Contains(prompt, want) {
				t.Errorf("%s prompt missing %q", kind, want)
			}
		}
	}

	// Each analyzer gets its own role text.
	security := BuildAnalyzerPrompt(model.KindSecurity, cctx)
	performance := BuildAnalyzerPrompt(model.KindPerformance, cctx)
	if strings.Split(security, "\n")[0] == strings.Split(performance, "\n")[0] {
		t.Error("security and performance prompts share a role header")
	}

	// Unknown kinds fall back to the quality role instead of panicking.
	fallback := BuildAnalyzerPrompt(model.AnalyzerKind("mystery"), cctx)
	if !strings.Contains(fallback, "code quality") {
		t.Errorf("fallback role = %q...", strings.Split(fallback, "\n")[0])
	}
}

func TestBuildChatPrompt(t *testing.T) {
	cc := ChatContext{
		FilePath:       "src/app.ts",
		Code:           "const x = 1;",
		AnalysisDigest: "overall score 80, 2 issues, 1 suggestions",
		History: []model.ChatMessage{
			{Role: model.RoleUser, Content: "earlier question", Timestamp: time.Now()},
			{Role: model.RoleAssistant, Content: "earlier answer", Timestamp: time.Now()},
		},
	}
	prompt := BuildChatPrompt("what now?", cc)

	for _, want := range []string{
		"src/app.ts",
		"const x = 1;",
		"overall score 80",
		"earlier question",
		"earlier answer",
		"user: what now?",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("chat prompt missing %q", want)
		}
	}
	if !strings.HasSuffix(prompt, "assistant:") {
		t.Error("chat prompt does not end with the assistant turn")
	}
}

func TestBuildChatPromptOmitsEmptySections(t *testing.T) {
	prompt := BuildChatPrompt("hello", ChatContext{})
	if strings.Contains(prompt, "Current file") {
		t.Error("empty code still rendered a file section")
	}
	if strings.Contains(prompt, "Latest analysis") {
		t.Error("empty digest still rendered an analysis section")
	}
}

func TestBuildRewritePrompt(t *testing.T) {
	prompt := BuildRewritePrompt("Missing error handling", "async without try/catch", "src/app.ts", "async function f() {}")
	for _, want := range []string{
		"Missing error handling",
		"async without try/catch",
		"src/app.ts",
		"async function f() {}",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("rewrite prompt missing %q", want)
		}
	}
}
