// Package chat implements the editor's AI assistant: a bounded
// conversation over the current file plus the latest analysis run.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saishankar404/tidy/pkg/analyzer"
	"github.com/saishankar404/tidy/pkg/diff"
	"github.com/saishankar404/tidy/pkg/llm"
	"github.com/saishankar404/tidy/pkg/model"
	"github.com/saishankar404/tidy/pkg/prompts"
)

const (
	historyCap       = 20
	promptHistoryLen = 10
	codeContextLimit = 1000
)

// Assistant maintains the conversation and answers through the gateway,
// falling back to canned replies so chat never surfaces a raw error.
type Assistant struct {
	gateway *llm.Gateway
	log     *zap.Logger
	differ  *diff.Engine

	mu       sync.Mutex
	history  []model.ChatMessage
	lastRun  *analyzer.RunResult
	code     string
	filePath string
}

func NewAssistant(gateway *llm.Gateway, log *zap.Logger) *Assistant {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assistant{
		gateway: gateway,
		log:     log,
		differ:  diff.NewEngine(),
	}
}

// SetContext records the file the user is editing.
func (a *Assistant) SetContext(filePath, code string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.filePath = filePath
	a.code = code
}

// SetAnalysis records the latest orchestrator run for conversational
// context.
func (a *Assistant) SetAnalysis(run *analyzer.RunResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastRun = run
}

// History returns a copy of the conversation.
func (a *Assistant) History() []model.ChatMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.ChatMessage, len(a.history))
	copy(out, a.history)
	return out
}

// ClearHistory drops the conversation.
func (a *Assistant) ClearHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}

// GenerateResponse answers one user message. Gateway failures degrade
// to a keyword-matched canned reply.
func (a *Assistant) GenerateResponse(ctx context.Context, userMessage string) model.ChatMessage {
	a.append(model.ChatMessage{
		ID:        model.NewID(),
		Role:      model.RoleUser,
		Content:   userMessage,
		Timestamp: time.Now(),
	})

	a.mu.Lock()
	cc := prompts.ChatContext{
		FilePath:       a.filePath,
		Code:           truncate(a.code, codeContextLimit),
		AnalysisDigest: digest(a.lastRun),
		History:        tail(a.history, promptHistoryLen),
	}
	a.mu.Unlock()

	prompt := prompts.BuildChatPrompt(userMessage, cc)

	content, err := a.gateway.GenerateCompletion(ctx, prompt)
	if err != nil {
		a.log.Warn("chat completion failed, using canned reply", zap.Error(err))
		content = cannedResponse(userMessage)
	}

	reply := model.ChatMessage{
		ID:        model.NewID(),
		Role:      model.RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
	a.append(reply)
	return reply
}

func (a *Assistant) append(msg model.ChatMessage) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, msg)
	if len(a.history) > historyCap {
		a.history = a.history[len(a.history)-historyCap:]
	}
}

// digest summarizes a run for the prompt: scores and issue counts, not
// full issue bodies.
func digest(run *analyzer.RunResult) string {
	if run == nil {
		return ""
	}
	var parts []string
	parts = append(parts, fmt.Sprintf("overall score %d, %d issues, %d suggestions",
		run.Summary.OverallScore, run.Summary.TotalIssues, run.Summary.TotalSuggestions))
	for _, result := range run.Results {
		parts = append(parts, fmt.Sprintf("%s: score %d, %d issues",
			result.Type, result.Score, len(result.Issues)))
	}
	return strings.Join(parts, "; ")
}

func cannedResponse(userMessage string) string {
	lower := strings.ToLower(userMessage)
	switch {
	case strings.Contains(lower, "fix") || strings.Contains(lower, "error") || strings.Contains(lower, "bug"):
		return "I can't reach the analysis service right now. Check the highlighted issues in the sidebar; most carry a suggested fix you can apply directly."
	case strings.Contains(lower, "performance") || strings.Contains(lower, "slow") || strings.Contains(lower, "optimize"):
		return "I'm offline at the moment. As a rule of thumb: hoist repeated work out of loops, avoid blocking calls on hot paths, and measure before optimizing."
	case strings.Contains(lower, "test"):
		return "I'm offline at the moment. Focus tests on error paths and boundary values; the testing analyzer results in the sidebar list the gaps found in the last run."
	case strings.Contains(lower, "security"):
		return "I'm offline at the moment. Review any place external input reaches a query, a shell, or the DOM; the security results in the sidebar cover the last scan."
	default:
		return "I can't reach the assistant service right now. Your last analysis results are still available in the sidebar, and I'll respond again once the service is back."
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func tail(msgs []model.ChatMessage, n int) []model.ChatMessage {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
