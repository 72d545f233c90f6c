package model

import (
	"time"

	"github.com/google/uuid"
)

// AnalyzerKind identifies one of the independent analysis passes.
type AnalyzerKind string

const (
	KindSecurity        AnalyzerKind = "security"
	KindQuality         AnalyzerKind = "quality"
	KindPerformance     AnalyzerKind = "performance"
	KindMaintainability AnalyzerKind = "maintainability"
	KindTesting         AnalyzerKind = "testing"
	KindDocumentation   AnalyzerKind = "documentation"
)

// AllAnalyzers returns every analyzer kind in its canonical run order.
func AllAnalyzers() []AnalyzerKind {
	return []AnalyzerKind{
		KindSecurity,
		KindQuality,
		KindPerformance,
		KindMaintainability,
		KindTesting,
		KindDocumentation,
	}
}

// ParseKind converts a user-supplied analyzer name. Unknown names
// return false.
func ParseKind(s string) (AnalyzerKind, bool) {
	for _, kind := range AllAnalyzers() {
		if string(kind) == s {
			return kind, true
		}
	}
	return "", false
}

// Severity level for issues.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Level grades suggestion impact and effort.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Location points at a position in the analyzed file.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column,omitempty"`
}

// Issue is a single problem found by an analyzer.
type Issue struct {
	ID          string    `json:"id"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    *Location `json:"location,omitempty"`
	Fix         string    `json:"fix,omitempty"`
	Category    string    `json:"category"`
	Confidence  float64   `json:"confidence"`
}

// Suggestion is an improvement proposed by an analyzer.
type Suggestion struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Impact      Level     `json:"impact"`
	Effort      Level     `json:"effort"`
	Location    *Location `json:"location,omitempty"`
	Code        string    `json:"code,omitempty"`
	Explanation string    `json:"explanation"`
}

// Metadata records how an analysis was produced.
type Metadata struct {
	AnalysisTime  int64  `json:"analysisTime"` // milliseconds
	LinesAnalyzed int    `json:"linesAnalyzed"`
	Language      string `json:"language"`
}

// AnalysisResult is the uniform output of one analyzer. Instances are
// created by an analyzer, consumed by the orchestrator, and never
// mutated afterwards.
type AnalysisResult struct {
	Type        AnalyzerKind `json:"type"`
	Score       int          `json:"score"`
	Issues      []Issue      `json:"issues"`
	Suggestions []Suggestion `json:"suggestions"`
	Summary     string       `json:"summary"`
	Metadata    Metadata     `json:"metadata"`
}

// Summary aggregates a full orchestrator run.
type Summary struct {
	OverallScore     int   `json:"overallScore"`
	TotalIssues      int   `json:"totalIssues"`
	TotalSuggestions int   `json:"totalSuggestions"`
	AnalysisTime     int64 `json:"analysisTime"` // milliseconds
}

// Progress status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
)

// AnalysisProgress is emitted through the progress callback while a run
// is in flight. Transient, never persisted.
type AnalysisProgress struct {
	Current         int          `json:"current"`
	Total           int          `json:"total"`
	CurrentAnalyzer AnalyzerKind `json:"currentAnalyzer"`
	Status          string       `json:"status"`
}

// AnalysisConfig controls the orchestrator. MaxConcurrency defaults to 1
// so analyzer calls serialize and stay under provider rate limits.
type AnalysisConfig struct {
	EnabledAnalyzers   []AnalyzerKind `json:"enabledAnalyzers"`
	Timeout            time.Duration  `json:"timeout"`
	MaxConcurrency     int            `json:"maxConcurrency"`
	IncludeSuggestions bool           `json:"includeSuggestions"`
}

// DefaultAnalysisConfig returns the stock orchestrator configuration.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		EnabledAnalyzers:   AllAnalyzers(),
		Timeout:            45 * time.Second,
		MaxConcurrency:     1,
		IncludeSuggestions: true,
	}
}

// CodeContext is the immutable input to one analysis round. Owned by the
// caller; the engine only reads it.
type CodeContext struct {
	FilePath         string   `json:"filePath"`
	Content          string   `json:"content"`
	Language         string   `json:"language"`
	Framework        string   `json:"framework,omitempty"`
	ProjectStructure []string `json:"projectStructure,omitempty"`
	Dependencies     []string `json:"dependencies,omitempty"`
}

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry in the assistant conversation.
type ChatMessage struct {
	ID             string    `json:"id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	CodeSuggestion string    `json:"codeSuggestion,omitempty"`
}

// NewID mints a random identifier for issues, suggestions and messages.
func NewID() string {
	return uuid.NewString()
}

// ClampScore forces a score into the valid [0,100] range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// CountLines reports how many lines a file body spans.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	n := 1
	for _, r := range content {
		if r == '\n' {
			n++
		}
	}
	return n
}
