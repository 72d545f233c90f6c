// Package review converts uniform analyzer results into the nested
// view-model the legacy editor UI renders.
package review

import (
	"fmt"
	"math"
	"strings"

	"github.com/saishankar404/tidy/pkg/model"
)

// ChangeEntry is one card in the changes-summary section.
type ChangeEntry struct {
	Type        model.AnalyzerKind `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Severity    model.Severity     `json:"severity"`
}

// WalkthroughEntry is one row in a file-walkthrough bucket.
type WalkthroughEntry struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Line        int            `json:"line,omitempty"`
	Severity    model.Severity `json:"severity"`
}

// SuggestionCard is one rendered suggestion.
type SuggestionCard struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Impact      model.Level `json:"impact"`
	Effort      model.Level `json:"effort"`
	Code        string      `json:"code,omitempty"`
	Explanation string      `json:"explanation"`
}

// Walkthrough groups issues into the four named buckets the UI knows.
type Walkthrough struct {
	CodeQuality []WalkthroughEntry `json:"codeQuality"`
	TypeSafety  []WalkthroughEntry `json:"typeSafety"`
	Performance []WalkthroughEntry `json:"performance"`
	Monitoring  []WalkthroughEntry `json:"monitoring"`
}

// ReviewResponse is the legacy nested shape consumed by the UI.
type ReviewResponse struct {
	FilePath     string           `json:"filePath"`
	Summary      string           `json:"summary"`
	OverallScore int              `json:"overallScore"`
	Changes      []ChangeEntry    `json:"changes"`
	Walkthrough  Walkthrough      `json:"walkthrough"`
	Suggestions  []SuggestionCard `json:"suggestions"`
}

// maxChangesPerKind caps the changes-summary section per analyzer.
const maxChangesPerKind = 2

// Transform is a pure function from analyzer results to the UI shape.
// Empty input delegates to the deterministic mock generator so callers
// always receive a renderable response.
func Transform(results []model.AnalysisResult, filePath, content string) ReviewResponse {
	if len(results) == 0 {
		return MockReview(filePath, content)
	}

	resp := ReviewResponse{FilePath: filePath}

	scoreSum := 0
	var summaries []string
	for _, result := range results {
		scoreSum += result.Score
		if result.Summary != "" {
			summaries = append(summaries, result.Summary)
		}

		for i, issue := range result.Issues {
			if i < maxChangesPerKind {
				resp.Changes = append(resp.Changes, ChangeEntry{
					Type:        result.Type,
					Title:       issue.Title,
					Description: issue.Description,
					Severity:    issue.Severity,
				})
			}
			entry := WalkthroughEntry{
				Title:       issue.Title,
				Description: issue.Description,
				Severity:    issue.Severity,
			}
			if issue.Location != nil {
				entry.Line = issue.Location.Line
			}
			addToBucket(&resp.Walkthrough, result.Type, entry)
		}

		for _, sugg := range result.Suggestions {
			resp.Suggestions = append(resp.Suggestions, SuggestionCard{
				ID:          sugg.ID,
				Title:       sugg.Title,
				Description: sugg.Description,
				Impact:      sugg.Impact,
				Effort:      sugg.Effort,
				Code:        sugg.Code,
				Explanation: sugg.Explanation,
			})
		}
	}

	resp.OverallScore = model.ClampScore(int(math.Round(float64(scoreSum) / float64(len(results)))))
	resp.Summary = strings.Join(summaries, " ")
	fillEmptyBuckets(&resp.Walkthrough)
	return resp
}

// addToBucket routes an analyzer kind into the four legacy buckets:
// maintainability maps to typeSafety and documentation to monitoring;
// security, quality and testing share the codeQuality bucket.
func addToBucket(w *Walkthrough, kind model.AnalyzerKind, entry WalkthroughEntry) {
	switch kind {
	case model.KindMaintainability:
		w.TypeSafety = append(w.TypeSafety, entry)
	case model.KindPerformance:
		w.Performance = append(w.Performance, entry)
	case model.KindDocumentation:
		w.Monitoring = append(w.Monitoring, entry)
	default:
		w.CodeQuality = append(w.CodeQuality, entry)
	}
}

// fillEmptyBuckets guarantees the UI never renders an empty section.
func fillEmptyBuckets(w *Walkthrough) {
	placeholder := func(area string) []WalkthroughEntry {
		return []WalkthroughEntry{{
			Title:       fmt.Sprintf("No %s concerns", area),
			Description: fmt.Sprintf("The analysis found nothing notable for %s in this file.", area),
			Severity:    model.SeverityLow,
		}}
	}
	if len(w.CodeQuality) == 0 {
		w.CodeQuality = placeholder("code quality")
	}
	if len(w.TypeSafety) == 0 {
		w.TypeSafety = placeholder("type safety")
	}
	if len(w.Performance) == 0 {
		w.Performance = placeholder("performance")
	}
	if len(w.Monitoring) == 0 {
		w.Monitoring = placeholder("monitoring")
	}
}
