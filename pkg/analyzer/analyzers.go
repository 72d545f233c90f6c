// Package analyzer runs the prompt-based analysis passes and
// orchestrates them into a single review.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/saishankar404/tidy/pkg/llm"
	"github.com/saishankar404/tidy/pkg/model"
	"github.com/saishankar404/tidy/pkg/parser"
	"github.com/saishankar404/tidy/pkg/prompts"
)

// runAnalyzer executes one analysis pass. The boundary is total: the
// returned result is always valid, and the error is returned purely so
// the orchestrator can classify it for the circuit breaker.
func runAnalyzer(ctx context.Context, kind model.AnalyzerKind, cctx model.CodeContext, gw *llm.Gateway, includeSuggestions bool) (model.AnalysisResult, error) {
	start := time.Now()

	prompt := prompts.BuildAnalyzerPrompt(kind, cctx)
	raw, err := gw.GenerateCompletion(ctx, prompt)
	if err != nil {
		return errorResult(kind, cctx, start, err), err
	}

	doc := parser.Normalize(kind, raw)
	if doc.Fallback {
		// No JSON at all; mine the prose and keep the canned document
		// only when the heuristic finds nothing either.
		if issues, suggestions := parser.ParseLoose(kind, raw); len(issues) > 0 || len(suggestions) > 0 {
			doc.Issues = issues
			doc.Suggestions = suggestions
		}
	} else if len(doc.Issues) == 0 && len(doc.Suggestions) == 0 {
		// Structured but empty reply; mine the prose before giving up.
		doc.Issues, doc.Suggestions = parser.ParseLoose(kind, raw)
	}
	if len(doc.Issues) == 0 {
		doc.Issues = defaultIssues(kind)
	}
	if len(doc.Suggestions) == 0 {
		doc.Suggestions = defaultSuggestions(kind)
	}
	if !includeSuggestions {
		doc.Suggestions = nil
	}

	return model.AnalysisResult{
		Type:        kind,
		Score:       model.ClampScore(doc.Score),
		Issues:      doc.Issues,
		Suggestions: doc.Suggestions,
		Summary:     doc.Summary,
		Metadata:    metadataFor(cctx, start),
	}, nil
}

// errorResult degrades a failed pass into a low-confidence result so no
// analyzer error ever propagates past this package's call boundary.
func errorResult(kind model.AnalyzerKind, cctx model.CodeContext, start time.Time, err error) model.AnalysisResult {
	return model.AnalysisResult{
		Type:  kind,
		Score: 50,
		Issues: []model.Issue{{
			ID:          model.NewID(),
			Severity:    model.SeverityLow,
			Title:       fmt.Sprintf("%s analysis unavailable", kind),
			Description: "The analyzer could not reach the language model; results are placeholders.",
			Category:    string(kind),
			Confidence:  0.2,
		}},
		Suggestions: []model.Suggestion{{
			ID:          model.NewID(),
			Title:       "Retry analysis",
			Description: "Re-run the analysis once the completion service is reachable.",
			Impact:      model.LevelLow,
			Effort:      model.LevelLow,
			Explanation: err.Error(),
		}},
		Summary:  fmt.Sprintf("%s analysis skipped: %v", kind, err),
		Metadata: metadataFor(cctx, start),
	}
}

// offlineResult substitutes for a pass while the breaker is open. The
// fixed score of 75 marks it as synthetic without dragging the overall
// score into alarming territory.
func offlineResult(kind model.AnalyzerKind, cctx model.CodeContext, start time.Time) model.AnalysisResult {
	return model.AnalysisResult{
		Type:  kind,
		Score: 75,
		Issues: []model.Issue{{
			ID:          model.NewID(),
			Severity:    model.SeverityLow,
			Title:       "Offline mode",
			Description: "The completion service quota is exhausted; this is a synthetic placeholder result.",
			Category:    string(kind),
			Confidence:  0.1,
		}},
		Suggestions: defaultSuggestions(kind),
		Summary:     fmt.Sprintf("%s analysis skipped while offline", kind),
		Metadata:    metadataFor(cctx, start),
	}
}

func metadataFor(cctx model.CodeContext, start time.Time) model.Metadata {
	return model.Metadata{
		AnalysisTime:  time.Since(start).Milliseconds(),
		LinesAnalyzed: model.CountLines(cctx.Content),
		Language:      cctx.Language,
	}
}

func defaultIssues(kind model.AnalyzerKind) []model.Issue {
	titles := map[model.AnalyzerKind]string{
		model.KindSecurity:        "No security findings",
		model.KindQuality:         "No quality findings",
		model.KindPerformance:     "No performance findings",
		model.KindMaintainability: "No maintainability findings",
		model.KindTesting:         "No testing findings",
		model.KindDocumentation:   "No documentation findings",
	}
	return []model.Issue{{
		ID:          model.NewID(),
		Severity:    model.SeverityLow,
		Title:       titles[kind],
		Description: fmt.Sprintf("The %s pass reported no specific problems in this file.", kind),
		Category:    string(kind),
		Confidence:  0.6,
	}}
}

func defaultSuggestions(kind model.AnalyzerKind) []model.Suggestion {
	descriptions := map[model.AnalyzerKind]string{
		model.KindSecurity:        "Validate and sanitize all external input before use.",
		model.KindQuality:         "Keep functions small and names descriptive.",
		model.KindPerformance:     "Profile before optimizing; avoid repeated work in loops.",
		model.KindMaintainability: "Extract shared logic and keep module boundaries explicit.",
		model.KindTesting:         "Add tests around error paths and edge cases.",
		model.KindDocumentation:   "Document exported functions and non-obvious invariants.",
	}
	return []model.Suggestion{{
		ID:          model.NewID(),
		Title:       fmt.Sprintf("General %s practice", kind),
		Description: descriptions[kind],
		Impact:      model.LevelMedium,
		Effort:      model.LevelLow,
		Explanation: "Generic guidance for this category.",
	}}
}
