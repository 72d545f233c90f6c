package parser

import (
	"strings"

	"github.com/saishankar404/tidy/pkg/model"
)

var issueCues = []string{"issue", "vulnerability", "problem", "risk", "error", "warning", "bug", "flaw"}

var suggestionCues = []string{"suggest", "recommend", "improve", "optimize", "consider", "should", "refactor"}

// ParseLoose scans plain prose line by line for issue and suggestion
// cues. Used by analyzers as an extra fallback when the reply carries
// no JSON at all but still reads like a review.
func ParseLoose(kind model.AnalyzerKind, text string) ([]model.Issue, []model.Suggestion) {
	var issues []model.Issue
	var suggestions []model.Suggestion

	for _, line := range strings.Split(Sanitize(text), "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*•0123456789. "))
		if len(line) < 12 {
			continue
		}
		lower := strings.ToLower(line)

		if containsAny(lower, issueCues) {
			issues = append(issues, model.Issue{
				ID:          model.NewID(),
				Severity:    severityFromCue(lower),
				Title:       firstLine(line),
				Description: line,
				Category:    string(kind),
				Confidence:  0.5,
			})
			continue
		}
		if containsAny(lower, suggestionCues) {
			suggestions = append(suggestions, model.Suggestion{
				ID:          model.NewID(),
				Title:       firstLine(line),
				Description: line,
				Impact:      model.LevelMedium,
				Effort:      model.LevelMedium,
				Explanation: "Derived from unstructured analyzer output.",
			})
		}
	}
	return issues, suggestions
}

func containsAny(s string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(s, cue) {
			return true
		}
	}
	return false
}

func severityFromCue(line string) model.Severity {
	switch {
	case strings.Contains(line, "critical") || strings.Contains(line, "severe"):
		return model.SeverityCritical
	case strings.Contains(line, "high") || strings.Contains(line, "vulnerability"):
		return model.SeverityHigh
	case strings.Contains(line, "low") || strings.Contains(line, "minor"):
		return model.SeverityLow
	default:
		return model.SeverityMedium
	}
}
