package review

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/saishankar404/tidy/pkg/model"
)

// MockReview synthesizes a review from simple content heuristics. It
// exists as the offline and demo fallback when no analyzer results are
// available, and is fully deterministic for a given input.
func MockReview(filePath, content string) ReviewResponse {
	resp := ReviewResponse{
		FilePath:     filePath,
		OverallScore: 82,
		Summary: fmt.Sprintf("Template review of %s generated without live analysis.",
			filepath.Base(filePath)),
	}

	if strings.Contains(content, "async") {
		entry := WalkthroughEntry{
			Title:       "Async function without error handling",
			Description: "Async calls should be wrapped in try/catch so rejected promises surface as handled errors.",
			Severity:    model.SeverityMedium,
		}
		resp.Walkthrough.CodeQuality = append(resp.Walkthrough.CodeQuality, entry)
		resp.Changes = append(resp.Changes, ChangeEntry{
			Type:        model.KindQuality,
			Title:       entry.Title,
			Description: entry.Description,
			Severity:    entry.Severity,
		})
		resp.Suggestions = append(resp.Suggestions, SuggestionCard{
			ID:          "mock-async-try-catch",
			Title:       "Wrap async bodies in try/catch",
			Description: "Add error handling around awaited calls.",
			Impact:      model.LevelHigh,
			Effort:      model.LevelLow,
			Explanation: "Unhandled promise rejections crash or silently fail depending on runtime.",
		})
	}

	if strings.Contains(content, ": any") {
		entry := WalkthroughEntry{
			Title:       "Parameter typed as any",
			Description: "Explicit any defeats the type checker; use a concrete or generic type.",
			Severity:    model.SeverityMedium,
		}
		resp.Walkthrough.TypeSafety = append(resp.Walkthrough.TypeSafety, entry)
		resp.Changes = append(resp.Changes, ChangeEntry{
			Type:        model.KindMaintainability,
			Title:       entry.Title,
			Description: entry.Description,
			Severity:    entry.Severity,
		})
	}

	if strings.Contains(content, "console.log") {
		entry := WalkthroughEntry{
			Title:       "console.log left in code",
			Description: "Replace ad hoc console output with the app logger so production logs stay structured.",
			Severity:    model.SeverityLow,
		}
		resp.Walkthrough.Monitoring = append(resp.Walkthrough.Monitoring, entry)
	}

	if strings.Contains(content, "document.getElementById") {
		entry := WalkthroughEntry{
			Title:       "Unchecked getElementById result",
			Description: "getElementById returns null when the element is missing; guard before dereferencing.",
			Severity:    model.SeverityMedium,
		}
		resp.Walkthrough.CodeQuality = append(resp.Walkthrough.CodeQuality, entry)
	}

	if strings.Contains(content, "for (") && strings.Contains(content, ".length") {
		resp.Walkthrough.Performance = append(resp.Walkthrough.Performance, WalkthroughEntry{
			Title:       "Loop bound re-evaluated",
			Description: "Hoist .length out of hot loops when the collection does not change.",
			Severity:    model.SeverityLow,
		})
	}

	fillEmptyBuckets(&resp.Walkthrough)
	return resp
}
