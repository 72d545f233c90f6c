package formatter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/saishankar404/tidy/pkg/model"
	"github.com/saishankar404/tidy/pkg/review"
)

// Report bundles everything a single review run produced.
type Report struct {
	Results []model.AnalysisResult `json:"results" yaml:"results"`
	Summary model.Summary          `json:"summary" yaml:"summary"`
	Review  review.ReviewResponse  `json:"review" yaml:"review"`
	Offline bool                   `json:"offline" yaml:"offline"`
}

// DisplayResults formats and displays a review report
func DisplayResults(report *Report, format string) error {
	switch format {
	case "json":
		return displayJSON(report)
	case "yaml":
		return displayYAML(report)
	case "human":
		fallthrough
	default:
		displayHuman(report)
	}
	return nil
}

func displayJSON(report *Report) error {
	output, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

func displayYAML(report *Report) error {
	output, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

func displayHuman(report *Report) {
	// Colors
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Println()

	// Header
	white.Printf("📄 REVIEW: %s\n", report.Review.FilePath)
	if report.Offline {
		yellow.Println("   (offline mode: heuristic results only)")
	}
	fmt.Println()

	// Score
	scoreColor := getScoreColor(report.Summary.OverallScore)
	scoreColor.Printf("📊 OVERALL SCORE: %d/100\n\n", report.Summary.OverallScore)

	if report.Review.Summary != "" {
		fmt.Println(wrapText(report.Review.Summary, 80, "   "))
		fmt.Println()
	}

	// Per-analyzer breakdown
	for _, result := range report.Results {
		kindColor := getScoreColor(result.Score)
		kindColor.Printf("── %s: %d/100\n", strings.ToUpper(string(result.Type)), result.Score)

		if len(result.Issues) > 0 {
			yellow.Println("   ⚠️  ISSUES:")
			for i, issue := range result.Issues {
				severityIcon := getSeverityIcon(issue.Severity)
				fmt.Printf("      %d. %s %s\n", i+1, severityIcon, issue.Title)
				fmt.Printf("         %s\n", issue.Description)
				if issue.Location != nil && issue.Location.Line > 0 {
					fmt.Printf("         Line: %s\n", color.YellowString("%d", issue.Location.Line))
				}
				if issue.Fix != "" {
					fmt.Printf("         Fix: %s\n", color.GreenString(issue.Fix))
				}
			}
		}

		if len(result.Suggestions) > 0 {
			cyan.Println("   💡 SUGGESTIONS:")
			for i, suggestion := range result.Suggestions {
				impactIcon := getImpactIcon(suggestion.Impact)
				fmt.Printf("      %d. %s %s\n", i+1, impactIcon, suggestion.Title)
				if suggestion.Explanation != "" {
					fmt.Printf("         Why: %s\n", suggestion.Explanation)
				}
			}
		}
		fmt.Println()
	}

	// Totals
	green.Println("🚀 TOTALS:")
	fmt.Printf("   Issues: %d   Suggestions: %d   Time: %dms\n\n",
		report.Summary.TotalIssues, report.Summary.TotalSuggestions, report.Summary.AnalysisTime)

	// Footer
	fmt.Println(strings.Repeat("─", 80))
	fmt.Printf("💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func getScoreColor(score int) *color.Color {
	switch {
	case score >= 85:
		return color.New(color.FgGreen, color.Bold)
	case score >= 70:
		return color.New(color.FgYellow, color.Bold)
	case score >= 50:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func getSeverityIcon(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "🔴"
	case model.SeverityHigh:
		return "🟠"
	case model.SeverityMedium:
		return "🟡"
	case model.SeverityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

func getImpactIcon(impact model.Level) string {
	switch impact {
	case model.LevelHigh:
		return "⚡"
	case model.LevelMedium:
		return "🔹"
	case model.LevelLow:
		return "▫️"
	default:
		return "•"
	}
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}
