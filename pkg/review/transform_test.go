package review

import (
	"reflect"
	"testing"

	"github.com/saishankar404/tidy/pkg/model"
)

func result(kind model.AnalyzerKind, score int, issues int) model.AnalysisResult {
	r := model.AnalysisResult{
		Type:    kind,
		Score:   score,
		Summary: string(kind) + " checked.",
	}
	for i := 0; i < issues; i++ {
		r.Issues = append(r.Issues, model.Issue{
			ID:          model.NewID(),
			Severity:    model.SeverityMedium,
			Title:       "finding",
			Description: "something to look at",
			Category:    string(kind),
			Confidence:  0.9,
		})
	}
	return r
}

func TestTransformEmptyDelegatesToMock(t *testing.T) {
	content := "async function load() { await fetch('/x'); }"
	got := Transform(nil, "src/app.ts", content)
	want := MockReview("src/app.ts", content)
	if !reflect.DeepEqual(got, want) {
		t.Error("Transform with no results should equal the deterministic mock review")
	}
}

func TestTransformCapsChangesPerKind(t *testing.T) {
	resp := Transform([]model.AnalysisResult{result(model.KindSecurity, 70, 5)}, "a.ts", "")

	if len(resp.Changes) != maxChangesPerKind {
		t.Errorf("changes = %d, want %d", len(resp.Changes), maxChangesPerKind)
	}
	// The walkthrough keeps every issue even when changes are capped.
	if len(resp.Walkthrough.CodeQuality) != 5 {
		t.Errorf("walkthrough entries = %d, want 5", len(resp.Walkthrough.CodeQuality))
	}
}

func TestTransformBucketsByKind(t *testing.T) {
	results := []model.AnalysisResult{
		result(model.KindSecurity, 80, 1),
		result(model.KindQuality, 80, 1),
		result(model.KindTesting, 80, 1),
		result(model.KindMaintainability, 80, 1),
		result(model.KindPerformance, 80, 1),
		result(model.KindDocumentation, 80, 1),
	}
	resp := Transform(results, "a.ts", "")

	if len(resp.Walkthrough.CodeQuality) != 3 {
		t.Errorf("codeQuality = %d entries, want 3 (security, quality, testing)", len(resp.Walkthrough.CodeQuality))
	}
	if len(resp.Walkthrough.TypeSafety) != 1 {
		t.Errorf("typeSafety = %d entries, want 1 (maintainability)", len(resp.Walkthrough.TypeSafety))
	}
	if len(resp.Walkthrough.Performance) != 1 {
		t.Errorf("performance = %d entries, want 1", len(resp.Walkthrough.Performance))
	}
	if len(resp.Walkthrough.Monitoring) != 1 {
		t.Errorf("monitoring = %d entries, want 1 (documentation)", len(resp.Walkthrough.Monitoring))
	}
}

func TestTransformFillsEmptyBuckets(t *testing.T) {
	resp := Transform([]model.AnalysisResult{result(model.KindSecurity, 90, 1)}, "a.ts", "")

	for name, bucket := range map[string][]WalkthroughEntry{
		"typeSafety":  resp.Walkthrough.TypeSafety,
		"performance": resp.Walkthrough.Performance,
		"monitoring":  resp.Walkthrough.Monitoring,
	} {
		if len(bucket) != 1 {
			t.Errorf("%s = %d entries, want 1 placeholder", name, len(bucket))
			continue
		}
		if bucket[0].Severity != model.SeverityLow {
			t.Errorf("%s placeholder severity = %s, want low", name, bucket[0].Severity)
		}
	}
}

func TestTransformAveragesScores(t *testing.T) {
	results := []model.AnalysisResult{
		result(model.KindSecurity, 90, 0),
		result(model.KindQuality, 70, 0),
	}
	resp := Transform(results, "a.ts", "")
	if resp.OverallScore != 80 {
		t.Errorf("overall score = %d, want 80", resp.OverallScore)
	}
	if resp.Summary != "security checked. quality checked." {
		t.Errorf("summary = %q", resp.Summary)
	}
}

func TestTransformRoundsOddMeans(t *testing.T) {
	results := []model.AnalysisResult{
		result(model.KindSecurity, 90, 0),
		result(model.KindQuality, 75, 0),
	}
	resp := Transform(results, "a.ts", "")
	if resp.OverallScore != 83 {
		t.Errorf("overall score = %d, want 83 (rounded, not truncated)", resp.OverallScore)
	}
}

func TestMockReviewHeuristics(t *testing.T) {
	content := `async function load(data: any) {
  const el = document.getElementById("root");
  console.log(el);
  for (let i = 0; i < items.length; i++) {}
}`
	resp := MockReview("src/page.ts", content)

	if resp.OverallScore != 82 {
		t.Errorf("score = %d, want 82", resp.OverallScore)
	}
	if len(resp.Walkthrough.CodeQuality) < 2 {
		t.Errorf("codeQuality entries = %d, want async and getElementById findings", len(resp.Walkthrough.CodeQuality))
	}
	if len(resp.Walkthrough.TypeSafety) != 1 {
		t.Errorf("typeSafety entries = %d, want 1 for ': any'", len(resp.Walkthrough.TypeSafety))
	}
	if len(resp.Walkthrough.Performance) != 1 {
		t.Errorf("performance entries = %d, want 1 for loop bound", len(resp.Walkthrough.Performance))
	}
	if len(resp.Walkthrough.Monitoring) != 1 {
		t.Errorf("monitoring entries = %d, want 1 for console.log", len(resp.Walkthrough.Monitoring))
	}

	// Clean content still renders placeholders in every bucket.
	clean := MockReview("src/clean.ts", "const a = 1;")
	for _, bucket := range [][]WalkthroughEntry{
		clean.Walkthrough.CodeQuality,
		clean.Walkthrough.TypeSafety,
		clean.Walkthrough.Performance,
		clean.Walkthrough.Monitoring,
	} {
		if len(bucket) != 1 {
			t.Errorf("clean content bucket has %d entries, want 1 placeholder", len(bucket))
		}
	}
}
