// Package parser turns free-form model text into the fixed analysis
// schema. Model replies arrive code-fenced, embedded in prose, or as
// plain JSON; this package extracts the object, refuses anything
// structurally or security-wise suspect, and falls back to a
// deterministic document so analyzers never surface a parse error.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/saishankar404/tidy/pkg/model"
)

var (
	// ErrNoJSON means no parseable JSON object was found in the text.
	ErrNoJSON = errors.New("no JSON object found in response")
	// ErrSecurityViolation means the object carried a prototype-polluting key.
	ErrSecurityViolation = errors.New("response contains dangerous key")
)

var dangerousKeys = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

var (
	scriptTagRe   = regexp.MustCompile(`(?is)<\s*(script|iframe|object|embed)\b[^>]*>.*?<\s*/\s*(script|iframe|object|embed)\s*>`)
	openTagRe     = regexp.MustCompile(`(?i)<\s*(script|iframe|object|embed)\b[^>]*>`)
	jsURLRe       = regexp.MustCompile(`(?i)javascript\s*:`)
	dataJSURLRe   = regexp.MustCompile(`(?i)data\s*:[^,]*javascript[^,]*,`)
	jsonFenceRe   = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	anyFenceRe    = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
)

// Sanitize strips script-bearing HTML and javascript URLs so unsafe
// content echoed by the model never reaches the UI.
func Sanitize(raw string) string {
	out := scriptTagRe.ReplaceAllString(raw, "")
	out = openTagRe.ReplaceAllString(out, "")
	out = jsURLRe.ReplaceAllString(out, "")
	out = dataJSURLRe.ReplaceAllString(out, "")
	return out
}

// Extract locates and parses the JSON object embedded in raw model
// text. Preference order: a ```json fence, any fence containing an
// object, then the largest top-level {...} span. Objects with
// unbalanced brackets or prototype-polluting keys are rejected.
func Extract(raw string) (map[string]interface{}, error) {
	cleaned := Sanitize(raw)

	for _, candidate := range jsonCandidates(cleaned) {
		if !Balanced(candidate) {
			continue
		}
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
			continue
		}
		if key, bad := findDangerousKey(obj); bad {
			return nil, fmt.Errorf("%w: %q", ErrSecurityViolation, key)
		}
		return obj, nil
	}
	return nil, ErrNoJSON
}

// jsonCandidates returns candidate JSON spans in preference order.
func jsonCandidates(text string) []string {
	var candidates []string

	if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	for _, m := range anyFenceRe.FindAllStringSubmatch(text, -1) {
		body := strings.TrimSpace(m[1])
		if strings.Contains(body, "{") {
			candidates = append(candidates, body)
		}
	}
	if span := largestObjectSpan(text); span != "" {
		candidates = append(candidates, span)
	}
	return candidates
}

// largestObjectSpan finds the widest {...} region in the text.
func largestObjectSpan(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// Balanced counts brace and bracket depth, rejecting spans where depth
// goes negative at any point or does not return to zero. String
// literals are skipped so punctuation inside values does not count.
func Balanced(s string) bool {
	braces, brackets := 0, 0
	inString := false
	escaped := false

	for _, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				braces++
			}
		case '}':
			if !inString {
				braces--
				if braces < 0 {
					return false
				}
			}
		case '[':
			if !inString {
				brackets++
			}
		case ']':
			if !inString {
				brackets--
				if brackets < 0 {
					return false
				}
			}
		}
	}
	return braces == 0 && brackets == 0 && !inString
}

func findDangerousKey(v interface{}) (string, bool) {
	switch typed := v.(type) {
	case map[string]interface{}:
		for key, child := range typed {
			if dangerousKeys[key] {
				return key, true
			}
			if found, bad := findDangerousKey(child); bad {
				return found, true
			}
		}
	case []interface{}:
		for _, child := range typed {
			if found, bad := findDangerousKey(child); bad {
				return found, true
			}
		}
	}
	return "", false
}

// Document is the normalized, schema-shaped view of one model reply.
// Fallback marks documents synthesized after a parse failure.
type Document struct {
	Score          int
	Issues         []model.Issue
	Suggestions    []model.Suggestion
	Summary        string
	Fallback       bool
	FallbackReason string
}

// Normalize is total: any extraction or decoding failure produces the
// deterministic fallback document for the analyzer kind.
func Normalize(kind model.AnalyzerKind, raw string) Document {
	obj, err := Extract(raw)
	if err != nil {
		return FallbackDocument(kind, err.Error())
	}
	return decodeDocument(kind, obj)
}

// FallbackDocument is the canned result used when a reply cannot be
// parsed. Callers downstream treat it as a valid, low-confidence
// analysis rather than an error.
func FallbackDocument(kind model.AnalyzerKind, reason string) Document {
	return Document{
		Score: 85,
		Issues: []model.Issue{{
			ID:          model.NewID(),
			Severity:    model.SeverityLow,
			Title:       "Automated parsing fallback",
			Description: "The analyzer response could not be parsed as structured data; results below are generic.",
			Category:    string(kind),
			Confidence:  0.3,
		}},
		Suggestions: []model.Suggestion{{
			ID:          model.NewID(),
			Title:       "Review code manually",
			Description: fmt.Sprintf("Run a manual %s review to confirm automated findings.", kind),
			Impact:      model.LevelMedium,
			Effort:      model.LevelLow,
			Explanation: "The structured analysis was unavailable for this pass.",
		}},
		Summary:        fmt.Sprintf("%s analysis completed with safe fallback parsing", kind),
		Fallback:       true,
		FallbackReason: reason,
	}
}

func decodeDocument(kind model.AnalyzerKind, obj map[string]interface{}) Document {
	doc := Document{
		Score:   model.ClampScore(asInt(obj["score"], 85)),
		Summary: asString(obj["summary"]),
	}
	if doc.Summary == "" {
		doc.Summary = fmt.Sprintf("%s analysis completed", kind)
	}

	for _, raw := range asSlice(obj["issues"]) {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		issue := model.Issue{
			ID:          orID(asString(entry["id"])),
			Severity:    asSeverity(entry["severity"]),
			Title:       asString(entry["title"]),
			Description: asString(entry["description"]),
			Fix:         asString(entry["fix"]),
			Category:    asString(entry["category"]),
			Confidence:  asConfidence(entry["confidence"]),
		}
		if issue.Category == "" {
			issue.Category = string(kind)
		}
		if issue.Title == "" {
			issue.Title = asString(entry["message"])
		}
		if issue.Title == "" && issue.Description == "" {
			continue
		}
		if issue.Title == "" {
			issue.Title = firstLine(issue.Description)
		}
		issue.Location = asLocation(entry["location"], entry["line"])
		doc.Issues = append(doc.Issues, issue)
	}

	for _, raw := range asSlice(obj["suggestions"]) {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		sugg := model.Suggestion{
			ID:          orID(asString(entry["id"])),
			Title:       asString(entry["title"]),
			Description: asString(entry["description"]),
			Impact:      asLevel(entry["impact"], model.LevelMedium),
			Effort:      asLevel(entry["effort"], model.LevelMedium),
			Code:        asString(entry["code"]),
			Explanation: asString(entry["explanation"]),
		}
		if sugg.Title == "" && sugg.Description == "" {
			continue
		}
		if sugg.Title == "" {
			sugg.Title = firstLine(sugg.Description)
		}
		sugg.Location = asLocation(entry["location"], entry["line"])
		doc.Suggestions = append(doc.Suggestions, sugg)
	}

	return doc
}

func orID(id string) string {
	if id != "" {
		return id
	}
	return model.NewID()
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx > 0 {
		return s[:idx]
	}
	if len(s) > 80 {
		return s[:80]
	}
	return s
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func asInt(v interface{}, fallback int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return parsed
		}
	}
	return fallback
}

func asConfidence(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0
		}
		if n > 1 {
			return 1
		}
		return n
	}
	return 0.8
}

func asSeverity(v interface{}) model.Severity {
	switch model.Severity(strings.ToLower(asString(v))) {
	case model.SeverityCritical:
		return model.SeverityCritical
	case model.SeverityHigh:
		return model.SeverityHigh
	case model.SeverityMedium:
		return model.SeverityMedium
	case model.SeverityLow:
		return model.SeverityLow
	default:
		return model.SeverityMedium
	}
}

func asLevel(v interface{}, fallback model.Level) model.Level {
	switch model.Level(strings.ToLower(asString(v))) {
	case model.LevelHigh:
		return model.LevelHigh
	case model.LevelMedium:
		return model.LevelMedium
	case model.LevelLow:
		return model.LevelLow
	default:
		return fallback
	}
}

func asLocation(loc interface{}, line interface{}) *model.Location {
	if entry, ok := loc.(map[string]interface{}); ok {
		l := asInt(entry["line"], 0)
		if l > 0 {
			return &model.Location{Line: l, Column: asInt(entry["column"], 0)}
		}
	}
	if l := asInt(line, 0); l > 0 {
		return &model.Location{Line: l}
	}
	return nil
}
