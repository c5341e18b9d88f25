// File path: internal/recording/detector.go
package recording

import (
	"encoding/json"
	"strings"
)

// Format detection is an ordered list of heuristics, first match wins.
// Each strategy is a plain predicate so it can be exercised on its own
// against positive and negative fixtures. Detection never fails: input
// that matches nothing is FormatUnknown.

var pythonIndicators = []string{
	"import playwright",
	"from playwright",
	"with sync_playwright",
	"sync_playwright()",
	".get_by_role(",
	".get_by_text(",
	".get_by_label(",
	".get_by_placeholder(",
	".get_by_test_id(",
	"page.goto(",
	"expect_popup(",
	"def run(",
}

var scriptIndicators = []string{
	"await page.",
	"page.getByRole(",
	"page.getByText(",
	"page.getByLabel(",
	"page.getByTestId(",
	"page.goto(",
	"async function",
	"=>",
	"const ",
	"require(",
}

var typescriptMarkers = []string{
	": Page",
	": Browser",
	": Locator",
	"interface ",
	"<Page>",
	"import type ",
}

// DetectFormat classifies raw recording text. The strategy order
// matters: structured JSON shapes are probed first because a HAR file
// trivially contains substrings that look like script indicators.
func DetectFormat(content string) Format {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return FormatUnknown
	}

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if format, ok := detectJSON(trimmed); ok {
			return format
		}
		// Malformed JSON falls through to the text heuristics.
	}

	if matchesAny(content, pythonIndicators) {
		return FormatPython
	}

	if matchesAny(content, scriptIndicators) {
		if matchesAny(content, typescriptMarkers) {
			return FormatTypeScript
		}
		return FormatJavaScript
	}

	return FormatUnknown
}

// detectJSON probes a document that syntactically starts like JSON. The
// second return value is false when the document does not actually
// parse, so the caller can fall through to the text heuristics.
func detectJSON(trimmed string) (Format, bool) {
	if strings.HasPrefix(trimmed, "[") {
		var arr []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &arr); err != nil {
			return FormatUnknown, false
		}
		return FormatJSON, true
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return FormatUnknown, false
	}
	if raw, ok := obj["log"]; ok {
		var log map[string]json.RawMessage
		if err := json.Unmarshal(raw, &log); err == nil {
			if _, ok := log["entries"]; ok {
				return FormatHAR, true
			}
		}
	}
	if _, ok := obj["actions"]; ok {
		return FormatJSON, true
	}
	// Parsed fine but matches no recording shape.
	return FormatUnknown, true
}

func matchesAny(content string, indicators []string) bool {
	for _, indicator := range indicators {
		if strings.Contains(content, indicator) {
			return true
		}
	}
	return false
}
