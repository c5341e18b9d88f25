// File path: internal/llm/convert.go
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/recbridge/recbridge/internal/common"
	"github.com/recbridge/recbridge/internal/recording"
)

const conversionSystemPrompt = `You convert recorded browser interactions into Gherkin BDD scenarios.
Write one Feature with descriptive Scenario names. Use Given/When/Then/And keywords.
Base every step strictly on the provided actions; do not invent interactions.`

// ConvertToGherkin asks the provider to turn a normalized parse result
// into Gherkin text. The prompt carries both the normalized action
// fields and the raw source fragments they were derived from, which is
// why rawLine is preserved through parsing.
func ConvertToGherkin(ctx context.Context, provider Provider, name string, result *recording.UniversalParseResult) (string, error) {
	if provider == nil {
		return "", fmt.Errorf("no provider configured")
	}
	if result == nil || len(result.Actions) == 0 {
		return "", fmt.Errorf("no actions to convert")
	}

	logger := common.Logger()
	logger.Info("llm: converting recording to gherkin", "name", name, "actions", len(result.Actions), "provider", provider.Name())

	messages := []Message{
		{Role: "system", Content: conversionSystemPrompt},
		{Role: "user", Content: buildConversionPrompt(name, result)},
	}
	text, err := provider.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("conversion chat: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func buildConversionPrompt(name string, result *recording.UniversalParseResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recording: %s (format: %s)\n", name, result.Format)
	if result.Metadata.StartURL != "" {
		fmt.Fprintf(&b, "Start URL: %s\n", result.Metadata.StartURL)
	}
	b.WriteString("Actions:\n")
	for i, action := range result.Actions {
		fmt.Fprintf(&b, "%d. type=%s", i+1, action.Type)
		if action.LocatorType != "" {
			fmt.Fprintf(&b, " locator=%s:%s", action.LocatorType, action.LocatorValue)
		}
		if action.ElementName != "" {
			fmt.Fprintf(&b, " name=%q", action.ElementName)
		}
		if action.Value != "" {
			fmt.Fprintf(&b, " value=%q", action.Value)
		}
		if action.URL != "" {
			fmt.Fprintf(&b, " url=%s", action.URL)
		}
		if action.Assertion != nil {
			fmt.Fprintf(&b, " assert=%s:%q", action.Assertion.Type, action.Assertion.Expected)
		}
		if action.Synthesized {
			b.WriteString(" (synthesized)")
		}
		fmt.Fprintf(&b, "\n   source: %s\n", action.RawLine)
	}
	if len(result.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, warning := range result.Warnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
	}
	return b.String()
}
