// File path: internal/llm/convert_test.go
package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/recbridge/recbridge/internal/llm/providers"
	"github.com/recbridge/recbridge/internal/recording"
)

func sampleResult() *recording.UniversalParseResult {
	return &recording.UniversalParseResult{
		Format: recording.FormatHAR,
		Actions: []recording.Action{
			{Type: recording.ActionGoto, URL: "https://x.com", RawLine: "GET https://x.com", LineNumber: 1},
			{
				Type: recording.ActionClick, LocatorType: recording.LocatorRole, LocatorValue: "button",
				ElementName: "Submit", RawLine: "POST https://x.com/f submit", LineNumber: 2, Synthesized: true,
			},
		},
		Metadata: recording.Metadata{StartURL: "https://x.com", TotalActions: 2},
		Warnings: []string{"recording has no navigation (goto) action"},
	}
}

func TestConvertToGherkinWithLocalProvider(t *testing.T) {
	text, err := ConvertToGherkin(context.Background(), providers.NewLocalProvider(), "smoke", sampleResult())
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.HasPrefix(text, "[local-stub]") {
		t.Fatalf("text = %q", text)
	}
}

func TestConvertToGherkinRequiresActions(t *testing.T) {
	empty := &recording.UniversalParseResult{Format: recording.FormatUnknown}
	if _, err := ConvertToGherkin(context.Background(), providers.NewLocalProvider(), "x", empty); err == nil {
		t.Fatalf("expected error for empty result")
	}
}

func TestBuildConversionPromptCarriesSourceLines(t *testing.T) {
	prompt := buildConversionPrompt("smoke", sampleResult())

	if !strings.Contains(prompt, "Start URL: https://x.com") {
		t.Fatalf("prompt missing start url:\n%s", prompt)
	}
	if !strings.Contains(prompt, "source: GET https://x.com") {
		t.Fatalf("prompt missing raw source line:\n%s", prompt)
	}
	if !strings.Contains(prompt, "(synthesized)") {
		t.Fatalf("prompt missing synthesized marker:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Warnings:") {
		t.Fatalf("prompt missing warnings section:\n%s", prompt)
	}
}
