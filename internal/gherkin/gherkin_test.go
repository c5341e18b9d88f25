// File path: internal/gherkin/gherkin_test.go
package gherkin

import (
	"strings"
	"testing"

	"github.com/recbridge/recbridge/internal/recording"
)

func TestFromActionsKeywords(t *testing.T) {
	actions := []recording.Action{
		{Type: recording.ActionGoto, URL: "https://shop.com/login"},
		{Type: recording.ActionFill, LocatorType: recording.LocatorLabel, LocatorValue: "Email", Value: "a@b.com"},
		{Type: recording.ActionFill, LocatorType: recording.LocatorLabel, LocatorValue: "Password", Value: "hunter2"},
		{Type: recording.ActionClick, LocatorType: recording.LocatorRole, LocatorValue: "button", ElementName: "Sign in"},
		{Type: recording.ActionExpect, Assertion: &recording.Assertion{Type: recording.AssertURL, Expected: "https://shop.com/home"}},
	}

	feature := FromActions("Login", actions)
	if len(feature.Scenarios) != 1 {
		t.Fatalf("expected one scenario, got %d", len(feature.Scenarios))
	}
	steps := feature.Scenarios[0].Steps
	if len(steps) != 5 {
		t.Fatalf("expected 5 steps, got %+v", steps)
	}

	wantKeywords := []string{"Given", "When", "And", "And", "Then"}
	for i, want := range wantKeywords {
		if steps[i].Keyword != want {
			t.Fatalf("step %d keyword = %q, want %q", i, steps[i].Keyword, want)
		}
	}
	if !strings.Contains(steps[3].Text, `"Sign in"`) {
		t.Fatalf("click step text = %q", steps[3].Text)
	}
	if !strings.Contains(steps[4].Text, "https://shop.com/home") {
		t.Fatalf("assertion step text = %q", steps[4].Text)
	}
}

func TestRenderLayout(t *testing.T) {
	feature := Feature{
		Name: "Login",
		Scenarios: []Scenario{{
			Name: "Login",
			Steps: []Step{
				{Keyword: "Given", Text: `the user navigates to "https://x.com"`},
				{Keyword: "Then", Text: `the page URL should be "https://x.com/home"`},
			},
		}},
	}
	text := Render(feature)

	if !strings.HasPrefix(text, "Feature: Login\n") {
		t.Fatalf("rendered feature starts with %q", text)
	}
	if !strings.Contains(text, "\n  Scenario: Login\n") {
		t.Fatalf("missing scenario header:\n%s", text)
	}
	if !strings.Contains(text, "    Given the user navigates to") {
		t.Fatalf("missing given step:\n%s", text)
	}
}

func TestSynthesizedClickReadsAsSubmit(t *testing.T) {
	actions := []recording.Action{
		{Type: recording.ActionClick, LocatorType: recording.LocatorRole, LocatorValue: "button", ElementName: "Submit", Synthesized: true},
	}
	feature := FromActions("", actions)
	step := feature.Scenarios[0].Steps[0]
	if !strings.Contains(step.Text, "submits the form") {
		t.Fatalf("synthesized click step = %q", step.Text)
	}
}

func TestFromActionsDefaultName(t *testing.T) {
	feature := FromActions("  ", nil)
	if feature.Name != "Recorded session" {
		t.Fatalf("name = %q", feature.Name)
	}
}
