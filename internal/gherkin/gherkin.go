// File path: internal/gherkin/gherkin.go
package gherkin

import (
	"fmt"
	"strings"

	"github.com/recbridge/recbridge/internal/recording"
)

// Feature is a minimal Gherkin document model: enough structure to
// render deterministic .feature text from normalized actions. The AI
// conversion path produces richer prose; this package is the dependable
// fallback that works without any provider.
type Feature struct {
	Name      string
	Scenarios []Scenario
}

type Scenario struct {
	Name  string
	Steps []Step
}

type Step struct {
	Keyword string
	Text    string
}

// FromActions converts a normalized action sequence into a single
// scenario. Step keywords follow Gherkin convention: the first
// navigation is Given, interactions are When, assertions are Then, and
// repeats collapse to And.
func FromActions(name string, actions []recording.Action) Feature {
	if strings.TrimSpace(name) == "" {
		name = "Recorded session"
	}
	scenario := Scenario{Name: name}
	prevKind := ""
	for _, action := range actions {
		text, kind, ok := stepFor(action)
		if !ok {
			continue
		}
		keyword := kind
		if kind == prevKind {
			keyword = "And"
		}
		prevKind = kind
		scenario.Steps = append(scenario.Steps, Step{Keyword: keyword, Text: text})
	}
	return Feature{Name: name, Scenarios: []Scenario{scenario}}
}

// Render writes the feature as Gherkin text.
func Render(feature Feature) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Feature: %s\n", feature.Name)
	for _, scenario := range feature.Scenarios {
		fmt.Fprintf(&b, "\n  Scenario: %s\n", scenario.Name)
		for _, step := range scenario.Steps {
			fmt.Fprintf(&b, "    %s %s\n", step.Keyword, step.Text)
		}
	}
	return b.String()
}

func stepFor(action recording.Action) (text, kind string, ok bool) {
	target := describeTarget(action)
	switch action.Type {
	case recording.ActionGoto:
		return fmt.Sprintf("the user navigates to %q", action.URL), "Given", true
	case recording.ActionClick:
		if action.Synthesized {
			return fmt.Sprintf("the user submits the form via %s", target), "When", true
		}
		return fmt.Sprintf("the user clicks %s", target), "When", true
	case recording.ActionDblClick:
		return fmt.Sprintf("the user double-clicks %s", target), "When", true
	case recording.ActionFill:
		return fmt.Sprintf("the user fills %s with %q", target, action.Value), "When", true
	case recording.ActionPress:
		return fmt.Sprintf("the user presses %q on %s", action.Value, target), "When", true
	case recording.ActionCheck:
		return fmt.Sprintf("the user checks %s", target), "When", true
	case recording.ActionSelect:
		return fmt.Sprintf("the user selects %q in %s", action.Value, target), "When", true
	case recording.ActionHover:
		return fmt.Sprintf("the user hovers over %s", target), "When", true
	case recording.ActionClose:
		return "the user closes the page", "When", true
	case recording.ActionExpect:
		return assertionStep(action), "Then", true
	}
	return "", "", false
}

func assertionStep(action recording.Action) string {
	if action.Assertion == nil {
		return "the expected condition holds"
	}
	switch action.Assertion.Type {
	case recording.AssertURL:
		return fmt.Sprintf("the page URL should be %q", action.Assertion.Expected)
	case recording.AssertVisible:
		if action.LocatorValue != "" {
			return fmt.Sprintf("%s should be visible", describeTarget(action))
		}
		return fmt.Sprintf("%q should be visible", action.Assertion.Expected)
	case recording.AssertText:
		return fmt.Sprintf("%s should contain the text %q", describeTarget(action), action.Assertion.Expected)
	}
	return "the expected condition holds"
}

func describeTarget(action recording.Action) string {
	switch action.LocatorType {
	case recording.LocatorRole:
		if action.ElementName != "" {
			return fmt.Sprintf("the %q %s", action.ElementName, action.LocatorValue)
		}
		return fmt.Sprintf("the %s", action.LocatorValue)
	case recording.LocatorText:
		return fmt.Sprintf("the %q element", action.LocatorValue)
	case recording.LocatorLabel:
		return fmt.Sprintf("the %q field", action.LocatorValue)
	case recording.LocatorPlaceholder:
		return fmt.Sprintf("the field with placeholder %q", action.LocatorValue)
	case recording.LocatorTestID:
		return fmt.Sprintf("the element with test id %q", action.LocatorValue)
	case recording.LocatorCSS, recording.LocatorXPath:
		return fmt.Sprintf("the element matching %q", action.LocatorValue)
	}
	return "the element"
}
