// File path: internal/recording/validate_test.go
package recording

import (
	"reflect"
	"strings"
	"testing"
)

func TestValidateEmptyActionList(t *testing.T) {
	warnings := ValidateActions(nil)
	if len(warnings) != 1 || !strings.Contains(warnings[0], "no actions") {
		t.Fatalf("warnings = %+v", warnings)
	}
}

func TestValidateMissingGoto(t *testing.T) {
	actions := []Action{
		{Type: ActionClick, LocatorType: LocatorRole, LocatorValue: "button", LineNumber: 1},
	}
	warnings := ValidateActions(actions)
	if len(warnings) != 1 || !strings.Contains(warnings[0], "no navigation") {
		t.Fatalf("warnings = %+v", warnings)
	}
}

func TestValidateMissingLocator(t *testing.T) {
	actions := []Action{
		{Type: ActionGoto, URL: "https://x.com", LineNumber: 1},
		{Type: ActionClick, LineNumber: 2},
		{Type: ActionFill, LocatorType: LocatorLabel, LineNumber: 3},
		{Type: ActionExpect, LineNumber: 4},
		{Type: ActionClose, LineNumber: 5},
	}
	warnings := ValidateActions(actions)
	// The click has no locator at all and the fill has a type but no
	// value; goto, expect and close are exempt.
	if len(warnings) != 2 {
		t.Fatalf("warnings = %+v", warnings)
	}
	for _, warning := range warnings {
		if !strings.Contains(warning, "missing a locator") {
			t.Fatalf("unexpected warning %q", warning)
		}
	}
}

func TestValidateIdempotent(t *testing.T) {
	actions := []Action{
		{Type: ActionClick, LineNumber: 1},
		{Type: ActionFill, LineNumber: 2},
	}
	first := ValidateActions(actions)
	second := ValidateActions(actions)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("validation not idempotent: %+v then %+v", first, second)
	}
}

func TestValidateCleanRecording(t *testing.T) {
	actions := []Action{
		{Type: ActionGoto, URL: "https://x.com", LineNumber: 1},
		{Type: ActionFill, LocatorType: LocatorLabel, LocatorValue: "Email", Value: "a@b.com", LineNumber: 2},
		{Type: ActionClick, LocatorType: LocatorRole, LocatorValue: "button", LineNumber: 3},
	}
	warnings := ValidateActions(actions)
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %+v", warnings)
	}
}
