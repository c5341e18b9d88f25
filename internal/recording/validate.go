// File path: internal/recording/validate.go
package recording

import "fmt"

// ValidateActions runs the post-parse sanity checks. Warnings are
// advisory: a recording that trips every check still parses. The checks
// are pure over the action list, so re-validating the same list yields
// the same warnings in the same order.
func ValidateActions(actions []Action) []string {
	warnings := []string{}

	if len(actions) == 0 {
		warnings = append(warnings, "recording produced no actions")
		return warnings
	}

	hasGoto := false
	for _, action := range actions {
		if action.Type == ActionGoto {
			hasGoto = true
			break
		}
	}
	if !hasGoto {
		warnings = append(warnings, "recording has no navigation (goto) action; generated scenarios may lack a starting URL")
	}

	for i, action := range actions {
		if locatorExempt(action.Type) {
			continue
		}
		if action.LocatorType == "" || action.LocatorValue == "" {
			warnings = append(warnings, fmt.Sprintf(
				"action %d (%s) at line %d is missing a locator", i+1, action.Type, action.LineNumber))
		}
	}

	return warnings
}
