// File path: internal/recording/script.go
package recording

import (
	"context"
	"regexp"
	"strings"
)

// ScriptParser converts line-oriented Python automation scripts into
// actions. There is no grammar here: a fixed table of tagged patterns is
// evaluated in priority order against each line, and only literal string
// arguments are captured. Dynamic arguments degrade to an action with a
// missing value plus a recorded parse error. Lines matching no pattern
// are skipped silently so imports, comments and control flow do not
// generate noise. This is best-effort by design.
type ScriptParser struct{}

func NewScriptParser() *ScriptParser {
	return &ScriptParser{}
}

// scriptRule ties a call-recognition pattern to the action it produces.
// literal, when set, captures the call's string argument; a rule that
// recognizes its call but cannot capture a literal records a parse
// error and emits the action without the value.
type scriptRule struct {
	call    *regexp.Regexp
	literal *regexp.Regexp
	action  ActionType
	locator bool
}

var scriptRules = []scriptRule{
	{
		call:    regexp.MustCompile(`\.goto\(`),
		literal: regexp.MustCompile(`\.goto\(\s*["']([^"']+)["']`),
		action:  ActionGoto,
	},
	{
		call:    regexp.MustCompile(`\.fill\(`),
		literal: regexp.MustCompile(`\.fill\(\s*["']([^"']*)["']`),
		action:  ActionFill,
		locator: true,
	},
	{
		call:    regexp.MustCompile(`\.press\(`),
		literal: regexp.MustCompile(`\.press\(\s*["']([^"']+)["']`),
		action:  ActionPress,
		locator: true,
	},
	{
		call:    regexp.MustCompile(`\.select_option\(`),
		literal: regexp.MustCompile(`\.select_option\(\s*["']([^"']+)["']`),
		action:  ActionSelect,
		locator: true,
	},
	{
		call:    regexp.MustCompile(`\.dblclick\(`),
		action:  ActionDblClick,
		locator: true,
	},
	{
		call:    regexp.MustCompile(`\.click\(`),
		action:  ActionClick,
		locator: true,
	},
	{
		call:    regexp.MustCompile(`\.check\(`),
		action:  ActionCheck,
		locator: true,
	},
	{
		call:    regexp.MustCompile(`\.hover\(`),
		action:  ActionHover,
		locator: true,
	},
	{
		call:   regexp.MustCompile(`\.close\(\s*\)`),
		action: ActionClose,
	},
}

var pyLocatorRules = []struct {
	re  *regexp.Regexp
	typ LocatorType
}{
	{regexp.MustCompile(`\.get_by_role\(\s*["']([^"']+)["'](?:\s*,\s*name\s*=\s*["']([^"']*)["'])?`), LocatorRole},
	{regexp.MustCompile(`\.get_by_text\(\s*["']([^"']+)["']`), LocatorText},
	{regexp.MustCompile(`\.get_by_label\(\s*["']([^"']+)["']`), LocatorLabel},
	{regexp.MustCompile(`\.get_by_placeholder\(\s*["']([^"']+)["']`), LocatorPlaceholder},
	{regexp.MustCompile(`\.get_by_test_id\(\s*["']([^"']+)["']`), LocatorTestID},
	{regexp.MustCompile(`\.locator\(\s*["']([^"']+)["']`), LocatorCSS},
}

var (
	pySubjectRe      = regexp.MustCompile(`^\s*(?:await\s+)?([A-Za-z_][A-Za-z0-9_]*)\.`)
	pyPopupAssignRe  = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*=\s*([A-Za-z_][A-Za-z0-9_]*)\.value\b`)
	pyExpectPopupRe  = regexp.MustCompile(`\.expect_popup\(\s*\)\s+as\s+([A-Za-z_][A-Za-z0-9_]*)`)
	pyExpectURLRe    = regexp.MustCompile(`\.to_have_url\(\s*["']([^"']+)["']`)
	pyExpectTextRe   = regexp.MustCompile(`\.to_have_text\(\s*["']([^"']+)["']`)
	pyExpectVisRe    = regexp.MustCompile(`expect\((.+)\)\.to_be_visible\(`)
	pyExpectHiddenRe = regexp.MustCompile(`\.to_be_hidden\(`)
)

// Parse scans the script one line at a time. Line numbers map 1:1 to
// the source.
func (p *ScriptParser) Parse(ctx context.Context, content string) *ParseResult {
	result := &ParseResult{Actions: []Action{}, ParseErrors: []ParseError{}}

	popupInfos := map[string]struct{}{}
	popupPages := map[string]struct{}{}

	lines := strings.Split(content, "\n")
	for i, raw := range lines {
		if ctx != nil && ctx.Err() != nil {
			break
		}
		lineNumber := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := pyExpectPopupRe.FindStringSubmatch(line); m != nil {
			popupInfos[m[1]] = struct{}{}
			result.Metadata.HasPopups = true
			continue
		}
		if m := pyPopupAssignRe.FindStringSubmatch(line); m != nil {
			if _, ok := popupInfos[m[2]]; ok {
				popupPages[m[1]] = struct{}{}
				continue
			}
		}

		if strings.Contains(line, "expect(") {
			if action, ok := p.parseAssertion(line, lineNumber); ok {
				result.Actions = append(result.Actions, action)
				result.Metadata.HasAssertions = true
			}
			continue
		}

		action, perr, ok := p.parseCall(line, lineNumber)
		if !ok {
			continue
		}
		action.PageContext = pageContextFor(line, popupPages)
		result.Actions = append(result.Actions, action)
		if perr != nil {
			result.ParseErrors = append(result.ParseErrors, *perr)
		}
		if action.Type == ActionGoto && result.Metadata.StartURL == "" {
			result.Metadata.StartURL = action.URL
		}
	}

	result.Metadata.TotalActions = len(result.Actions)
	return result
}

func (p *ScriptParser) parseCall(line string, lineNumber int) (Action, *ParseError, bool) {
	for _, rule := range scriptRules {
		if !rule.call.MatchString(line) {
			continue
		}
		action := Action{
			Type:       rule.action,
			RawLine:    line,
			LineNumber: lineNumber,
		}
		var perr *ParseError
		if rule.literal != nil {
			if m := rule.literal.FindStringSubmatch(line); m != nil {
				if rule.action == ActionGoto {
					action.URL = m[1]
				} else {
					action.Value = m[1]
				}
			} else {
				perr = &ParseError{
					Reason:     "non-literal argument for " + string(rule.action),
					Line:       line,
					LineNumber: lineNumber,
				}
			}
		}
		if rule.locator {
			applyScriptLocator(&action, line)
		}
		return action, perr, true
	}
	return Action{}, nil, false
}

func (p *ScriptParser) parseAssertion(line string, lineNumber int) (Action, bool) {
	action := Action{
		Type:        ActionExpect,
		RawLine:     line,
		LineNumber:  lineNumber,
		PageContext: DefaultPageContext,
	}
	switch {
	case pyExpectURLRe.MatchString(line):
		m := pyExpectURLRe.FindStringSubmatch(line)
		action.Assertion = &Assertion{Type: AssertURL, Expected: m[1]}
	case pyExpectTextRe.MatchString(line):
		m := pyExpectTextRe.FindStringSubmatch(line)
		action.Assertion = &Assertion{Type: AssertText, Expected: m[1], Matcher: "to_have_text"}
		applyScriptLocator(&action, line)
	case pyExpectVisRe.MatchString(line) && !pyExpectHiddenRe.MatchString(line):
		m := pyExpectVisRe.FindStringSubmatch(line)
		action.Assertion = &Assertion{Type: AssertVisible, Expected: strings.TrimSpace(m[1])}
		applyScriptLocator(&action, line)
	default:
		// Unrecognized assertion matcher, skipped like any other
		// unknown line.
		return Action{}, false
	}
	return action, true
}

func applyScriptLocator(action *Action, line string) {
	for _, rule := range pyLocatorRules {
		m := rule.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		action.LocatorType = rule.typ
		action.LocatorValue = m[1]
		if rule.typ == LocatorRole && len(m) > 2 && m[2] != "" {
			action.ElementName = m[2]
		}
		if rule.typ == LocatorCSS && strings.HasPrefix(m[1], "//") {
			action.LocatorType = LocatorXPath
		}
		return
	}
}

func pageContextFor(line string, popupPages map[string]struct{}) string {
	if m := pySubjectRe.FindStringSubmatch(line); m != nil {
		if _, ok := popupPages[m[1]]; ok {
			return m[1]
		}
	}
	return DefaultPageContext
}
