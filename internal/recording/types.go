// File path: internal/recording/types.go
package recording

// Format identifies the recording flavour a piece of raw input was
// classified as. Detection is deterministic and total; anything that
// matches no known vocabulary is FormatUnknown.
type Format string

const (
	FormatPython     Format = "python"
	FormatTypeScript Format = "typescript"
	FormatJavaScript Format = "javascript"
	FormatJSON       Format = "json"
	FormatHAR        Format = "har"
	FormatUnknown    Format = "unknown"
)

// ActionType is the closed set of normalized UI operations. Source
// operations outside this set are dropped during parsing, never mapped
// to an ad-hoc value.
type ActionType string

const (
	ActionGoto     ActionType = "goto"
	ActionClick    ActionType = "click"
	ActionDblClick ActionType = "dblclick"
	ActionFill     ActionType = "fill"
	ActionPress    ActionType = "press"
	ActionCheck    ActionType = "check"
	ActionSelect   ActionType = "select"
	ActionHover    ActionType = "hover"
	ActionClose    ActionType = "close"
	ActionExpect   ActionType = "expect"
)

// LocatorType describes how the target element was identified in the
// source recording.
type LocatorType string

const (
	LocatorRole        LocatorType = "role"
	LocatorText        LocatorType = "text"
	LocatorLabel       LocatorType = "label"
	LocatorPlaceholder LocatorType = "placeholder"
	LocatorTestID      LocatorType = "testid"
	LocatorCSS         LocatorType = "css"
	LocatorXPath       LocatorType = "xpath"
)

// Assertion is the payload carried by expect actions.
type Assertion struct {
	Type     string `json:"type"`
	Expected string `json:"expected"`
	Matcher  string `json:"matcher,omitempty"`
}

const (
	AssertURL     = "url"
	AssertVisible = "visible"
	AssertText    = "text"
)

// Action is the atomic unit of normalized output. Every parser, whatever
// its input grammar, emits the same shape.
type Action struct {
	Type         ActionType  `json:"type"`
	LocatorType  LocatorType `json:"locatorType,omitempty"`
	LocatorValue string      `json:"locatorValue,omitempty"`
	ElementName  string      `json:"elementName,omitempty"`
	Value        string      `json:"value,omitempty"`
	URL          string      `json:"url,omitempty"`
	Assertion    *Assertion  `json:"assertion,omitempty"`
	RawLine      string      `json:"rawLine"`
	LineNumber   int         `json:"lineNumber"`
	PageContext  string      `json:"pageContext,omitempty"`
	// Synthesized marks actions that were reconstructed rather than
	// observed, such as the submit click inferred from a HAR POST.
	Synthesized bool `json:"synthesized,omitempty"`
}

// Metadata is the common subset of format-specific facts. Fields a
// parser cannot determine are left at their zero value and omitted from
// JSON rather than defaulted to misleading values. Extra carries
// format-specific leftovers.
type Metadata struct {
	StartURL           string            `json:"startUrl,omitempty"`
	TotalActions       int               `json:"totalActions"`
	HasAssertions      bool              `json:"hasAssertions,omitempty"`
	HasPopups          bool              `json:"hasPopups,omitempty"`
	HasFormSubmissions bool              `json:"hasFormSubmissions,omitempty"`
	HasAjaxCalls       bool              `json:"hasAjaxCalls,omitempty"`
	HasAsync           bool              `json:"hasAsync,omitempty"`
	Extra              map[string]string `json:"extra,omitempty"`
}

// ParseError records a recoverable issue encountered mid-parse. Parsing
// always continues past one.
type ParseError struct {
	Reason     string `json:"reason"`
	Line       string `json:"line,omitempty"`
	LineNumber int    `json:"lineNumber,omitempty"`
	Context    string `json:"context,omitempty"`
}

// ParseResult is the uniform pre-normalization output of every parser.
type ParseResult struct {
	Actions     []Action     `json:"actions"`
	Metadata    Metadata     `json:"metadata"`
	ParseErrors []ParseError `json:"parseErrors"`
}

// UniversalParseResult is what the normalizer hands back to callers:
// the parser output plus the detected format and advisory warnings.
type UniversalParseResult struct {
	Format      Format       `json:"format"`
	Actions     []Action     `json:"actions"`
	Metadata    Metadata     `json:"metadata"`
	ParseErrors []ParseError `json:"parseErrors"`
	Warnings    []string     `json:"warnings"`
}

// DefaultPageContext is the page identifier assumed when a recording
// never opens a second page or popup.
const DefaultPageContext = "page"

// locatorExempt reports whether an action type is allowed to omit a
// locator. Everything else should eventually carry locatorType and
// locatorValue; absence is a validation warning, not a parse failure.
func locatorExempt(t ActionType) bool {
	switch t {
	case ActionGoto, ActionClose, ActionExpect:
		return true
	}
	return false
}
