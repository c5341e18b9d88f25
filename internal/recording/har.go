// File path: internal/recording/har.go
package recording

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// TraceParser infers UI actions from a HAR network log. Nothing in a
// HAR file says "the user clicked here", so every action is a
// reconstruction from request/response pairs. Four independent passes
// run over the same entry list; the pass order, not the request order,
// fixes the position of each action group in the output.
//
// This parser never lets an error escape: malformed JSON or a missing
// log.entries list becomes a single parse error with an empty action
// list.
type TraceParser struct{}

func NewTraceParser() *TraceParser {
	return &TraceParser{}
}

type harFile struct {
	Log *harLog `json:"log"`
}

type harLog struct {
	Version string          `json:"version"`
	Pages   []harPage       `json:"pages"`
	Entries json.RawMessage `json:"entries"`
}

type harPage struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type harEntry struct {
	StartedDateTime string      `json:"startedDateTime"`
	Request         harRequest  `json:"request"`
	Response        harResponse `json:"response"`
}

type harRequest struct {
	Method   string       `json:"method"`
	URL      string       `json:"url"`
	Headers  []harHeader  `json:"headers"`
	PostData *harPostData `json:"postData"`
}

type harHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type harPostData struct {
	MimeType string     `json:"mimeType"`
	Text     string     `json:"text"`
	Params   []harParam `json:"params"`
}

type harParam struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type harResponse struct {
	Status  int        `json:"status"`
	Content harContent `json:"content"`
}

type harContent struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// Parse decodes the HAR document and composes the four extraction
// passes. Synthetic line numbers are assigned in emission order.
func (p *TraceParser) Parse(ctx context.Context, content string) *ParseResult {
	result := &ParseResult{Actions: []Action{}, ParseErrors: []ParseError{}}

	var file harFile
	if err := json.Unmarshal([]byte(content), &file); err != nil {
		result.ParseErrors = append(result.ParseErrors, ParseError{
			Reason: fmt.Sprintf("invalid HAR document: %v", err),
		})
		return result
	}
	if file.Log == nil || len(file.Log.Entries) == 0 {
		result.ParseErrors = append(result.ParseErrors, ParseError{
			Reason: "HAR document has no log.entries",
		})
		return result
	}

	var entries []harEntry
	if err := json.Unmarshal(file.Log.Entries, &entries); err != nil {
		result.ParseErrors = append(result.ParseErrors, ParseError{
			Reason: fmt.Sprintf("invalid HAR entries: %v", err),
		})
		return result
	}

	navigations, navigated := extractNavigations(entries)
	formActions, formErrors := extractFormActions(entries)
	links := extractLinkClicks(entries, navigated)

	result.Actions = append(result.Actions, navigations...)
	result.Actions = append(result.Actions, formActions...)
	result.Actions = append(result.Actions, links...)
	result.ParseErrors = append(result.ParseErrors, formErrors...)
	for i := range result.Actions {
		result.Actions[i].LineNumber = i + 1
		result.Actions[i].PageContext = DefaultPageContext
	}

	if len(navigations) > 0 {
		result.Metadata.StartURL = navigations[0].URL
	}
	result.Metadata.TotalActions = len(result.Actions)
	result.Metadata.HasFormSubmissions = len(formActions) > 0
	result.Metadata.HasAjaxCalls = hasAjaxCalls(entries)
	result.Metadata.Extra = map[string]string{
		"entryCount": strconv.Itoa(len(entries)),
	}
	return result
}

// extractNavigations emits one goto per distinct top-level HTML GET, in
// chronological order. Deduplication is adjacent-only: a reload of the
// same URL later in the session still counts as a navigation. The
// returned set records which entry indexes were consumed.
func extractNavigations(entries []harEntry) ([]Action, map[int]struct{}) {
	var actions []Action
	navigated := make(map[int]struct{})
	prevURL := ""
	for i, entry := range entries {
		if !isHTMLGet(entry) || isIframeRequest(entry) {
			continue
		}
		if entry.Request.URL == prevURL {
			continue
		}
		prevURL = entry.Request.URL
		navigated[i] = struct{}{}
		actions = append(actions, Action{
			Type:    ActionGoto,
			URL:     entry.Request.URL,
			RawLine: fmt.Sprintf("GET %s", entry.Request.URL),
		})
	}
	return actions, navigated
}

// extractFormActions reconstructs form interactions from POST bodies:
// one fill per field, then one synthesized submit click. The click was
// never observed, only the resulting POST, so it is flagged.
func extractFormActions(entries []harEntry) ([]Action, []ParseError) {
	var actions []Action
	var errs []ParseError
	for _, entry := range entries {
		if !strings.EqualFold(entry.Request.Method, "POST") || entry.Request.PostData == nil {
			continue
		}
		fields, err := postFields(entry.Request.PostData)
		if err != nil {
			errs = append(errs, ParseError{
				Reason:  fmt.Sprintf("unreadable POST body for %s: %v", entry.Request.URL, err),
				Context: entry.Request.PostData.MimeType,
			})
			continue
		}
		if len(fields) == 0 {
			continue
		}
		for _, field := range fields {
			actions = append(actions, Action{
				Type:         ActionFill,
				LocatorType:  LocatorLabel,
				LocatorValue: field.name,
				Value:        field.value,
				RawLine:      fmt.Sprintf("POST %s field %s", entry.Request.URL, field.name),
			})
		}
		actions = append(actions, Action{
			Type:         ActionClick,
			LocatorType:  LocatorRole,
			LocatorValue: "button",
			ElementName:  "Submit",
			RawLine:      fmt.Sprintf("POST %s submit", entry.Request.URL),
			Synthesized:  true,
		})
	}
	return actions, errs
}

// extractLinkClicks treats HTML GETs not consumed by the navigation
// pass as the consequence of a link click; the link text is inferred
// from the final URL path segment.
func extractLinkClicks(entries []harEntry, navigated map[int]struct{}) []Action {
	var actions []Action
	for i, entry := range entries {
		if !isHTMLGet(entry) {
			continue
		}
		if _, ok := navigated[i]; ok {
			continue
		}
		actions = append(actions, Action{
			Type:         ActionClick,
			LocatorType:  LocatorText,
			LocatorValue: linkText(entry.Request.URL),
			RawLine:      fmt.Sprintf("GET %s", entry.Request.URL),
		})
	}
	return actions
}

// hasAjaxCalls flags XHR/fetch traffic. The calls themselves produce no
// actions: they are assumed to be side effects of UI actions that are
// already captured.
func hasAjaxCalls(entries []harEntry) bool {
	for _, entry := range entries {
		if strings.EqualFold(headerValue(entry.Request.Headers, "X-Requested-With"), "XMLHttpRequest") {
			return true
		}
		mime := strings.ToLower(entry.Response.Content.MimeType)
		if strings.Contains(mime, "json") || strings.Contains(mime, "xml") {
			return true
		}
	}
	return false
}

type formField struct {
	name  string
	value string
}

// postFields pulls field name/value pairs out of a POST body. Explicit
// params win; otherwise the body text is decoded according to its
// content type. JSON object keys are sorted so output stays
// deterministic.
func postFields(postData *harPostData) ([]formField, error) {
	if len(postData.Params) > 0 {
		fields := make([]formField, 0, len(postData.Params))
		for _, p := range postData.Params {
			if p.Name == "" {
				continue
			}
			fields = append(fields, formField{name: p.Name, value: p.Value})
		}
		return fields, nil
	}

	mime := strings.ToLower(postData.MimeType)
	text := strings.TrimSpace(postData.Text)
	if text == "" {
		return nil, nil
	}
	switch {
	case strings.Contains(mime, "application/x-www-form-urlencoded"):
		values, err := url.ParseQuery(text)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)
		fields := make([]formField, 0, len(names))
		for _, name := range names {
			fields = append(fields, formField{name: name, value: values.Get(name)})
		}
		return fields, nil
	case strings.Contains(mime, "application/json"):
		decoder := json.NewDecoder(strings.NewReader(text))
		decoder.UseNumber()
		var body map[string]interface{}
		if err := decoder.Decode(&body); err != nil {
			return nil, err
		}
		names := make([]string, 0, len(body))
		for name := range body {
			names = append(names, name)
		}
		sort.Strings(names)
		fields := make([]formField, 0, len(names))
		for _, name := range names {
			fields = append(fields, formField{name: name, value: stringifyJSONValue(body[name])})
		}
		return fields, nil
	}
	return nil, nil
}

func stringifyJSONValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}

func isHTMLGet(entry harEntry) bool {
	if !strings.EqualFold(entry.Request.Method, "GET") {
		return false
	}
	return strings.Contains(strings.ToLower(entry.Response.Content.MimeType), "text/html")
}

func isIframeRequest(entry harEntry) bool {
	if strings.EqualFold(headerValue(entry.Request.Headers, "Sec-Fetch-Dest"), "iframe") {
		return true
	}
	return strings.Contains(strings.ToLower(entry.Request.URL), "iframe")
}

func headerValue(headers []harHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// linkText derives a display label from the last non-empty URL path
// segment, defaulting to "Link" for bare roots.
func linkText(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "Link"
	}
	segments := strings.Split(parsed.Path, "/")
	segment := ""
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			segment = segments[i]
			break
		}
	}
	if segment == "" {
		return "Link"
	}
	segment = strings.NewReplacer("-", " ", "_", " ").Replace(segment)
	runes := []rune(segment)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
