// File path: internal/recording/ast.go
package recording

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ASTParser parses JavaScript/TypeScript recordings through a real
// syntax tree instead of line heuristics. Each parse call builds its own
// tree-sitter parser, so instances are safe for concurrent use.
//
// Unlike the script parser this one is all-or-nothing: a tree that fails
// to build cannot be partially visited, so the error is returned to the
// router, which converts it into a structured result.
type ASTParser struct{}

func NewASTParser() *ASTParser {
	return &ASTParser{}
}

var errUnparseableSource = errors.New("source contains syntax errors")

// actionMethods maps a chain's terminal method name to the normalized
// action type. Methods outside this table never become actions.
var actionMethods = map[string]ActionType{
	"goto":         ActionGoto,
	"click":        ActionClick,
	"dblclick":     ActionDblClick,
	"fill":         ActionFill,
	"press":        ActionPress,
	"check":        ActionCheck,
	"uncheck":      ActionCheck,
	"selectOption": ActionSelect,
	"hover":        ActionHover,
	"close":        ActionClose,
}

// valueMethods are the action methods whose first argument is a payload
// (text typed, key pressed, option selected).
var valueMethods = map[string]struct{}{
	"fill":         {},
	"press":        {},
	"selectOption": {},
}

// locatorMethods maps locator-constructor names found earlier in a
// chain to locator types. locator() is special-cased for xpath.
var locatorMethods = map[string]LocatorType{
	"getByRole":        LocatorRole,
	"getByText":        LocatorText,
	"getByLabel":       LocatorLabel,
	"getByPlaceholder": LocatorPlaceholder,
	"getByTestId":      LocatorTestID,
	"locator":          LocatorCSS,
}

var assertionMatchers = map[string]string{
	"toHaveURL":     AssertURL,
	"toBeVisible":   AssertVisible,
	"toHaveText":    AssertText,
	"toContainText": AssertText,
}

var popupPageRe = regexp.MustCompile(`^page\d+$`)

// chainLink is one reconstructed step of a method chain, outermost call
// last.
type chainLink struct {
	method string
	args   *sitter.Node
}

// Parse builds the syntax tree and visits it top-down. The returned
// error is non-nil only for unparseable source.
func (p *ASTParser) Parse(ctx context.Context, content string, format Format) (*ParseResult, error) {
	source := []byte(content)

	parser := sitter.NewParser()
	if format == FormatTypeScript {
		parser.SetLanguage(typescript.GetLanguage())
	} else {
		parser.SetLanguage(javascript.GetLanguage())
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("build syntax tree: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return nil, errUnparseableSource
	}

	visitor := &astVisitor{
		source: source,
		lines:  strings.Split(content, "\n"),
		result: &ParseResult{Actions: []Action{}, ParseErrors: []ParseError{}},
	}
	visitor.walk(root)
	visitor.result.Metadata.TotalActions = len(visitor.result.Actions)
	return visitor.result, nil
}

type astVisitor struct {
	source []byte
	lines  []string
	result *ParseResult
}

func (v *astVisitor) walk(node *sitter.Node) {
	switch node.Type() {
	case "await_expression":
		v.result.Metadata.HasAsync = true
	case "call_expression":
		// Only the outermost call of a chain is a candidate; inner
		// calls are reached through chain reconstruction.
		parent := node.Parent()
		if parent == nil || parent.Type() != "member_expression" {
			v.visitCall(node)
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		v.walk(node.NamedChild(i))
	}
}

// visitCall reconstructs the call's method chain and emits an action if
// the terminal method is recognized.
func (v *astVisitor) visitCall(node *sitter.Node) {
	base, links := v.buildChain(node)
	if len(links) == 0 {
		return
	}

	if links[0].method == "expect" {
		v.visitAssertion(node, links)
		return
	}

	terminal := links[len(links)-1]
	actionType, ok := actionMethods[terminal.method]
	if !ok {
		if v.chainMentionsPopup(links) {
			v.result.Metadata.HasPopups = true
		}
		return
	}

	action := Action{
		Type:        actionType,
		RawLine:     v.rawLine(node),
		LineNumber:  int(node.StartPoint().Row) + 1,
		PageContext: DefaultPageContext,
	}
	if base != "" {
		action.PageContext = base
		if popupPageRe.MatchString(base) {
			v.result.Metadata.HasPopups = true
		}
	}

	if actionType == ActionGoto {
		if url, ok := v.firstStringArg(terminal.args); ok {
			action.URL = url
			if v.result.Metadata.StartURL == "" {
				v.result.Metadata.StartURL = url
			}
		} else if argCount(terminal.args) > 0 {
			v.recordNonLiteral(terminal.method, node)
		}
	} else if _, needsValue := valueMethods[terminal.method]; needsValue {
		if value, ok := v.firstStringArg(terminal.args); ok {
			action.Value = value
		} else if argCount(terminal.args) > 0 {
			v.recordNonLiteral(terminal.method, node)
		}
	}

	v.applyChainLocator(&action, links[:len(links)-1])
	v.result.Actions = append(v.result.Actions, action)
}

// visitAssertion handles expect(...) chains. Only string-literal
// assertion arguments are supported; anything else is skipped.
func (v *astVisitor) visitAssertion(node *sitter.Node, links []chainLink) {
	matcherName := links[len(links)-1].method
	assertType, ok := assertionMatchers[matcherName]
	if !ok {
		return
	}

	action := Action{
		Type:        ActionExpect,
		RawLine:     v.rawLine(node),
		LineNumber:  int(node.StartPoint().Row) + 1,
		PageContext: DefaultPageContext,
		Assertion:   &Assertion{Type: assertType, Matcher: matcherName},
	}

	expectArgs := links[0].args
	switch assertType {
	case AssertVisible:
		if subject := firstNamedChild(expectArgs); subject != nil {
			action.Assertion.Expected = subject.Content(v.source)
			v.applySubjectLocator(&action, subject)
		}
	default:
		if expected, ok := v.firstStringArg(links[len(links)-1].args); ok {
			action.Assertion.Expected = expected
		} else {
			v.recordNonLiteral(matcherName, node)
		}
		if subject := firstNamedChild(expectArgs); subject != nil {
			v.applySubjectLocator(&action, subject)
		}
	}

	v.result.Metadata.HasAssertions = true
	v.result.Actions = append(v.result.Actions, action)
}

// buildChain walks the call/property spine from the outermost call
// inward until it reaches a root identifier. Links come back in source
// order, innermost first.
func (v *astVisitor) buildChain(node *sitter.Node) (string, []chainLink) {
	var reversed []chainLink
	cur := node
	for cur != nil && cur.Type() == "call_expression" {
		fn := cur.ChildByFieldName("function")
		if fn == nil {
			return "", nil
		}
		args := cur.ChildByFieldName("arguments")
		switch fn.Type() {
		case "member_expression":
			prop := fn.ChildByFieldName("property")
			if prop == nil {
				return "", nil
			}
			reversed = append(reversed, chainLink{method: prop.Content(v.source), args: args})
			cur = fn.ChildByFieldName("object")
		case "identifier":
			reversed = append(reversed, chainLink{method: fn.Content(v.source), args: args})
			cur = nil
		default:
			return "", nil
		}
	}

	base := ""
	if cur != nil && cur.Type() == "identifier" {
		base = cur.Content(v.source)
	}

	links := make([]chainLink, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		links = append(links, reversed[i])
	}
	return base, links
}

// applyChainLocator scans the non-terminal links for the first locator
// constructor and fills the action's locator fields from it.
func (v *astVisitor) applyChainLocator(action *Action, links []chainLink) {
	for _, link := range links {
		typ, ok := locatorMethods[link.method]
		if !ok {
			continue
		}
		value, hasValue := v.firstStringArg(link.args)
		if !hasValue {
			continue
		}
		action.LocatorType = typ
		action.LocatorValue = value
		if link.method == "locator" && strings.HasPrefix(value, "//") {
			action.LocatorType = LocatorXPath
		}
		if link.method == "getByRole" {
			if name, ok := v.objectNameOption(link.args); ok {
				action.ElementName = name
			}
		}
		return
	}
}

// applySubjectLocator extracts a locator from an expect() subject, which
// may itself be a locator chain.
func (v *astVisitor) applySubjectLocator(action *Action, subject *sitter.Node) {
	if subject.Type() != "call_expression" {
		return
	}
	_, links := v.buildChain(subject)
	v.applyChainLocator(action, links)
}

func (v *astVisitor) chainMentionsPopup(links []chainLink) bool {
	for _, link := range links {
		if link.method != "waitForEvent" {
			continue
		}
		if event, ok := v.firstStringArg(link.args); ok && event == "popup" {
			return true
		}
	}
	return false
}

// firstStringArg returns the unquoted content of the first string
// literal among the call's arguments.
func (v *astVisitor) firstStringArg(args *sitter.Node) (string, bool) {
	if args == nil {
		return "", false
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		if child.Type() == "string" || child.Type() == "template_string" {
			return unquote(child.Content(v.source)), true
		}
	}
	return "", false
}

// objectNameOption digs the name property out of an options object
// argument, as in getByRole('button', { name: 'Submit' }).
func (v *astVisitor) objectNameOption(args *sitter.Node) (string, bool) {
	if args == nil {
		return "", false
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		obj := args.NamedChild(i)
		if obj.Type() != "object" {
			continue
		}
		for j := 0; j < int(obj.NamedChildCount()); j++ {
			pair := obj.NamedChild(j)
			if pair.Type() != "pair" {
				continue
			}
			key := pair.ChildByFieldName("key")
			value := pair.ChildByFieldName("value")
			if key == nil || value == nil {
				continue
			}
			if unquote(key.Content(v.source)) != "name" {
				continue
			}
			if value.Type() == "string" || value.Type() == "template_string" {
				return unquote(value.Content(v.source)), true
			}
		}
	}
	return "", false
}

func (v *astVisitor) recordNonLiteral(method string, node *sitter.Node) {
	v.result.ParseErrors = append(v.result.ParseErrors, ParseError{
		Reason:     "non-literal argument for " + method,
		Line:       v.rawLine(node),
		LineNumber: int(node.StartPoint().Row) + 1,
	})
}

func (v *astVisitor) rawLine(node *sitter.Node) string {
	row := int(node.StartPoint().Row)
	if row >= 0 && row < len(v.lines) {
		return strings.TrimSpace(v.lines[row])
	}
	return node.Content(v.source)
}

func firstNamedChild(node *sitter.Node) *sitter.Node {
	if node == nil || node.NamedChildCount() == 0 {
		return nil
	}
	return node.NamedChild(0)
}

func argCount(args *sitter.Node) int {
	if args == nil {
		return 0
	}
	return int(args.NamedChildCount())
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		switch s[0] {
		case '\'', '"', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}
