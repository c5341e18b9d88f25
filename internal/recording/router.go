// File path: internal/recording/router.go
package recording

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/recbridge/recbridge/internal/common"
)

// Normalizer is the single entry point of the subsystem: it detects the
// format (unless a hint is supplied), dispatches to the matching parser
// and reshapes the output into a UniversalParseResult. No error ever
// escapes: unsupported input and broken source both come back as a
// structured result with an empty action list.
//
// A Normalizer holds no mutable state, so one instance can serve
// concurrent callers.
type Normalizer struct {
	script *ScriptParser
	ast    *ASTParser
	trace  *TraceParser
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		script: NewScriptParser(),
		ast:    NewASTParser(),
		trace:  NewTraceParser(),
	}
}

// Parse classifies the content and normalizes it.
func (n *Normalizer) Parse(ctx context.Context, content string) *UniversalParseResult {
	return n.ParseWithFormat(ctx, content, DetectFormat(content))
}

// ParseWithFormat bypasses detection with an explicit format hint.
func (n *Normalizer) ParseWithFormat(ctx context.Context, content string, format Format) *UniversalParseResult {
	logger := common.Logger()

	var parsed *ParseResult
	switch format {
	case FormatPython:
		parsed = n.script.Parse(ctx, content)
	case FormatTypeScript, FormatJavaScript:
		var err error
		parsed, err = n.ast.Parse(ctx, content, format)
		if err != nil {
			// The AST parser is all-or-nothing; its failure becomes a
			// structured result here so callers never need a recover.
			logger.Warn("recording: syntax tree parse failed", "format", format, "error", err)
			return n.failure(format, fmt.Sprintf("unparseable %s source: %v", format, err))
		}
	case FormatHAR:
		parsed = n.trace.Parse(ctx, content)
	case FormatJSON:
		parsed = parseJSONRecording(content)
	default:
		logger.Debug("recording: unsupported format", "format", format)
		return n.failure(FormatUnknown, "unsupported recording format")
	}

	result := &UniversalParseResult{
		Format:      format,
		Actions:     parsed.Actions,
		Metadata:    parsed.Metadata,
		ParseErrors: parsed.ParseErrors,
	}
	result.Warnings = ValidateActions(result.Actions)
	logger.Debug(
		"recording: parse complete",
		"format", format,
		"actions", len(result.Actions),
		"errors", len(result.ParseErrors),
		"warnings", len(result.Warnings),
	)
	return result
}

func (n *Normalizer) failure(format Format, reason string) *UniversalParseResult {
	result := &UniversalParseResult{
		Format:      format,
		Actions:     []Action{},
		ParseErrors: []ParseError{{Reason: reason}},
	}
	result.Warnings = ValidateActions(result.Actions)
	return result
}

// jsonRecording is the pre-normalized shape some callers persist and
// feed back in: either a bare action array or an object with an actions
// field.
type jsonRecording struct {
	Actions  []Action  `json:"actions"`
	Metadata *Metadata `json:"metadata"`
}

func parseJSONRecording(content string) *ParseResult {
	result := &ParseResult{Actions: []Action{}, ParseErrors: []ParseError{}}

	var recording jsonRecording
	if err := json.Unmarshal([]byte(content), &recording); err != nil {
		var actions []Action
		if arrErr := json.Unmarshal([]byte(content), &actions); arrErr != nil {
			result.ParseErrors = append(result.ParseErrors, ParseError{
				Reason: fmt.Sprintf("invalid JSON recording: %v", err),
			})
			return result
		}
		recording.Actions = actions
	}

	for i, action := range recording.Actions {
		if !knownActionType(action.Type) {
			result.ParseErrors = append(result.ParseErrors, ParseError{
				Reason:     fmt.Sprintf("unknown action type %q", action.Type),
				LineNumber: i + 1,
			})
			continue
		}
		if action.LineNumber == 0 {
			action.LineNumber = i + 1
		}
		if action.PageContext == "" {
			action.PageContext = DefaultPageContext
		}
		result.Actions = append(result.Actions, action)
	}

	if recording.Metadata != nil {
		result.Metadata = *recording.Metadata
	}
	result.Metadata.TotalActions = len(result.Actions)
	if result.Metadata.StartURL == "" {
		for _, action := range result.Actions {
			if action.Type == ActionGoto {
				result.Metadata.StartURL = action.URL
				break
			}
		}
	}
	return result
}

func knownActionType(t ActionType) bool {
	switch t {
	case ActionGoto, ActionClick, ActionDblClick, ActionFill, ActionPress,
		ActionCheck, ActionSelect, ActionHover, ActionClose, ActionExpect:
		return true
	}
	return false
}
