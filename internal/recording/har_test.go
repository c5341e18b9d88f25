// File path: internal/recording/har_test.go
package recording

import (
	"context"
	"strings"
	"testing"
)

func TestTraceParserSingleNavigation(t *testing.T) {
	har := `{
	  "log": {
	    "version": "1.2",
	    "entries": [
	      {
	        "request": {"method": "GET", "url": "https://shop.com/", "headers": []},
	        "response": {"status": 200, "content": {"mimeType": "text/html"}}
	      }
	    ]
	  }
	}`
	parser := NewTraceParser()
	result := parser.Parse(context.Background(), har)

	if len(result.ParseErrors) != 0 {
		t.Fatalf("unexpected parse errors: %+v", result.ParseErrors)
	}
	if len(result.Actions) != 1 {
		t.Fatalf("expected 1 action, got %d: %+v", len(result.Actions), result.Actions)
	}
	action := result.Actions[0]
	if action.Type != ActionGoto || action.URL != "https://shop.com/" {
		t.Fatalf("unexpected action %+v", action)
	}
	if action.LineNumber != 1 {
		t.Fatalf("line = %d, want 1", action.LineNumber)
	}
	if result.Metadata.StartURL != "https://shop.com/" {
		t.Fatalf("startUrl = %q", result.Metadata.StartURL)
	}
}

func TestTraceParserFormSubmission(t *testing.T) {
	har := `{
	  "log": {
	    "entries": [
	      {
	        "request": {"method": "GET", "url": "https://shop.com/login", "headers": []},
	        "response": {"status": 200, "content": {"mimeType": "text/html; charset=utf-8"}}
	      },
	      {
	        "request": {
	          "method": "POST",
	          "url": "https://shop.com/session",
	          "headers": [],
	          "postData": {
	            "mimeType": "application/x-www-form-urlencoded",
	            "params": [{"name": "email", "value": "a@b.com"}]
	          }
	        },
	        "response": {"status": 302, "content": {"mimeType": "text/plain"}}
	      }
	    ]
	  }
	}`
	parser := NewTraceParser()
	result := parser.Parse(context.Background(), har)

	if len(result.Actions) != 3 {
		t.Fatalf("expected 3 actions, got %d: %+v", len(result.Actions), result.Actions)
	}

	fill := result.Actions[1]
	if fill.Type != ActionFill || fill.LocatorType != LocatorLabel || fill.LocatorValue != "email" || fill.Value != "a@b.com" {
		t.Fatalf("fill = %+v", fill)
	}

	// The submit click was never observed, only the POST; it must be
	// flagged as synthesized.
	click := result.Actions[2]
	if click.Type != ActionClick || click.LocatorType != LocatorRole || click.LocatorValue != "button" || click.ElementName != "Submit" {
		t.Fatalf("click = %+v", click)
	}
	if !click.Synthesized {
		t.Fatalf("submit click must carry the synthesized flag")
	}
	if !result.Metadata.HasFormSubmissions {
		t.Fatalf("expected hasFormSubmissions")
	}

	for i, action := range result.Actions {
		if action.LineNumber != i+1 {
			t.Fatalf("action %d line = %d", i, action.LineNumber)
		}
	}
}

func TestTraceParserJSONBodyFieldsSorted(t *testing.T) {
	har := `{
	  "log": {
	    "entries": [
	      {
	        "request": {
	          "method": "POST",
	          "url": "https://api.shop.com/signup",
	          "headers": [],
	          "postData": {
	            "mimeType": "application/json",
	            "text": "{\"name\":\"Ada\",\"age\":36,\"admin\":false}"
	          }
	        },
	        "response": {"status": 201, "content": {"mimeType": "application/json"}}
	      }
	    ]
	  }
	}`
	parser := NewTraceParser()
	result := parser.Parse(context.Background(), har)

	// Two fills (keys sorted: admin, age, name) plus the synthesized click.
	if len(result.Actions) != 4 {
		t.Fatalf("expected 4 actions, got %d: %+v", len(result.Actions), result.Actions)
	}
	wantFields := []struct{ name, value string }{
		{"admin", "false"},
		{"age", "36"},
		{"name", "Ada"},
	}
	for i, want := range wantFields {
		action := result.Actions[i]
		if action.Type != ActionFill || action.LocatorValue != want.name || action.Value != want.value {
			t.Fatalf("fill %d = %+v, want %s=%s", i, action, want.name, want.value)
		}
	}
	if !result.Metadata.HasAjaxCalls {
		t.Fatalf("expected hasAjaxCalls for a JSON response")
	}
}

func TestTraceParserAdjacentDedupAndLinkClicks(t *testing.T) {
	har := `{
	  "log": {
	    "entries": [
	      {
	        "request": {"method": "GET", "url": "https://shop.com/", "headers": []},
	        "response": {"status": 200, "content": {"mimeType": "text/html"}}
	      },
	      {
	        "request": {"method": "GET", "url": "https://shop.com/products/running-shoes", "headers": []},
	        "response": {"status": 200, "content": {"mimeType": "text/html"}}
	      },
	      {
	        "request": {"method": "GET", "url": "https://shop.com/products/running-shoes", "headers": []},
	        "response": {"status": 200, "content": {"mimeType": "text/html"}}
	      }
	    ]
	  }
	}`
	parser := NewTraceParser()
	result := parser.Parse(context.Background(), har)

	var gotos, clicks []Action
	for _, action := range result.Actions {
		switch action.Type {
		case ActionGoto:
			gotos = append(gotos, action)
		case ActionClick:
			clicks = append(clicks, action)
		}
	}
	if len(gotos) != 2 {
		t.Fatalf("expected 2 navigations, got %+v", gotos)
	}
	if result.Actions[0].Type != ActionGoto || result.Actions[0].URL != "https://shop.com/" {
		t.Fatalf("first action must be the first navigation, got %+v", result.Actions[0])
	}
	if len(clicks) != 1 {
		t.Fatalf("expected 1 link click, got %+v", clicks)
	}
	if clicks[0].LocatorType != LocatorText || clicks[0].LocatorValue != "Running shoes" {
		t.Fatalf("link click locator = %s:%s", clicks[0].LocatorType, clicks[0].LocatorValue)
	}
}

func TestTraceParserAjaxHeaderFlag(t *testing.T) {
	har := `{
	  "log": {
	    "entries": [
	      {
	        "request": {
	          "method": "GET",
	          "url": "https://shop.com/api/cart",
	          "headers": [{"name": "X-Requested-With", "value": "XMLHttpRequest"}]
	        },
	        "response": {"status": 200, "content": {"mimeType": "text/plain"}}
	      }
	    ]
	  }
	}`
	parser := NewTraceParser()
	result := parser.Parse(context.Background(), har)

	if len(result.Actions) != 0 {
		t.Fatalf("ajax calls must not generate actions, got %+v", result.Actions)
	}
	if !result.Metadata.HasAjaxCalls {
		t.Fatalf("expected hasAjaxCalls")
	}
}

func TestTraceParserNeverEscapesErrors(t *testing.T) {
	parser := NewTraceParser()

	cases := []struct {
		name    string
		content string
	}{
		{"malformed json", "{not har"},
		{"missing entries", `{"log":{"version":"1.2"}}`},
		{"entries wrong type", `{"log":{"entries":"nope"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := parser.Parse(context.Background(), tc.content)
			if len(result.Actions) != 0 {
				t.Fatalf("expected no actions, got %+v", result.Actions)
			}
			if len(result.ParseErrors) != 1 {
				t.Fatalf("expected exactly one parse error, got %+v", result.ParseErrors)
			}
			if result.ParseErrors[0].Reason == "" {
				t.Fatalf("parse error needs a reason")
			}
		})
	}
}

func TestLinkTextDerivation(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://shop.com/products/running-shoes", "Running shoes"},
		{"https://shop.com/about_us/", "About us"},
		{"https://shop.com/", "Link"},
	}
	for _, tc := range cases {
		if got := linkText(tc.url); got != tc.want {
			t.Fatalf("linkText(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestTraceParserRawLines(t *testing.T) {
	har := `{"log":{"entries":[{"request":{"method":"GET","url":"https://x.com/","headers":[]},"response":{"status":200,"content":{"mimeType":"text/html"}}}]}}`
	result := NewTraceParser().Parse(context.Background(), har)
	if len(result.Actions) != 1 {
		t.Fatalf("expected 1 action")
	}
	if !strings.HasPrefix(result.Actions[0].RawLine, "GET ") {
		t.Fatalf("rawLine = %q", result.Actions[0].RawLine)
	}
}
