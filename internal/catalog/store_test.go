// File path: internal/catalog/store_test.go
package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/recbridge/recbridge/internal/recording"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult() *recording.UniversalParseResult {
	return &recording.UniversalParseResult{
		Format: recording.FormatJavaScript,
		Actions: []recording.Action{
			{Type: recording.ActionGoto, URL: "https://x.com", RawLine: "await page.goto('https://x.com');", LineNumber: 1},
		},
		Metadata:    recording.Metadata{StartURL: "https://x.com", TotalActions: 1},
		ParseErrors: []recording.ParseError{},
		Warnings:    []string{},
	}
}

func TestSaveAndGetRecording(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.SaveRecording(ctx, "smoke", "await page.goto('https://x.com');", sampleResult())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected non-zero id")
	}

	rec, err := store.GetRecording(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Name != "smoke" || rec.Format != recording.FormatJavaScript {
		t.Fatalf("recording = %+v", rec)
	}
	if rec.Result == nil || len(rec.Result.Actions) != 1 {
		t.Fatalf("stored result = %+v", rec.Result)
	}
	if rec.Result.Actions[0].URL != "https://x.com" {
		t.Fatalf("round-tripped action = %+v", rec.Result.Actions[0])
	}
}

func TestListRecordingsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.SaveRecording(ctx, "first", "a", sampleResult()); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if _, err := store.SaveRecording(ctx, "second", "b", sampleResult()); err != nil {
		t.Fatalf("save second: %v", err)
	}

	summaries, err := store.ListRecordings(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].Name != "second" || summaries[1].Name != "first" {
		t.Fatalf("ordering = %+v", summaries)
	}
	if summaries[0].ActionCount != 1 {
		t.Fatalf("actionCount = %d", summaries[0].ActionCount)
	}
}

func TestGetRecordingNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetRecording(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveRecordingRequiresResult(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.SaveRecording(context.Background(), "x", "y", nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
}
