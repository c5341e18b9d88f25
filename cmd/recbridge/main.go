// File path: cmd/recbridge/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/recbridge/recbridge/internal/api"
	"github.com/recbridge/recbridge/internal/catalog"
	"github.com/recbridge/recbridge/internal/common"
	"github.com/recbridge/recbridge/internal/gherkin"
	"github.com/recbridge/recbridge/internal/llm"
	"github.com/recbridge/recbridge/internal/recording"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug("recbridge: .env file not loaded", "error", err)
	} else {
		logger.Info("recbridge: environment loaded from .env")
	}

	addr := flag.String("addr", ":8082", "listen address")
	catalogPath := flag.String("catalog", defaultCatalogPath(), "path to the SQLite catalog (empty disables persistence)")
	input := flag.String("input", "", "parse a single recording file and exit")
	formatHint := flag.String("format", "", "recording format hint (python, typescript, javascript, har, json)")
	emitGherkin := flag.Bool("gherkin", false, "with -input, print a Gherkin feature instead of the parse result")
	flag.Parse()

	if strings.TrimSpace(*input) != "" {
		if err := runOnce(*input, *formatHint, *emitGherkin); err != nil {
			logger.Error("recbridge: one-shot parse failed", "input", *input, "error", err)
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("recbridge: startup initiated", "addr", *addr, "catalog", *catalogPath)

	var store *catalog.Store
	if trimmed := strings.TrimSpace(*catalogPath); trimmed != "" {
		var err error
		store, err = catalog.Open(trimmed)
		if err != nil {
			logger.Error("recbridge: catalog open failed", "path", trimmed, "error", err)
			fmt.Fprintln(os.Stderr, "catalog error:", err)
			os.Exit(1)
		}
		defer store.Close()
	} else {
		logger.Warn("recbridge: catalog disabled, recordings will not be persisted")
	}

	provider := llm.NewProvider()
	logger.Info("recbridge: llm provider ready", "provider", provider.Name())

	server := &http.Server{Addr: *addr, Handler: api.NewServer(store, provider)}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("recbridge: shutting down")
		_ = server.Shutdown(context.Background())
	}()

	logger.Info("recbridge: listening", "addr", *addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("recbridge: server failed", "error", err)
		fmt.Fprintln(os.Stderr, "server error:", err)
		os.Exit(1)
	}
}

// runOnce parses one file and writes the result to stdout. This is the
// batch-friendly entry point: each invocation is a pure function of the
// input file.
func runOnce(path, formatHint string, emitGherkin bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	normalizer := recording.NewNormalizer()
	var result *recording.UniversalParseResult
	if hint := strings.TrimSpace(formatHint); hint != "" {
		result = normalizer.ParseWithFormat(context.Background(), string(data), recording.Format(hint))
	} else {
		result = normalizer.Parse(context.Background(), string(data))
	}

	if emitGherkin {
		feature := gherkin.Render(gherkin.FromActions(path, result.Actions))
		fmt.Print(feature)
		return nil
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func defaultCatalogPath() string {
	if env := strings.TrimSpace(os.Getenv("RECBRIDGE_CATALOG")); env != "" {
		return env
	}
	return "recbridge.db"
}
