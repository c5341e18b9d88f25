// File path: internal/api/generate_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/recbridge/recbridge/internal/common"
	"github.com/recbridge/recbridge/internal/gherkin"
	"github.com/recbridge/recbridge/internal/llm"
	"github.com/recbridge/recbridge/internal/recording"
)

type generateRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Format  string `json:"format"`
	// UseAI routes the normalized actions through the configured chat
	// provider instead of the deterministic template renderer.
	UseAI bool `json:"useAi"`
}

type generateResponse struct {
	Feature string                          `json:"feature"`
	Source  string                          `json:"source"`
	Result  *recording.UniversalParseResult `json:"result"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	ctx := r.Context()

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode generate request: %w", err))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("content is required"))
		return
	}

	var result *recording.UniversalParseResult
	if hint := strings.TrimSpace(req.Format); hint != "" {
		result = s.normalizer.ParseWithFormat(ctx, req.Content, recording.Format(hint))
	} else {
		result = s.normalizer.Parse(ctx, req.Content)
	}
	if len(result.Actions) == 0 {
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("recording produced no actions (format %s)", result.Format))
		return
	}

	resp := generateResponse{Result: result, Source: "template"}
	if req.UseAI && s.provider != nil {
		feature, err := llm.ConvertToGherkin(ctx, s.provider, req.Name, result)
		if err != nil {
			// The deterministic renderer is the fallback, not a failure.
			logger.Warn("api: ai conversion failed, using template renderer", "error", err)
		} else {
			resp.Feature = feature
			resp.Source = s.provider.Name()
		}
	}
	if resp.Feature == "" {
		resp.Feature = gherkin.Render(gherkin.FromActions(req.Name, result.Actions))
	}

	logger.Info("api: generate succeeded", "name", req.Name, "source", resp.Source, "actions", len(result.Actions))
	writeJSON(w, http.StatusOK, resp)
}
