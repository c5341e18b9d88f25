// File path: internal/api/parse_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/recbridge/recbridge/internal/catalog"
	"github.com/recbridge/recbridge/internal/common"
	"github.com/recbridge/recbridge/internal/recording"
)

type parseRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Format  string `json:"format"`
	Persist bool   `json:"persist"`
}

type parseResponse struct {
	ID     int64                           `json:"id,omitempty"`
	Name   string                          `json:"name,omitempty"`
	Result *recording.UniversalParseResult `json:"result"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	ctx := r.Context()

	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode parse request: %w", err))
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
	logger.Info("api: parse requested", "name", req.Name, "format", result.Format, "actions", len(result.Actions))

	resp := parseResponse{Name: req.Name, Result: result}
	if req.Persist {
		if s.store == nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("catalog persistence is not enabled"))
			return
		}
		id, err := s.store.SaveRecording(ctx, req.Name, req.Content, result)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Errorf("persist recording: %w", err))
			return
		}
		resp.ID = id
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRecordings(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("catalog persistence is not enabled"))
		return
	}
	summaries, err := s.store.ListRecordings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recordings": summaries})
}

func (s *Server) handleGetRecording(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("catalog persistence is not enabled"))
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid recording id"))
		return
	}
	rec, err := s.store.GetRecording(r.Context(), id)
	if err != nil {
		if err == catalog.ErrNotFound {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": common.LogEntries()})
}
