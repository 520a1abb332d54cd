package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tabkit/internal/core"
)

// handleLoadTable returns a database table. ?index=a,b moves those columns
// into the index.
func (s *Server) handleLoadTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var index []string
	if raw := r.URL.Query().Get("index"); raw != "" {
		for _, col := range strings.Split(raw, ",") {
			if col = strings.TrimSpace(col); col != "" {
				index = append(index, col)
			}
		}
	}

	res, err := s.service.LoadTable(r.Context(), name, index...)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, newResultResponse(res))
}

type saveRequest struct {
	Table        *tableInput `json:"table"`
	IncludeIndex bool        `json:"include_index"`
	Truncate     bool        `json:"truncate"`
}

// handleSaveTable copies a table into an existing database table.
func (s *Server) handleSaveTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req saveRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Table == nil || req.Table.source != nil {
		respondError(w, r, fmt.Errorf("%w: save needs inline data", core.ErrBadRequest))
		return
	}
	obj, err := s.resolve(r.Context(), req.Table)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.SaveTable(r.Context(), name, obj.ToFrame(), req.IncludeIndex, req.Truncate)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"op_id": res.OpID,
		"rows":  res.Affected,
	})
}

type statusResponse struct {
	core.LimiterStatus
	Database bool `json:"database"`
}

// handleStatus reports operation slots and whether a database is attached.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, statusResponse{
		LimiterStatus: s.service.Status(),
		Database:      s.service.HasDatabase(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}
