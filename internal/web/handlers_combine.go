package web

import (
	"net/http"

	"github.com/JonMunkholm/tabkit/internal/combine"
	"github.com/JonMunkholm/tabkit/internal/frame"
)

// mergeRequest is shared by /api/merge and /api/join. Options that only
// apply to one of them are rejected by the operation itself.
type mergeRequest struct {
	Tables       []*tableInput `json:"tables"`
	How          string        `json:"how"`
	On           []string      `json:"on"`
	LeftOn       []string      `json:"left_on"`
	RightOn      []string      `json:"right_on"`
	LeftDupesOK  *bool         `json:"left_dupes_ok"`
	RightDupesOK *bool         `json:"right_dupes_ok"`
	Indicator    bool          `json:"indicator"`
	NoneOK       *bool         `json:"none_ok"`
	MaxShown     int           `json:"max_shown"`
}

func (req mergeRequest) params() combine.Params {
	return combine.Params{
		How:          frame.How(req.How),
		On:           req.On,
		LeftOn:       req.LeftOn,
		RightOn:      req.RightOn,
		LeftDupesOK:  req.LeftDupesOK,
		RightDupesOK: req.RightDupesOK,
		Indicator:    req.Indicator,
		NoneOK:       req.NoneOK,
		MaxShown:     req.MaxShown,
	}
}

// handleMerge combines tables on key columns.
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	objs, err := s.resolveAll(r.Context(), req.Tables)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.Merge(r.Context(), objs, req.params())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, newResultResponse(res))
}

// handleJoin combines tables on their indexes.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	objs, err := s.resolveAll(r.Context(), req.Tables)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.Join(r.Context(), objs, req.params())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, newResultResponse(res))
}

type concatRequest struct {
	Tables      []*tableInput `json:"tables"`
	Axis        int           `json:"axis"`
	How         string        `json:"how"`
	Join        string        `json:"join"`
	IgnoreIndex *bool         `json:"ignore_index"`
}

// handleConcat stacks tables by rows (axis 0) or aligns them by columns
// (axis 1).
func (s *Server) handleConcat(w http.ResponseWriter, r *http.Request) {
	var req concatRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	objs, err := s.resolveAll(r.Context(), req.Tables)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.Concat(r.Context(), objs, combine.ConcatParams{
		Axis:        req.Axis,
		How:         frame.How(req.How),
		Join:        frame.How(req.Join),
		IgnoreIndex: req.IgnoreIndex,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, newResultResponse(res))
}
