package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/tabkit/internal/clean"
	"github.com/JonMunkholm/tabkit/internal/core"
	"github.com/JonMunkholm/tabkit/internal/dupes"
	"github.com/JonMunkholm/tabkit/internal/frame"
)

type verifyRequest struct {
	Table        *tableInput     `json:"table"`
	Label        string          `json:"label"`
	ColumnNames  *bool           `json:"column_names"`
	ColumnValues json.RawMessage `json:"column_values"`
	IndexNames   *bool           `json:"index_names"`
	IndexValues  bool            `json:"index_values"`
	IncludeIndex bool            `json:"include_index"`
	DropNA       bool            `json:"drop_na"`
	MaxShown     int             `json:"max_shown"`
}

func (req verifyRequest) options() ([]dupes.Option, error) {
	var opts []dupes.Option
	if req.Label != "" {
		opts = append(opts, dupes.WithLabel(req.Label))
	}
	if req.ColumnNames != nil && !*req.ColumnNames {
		opts = append(opts, dupes.SkipColumnNames())
	}
	if req.IndexNames != nil && !*req.IndexNames {
		opts = append(opts, dupes.SkipIndexNames())
	}
	values, err := decodeValue(req.ColumnValues)
	if err != nil {
		return nil, err
	}
	if values != nil {
		opts = append(opts, dupes.ColumnValues(values))
	}
	if req.IndexValues {
		opts = append(opts, dupes.CheckIndexValues())
	}
	if req.IncludeIndex {
		opts = append(opts, dupes.IncludeIndex())
	}
	if req.DropNA {
		opts = append(opts, dupes.DropNA())
	}
	if req.MaxShown > 0 {
		opts = append(opts, dupes.MaxShown(req.MaxShown))
	}
	return opts, nil
}

// handleVerifyUnique reports duplicates as a DUP001 error, or
// {"unique": true}.
func (s *Server) handleVerifyUnique(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	opts, err := req.options()
	if err != nil {
		respondError(w, r, err)
		return
	}
	obj, err := s.resolve(r.Context(), req.Table)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.VerifyUnique(r.Context(), obj, opts...)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"op_id":  res.OpID,
		"unique": true,
	})
}

type dropDuplicatesRequest struct {
	Table        *tableInput `json:"table"`
	Subset       []string    `json:"subset"`
	Keep         string      `json:"keep"`
	IncludeIndex bool        `json:"include_index"`
	IgnoreIndex  bool        `json:"ignore_index"`
	InPlace      bool        `json:"inplace"`
}

// handleDropDuplicates removes repeated rows.
func (s *Server) handleDropDuplicates(w http.ResponseWriter, r *http.Request) {
	var req dropDuplicatesRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	var opts []dupes.Option
	if req.Keep != "" {
		keep, err := frame.ParseKeep(req.Keep)
		if err != nil {
			respondError(w, r, err)
			return
		}
		opts = append(opts, dupes.Keep(keep))
	}
	if len(req.Subset) > 0 {
		opts = append(opts, dupes.Subset(frame.Labels(req.Subset...)...))
	}
	if req.IncludeIndex {
		opts = append(opts, dupes.IncludeIndex())
	}
	if req.IgnoreIndex {
		opts = append(opts, dupes.IgnoreIndex())
	}
	if req.InPlace {
		opts = append(opts, dupes.InPlace())
	}

	obj, err := s.resolve(r.Context(), req.Table)
	if err != nil {
		respondError(w, r, err)
		return
	}
	res, err := s.service.DropDuplicates(r.Context(), obj, opts...)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, newResultResponse(res))
}

type trimRequest struct {
	// Series is an inline or stored sequence; Values is a plain list.
	// Exactly one is given.
	Series    *tableInput     `json:"series"`
	Values    json.RawMessage `json:"values"`
	Which     string          `json:"which"`
	InfAsNA   bool            `json:"inf_as_na"`
	RaiseOnNA bool            `json:"raise_on_na"`
}

// handleTrimNA trims leading and trailing nulls from a sequence.
func (s *Server) handleTrimNA(w http.ResponseWriter, r *http.Request) {
	var req trimRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	var data any
	switch {
	case req.Series != nil && req.Values != nil:
		respondError(w, r, fmt.Errorf(`%w: give either "series" or "values"`, core.ErrBadRequest))
		return
	case req.Series != nil:
		obj, err := s.resolve(r.Context(), req.Series)
		if err != nil {
			respondError(w, r, err)
			return
		}
		data = obj
	default:
		v, err := decodeValue(req.Values)
		if err != nil {
			respondError(w, r, err)
			return
		}
		data = v
	}

	res, err := s.service.TrimNA(r.Context(), data, clean.TrimOptions{
		Which:     clean.Which(req.Which),
		InfAsNA:   req.InfAsNA,
		RaiseOnNA: req.RaiseOnNA,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, newResultResponse(res))
}

type tableRequest struct {
	Table     *tableInput `json:"table"`
	Transform string      `json:"transform,omitempty"`
}

// handleInferTypes converts text columns to numbers and times.
func (s *Server) handleInferTypes(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	obj, err := s.resolve(r.Context(), req.Table)
	if err != nil {
		respondError(w, r, err)
		return
	}
	res, err := s.service.InferTypes(r.Context(), obj)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, newResultResponse(res))
}

// handleRenameColumns applies "lower", "upper" or "title" to the column
// labels.
func (s *Server) handleRenameColumns(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	obj, err := s.resolve(r.Context(), req.Table)
	if err != nil {
		respondError(w, r, err)
		return
	}
	res, err := s.service.RenameColumns(r.Context(), obj.ToFrame(), req.Transform)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, newResultResponse(res))
}

type coerceRequest struct {
	Data json.RawMessage `json:"data"`
	Dim  int             `json:"dim"`
}

// handleCoerce reshapes arbitrary JSON data to a scalar, sequence or table.
func (s *Server) handleCoerce(w http.ResponseWriter, r *http.Request) {
	var req coerceRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	data, err := decodeValue(req.Data)
	if err != nil {
		respondError(w, r, err)
		return
	}
	res, err := s.service.Coerce(r.Context(), data, req.Dim)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, newResultResponse(res))
}
