package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/JonMunkholm/tabkit/internal/core"
	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
)

// sourceRef names a database table to load instead of inline data.
type sourceRef struct {
	Table string   `json:"table"`
	Index []string `json:"index,omitempty"`
}

// tableInput is one table in a request body. It is either an inline table
// ({"columns": [...], "data": [[...]], "index": {...}}), an inline sequence
// ({"name": ..., "data": [...]}) or a database reference
// ({"source": {"table": "schema.name", "index": [...]}}).
type tableInput struct {
	frame  *frame.Frame
	series *frame.Series
	source *sourceRef
}

func (in *tableInput) UnmarshalJSON(b []byte) error {
	var probe struct {
		Source  *sourceRef      `json:"source"`
		Columns json.RawMessage `json:"columns"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	switch {
	case probe.Source != nil:
		in.source = probe.Source
		return nil
	case probe.Columns != nil:
		in.frame = new(frame.Frame)
		return in.frame.UnmarshalJSON(b)
	case probe.Data != nil:
		in.series = new(frame.Series)
		return in.series.UnmarshalJSON(b)
	}
	return errs.Typef(`a table needs "columns" and "data", a sequence needs "data", a database table needs "source"`)
}

// resolve returns the table, loading database references through the
// service.
func (s *Server) resolve(ctx context.Context, in *tableInput) (frame.Tabular, error) {
	switch {
	case in == nil:
		return nil, fmt.Errorf("%w: missing table", core.ErrBadRequest)
	case in.frame != nil:
		return in.frame, nil
	case in.series != nil:
		return in.series, nil
	}
	res, err := s.service.LoadTable(ctx, in.source.Table, in.source.Index...)
	if err != nil {
		return nil, err
	}
	return res.Frame, nil
}

func (s *Server) resolveAll(ctx context.Context, ins []*tableInput) ([]frame.Tabular, error) {
	out := make([]frame.Tabular, len(ins))
	for i, in := range ins {
		t, err := s.resolve(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("table %d: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}

// decodeJSON reads a size-limited JSON body into v. Failures are wrapped in
// core.ErrBadRequest.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Limits.MaxRequestBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", core.ErrBadRequest, err)
	}
	return nil
}

// decodeValue converts raw JSON into plain values with integral numbers as
// int. An absent value decodes to nil.
func decodeValue(raw json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	v, err := frame.DecodeValue(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrBadRequest, err)
	}
	return v, nil
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// resultResponse is the body of a successful operation.
type resultResponse struct {
	OpID   string `json:"op_id"`
	Dim    int    `json:"dim"`
	Result any    `json:"result"`
}

func newResultResponse(res core.Result) resultResponse {
	out := resultResponse{OpID: res.OpID, Dim: res.Dim}
	switch {
	case res.Frame != nil:
		out.Result = res.Frame
	case res.Series != nil:
		out.Result = res.Series
	default:
		out.Result = jsonScalar(res.Scalar)
	}
	return out
}

// jsonScalar maps values JSON cannot carry to null.
func jsonScalar(v any) any {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v
}
