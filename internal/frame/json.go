package frame

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/JonMunkholm/tabkit/internal/errs"
)

type indexJSON struct {
	Names  []any   `json:"names"`
	Levels [][]any `json:"levels"`
}

// frameJSON is the wire form of a table: row-major data plus an optional
// index (a range index when omitted).
type frameJSON struct {
	Columns []any      `json:"columns"`
	Index   *indexJSON `json:"index,omitempty"`
	Data    [][]any    `json:"data"`
}

type seriesJSON struct {
	Name  any        `json:"name"`
	Index *indexJSON `json:"index,omitempty"`
	Data  []any      `json:"data"`
}

func (ix Index) toJSON() *indexJSON {
	if ix.IsRange() && ix.names[0] == nil {
		return nil
	}
	out := &indexJSON{Names: ix.Names(), Levels: make([][]any, len(ix.levels))}
	for l := range ix.levels {
		out.Levels[l] = jsonCells(ix.levels[l])
	}
	return out
}

func (j *indexJSON) toIndex(n int) (*Index, error) {
	if j == nil {
		ix := RangeIndex(n)
		return &ix, nil
	}
	names := make([]Label, len(j.Names))
	for i, name := range j.Names {
		names[i] = fromJSON(name)
	}
	levels := make([][]any, len(j.Levels))
	for l, lvl := range j.Levels {
		levels[l] = fromJSONAll(lvl)
	}
	ix, err := NewIndex(names, levels...)
	if err != nil {
		return nil, err
	}
	return &ix, nil
}

// MarshalJSON encodes the table. NaN and infinite floats encode as null.
func (f *Frame) MarshalJSON() ([]byte, error) {
	rows := make([][]any, f.Len())
	for r := range rows {
		rows[r] = jsonCells(f.Row(r))
	}
	return json.Marshal(frameJSON{Columns: f.Columns(), Index: f.index.toJSON(), Data: rows})
}

// UnmarshalJSON decodes a table. Integral JSON numbers decode to int, other
// numbers to float64.
func (f *Frame) UnmarshalJSON(b []byte) error {
	var raw frameJSON
	if err := decodeNumbers(b, &raw); err != nil {
		return err
	}
	columns := make([]Label, len(raw.Columns))
	for i, c := range raw.Columns {
		columns[i] = fromJSON(c)
	}
	rows := make([][]any, len(raw.Data))
	for i, row := range raw.Data {
		rows[i] = fromJSONAll(row)
	}
	index, err := raw.Index.toIndex(len(rows))
	if err != nil {
		return err
	}
	out, err := FromRows(columns, rows, index)
	if err != nil {
		return err
	}
	*f = *out
	return nil
}

// MarshalJSON encodes the series.
func (s *Series) MarshalJSON() ([]byte, error) {
	return json.Marshal(seriesJSON{Name: s.name, Index: s.index.toJSON(), Data: jsonCells(s.values)})
}

// UnmarshalJSON decodes a series.
func (s *Series) UnmarshalJSON(b []byte) error {
	var raw seriesJSON
	if err := decodeNumbers(b, &raw); err != nil {
		return err
	}
	index, err := raw.Index.toIndex(len(raw.Data))
	if err != nil {
		return err
	}
	out, err := NewSeries(fromJSON(raw.Name), fromJSONAll(raw.Data), index)
	if err != nil {
		return err
	}
	*s = *out
	return nil
}

// DecodeValue decodes arbitrary JSON into plain Go values, with numbers
// converted as in UnmarshalJSON.
func DecodeValue(b []byte) (any, error) {
	var v any
	if err := decodeNumbers(b, &v); err != nil {
		return nil, err
	}
	return fromJSON(v), nil
}

// FromJSONValue converts a value decoded with json.Decoder.UseNumber.
func FromJSONValue(v any) any { return fromJSON(v) }

func decodeNumbers(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return errs.Typef("invalid JSON: %v", err)
	}
	return nil
}

func fromJSON(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := strconv.Atoi(string(x)); err == nil {
			return n
		}
		f, err := x.Float64()
		if err != nil {
			return string(x)
		}
		return f
	case []any:
		return fromJSONAll(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = fromJSON(e)
		}
		return out
	default:
		return v
	}
}

func fromJSONAll(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = fromJSON(v)
	}
	return out
}

func jsonCells(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			continue
		}
		out[i] = v
	}
	return out
}
