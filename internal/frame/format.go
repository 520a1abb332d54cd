package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// FormatCell renders a cell for text output.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case float64:
		switch {
		case math.IsNaN(x):
			return "NaN"
		case math.IsInf(x, 1):
			return "inf"
		case math.IsInf(x, -1):
			return "-inf"
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.DateTime)
	default:
		return fmt.Sprint(x)
	}
}

// String renders the table as right-aligned text: a header of column labels
// (plus a second header line of index names when the index is named)
// followed by one line per row, index labels first.
func (f *Frame) String() string {
	nl := f.index.NLevels()
	named := false
	for _, n := range f.index.names {
		if n != nil {
			named = true
		}
	}

	var lines [][]string
	header := make([]string, nl, nl+len(f.columns))
	for _, c := range f.columns {
		header = append(header, FormatLabel(c))
	}
	lines = append(lines, header)
	if named {
		names := make([]string, nl+len(f.columns))
		for l, n := range f.index.names {
			if n != nil {
				names[l] = FormatLabel(n)
			}
		}
		lines = append(lines, names)
	}
	for r := 0; r < f.Len(); r++ {
		line := make([]string, 0, nl+len(f.columns))
		for l := 0; l < nl; l++ {
			line = append(line, FormatCell(f.index.levels[l][r]))
		}
		for _, col := range f.data {
			line = append(line, FormatCell(col[r]))
		}
		lines = append(lines, line)
	}

	widths := make([]int, nl+len(f.columns))
	for _, line := range lines {
		for i, cell := range line {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		var b strings.Builder
		for j, cell := range line {
			if j > 0 {
				b.WriteString("  ")
			}
			pad := strings.Repeat(" ", widths[j]-utf8.RuneCountInString(cell))
			if j < nl {
				b.WriteString(cell + pad)
			} else {
				b.WriteString(pad + cell)
			}
		}
		out[i] = strings.TrimRight(b.String(), " ")
	}
	return strings.Join(out, "\n")
}
