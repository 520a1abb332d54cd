package clean

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/tabkit/internal/frame"
	"github.com/JonMunkholm/tabkit/internal/validate"
)

var transforms = map[string]func(string) string{
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
	"title": title,
}

// title builds a Caser per call; Casers are stateful.
func title(s string) string { return cases.Title(language.Und).String(s) }

// RenameColumns applies fn to every string column label. Other labels are
// left alone.
func RenameColumns(f *frame.Frame, fn func(string) string) *frame.Frame {
	return f.Rename(func(l frame.Label) frame.Label {
		if s, ok := l.(string); ok {
			return fn(s)
		}
		return l
	})
}

// RenameColumnsBy applies a named transform ("lower", "upper" or "title")
// to every string column label.
func RenameColumnsBy(f *frame.Frame, name string) (*frame.Frame, error) {
	if err := validate.Value(name, "func", validate.Whitelist("lower", "upper", "title")); err != nil {
		return nil, err
	}
	return RenameColumns(f, transforms[name]), nil
}

// IsDatelikeName reports whether a column name suggests a date, a time or
// both.
func IsDatelikeName(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "date") || strings.Contains(name, "time") || strings.HasSuffix(name, "dt")
}

// PurgeWhitespace collapses whitespace in string column labels, trims string
// cells and turns blank strings into null.
func PurgeWhitespace(f *frame.Frame) *frame.Frame {
	out := RenameColumns(f, func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	})
	for c := 0; c < out.Width(); c++ {
		out = out.MapColumn(c, func(v any) any {
			s, ok := v.(string)
			if !ok {
				return v
			}
			if s = strings.TrimSpace(s); s == "" {
				return nil
			}
			return s
		})
	}
	return out
}
