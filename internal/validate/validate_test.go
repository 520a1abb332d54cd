package validate

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/JonMunkholm/tabkit/internal/errs"
)

func TestValue(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		opts    []Option
		wantErr error
		wantMsg string
	}{
		{
			name:  "matching type",
			value: "abc",
			opts:  []Option{Types(String)},
		},
		{
			name:    "wrong type lists allowed kinds",
			value:   3,
			opts:    []Option{Types(String, List)},
			wantErr: errs.ErrType,
			wantMsg: `"value" must be a <string> or <list>, got: <int>.`,
		},
		{
			name:  "nil with none ok skips checks",
			value: nil,
			opts:  []Option{Types(String), NoneOK(), NotEmpty()},
		},
		{
			name:    "nil without none ok fails type check",
			value:   nil,
			opts:    []Option{Types(String)},
			wantErr: errs.ErrType,
		},
		{
			name:    "blacklisted",
			value:   "index",
			opts:    []Option{Blacklist("index", "level_0")},
			wantErr: errs.ErrValue,
			wantMsg: "cannot be in",
		},
		{
			name:  "whitelisted",
			value: "both",
			opts:  []Option{Whitelist("both", "leading", "trailing")},
		},
		{
			name:    "not in whitelist",
			value:   "middle",
			opts:    []Option{Whitelist("both", "leading", "trailing")},
			wantErr: errs.ErrValue,
			wantMsg: "must be in",
		},
		{
			name:  "mixed whitelist ignores other types",
			value: 5,
			opts:  []Option{Whitelist("auto"), Min(0, true)},
		},
		{
			name:  "whitelist match ends validation early",
			value: "",
			opts:  []Option{Whitelist(""), NotEmpty()},
		},
		{
			name:    "empty string",
			value:   "",
			opts:    []Option{NotEmpty()},
			wantErr: errs.ErrValue,
			wantMsg: "cannot be empty",
		},
		{
			name:    "empty list",
			value:   []string{},
			opts:    []Option{NotEmpty()},
			wantErr: errs.ErrValue,
		},
		{
			name:    "not finite",
			value:   math.Inf(1),
			opts:    []Option{Finite()},
			wantErr: errs.ErrType,
			wantMsg: "must be finite",
		},
		{
			name:    "nan not finite",
			value:   math.NaN(),
			opts:    []Option{Finite()},
			wantErr: errs.ErrType,
		},
		{
			name:  "inclusive lower bound equal",
			value: 0,
			opts:  []Option{Min(0, true)},
		},
		{
			name:    "exclusive lower bound equal",
			value:   0,
			opts:    []Option{Min(0, false)},
			wantErr: errs.ErrValue,
			wantMsg: "must be > 0",
		},
		{
			name:    "inclusive lower bound below",
			value:   -1,
			opts:    []Option{Min(0, true)},
			wantErr: errs.ErrValue,
			wantMsg: "must be ≥ 0",
		},
		{
			name:    "inclusive upper bound above",
			value:   3.5,
			opts:    []Option{Max(2, true)},
			wantErr: errs.ErrValue,
			wantMsg: "must be ≤ 2",
		},
		{
			name:    "exclusive upper bound equal",
			value:   2,
			opts:    []Option{Max(2, false)},
			wantErr: errs.ErrValue,
			wantMsg: "must be < 2",
		},
		{
			name:    "bounds on non-numeric",
			value:   "x",
			opts:    []Option{Max(2, false)},
			wantErr: errs.ErrType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Value(tt.value, "", tt.opts...)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Value() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Value() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Value() error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValue_UsesName(t *testing.T) {
	err := Value(1, "which", Types(String))
	if err == nil || !strings.Contains(err.Error(), `"which"`) {
		t.Errorf("Value() error = %v, want it to name %q", err, "which")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		value any
		want  Kind
	}{
		{"s", String},
		{int64(1), Int},
		{uint8(1), Int},
		{1.5, Float},
		{true, Bool},
		{[]any{1}, List},
		{[2]int{}, List},
		{map[string]any{}, Map},
		{nil, 0},
		{struct{}{}, 0},
	}
	for _, tt := range tests {
		if got := KindOf(tt.value); got != tt.want {
			t.Errorf("KindOf(%#v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestStrings(t *testing.T) {
	got, err := Strings([]any{"a", "b"}, "column")
	if err != nil {
		t.Fatalf("Strings() error = %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Strings() = %v, want [a b]", got)
	}

	if _, err := Strings([]any{"a", 1}, "column"); !errors.Is(err, errs.ErrType) {
		t.Errorf("Strings() error = %v, want ErrType", err)
	}
	if _, err := Strings([]string{"a", ""}, "column"); !errors.Is(err, errs.ErrValue) {
		t.Errorf("Strings() error = %v, want ErrValue", err)
	}
	if _, err := Strings(7, "column"); !errors.Is(err, errs.ErrType) {
		t.Errorf("Strings() error = %v, want ErrType", err)
	}
}
