package combine

import (
	"fmt"
	"sort"

	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
	"github.com/JonMunkholm/tabkit/internal/validate"
)

// Anti keeps the left rows whose keys have no match on the right.
const Anti frame.How = "anti"

// Params configures Merge and Join. Nil key slices and nil flags mean "not
// given".
type Params struct {
	// How is left (the default), right, inner, outer or anti.
	How frame.How

	// On names key columns shared by both sides. It is mutually exclusive
	// with LeftOn and RightOn, which must be given together. Merge only.
	On      []string
	LeftOn  []string
	RightOn []string

	// LeftDupesOK and RightDupesOK allow duplicate keys on the leftmost and
	// every other input. Merge only; by default the leftmost input may
	// repeat keys and the others may not.
	LeftDupesOK  *bool
	RightDupesOK *bool

	// Indicator keeps a "_merge" column describing each row's origin.
	Indicator bool

	// LeftIndex and RightIndex are set automatically; passing either is an
	// error.
	LeftIndex  bool
	RightIndex bool

	// NoneOK lets Join inputs with an unnamed index skip the index name
	// comparison. Defaults to true. Join only.
	NoneOK *bool

	// MaxShown caps duplicate reports; zero means the package default.
	MaxShown int
}

// prepared is the normalized form of Params.
type prepared struct {
	how          frame.How
	leftOn       []frame.Label
	rightOn      []frame.Label
	leftDupesOK  bool
	rightDupesOK bool
	indicator    bool
	noneOK       bool
	maxShown     int
}

func (p prepared) keys(side string) []frame.Label {
	if side == left {
		return p.leftOn
	}
	return p.rightOn
}

func (p prepared) dupesOK(side string) bool {
	if side == left {
		return p.leftDupesOK
	}
	return p.rightDupesOK
}

const (
	left  = "left"
	right = "right"
)

func prepParams(p Params, join bool) (prepared, error) {
	out := prepared{how: p.How, indicator: p.Indicator, noneOK: true, maxShown: p.MaxShown}
	if out.how == "" {
		out.how = frame.Left
	}
	if err := validate.Value(string(out.how), "how", validate.Whitelist("left", "right", "inner", "outer", "anti")); err != nil {
		return out, err
	}

	for _, flag := range []struct {
		name string
		set  bool
	}{{"left_index", p.LeftIndex}, {"right_index", p.RightIndex}} {
		if flag.set {
			return out, errs.New(errs.ErrParam, "%q parameter is set automatically and cannot be passed by the user.", flag.name)
		}
	}

	keys := []struct {
		name string
		val  []string
	}{{"on", p.On}, {"left_on", p.LeftOn}, {"right_on", p.RightOn}}
	normalized := make([][]frame.Label, len(keys))
	for i, k := range keys {
		if k.val == nil {
			continue
		}
		if join {
			return out, errs.New(errs.ErrParam, "%q parameter cannot be passed during join operations, only during merge.", k.name)
		}
		if err := validate.Value(k.val, k.name, validate.NotEmpty()); err != nil {
			return out, err
		}
		vals, err := validate.Strings(k.val, k.name)
		if err != nil {
			return out, err
		}
		normalized[i] = dedupe(vals)
	}

	if join {
		if p.LeftDupesOK != nil || p.RightDupesOK != nil {
			key := "left_dupes_ok"
			if p.LeftDupesOK == nil {
				key = "right_dupes_ok"
			}
			return out, errs.NotImplementedf("%q parameter is not supported for join operations, only during merge.", key)
		}
		out.leftDupesOK, out.rightDupesOK = true, true
		if p.NoneOK != nil {
			out.noneOK = *p.NoneOK
		}
		return out, nil
	}

	if p.NoneOK != nil {
		return out, errs.New(errs.ErrParam, `"none_ok" parameter is only supported for join operations.`)
	}
	on, leftOn, rightOn := normalized[0], normalized[1], normalized[2]
	if on == nil {
		for i, v := range [][]frame.Label{leftOn, rightOn} {
			if v == nil {
				return out, errs.New(errs.ErrParam, "%q cannot be None if 'on' is None.", keys[i+1].name)
			}
		}
	} else {
		for i, v := range [][]frame.Label{leftOn, rightOn} {
			if v != nil {
				return out, errs.New(errs.ErrParam, "%q must be None if 'on' is not None.", keys[i+1].name)
			}
		}
		leftOn, rightOn = on, on
	}
	if len(leftOn) != len(rightOn) {
		return out, errs.New(errs.ErrParam, "'left_on' and 'right_on' must have the same length, got %d and %d.", len(leftOn), len(rightOn))
	}
	out.leftOn, out.rightOn = leftOn, rightOn

	out.leftDupesOK, out.rightDupesOK = true, false
	if p.LeftDupesOK != nil {
		out.leftDupesOK = *p.LeftDupesOK
	}
	if p.RightDupesOK != nil {
		out.rightDupesOK = *p.RightDupesOK
	}
	return out, nil
}

// dedupe drops repeated keys, keeping first occurrences in order.
func dedupe(keys []string) []frame.Label {
	seen := make(map[string]bool, len(keys))
	var out []frame.Label
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// sortedKeys returns the distinct keys in sorted order for comparisons.
func sortedKeys(keys []frame.Label) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprint(k)
	}
	sort.Strings(out)
	return out
}

func contains(sorted []string, k frame.Label) bool {
	s := fmt.Sprint(k)
	i := sort.SearchStrings(sorted, s)
	return i < len(sorted) && sorted[i] == s
}

// ConcatParams configures Concat.
type ConcatParams struct {
	// Axis 0 stacks rows (the default); axis 1 aligns on the index.
	Axis int
	// How is a synonym for Join; giving both is an error.
	How  frame.How
	Join frame.How
	// IgnoreIndex, when nil, is inferred: rows are renumbered when stacking
	// inputs whose leftmost index is unnamed.
	IgnoreIndex *bool
}
