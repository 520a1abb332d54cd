package frame

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Label names a column or an index level. nil means unnamed; otherwise a
// Label is a string or an int (positional labels).
type Label = any

// Labels converts strings to labels.
func Labels(names ...string) []Label {
	out := make([]Label, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

// LabelsEqual reports whether a and b hold the same labels in the same order.
func LabelsEqual(a, b []Label) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// FormatLabel renders a label for messages and tables.
func FormatLabel(l Label) string {
	if l == nil {
		return "None"
	}
	return fmt.Sprint(l)
}

// Normalize maps a cell value to its canonical representation: integer
// kinds become int and float32 becomes float64. Other values are returned
// unchanged.
func Normalize(v any) any {
	switch x := v.(type) {
	case int8:
		return int(x)
	case int16:
		return int(x)
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint8:
		return int(x)
	case uint16:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}

func normalizeAll(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = Normalize(v)
	}
	return out
}

// IsNull reports whether v is a null cell: nil or a NaN float.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	default:
		return false
	}
}

// Equal reports whether two cells hold the same value. Nulls are equal to
// each other.
func Equal(a, b any) bool {
	an, bn := IsNull(a), IsNull(b)
	if an || bn {
		return an && bn
	}
	a, b = Normalize(a), Normalize(b)
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	if rank(a) == 1 && rank(b) == 1 {
		return toFloat(a) == toFloat(b)
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if !ta.Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

func rowsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Compare orders two non-null cells. Values of different classes order by
// class (bool < number < string < time < other).
func Compare(a, b any) int {
	a, b = Normalize(a), Normalize(b)
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}
	switch x := a.(type) {
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case int, float64:
		fx, fy := toFloat(x), toFloat(b)
		switch {
		case fx < fy:
			return -1
		case fx > fy:
			return 1
		default:
			return 0
		}
	case string:
		y := b.(string)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case time.Time:
		return x.Compare(b.(time.Time))
	default:
		sa, sb := fmt.Sprint(a), fmt.Sprint(b)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		default:
			return 0
		}
	}
}

func compareRows(a, b []any) int {
	for i := range a {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case bool:
		return 0
	case int, float64:
		return 1
	case string:
		return 2
	case time.Time:
		return 3
	default:
		return 4
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case float64:
		return x
	default:
		return math.NaN()
	}
}

// hasher hashes row tuples with xxhash. Integral floats hash like ints so
// that Equal values always share a bucket.
type hasher struct {
	d   *xxhash.Digest
	buf [9]byte
}

func newHasher() *hasher {
	return &hasher{d: xxhash.New()}
}

func (h *hasher) sum(row []any) uint64 {
	h.d.Reset()
	for _, v := range row {
		h.write(v)
	}
	return h.d.Sum64()
}

func (h *hasher) tagged(tag byte, bits uint64) {
	h.buf[0] = tag
	binary.LittleEndian.PutUint64(h.buf[1:], bits)
	_, _ = h.d.Write(h.buf[:])
}

func (h *hasher) write(v any) {
	if IsNull(v) {
		h.tagged(0, 0)
		return
	}
	switch x := Normalize(v).(type) {
	case bool:
		var b uint64
		if x {
			b = 1
		}
		h.tagged(1, b)
	case int:
		h.tagged(2, uint64(x))
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<62 {
			h.tagged(2, uint64(int(x)))
			return
		}
		h.tagged(3, math.Float64bits(x))
	case string:
		h.tagged(4, uint64(len(x)))
		_, _ = h.d.WriteString(x)
	case time.Time:
		h.tagged(5, uint64(x.UnixNano()))
	default:
		s := fmt.Sprintf("%T:%v", x, x)
		h.tagged(6, uint64(len(s)))
		_, _ = h.d.WriteString(s)
	}
}

// keyTable assigns a dense group id to each distinct row tuple, in order of
// first appearance.
type keyTable struct {
	h       *hasher
	buckets map[uint64][]int
	reps    [][]any
}

func newKeyTable() *keyTable {
	return &keyTable{h: newHasher(), buckets: make(map[uint64][]int)}
}

// lookup returns the group id of key.
func (t *keyTable) lookup(key []any) (int, bool) {
	for _, id := range t.buckets[t.h.sum(key)] {
		if rowsEqual(t.reps[id], key) {
			return id, true
		}
	}
	return -1, false
}

// insert returns the group id of key, creating a group when key is new.
func (t *keyTable) insert(key []any) (int, bool) {
	sum := t.h.sum(key)
	for _, id := range t.buckets[sum] {
		if rowsEqual(t.reps[id], key) {
			return id, false
		}
	}
	id := len(t.reps)
	t.reps = append(t.reps, key)
	t.buckets[sum] = append(t.buckets[sum], id)
	return id, true
}

func (t *keyTable) len() int { return len(t.reps) }
