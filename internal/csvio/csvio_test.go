package csvio

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
)

func TestBOMSkipper(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"file with BOM", append([]byte{0xEF, 0xBB, 0xBF}, "a,b"...), "a,b"},
		{"file without BOM", []byte("a,b"), "a,b"},
		{"empty file", []byte{}, ""},
		{"only BOM", []byte{0xEF, 0xBB, 0xBF}, ""},
		{"partial BOM", []byte{0xEF, 0xBB, 'x'}, string([]byte{0xEF, 0xBB, 'x'})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(bomSkipper(bytes.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestSanitizer(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"ascii", []byte("plain,text"), "plain,text"},
		{"valid multibyte", []byte("café,€"), "café,€"},
		{"invalid byte", []byte{'a', 0xFF, 'b'}, "a?b"},
		{"truncated rune at EOF", []byte{'a', 0xE2, 0x82}, "a??"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(newSanitizer(bytes.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

// oneByteReader hands out a single byte per call so runes split across
// reads.
type oneByteReader struct{ data []byte }

func (r *oneByteReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	p[0] = r.data[0]
	r.data = r.data[1:]
	return 1, nil
}

func TestSanitizer_SplitRunes(t *testing.T) {
	input := []byte("€uro→")
	got, err := io.ReadAll(newSanitizer(&oneByteReader{data: input}))
	require.NoError(t, err)
	assert.Equal(t, "€uro→", string(got))
}

func TestRead(t *testing.T) {
	input := "\xEF\xBB\xBF id ,=\"code\",amount\n1,A,10\n\n2,,\n3,C\n"

	f, err := Read(strings.NewReader(input), ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, frame.Labels("id", "code", "amount"), f.Columns())
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, []any{"2", nil, nil}, f.Row(1))
	assert.Equal(t, []any{"3", "C", nil}, f.Row(2))
}

func TestRead_Index(t *testing.T) {
	f, err := Read(strings.NewReader("k,v\na,1\nb,2\n"), ReadOptions{Index: []string{"k"}})
	require.NoError(t, err)
	assert.Equal(t, []frame.Label{"k"}, f.Index().Names())
	assert.Equal(t, []any{"a", "b"}, f.Index().Level(0))
	assert.Equal(t, frame.Labels("v"), f.Columns())

	_, err = Read(strings.NewReader("k,v\na,1\n"), ReadOptions{Index: []string{"missing"}})
	require.Error(t, err)
}

func TestRead_Limits(t *testing.T) {
	_, err := Read(strings.NewReader("a\n1\n2\n3\n"), ReadOptions{MaxRows: 2})
	require.True(t, errors.Is(err, errs.ErrValue))

	_, err = Read(strings.NewReader("a\n"+strings.Repeat("1\n", 100)), ReadOptions{MaxBytes: 16})
	require.True(t, errors.Is(err, errs.ErrValue))

	_, err = Read(strings.NewReader("a\n1,2\n"), ReadOptions{})
	require.True(t, errors.Is(err, errs.ErrShape))
}

func TestRead_Empty(t *testing.T) {
	f, err := Read(strings.NewReader(""), ReadOptions{})
	require.NoError(t, err)
	assert.True(t, f.Empty())

	f, err = Read(strings.NewReader("a;b\n"), ReadOptions{Comma: ';'})
	require.NoError(t, err)
	assert.Equal(t, frame.Labels("a", "b"), f.Columns())
	assert.Equal(t, 0, f.Len())
}

func TestWrite(t *testing.T) {
	f := frame.MustFromRows(frame.Labels("name", "amount", "when"),
		[][]any{
			{"a,b", 1.5, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
			{nil, 2, nil},
		}, nil)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f, WriteOptions{}))
	assert.Equal(t, "name,amount,when\n\"a,b\",1.5,2024-01-02\n,2,\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, f, WriteOptions{Index: true}))
	assert.True(t, strings.HasPrefix(buf.String(), "index,name,amount,when\n0,"))

	indexed, err := f.SetIndex("name")
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, Write(&buf, indexed, WriteOptions{}))
	assert.True(t, strings.HasPrefix(buf.String(), "name,amount,when\n"))
}

func TestFileRoundTrip(t *testing.T) {
	f := frame.MustFromRows(frame.Labels("k", "v"), [][]any{{"a", "1"}, {"b", nil}}, nil)
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, WriteFile(path, f, WriteOptions{}))
	got, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	assert.True(t, f.Equal(got))

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"), ReadOptions{})
	require.Error(t, err)
}
