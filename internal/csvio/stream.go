package csvio

// stream.go holds the io.Reader wrappers applied to every input before it
// reaches the CSV parser:
//
//   - bomSkipper drops a leading UTF-8 BOM written by Windows tools
//   - sanitizer replaces invalid UTF-8 bytes with '?'
//   - countingReader tracks bytes read and enforces a size cap
//
// Each works in O(buffer) memory so large files are never held twice.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/JonMunkholm/tabkit/internal/errs"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// bomSkipper returns r without a leading BOM.
func bomSkipper(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(bom)); err == nil && bytes.Equal(head, bom) {
		_, _ = br.Discard(len(bom))
	}
	return br
}

// sanitizer rewrites invalid UTF-8 on the fly. A multi-byte sequence split
// across reads is held back until the next call.
type sanitizer struct {
	r       io.Reader
	pending []byte
}

func newSanitizer(r io.Reader) *sanitizer {
	return &sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}
	return s.clean(p[:n], err == io.EOF), err
}

// clean sanitizes data in place and returns the number of bytes to hand
// out. Unless atEOF, an incomplete trailing rune moves to pending.
func (s *sanitizer) clean(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		b := data[read]
		if b < utf8.RuneSelf {
			data[write] = b
			write++
			read++
			continue
		}
		if !atEOF && !utf8.FullRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}
		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			// '?' keeps the rewrite in place; U+FFFD would grow the buffer
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// countingReader counts bytes and fails once more than limit bytes have
// been read. A limit of zero disables the cap.
type countingReader struct {
	r     io.Reader
	n     int64
	limit int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.limit > 0 && c.n > c.limit {
		return n, errs.Valuef("input exceeds %d bytes", c.limit)
	}
	return n, err
}

// wrap applies the wrappers in order: the BOM goes first, then bytes are
// sanitized, and counting sees what the parser sees.
func wrap(r io.Reader, limit int64) *countingReader {
	return &countingReader{r: newSanitizer(bomSkipper(r)), limit: limit}
}
