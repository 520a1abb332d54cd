package interop

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
)

// WriteArrowStream writes f to w as a single-batch Arrow IPC stream.
func WriteArrowStream(w io.Writer, f *frame.Frame, includeIndex bool) error {
	mem := memory.NewGoAllocator()
	rec, err := ToArrow(f, includeIndex, mem)
	if err != nil {
		return err
	}
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err := iw.Write(rec); err != nil {
		iw.Close()
		return err
	}
	return iw.Close()
}

// ReadArrowStream reads every batch of an Arrow IPC stream and stacks them
// into one table with a fresh range index.
func ReadArrowStream(r io.Reader) (*frame.Frame, error) {
	rdr, err := ipc.NewReader(r, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, err
	}
	defer rdr.Release()

	var parts []*frame.Frame
	for rdr.Next() {
		f, err := FromArrow(rdr.Record())
		if err != nil {
			return nil, err
		}
		parts = append(parts, f)
	}
	if err := rdr.Err(); err != nil && err != io.EOF {
		return nil, err
	}

	switch len(parts) {
	case 0:
		return nil, errs.Valuef("arrow stream holds no record batches")
	case 1:
		return parts[0], nil
	}
	return frame.Concat(parts, frame.ConcatOptions{Join: frame.Outer, IgnoreIndex: true})
}
