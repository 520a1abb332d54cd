package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/tabkit/internal/clean"
	"github.com/JonMunkholm/tabkit/internal/coerce"
	"github.com/JonMunkholm/tabkit/internal/combine"
	"github.com/JonMunkholm/tabkit/internal/config"
	"github.com/JonMunkholm/tabkit/internal/dupes"
	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
	"github.com/JonMunkholm/tabkit/internal/logging"
	"github.com/JonMunkholm/tabkit/internal/store"
)

// Options holds the service defaults and limits. Zero limits disable the
// corresponding check.
type Options struct {
	MaxShown    int
	DefaultName string

	MaxRows       int
	MaxTables     int
	MaxConcurrent int
	MaxWait       time.Duration
}

// OptionsFromConfig extracts the service options from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxShown:      cfg.Combine.MaxShown,
		DefaultName:   cfg.Combine.DefaultName,
		MaxRows:       cfg.Limits.MaxRows,
		MaxTables:     cfg.Limits.MaxTables,
		MaxConcurrent: cfg.Limits.MaxConcurrent,
		MaxWait:       cfg.Limits.MaxWaitTime,
	}
}

// Service runs table operations with configured defaults, input limits,
// operation ids and structured logging. It is safe for concurrent use.
type Service struct {
	opts    Options
	store   *store.Store
	limiter *Limiter
}

// NewService creates a Service. st may be nil, in which case LoadTable and
// SaveTable return ErrNoDatabase.
func NewService(opts Options, st *store.Store) *Service {
	if opts.MaxShown <= 0 {
		opts.MaxShown = 10
	}
	if opts.DefaultName == "" {
		opts.DefaultName = coerce.DefaultName
	}
	return &Service{
		opts:    opts,
		store:   st,
		limiter: NewLimiter(opts.MaxConcurrent, opts.MaxWait),
	}
}

// Result is the outcome of one operation. At most one of Frame, Series and
// Scalar is meaningful, as told by Dim; checks that only verify leave all
// three empty.
type Result struct {
	OpID   string
	Dim    int
	Frame  *frame.Frame
	Series *frame.Series
	Scalar any

	// Affected counts rows written by SaveTable.
	Affected int64
}

func (r Result) shape() (rows, cols int) {
	switch {
	case r.Frame != nil:
		return r.Frame.Len(), r.Frame.Width()
	case r.Series != nil:
		return r.Series.Len(), 1
	}
	return 0, 0
}

func frameResult(f *frame.Frame) Result {
	return Result{Dim: 2, Frame: f}
}

// HasDatabase reports whether table load and save are available.
func (s *Service) HasDatabase() bool { return s.store != nil }

// Status reports limiter usage.
func (s *Service) Status() LimiterStatus { return s.limiter.Status() }

// Drain waits for running operations to finish.
func (s *Service) Drain(ctx context.Context) error { return s.limiter.WaitForDrain(ctx) }

// MaxShown returns the default duplicate report cap.
func (s *Service) MaxShown() int { return s.opts.MaxShown }

// run executes fn as a named operation: it assigns an op id, holds a
// limiter slot and logs the outcome.
func (s *Service) run(ctx context.Context, op string, inputs int, fn func(ctx context.Context) (Result, error)) (Result, error) {
	id := uuid.NewString()
	ctx = logging.WithOperation(ctx, id, op)
	log := logging.FromContext(ctx)

	if err := s.limiter.Acquire(ctx); err != nil {
		log.Warn("operation rejected", "error", err)
		return Result{OpID: id}, err
	}
	defer s.limiter.Release()

	start := time.Now()
	res, err := fn(ctx)
	res.OpID = id
	elapsed := time.Since(start)

	if err != nil {
		log.Warn("operation failed",
			"inputs", inputs,
			"code", MapError(err).Code,
			"error", err,
			"duration", elapsed,
		)
		return res, err
	}

	rows, cols := res.shape()
	log.Info("operation completed",
		"inputs", inputs,
		"rows", rows,
		"cols", cols,
		"duration", elapsed,
	)
	return res, nil
}

// checkInputs enforces the table count and row limits.
func (s *Service) checkInputs(objs []frame.Tabular) error {
	if s.opts.MaxTables > 0 && len(objs) > s.opts.MaxTables {
		return fmt.Errorf("%w: got %d, limit is %d", ErrTooManyTables, len(objs), s.opts.MaxTables)
	}
	for i, obj := range objs {
		if err := s.checkRows(obj); err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
	}
	return nil
}

func (s *Service) checkRows(obj frame.Tabular) error {
	if obj == nil || s.opts.MaxRows <= 0 {
		return nil
	}
	if n := obj.Len(); n > s.opts.MaxRows {
		return fmt.Errorf("%w: %d rows, limit is %d", ErrTooManyRows, n, s.opts.MaxRows)
	}
	return nil
}

func (s *Service) withMaxShown(p combine.Params) combine.Params {
	if p.MaxShown <= 0 {
		p.MaxShown = s.opts.MaxShown
	}
	return p
}

// Merge combines objs left to right on key columns.
func (s *Service) Merge(ctx context.Context, objs []frame.Tabular, p combine.Params) (Result, error) {
	return s.run(ctx, "merge", len(objs), func(context.Context) (Result, error) {
		if err := s.checkInputs(objs); err != nil {
			return Result{}, err
		}
		f, err := combine.Merge(objs, s.withMaxShown(p))
		return frameResult(f), err
	})
}

// Join combines objs left to right on their indexes.
func (s *Service) Join(ctx context.Context, objs []frame.Tabular, p combine.Params) (Result, error) {
	return s.run(ctx, "join", len(objs), func(context.Context) (Result, error) {
		if err := s.checkInputs(objs); err != nil {
			return Result{}, err
		}
		f, err := combine.Join(objs, s.withMaxShown(p))
		return frameResult(f), err
	})
}

// Concat stacks objs by rows or aligns them by columns.
func (s *Service) Concat(ctx context.Context, objs []frame.Tabular, p combine.ConcatParams) (Result, error) {
	return s.run(ctx, "concat", len(objs), func(context.Context) (Result, error) {
		if err := s.checkInputs(objs); err != nil {
			return Result{}, err
		}
		f, err := combine.Concat(objs, p)
		return frameResult(f), err
	})
}

// VerifyUnique checks obj for duplicates. The configured MaxShown applies
// unless opts override it.
func (s *Service) VerifyUnique(ctx context.Context, obj frame.Tabular, opts ...dupes.Option) (Result, error) {
	return s.run(ctx, "verify_unique", 1, func(context.Context) (Result, error) {
		if err := s.checkRows(obj); err != nil {
			return Result{}, err
		}
		opts = append([]dupes.Option{dupes.MaxShown(s.opts.MaxShown)}, opts...)
		return Result{}, dupes.VerifyUnique(obj, opts...)
	})
}

// DropDuplicates removes repeated rows from a table or sequence.
func (s *Service) DropDuplicates(ctx context.Context, obj frame.Tabular, opts ...dupes.Option) (Result, error) {
	return s.run(ctx, "drop_duplicates", 1, func(context.Context) (Result, error) {
		if err := s.checkRows(obj); err != nil {
			return Result{}, err
		}
		switch x := obj.(type) {
		case *frame.Frame:
			f, err := dupes.DropDuplicateRows(x, opts...)
			return frameResult(f), err
		case *frame.Series:
			out, err := dupes.DropDuplicateRows(x, opts...)
			return Result{Dim: 1, Series: out}, err
		default:
			return Result{}, errs.Typef("expected a table or sequence, got %T", obj)
		}
	})
}

// TrimNA trims leading and trailing nulls from a sequence.
func (s *Service) TrimNA(ctx context.Context, data any, opts clean.TrimOptions) (Result, error) {
	return s.run(ctx, "trim_na", 1, func(context.Context) (Result, error) {
		if t, ok := data.(frame.Tabular); ok {
			if err := s.checkRows(t); err != nil {
				return Result{}, err
			}
		}
		out, err := clean.TrimNA(data, opts)
		return Result{Dim: 1, Series: out}, err
	})
}

// InferTypes converts text columns to numbers and times where every value
// parses. A sequence comes back as a sequence.
func (s *Service) InferTypes(ctx context.Context, obj frame.Tabular) (Result, error) {
	return s.run(ctx, "infer_types", 1, func(ctx context.Context) (Result, error) {
		if err := s.checkRows(obj); err != nil {
			return Result{}, err
		}
		v, err := coerce.Preserve(obj, func(f *frame.Frame) (*frame.Frame, error) {
			return clean.InferTypes(ctx, f)
		})
		if err != nil {
			return Result{}, err
		}
		return Result{Dim: v.Dim, Frame: v.Frame, Series: v.Series}, nil
	})
}

// RenameColumns applies a named transform ("lower", "upper", "title") to
// every string column label.
func (s *Service) RenameColumns(ctx context.Context, f *frame.Frame, transform string) (Result, error) {
	return s.run(ctx, "rename_columns", 1, func(context.Context) (Result, error) {
		if f == nil {
			return Result{}, errs.Typef("expected a table, got nil")
		}
		out, err := clean.RenameColumnsBy(f, transform)
		return frameResult(out), err
	})
}

// Coerce reshapes data to dim: 0 for a scalar, 1 for a sequence, 2 for a
// table. Unnamed results take the configured default name.
func (s *Service) Coerce(ctx context.Context, data any, dim int) (Result, error) {
	return s.run(ctx, "coerce", 1, func(context.Context) (Result, error) {
		switch dim {
		case 1:
			out, _, err := coerce.ToSeries(data, coerce.WithDefaultName(s.opts.DefaultName))
			return Result{Dim: 1, Series: out}, err
		case 2:
			out, _, err := coerce.ToFrame(data, coerce.WithDefaultName(s.opts.DefaultName))
			return frameResult(out), err
		}
		v, err := coerce.ToDim(data, dim)
		if err != nil {
			return Result{}, err
		}
		return Result{Dim: v.Dim, Scalar: v.Scalar}, nil
	})
}

// LoadTable reads a database table into a frame.
func (s *Service) LoadTable(ctx context.Context, table string, index ...string) (Result, error) {
	return s.run(ctx, "load_table", 1, func(ctx context.Context) (Result, error) {
		if s.store == nil {
			return Result{}, ErrNoDatabase
		}
		f, err := s.store.LoadTable(ctx, table, index...)
		return frameResult(f), err
	})
}

// SaveTable copies f into an existing database table, optionally emptying
// it first.
func (s *Service) SaveTable(ctx context.Context, table string, f *frame.Frame, includeIndex, truncate bool) (Result, error) {
	return s.run(ctx, "save_table", 1, func(ctx context.Context) (Result, error) {
		if s.store == nil {
			return Result{}, ErrNoDatabase
		}
		if f == nil {
			return Result{}, errs.Typef("expected a table, got nil")
		}
		if err := s.checkRows(f); err != nil {
			return Result{}, err
		}
		if truncate {
			if err := s.store.Truncate(ctx, table); err != nil {
				return Result{}, err
			}
		}
		n, err := s.store.SaveTable(ctx, table, f, includeIndex)
		return Result{Affected: n}, err
	})
}
