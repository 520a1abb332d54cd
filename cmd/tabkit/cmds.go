package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tabkit/internal/clean"
	"github.com/JonMunkholm/tabkit/internal/combine"
	"github.com/JonMunkholm/tabkit/internal/core"
	"github.com/JonMunkholm/tabkit/internal/csvio"
	"github.com/JonMunkholm/tabkit/internal/dupes"
	"github.com/JonMunkholm/tabkit/internal/frame"
	"github.com/JonMunkholm/tabkit/internal/interop"
)

var errNoResult = errors.New("operation produced no table")

func addCommands(root *cobra.Command, c *cli) {
	// Combining
	cmd := &cobra.Command{
		Use:   "merge file file...",
		Short: "Merge tables left to right on key columns",
		Args:  cobra.MinimumNArgs(2),
		RunE:  c.merge,
	}
	cmd.Flags().String("how", "", "left, right, inner, outer or anti (default: left)")
	cmd.Flags().StringSlice("on", nil, "key columns shared by both sides")
	cmd.Flags().StringSlice("left-on", nil, "key columns of the left side")
	cmd.Flags().StringSlice("right-on", nil, "key columns of the right side")
	cmd.Flags().Bool("indicator", false, "add a column telling which side each row came from")
	cmd.Flags().Bool("left-dupes-ok", true, "allow repeated keys in the first table")
	cmd.Flags().Bool("right-dupes-ok", false, "allow repeated keys in the other tables")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "join file file...",
		Short: "Join tables left to right on their index (see --index)",
		Args:  cobra.MinimumNArgs(2),
		RunE:  c.join,
	}
	cmd.Flags().String("how", "", "left, right, inner, outer or anti (default: left)")
	cmd.Flags().Bool("none-ok", true, "let inputs with an unnamed index skip the index name check")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "concat file...",
		Short: "Stack tables by rows or align them by columns",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.concat,
	}
	cmd.Flags().Int("axis", 0, "0 stacks rows, 1 aligns columns")
	cmd.Flags().String("join", "", "outer or inner (default: outer)")
	cmd.Flags().Bool("ignore-index", false, "renumber the concatenation axis")
	root.AddCommand(cmd)

	// Checks
	cmd = &cobra.Command{
		Use:   "verify file",
		Short: "Fail when a table has duplicate names or values",
		Args:  cobra.ExactArgs(1),
		RunE:  c.verify,
	}
	cmd.Flags().String("label", "", "name used for the table in reports (default: file name)")
	cmd.Flags().Bool("skip-column-names", false, "do not check column names")
	cmd.Flags().Bool("skip-index-names", false, "do not check index names")
	cmd.Flags().StringSlice("column-values", nil, "check the combined values of these columns")
	cmd.Flags().Bool("all-columns", false, "check the combined values of every column")
	cmd.Flags().Bool("index-values", false, "check index values")
	cmd.Flags().Bool("include-index", false, "include index levels in value checks")
	cmd.Flags().Bool("drop-na", false, "ignore rows with nulls in value checks")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "dedupe file",
		Short: "Drop repeated rows",
		Args:  cobra.ExactArgs(1),
		RunE:  c.dedupe,
	}
	cmd.Flags().StringSlice("subset", nil, "columns compared (default: all)")
	cmd.Flags().String("keep", "first", "first, last or none")
	cmd.Flags().Bool("include-index", false, "compare index levels too")
	cmd.Flags().Bool("ignore-index", false, "renumber the result")
	root.AddCommand(cmd)

	// Cleaning
	cmd = &cobra.Command{
		Use:   "trim file column",
		Short: "Trim leading and trailing nulls from a column",
		Args:  cobra.ExactArgs(2),
		RunE:  c.trim,
	}
	cmd.Flags().String("which", "both", "both, leading or trailing")
	cmd.Flags().Bool("inf-as-na", false, "treat infinities as null")
	cmd.Flags().Bool("raise-on-na", false, "fail when nulls remain after trimming")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "infer file",
		Short: "Convert text columns to numbers and dates where every value parses",
		Args:  cobra.ExactArgs(1),
		RunE:  c.infer,
	}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "rename file lower|upper|title",
		Short: "Change the case of column names",
		Args:  cobra.ExactArgs(2),
		RunE:  c.rename,
	}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "describe file",
		Short: "Summary statistics per column",
		Args:  cobra.ExactArgs(1),
		RunE:  c.describe,
	}
	root.AddCommand(cmd)
}

// action holds the flags and timing of one command invocation.
type action struct {
	cmd   *cobra.Command
	quiet bool
	start time.Time
}

func newAction(cmd *cobra.Command) *action {
	a := &action{cmd: cmd, start: time.Now()}
	a.quiet = a.getBool("quiet")
	return a
}

func (a *action) getBool(name string) bool {
	v, _ := a.cmd.Flags().GetBool(name)
	return v
}

func (a *action) getInt(name string) int {
	v, _ := a.cmd.Flags().GetInt(name)
	return v
}

func (a *action) getString(name string) string {
	v, _ := a.cmd.Flags().GetString(name)
	return v
}

func (a *action) getStrings(name string) []string {
	v, _ := a.cmd.Flags().GetStringSlice(name)
	return v
}

func (a *action) getRune(name string) rune {
	s := a.getString(name)
	if s == "" {
		return 0
	}
	return []rune(s)[0]
}

// optBool returns the flag value only when it was given on the command line.
func (a *action) optBool(name string) *bool {
	if !a.cmd.Flags().Changed(name) {
		return nil
	}
	v := a.getBool(name)
	return &v
}

// status prints a progress note to stderr unless --quiet.
func (a *action) status(format string, args ...any) {
	if a.quiet {
		return
	}
	fmt.Fprintf(a.cmd.ErrOrStderr(), format, args...)
}

// read loads a CSV file, or an Arrow IPC stream when the name ends in
// .arrow. --index and --infer apply to both.
func (a *action) read(path string) (*frame.Frame, error) {
	var (
		f   *frame.Frame
		err error
	)
	index := a.getStrings("index")
	switch strings.ToLower(filepath.Ext(path)) {
	case ".arrow", ".arrows":
		f, err = readArrow(path)
		if err == nil && len(index) > 0 {
			f, err = f.SetIndex(frame.Labels(index...)...)
		}
	default:
		f, err = csvio.ReadFile(path, csvio.ReadOptions{Index: index, Comma: a.getRune("delim")})
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	if a.getBool("infer") {
		f, err = clean.InferTypes(a.cmd.Context(), f)
		if err != nil {
			return nil, errors.Wrapf(err, "infer types of %s", path)
		}
	}
	return f, nil
}

func readArrow(path string) (*frame.Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return interop.ReadArrowStream(fh)
}

func (a *action) readAll(paths []string) ([]frame.Tabular, error) {
	out := make([]frame.Tabular, len(paths))
	for i, p := range paths {
		f, err := a.read(p)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// show writes the result table in the --format chosen.
func (a *action) show(res core.Result, err error) error {
	if err != nil {
		return err
	}
	f := res.Frame
	if f == nil && res.Series != nil {
		f = res.Series.ToFrame()
	}
	if f == nil {
		return errNoResult
	}

	w := a.cmd.OutOrStdout()
	if path := a.getString("output"); path != "" {
		fh, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "create output")
		}
		defer fh.Close()
		w = fh
	}

	if err := write(w, f, a.getString("format"), a.getRune("delim")); err != nil {
		return errors.Wrap(err, "write result")
	}
	a.status("Ok: %d rows, %d columns (%.1fs)\n", f.Len(), f.Width(), time.Since(a.start).Seconds())
	return nil
}

func write(w io.Writer, f *frame.Frame, format string, comma rune) error {
	switch format {
	case "", "csv":
		return csvio.Write(w, f, csvio.WriteOptions{Comma: comma})
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case "arrow":
		return interop.WriteArrowStream(w, f, namedIndex(f))
	}
	return errors.Errorf("unknown format %q", format)
}

func namedIndex(f *frame.Frame) bool {
	for _, n := range f.Index().Names() {
		if n != nil {
			return true
		}
	}
	return false
}

func (a *action) mergeParams() combine.Params {
	return combine.Params{
		How:          frame.How(a.getString("how")),
		On:           a.getStrings("on"),
		LeftOn:       a.getStrings("left-on"),
		RightOn:      a.getStrings("right-on"),
		Indicator:    a.getBool("indicator"),
		LeftDupesOK:  a.optBool("left-dupes-ok"),
		RightDupesOK: a.optBool("right-dupes-ok"),
		NoneOK:       a.optBool("none-ok"),
	}
}

func (c *cli) merge(cmd *cobra.Command, args []string) error {
	a := newAction(cmd)
	objs, err := a.readAll(args)
	if err != nil {
		return err
	}
	return a.show(c.service.Merge(cmd.Context(), objs, a.mergeParams()))
}

func (c *cli) join(cmd *cobra.Command, args []string) error {
	a := newAction(cmd)
	objs, err := a.readAll(args)
	if err != nil {
		return err
	}
	return a.show(c.service.Join(cmd.Context(), objs, a.mergeParams()))
}

func (c *cli) concat(cmd *cobra.Command, args []string) error {
	a := newAction(cmd)
	objs, err := a.readAll(args)
	if err != nil {
		return err
	}
	return a.show(c.service.Concat(cmd.Context(), objs, combine.ConcatParams{
		Axis:        a.getInt("axis"),
		Join:        frame.How(a.getString("join")),
		IgnoreIndex: a.optBool("ignore-index"),
	}))
}

func (c *cli) verify(cmd *cobra.Command, args []string) error {
	a := newAction(cmd)
	f, err := a.read(args[0])
	if err != nil {
		return err
	}

	label := a.getString("label")
	if label == "" {
		label = filepath.Base(args[0])
	}
	opts := []dupes.Option{dupes.WithLabel(label)}
	if a.getBool("skip-column-names") {
		opts = append(opts, dupes.SkipColumnNames())
	}
	if a.getBool("skip-index-names") {
		opts = append(opts, dupes.SkipIndexNames())
	}
	switch cols := a.getStrings("column-values"); {
	case a.getBool("all-columns"):
		opts = append(opts, dupes.ColumnValues(true))
	case len(cols) > 0:
		opts = append(opts, dupes.ColumnValues(cols))
	}
	if a.getBool("index-values") {
		opts = append(opts, dupes.CheckIndexValues())
	}
	if a.getBool("include-index") {
		opts = append(opts, dupes.IncludeIndex())
	}
	if a.getBool("drop-na") {
		opts = append(opts, dupes.DropNA())
	}
	if _, err := c.service.VerifyUnique(cmd.Context(), f, opts...); err != nil {
		return err
	}
	a.status("Ok: %s is unique (%.1fs)\n", label, time.Since(a.start).Seconds())
	return nil
}

func (c *cli) dedupe(cmd *cobra.Command, args []string) error {
	a := newAction(cmd)
	f, err := a.read(args[0])
	if err != nil {
		return err
	}
	keep, err := frame.ParseKeep(a.getString("keep"))
	if err != nil {
		return err
	}
	opts := []dupes.Option{dupes.Keep(keep)}
	if subset := a.getStrings("subset"); len(subset) > 0 {
		opts = append(opts, dupes.Subset(frame.Labels(subset...)...))
	}
	if a.getBool("include-index") {
		opts = append(opts, dupes.IncludeIndex())
	}
	if a.getBool("ignore-index") {
		opts = append(opts, dupes.IgnoreIndex())
	}
	return a.show(c.service.DropDuplicates(cmd.Context(), f, opts...))
}

func (c *cli) trim(cmd *cobra.Command, args []string) error {
	a := newAction(cmd)
	f, err := a.read(args[0])
	if err != nil {
		return err
	}
	col, err := f.Column(args[1])
	if err != nil {
		return err
	}
	return a.show(c.service.TrimNA(cmd.Context(), col, clean.TrimOptions{
		Which:     clean.Which(a.getString("which")),
		InfAsNA:   a.getBool("inf-as-na"),
		RaiseOnNA: a.getBool("raise-on-na"),
	}))
}

func (c *cli) infer(cmd *cobra.Command, args []string) error {
	a := newAction(cmd)
	f, err := a.read(args[0])
	if err != nil {
		return err
	}
	return a.show(c.service.InferTypes(cmd.Context(), f))
}

func (c *cli) rename(cmd *cobra.Command, args []string) error {
	a := newAction(cmd)
	f, err := a.read(args[0])
	if err != nil {
		return err
	}
	return a.show(c.service.RenameColumns(cmd.Context(), f, args[1]))
}

func (c *cli) describe(cmd *cobra.Command, args []string) error {
	a := newAction(cmd)
	f, err := a.read(args[0])
	if err != nil {
		return err
	}
	if !a.getBool("infer") {
		if f, err = clean.InferTypes(cmd.Context(), f); err != nil {
			return err
		}
	}
	out, err := interop.Describe(f)
	if err != nil {
		return err
	}
	return a.show(core.Result{Dim: 2, Frame: out}, nil)
}
