package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind is the declared type of a column.
type Kind int

const (
	Numeric Kind = iota
	Categorical
	Boolean
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Boolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Column holds one named series. Numeric columns use Num (NaN marks a missing
// value), categorical columns use Str ("" marks a missing value) and boolean
// columns carry both the original Yes/No text and its 1/0 mapping.
//
// Columns are never written to after construction; frames share them freely.
type Column struct {
	Name   string
	Kind   Kind
	Num    []float64
	Str    []string
	Levels []string // display order for categorical values, optional
}

// NewNumeric builds a numeric column.
func NewNumeric(name string, values []float64) *Column {
	return &Column{Name: name, Kind: Numeric, Num: values}
}

// NewCategorical builds a categorical column.
func NewCategorical(name string, values []string) *Column {
	return &Column{Name: name, Kind: Categorical, Str: values}
}

// NewBoolean builds a boolean-like column from Yes/No (or true/false) text.
func NewBoolean(name string, values []string) *Column {
	num := make([]float64, len(values))
	for i, v := range values {
		num[i] = parseBinary(v)
	}
	return &Column{Name: name, Kind: Boolean, Num: num, Str: values}
}

func parseBinary(v string) float64 {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "1":
		return 1
	case "no", "false", "0":
		return 0
	default:
		return math.NaN()
	}
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	if c.Kind == Categorical {
		return len(c.Str)
	}
	return len(c.Num)
}

// Text returns the value at row i as display text.
func (c *Column) Text(i int) string {
	switch c.Kind {
	case Numeric:
		v := c.Num[i]
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return c.Str[i]
	}
}

// IsNumeric reports whether the column can be plotted on a continuous axis.
func (c *Column) IsNumeric() bool {
	return c.Kind == Numeric
}

// Binary returns the column as 1/0 values. Boolean columns map Yes/No,
// numeric columns must already hold only 0 and 1.
func (c *Column) Binary() ([]float64, error) {
	switch c.Kind {
	case Boolean:
		return c.Num, nil
	case Numeric:
		for _, v := range c.Num {
			if !math.IsNaN(v) && v != 0 && v != 1 {
				return nil, fmt.Errorf("column %q is not binary: found %v", c.Name, v)
			}
		}
		return c.Num, nil
	default:
		out := make([]float64, len(c.Str))
		for i, v := range c.Str {
			out[i] = parseBinary(v)
			if v != "" && math.IsNaN(out[i]) {
				return nil, fmt.Errorf("column %q is not binary: found %q", c.Name, v)
			}
		}
		return out, nil
	}
}

// Categories returns the distinct non-empty values of the column in display
// order: declared Levels first, otherwise numeric or lexical order.
func (c *Column) Categories() []string {
	seen := make(map[string]bool)
	for i := 0; i < c.Len(); i++ {
		if v := c.Text(i); v != "" {
			seen[v] = true
		}
	}
	if len(c.Levels) > 0 {
		out := make([]string, 0, len(seen))
		for _, l := range c.Levels {
			if seen[l] {
				out = append(out, l)
			}
		}
		return out
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	if c.Kind == Numeric {
		sort.Slice(out, func(i, j int) bool {
			a, _ := strconv.ParseFloat(out[i], 64)
			b, _ := strconv.ParseFloat(out[j], 64)
			return a < b
		})
	} else {
		sort.Strings(out)
	}
	return out
}

func (c *Column) take(idx []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, Levels: c.Levels}
	if c.Num != nil {
		out.Num = make([]float64, len(idx))
		for i, j := range idx {
			out.Num[i] = c.Num[j]
		}
	}
	if c.Str != nil {
		out.Str = make([]string, len(idx))
		for i, j := range idx {
			out.Str[i] = c.Str[j]
		}
	}
	return out
}

// Frame is an immutable table of equally long columns. Every operation that
// changes shape or content returns a new Frame.
type Frame struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// NewFrame validates and assembles columns into a frame.
func NewFrame(cols ...*Column) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := f.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if i == 0 {
			f.rows = c.Len()
		} else if c.Len() != f.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), f.rows)
		}
		f.index[c.Name] = i
		f.cols = append(f.cols, c)
	}
	return f, nil
}

// Rows returns the number of records.
func (f *Frame) Rows() int { return f.rows }

// Width returns the number of columns.
func (f *Frame) Width() int { return len(f.cols) }

// Names returns column names in order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.Name
	}
	return out
}

// Columns returns the columns in order. The slice is a copy.
func (f *Frame) Columns() []*Column {
	return append([]*Column(nil), f.cols...)
}

// Column looks up a column by exact, case-sensitive name.
func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Has reports whether a column with that exact name exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// NumericNames returns the names of all numeric columns in order.
func (f *Frame) NumericNames() []string {
	var out []string
	for _, c := range f.cols {
		if c.IsNumeric() {
			out = append(out, c.Name)
		}
	}
	return out
}

// WithColumn returns a new frame with col appended, or replacing the column
// of the same name.
func (f *Frame) WithColumn(col *Column) (*Frame, error) {
	cols := f.Columns()
	if i, ok := f.index[col.Name]; ok {
		cols[i] = col
	} else {
		cols = append(cols, col)
	}
	return NewFrame(cols...)
}

// Select returns a new frame restricted to the named columns.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, ok := f.Column(n)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, n)
		}
		cols = append(cols, c)
	}
	return NewFrame(cols...)
}

// Take returns a new frame holding only the given rows, in that order.
func (f *Frame) Take(idx []int) *Frame {
	cols := make([]*Column, len(f.cols))
	for i, c := range f.cols {
		cols[i] = c.take(idx)
	}
	out, _ := NewFrame(cols...)
	if len(cols) == 0 {
		out.rows = len(idx)
	}
	return out
}

// Where returns the rows for which keep returns true.
func (f *Frame) Where(keep func(row int) bool) *Frame {
	var idx []int
	for i := 0; i < f.rows; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return f.Take(idx)
}

// FindColumn returns the first column whose lower-cased name contains any of
// the given fragments and whose kind is numeric. It returns "" when none
// matches.
func (f *Frame) FindColumn(fragments ...string) string {
	for _, c := range f.cols {
		if !c.IsNumeric() {
			continue
		}
		lower := strings.ToLower(c.Name)
		for _, frag := range fragments {
			if strings.Contains(lower, frag) {
				return c.Name
			}
		}
	}
	return ""
}
