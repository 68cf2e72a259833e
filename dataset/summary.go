package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a frame for the language-model context.
type Summary struct {
	Rows        int                  `json:"rows"`
	Columns     int                  `json:"columns"`
	Schema      []ColumnInfo         `json:"schema"`
	Numeric     []NumericSummary     `json:"numeric_stats,omitempty"`
	Categorical []CategoricalSummary `json:"categorical_values,omitempty"`
}

type ColumnInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type NumericSummary struct {
	Name   string  `json:"name"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type CategoricalSummary struct {
	Name string       `json:"name"`
	Top  []ValueCount `json:"top"`
}

const topValues = 5

// Summarize computes shape, schema, numeric statistics and the five most
// frequent values of every categorical or boolean column.
func Summarize(frame *Frame) Summary {
	s := Summary{Rows: frame.Rows(), Columns: frame.Width()}
	for _, c := range frame.Columns() {
		s.Schema = append(s.Schema, ColumnInfo{Name: c.Name, Kind: c.Kind.String()})
		if c.IsNumeric() {
			if ns, ok := summarizeNumeric(c); ok {
				s.Numeric = append(s.Numeric, ns)
			}
			continue
		}
		s.Categorical = append(s.Categorical, CategoricalSummary{Name: c.Name, Top: topCounts(c, topValues)})
	}
	return s
}

func summarizeNumeric(c *Column) (NumericSummary, bool) {
	values := make([]float64, 0, len(c.Num))
	for _, v := range c.Num {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return NumericSummary{}, false
	}
	sort.Float64s(values)
	return NumericSummary{
		Name:   c.Name,
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Mean:   Round(stat.Mean(values, nil), 2),
		Median: linearQuantile(values, 0.5),
	}, true
}

// ValueCounts returns every distinct non-empty value with its frequency,
// most frequent first; ties keep first-seen order.
func ValueCounts(c *Column) []ValueCount {
	index := make(map[string]int)
	var out []ValueCount
	for i := 0; i < c.Len(); i++ {
		v := c.Text(i)
		if v == "" {
			continue
		}
		if k, ok := index[v]; ok {
			out[k].Count++
			continue
		}
		index[v] = len(out)
		out = append(out, ValueCount{Value: v, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func topCounts(c *Column, n int) []ValueCount {
	counts := ValueCounts(c)
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
