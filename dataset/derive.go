package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// View names a derivation understood by Derive.
type View string

const (
	ViewAgeBand           View = "age_band"
	ViewIncomeBand        View = "income_band"
	ViewTenureBand        View = "tenure_band"
	ViewEducationLevel    View = "education_level"
	ViewSatisfactionLevel View = "satisfaction_level"
	ViewRateByCategory    View = "rate_by_category"
	ViewTopFactors        View = "top_factors"
)

// Names of derived columns.
const (
	AgeGroupColumn          = "AgeGroup"
	IncomeBandColumn        = "IncomeBand"
	TenureBandColumn        = "TenureBand"
	EducationLevelColumn    = "EducationLevel"
	SatisfactionLevelColumn = "SatisfactionLevel"
	CountColumn             = "Count"
	PositiveColumn          = "Attrited"
	RateColumn              = "Attrition Rate"
	FactorColumn            = "Factor"
	ImportanceColumn        = "Importance"

	DefaultOutcome = "Attrition"
	DefaultTopN    = 10
)

var (
	AgeBandLabels      = []string{"Under 20", "20-24", "25-29", "30-34", "35-39", "40-44", "45-49", "50-54", "55-59", "60+"}
	IncomeBandLabels   = []string{"Low", "Medium", "High", "Very High"}
	TenureBandLabels   = []string{"0-2", "2-5", "5-10", "10+"}
	EducationLabels    = []string{"Below College", "College", "Bachelor", "Master", "Doctor"}
	SatisfactionLabels = []string{"Low", "Medium", "High", "Very High"}
)

// Params configures a derivation. Zero values select defaults.
type Params struct {
	Column  string // source column for band and level views
	GroupBy string // grouping column for rate_by_category
	Outcome string // binary outcome column, "Attrition" by default
	TopN    int
}

func (p Params) outcome() string {
	if p.Outcome == "" {
		return DefaultOutcome
	}
	return p.Outcome
}

// Derive computes a named view over frame. The source frame is never
// modified; every call returns a freshly built frame.
func Derive(frame *Frame, view View, params Params) (*Frame, error) {
	switch view {
	case ViewAgeBand:
		return AgeBands(frame, params.Column)
	case ViewIncomeBand:
		return QuantileBands(frame, params.Column)
	case ViewTenureBand:
		return TenureBands(frame, params.Column)
	case ViewEducationLevel:
		return levelColumn(frame, firstNonEmpty(params.Column, "Education"), EducationLevelColumn, EducationLabels)
	case ViewSatisfactionLevel:
		return levelColumn(frame, firstNonEmpty(params.Column, "JobSatisfaction"), SatisfactionLevelColumn, SatisfactionLabels)
	case ViewRateByCategory:
		return RateByCategory(frame, params.GroupBy, params.outcome())
	case ViewTopFactors:
		return TopFactors(frame, params.outcome(), params.TopN)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, view)
	}
}

// ViewFor returns the derivation that produces the named derived column.
func ViewFor(column string) (View, bool) {
	switch column {
	case AgeGroupColumn:
		return ViewAgeBand, true
	case IncomeBandColumn:
		return ViewIncomeBand, true
	case TenureBandColumn:
		return ViewTenureBand, true
	case EducationLevelColumn:
		return ViewEducationLevel, true
	case SatisfactionLevelColumn:
		return ViewSatisfactionLevel, true
	case FactorColumn, ImportanceColumn:
		return ViewTopFactors, true
	default:
		return "", false
	}
}

// AgeBands appends AgeGroup: five-year half-open bins [lo, lo+5) with fixed
// labels, so identical ages land in identical bands on every subset.
func AgeBands(frame *Frame, column string) (*Frame, error) {
	if column == "" {
		column = "Age"
		if !frame.Has(column) {
			column = frame.FindColumn("age")
		}
	}
	src, err := numericColumn(frame, column)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(src.Num))
	for i, v := range src.Num {
		labels[i] = AgeBand(v)
	}
	return frame.WithColumn(&Column{Name: AgeGroupColumn, Kind: Categorical, Str: labels, Levels: AgeBandLabels})
}

// AgeBand returns the band label for one age, or "" when missing.
func AgeBand(age float64) string {
	if math.IsNaN(age) {
		return ""
	}
	if age < 20 {
		return AgeBandLabels[0]
	}
	i := int(math.Floor((age-20)/5)) + 1
	if i >= len(AgeBandLabels) {
		i = len(AgeBandLabels) - 1
	}
	return AgeBandLabels[i]
}

// TenureBands appends TenureBand over a years-at-company style column.
func TenureBands(frame *Frame, column string) (*Frame, error) {
	if column == "" {
		column = frame.FindColumn("yearsatcompany", "tenure")
	}
	src, err := numericColumn(frame, column)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(src.Num))
	for i, v := range src.Num {
		labels[i] = TenureBand(v)
	}
	return frame.WithColumn(&Column{Name: TenureBandColumn, Kind: Categorical, Str: labels, Levels: TenureBandLabels})
}

// TenureBand returns the band label for a tenure in years, or "" when missing.
func TenureBand(years float64) string {
	switch {
	case math.IsNaN(years) || years < 0:
		return ""
	case years < 2:
		return TenureBandLabels[0]
	case years < 5:
		return TenureBandLabels[1]
	case years < 10:
		return TenureBandLabels[2]
	default:
		return TenureBandLabels[3]
	}
}

// QuantileBands appends IncomeBand: four quartile tiers over an income or
// salary column. It needs at least four distinct values.
func QuantileBands(frame *Frame, column string) (*Frame, error) {
	if column == "" {
		column = frame.FindColumn("income", "salary")
	}
	src, err := numericColumn(frame, column)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(src.Num))
	distinct := make(map[float64]struct{})
	for _, v := range src.Num {
		if !math.IsNaN(v) {
			values = append(values, v)
			distinct[v] = struct{}{}
		}
	}
	if len(distinct) < 4 {
		return nil, fmt.Errorf("%w: %s has %d distinct values, need 4 for quartile bands", ErrInsufficientData, column, len(distinct))
	}
	sort.Float64s(values)

	edges := quartileEdges(values)
	if !increasing(edges) {
		// Heavy ties collapse the edges; cut on the distinct values instead.
		uniq := make([]float64, 0, len(distinct))
		for v := range distinct {
			uniq = append(uniq, v)
		}
		sort.Float64s(uniq)
		edges = quartileEdges(uniq)
	}

	labels := make([]string, len(src.Num))
	for i, v := range src.Num {
		if math.IsNaN(v) {
			continue
		}
		tier := len(IncomeBandLabels) - 1
		for k := 1; k < len(edges)-1; k++ {
			if v <= edges[k] {
				tier = k - 1
				break
			}
		}
		labels[i] = IncomeBandLabels[tier]
	}
	return frame.WithColumn(&Column{Name: IncomeBandColumn, Kind: Categorical, Str: labels, Levels: IncomeBandLabels})
}

// quartileEdges returns min, Q1, Q2, Q3, max of sorted values using linear
// interpolation between closest ranks.
func quartileEdges(sorted []float64) []float64 {
	edges := make([]float64, 5)
	for i, p := range []float64{0, 0.25, 0.5, 0.75, 1} {
		edges[i] = linearQuantile(sorted, p)
	}
	return edges
}

func linearQuantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

func increasing(edges []float64) bool {
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return false
		}
	}
	return true
}

func levelColumn(frame *Frame, column, target string, labels []string) (*Frame, error) {
	src, err := numericColumn(frame, column)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(src.Num))
	for i, v := range src.Num {
		k := int(v) - 1
		if math.IsNaN(v) || v != math.Trunc(v) || k < 0 || k >= len(labels) {
			continue
		}
		out[i] = labels[k]
	}
	return frame.WithColumn(&Column{Name: target, Kind: Categorical, Str: out, Levels: labels})
}

// RateByCategory groups frame by the group column and reports, per category
// present in the frame, the row count, positive count and positive rate in
// percent. Categories absent from the frame produce no row.
func RateByCategory(frame *Frame, group, outcome string) (*Frame, error) {
	g, ok := frame.Column(group)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, group)
	}
	o, ok := frame.Column(outcome)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, outcome)
	}
	binary, err := o.Binary()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]float64)
	positives := make(map[string]float64)
	for i := 0; i < frame.Rows(); i++ {
		key := g.Text(i)
		if key == "" || math.IsNaN(binary[i]) {
			continue
		}
		counts[key]++
		positives[key] += binary[i]
	}

	var keys []string
	for _, k := range g.Categories() {
		if counts[k] > 0 {
			keys = append(keys, k)
		}
	}

	n := make([]float64, len(keys))
	pos := make([]float64, len(keys))
	rate := make([]float64, len(keys))
	for i, k := range keys {
		n[i] = counts[k]
		pos[i] = positives[k]
		rate[i] = Round(pos[i]/n[i]*100, 2)
	}
	return NewFrame(
		&Column{Name: group, Kind: Categorical, Str: keys, Levels: keys},
		NewNumeric(CountColumn, n),
		NewNumeric(PositiveColumn, pos),
		NewNumeric(RateColumn, rate),
	)
}

// Correlation is the Pearson coefficient of one factor against the outcome.
type Correlation struct {
	Factor string  `json:"factor"`
	R      float64 `json:"r"`
}

// Correlations computes the Pearson correlation of each named numeric factor
// against the binary outcome. With no factors given every numeric,
// non-identifier column is used. Factors with no variance are skipped.
func Correlations(frame *Frame, outcome string, factors []string) ([]Correlation, error) {
	o, ok := frame.Column(outcome)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, outcome)
	}
	y, err := o.Binary()
	if err != nil {
		return nil, err
	}
	if len(factors) == 0 {
		for _, c := range frame.Columns() {
			if c.IsNumeric() && c.Name != outcome && !isIdentifier(c.Name) {
				factors = append(factors, c.Name)
			}
		}
	}

	var out []Correlation
	for _, name := range factors {
		c, ok := frame.Column(name)
		if !ok || !c.IsNumeric() {
			continue
		}
		xs, ys := pairwise(c.Num, y)
		if len(xs) < 2 {
			continue
		}
		r := stat.Correlation(xs, ys, nil)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		out = append(out, Correlation{Factor: name, R: r})
	}
	return out, nil
}

// TopFactors ranks numeric columns by absolute Pearson correlation with the
// outcome and returns the top n as Factor/Importance rows. Ties keep column
// order.
func TopFactors(frame *Frame, outcome string, n int) (*Frame, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	corr, err := Correlations(frame, outcome, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(corr, func(i, j int) bool {
		return math.Abs(corr[i].R) > math.Abs(corr[j].R)
	})
	if len(corr) > n {
		corr = corr[:n]
	}
	names := make([]string, len(corr))
	importance := make([]float64, len(corr))
	for i, c := range corr {
		names[i] = c.Factor
		importance[i] = math.Abs(c.R)
	}
	return NewFrame(
		&Column{Name: FactorColumn, Kind: Categorical, Str: names, Levels: names},
		NewNumeric(ImportanceColumn, importance),
	)
}

// CorrelationMatrix returns the pairwise Pearson matrix of the named numeric
// columns. Rows missing either value are skipped per pair; pairs with fewer
// than two complete rows or no variance are NaN.
func CorrelationMatrix(frame *Frame, names []string) ([][]float64, error) {
	cols := make([]*Column, len(names))
	for i, name := range names {
		c, err := numericColumn(frame, name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	m := make([][]float64, len(names))
	for i := range m {
		m[i] = make([]float64, len(names))
	}
	for i := range names {
		for j := i; j < len(names); j++ {
			x, y := pairwise(cols[i].Num, cols[j].Num)
			r := math.NaN()
			if len(x) >= 2 {
				r = stat.Correlation(x, y, nil)
			}
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			m[i][j], m[j][i] = r, r
		}
	}
	return m, nil
}

var identifierColumns = map[string]bool{
	"employeenumber": true,
	"employeecount":  true,
	"standardhours":  true,
	"over18":         true,
}

func isIdentifier(name string) bool {
	lower := strings.ToLower(name)
	if identifierColumns[lower] {
		return true
	}
	return lower == "id" || strings.HasSuffix(lower, "_id") || strings.HasSuffix(name, "ID") || strings.HasSuffix(name, "Id")
}

func pairwise(x, y []float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

func numericColumn(frame *Frame, name string) (*Column, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: no suitable source column", ErrColumnNotFound)
	}
	c, ok := frame.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	if !c.IsNumeric() {
		return nil, fmt.Errorf("column %q is %s, expected numeric", name, c.Kind)
	}
	return c, nil
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
