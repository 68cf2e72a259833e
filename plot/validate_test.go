package plot

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attritioninsight/dataset"
)

func workforce(t *testing.T) *dataset.Frame {
	t.Helper()
	const n = 60
	age := make([]float64, n)
	income := make([]float64, n)
	years := make([]float64, n)
	dept := make([]string, n)
	gender := make([]string, n)
	attrition := make([]string, n)
	depts := []string{"Sales", "Research & Development", "Human Resources"}
	for i := 0; i < n; i++ {
		age[i] = float64(20 + (i*7)%40)
		income[i] = float64(2000 + (i*373)%8000)
		years[i] = float64(i % 15)
		dept[i] = depts[i%3]
		gender[i] = []string{"Male", "Female"}[i%2]
		attrition[i] = "No"
		if i%4 == 0 || years[i] < 2 {
			attrition[i] = "Yes"
		}
	}
	frame, err := dataset.NewFrame(
		dataset.NewNumeric("Age", age),
		dataset.NewNumeric("MonthlyIncome", income),
		dataset.NewNumeric("YearsAtCompany", years),
		dataset.NewCategorical("Department", dept),
		dataset.NewCategorical("Gender", gender),
		dataset.NewBoolean("Attrition", attrition),
	)
	require.NoError(t, err)
	return frame
}

func TestValidateRejectsUnknownXForEveryType(t *testing.T) {
	frame := workforce(t)
	for _, typ := range append(Types, Type("sunburst")) {
		res := Validate(Request{Type: typ, XColumn: "Nope", YColumn: "Age"}, frame)
		assert.False(t, res.OK, "type %s", typ)
		assert.ErrorIs(t, res.Err, ErrUnknownColumn, "type %s", typ)
		assert.NotEmpty(t, res.Reason)
	}
}

func TestValidateRules(t *testing.T) {
	frame := workforce(t)
	tests := []struct {
		name string
		req  Request
		want error
	}{
		{name: "bar count", req: Request{Type: Bar, XColumn: "Department"}},
		{name: "bar aggregate", req: Request{Type: Bar, XColumn: "Department", YColumn: "MonthlyIncome"}},
		{name: "unknown y", req: Request{Type: Bar, XColumn: "Department", YColumn: "Salary"}, want: ErrUnknownColumn},
		{name: "unknown hue", req: Request{Type: Scatter, XColumn: "Age", YColumn: "MonthlyIncome", Hue: "Team"}, want: ErrUnknownColumn},
		{name: "scatter without y", req: Request{Type: Scatter, XColumn: "Age"}, want: ErrMissingAxis},
		{name: "line without y", req: Request{Type: Line, XColumn: "Age"}, want: ErrMissingAxis},
		{name: "histogram of category", req: Request{Type: Histogram, XColumn: "Department"}, want: ErrNonNumericColumn},
		{name: "scatter categorical y", req: Request{Type: Scatter, XColumn: "Age", YColumn: "Gender"}, want: ErrNonNumericColumn},
		{name: "box grouped", req: Request{Type: Box, XColumn: "Department", YColumn: "Age"}},
		{name: "violin unconditioned category", req: Request{Type: Violin, XColumn: "Gender"}, want: ErrNonNumericColumn},
		{name: "pie", req: Request{Type: Pie, XColumn: "Gender"}},
		{name: "heatmap without x", req: Request{Type: Heatmap}},
		{name: "heatmap one column", req: Request{Type: Heatmap, Columns: []string{"Age", "Department"}}, want: ErrInsufficientDimensions},
		{name: "unsupported", req: Request{Type: "sunburst", XColumn: "Department"}, want: ErrUnsupportedPlotType},
		{name: "unknown column reported before type", req: Request{Type: "sunburst", XColumn: "Nope"}, want: ErrUnknownColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.req, frame)
			if tt.want == nil {
				assert.True(t, res.OK, res.Reason)
				assert.NoError(t, res.Err)
				return
			}
			assert.False(t, res.OK)
			assert.True(t, errors.Is(res.Err, tt.want), fmt.Sprintf("got %v", res.Err))
		})
	}
}

func TestValidateHeatmapNeedsTwoNumericColumns(t *testing.T) {
	frame, err := dataset.NewFrame(
		dataset.NewNumeric("Age", []float64{30, 40}),
		dataset.NewCategorical("Department", []string{"Sales", "HR"}),
	)
	require.NoError(t, err)

	res := Validate(Request{Type: Heatmap}, frame)
	assert.ErrorIs(t, res.Err, ErrInsufficientDimensions)
}

func TestValidateNilFrame(t *testing.T) {
	res := Validate(Request{Type: Bar, XColumn: "Department"}, nil)
	assert.False(t, res.OK)
}

func TestResolveAliases(t *testing.T) {
	frame := workforce(t)
	req := ResolveAliases(Request{Type: Bar, XColumn: "Age Group", YColumn: "attrition_rate", Hue: "Gender"}, frame)
	assert.Equal(t, dataset.AgeGroupColumn, req.XColumn)
	assert.Equal(t, dataset.RateColumn, req.YColumn)
	assert.Equal(t, "Gender", req.Hue)

	// Real columns win over the table.
	assert.Equal(t, "Department", ResolveColumn("Department", frame))
	assert.Equal(t, "department", ResolveColumn("department", frame))
	assert.Equal(t, dataset.IncomeBandColumn, ResolveColumn("Salary Band", frame))
}
