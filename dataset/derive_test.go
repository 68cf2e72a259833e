package dataset

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeat(v string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func outcomes(yes, total int) []string {
	out := repeat("No", total)
	for i := 0; i < yes; i++ {
		out[i] = "Yes"
	}
	return out
}

func TestAgeBand(t *testing.T) {
	tests := []struct {
		age  float64
		want string
	}{
		{age: 18, want: "Under 20"},
		{age: 20, want: "20-24"},
		{age: 24.9, want: "20-24"},
		{age: 25, want: "25-29"},
		{age: 29, want: "25-29"},
		{age: 30, want: "30-34"},
		{age: 59, want: "55-59"},
		{age: 60, want: "60+"},
		{age: 71, want: "60+"},
		{age: math.NaN(), want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeBand(tt.age), "age %v", tt.age)
	}
}

func TestAgeBandsDoesNotMutateSource(t *testing.T) {
	frame, err := NewFrame(NewNumeric("Age", []float64{25, 29, 30}))
	require.NoError(t, err)

	view, err := Derive(frame, ViewAgeBand, Params{})
	require.NoError(t, err)

	assert.False(t, frame.Has(AgeGroupColumn))
	assert.Equal(t, 1, frame.Width())

	col, ok := view.Column(AgeGroupColumn)
	require.True(t, ok)
	assert.Equal(t, []string{"25-29", "25-29", "30-34"}, col.Str)
	assert.Equal(t, AgeBandLabels, col.Levels)
}

func TestTenureBand(t *testing.T) {
	assert.Equal(t, "0-2", TenureBand(0))
	assert.Equal(t, "0-2", TenureBand(1.99))
	assert.Equal(t, "2-5", TenureBand(2))
	assert.Equal(t, "5-10", TenureBand(5))
	assert.Equal(t, "10+", TenureBand(10))
	assert.Equal(t, "10+", TenureBand(40))
	assert.Equal(t, "", TenureBand(-1))
}

func TestTenureBandsFindsColumnByName(t *testing.T) {
	frame, err := NewFrame(NewNumeric("YearsAtCompany", []float64{1, 3, 12}))
	require.NoError(t, err)

	view, err := TenureBands(frame, "")
	require.NoError(t, err)
	col, _ := view.Column(TenureBandColumn)
	assert.Equal(t, []string{"0-2", "2-5", "10+"}, col.Str)
}

func TestQuantileBands(t *testing.T) {
	frame, err := NewFrame(NewNumeric("MonthlyIncome", []float64{1000, 2000, 3000, 4000, 5000, 6000, 7000, 8000}))
	require.NoError(t, err)

	view, err := Derive(frame, ViewIncomeBand, Params{})
	require.NoError(t, err)

	col, ok := view.Column(IncomeBandColumn)
	require.True(t, ok)
	assert.Equal(t, []string{"Low", "Low", "Medium", "Medium", "High", "High", "Very High", "Very High"}, col.Str)
}

func TestQuantileBandsHeavyTies(t *testing.T) {
	frame, err := NewFrame(NewNumeric("Salary", []float64{1, 1, 1, 1, 1, 1, 2, 3, 4}))
	require.NoError(t, err)

	view, err := QuantileBands(frame, "")
	require.NoError(t, err)
	col, _ := view.Column(IncomeBandColumn)
	assert.Equal(t, "Low", col.Str[0])
	assert.Equal(t, "Very High", col.Str[8])
}

func TestQuantileBandsInsufficientData(t *testing.T) {
	frame, err := NewFrame(NewNumeric("MonthlyIncome", []float64{10, 10, 20, 30, 30}))
	require.NoError(t, err)

	_, err = Derive(frame, ViewIncomeBand, Params{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestRateByCategoryOmitsFilteredCategories(t *testing.T) {
	groups := append(append(repeat("A", 10), repeat("B", 5)...), repeat("C", 4)...)
	attrition := append(append(outcomes(3, 10), outcomes(0, 5)...), outcomes(4, 4)...)
	frame, err := NewFrame(NewCategorical("Team", groups), NewBoolean("Attrition", attrition))
	require.NoError(t, err)

	team, _ := frame.Column("Team")
	filtered := frame.Where(func(i int) bool { return team.Str[i] != "C" })

	view, err := Derive(filtered, ViewRateByCategory, Params{GroupBy: "Team"})
	require.NoError(t, err)

	require.Equal(t, 2, view.Rows())
	g, _ := view.Column("Team")
	rate, _ := view.Column(RateColumn)
	count, _ := view.Column(CountColumn)
	pos, _ := view.Column(PositiveColumn)
	assert.Equal(t, []string{"A", "B"}, g.Str)
	assert.Equal(t, []float64{30, 0}, rate.Num)
	assert.Equal(t, []float64{10, 5}, count.Num)
	assert.Equal(t, []float64{3, 0}, pos.Num)
}

func TestRateByCategoryDepartments(t *testing.T) {
	depts := append(repeat("Sales", 100), repeat("R&D", 50)...)
	attrition := append(outcomes(20, 100), outcomes(5, 50)...)
	frame, err := NewFrame(NewCategorical("Department", depts), NewBoolean("Attrition", attrition))
	require.NoError(t, err)

	view, err := RateByCategory(frame, "Department", "Attrition")
	require.NoError(t, err)

	g, _ := view.Column("Department")
	rate, _ := view.Column(RateColumn)
	got := map[string]float64{}
	for i, k := range g.Str {
		got[k] = rate.Num[i]
	}
	assert.Equal(t, map[string]float64{"Sales": 20.0, "R&D": 10.0}, got)
}

func TestRateByCategoryFollowsLevels(t *testing.T) {
	frame, err := NewFrame(
		NewNumeric("Age", []float64{61, 22, 35, 23}),
		NewBoolean("Attrition", []string{"No", "Yes", "No", "No"}),
	)
	require.NoError(t, err)
	banded, err := AgeBands(frame, "")
	require.NoError(t, err)

	view, err := RateByCategory(banded, AgeGroupColumn, DefaultOutcome)
	require.NoError(t, err)
	g, _ := view.Column(AgeGroupColumn)
	rate, _ := view.Column(RateColumn)
	assert.Equal(t, []string{"20-24", "35-39", "60+"}, g.Str)
	assert.Equal(t, []float64{50, 0, 0}, rate.Num)
}

func TestRateByCategoryMissingColumn(t *testing.T) {
	frame, err := NewFrame(NewCategorical("Department", []string{"Sales"}))
	require.NoError(t, err)

	_, err = RateByCategory(frame, "Department", "Attrition")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestTopFactors(t *testing.T) {
	frame, err := NewFrame(
		NewNumeric("EmployeeNumber", []float64{1, 2, 3, 4, 5, 6}),
		NewNumeric("Overtime", []float64{1, 1, 1, 0, 0, 0}),
		NewNumeric("Mirror", []float64{0, 0, 0, 1, 1, 1}),
		NewNumeric("Noise", []float64{1, 2, 1, 2, 1, 2}),
		NewNumeric("StandardHours", []float64{80, 80, 80, 80, 80, 80}),
		NewBoolean("Attrition", []string{"Yes", "Yes", "Yes", "No", "No", "No"}),
	)
	require.NoError(t, err)

	view, err := Derive(frame, ViewTopFactors, Params{TopN: 5})
	require.NoError(t, err)

	factor, _ := view.Column(FactorColumn)
	importance, _ := view.Column(ImportanceColumn)
	// Overtime and Mirror tie at |r| = 1 and keep column order.
	assert.Equal(t, []string{"Overtime", "Mirror", "Noise"}, factor.Str)
	assert.InDelta(t, 1.0, importance.Num[0], 1e-9)
	assert.InDelta(t, 1.0, importance.Num[1], 1e-9)
	assert.Less(t, importance.Num[2], importance.Num[1])
}

func TestTopFactorsLimit(t *testing.T) {
	frame, err := NewFrame(
		NewNumeric("A", []float64{1, 2, 3, 4}),
		NewNumeric("B", []float64{4, 1, 3, 2}),
		NewBoolean("Attrition", []string{"No", "No", "Yes", "Yes"}),
	)
	require.NoError(t, err)

	view, err := TopFactors(frame, "Attrition", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Rows())
}

func TestLevelViews(t *testing.T) {
	frame, err := NewFrame(
		NewNumeric("Education", []float64{1, 3, 5, 9}),
		NewNumeric("JobSatisfaction", []float64{4, 2, 1, 3}),
	)
	require.NoError(t, err)

	edu, err := Derive(frame, ViewEducationLevel, Params{})
	require.NoError(t, err)
	col, _ := edu.Column(EducationLevelColumn)
	assert.Equal(t, []string{"Below College", "Bachelor", "Doctor", ""}, col.Str)

	sat, err := Derive(frame, ViewSatisfactionLevel, Params{})
	require.NoError(t, err)
	col, _ = sat.Column(SatisfactionLevelColumn)
	assert.Equal(t, []string{"Very High", "Medium", "Low", "High"}, col.Str)
}

func TestDeriveUnknownView(t *testing.T) {
	frame, err := NewFrame(NewNumeric("Age", []float64{30}))
	require.NoError(t, err)

	_, err = Derive(frame, View("nope"), Params{})
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestDeriveIsDeterministic(t *testing.T) {
	frame, err := NewFrame(NewNumeric("MonthlyIncome", []float64{5, 1, 9, 3, 7, 2}))
	require.NoError(t, err)

	a, err := Derive(frame, ViewIncomeBand, Params{})
	require.NoError(t, err)
	b, err := Derive(frame, ViewIncomeBand, Params{})
	require.NoError(t, err)

	ca, _ := a.Column(IncomeBandColumn)
	cb, _ := b.Column(IncomeBandColumn)
	assert.Equal(t, ca.Str, cb.Str)
	assert.NotSame(t, a, b)
}
