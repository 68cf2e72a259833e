package plot

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attritioninsight/dataset"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRenderEveryType(t *testing.T) {
	frame := workforce(t)
	r := NewRenderer(4, 3, 72)

	tests := []Request{
		{Type: Bar, XColumn: "Department"},
		{Type: Bar, XColumn: "Department", YColumn: "MonthlyIncome"},
		{Type: Bar, XColumn: "Age"},
		{Type: Histogram, XColumn: "Age"},
		{Type: Scatter, XColumn: "Age", YColumn: "MonthlyIncome"},
		{Type: Scatter, XColumn: "Age", YColumn: "MonthlyIncome", Hue: "Gender"},
		{Type: Pie, XColumn: "Department"},
		{Type: Box, XColumn: "Department", YColumn: "MonthlyIncome"},
		{Type: Box, XColumn: "Age"},
		{Type: Violin, XColumn: "Gender", YColumn: "Age"},
		{Type: Violin, XColumn: "MonthlyIncome"},
		{Type: Heatmap},
		{Type: Heatmap, Columns: []string{"Age", "YearsAtCompany"}},
		{Type: Line, XColumn: "YearsAtCompany", YColumn: "MonthlyIncome"},
		{Type: Line, XColumn: "Department", YColumn: "Age"},
	}
	for _, req := range tests {
		t.Run(string(req.Type)+"/"+req.XColumn+"/"+req.YColumn, func(t *testing.T) {
			require.True(t, Validate(req, frame).OK)
			img, err := r.Render(req, frame)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(img, pngMagic))
			assert.Zero(t, r.Outstanding())
		})
	}
}

func TestRenderDepartmentRates(t *testing.T) {
	req, view, err := Prepare(Request{Type: Bar, XColumn: "Department", YColumn: "Attrition Rate"}, departments(t), "")
	require.NoError(t, err)

	img, err := NewRenderer(0, 0, 0).Render(req, view)
	require.NoError(t, err)
	assert.NotEmpty(t, img)
}

func TestRenderRotatesCrowdedAxis(t *testing.T) {
	req, view, err := Prepare(Request{Type: Bar, XColumn: "Age Group", YColumn: "Attrition Rate"}, workforce(t), "")
	require.NoError(t, err)

	img, err := NewRenderer(4, 3, 72).Render(req, view)
	require.NoError(t, err)
	assert.NotEmpty(t, img)
}

func TestRenderFailureReleasesSurface(t *testing.T) {
	frame := workforce(t)
	r := NewRenderer(4, 3, 72)

	img, err := r.Render(Request{Type: Scatter, XColumn: "Age", YColumn: "Nope"}, frame)
	assert.ErrorIs(t, err, ErrRender)
	assert.Nil(t, img)
	assert.Zero(t, r.Outstanding())

	img, err = r.Render(Request{Type: "sunburst", XColumn: "Age"}, frame)
	assert.ErrorIs(t, err, ErrRender)
	assert.Nil(t, img)
}

func TestRenderRecoversFromPanic(t *testing.T) {
	r := NewRenderer(4, 3, 72)
	r.afterDraw = func() { panic("canvas exploded") }

	for i := 0; i < 3; i++ {
		img, err := r.Render(Request{Type: Histogram, XColumn: "Age"}, workforce(t))
		require.ErrorIs(t, err, ErrRender)
		assert.Contains(t, err.Error(), "canvas exploded")
		assert.Nil(t, img)
	}
	assert.Zero(t, r.Outstanding())
}

func TestRenderConstantColumn(t *testing.T) {
	frame, err := dataset.NewFrame(
		dataset.NewNumeric("StandardHours", []float64{80, 80, 80, 80}),
		dataset.NewCategorical("Gender", []string{"Male", "Female", "Male", "Female"}),
	)
	require.NoError(t, err)
	r := NewRenderer(4, 3, 72)

	for _, req := range []Request{
		{Type: Violin, XColumn: "Gender", YColumn: "StandardHours"},
		{Type: Box, XColumn: "StandardHours"},
	} {
		img, err := r.Render(req, frame)
		require.NoError(t, err, req.Type)
		assert.NotEmpty(t, img)
	}
	assert.Zero(t, r.Outstanding())
}

func TestKDEIntegratesToOne(t *testing.T) {
	k, ok := newKDE([]float64{1, 2, 2, 3, 4, 7})
	require.True(t, ok)

	sum, step := 0.0, 0.01
	for x := -10.0; x < 20; x += step {
		sum += k.at(x) * step
	}
	assert.InDelta(t, 1.0, sum, 1e-3)

	_, ok = newKDE([]float64{5, 5, 5})
	assert.False(t, ok)
}
