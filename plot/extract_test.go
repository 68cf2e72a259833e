package plot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTaggedFence(t *testing.T) {
	text := "Here is the chart.\n```plot\n{\"type\": \"bar\", \"x_column\": \"Department\", \"y_column\": \"Attrition Rate\"}\n```\nSales leads."

	req, m := Extract(text)
	require.NotNil(t, req)
	assert.Equal(t, StageTaggedFence, m.Stage)
	assert.Equal(t, Request{Type: Bar, XColumn: "Department", YColumn: "Attrition Rate"}, *req)
	assert.Equal(t, "Here is the chart.\n\nSales leads.", Strip(text, m))
}

func TestExtractJSONFenceWithComments(t *testing.T) {
	text := "Roles compared:\n```json\n{\n  // chart\n  \"type\": \"bar\",\n  \"x_column\": \"JobRole\",\n  \"title\": \"Roles\",\n}\n```"

	req, m := Extract(text)
	require.NotNil(t, req)
	assert.Equal(t, StageJSONFence, m.Stage)
	assert.Equal(t, "JobRole", req.XColumn)
	assert.Equal(t, "Roles", req.Title)
	assert.Equal(t, "Roles compared:", Strip(text, m))
}

func TestExtractPrefersTaggedFence(t *testing.T) {
	text := "```json\n{\"type\": \"pie\", \"x_column\": \"Gender\"}\n```\n```plot\n{\"type\": \"histogram\", \"x_column\": \"Age\"}\n```"

	req, m := Extract(text)
	require.NotNil(t, req)
	assert.Equal(t, StageTaggedFence, m.Stage)
	assert.Equal(t, Histogram, req.Type)
}

func TestExtractUntaggedFence(t *testing.T) {
	req, m := Extract("```\n{\"type\": \"PIE\", \"x_column\": \"Gender\"}\n```")
	require.NotNil(t, req)
	assert.Equal(t, StageAnyFence, m.Stage)
	assert.Equal(t, Pie, req.Type)
}

func TestExtractOneLineFence(t *testing.T) {
	req, m := Extract("```json {\"type\": \"line\", \"x_column\": \"Age\", \"y_column\": \"MonthlyIncome\"}```")
	require.NotNil(t, req)
	assert.Equal(t, StageJSONFence, m.Stage)
	assert.Equal(t, "MonthlyIncome", req.YColumn)
}

func TestExtractUnterminatedFence(t *testing.T) {
	req, m := Extract("```plot\n{\"type\": \"bar\", \"x_column\": \"Gender\"}")
	require.NotNil(t, req)
	assert.Equal(t, StageTaggedFence, m.Stage)
}

func TestExtractBareObject(t *testing.T) {
	text := `Try this {"type": "histogram", "x_column": "Age"} for age.`

	req, m := Extract(text)
	require.NotNil(t, req)
	assert.Equal(t, StageBareObject, m.Stage)
	assert.Equal(t, "Age", req.XColumn)
	assert.NotContains(t, Strip(text, m), "histogram")
}

func TestExtractSmallestBalancedSpan(t *testing.T) {
	text := `Result: {"plot": {"type": "box", "x_column": "Department", "y_column": "MonthlyIncome"}, "note": "ok"}`

	req, m := Extract(text)
	require.NotNil(t, req)
	assert.Equal(t, StageBareObject, m.Stage)
	assert.Equal(t, Box, req.Type)
	assert.Equal(t, `{"type": "box", "x_column": "Department", "y_column": "MonthlyIncome"}`, text[m.Start:m.End])
}

func TestExtractKeyScan(t *testing.T) {
	text := `Use "type": "scatter" with "x_column": "Age" and "y_column": "MonthlyIncome".`

	req, m := Extract(text)
	require.NotNil(t, req)
	assert.Equal(t, StageKeyScan, m.Stage)
	assert.Equal(t, Request{Type: Scatter, XColumn: "Age", YColumn: "MonthlyIncome"}, *req)
	assert.Equal(t, text, Strip(text, m))
}

func TestExtractKeyScanHeatmapWithoutX(t *testing.T) {
	req, m := Extract(`Draw "type": "heatmap" over the numeric columns.`)
	require.NotNil(t, req)
	assert.Equal(t, StageKeyScan, m.Stage)
	assert.Equal(t, Heatmap, req.Type)
}

func TestExtractNone(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "prose", text: "Attrition is highest in Sales."},
		{name: "braces without type", text: "Use {curly} braces {here}."},
		{name: "not json", text: "{not json at all}"},
		{name: "truncated", text: `{"type": "hist`},
		{name: "truncated x_column", text: `{"type": "bar", "x_column": "Depa`},
		{name: "type without x_column", text: `Try a "type": "bar" chart.`},
		{name: "fence without type", text: "```json\n{\"x_column\": \"Age\"}\n```"},
		{name: "unquoted key", text: "type: bar"},
		{name: "type not a string", text: `{"type": 3, "x_column": "Age"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, m := Extract(tt.text)
			assert.Nil(t, req)
			assert.Equal(t, StageNone, m.Stage)
		})
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	texts := []string{
		"",
		"nothing here",
		"```plot\n{\"type\": \"bar\", \"x_column\": \"Department\"}\n```",
		`{"plot": {"type": "box", "x_column": "Department"}}`,
	}
	for _, text := range texts {
		before := text
		r1, m1 := Extract(text)
		r2, m2 := Extract(text)
		assert.Equal(t, r1, r2)
		assert.Equal(t, m1, m2)
		assert.Equal(t, before, text)
	}
}

func TestExtractColumnsList(t *testing.T) {
	req, _ := Extract("```plot\n{\"type\": \"heatmap\", \"columns\": [\"Age\", \"MonthlyIncome\", 4]}\n```")
	require.NotNil(t, req)
	assert.Equal(t, []string{"Age", "MonthlyIncome"}, req.Columns)
}
