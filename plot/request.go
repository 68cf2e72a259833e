package plot

import (
	"fmt"
	"strings"
)

// Type is a supported chart kind.
type Type string

const (
	Bar       Type = "bar"
	Histogram Type = "histogram"
	Scatter   Type = "scatter"
	Pie       Type = "pie"
	Box       Type = "box"
	Violin    Type = "violin"
	Heatmap   Type = "heatmap"
	Line      Type = "line"
)

// Types lists every supported chart kind in catalog order.
var Types = []Type{Bar, Histogram, Scatter, Pie, Box, Violin, Heatmap, Line}

// Valid reports whether t is a supported chart kind.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// needsY reports whether the chart kind cannot be drawn without a y column.
func (t Type) needsY() bool {
	return t == Scatter || t == Line
}

// aggregatesY reports whether the chart plots one y value per x category,
// the shape of the per-category rate table.
func (t Type) aggregatesY() bool {
	return t == Bar || t == Line || t == Scatter
}

// Request is the structured description of one chart.
type Request struct {
	Type    Type     `json:"type"`
	XColumn string   `json:"x_column"`
	YColumn string   `json:"y_column,omitempty"`
	Title   string   `json:"title,omitempty"`
	Hue     string   `json:"hue,omitempty"`
	Columns []string `json:"columns,omitempty"`
}

// DisplayTitle returns the requested title or one derived from the axes.
func (r Request) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	switch {
	case r.Type == Heatmap:
		return "Correlation Matrix"
	case r.YColumn != "":
		return fmt.Sprintf("%s by %s", r.YColumn, r.XColumn)
	case r.Type == Histogram:
		return fmt.Sprintf("Distribution of %s", r.XColumn)
	default:
		return r.XColumn
	}
}

// requestFromObject converts a decoded JSON object into a Request. The object
// must carry a non-empty string "type".
func requestFromObject(obj map[string]any) (*Request, bool) {
	raw, ok := obj["type"]
	if !ok {
		return nil, false
	}
	kind, ok := raw.(string)
	if !ok || strings.TrimSpace(kind) == "" {
		return nil, false
	}
	req := &Request{
		Type:    Type(strings.ToLower(strings.TrimSpace(kind))),
		XColumn: stringField(obj, "x_column"),
		YColumn: stringField(obj, "y_column"),
		Title:   stringField(obj, "title"),
		Hue:     stringField(obj, "hue"),
	}
	if cols, ok := obj["columns"].([]any); ok {
		for _, c := range cols {
			if s, ok := c.(string); ok && s != "" {
				req.Columns = append(req.Columns, s)
			}
		}
	}
	return req, true
}

func stringField(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
