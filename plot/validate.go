package plot

import (
	"errors"
	"fmt"

	"attritioninsight/dataset"
)

// ValidationResult reports whether a request can be drawn against a view.
type ValidationResult struct {
	OK     bool
	Reason string
	Err    error
}

// Validate checks req against view. Rules run in a fixed order and stop at the
// first failure: column presence, secondary axis, numeric requirements,
// heatmap dimensionality, then the chart type itself.
func Validate(req Request, view *dataset.Frame) ValidationResult {
	if err := validate(req, view); err != nil {
		return invalid(err)
	}
	return ValidationResult{OK: true}
}

func invalid(err error) ValidationResult {
	return ValidationResult{Reason: err.Error(), Err: err}
}

func validate(req Request, view *dataset.Frame) error {
	if view == nil {
		return errors.New("no dataset loaded")
	}

	// A heatmap spans the numeric columns and may omit x.
	if req.XColumn != "" || req.Type != Heatmap {
		if !view.Has(req.XColumn) {
			return fmt.Errorf("%w: x_column %q", ErrUnknownColumn, req.XColumn)
		}
	}
	if req.YColumn != "" && !view.Has(req.YColumn) {
		return fmt.Errorf("%w: y_column %q", ErrUnknownColumn, req.YColumn)
	}
	if req.Hue != "" && !view.Has(req.Hue) {
		return fmt.Errorf("%w: hue %q", ErrUnknownColumn, req.Hue)
	}
	for _, c := range req.Columns {
		if !view.Has(c) {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}

	if req.Type.needsY() && req.YColumn == "" {
		return fmt.Errorf("%w: %s needs y_column", ErrMissingAxis, req.Type)
	}

	for _, name := range numericRequirements(req) {
		col, _ := view.Column(name)
		if !col.IsNumeric() {
			return fmt.Errorf("%w: %s for %s", ErrNonNumericColumn, name, req.Type)
		}
	}

	if req.Type == Heatmap && len(heatmapColumns(req, view)) < 2 {
		return fmt.Errorf("%w: heatmap needs at least two numeric columns", ErrInsufficientDimensions)
	}

	if !req.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedPlotType, req.Type)
	}
	return nil
}

// numericRequirements lists the columns the chart type reads as numbers.
func numericRequirements(req Request) []string {
	switch req.Type {
	case Histogram:
		return []string{req.XColumn}
	case Scatter:
		return []string{req.XColumn, req.YColumn}
	case Line:
		return []string{req.YColumn}
	case Bar:
		if req.YColumn != "" {
			return []string{req.YColumn}
		}
	case Box, Violin:
		if req.YColumn != "" {
			return []string{req.YColumn}
		}
		return []string{req.XColumn}
	}
	return nil
}

// heatmapColumns returns the numeric columns a heatmap would correlate.
func heatmapColumns(req Request, view *dataset.Frame) []string {
	if len(req.Columns) == 0 {
		return view.NumericNames()
	}
	var out []string
	for _, name := range req.Columns {
		if col, ok := view.Column(name); ok && col.IsNumeric() {
			out = append(out, name)
		}
	}
	return out
}
