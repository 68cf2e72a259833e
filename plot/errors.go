package plot

import "errors"

var (
	ErrUnknownColumn          = errors.New("unknown column")
	ErrMissingAxis            = errors.New("missing axis")
	ErrNonNumericColumn       = errors.New("column is not numeric")
	ErrInsufficientDimensions = errors.New("insufficient dimensions")
	ErrUnsupportedPlotType    = errors.New("unsupported plot type")

	// ErrRender wraps every failure raised while drawing or encoding a chart.
	ErrRender = errors.New("render failed")
)
