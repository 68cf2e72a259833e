package plot

import (
	"bytes"
	"fmt"

	"go.uber.org/atomic"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"attritioninsight/dataset"
)

const (
	DefaultWidth  = 10.0
	DefaultHeight = 6.0
	DefaultDPI    = 100
)

// Renderer draws validated requests to PNG. It is safe for concurrent use;
// every call works on its own drawing surface.
type Renderer struct {
	width, height vg.Length
	dpi           int

	surfaces *atomic.Int64

	// afterDraw runs between drawing and encoding. Tests use it to fail
	// mid-render.
	afterDraw func()
}

// NewRenderer returns a renderer producing images of the given size in
// inches. Non-positive values select the defaults.
func NewRenderer(widthIn, heightIn float64, dpi int) *Renderer {
	if widthIn <= 0 {
		widthIn = DefaultWidth
	}
	if heightIn <= 0 {
		heightIn = DefaultHeight
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Renderer{
		width:    vg.Length(widthIn) * vg.Inch,
		height:   vg.Length(heightIn) * vg.Inch,
		dpi:      dpi,
		surfaces: atomic.NewInt64(0),
	}
}

// Outstanding returns the number of drawing surfaces currently held.
func (r *Renderer) Outstanding() int64 {
	return r.surfaces.Load()
}

type surface struct {
	canvas *vgimg.Canvas
	live   *atomic.Int64
}

func (r *Renderer) acquire(square bool) *surface {
	w, h := r.width, r.height
	if square {
		w = h
	}
	r.surfaces.Inc()
	return &surface{
		canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(r.dpi)),
		live:   r.surfaces,
	}
}

func (s *surface) release() {
	if s.canvas == nil {
		return
	}
	s.canvas = nil
	s.live.Dec()
}

// Render draws req from view and returns the encoded PNG. Any failure,
// including a panic inside the plotting library, yields ErrRender and no
// image.
func (r *Renderer) Render(req Request, view *dataset.Frame) (img []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			img = nil
			err = fmt.Errorf("%w: %s: %v", ErrRender, req.Type, rec)
		}
	}()

	if view == nil {
		return nil, fmt.Errorf("%w: no dataset", ErrRender)
	}
	p, square, err := build(req, view)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRender, req.Type, err)
	}

	s := r.acquire(square)
	defer s.release()

	p.Draw(draw.New(s.canvas))
	if r.afterDraw != nil {
		r.afterDraw()
	}

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: s.canvas}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", ErrRender, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrRender)
	}
	return buf.Bytes(), nil
}

func build(req Request, view *dataset.Frame) (*gplot.Plot, bool, error) {
	p := gplot.New()
	p.Title.Text = req.DisplayTitle()

	var err error
	square := false
	switch req.Type {
	case Bar:
		err = barChart(p, req, view)
	case Histogram:
		err = histogramChart(p, req, view)
	case Scatter:
		err = scatterChart(p, req, view)
	case Pie:
		square = true
		err = pieChart(p, req, view)
	case Box:
		err = boxChart(p, req, view)
	case Violin:
		err = violinChart(p, req, view)
	case Heatmap:
		square = true
		err = heatmapChart(p, req, view)
	case Line:
		err = lineChart(p, req, view)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedPlotType, req.Type)
	}
	return p, square, err
}
