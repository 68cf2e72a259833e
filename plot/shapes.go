package plot

import (
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pieSlices draws wedges of the unit circle, clockwise from twelve o'clock.
type pieSlices struct {
	values []float64
	colors []color.Color
}

func (ps *pieSlices) Plot(c draw.Canvas, plt *gplot.Plot) {
	trX, trY := plt.Transforms(&c)
	total := floats.Sum(ps.values)
	if total <= 0 {
		return
	}
	start := math.Pi / 2
	for i, v := range ps.values {
		sweep := 2 * math.Pi * v / total
		steps := int(math.Max(2, math.Ceil(sweep/(math.Pi/90))))
		pts := make([]vg.Point, 0, steps+2)
		pts = append(pts, vg.Point{X: trX(0), Y: trY(0)})
		for k := 0; k <= steps; k++ {
			a := start - sweep*float64(k)/float64(steps)
			pts = append(pts, vg.Point{X: trX(math.Cos(a)), Y: trY(math.Sin(a))})
		}
		c.FillPolygon(ps.colors[i], pts)
		start -= sweep
	}
}

func (ps *pieSlices) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -1.1, 1.1, -1.1, 1.1
}

const (
	violinHalfWidth = 0.4
	violinSamples   = 100
)

// violin draws a mirrored kernel density of one group centred on loc.
type violin struct {
	loc    float64
	lo, hi float64
	ys     []float64
	widths []float64
	median float64
	color  color.Color
}

func newViolin(loc float64, values []float64, clr color.Color) *violin {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	v := &violin{
		loc:    loc,
		lo:     sorted[0],
		hi:     sorted[len(sorted)-1],
		median: sorted[len(sorted)/2],
		color:  clr,
	}
	if len(sorted)%2 == 0 {
		v.median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}

	k, ok := newKDE(sorted)
	if !ok || v.hi == v.lo {
		// Degenerate group: a flat bar at the single value.
		v.ys = []float64{v.lo, v.hi}
		v.widths = []float64{violinHalfWidth, violinHalfWidth}
		return v
	}
	v.lo -= k.bandwidth
	v.hi += k.bandwidth
	step := (v.hi - v.lo) / float64(violinSamples-1)
	peak := 0.0
	for i := 0; i < violinSamples; i++ {
		y := v.lo + step*float64(i)
		d := k.at(y)
		v.ys = append(v.ys, y)
		v.widths = append(v.widths, d)
		peak = math.Max(peak, d)
	}
	for i := range v.widths {
		v.widths[i] = v.widths[i] / peak * violinHalfWidth
	}
	return v
}

func (v *violin) Plot(c draw.Canvas, plt *gplot.Plot) {
	trX, trY := plt.Transforms(&c)
	pts := make([]vg.Point, 0, 2*len(v.ys))
	for i, y := range v.ys {
		pts = append(pts, vg.Point{X: trX(v.loc - v.widths[i]), Y: trY(y)})
	}
	for i := len(v.ys) - 1; i >= 0; i-- {
		pts = append(pts, vg.Point{X: trX(v.loc + v.widths[i]), Y: trY(v.ys[i])})
	}
	c.FillPolygon(v.color, pts)

	median := draw.LineStyle{Color: color.Black, Width: vg.Points(1.5)}
	c.StrokeLine2(median,
		trX(v.loc-violinHalfWidth/2), trY(v.median),
		trX(v.loc+violinHalfWidth/2), trY(v.median))
}

func (v *violin) DataRange() (xmin, xmax, ymin, ymax float64) {
	ymin, ymax = v.lo, v.hi
	if ymin == ymax {
		ymin, ymax = ymin-0.5, ymax+0.5
	}
	return v.loc - violinHalfWidth, v.loc + violinHalfWidth, ymin, ymax
}
