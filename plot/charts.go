package plot

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"attritioninsight/dataset"
)

const (
	histogramBins = 20
	rotateAbove   = 5
)

var errNoData = errors.New("no plottable values")

func column(view *dataset.Frame, name string) (*dataset.Column, error) {
	col, ok := view.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return col, nil
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// rotateTicks slants x tick labels once there are too many to sit side by side.
func rotateTicks(p *gplot.Plot, n int) {
	if n <= rotateAbove {
		return
	}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
}

func barWidth(n int) vg.Length {
	w := 480 / float64(n)
	return vg.Points(math.Max(4, math.Min(48, w)))
}

// groupMeans averages y over the rows of each category of x.
func groupMeans(x, y *dataset.Column, cats []string) plotter.Values {
	sum := make(map[string]float64)
	n := make(map[string]float64)
	for i := 0; i < x.Len(); i++ {
		k := x.Text(i)
		if k == "" || math.IsNaN(y.Num[i]) {
			continue
		}
		sum[k] += y.Num[i]
		n[k]++
	}
	out := make(plotter.Values, len(cats))
	for i, c := range cats {
		if n[c] > 0 {
			out[i] = sum[c] / n[c]
		}
	}
	return out
}

// groupValues collects the finite y values of each category of x, dropping
// empty groups.
func groupValues(x, y *dataset.Column) ([]string, []plotter.Values) {
	byCat := make(map[string]plotter.Values)
	for i := 0; i < x.Len(); i++ {
		k := x.Text(i)
		v := y.Num[i]
		if k == "" || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		byCat[k] = append(byCat[k], v)
	}
	var cats []string
	var groups []plotter.Values
	for _, c := range x.Categories() {
		if vals := byCat[c]; len(vals) > 0 {
			cats = append(cats, c)
			groups = append(groups, vals)
		}
	}
	return cats, groups
}

func barChart(p *gplot.Plot, req Request, view *dataset.Frame) error {
	x, err := column(view, req.XColumn)
	if err != nil {
		return err
	}
	cats := x.Categories()
	if len(cats) == 0 {
		return errNoData
	}

	var values plotter.Values
	if req.YColumn == "" {
		counts := make(map[string]float64)
		for i := 0; i < x.Len(); i++ {
			if k := x.Text(i); k != "" {
				counts[k]++
			}
		}
		values = make(plotter.Values, len(cats))
		for i, c := range cats {
			values[i] = counts[c]
		}
		p.Y.Label.Text = "Count"
	} else {
		y, err := column(view, req.YColumn)
		if err != nil {
			return err
		}
		values = groupMeans(x, y, cats)
		p.Y.Label.Text = req.YColumn
	}

	bars, err := plotter.NewBarChart(values, barWidth(len(cats)))
	if err != nil {
		return err
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(cats...)
	p.X.Label.Text = req.XColumn
	rotateTicks(p, len(cats))
	return nil
}

func histogramChart(p *gplot.Plot, req Request, view *dataset.Frame) error {
	x, err := column(view, req.XColumn)
	if err != nil {
		return err
	}
	vals := finite(x.Num)
	if len(vals) == 0 {
		return errNoData
	}

	h, err := plotter.NewHist(plotter.Values(vals), histogramBins)
	if err != nil {
		return err
	}
	h.FillColor = plotutil.Color(0)
	p.Add(h)
	p.X.Label.Text = req.XColumn
	p.Y.Label.Text = "Frequency"

	// The density curve is scaled to counts so it overlays the bars.
	if kde, ok := newKDE(vals); ok && len(h.Bins) > 0 {
		scale := float64(len(vals)) * (h.Bins[0].Max - h.Bins[0].Min)
		f := plotter.NewFunction(func(v float64) float64 { return kde.at(v) * scale })
		f.XMin, f.XMax = floats.Min(vals), floats.Max(vals)
		f.Samples = 200
		f.Color = plotutil.Color(1)
		f.Width = vg.Points(2)
		p.Add(f)
	}
	return nil
}

func scatterChart(p *gplot.Plot, req Request, view *dataset.Frame) error {
	x, err := column(view, req.XColumn)
	if err != nil {
		return err
	}
	y, err := column(view, req.YColumn)
	if err != nil {
		return err
	}
	p.X.Label.Text = req.XColumn
	p.Y.Label.Text = req.YColumn

	groups := map[string]plotter.XYs{}
	order := []string{""}
	var hue *dataset.Column
	if req.Hue != "" {
		if hue, err = column(view, req.Hue); err != nil {
			return err
		}
		order = hue.Categories()
	}
	for i := 0; i < x.Len(); i++ {
		if math.IsNaN(x.Num[i]) || math.IsNaN(y.Num[i]) {
			continue
		}
		key := ""
		if hue != nil {
			if key = hue.Text(i); key == "" {
				continue
			}
		}
		groups[key] = append(groups[key], plotter.XY{X: x.Num[i], Y: y.Num[i]})
	}

	drawn := 0
	for i, key := range order {
		pts := groups[key]
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Radius = vg.Points(3)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		if hue != nil {
			p.Legend.Add(key, s)
		}
		drawn++
	}
	if drawn == 0 {
		return errNoData
	}
	p.Legend.Top = true
	return nil
}

func pieChart(p *gplot.Plot, req Request, view *dataset.Frame) error {
	x, err := column(view, req.XColumn)
	if err != nil {
		return err
	}
	counts := dataset.ValueCounts(x)
	if len(counts) == 0 {
		return errNoData
	}

	pie := &pieSlices{}
	total := 0.0
	for _, c := range counts {
		total += float64(c.Count)
	}
	labels := plotter.XYLabels{}
	start := math.Pi / 2
	for i, c := range counts {
		v := float64(c.Count)
		pie.values = append(pie.values, v)
		pie.colors = append(pie.colors, plotutil.Color(i))
		mid := start - math.Pi*v/total
		labels.XYs = append(labels.XYs, plotter.XY{X: 0.65 * math.Cos(mid), Y: 0.65 * math.Sin(mid)})
		labels.Labels = append(labels.Labels, fmt.Sprintf("%s\n%.1f%%", c.Value, v/total*100))
		start -= 2 * math.Pi * v / total
	}
	p.Add(pie)

	l, err := plotter.NewLabels(labels)
	if err != nil {
		return err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = text.XCenter
		l.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(l)
	p.HideAxes()
	return nil
}

// distributions returns the per-group values for box and violin charts: y
// grouped by x, or x alone when y is absent.
func distributions(p *gplot.Plot, req Request, view *dataset.Frame) ([]string, []plotter.Values, error) {
	x, err := column(view, req.XColumn)
	if err != nil {
		return nil, nil, err
	}
	if req.YColumn == "" {
		vals := finite(x.Num)
		if len(vals) == 0 {
			return nil, nil, errNoData
		}
		p.Y.Label.Text = req.XColumn
		return []string{req.XColumn}, []plotter.Values{vals}, nil
	}
	y, err := column(view, req.YColumn)
	if err != nil {
		return nil, nil, err
	}
	cats, groups := groupValues(x, y)
	if len(cats) == 0 {
		return nil, nil, errNoData
	}
	p.X.Label.Text = req.XColumn
	p.Y.Label.Text = req.YColumn
	return cats, groups, nil
}

func boxChart(p *gplot.Plot, req Request, view *dataset.Frame) error {
	cats, groups, err := distributions(p, req, view)
	if err != nil {
		return err
	}
	w := barWidth(len(cats))
	for i, vals := range groups {
		b, err := plotter.NewBoxPlot(w, float64(i), vals)
		if err != nil {
			return err
		}
		b.FillColor = plotutil.Color(i)
		p.Add(b)
	}
	p.NominalX(cats...)
	rotateTicks(p, len(cats))
	return nil
}

func violinChart(p *gplot.Plot, req Request, view *dataset.Frame) error {
	cats, groups, err := distributions(p, req, view)
	if err != nil {
		return err
	}
	for i, vals := range groups {
		p.Add(newViolin(float64(i), vals, plotutil.Color(i)))
	}
	p.NominalX(cats...)
	rotateTicks(p, len(cats))
	return nil
}

// corrGrid adapts a square correlation matrix to plotter.GridXYZ.
type corrGrid [][]float64

func (g corrGrid) Dims() (c, r int)   { return len(g), len(g) }
func (g corrGrid) Z(c, r int) float64 { return g[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

func heatmapChart(p *gplot.Plot, req Request, view *dataset.Frame) error {
	names := heatmapColumns(req, view)
	if len(names) < 2 {
		return ErrInsufficientDimensions
	}
	m, err := dataset.CorrelationMatrix(view, names)
	if err != nil {
		return err
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(corrGrid(m), cm.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Gray{Y: 200}
	p.Add(hm)

	labels := plotter.XYLabels{}
	for r := range m {
		for c := range m[r] {
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			labels.Labels = append(labels.Labels, fmt.Sprintf("%.2f", m[r][c]))
		}
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = text.XCenter
		l.TextStyle[i].YAlign = text.YCenter
		l.TextStyle[i].Font.Size = vg.Points(7)
	}
	p.Add(l)

	p.NominalX(names...)
	p.NominalY(names...)
	rotateTicks(p, len(names))
	return nil
}

func lineChart(p *gplot.Plot, req Request, view *dataset.Frame) error {
	x, err := column(view, req.XColumn)
	if err != nil {
		return err
	}
	y, err := column(view, req.YColumn)
	if err != nil {
		return err
	}
	p.X.Label.Text = req.XColumn
	p.Y.Label.Text = req.YColumn

	var pts plotter.XYs
	if x.IsNumeric() {
		// Mean y per distinct x, in x order.
		sum := make(map[float64]float64)
		n := make(map[float64]float64)
		for i := 0; i < x.Len(); i++ {
			if math.IsNaN(x.Num[i]) || math.IsNaN(y.Num[i]) {
				continue
			}
			sum[x.Num[i]] += y.Num[i]
			n[x.Num[i]]++
		}
		xs := make([]float64, 0, len(sum))
		for k := range sum {
			xs = append(xs, k)
		}
		sort.Float64s(xs)
		for _, k := range xs {
			pts = append(pts, plotter.XY{X: k, Y: sum[k] / n[k]})
		}
	} else {
		cats := x.Categories()
		for i, v := range groupMeans(x, y, cats) {
			pts = append(pts, plotter.XY{X: float64(i), Y: v})
		}
		p.NominalX(cats...)
		rotateTicks(p, len(cats))
	}
	if len(pts) == 0 {
		return errNoData
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(0)
	line.Width = vg.Points(2)
	points.GlyphStyle.Color = plotutil.Color(0)
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(line, points)
	return nil
}

// kde is a Gaussian kernel density estimate with Scott's bandwidth.
type kde struct {
	values    []float64
	bandwidth float64
}

func newKDE(values []float64) (kde, bool) {
	if len(values) < 2 {
		return kde{}, false
	}
	bw := 1.06 * stat.StdDev(values, nil) * math.Pow(float64(len(values)), -0.2)
	if bw <= 0 || math.IsNaN(bw) {
		return kde{}, false
	}
	return kde{values: values, bandwidth: bw}, true
}

func (k kde) at(x float64) float64 {
	sum := 0.0
	for _, v := range k.values {
		u := (x - v) / k.bandwidth
		sum += math.Exp(-0.5 * u * u)
	}
	return sum / (float64(len(k.values)) * k.bandwidth * math.Sqrt(2*math.Pi))
}
