package plot

import (
	"fmt"

	"attritioninsight/dataset"
)

// Prepare resolves aliases in req and builds the view it should be drawn
// from: band and level columns are derived on demand, "Attrition Rate" is
// computed per x category for charts that plot one y per category, and
// "Factor" switches to the top-factor table.
// The source frame is never modified. Derivation failures are returned so the
// caller can drop the request like any other validation failure.
func Prepare(req Request, frame *dataset.Frame, outcome string) (Request, *dataset.Frame, error) {
	if frame == nil {
		return req, nil, fmt.Errorf("prepare %s: no dataset loaded", req.Type)
	}
	req = ResolveAliases(req, frame)
	if outcome == "" {
		outcome = dataset.DefaultOutcome
	}

	if req.XColumn == dataset.FactorColumn || req.XColumn == dataset.ImportanceColumn {
		view, err := dataset.TopFactors(frame, outcome, dataset.DefaultTopN)
		if err != nil {
			return req, nil, fmt.Errorf("prepare top factors: %w", err)
		}
		req.XColumn = dataset.FactorColumn
		if req.YColumn == "" && req.Type == Bar {
			req.YColumn = dataset.ImportanceColumn
		}
		return req, view, nil
	}

	// A pie shares out the x distribution itself; a rate per slice would
	// draw every category the same size.
	if req.Type == Pie && req.YColumn == dataset.RateColumn {
		req.YColumn = ""
	}

	view := frame
	for _, name := range []string{req.XColumn, req.YColumn, req.Hue} {
		if name == "" || view.Has(name) {
			continue
		}
		v, ok := dataset.ViewFor(name)
		if !ok || v == dataset.ViewTopFactors {
			continue
		}
		derived, err := dataset.Derive(view, v, dataset.Params{})
		if err != nil {
			return req, nil, fmt.Errorf("prepare %s: %w", name, err)
		}
		view = derived
	}

	if req.YColumn == dataset.RateColumn && req.Type.aggregatesY() &&
		!view.Has(dataset.RateColumn) && view.Has(req.XColumn) {
		rates, err := dataset.RateByCategory(view, req.XColumn, outcome)
		if err != nil {
			return req, nil, fmt.Errorf("prepare rate by %s: %w", req.XColumn, err)
		}
		view = rates
	}
	return req, view, nil
}
