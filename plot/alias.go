package plot

import (
	"strings"

	"attritioninsight/dataset"
)

// aliases maps the labels people and models use to the physical or derived
// column they mean. Keys are compared after foldKey.
var aliases = map[string]string{
	"agegroup":             dataset.AgeGroupColumn,
	"ageband":              dataset.AgeGroupColumn,
	"agerange":             dataset.AgeGroupColumn,
	"incomeband":           dataset.IncomeBandColumn,
	"incomelevel":          dataset.IncomeBandColumn,
	"salaryband":           dataset.IncomeBandColumn,
	"salarylevel":          dataset.IncomeBandColumn,
	"tenureband":           dataset.TenureBandColumn,
	"tenuregroup":          dataset.TenureBandColumn,
	"educationlevel":       dataset.EducationLevelColumn,
	"satisfactionlevel":    dataset.SatisfactionLevelColumn,
	"jobsatisfactionlevel": dataset.SatisfactionLevelColumn,
	"attritionrate":        dataset.RateColumn,
	"attritionrate(%)":     dataset.RateColumn,
	"attritionpercentage":  dataset.RateColumn,
	"topfactors":           dataset.FactorColumn,
	"factors":              dataset.FactorColumn,
	"factor":               dataset.FactorColumn,
	"importance":           dataset.ImportanceColumn,
	"correlation":          dataset.ImportanceColumn,
}

func foldKey(name string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(name)))
}

// ResolveColumn maps name through the alias table unless frame already has a
// column by that exact name.
func ResolveColumn(name string, frame *dataset.Frame) string {
	if name == "" || (frame != nil && frame.Has(name)) {
		return name
	}
	if target, ok := aliases[foldKey(name)]; ok {
		return target
	}
	return name
}

// ResolveAliases returns a copy of req with every column reference resolved.
func ResolveAliases(req Request, frame *dataset.Frame) Request {
	out := req
	out.XColumn = ResolveColumn(req.XColumn, frame)
	out.YColumn = ResolveColumn(req.YColumn, frame)
	out.Hue = ResolveColumn(req.Hue, frame)
	if len(req.Columns) > 0 {
		out.Columns = make([]string, len(req.Columns))
		for i, c := range req.Columns {
			out.Columns[i] = ResolveColumn(c, frame)
		}
	}
	return out
}
