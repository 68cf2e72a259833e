package service

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"attritioninsight/dataset"
	"attritioninsight/models"
)

var ErrUnknownDimension = errors.New("unknown report dimension")

// reportDimensions maps the report path segment to the grouping column and
// the derivation that produces it, if any.
var reportDimensions = map[string]struct {
	column string
	view   dataset.View
}{
	"age":              {dataset.AgeGroupColumn, dataset.ViewAgeBand},
	"gender":           {"Gender", ""},
	"department":       {"Department", ""},
	"education":        {dataset.EducationLevelColumn, dataset.ViewEducationLevel},
	"job-satisfaction": {dataset.SatisfactionLevelColumn, dataset.ViewSatisfactionLevel},
	"salary":           {dataset.IncomeBandColumn, dataset.ViewIncomeBand},
	"tenure":           {dataset.TenureBandColumn, dataset.ViewTenureBand},
}

// ReportDimensions lists the dimensions AttritionBy accepts, sorted.
func ReportDimensions() []string {
	out := make([]string, 0, len(reportDimensions))
	for k := range reportDimensions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// AttritionBy breaks attrition down over one dimension.
func AttritionBy(frame *dataset.Frame, dimension, outcome string) (models.CategoryReport, error) {
	dim, ok := reportDimensions[dimension]
	if !ok {
		return models.CategoryReport{}, fmt.Errorf("%w: %s", ErrUnknownDimension, dimension)
	}
	view := frame
	if dim.view != "" {
		var err error
		view, err = dataset.Derive(frame, dim.view, dataset.Params{Outcome: outcome})
		if err != nil {
			return models.CategoryReport{}, err
		}
	}
	return CategoryReport(view, dim.column, outcome)
}

// CategoryReport reports yes/no counts and the rate for each category of
// group.
func CategoryReport(frame *dataset.Frame, group, outcome string) (models.CategoryReport, error) {
	rates, err := dataset.RateByCategory(frame, group, outcome)
	if err != nil {
		return models.CategoryReport{}, err
	}
	labels, _ := rates.Column(group)
	counts, _ := rates.Column(dataset.CountColumn)
	positives, _ := rates.Column(dataset.PositiveColumn)
	rate, _ := rates.Column(dataset.RateColumn)

	n := rates.Rows()
	report := models.CategoryReport{
		Labels:   make([]string, n),
		YesCount: make([]int, n),
		NoCount:  make([]int, n),
		Rates:    make([]float64, n),
	}
	for i := 0; i < n; i++ {
		report.Labels[i] = labels.Text(i)
		report.YesCount[i] = int(positives.Num[i])
		report.NoCount[i] = int(counts.Num[i] - positives.Num[i])
		report.Rates[i] = rate.Num[i]
	}
	return report, nil
}

func outcomeCounts(frame *dataset.Frame, outcome string) (yes, no int, err error) {
	col, ok := frame.Column(outcome)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", dataset.ErrColumnNotFound, outcome)
	}
	values, err := col.Binary()
	if err != nil {
		return 0, 0, err
	}
	for _, v := range values {
		switch v {
		case 1:
			yes++
		case 0:
			no++
		}
	}
	return yes, no, nil
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return dataset.Round(float64(part)/float64(total)*100, 2)
}

func OverallStatistics(frame *dataset.Frame, outcome string) (models.OverallStatistics, error) {
	yes, no, err := outcomeCounts(frame, outcome)
	if err != nil {
		return models.OverallStatistics{}, err
	}
	total := frame.Rows()
	return models.OverallStatistics{
		TotalEmployees: total,
		AttritionCount: yes,
		RetentionCount: no,
		AttritionRate:  rate(yes, total),
	}, nil
}

func EmployeeCount(frame *dataset.Frame, outcome string) (models.EmployeeCount, error) {
	yes, no, err := outcomeCounts(frame, outcome)
	if err != nil {
		return models.EmployeeCount{}, err
	}
	return models.EmployeeCount{Total: frame.Rows(), Attrited: yes, Active: no}, nil
}

// correlationFactors are the columns the correlation report covers when the
// dataset has them.
var correlationFactors = []string{
	"Age", "DailyRate", "DistanceFromHome", "Education",
	"EnvironmentSatisfaction", "JobSatisfaction", "MonthlyIncome",
	"RelationshipSatisfaction", "WorkLifeBalance", "YearsAtCompany",
}

// FactorCorrelations reports signed Pearson correlations with the outcome,
// strongest positive first.
func FactorCorrelations(frame *dataset.Frame, outcome string) (models.FactorCorrelations, error) {
	var factors []string
	for _, f := range correlationFactors {
		if frame.Has(f) {
			factors = append(factors, f)
		}
	}
	if len(factors) == 0 {
		return models.FactorCorrelations{Factors: []string{}, Correlations: []float64{}}, nil
	}
	corr, err := dataset.Correlations(frame, outcome, factors)
	if err != nil {
		return models.FactorCorrelations{}, err
	}
	sort.SliceStable(corr, func(i, j int) bool { return corr[i].R > corr[j].R })

	out := models.FactorCorrelations{
		Factors:      make([]string, len(corr)),
		Correlations: make([]float64, len(corr)),
	}
	for i, c := range corr {
		out.Factors[i] = c.Factor
		out.Correlations[i] = c.R
	}
	return out, nil
}

// PredictiveFactors reports the ten numeric columns most correlated with the
// outcome in absolute terms.
func PredictiveFactors(frame *dataset.Frame, outcome string) (models.PredictiveFactors, error) {
	top, err := dataset.TopFactors(frame, outcome, dataset.DefaultTopN)
	if err != nil {
		return models.PredictiveFactors{}, err
	}
	names, _ := top.Column(dataset.FactorColumn)
	importance, _ := top.Column(dataset.ImportanceColumn)

	out := models.PredictiveFactors{
		Factors:    append([]string{}, names.Str...),
		Importance: append([]float64{}, importance.Num...),
	}
	return out, nil
}

// FilteredStatistics applies c and reports the overall and per-department
// figures of the remaining employees.
func FilteredStatistics(frame *dataset.Frame, c dataset.Criteria, outcome string) (models.FilteredStatistics, error) {
	filtered := dataset.Filter(frame, c)
	overall, err := OverallStatistics(filtered, outcome)
	if err != nil {
		return models.FilteredStatistics{}, err
	}

	out := models.FilteredStatistics{
		OverallStatistics: overall,
		FilteredData:      true,
		DepartmentStats:   []models.DepartmentStat{},
	}
	if !filtered.Has("Department") || filtered.Rows() == 0 {
		return out, nil
	}

	rates, err := dataset.RateByCategory(filtered, "Department", outcome)
	if err != nil {
		return models.FilteredStatistics{}, err
	}
	names, _ := rates.Column("Department")
	counts, _ := rates.Column(dataset.CountColumn)
	positives, _ := rates.Column(dataset.PositiveColumn)
	pct, _ := rates.Column(dataset.RateColumn)
	for i := 0; i < rates.Rows(); i++ {
		r := pct.Num[i]
		if math.IsNaN(r) {
			r = 0
		}
		out.DepartmentStats = append(out.DepartmentStats, models.DepartmentStat{
			Name:      names.Text(i),
			Count:     int(counts.Num[i]),
			Attrition: int(positives.Num[i]),
			Rate:      r,
		})
	}
	return out, nil
}
