package service

import (
	"regexp"
	"strings"

	"attritioninsight/dataset"
	"attritioninsight/plot"
)

type fallbackRule struct {
	pattern *regexp.Regexp
	column  string
	label   string
}

// fallbackRules map a dimension mentioned in a question to the rate chart
// usually reported for it. Order decides which rule wins when a question
// mentions several dimensions.
var fallbackRules = []fallbackRule{
	{regexp.MustCompile(`\bdepartments?\b`), "Department", "Department"},
	{regexp.MustCompile(`\bage(s|d| groups?| bands?)?\b`), dataset.AgeGroupColumn, "Age Group"},
	{regexp.MustCompile(`\bgenders?\b`), "Gender", "Gender"},
	{regexp.MustCompile(`\beducation\b`), dataset.EducationLevelColumn, "Education Level"},
	{regexp.MustCompile(`\b(job )?satisfaction\b`), dataset.SatisfactionLevelColumn, "Job Satisfaction"},
	{regexp.MustCompile(`\b(salary|salaries|income)\b`), dataset.IncomeBandColumn, "Income Band"},
	{regexp.MustCompile(`\b(tenure|years at (the )?company)\b`), dataset.TenureBandColumn, "Tenure"},
	{regexp.MustCompile(`\b(job )?roles?\b`), "JobRole", "Job Role"},
	{regexp.MustCompile(`\bover ?time\b`), "OverTime", "Overtime"},
}

// FallbackRequest returns the predetermined bar chart for a question that
// names both the outcome and a known dimension. It is a narrow safety net
// for replies that forgot their chart, not a query interpreter.
func FallbackRequest(query, outcome string) (plot.Request, bool) {
	q := strings.ToLower(query)
	if outcome == "" {
		outcome = dataset.DefaultOutcome
	}
	if !strings.Contains(q, "attrition") && !strings.Contains(q, strings.ToLower(outcome)) {
		return plot.Request{}, false
	}
	for _, rule := range fallbackRules {
		if rule.pattern.MatchString(q) {
			return plot.Request{
				Type:    plot.Bar,
				XColumn: rule.column,
				YColumn: dataset.RateColumn,
				Title:   "Attrition Rate by " + rule.label,
			}, true
		}
	}
	return plot.Request{}, false
}
