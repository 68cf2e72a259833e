package ai

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"attritioninsight/dataset"
	"attritioninsight/models"
	"attritioninsight/plot"
)

// BuildSystemContext constructs the system message for one turn from the
// current dataset summary, the chart catalog and the block format the reply
// parser understands.
func BuildSystemContext(summary dataset.Summary, outcome string) string {
	if outcome == "" {
		outcome = dataset.DefaultOutcome
	}

	info, err := sonic.ConfigStd.MarshalIndent(summary, "", "  ")
	if err != nil {
		info = []byte(fmt.Sprintf(`{"shape": "%d rows, %d columns"}`, summary.Rows, summary.Columns))
	}

	var b strings.Builder
	b.WriteString("You are an HR Analytics Assistant specialized in analyzing employee data.\n")
	b.WriteString("You have access to an HR dataset with the following structure and information:\n\n")
	b.Write(info)
	b.WriteString("\n\n")

	b.WriteString("Your capabilities include:\n")
	b.WriteString("1. Descriptive Analysis: Summarizing and describing patterns in the data\n")
	b.WriteString("2. Diagnostic Analysis: Finding causes of patterns and correlations\n")
	b.WriteString("3. Predictive Analysis: Forecasting future trends based on historical data\n")
	b.WriteString("4. Prescriptive Analysis: Recommending actions to address problems or opportunities\n\n")

	b.WriteString("When answering:\n")
	b.WriteString("- Keep responses concise and focused on HR insights\n")
	b.WriteString("- Indicate when you're making assumptions due to limited data\n")
	b.WriteString("- Clearly separate facts from interpretations\n")
	b.WriteString("- Use Markdown with headings, bullet points and tables; show percentages in parentheses\n\n")

	b.WriteString("Charts:\n")
	b.WriteString("When a chart would help, append exactly one block in this format after your answer:\n")
	b.WriteString("```plot\n")
	b.WriteString(`{"type": "bar", "x_column": "Department", "y_column": "Attrition Rate", "title": "Attrition Rate by Department"}`)
	b.WriteString("\n```\n")
	fmt.Fprintf(&b, "Supported types: %s.\n", joinTypes(plot.Types))
	b.WriteString("- x_column and y_column must be dataset columns or one of the derived columns below; names are case-sensitive\n")
	b.WriteString("- scatter and line need a numeric y_column; histogram needs a numeric x_column\n")
	b.WriteString("- hue is optional and colours scatter points by a categorical column\n")
	b.WriteString("- heatmap correlates numeric columns; list them in \"columns\" or omit it for all\n")
	b.WriteString("Derived columns:\n")
	fmt.Fprintf(&b, "- %q: five-year age bands (%s)\n", dataset.AgeGroupColumn, strings.Join(dataset.AgeBandLabels, ", "))
	fmt.Fprintf(&b, "- %q: income quartiles (%s)\n", dataset.IncomeBandColumn, strings.Join(dataset.IncomeBandLabels, ", "))
	fmt.Fprintf(&b, "- %q: years at company (%s)\n", dataset.TenureBandColumn, strings.Join(dataset.TenureBandLabels, ", "))
	fmt.Fprintf(&b, "- %q and %q: labelled Education and JobSatisfaction\n", dataset.EducationLevelColumn, dataset.SatisfactionLevelColumn)
	fmt.Fprintf(&b, "- %q: percentage of %s=Yes per x_column category; use it as y_column of a bar chart\n", dataset.RateColumn, outcome)
	fmt.Fprintf(&b, "- %q with %q: the strongest correlates of %s\n", dataset.FactorColumn, dataset.ImportanceColumn, outcome)
	b.WriteString("Omit the block when no chart is needed.\n")

	return b.String()
}

func joinTypes(types []plot.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// BuildMessages assembles the request messages: the system context followed
// by at most window of the most recent conversation messages, the new user
// message included.
func BuildMessages(system string, history []models.Message, query string, window int) []models.Message {
	convo := make([]models.Message, 0, len(history)+1)
	convo = append(convo, history...)
	convo = append(convo, models.Message{Role: models.RoleUser, Content: query})
	if window > 0 && len(convo) > window {
		convo = convo[len(convo)-window:]
	}

	out := make([]models.Message, 0, len(convo)+1)
	out = append(out, models.Message{Role: models.RoleSystem, Content: system})
	return append(out, convo...)
}
