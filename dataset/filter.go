package dataset

import (
	"math"
	"strings"
)

// Criteria selects employees for the filtered report. Conditions on columns
// the frame does not have are ignored.
type Criteria struct {
	TenureMin       float64
	TenureMax       float64
	SatisfactionMin float64
	SatisfactionMax float64
	PerformanceMin  float64
	PerformanceMax  float64
	Departments     []string
	Gender          string // "all" or a gender value
	Education       string // "all", highschool, bachelors, masters, phd
	Role            string // "all", entrylevel … executive
	AtRisk          bool
}

// DefaultCriteria matches every employee.
func DefaultCriteria() Criteria {
	return Criteria{
		TenureMin:       0,
		TenureMax:       100,
		SatisfactionMin: 1,
		SatisfactionMax: 5,
		PerformanceMin:  1,
		PerformanceMax:  5,
		Gender:          "all",
		Education:       "all",
		Role:            "all",
	}
}

var educationCodes = map[string]float64{"highschool": 1, "bachelors": 2, "masters": 3, "phd": 4}

var roleLevels = map[string]float64{
	"entrylevel": 1, "midlevel": 2, "seniorlevel": 3, "lead": 4,
	"manager": 5, "director": 6, "vp": 7, "executive": 8,
}

// Filter returns the rows of frame matching c.
func Filter(frame *Frame, c Criteria) *Frame {
	tenure, _ := frame.Column("YearsAtCompany")
	satisfaction, _ := frame.Column("JobSatisfaction")
	performance, _ := frame.Column("PerformanceRating")
	worklife, _ := frame.Column("WorkLifeBalance")
	overtime, _ := frame.Column("OverTime")
	department, _ := frame.Column("Department")
	gender, _ := frame.Column("Gender")
	education, _ := frame.Column("Education")
	level, _ := frame.Column("JobLevel")

	departments := make(map[string]bool, len(c.Departments))
	for _, d := range c.Departments {
		departments[d] = true
	}
	eduCode, eduOK := educationCodes[c.Education]
	roleCode, roleOK := roleLevels[c.Role]

	return frame.Where(func(i int) bool {
		if !inRange(tenure, i, c.TenureMin, c.TenureMax) ||
			!inRange(satisfaction, i, c.SatisfactionMin, c.SatisfactionMax) ||
			!inRange(performance, i, c.PerformanceMin, c.PerformanceMax) {
			return false
		}
		if len(departments) > 0 && department != nil && !departments[department.Text(i)] {
			return false
		}
		if c.Gender != "" && c.Gender != "all" && gender != nil && !strings.EqualFold(gender.Text(i), c.Gender) {
			return false
		}
		if eduOK && education != nil && education.IsNumeric() && education.Num[i] != eduCode {
			return false
		}
		if roleOK && level != nil && level.IsNumeric() && level.Num[i] != roleCode {
			return false
		}
		if c.AtRisk {
			low := func(col *Column) bool { return col != nil && col.IsNumeric() && col.Num[i] <= 2 }
			overtimeYes := overtime != nil && strings.EqualFold(overtime.Text(i), "yes")
			if !low(satisfaction) && !low(worklife) && !overtimeYes {
				return false
			}
		}
		return true
	})
}

func inRange(col *Column, i int, lo, hi float64) bool {
	if col == nil || !col.IsNumeric() {
		return true
	}
	v := col.Num[i]
	if math.IsNaN(v) {
		return false
	}
	return v >= lo && v <= hi
}
