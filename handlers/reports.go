package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"attritioninsight/dataset"
	"attritioninsight/service"
)

// AttritionByHandler returns the handler for one /api/attrition-by-<dimension>
// report. Dimensions: age, gender, department, education, job-satisfaction,
// salary, tenure.
// @Summary      Attrition by dimension
// @Description  Attrition counts and rates per category. Age uses five-year bands, salary uses income quartiles, tenure uses 0-2/2-5/5-10/10+ years.
// @Tags         Reports
// @Produce      json
// @Success      200  {object}  models.CategoryReport
// @Failure      422  {object}  map[string]string  "Dataset lacks the column"
// @Router       /api/attrition-by-age [get]
// @Router       /api/attrition-by-gender [get]
// @Router       /api/attrition-by-department [get]
// @Router       /api/attrition-by-education [get]
// @Router       /api/attrition-by-job-satisfaction [get]
// @Router       /api/attrition-by-salary [get]
// @Router       /api/attrition-by-tenure [get]
func (h *Handlers) AttritionByHandler(dimension string) gin.HandlerFunc {
	return func(c *gin.Context) {
		frame, ok := h.frame(c)
		if !ok {
			return
		}
		report, err := service.AttritionBy(frame, dimension, h.data.Outcome())
		if err != nil {
			h.reportError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// OverallStatisticsHandler godoc
// @Summary      Overall attrition statistics
// @Tags         Reports
// @Produce      json
// @Success      200  {object}  models.OverallStatistics
// @Router       /api/overall-statistics [get]
func (h *Handlers) OverallStatisticsHandler(c *gin.Context) {
	frame, ok := h.frame(c)
	if !ok {
		return
	}
	stats, err := service.OverallStatistics(frame, h.data.Outcome())
	if err != nil {
		h.reportError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// EmployeeCountHandler godoc
// @Summary      Employee counts
// @Tags         Reports
// @Produce      json
// @Success      200  {object}  models.EmployeeCount
// @Router       /api/employee-count [get]
func (h *Handlers) EmployeeCountHandler(c *gin.Context) {
	frame, ok := h.frame(c)
	if !ok {
		return
	}
	count, err := service.EmployeeCount(frame, h.data.Outcome())
	if err != nil {
		h.reportError(c, err)
		return
	}
	c.JSON(http.StatusOK, count)
}

// FactorsCorrelationHandler godoc
// @Summary      Factor correlations
// @Description  Signed Pearson correlation of common HR factors with attrition, strongest positive first.
// @Tags         Reports
// @Produce      json
// @Success      200  {object}  models.FactorCorrelations
// @Router       /api/factors-correlation [get]
func (h *Handlers) FactorsCorrelationHandler(c *gin.Context) {
	frame, ok := h.frame(c)
	if !ok {
		return
	}
	corr, err := service.FactorCorrelations(frame, h.data.Outcome())
	if err != nil {
		h.reportError(c, err)
		return
	}
	c.JSON(http.StatusOK, corr)
}

// PredictiveFactorsHandler godoc
// @Summary      Predictive factors
// @Description  The ten numeric columns with the largest absolute correlation with attrition.
// @Tags         Reports
// @Produce      json
// @Success      200  {object}  models.PredictiveFactors
// @Router       /api/predictive-factors [get]
func (h *Handlers) PredictiveFactorsHandler(c *gin.Context) {
	frame, ok := h.frame(c)
	if !ok {
		return
	}
	factors, err := service.PredictiveFactors(frame, h.data.Outcome())
	if err != nil {
		h.reportError(c, err)
		return
	}
	c.JSON(http.StatusOK, factors)
}

// FilteredDataHandler godoc
// @Summary      Filtered statistics
// @Tags         Reports
// @Produce      json
// @Param        tenureMin        query     number   false  "Minimum years at company"  default(0)
// @Param        tenureMax        query     number   false  "Maximum years at company"  default(100)
// @Param        satisfactionMin  query     number   false  "Minimum job satisfaction"  default(1)
// @Param        satisfactionMax  query     number   false  "Maximum job satisfaction"  default(5)
// @Param        performanceMin   query     number   false  "Minimum performance rating"  default(1)
// @Param        performanceMax   query     number   false  "Maximum performance rating"  default(5)
// @Param        departments      query     []string false  "Departments to keep"  collectionFormat(multi)
// @Param        gender           query     string   false  "all or a gender"  default(all)
// @Param        education        query     string   false  "all, highschool, bachelors, masters, phd"  default(all)
// @Param        role             query     string   false  "all, entrylevel, midlevel, seniorlevel, lead, manager, director, vp, executive"  default(all)
// @Param        atRisk           query     bool     false  "Only low satisfaction, poor work-life balance or overtime"
// @Success      200  {object}  models.FilteredStatistics
// @Failure      400  {object}  map[string]string
// @Router       /api/filtered-data [get]
func (h *Handlers) FilteredDataHandler(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	frame, ok := h.frame(c)
	if !ok {
		return
	}
	stats, err := service.FilteredStatistics(frame, criteria, h.data.Outcome())
	if err != nil {
		h.reportError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parseCriteria(c *gin.Context) (dataset.Criteria, error) {
	cr := dataset.DefaultCriteria()
	floats := []struct {
		key string
		dst *float64
	}{
		{"tenureMin", &cr.TenureMin},
		{"tenureMax", &cr.TenureMax},
		{"satisfactionMin", &cr.SatisfactionMin},
		{"satisfactionMax", &cr.SatisfactionMax},
		{"performanceMin", &cr.PerformanceMin},
		{"performanceMax", &cr.PerformanceMax},
	}
	for _, f := range floats {
		raw, ok := c.GetQuery(f.key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return cr, fmt.Errorf("invalid %s: %q", f.key, raw)
		}
		*f.dst = v
	}

	cr.Departments = c.QueryArray("departments")
	cr.Gender = strings.ToLower(c.DefaultQuery("gender", "all"))
	cr.Education = strings.ToLower(c.DefaultQuery("education", "all"))
	cr.Role = strings.ToLower(c.DefaultQuery("role", "all"))
	cr.AtRisk = strings.EqualFold(c.Query("atRisk"), "true")
	return cr, nil
}
