package models

import (
	"time"

	"attritioninsight/plot"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	StatusSuccess = "success"
	StatusError   = "error"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResult is the outcome of one conversational turn. PlotImage is
// encoded as base64 in JSON.
type ChatResult struct {
	Response  string        `json:"response"`
	Status    string        `json:"status"`
	SessionID string        `json:"session_id,omitempty"`
	PlotData  *plot.Request `json:"plot_data,omitempty"`
	PlotImage []byte        `json:"plot_image,omitempty"`
	PlotFile  string        `json:"plot_file,omitempty"`
}

type ResetRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type HistoryResponse struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

type SessionInfo struct {
	ID        string    `json:"id"`
	Messages  int       `json:"messages"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PlotResponse struct {
	Status    string `json:"status"`
	PlotImage []byte `json:"plot_image,omitempty"`
	PlotFile  string `json:"plot_file,omitempty"`
	Message   string `json:"message,omitempty"`
}

// CategoryReport is the attrition breakdown over one grouping.
type CategoryReport struct {
	Labels   []string  `json:"labels"`
	YesCount []int     `json:"yesCount"`
	NoCount  []int     `json:"noCount"`
	Rates    []float64 `json:"rates"`
}

type OverallStatistics struct {
	TotalEmployees int     `json:"totalEmployees"`
	AttritionCount int     `json:"attritionCount"`
	RetentionCount int     `json:"retentionCount"`
	AttritionRate  float64 `json:"attritionRate"`
}

type FactorCorrelations struct {
	Factors      []string  `json:"factors"`
	Correlations []float64 `json:"correlations"`
}

type PredictiveFactors struct {
	Factors    []string  `json:"factors"`
	Importance []float64 `json:"importance"`
}

type EmployeeCount struct {
	Total    int `json:"total"`
	Attrited int `json:"attrited"`
	Active   int `json:"active"`
}

type DepartmentStat struct {
	Name      string  `json:"name"`
	Count     int     `json:"count"`
	Attrition int     `json:"attrition"`
	Rate      float64 `json:"rate"`
}

type FilteredStatistics struct {
	OverallStatistics
	FilteredData    bool             `json:"filteredData"`
	DepartmentStats []DepartmentStat `json:"departmentStats"`
}

type DatasetInfo struct {
	Source  string   `json:"source"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}
