// Package analysis defines the data model returned by the remote analysis service
// and the KPI comparison computed between two stored analyses.
// These types are the shared vocabulary across the API, the CLI and storage.
package analysis

// AnalysisResult is one spreadsheet's computed analysis, as produced by the
// analysis service. It is persisted unchanged and treated as read-only.
type AnalysisResult struct {
	Summary    Summary           `json:"summary"`
	Columns    map[string]string `json:"columns,omitempty"` // column name -> detected type
	KPIs       []KPI             `json:"kpis"`
	Charts     []Chart           `json:"charts"`
	Alerts     []Alert           `json:"alerts"`
	Anomalies  []Anomaly         `json:"anomalies"`
	AIInsights *AIInsights       `json:"ai_insights,omitempty"`
}

// Summary holds sheet-level counts.
type Summary struct {
	TotalRows     int      `json:"total_rows"`
	TotalColumns  int      `json:"total_columns"`
	MissingValues int      `json:"missing_values"`
	ColumnsList   []string `json:"columns_list,omitempty"`
}

// KPI is the numeric summary of one spreadsheet column.
type KPI struct {
	Column  string  `json:"column"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int     `json:"count"`
}

// AlertType is the severity of an alert.
type AlertType string

const (
	AlertDanger  AlertType = "danger"
	AlertWarning AlertType = "warning"
	AlertInfo    AlertType = "info"
)

// Alert is a flagged condition such as a threshold breach.
type Alert struct {
	Type    AlertType `json:"type"`
	Message string    `json:"message"`
}

// Anomaly is an irregular data point or pattern.
type Anomaly struct {
	Column  string `json:"column,omitempty"`
	Count   int    `json:"count,omitempty"`
	Message string `json:"message"`
}

// Chart describes a chart the dashboard draws. Opaque to the core logic.
type Chart struct {
	Type   string    `json:"type"` // line, bar, donut
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	XCol   string    `json:"x_col,omitempty"`
	YCol   string    `json:"y_col,omitempty"`
}

// AIInsights is the optional AI-generated commentary. Field presence depends on
// the model and the language, so every field is optional and callers must
// handle absence.
type AIInsights struct {
	Domain        string       `json:"domain,omitempty"`
	HealthScore   *int         `json:"health_score,omitempty"`
	Insights      []string     `json:"insights,omitempty"`
	Strengths     []string     `json:"strengths,omitempty"`
	Weaknesses    []string     `json:"weaknesses,omitempty"`
	Opportunities []string     `json:"opportunities,omitempty"`
	Risks         []string     `json:"risks,omitempty"`
	ActionPlan    []ActionStep `json:"action_plan,omitempty"`
	Conclusion    string       `json:"conclusion,omitempty"`
}

// ActionStep is one recommended action in an AI action plan.
type ActionStep struct {
	Action   string `json:"action"`
	Priority string `json:"priority,omitempty"`
	Timeline string `json:"timeline,omitempty"`
}

// Envelope is the analysis service reply.
type Envelope struct {
	Status  string          `json:"status"` // success, error
	Data    *AnalysisResult `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// KPIIndex maps column names to KPIs. When a column appears more than once
// the last occurrence wins.
type KPIIndex map[string]KPI

// IndexKPIs builds the column index for the result. A nil result yields an empty index.
func (r *AnalysisResult) IndexKPIs() KPIIndex {
	if r == nil {
		return KPIIndex{}
	}
	idx := make(KPIIndex, len(r.KPIs))
	for _, k := range r.KPIs {
		idx[k.Column] = k
	}
	return idx
}

// AlertsOrEmpty returns the alerts, never nil.
func (r *AnalysisResult) AlertsOrEmpty() []Alert {
	if r == nil || r.Alerts == nil {
		return []Alert{}
	}
	return r.Alerts
}

// AnomaliesOrEmpty returns the anomalies, never nil.
func (r *AnalysisResult) AnomaliesOrEmpty() []Anomaly {
	if r == nil || r.Anomalies == nil {
		return []Anomaly{}
	}
	return r.Anomalies
}

// TotalRows returns summary.total_rows, or 0 for a nil result.
func (r *AnalysisResult) TotalRows() int {
	if r == nil {
		return 0
	}
	return r.Summary.TotalRows
}
