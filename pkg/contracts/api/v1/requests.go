// Package api contains the query contracts of the analytics HTTP API.
// Version v1 represents the current stable API version.
package api

// DateRangeRequest represents an inclusive date range in requests
type DateRangeRequest struct {
	Start string `json:"start" query:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `json:"end" query:"end" validate:"omitempty,datetime=2006-01-02"`
}

// ReportQuery carries the query parameters shared by every analytics
// endpoint. Empty fields take the engine defaults.
type ReportQuery struct {
	DateRangeRequest

	Frequency  string `json:"frequency" query:"frequency" validate:"omitempty,frequency"`
	Metric     string `json:"metric" query:"metric" validate:"omitempty,metric"`
	GoalMetric string `json:"goal_metric" query:"goal_metric" validate:"required_with=GoalTarget,omitempty,metric"`
	GoalTarget string `json:"goal_target" query:"goal_target" validate:"required_with=GoalMetric,omitempty,numeric"`
	GoalDate   string `json:"goal_date" query:"goal_date" validate:"omitempty,datetime=2006-01-02"`
	Bins       string `json:"bins" query:"bins" validate:"omitempty,number"`
	Window     string `json:"window" query:"window" validate:"omitempty,number"`
}

// ExportQuery adds the download format to a report query
type ExportQuery struct {
	ReportQuery

	Format string `json:"format" query:"format" validate:"omitempty,oneof=csv xlsx"`
}
