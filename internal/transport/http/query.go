package http

import (
	"net/url"
	"strconv"
	"time"

	"channelpulse/internal/analytics"
	apierrors "channelpulse/internal/errors"
	api "channelpulse/pkg/contracts/api/v1"
	"channelpulse/pkg/contracts/domain"
)

// bindReportQuery copies the analytics query parameters into the contract
func bindReportQuery(q url.Values) api.ReportQuery {
	return api.ReportQuery{
		DateRangeRequest: api.DateRangeRequest{
			Start: q.Get("start"),
			End:   q.Get("end"),
		},
		Frequency:  q.Get("frequency"),
		Metric:     q.Get("metric"),
		GoalMetric: q.Get("goal_metric"),
		GoalTarget: q.Get("goal_target"),
		GoalDate:   q.Get("goal_date"),
		Bins:       q.Get("bins"),
		Window:     q.Get("window"),
	}
}

// bindExportQuery is bindReportQuery plus the download format
func bindExportQuery(q url.Values) api.ExportQuery {
	return api.ExportQuery{
		ReportQuery: bindReportQuery(q),
		Format:      q.Get("format"),
	}
}

// toViewRequest converts a validated query into the engine's value object.
// Empty fields stay zero so the engine applies its defaults.
func toViewRequest(q api.ReportQuery) (analytics.ViewRequest, error) {
	var req analytics.ViewRequest
	var err error

	if req.Start, err = parseDate("start", q.Start); err != nil {
		return req, err
	}
	if req.End, err = parseDate("end", q.End); err != nil {
		return req, err
	}

	if q.Frequency != "" {
		if req.Frequency, err = domain.ParseFrequency(q.Frequency); err != nil {
			return req, err
		}
	}

	if q.Metric != "" {
		m, err := domain.ParseMetric(q.Metric)
		if err != nil {
			return req, err
		}
		req.TrendMetric = m
		req.DistributionMetric = m
	}

	if req.Bins, err = parseInt("bins", q.Bins); err != nil {
		return req, err
	}
	if req.RollingWindow, err = parseInt("window", q.Window); err != nil {
		return req, err
	}

	if q.GoalMetric != "" {
		goal := &analytics.GoalRequest{}
		if goal.Metric, err = domain.ParseMetric(q.GoalMetric); err != nil {
			return req, err
		}
		if goal.Target, err = strconv.ParseFloat(q.GoalTarget, 64); err != nil {
			return req, apierrors.InvalidParameter("goal_target", err)
		}
		if goal.TargetDate, err = parseDate("goal_date", q.GoalDate); err != nil {
			return req, err
		}
		req.Goal = goal
	}

	return req, nil
}

func parseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, apierrors.InvalidParameter(name, err)
	}
	return t, nil
}

func parseInt(name, value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, apierrors.InvalidParameter(name, err)
	}
	return n, nil
}
