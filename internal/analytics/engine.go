package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"channelpulse/internal/calendar"
	"channelpulse/pkg/contracts/domain"
)

// IncompleteNote is shown next to a last period that is still accumulating
const IncompleteNote = "The last %s is incomplete."

// Options tune an Engine
type Options struct {
	DefaultWindowDays int
	HistogramBins     int
	RollingWindow     int
}

// Engine runs the full analytics pass for one view request
type Engine struct {
	clock  calendar.Clock
	opts   Options
	logger *slog.Logger
}

// NewEngine creates an engine. A nil clock uses the system clock and a nil
// logger uses slog.Default.
func NewEngine(clock calendar.Clock, opts Options, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = calendar.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DefaultWindowDays <= 0 {
		opts.DefaultWindowDays = DefaultWindowDays
	}
	if opts.HistogramBins <= 0 {
		opts.HistogramBins = DefaultHistogramBins
	}
	if opts.RollingWindow <= 0 {
		opts.RollingWindow = DefaultRollingWindow
	}
	return &Engine{clock: clock, opts: opts, logger: logger}
}

// Window is a resolved request: the raw records inside the date range plus
// the aggregated periods of the full series and of the selection.
type Window struct {
	Request  ViewRequest       `json:"request"`
	Series   domain.TimeSeries `json:"-"`
	All      []Period          `json:"-"`
	Selected []Period          `json:"-"`
	Now      time.Time         `json:"now"`
}

// Overview holds per-metric totals and last-period deltas for a set of periods
type Overview struct {
	Totals             map[domain.Metric]float64 `json:"totals"`
	Deltas             map[domain.Metric]Delta   `json:"deltas"`
	Periods            int                       `json:"periods"`
	LastPeriod         string                    `json:"last_period,omitempty"`
	LastPeriodComplete bool                      `json:"last_period_complete"`
	Note               string                    `json:"note,omitempty"`
}

// Report is the full result of one recompute pass
type Report struct {
	GeneratedAt  time.Time                     `json:"generated_at"`
	Start        time.Time                     `json:"start"`
	End          time.Time                     `json:"end"`
	Frequency    domain.Frequency              `json:"frequency"`
	Days         int                           `json:"days"`
	AllTime      Overview                      `json:"all_time"`
	Selected     Overview                      `json:"selected"`
	Periods      []Period                      `json:"periods"`
	Performance  PerformanceKPIs               `json:"performance"`
	Growth       map[domain.Metric]GrowthStats `json:"growth"`
	GrowthTrend  []Point                       `json:"growth_trend"`
	Trend        []Point                       `json:"trend"`
	Correlation  *CorrelationResult            `json:"correlation,omitempty"`
	Distribution *DistributionResult           `json:"distribution,omitempty"`
	Seasonality  SeasonalResult                `json:"seasonality"`
	Comparison   []BoxStats                    `json:"comparison"`
	Goal         *GoalProgress                 `json:"goal,omitempty"`
	Warnings     []string                      `json:"warnings,omitempty"`
}

// Resolve applies defaults, validates the request and slices the series.
// An empty date range selection fails with ErrEmptyWindow.
func (e *Engine) Resolve(ctx context.Context, series domain.TimeSeries, req ViewRequest) (*Window, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if series.Empty() {
		return nil, fmt.Errorf("resolve: %w: dataset has no records", domain.ErrEmptyWindow)
	}

	if req.Bins <= 0 {
		req.Bins = e.opts.HistogramBins
	}
	if req.RollingWindow <= 0 {
		req.RollingWindow = e.opts.RollingWindow
	}
	req = req.WithDefaults(series, e.opts.DefaultWindowDays)
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	filtered := series.Between(req.Start, req.End)
	if filtered.Empty() {
		return nil, fmt.Errorf("resolve: %w: no records between %s and %s", domain.ErrEmptyWindow,
			req.Start.Format(time.DateOnly), req.End.Format(time.DateOnly))
	}

	now := e.clock.Now()
	all, err := Aggregate(series, req.Frequency, now)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	return &Window{
		Request:  req,
		Series:   filtered,
		All:      all,
		Selected: FilterPeriods(all, req.Start, req.End),
		Now:      now,
	}, nil
}

// Run resolves the request and computes every report section
func (e *Engine) Run(ctx context.Context, series domain.TimeSeries, req ViewRequest) (*Report, error) {
	started := time.Now()

	w, err := e.Resolve(ctx, series, req)
	if err != nil {
		e.logger.WarnContext(ctx, "view request rejected", "error", err)
		return nil, err
	}

	e.logger.InfoContext(ctx, "starting analytics pass",
		"start", w.Request.Start.Format(time.DateOnly),
		"end", w.Request.End.Format(time.DateOnly),
		"frequency", w.Request.Frequency.String(),
		"records", w.Series.Len(),
		"periods", len(w.Selected),
	)

	rep, err := e.Report(ctx, w)
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "analytics pass complete",
		"duration", time.Since(started),
		"warnings", len(rep.Warnings),
	)
	return rep, nil
}

// Report computes every section over a resolved window. Sections are
// independent and run concurrently; sections that cannot be computed for
// the window are reported as warnings.
func (e *Engine) Report(ctx context.Context, w *Window) (*Report, error) {
	req := w.Request
	rep := &Report{
		GeneratedAt: w.Now,
		Start:       req.Start,
		End:         req.End,
		Frequency:   req.Frequency,
		Days:        w.Series.Len(),
		Periods:     w.Selected,
		AllTime:     NewOverview(w.All, req.Frequency),
		Selected:    NewOverview(w.Selected, req.Frequency),
	}

	var corrWarn string

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		kpis, err := Summarize(w.Series)
		if err != nil {
			return err
		}
		rep.Performance = kpis
		return nil
	})

	g.Go(func() error {
		rep.Growth = Growth(w.Series)
		rep.GrowthTrend = PercentChange(w.Series, req.TrendMetric)
		trend, err := RollingMean(w.Series, req.TrendMetric, req.RollingWindow)
		if err != nil {
			return err
		}
		rep.Trend = trend
		return nil
	})

	g.Go(func() error {
		corr, err := Correlate(w.Series, domain.TrackedMetrics)
		switch {
		case errors.Is(err, domain.ErrInsufficientData):
			corrWarn = err.Error()
		case err != nil:
			return err
		default:
			rep.Correlation = &corr
		}
		return gctx.Err()
	})

	g.Go(func() error {
		dist, err := AnalyzeDistribution(w.Series, req.DistributionMetric, req.Bins)
		if err != nil {
			return err
		}
		rep.Distribution = &dist
		return gctx.Err()
	})

	g.Go(func() error {
		rep.Seasonality = Seasonality(w.Series)
		cmp, err := NormalizedComparison(w.Series, domain.ComparisonMetrics)
		if err != nil {
			return err
		}
		rep.Comparison = cmp
		return nil
	})

	if req.Goal != nil {
		g.Go(func() error {
			goal, err := e.goal(w)
			if err != nil {
				return err
			}
			rep.Goal = &goal
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.logger.ErrorContext(ctx, "analytics pass failed", "error", err)
		return nil, fmt.Errorf("report: %w", err)
	}

	if corrWarn != "" {
		rep.Warnings = append(rep.Warnings, corrWarn)
	}
	if rep.Distribution != nil {
		rep.Warnings = append(rep.Warnings, rep.Distribution.Warnings...)
	}
	return rep, nil
}

func (e *Engine) goal(w *Window) (GoalProgress, error) {
	gr := w.Request.Goal
	progress, err := Progress(w.Series, gr.Metric, gr.Target)
	if err != nil {
		return GoalProgress{}, err
	}
	if !gr.TargetDate.IsZero() {
		progress = progress.WithDeadline(gr.TargetDate, w.Now)
	}
	return progress, nil
}

// Goal computes only goal progress for a resolved window
func (e *Engine) Goal(w *Window) (GoalProgress, error) {
	if w.Request.Goal == nil {
		return GoalProgress{}, fmt.Errorf("goal: %w", domain.ErrInvalidGoalTarget)
	}
	return e.goal(w)
}

// NewOverview totals the tracked metrics over periods and compares the last
// two. An incomplete last period carries a note.
func NewOverview(periods []Period, freq domain.Frequency) Overview {
	ov := Overview{
		Totals:  make(map[domain.Metric]float64, len(domain.TrackedMetrics)),
		Deltas:  make(map[domain.Metric]Delta, len(domain.TrackedMetrics)),
		Periods: len(periods),
	}
	for _, m := range domain.TrackedMetrics {
		ov.Totals[m] = SumPeriods(periods, m)
		ov.Deltas[m] = PeriodDelta(periods, m)
	}
	if len(periods) == 0 {
		return ov
	}

	last := periods[len(periods)-1]
	ov.LastPeriod = last.Label
	ov.LastPeriodComplete = last.Complete
	if !last.Complete {
		ov.Note = fmt.Sprintf(IncompleteNote, freq.Unit())
	}
	return ov
}
