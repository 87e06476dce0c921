package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelpulse/internal/analytics"
	"channelpulse/internal/calendar"
	"channelpulse/internal/dataset"
	"channelpulse/internal/exporter"
	"channelpulse/pkg/contracts/domain"
)

var testStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// writeDataset writes n consecutive days starting on testStart. Views grow
// by 10 a day from 100.
func writeDataset(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("DATE,VIEWS,WATCH_HOURS,SUBSCRIBERS_GAINED,SUBSCRIBERS_LOST,LIKES,COMMENTS,SHARES\n")
	for i := 0; i < n; i++ {
		views := 100 + 10*i
		fmt.Fprintf(&b, "%s,%d,%d,%d,%d,%d,%d,%d\n",
			testStart.AddDate(0, 0, i).Format(time.DateOnly),
			views, views/10, 5+i%3, i%2, views/20, 3+i%4, 1+i%5)
	}
	path := filepath.Join(t.TempDir(), "channel.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func newTestService(t *testing.T, path string) *AnalyticsService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := dataset.NewCache(dataset.NewLoader(path, dataset.FormatCSV, logger), nil, logger)
	// the clock sits mid-week after the last record
	clock := calendar.FixedClock{At: testStart.AddDate(0, 0, 200)}
	engine := analytics.NewEngine(clock, analytics.Options{}, logger)
	return NewAnalyticsService(cache, engine, nil, nil, logger)
}

func window(startDay, endDay int, freq domain.Frequency) analytics.ViewRequest {
	return analytics.ViewRequest{
		Start:     testStart.AddDate(0, 0, startDay),
		End:       testStart.AddDate(0, 0, endDay),
		Frequency: freq,
	}
}

func TestAnalyticsServiceDatasetInfo(t *testing.T) {
	path := writeDataset(t, 60)
	svc := newTestService(t, path)

	info, err := svc.DatasetInfo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, path, info.Path)
	assert.Equal(t, "csv", info.Format)
	assert.Equal(t, 60, info.Records)
	assert.Equal(t, testStart, info.FirstDate)
	assert.Equal(t, testStart.AddDate(0, 0, 59), info.LastDate)
	assert.Len(t, info.Fingerprint, 64)
	assert.False(t, info.LoadedAt.IsZero())
}

func TestAnalyticsServiceReload(t *testing.T) {
	path := writeDataset(t, 30)
	svc := newTestService(t, path)
	ctx := context.Background()

	first, err := svc.DatasetInfo(ctx)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	content = append(content, []byte("2024-01-31,999,99,1,0,9,1,1\n")...)
	require.NoError(t, os.WriteFile(path, content, 0644))

	info, err := svc.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 31, info.Records)
	assert.NotEqual(t, first.Fingerprint, info.Fingerprint)
}

func TestAnalyticsServiceReport(t *testing.T) {
	svc := newTestService(t, writeDataset(t, 90))

	req := window(0, 89, domain.Monthly)
	req.Goal = &analytics.GoalRequest{Metric: domain.MetricViews, Target: 1_000_000}

	rep, err := svc.Report(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 90, rep.Days)
	require.Len(t, rep.Periods, 3)
	assert.Equal(t, "2024-01", rep.Periods[0].Label)
	assert.Equal(t, "2024-03", rep.Periods[2].Label)
	// views 100..990
	assert.InDelta(t, 545.0, rep.Performance.AvgViewsPerDay, 1e-9)
	require.NotNil(t, rep.Goal)
	require.NotNil(t, rep.Correlation)
	require.NotNil(t, rep.Distribution)
}

func TestAnalyticsServicePeriods(t *testing.T) {
	svc := newTestService(t, writeDataset(t, 14))

	view, err := svc.Periods(context.Background(), window(0, 13, domain.Weekly))
	require.NoError(t, err)

	require.Len(t, view.Periods, 2)
	assert.Equal(t, "2024-01-01", view.Periods[0].Label)
	assert.Equal(t, 2, view.Summary.Periods)

	// views 100..160 then 170..230
	assert.Equal(t, 910.0, view.Periods[0].Value(domain.MetricViews))
	assert.Equal(t, 1400.0, view.Periods[1].Value(domain.MetricViews))
	assert.Equal(t, 490.0, view.Summary.Deltas[domain.MetricViews].Absolute)
}

func TestAnalyticsServiceSections(t *testing.T) {
	svc := newTestService(t, writeDataset(t, 60))
	ctx := context.Background()
	req := window(0, 59, domain.Weekly)

	corr, err := svc.Correlations(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.TrackedMetrics, corr.Metrics)

	dist, err := svc.Distribution(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.MetricViews, dist.Metric)
	assert.Equal(t, 60, dist.Count)

	season, err := svc.Seasonality(ctx, req)
	require.NoError(t, err)
	assert.Len(t, season.ByDayOfWeek, 7)
	assert.Len(t, season.ByMonth, 2)

	growth, err := svc.Growth(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.MetricViews, growth.Metric)
	assert.Len(t, growth.Change, 59)
	assert.Len(t, growth.RollingMean, 60-analytics.DefaultRollingWindow+1)

	perf, err := svc.Performance(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 60, perf.Days)
	assert.Equal(t, 690.0, perf.PeakViews)
}

func TestAnalyticsServiceGoal(t *testing.T) {
	svc := newTestService(t, writeDataset(t, 10))
	ctx := context.Background()

	req := window(0, 9, domain.Daily)
	_, err := svc.Goal(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidGoalTarget, "goal section without a goal")

	req.Goal = &analytics.GoalRequest{Metric: domain.MetricViews, Target: 2900}
	progress, err := svc.Goal(ctx, req)
	require.NoError(t, err)
	// views 100..190 sum to 1450
	assert.Equal(t, 1450.0, progress.CurrentSum)
	assert.InDelta(t, 50.0, progress.ProgressPercent, 1e-9)
}

func TestAnalyticsServiceExport(t *testing.T) {
	svc := newTestService(t, writeDataset(t, 14))

	var buf bytes.Buffer
	name, err := svc.Export(context.Background(), window(0, 13, domain.Weekly), exporter.FormatCSV, &buf)
	require.NoError(t, err)

	assert.Equal(t, "channel_weekly_2024-01-01_2024-01-14.csv", name)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
}

func TestAnalyticsServiceErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		path    func(t *testing.T) string
		req     analytics.ViewRequest
		wantErr error
	}{
		{
			name:    "missing dataset",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.csv") },
			req:     window(0, 5, domain.Daily),
			wantErr: domain.ErrDatasetNotFound,
		},
		{
			name:    "inverted range",
			path:    func(t *testing.T) string { return writeDataset(t, 10) },
			req:     window(5, 0, domain.Daily),
			wantErr: domain.ErrInvalidRange,
		},
		{
			name:    "empty window",
			path:    func(t *testing.T) string { return writeDataset(t, 10) },
			req:     window(100, 120, domain.Daily),
			wantErr: domain.ErrEmptyWindow,
		},
		{
			name: "bad goal target",
			path: func(t *testing.T) string { return writeDataset(t, 10) },
			req: func() analytics.ViewRequest {
				r := window(0, 9, domain.Daily)
				r.Goal = &analytics.GoalRequest{Metric: domain.MetricViews, Target: -1}
				return r
			}(),
			wantErr: domain.ErrInvalidGoalTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.path(t))
			_, err := svc.Report(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
