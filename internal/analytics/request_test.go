package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"channelpulse/pkg/contracts/domain"
)

func TestViewRequestWithDefaults(t *testing.T) {
	t.Run("last year up to the latest record", func(t *testing.T) {
		series := syntheticSeries(t, "2023-01-01", 547)

		req := ViewRequest{Frequency: domain.Weekly}.WithDefaults(series, 0)
		assert.Equal(t, day("2024-06-30"), req.End)
		assert.Equal(t, day("2023-07-01"), req.Start)
		assert.Equal(t, domain.MetricViews, req.TrendMetric)
		assert.Equal(t, domain.MetricViews, req.DistributionMetric)
		assert.Equal(t, DefaultHistogramBins, req.Bins)
		assert.Equal(t, DefaultRollingWindow, req.RollingWindow)
	})

	t.Run("clamped to the first record", func(t *testing.T) {
		series := syntheticSeries(t, "2024-05-01", 30)
		req := ViewRequest{}.WithDefaults(series, 365)
		assert.Equal(t, day("2024-05-01"), req.Start)
		assert.Equal(t, day("2024-05-30"), req.End)
	})

	t.Run("explicit values are kept and truncated", func(t *testing.T) {
		series := syntheticSeries(t, "2024-05-01", 30)
		req := ViewRequest{
			Start:       day("2024-05-10").Add(13 * time.Hour),
			End:         day("2024-05-12"),
			TrendMetric: domain.MetricLikes,
			Bins:        12,
		}.WithDefaults(series, 7)
		assert.Equal(t, day("2024-05-10"), req.Start)
		assert.Equal(t, day("2024-05-12"), req.End)
		assert.Equal(t, domain.MetricLikes, req.TrendMetric)
		assert.Equal(t, 12, req.Bins)
	})
}

func TestViewRequestValidate(t *testing.T) {
	valid := ViewRequest{
		Start:     day("2024-01-01"),
		End:       day("2024-02-01"),
		Frequency: domain.Monthly,
	}

	tests := []struct {
		name    string
		mutate  func(r *ViewRequest)
		wantErr error
	}{
		{"valid", func(r *ViewRequest) {}, nil},
		{"single day", func(r *ViewRequest) { r.End = r.Start }, nil},
		{"start after end", func(r *ViewRequest) { r.Start = day("2024-03-01") }, domain.ErrInvalidRange},
		{"bad frequency", func(r *ViewRequest) { r.Frequency = 9 }, domain.ErrInvalidFrequency},
		{"bad trend metric", func(r *ViewRequest) { r.TrendMetric = "REVENUE" }, domain.ErrUnknownMetric},
		{"zero goal", func(r *ViewRequest) {
			r.Goal = &GoalRequest{Metric: domain.MetricViews}
		}, domain.ErrInvalidGoalTarget},
		{"negative goal", func(r *ViewRequest) {
			r.Goal = &GoalRequest{Metric: domain.MetricViews, Target: -1}
		}, domain.ErrInvalidGoalTarget},
		{"goal metric", func(r *ViewRequest) {
			r.Goal = &GoalRequest{Metric: "X", Target: 1}
		}, domain.ErrUnknownMetric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing range", func(t *testing.T) {
		var verr domain.ValidationError
		assert.ErrorAs(t, ViewRequest{Frequency: domain.Daily}.Validate(), &verr)
	})

	t.Run("too many bins", func(t *testing.T) {
		req := valid
		req.Bins = MaxHistogramBins + 1
		var verr domain.ValidationError
		assert.ErrorAs(t, req.Validate(), &verr)
		assert.Equal(t, "bins", verr.Field)
	})
}
