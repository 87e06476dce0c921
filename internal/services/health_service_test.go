package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"channelpulse/internal/dataset"
)

func TestHealthService(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	tests := []struct {
		name       string
		cache      func(t *testing.T) *dataset.Cache
		wantStatus string
	}{
		{
			name: "dataset loadable",
			cache: func(t *testing.T) *dataset.Cache {
				return dataset.NewCache(dataset.NewLoader(writeDataset(t, 5), dataset.FormatCSV, logger), nil, logger)
			},
			wantStatus: "ready",
		},
		{
			name: "dataset missing",
			cache: func(t *testing.T) *dataset.Cache {
				path := filepath.Join(t.TempDir(), "missing.csv")
				return dataset.NewCache(dataset.NewLoader(path, dataset.FormatCSV, logger), nil, logger)
			},
			wantStatus: "not_ready",
		},
		{
			name:       "no dataset configured",
			cache:      func(*testing.T) *dataset.Cache { return nil },
			wantStatus: "not_ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService("1.2.3", tt.cache(t), logger)

			ready := hs.ReadinessCheck(ctx)
			assert.Equal(t, tt.wantStatus, ready.Status)
			assert.Contains(t, ready.Services, "dataset")

			assert.Equal(t, "ok", hs.HealthCheck(ctx).Status)

			live := hs.LivenessCheck(ctx)
			assert.Equal(t, "alive", live.Status)
			assert.Contains(t, live.Runtime, "goroutines")

			assert.Equal(t, "1.2.3", hs.Version()["version"])
		})
	}
}
