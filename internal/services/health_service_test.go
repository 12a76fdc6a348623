package services

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jitu/internal/mapping"
	"jitu/internal/shared/testutil"
)

func TestHealthService(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		withStore bool
		nilSvc    bool
		health    string
		readiness string
		storeMsg  string
	}{
		{name: "with store", withStore: true, health: "ok", readiness: "ready", storeMsg: "1 confirmed mappings"},
		{name: "without store", health: "ok", readiness: "ready", storeMsg: "mapping reuse disabled"},
		{name: "no pipeline", nilSvc: true, health: "degraded", readiness: "not_ready", storeMsg: "mapping reuse disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var svc *AnalysisService
			if !tt.nilSvc {
				var store *mapping.Store
				if tt.withStore {
					store = mapping.NewStore(nil)
					_, err := store.Confirm(testutil.KopiColumns, testutil.KopiMapping())
					require.NoError(t, err)
				}
				svc, _ = newTestService(t, store)
			}
			logger, _ := testutil.NewTestLogger(t)
			hs := NewHealthService("1.2.3", "2026-01-01", svc, logger)

			health := hs.HealthCheck(ctx)
			assert.Equal(t, tt.health, health.Status)
			assert.Equal(t, "1.2.3", health.Version)
			assert.Contains(t, health.Runtime, "goroutines")

			ready := hs.ReadinessCheck(ctx)
			assert.Equal(t, tt.readiness, ready.Status)
			store := ready.Services["mapping_store"].(ServiceHealth)
			assert.Equal(t, tt.storeMsg, store.Message)
		})
	}
}

func TestLivenessAndVersion(t *testing.T) {
	hs := NewHealthService("1.0.0", "", nil, nil)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Equal(t, runtime.Version(), live.Runtime["go_version"])

	v := hs.Version()
	assert.Equal(t, "1.0.0", v["version"])
	assert.NotContains(t, v, "build_time")
}
