package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("parse", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncTaskResult("page", ResultRendered)
	pr.IncTaskResult("page", ResultCached)
	pr.IncTaskResult("page", ResultCached)
	pr.IncTaskError("hook_failure")
	pr.IncCacheLookup(true)
	pr.IncCacheLookup(false)
	pr.IncBuildOutcome(BuildOutcomeSuccess)
	pr.SetArticles(3)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] += m.GetGauge().GetValue()
			}
		}
	}
	require.InDelta(t, 3, values["sitebuilder_task_results_total"], 0)
	require.InDelta(t, 2, values["sitebuilder_cache_lookups_total"], 0)
	require.InDelta(t, 3, values["sitebuilder_articles"], 0)
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncBuildOutcome(BuildOutcomeFailed)

	path := filepath.Join(t.TempDir(), "sitebuilder.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `sitebuilder_build_outcomes_total{outcome="failed"} 1`)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	require.NotPanics(t, func() {
		pr.IncCacheLookup(true)
		pr.ObserveBuildDuration(time.Second)
	})
}
