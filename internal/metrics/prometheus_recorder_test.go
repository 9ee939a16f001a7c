package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("copy_assets", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("copy_assets", ResultSuccess)
	pr.IncBuildOutcome("success")
	pr.SetRenderedPages(4)
	pr.SetCopiedFiles(12)
	pr.SetBrokenLinks(0)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"sitebuilder_stage_duration_seconds",
		"sitebuilder_build_duration_seconds",
		"sitebuilder_stage_results_total",
		"sitebuilder_build_outcomes_total",
		"sitebuilder_rendered_pages",
		"sitebuilder_copied_asset_files",
		"sitebuilder_broken_links",
		"sitebuilder_last_build_timestamp_seconds",
	} {
		require.True(t, names[want], "missing metric %s", want)
	}
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveStageDuration("x", time.Second)
	pr.ObserveBuildDuration(time.Second)
	pr.IncStageResult("x", ResultFatal)
	pr.IncBuildOutcome("failed")
	pr.SetRenderedPages(1)
	pr.SetCopiedFiles(1)
	pr.SetBrokenLinks(1)
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.SetRenderedPages(3)
	pr.IncBuildOutcome("success")

	path := filepath.Join(t.TempDir(), "textfile", "sitebuilder.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.Contains(text, "sitebuilder_rendered_pages 3"), text)
	require.Contains(t, text, `sitebuilder_build_outcomes_total{outcome="success"} 1`)
}
