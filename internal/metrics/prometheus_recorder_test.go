package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_Counters(t *testing.T) {
	pr := NewPrometheusRecorder(nil)

	pr.IncProjectResolved("legacy")
	pr.IncProjectResolved("current")
	pr.IncProjectResolved("current")
	pr.IncCleanResult(ResultRemoved)
	pr.IncCleanResult(ResultAbsent)
	pr.IncCleanRetry()
	pr.ObserveResolveDuration(15 * time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(pr.projectsResolved.WithLabelValues("legacy")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(pr.projectsResolved.WithLabelValues("current")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.cleanResults.WithLabelValues("absent")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.cleanRetries), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(pr.resolveDuration))
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncProjectResolved("legacy")
	pr.IncCleanResult(ResultFailed)
	pr.IncCleanRetry()
	pr.ObserveResolveDuration(time.Second)
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncProjectResolved("legacy")

	path := filepath.Join(t.TempDir(), "textfile", "buildlayout.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `buildlayout_projects_resolved_total{target="legacy"} 1`), string(data))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncProjectResolved("current")
	r.IncCleanResult(ResultRemoved)
	r.IncCleanRetry()
	r.ObserveResolveDuration(0)
}
