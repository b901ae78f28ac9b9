package metrics

import "time"

// ResultLabel enumerates clean outcomes for counters.
type ResultLabel string

const (
	ResultRemoved ResultLabel = "removed" // directory existed and was deleted
	ResultAbsent  ResultLabel = "absent"  // nothing to delete
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for resolution and clean.
type Recorder interface {
	IncProjectResolved(target string)
	ObserveResolveDuration(d time.Duration)
	IncCleanResult(result ResultLabel)
	IncCleanRetry()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncProjectResolved(string)            {}
func (NoopRecorder) ObserveResolveDuration(time.Duration) {}
func (NoopRecorder) IncCleanResult(ResultLabel)           {}
func (NoopRecorder) IncCleanRetry()                       {}
