package metrics

import "time"

// BuildOutcomeLabel enumerates final page build outcomes.
type BuildOutcomeLabel string

const (
	OutcomeSuccess BuildOutcomeLabel = "success"
	// OutcomeDegraded is a successful build with at least one absent API record.
	OutcomeDegraded BuildOutcomeLabel = "degraded"
	OutcomeFailed   BuildOutcomeLabel = "failed"
)

// Recorder defines observability hooks for page builds. All methods must be
// safe on a nil *PrometheusRecorder and on NoopRecorder.
type Recorder interface {
	ObservePageBuildDuration(page string, d time.Duration)
	IncBlock(kind string)
	IncMissingMetadata(page string)
	IncBuildOutcome(page string, outcome BuildOutcomeLabel)
	SetMetadataRecords(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePageBuildDuration(string, time.Duration) {}
func (NoopRecorder) IncBlock(string)                                {}
func (NoopRecorder) IncMissingMetadata(string)                      {}
func (NoopRecorder) IncBuildOutcome(string, BuildOutcomeLabel)      {}
func (NoopRecorder) SetMetadataRecords(int)                         {}
