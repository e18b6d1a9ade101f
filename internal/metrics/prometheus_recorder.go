package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg             *prom.Registry
	buildDuration   *prom.HistogramVec
	blocks          *prom.CounterVec
	missingMetadata *prom.CounterVec
	buildOutcome    *prom.CounterVec
	metadataRecords prom.Gauge
}

// NewPrometheusRecorder constructs and registers the page build metrics on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		buildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docpage",
			Name:      "page_build_duration_seconds",
			Help:      "Duration of page assembly",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1},
		}, []string{"page"}),
		blocks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docpage",
			Name:      "blocks_total",
			Help:      "Assembled page blocks by kind",
		}, []string{"kind"}),
		missingMetadata: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docpage",
			Name:      "missing_metadata_total",
			Help:      "API blocks assembled without a metadata record",
		}, []string{"page"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docpage",
			Name:      "page_build_outcomes_total",
			Help:      "Page builds by final status",
		}, []string{"page", "outcome"}),
		metadataRecords: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docpage",
			Name:      "metadata_records",
			Help:      "Records in the loaded metadata store",
		}),
	}
	reg.MustRegister(pr.buildDuration, pr.blocks, pr.missingMetadata, pr.buildOutcome, pr.metadataRecords)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	if p == nil {
		return nil
	}
	return p.reg
}

func (p *PrometheusRecorder) ObservePageBuildDuration(page string, d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.WithLabelValues(page).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBlock(kind string) {
	if p == nil {
		return
	}
	p.blocks.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncMissingMetadata(page string) {
	if p == nil {
		return
	}
	p.missingMetadata.WithLabelValues(page).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(page string, outcome BuildOutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(page, string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetMetadataRecords(n int) {
	if p == nil {
		return
	}
	p.metadataRecords.Set(float64(n))
}

// WriteTextfile writes the current metric values to path in the Prometheus
// text exposition format (for the node-exporter textfile collector).
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if p == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
