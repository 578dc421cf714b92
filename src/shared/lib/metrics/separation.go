package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func init() {
	register(
		separationsTotal,
		stageDuration,
		inferenceInFlight,
		modelLoadsTotal,
		downloadsTotal,
	)
}

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	separationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stem_separations_total",
			Help: "Separation requests by outcome and error code.",
		},
		[]string{"outcome", "code"},
	)

	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stem_separation_stage_duration_seconds",
			Help:    "Time spent in each stage of a separation request.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"stage"},
	)

	inferenceInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stem_inference_in_flight",
			Help: "Inference runs currently holding a slot.",
		},
	)

	modelLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stem_model_loads_total",
			Help: "Model load attempts by outcome.",
		},
		[]string{"outcome"},
	)

	downloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stem_downloads_total",
			Help: "Stem downloads by stem and outcome.",
		},
		[]string{"stem", "outcome"},
	)
)

func Outcome(success bool) string {
	if success {
		return OutcomeSuccess
	}

	return OutcomeFailure
}

func IncSeparation(outcome string, code string) {
	separationsTotal.WithLabelValues(outcome, code).Inc()
}

func ObserveStage(stage string, started time.Time) {
	stageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
}

func InferenceStarted() {
	inferenceInFlight.Inc()
}

func InferenceFinished() {
	inferenceInFlight.Dec()
}

func IncModelLoad(success bool) {
	modelLoadsTotal.WithLabelValues(Outcome(success)).Inc()
}

func IncDownload(stem string, success bool) {
	downloadsTotal.WithLabelValues(stem, Outcome(success)).Inc()
}

// SeparationCount reads the current value of one separation counter
func SeparationCount(outcome string, code string) float64 {
	return testutil.ToFloat64(separationsTotal.WithLabelValues(outcome, code))
}
