package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScoreRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "werval_score_requests_total",
		Help: "Scoring requests handled across all surfaces",
	})

	PairsScored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "werval_pairs_scored_total",
		Help: "Prediction/reference pairs scored",
	})

	ScoreDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "werval_score_duration_seconds",
		Help:    "Batch scoring latency",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	})

	TranscribeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "werval_transcribe_duration_seconds",
		Help:    "ASR transcription latency by engine",
		Buckets: []float64{0.1, 0.2, 0.5, 0.8, 1.0, 2.0, 5.0, 10.0, 30.0},
	}, []string{"engine"})

	LastWER = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "werval_last_wer",
		Help: "Most recently computed aggregate word error rate",
	})

	WSSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "werval_ws_sessions_active",
		Help: "Currently active streaming scoring sessions",
	})

	WSSessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "werval_ws_sessions_total",
		Help: "Total streaming scoring sessions served",
	})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "werval_errors_total",
		Help: "Error counts by stage",
	}, []string{"stage", "error_type"})
)
