package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookingrisk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "code"},
	)

	predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookingrisk",
			Name:      "predictions_total",
			Help:      "Predictions served by verdict.",
		},
		[]string{"verdict"},
	)

	predictionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookingrisk",
			Name:      "prediction_errors_total",
			Help:      "Failed predictions by reason.",
		},
		[]string{"reason"},
	)

	predictionCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookingrisk",
			Name:      "prediction_cache_total",
			Help:      "Prediction cache lookups by result.",
		},
		[]string{"result"},
	)

	inferenceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bookingrisk",
			Name:      "inference_duration_seconds",
			Help:      "Time spent running the pipeline for one record.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		},
	)

	cancellationProbability = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bookingrisk",
			Name:      "cancellation_probability",
			Help:      "Distribution of predicted cancellation probabilities.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 9),
		},
	)

	modelLoads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookingrisk",
			Name:      "model_loads_total",
			Help:      "Times the model artifact was read from disk.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			predictions,
			predictionErrors,
			predictionCache,
			inferenceDuration,
			cancellationProbability,
			modelLoads,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string, code int) {
	httpRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
}

// ObservePrediction records a served prediction.
func ObservePrediction(verdict string, probability float64, took time.Duration) {
	predictions.WithLabelValues(verdict).Inc()
	cancellationProbability.Observe(probability)
	inferenceDuration.Observe(took.Seconds())
}

func IncPredictionError(reason string) {
	predictionErrors.WithLabelValues(reason).Inc()
}

// IncCache counts a cache lookup; hit selects the label.
func IncCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	predictionCache.WithLabelValues(result).Inc()
}

func IncModelLoad() {
	modelLoads.Inc()
}
