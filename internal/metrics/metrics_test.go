package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	// IncHTTP should not panic
	assert.NotPanics(t, func() {
		IncHTTP("test_endpoint", 200)
	})
}

func TestObservePrediction(t *testing.T) {
	before := testutil.ToFloat64(predictions.WithLabelValues("canceled"))
	ObservePrediction("canceled", 0.73, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(predictions.WithLabelValues("canceled")))
}

func TestIncCache(t *testing.T) {
	hits := testutil.ToFloat64(predictionCache.WithLabelValues("hit"))
	misses := testutil.ToFloat64(predictionCache.WithLabelValues("miss"))

	IncCache(true)
	IncCache(false)
	IncCache(false)

	assert.Equal(t, hits+1, testutil.ToFloat64(predictionCache.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(predictionCache.WithLabelValues("miss")))
}

func TestIncModelLoadAndErrors(t *testing.T) {
	loads := testutil.ToFloat64(modelLoads)
	IncModelLoad()
	assert.Equal(t, loads+1, testutil.ToFloat64(modelLoads))

	errs := testutil.ToFloat64(predictionErrors.WithLabelValues("schema_mismatch"))
	IncPredictionError("schema_mismatch")
	assert.Equal(t, errs+1, testutil.ToFloat64(predictionErrors.WithLabelValues("schema_mismatch")))
}
