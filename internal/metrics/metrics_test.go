package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordClip(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordClip(5, 0.2)
	m.RecordClip(0.5, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ClipCalls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClipActivations))
	assert.Equal(t, 0.5, testutil.ToFloat64(m.TotalNorm))

	count, err := testutil.GatherAndCount(reg, "gradclip_total_norm_distribution")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecordErrorsAndBackward(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordClipError("invalid_state")
	m.RecordClipError("invalid_state")
	m.RecordBackward("manual", 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ClipErrors.WithLabelValues("invalid_state")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackwardPasses.WithLabelValues("manual")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordClip(1, 1)
		m.RecordClipError("x")
		m.RecordBackward("automatic", 0)
	})
}

func TestUnregistered(t *testing.T) {
	assert.NotPanics(t, func() { New(nil).RecordClip(1, 0.5) })
}
