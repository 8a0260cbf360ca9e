package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUploadMetrics_NilWhenDisabled(t *testing.T) {
	enabled.Store(false)
	registry.Store(nil)

	m := NewUploadMetrics()
	assert.Nil(t, m)

	// nil-receiver methods must not panic
	m.UploadStarted()
	m.UploadFinished()
	m.RecordProgress("default", 0.5)
	m.RecordRequestServed("default", "ok")
	m.RecordResponseWriteFailure("default")
	m.RecordBlockVerified(true)
}

func TestNewUploadMetrics_RecordsWhenEnabled(t *testing.T) {
	reg := InitRegistry(prometheus.NewRegistry())
	t.Cleanup(func() {
		enabled.Store(false)
		registry.Store(nil)
	})

	m := NewUploadMetrics()
	require.NotNil(t, m)

	m.UploadStarted()
	m.RecordProgress("default", 0.75)
	m.RecordRequestServed("default", "ok")
	m.RecordBlockVerified(false)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
