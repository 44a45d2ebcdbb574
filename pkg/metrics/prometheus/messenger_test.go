package prometheus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stardust-xr/stardust/pkg/metrics"
)

func TestNewMessengerMetricsNilWhenDisabled(t *testing.T) {
	m := NewMessengerMetrics()
	assert.Nil(t, m)
	// Calling through a nil receiver must never panic.
	m.RecordFrameSent("signal")
	m.SetPendingCalls(3)
}

func TestMessengerMetricsRecordsCounters(t *testing.T) {
	metrics.InitRegistry()
	t.Cleanup(func() { metrics.InitRegistry() })

	m := NewMessengerMetrics()
	require.NotNil(t, m)

	m.RecordFrameSent("method_call")
	m.RecordFrameSent("method_call")
	m.SetOutboundQueueDepth(7)

	mf, err := metrics.GetRegistry().Gather()
	require.NoError(t, err)

	var found bool
	for _, fam := range mf {
		if fam.GetName() == "stardust_frames_sent_total" {
			found = true
			require.Len(t, fam.Metric, 1)
			assert.Equal(t, float64(2), fam.Metric[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}
