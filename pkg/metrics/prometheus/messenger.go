package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/stardust-xr/stardust/pkg/metrics"
)

// messengerMetrics is the Prometheus implementation of metrics.MessengerMetrics.
type messengerMetrics struct {
	framesSent     *prometheus.CounterVec
	framesReceived *prometheus.CounterVec
	outboundDepth  prometheus.Gauge
	pendingCalls   prometheus.Gauge
	fdsSent        prometheus.Counter
	fdsReceived    prometheus.Counter
}

// NewMessengerMetrics creates a Prometheus-backed messenger metrics
// instance, or nil if metrics are not enabled (InitRegistry not called).
func NewMessengerMetrics() *messengerMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	reg := metrics.GetRegistry()

	return &messengerMetrics{
		framesSent: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "stardust_frames_sent_total",
				Help: "Total wire frames sent, by frame type.",
			},
			[]string{"frame_type"},
		),
		framesReceived: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "stardust_frames_received_total",
				Help: "Total wire frames received, by frame type.",
			},
			[]string{"frame_type"},
		),
		outboundDepth: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "stardust_outbound_queue_depth",
			Help: "Current depth of the messenger's outbound frame queue.",
		}),
		pendingCalls: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "stardust_pending_calls",
			Help: "Current number of method calls awaiting a response.",
		}),
		fdsSent: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "stardust_fds_sent_total",
			Help: "Total file descriptors sent via SCM_RIGHTS.",
		}),
		fdsReceived: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "stardust_fds_received_total",
			Help: "Total file descriptors received via SCM_RIGHTS.",
		}),
	}
}

func (m *messengerMetrics) RecordFrameSent(frameType string) {
	if m == nil {
		return
	}
	m.framesSent.WithLabelValues(frameType).Inc()
}

func (m *messengerMetrics) RecordFrameReceived(frameType string) {
	if m == nil {
		return
	}
	m.framesReceived.WithLabelValues(frameType).Inc()
}

func (m *messengerMetrics) SetOutboundQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.outboundDepth.Set(float64(depth))
}

func (m *messengerMetrics) SetPendingCalls(count int) {
	if m == nil {
		return
	}
	m.pendingCalls.Set(float64(count))
}

func (m *messengerMetrics) RecordFdsSent(n int) {
	if m == nil {
		return
	}
	m.fdsSent.Add(float64(n))
}

func (m *messengerMetrics) RecordFdsReceived(n int) {
	if m == nil {
		return
	}
	m.fdsReceived.Add(float64(n))
}
