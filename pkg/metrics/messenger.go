package metrics

// MessengerMetrics mirrors pkg/messenger.Metrics so the Prometheus
// implementation can live under pkg/metrics without pkg/messenger importing
// Prometheus directly (kept dependency-light per §4.D).
type MessengerMetrics interface {
	RecordFrameSent(frameType string)
	RecordFrameReceived(frameType string)
	SetOutboundQueueDepth(depth int)
	SetPendingCalls(count int)
	RecordFdsSent(n int)
	RecordFdsReceived(n int)
}
