package messenger

// Metrics lets callers observe Messenger internals without coupling this
// package to any particular metrics backend, matching the teacher's
// MetricsRecorder pattern (pkg/adapter/base.go): a small interface, nil by
// default, zero overhead when unset.
type Metrics interface {
	RecordFrameSent(frameType string)
	RecordFrameReceived(frameType string)
	SetOutboundQueueDepth(depth int)
	SetPendingCalls(count int)
	RecordFdsSent(count int)
	RecordFdsReceived(count int)
}

type noopMetrics struct{}

func (noopMetrics) RecordFrameSent(string)        {}
func (noopMetrics) RecordFrameReceived(string)     {}
func (noopMetrics) SetOutboundQueueDepth(int)      {}
func (noopMetrics) SetPendingCalls(int)            {}
func (noopMetrics) RecordFdsSent(int)              {}
func (noopMetrics) RecordFdsReceived(int)          {}
