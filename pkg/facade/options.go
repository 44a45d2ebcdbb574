package facade

import "github.com/stardust-xr/stardust/pkg/messenger"

type options struct {
	messengerOpts []messenger.Option
}

func defaultOptions() options {
	return options{}
}

// Option configures Connect.
type Option func(*options)

// WithMessengerOptions forwards options to the underlying messenger.New
// call (e.g. messenger.WithMetrics).
func WithMessengerOptions(opts ...messenger.Option) Option {
	return func(o *options) {
		o.messengerOpts = append(o.messengerOpts, opts...)
	}
}
