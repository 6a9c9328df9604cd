package bandit

import "gobandit/internal"

// Option customizes an Expert or Ensemble
type Option func(*options)

type options struct {
	logger *internal.Logger
}

// WithLogger routes reset and leader-change events to l
func WithLogger(l *internal.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: internal.NewLogger(internal.LogLevelOff)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
