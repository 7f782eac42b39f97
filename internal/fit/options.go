package fit

import "log/slog"

// DefaultMaxEvaluations is the objective evaluation budget of the logistic fit.
const DefaultMaxEvaluations = 10000

type options struct {
	smaxInit       float64
	maxEvaluations int
	logger         *slog.Logger
}

// Option configures a fit.
type Option func(*options)

// WithSmaxInit overrides the initial asymptote guess of the logistic fit
// (1.1 × max(y) by default). The Smax upper bound follows it.
func WithSmaxInit(smax float64) Option {
	return func(o *options) { o.smaxInit = smax }
}

// WithMaxEvaluations overrides the logistic evaluation budget.
func WithMaxEvaluations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEvaluations = n
		}
	}
}

// WithLogger receives debug records about skipped candidates and
// ill-conditioned systems.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		maxEvaluations: DefaultMaxEvaluations,
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
