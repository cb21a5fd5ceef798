package analysis

import (
	"time"

	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/interfaces"
)

const (
	// DefaultLookbackDays is the volatility history window.
	DefaultLookbackDays = 365

	defaultMaxConcurrency  = 4
	defaultProviderTimeout = 10 * time.Second
)

type settings struct {
	logger          *common.Logger
	maxConcurrency  int
	providerTimeout time.Duration
	lookbackDays    int
	commentary      interfaces.CommentaryClient
}

func newSettings(opts []Option) settings {
	s := settings{
		logger:          common.NewSilentLogger(),
		maxConcurrency:  defaultMaxConcurrency,
		providerTimeout: defaultProviderTimeout,
		lookbackDays:    DefaultLookbackDays,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures the analysis service and volatility estimator
type Option func(*settings)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxConcurrency bounds the number of in-flight NAV provider calls
func WithMaxConcurrency(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxConcurrency = n
		}
	}
}

// WithProviderTimeout sets the timeout applied to each NAV provider call
func WithProviderTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.providerTimeout = d
		}
	}
}

// WithLookbackDays sets the volatility history window
func WithLookbackDays(days int) Option {
	return func(s *settings) {
		if days > 0 {
			s.lookbackDays = days
		}
	}
}

// WithCommentary enables AI commentary on risk reports
func WithCommentary(c interfaces.CommentaryClient) Option {
	return func(s *settings) {
		s.commentary = c
	}
}
