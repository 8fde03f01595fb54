package resumeforge

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "memory" or "redis"
	addrs    []string
	username string
	password string

	embedder  Embedder
	generator Generator
	searcher  JobSearcher

	retrievalK int
	contextK   int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithMemoryStore keeps the embedding cache and document log in process
// memory. This is the default; documents do not survive a restart.
func WithMemoryStore() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
	})
}

// WithRedis persists the embedding cache and document log in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the text embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator sets the text generation provider.
// Required for Enhance, Score, Compare and ParseResume.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithJobSearcher sets the job search provider. Optional.
func WithJobSearcher(s JobSearcher) Option {
	return optionFunc(func(c *clientConfig) {
		c.searcher = s
	})
}

// WithRetrievalK sets how many neighbors Similar returns when the caller
// passes k <= 0, and how many context examples Enhance injects. Default: 2.
func WithRetrievalK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.retrievalK = k
		c.contextK = k
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
