package resumeforge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/resumeforge/resumeforge/internal/db"
	dbMemory "github.com/resumeforge/resumeforge/internal/db/memory"
	dbRedis "github.com/resumeforge/resumeforge/internal/db/redis"
	"github.com/resumeforge/resumeforge/internal/domain"
	"github.com/resumeforge/resumeforge/internal/index"
	"github.com/resumeforge/resumeforge/internal/metrics"
	"github.com/resumeforge/resumeforge/internal/repository/doclog"
	"github.com/resumeforge/resumeforge/internal/repository/embcache"
	jobsuc "github.com/resumeforge/resumeforge/internal/usecase/jobs"
	optimizeuc "github.com/resumeforge/resumeforge/internal/usecase/optimize"
	parseuc "github.com/resumeforge/resumeforge/internal/usecase/parse"
	retrievaluc "github.com/resumeforge/resumeforge/internal/usecase/retrieval"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the resumeforge SDK entry point.
type Client struct {
	store     db.Store
	retrieval *retrievaluc.Service
	optimize  *optimizeuc.Service
	parse     *parseuc.Service
	jobs      *jobsuc.Service
	obs       *observer
}

// New creates a resumeforge Client. The provided context is used for the
// initial store readiness check and document log replay.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		driver:     "memory",
		retrievalK: 2,
		contextK:   2,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.embedder == nil {
		return nil, errors.New("resumeforge: embedder required (use WithEmbedder)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("resumeforge: store not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	client, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return client, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "memory":
		return dbMemory.NewStore(), nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Username: cfg.username,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("resumeforge: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("resumeforge: unknown driver %q", cfg.driver)
	}
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	logger := zap.NewNop()

	embedder := embcache.New(
		&embedderAdapter{inner: cfg.embedder}, store, metrics.EmbeddingCacheTotal, logger,
	)

	retrieval := retrievaluc.New(
		index.NewFlat(domain.EmbeddingDimensions), embedder, doclog.New(store), logger,
	).WithDefaultK(cfg.retrievalK)

	if _, err := retrieval.Rehydrate(ctx); err != nil {
		return nil, fmt.Errorf("resumeforge: rehydrate index: %w", err)
	}

	var gen Generator = cfg.generator
	if gen == nil {
		gen = noopGenerator{}
	}

	c := &Client{
		store:     store,
		retrieval: retrieval,
		optimize:  optimizeuc.New(retrieval, gen, logger).WithContextK(cfg.contextK),
		parse:     parseuc.New(gen, logger),
		obs:       obs,
	}
	if cfg.searcher != nil {
		c.jobs = jobsuc.New(cfg.searcher, logger)
	}
	return c, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// AddDocument embeds and indexes an example resume. Returns the assigned id.
func (c *Client) AddDocument(ctx context.Context, text string, metadata map[string]any) (id int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("add_document", start, err) }()

	return c.retrieval.AddDocument(ctx, text, metadata)
}

// Similar returns the k nearest indexed documents for the query text,
// closest first. k <= 0 uses the configured default.
func (c *Client) Similar(ctx context.Context, query string, k int) (results []SimilarityResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("similar", start, err) }()

	return c.retrieval.Similar(ctx, query, k)
}

// Size reports how many documents are indexed.
func (c *Client) Size() int {
	return c.retrieval.Size()
}

// Enhance rewrites a resume against a job description, using similar indexed
// resumes as context.
func (c *Client) Enhance(ctx context.Context, resume, jobDescription string) (result EnhancementResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("enhance", start, err) }()

	return c.optimize.EnhanceResume(ctx, resume, jobDescription)
}

// Score produces an ATS compatibility report. Generation failures yield a
// degraded report with the Error field set, never an error return.
func (c *Client) Score(ctx context.Context, resume map[string]any, jobDescription string) ScoreReport {
	start := time.Now()
	report := c.optimize.CalculateATSScore(ctx, resume, jobDescription)
	c.obs.observe("score", start, nil)
	return report
}

// Compare contrasts an original resume with its optimized version.
func (c *Client) Compare(ctx context.Context, originalResume, optimizedResume, jobDescription string) ComparisonReport {
	start := time.Now()
	report := c.optimize.CompareBeforeAfter(ctx, originalResume, optimizedResume, jobDescription)
	c.obs.observe("compare", start, nil)
	return report
}

// ParseResume extracts skills and structure from raw resume text.
func (c *Client) ParseResume(ctx context.Context, text string) (result ParseResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("parse_resume", start, err) }()

	return c.parse.ParseResume(ctx, text)
}

// SearchJobs queries the configured job search provider. Provider failures
// yield an empty list.
func (c *Client) SearchJobs(ctx context.Context, query, location string) (postings []JobPosting, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search_jobs", start, err) }()

	if c.jobs == nil {
		return nil, errors.New("resumeforge: job searcher not configured (use WithJobSearcher)")
	}
	return c.jobs.Search(ctx, query, location)
}

// embedderAdapter wraps the public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopGenerator returns an error on Generate (used when no generator configured).
type noopGenerator struct{}

func (noopGenerator) Generate(_ context.Context, _ string) (string, error) {
	return "", errors.New(
		"resumeforge: generator not configured (use WithGenerator)",
	)
}
