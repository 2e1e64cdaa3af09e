// Package batch generates build configurations for every supported
// (version, distribution) pair in parallel.
//
// Each pair resolves independently against the read-only layer store, so the
// runner fans pairs out to a fixed worker pool with no locking on the
// resolution path. Failures are isolated per item: one pair's error is
// recorded in the summary and the batch continues.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pbxforge/pbxforge/pkg/config"
	"github.com/pbxforge/pbxforge/pkg/forgeerrors"
	"github.com/pbxforge/pbxforge/pkg/layers"
	"github.com/pbxforge/pbxforge/pkg/metrics"
	"github.com/pbxforge/pbxforge/pkg/registry"
	"github.com/pbxforge/pbxforge/pkg/schema"
)

// Sink receives each successfully resolved configuration.
type Sink interface {
	Write(pair registry.Pair, cfg *config.Config) error
}

// Result records the outcome of one pair.
type Result struct {
	Pair registry.Pair
	Err  error
}

// Summary aggregates a batch run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Failures  []Result
	Elapsed   time.Duration
}

// Config controls a batch run.
type Config struct {
	Workers int
	// Validator optionally gates each resolved config; a validation
	// failure counts as that item's failure
	Validator *schema.Validator
}

// Runner resolves all registry pairs through a worker pool.
type Runner struct {
	resolver *layers.Resolver
	sink     Sink
	cfg      Config
	logger   *zap.Logger

	succeeded int64
	failed    int64
}

// NewRunner creates a batch runner.
func NewRunner(resolver *layers.Resolver, sink Sink, cfg Config, logger *zap.Logger) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		resolver: resolver,
		sink:     sink,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run resolves every pair of the registry and returns the batch summary.
// The context cancels remaining work; already-written outputs are kept.
func (r *Runner) Run(ctx context.Context, reg *registry.Registry) (*Summary, error) {
	pairs := reg.Pairs()
	metrics.BatchItems.Set(float64(len(pairs)))
	start := time.Now()

	r.logger.Info("starting batch generation",
		zap.Int("pairs", len(pairs)),
		zap.Int("workers", r.cfg.Workers))

	work := make(chan registry.Pair)
	results := make(chan Result, len(pairs))

	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pair := range work {
				results <- Result{Pair: pair, Err: r.resolveOne(pair)}
			}
		}()
	}

feed:
	for _, pair := range pairs {
		select {
		case work <- pair:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()
	close(results)

	summary := &Summary{Total: len(pairs), Elapsed: time.Since(start)}
	for result := range results {
		if result.Err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, result)
			continue
		}
		summary.Succeeded++
	}

	r.logger.Info("batch generation finished",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", summary.Elapsed))

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (r *Runner) resolveOne(pair registry.Pair) error {
	log := r.logger.With(
		zap.String("version", pair.Version),
		zap.String("distribution", pair.Distribution))

	timer := metrics.NewTimer()
	cfg, err := r.resolver.Resolve(layers.Request{
		Version:      pair.Version,
		Distribution: pair.Distribution,
		Variant:      pair.Variant,
	})
	if err != nil {
		atomic.AddInt64(&r.failed, 1)
		metrics.ResolutionsTotal.WithLabelValues(metrics.StatusError, pair.Distribution).Inc()
		log.Error("resolution failed", zap.Error(err))
		return err
	}

	if r.cfg.Validator != nil {
		if err := r.cfg.Validator.Validate(cfg); err != nil {
			atomic.AddInt64(&r.failed, 1)
			metrics.ResolutionsTotal.WithLabelValues(metrics.StatusError, pair.Distribution).Inc()
			log.Error("validation failed", zap.Error(err))
			return err
		}
	}

	if err := r.sink.Write(pair, cfg); err != nil {
		atomic.AddInt64(&r.failed, 1)
		metrics.ResolutionsTotal.WithLabelValues(metrics.StatusError, pair.Distribution).Inc()
		log.Error("write failed", zap.Error(err))
		return err
	}

	atomic.AddInt64(&r.succeeded, 1)
	metrics.ResolutionsTotal.WithLabelValues(metrics.StatusSuccess, pair.Distribution).Inc()
	elapsed := timer.ObserveResolution(pair.Distribution)
	log.Debug("configuration generated", zap.Duration("elapsed", elapsed))
	return nil
}

// Metrics returns cumulative counters across runs.
func (r *Runner) Metrics() map[string]int64 {
	return map[string]int64{
		"succeeded": atomic.LoadInt64(&r.succeeded),
		"failed":    atomic.LoadInt64(&r.failed),
	}
}

// FileSink writes resolved configurations as YAML files named
// asterisk-<version>-<distribution>.yml under an output directory.
type FileSink struct {
	Dir string
}

// Write persists one resolved configuration.
func (s *FileSink) Write(pair registry.Pair, cfg *config.Config) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return forgeerrors.Wrap(err, forgeerrors.ErrorTypeFile, "failed to create output directory").
			WithDetail("dir", s.Dir)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return forgeerrors.Wrap(err, forgeerrors.ErrorTypeInternal, "failed to encode configuration")
	}

	path := filepath.Join(s.Dir, fmt.Sprintf("asterisk-%s-%s.yml", pair.Version, pair.Distribution))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return forgeerrors.Wrap(err, forgeerrors.ErrorTypeFile, "failed to write configuration").
			WithDetail("path", path)
	}
	return nil
}
