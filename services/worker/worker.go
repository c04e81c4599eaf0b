package worker

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"

	"sjsage522/vesselschedule/config"
	"sjsage522/vesselschedule/helpers"
	"sjsage522/vesselschedule/internal"
	"sjsage522/vesselschedule/internal/crawler"
	"sjsage522/vesselschedule/internal/schedule"
	"sjsage522/vesselschedule/logger"
	scrapeerrors "sjsage522/vesselschedule/pkg/errors"
	"sjsage522/vesselschedule/services/cache"
	"sjsage522/vesselschedule/services/publisher"
)

// Options controls how adapters are driven
type Options struct {
	Timeout     time.Duration
	BulkTimeout time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
	PoolSize    int
	Cooldown    time.Duration
}

// OptionsFromConfig reads the worker options from configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Timeout:     cfg.TerminalTimeout,
		BulkTimeout: cfg.BulkTimeout,
		MaxRetries:  cfg.MaxRetries,
		RetryDelay:  cfg.RetryDelay,
		PoolSize:    cfg.WorkerPoolSize,
		Cooldown:    cfg.Cooldown,
	}
}

// Worker runs adapter calls under a deadline, retries transient failures,
// honours terminal cooldowns and publishes what it gets back.
type Worker struct {
	opts      Options
	cooldown  *cache.Cooldown
	publisher publisher.Publisher
	log       *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(opts Options, deps internal.Dependencies) *Worker {
	if opts.PoolSize < 1 {
		opts.PoolSize = 1
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Worker{
		opts:      opts,
		cooldown:  cache.NewCooldown(deps.Cache, opts.Cooldown),
		publisher: deps.Publisher,
		log:       logger.ForComponent("worker"),
	}
}

// Lookup runs one single-vessel lookup against a
func (w *Worker) Lookup(ctx context.Context, a crawler.Adapter, q schedule.Query) schedule.Result {
	if left := w.cooldown.Remaining(a.Name()); left > 0 {
		w.log.Info().Str("terminal", a.Name()).Dur("remaining", left).Msg("Skipping terminal in cooldown")
		return schedule.Failure(a.Terminal(), scrapeerrors.NewCooldown(a.Name(), left.String()))
	}

	var res schedule.Result
	for attempt := 0; ; attempt++ {
		res = w.attempt(ctx, a, q)
		if res.Success || !retryable(res) || attempt >= w.opts.MaxRetries || ctx.Err() != nil {
			break
		}
		delay := time.Duration(attempt+1) * w.opts.RetryDelay
		w.log.Warn().
			Str("terminal", a.Name()).
			Str("error_type", *res.ErrorType).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Retrying terminal")
		if err := helpers.Sleep(ctx, delay); err != nil {
			break
		}
	}

	switch {
	case res.Success:
		w.cooldown.Clear(a.Name())
	case retryable(res):
		w.cooldown.Block(a.Name())
	}
	w.publish(ctx, a.Name(), res)
	return res
}

func (w *Worker) attempt(ctx context.Context, a crawler.Adapter, q schedule.Query) schedule.Result {
	actx, cancel := withTimeout(ctx, w.opts.Timeout)
	defer cancel()
	return a.FetchSchedule(actx, q)
}

// Bulk runs full-schedule mode once. Bulk crawls are long and serial, so they are
// not retried.
func (w *Worker) Bulk(ctx context.Context, a crawler.Adapter) schedule.BulkResult {
	if left := w.cooldown.Remaining(a.Name()); left > 0 {
		return schedule.BulkFailure(a.Terminal(), scrapeerrors.NewCooldown(a.Name(), left.String()))
	}
	bctx, cancel := withTimeout(ctx, w.opts.BulkTimeout)
	defer cancel()

	start := time.Now()
	res := a.FetchAll(bctx)
	w.log.Info().
		Str("terminal", a.Name()).
		Bool("success", res.Success).
		Int("vessels", len(res.Vessels)).
		Dur("elapsed", time.Since(start)).
		Msg("Bulk crawl finished")
	if res.Success {
		w.cooldown.Clear(a.Name())
	}
	w.publish(ctx, a.Name(), res)
	return res
}

// Batch looks q up on every adapter, at most PoolSize at a time. Results keep the
// order of adapters.
func (w *Worker) Batch(ctx context.Context, adapters []crawler.Adapter, q schedule.Query) []schedule.Result {
	results := make([]schedule.Result, len(adapters))

	var g errgroup.Group
	g.SetLimit(w.opts.PoolSize)
	for i, a := range adapters {
		g.Go(func() error {
			results[i] = w.Lookup(ctx, a, q)
			return nil
		})
	}
	_ = g.Wait()

	w.TrimStreams(ctx)
	return results
}

// TrimStreams caps the published streams
func (w *Worker) TrimStreams(ctx context.Context) {
	if w.publisher == nil {
		return
	}
	if err := w.publisher.TrimStreams(context.WithoutCancel(ctx)); err != nil {
		logger.LogError("StreamTrimming", err, "failed to trim streams")
	}
}

func (w *Worker) publish(ctx context.Context, terminal string, v any) {
	if w.publisher == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.LogError(terminal, err, "failed to encode result")
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := w.publisher.Publish(pctx, terminal, data); err != nil {
		logger.LogError(terminal, err, "failed to publish result")
	}
}

func retryable(res schedule.Result) bool {
	return !res.Success && res.ErrorType != nil &&
		scrapeerrors.RetryableType(scrapeerrors.ErrorType(*res.ErrorType))
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
