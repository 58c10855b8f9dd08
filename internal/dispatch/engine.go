package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/sasanktumpati/polymind/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Engine fans a prompt out to the backends of a registry and joins their
// outcomes.
type Engine struct {
	registry    *Registry
	maxParallel int
	progress    func(name string, out Outcome)
	log         *observability.Logger
}

type Option func(*Engine)

// WithMaxParallel bounds how many adapters run at once. Zero or a negative
// value runs one worker per backend.
func WithMaxParallel(n int) Option {
	return func(e *Engine) {
		e.maxParallel = n
	}
}

// WithProgress calls fn as each backend gets its outcome, unknown names
// included. fn runs on worker goroutines and must be safe for concurrent use.
func WithProgress(fn func(name string, out Outcome)) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

func NewEngine(registry *Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		log:      observability.Component("dispatch"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dispatch invokes every named backend concurrently and returns once all of
// them have an outcome. Unknown names fail without invoking anything and
// duplicates are collapsed (first spelling wins). Dispatch itself never
// fails; a deadline on ctx reaches adapters and comes back as failures.
func (e *Engine) Dispatch(ctx context.Context, prompt string, backends []string) *Result {
	if ctx == nil {
		ctx = context.Background()
	}
	if observability.DispatchIDFromContext(ctx) == "" {
		ctx = observability.WithDispatchID(ctx, observability.NewDispatchID())
	}

	names := NormalizeBackends(backends)
	result := newResult(prompt, names)
	started := time.Now()
	e.log.Debug(ctx, "dispatch started", "backends", len(names), "max_parallel", e.maxParallel)

	var g errgroup.Group
	if e.maxParallel > 0 {
		g.SetLimit(e.maxParallel)
	}
	for _, name := range names {
		adapter, ok := e.registry.Resolve(name)
		if !ok {
			e.log.Warn(ctx, "unknown backend", "backend", name)
			e.finish(result, name, Failure("unknown backend: "+name))
			continue
		}
		g.Go(func() error {
			e.finish(result, name, e.invoke(ctx, name, adapter, prompt))
			return nil
		})
	}
	_ = g.Wait()

	e.log.Info(ctx, "dispatch finished",
		"backends", len(names),
		"failed", len(result.Failures()),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return result
}

func (e *Engine) finish(result *Result, name string, out Outcome) {
	result.set(name, out)
	if e.progress != nil {
		e.progress(name, out)
	}
}

// invoke runs one adapter; a panic escaping it becomes a failure outcome.
func (e *Engine) invoke(ctx context.Context, name string, adapter Adapter, prompt string) (out Outcome) {
	ctx, span := observability.StartSpan(ctx, "dispatch.invoke", attribute.String("polymind.backend", name))
	started := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error(ctx, "adapter panic recovered", "backend", name, "panic", fmt.Sprintf("%v", rec))
			out = Failure(fmt.Sprintf("⚠️ Error: %v", rec))
		}
		span.SetAttributes(attribute.Bool("polymind.failed", out.Failed()))
		span.End()
		e.log.Debug(ctx, "backend finished",
			"backend", name,
			"failed", out.Failed(),
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}()
	return adapter.Invoke(ctx, prompt)
}
