package application

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-muonsel/internal/domain"
)

// EvaluateBatch judges every input concurrently and returns the decisions
// in input order. The first error cancels the remaining work and is
// returned annotated with the failing index.
func (e *Engine) EvaluateBatch(ctx context.Context, inputs []domain.Input) ([]domain.Decision, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.EvaluateBatch",
		trace.WithAttributes(
			attribute.Int("selector.batch_size", len(inputs)),
			attribute.String("selector.identification", string(e.idVariant)),
			attribute.String("selector.isolation", string(e.isoVariant)),
			attribute.Int("selector.concurrency", e.concurrency),
		))
	defer span.End()

	decisions := make([]domain.Decision, len(inputs))
	if len(inputs) == 0 {
		return decisions, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := e.Evaluate(inputs[i])
			if err != nil {
				return fmt.Errorf("muon %d: %w", i, err)
			}
			// Each goroutine owns exactly one slot.
			decisions[i] = d
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch evaluation failed")
		return nil, err
	}

	passed := 0
	for _, d := range decisions {
		if d.Passed() {
			passed++
		}
	}
	span.SetAttributes(attribute.Int("selector.passed", passed))
	if e.metrics != nil {
		e.metrics.RecordGauge(MetricBatchWorkers, float64(e.concurrency), nil)
		e.metrics.RecordHistogram(MetricBatchPassFraction, float64(passed)/float64(len(decisions)), e.labels())
	}
	return decisions, nil
}

// Summary counts decisions per outcome code.
type Summary struct {
	Total  int                    `json:"total"`
	Counts map[domain.Outcome]int `json:"counts"`
}

// Summarize folds decisions into a Summary.
func Summarize(decisions []domain.Decision) Summary {
	s := Summary{Counts: make(map[domain.Outcome]int, 5)}
	for _, d := range decisions {
		s.Add(d)
	}
	return s
}

// Add records one decision.
func (s *Summary) Add(d domain.Decision) {
	if s.Counts == nil {
		s.Counts = make(map[domain.Outcome]int, 5)
	}
	s.Total++
	s.Counts[d.Code]++
}
