// Package application provides the selection engine and the configuration
// layer that builds it: selector documents, the keyed surface, validation,
// the criterion registry and attribute resolution.
package application

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"runtime"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-muonsel/infrastructure/criteria"
	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/logging"
	"github.com/ahrav/go-muonsel/internal/ports"
)

// Metric names recorded by the engine when a collector is attached.
const (
	MetricOutcomes          = "muon_selection_outcomes_total"
	MetricErrors            = "muon_selection_errors_total"
	MetricBatchWorkers      = "batch_workers"
	MetricBatchPassFraction = "batch_pass_fraction"
	OperationSelect         = "muon_selection_evaluate"
)

// Engine judges muons against one immutable selection policy. All
// collaborators are fixed in NewEngine; Evaluate takes no locks and an
// Engine may be shared freely across goroutines.
type Engine struct {
	config SelectorConfig

	idVariant  IDVariant
	isoVariant IsoVariant

	kinematics     criteria.Boundary
	identification ports.Criterion
	isolation      ports.Criterion
	// generator judges generator-level muons on GenIso / pt against the
	// isolation maximum, whatever the configured variant.
	generator ports.Criterion

	resolver ports.AttributeResolver
	table    *domain.EffectiveAreaTable

	logger      *slog.Logger
	metrics     ports.MetricsCollector
	tracer      trace.Tracer
	concurrency int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for construction-time messages.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics attaches a collector that receives one outcome count and one
// latency sample per evaluated muon.
func WithMetrics(m ports.MetricsCollector) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithResolver overrides the resolver named by the configuration.
func WithResolver(r ports.AttributeResolver) Option {
	return func(e *Engine) {
		if r != nil {
			e.resolver = r
		}
	}
}

// WithConcurrency bounds the number of goroutines used by EvaluateBatch.
// Non-positive values keep the default of twice the CPU count.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// NewEngine validates cfg and builds the criteria it names. Every
// configuration problem is reported here, never during evaluation.
func NewEngine(cfg SelectorConfig, opts ...Option) (*Engine, error) {
	if err := InlineEffectiveArea(&cfg, ""); err != nil {
		return nil, err
	}
	if err := ValidateSelectorConfig(&cfg); err != nil {
		return nil, err
	}

	e := &Engine{
		config:      cfg,
		kinematics:  cfg.Kinematics.Boundary.OrDefault(criteria.BoundaryInclusive),
		logger:      logging.NewNop(),
		tracer:      otel.Tracer("muon-selection-engine"),
		concurrency: runtime.NumCPU() * 2,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = newResolver(cfg.AttributeResolution)
	}

	var err error
	if e.idVariant, e.isoVariant, err = cfg.Variants(); err != nil {
		return nil, err
	}

	if cfg.EffectiveArea != nil {
		e.table, err = domain.NewEffectiveAreaTable(cfg.EffectiveArea.EffectiveAreaDefinition)
		if err != nil {
			return nil, err
		}
	}

	registry := NewCriterionRegistry(e.table)

	idParams, err := decodeParameters(cfg.Identification.Parameters)
	if err != nil {
		return nil, domain.NewConfigError("identification.parameters", err)
	}
	if e.identification, err = registry.CreateIdentification(e.idVariant, idParams); err != nil {
		return nil, err
	}

	isoParams, err := isolationParams(cfg.Isolation)
	if err != nil {
		return nil, domain.NewConfigError("isolation.parameters", err)
	}
	if e.isolation, err = registry.CreateIsolation(e.isoVariant, isoParams); err != nil {
		return nil, err
	}

	e.generator, err = criteria.NewGeneratorIso(criteria.GeneratorIsoConfig{
		Max:      cfg.Isolation.Max,
		Boundary: cfg.Isolation.Boundary,
	})
	if err != nil {
		return nil, domain.NewConfigError("isolation.max", err)
	}

	e.logConstruction()
	return e, nil
}

func (e *Engine) logConstruction() {
	attrs := []any{
		"identification", string(e.idVariant),
		"isolation", string(e.isoVariant),
		"resolver", e.resolver.Mode(),
		"invert_isolation", e.config.Isolation.Invert,
	}
	if pf, ok := e.isolation.(*criteria.PFIso); ok {
		attrs = append(attrs, "pileup_correction", pf.Correction(), "cone", string(pf.Config().Cone))
	}
	e.logger.Info("muon selection engine built", attrs...)

	if mini, ok := e.isolation.(*criteria.MiniIso); ok && !mini.Implemented() {
		e.logger.Warn("mini isolation is not implemented; every muon passes isolation",
			"isolation", string(e.isoVariant))
	}
}

// Evaluate judges a single muon. A record the configured criteria need but
// the muon lacks is returned as an error wrapping *ports.AttributeLookupError.
func (e *Engine) Evaluate(in domain.Input) (domain.Decision, error) {
	start := time.Now()
	d, err := e.evaluate(in)
	if err != nil {
		e.recordError(err)
		return domain.Decision{}, err
	}
	e.recordDecision(d, time.Since(start))
	return d, nil
}

func (e *Engine) evaluate(in domain.Input) (domain.Decision, error) {
	cand := NewCandidate(in, e.resolver)
	kin := e.passKinematics(in.Muon)

	if in.Muon.Level == domain.LevelGenerated {
		iso, err := e.generator.Pass(cand)
		if err != nil {
			return domain.Decision{}, fmt.Errorf("generator isolation: %w", err)
		}
		return domain.NewDecision(kin, true, e.invert(iso)), nil
	}

	id, err := e.identification.Pass(cand)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("identification: %w", err)
	}
	iso, err := e.isolation.Pass(cand)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("isolation: %w", err)
	}
	return domain.NewDecision(kin, id, e.invert(iso)), nil
}

func (e *Engine) passKinematics(m domain.Muon) bool {
	k := e.config.Kinematics
	return e.kinematics.Above(m.Pt, k.PtMin) && e.kinematics.Below(math.Abs(m.Eta), k.EtaMax)
}

func (e *Engine) invert(iso bool) bool {
	if e.config.Isolation.Invert {
		return !iso
	}
	return iso
}

func (e *Engine) labels() map[string]string {
	return map[string]string{
		"identification": string(e.idVariant),
		"isolation":      string(e.isoVariant),
	}
}

func (e *Engine) recordDecision(d domain.Decision, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordLatency(OperationSelect, elapsed, e.labels())
	outcome := e.labels()
	outcome["code"] = d.Code.String()
	e.metrics.RecordCounter(MetricOutcomes, 1, outcome)
}

func (e *Engine) recordError(err error) {
	if e.metrics == nil {
		return
	}
	labels := e.labels()
	labels["reason"] = errorReason(err)
	e.metrics.RecordCounter(MetricErrors, 1, labels)
}

// EffectiveArea returns the pileup table, or nil when the policy has none.
func (e *Engine) EffectiveArea() *domain.EffectiveAreaTable { return e.table }

// Config returns a copy of the policy the engine was built from.
func (e *Engine) Config() SelectorConfig { return e.config }

// Variants returns the parsed identification and isolation selectors.
func (e *Engine) Variants() (IDVariant, IsoVariant) { return e.idVariant, e.isoVariant }

// Identification returns the identification criterion.
func (e *Engine) Identification() ports.Criterion { return e.identification }

// Isolation returns the isolation criterion.
func (e *Engine) Isolation() ports.Criterion { return e.isolation }

// Resolver returns the attribute resolver bound at construction.
func (e *Engine) Resolver() ports.AttributeResolver { return e.resolver }

// Requires lists, in sorted order, every record the engine may read from a
// reconstructed muon.
func (e *Engine) Requires() []string {
	set := make(map[string]struct{})
	for _, name := range e.identification.Requires() {
		set[name] = struct{}{}
	}
	for _, name := range e.isolation.Requires() {
		set[name] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

// errorReason classifies an evaluation error for metric labels.
func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrKeyNotFound):
		return "missing_record"
	case errors.Is(err, domain.ErrTypeMismatch):
		return "type_mismatch"
	default:
		return "other"
	}
}
