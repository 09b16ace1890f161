package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-muonsel/internal/domain"
)

// SelectorLoader parses selector documents, validates them, and builds
// engines. Engines are cached by the SHA-256 of the normalized document so
// loading the same policy twice returns the same *Engine.
type SelectorLoader struct {
	// opts are applied to every engine the loader builds.
	opts   []Option
	tracer trace.Tracer

	cache   map[string]*Engine // SHA256 hash -> engine
	cacheMu sync.RWMutex
	// sf prevents duplicate engine construction when several goroutines
	// load the same document simultaneously.
	sf singleflight.Group
}

// NewSelectorLoader creates a loader with an empty cache. opts are passed
// to NewEngine for every engine built.
func NewSelectorLoader(opts ...Option) *SelectorLoader {
	return &SelectorLoader{
		opts:   opts,
		tracer: otel.Tracer("selector-loader"),
		cache:  make(map[string]*Engine),
	}
}

// LoadFromFile loads a selector document. A relative effective_area.file
// is resolved against the document's directory.
func (l *SelectorLoader) LoadFromFile(ctx context.Context, path string) (*Engine, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return l.load(ctx, data, filepath.Dir(cleanPath))
}

// LoadFromReader loads a selector document from r. A relative
// effective_area.file is resolved against the working directory.
func (l *SelectorLoader) LoadFromReader(ctx context.Context, r io.Reader) (*Engine, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return l.load(ctx, data, "")
}

func (l *SelectorLoader) load(ctx context.Context, data []byte, baseDir string) (*Engine, error) {
	_, span := l.tracer.Start(ctx, "SelectorLoader.Load")
	defer span.End()

	cfg, err := ParseSelectorConfig(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := InlineEffectiveArea(&cfg, baseDir); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "effective area load failed")
		return nil, err
	}

	// Hash after inlining so an edited effective-area file is picked up.
	hash, err := configHash(&cfg)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}
	span.SetAttributes(
		attribute.String("selector.hash", hash),
		attribute.String("selector.identification", cfg.Identification.Type),
		attribute.String("selector.isolation", cfg.Isolation.Type),
	)

	v, err, shared := l.sf.Do(hash, func() (any, error) {
		if engine, ok := l.cached(hash); ok {
			return engine, nil
		}

		engine, err := NewEngine(cfg, l.opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to build engine: %w", err)
		}

		l.store(hash, engine)
		return engine, nil
	})
	span.SetAttributes(attribute.Bool("selector.shared", shared))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		return nil, err
	}

	return v.(*Engine), nil
}

// ParseSelectorConfig strictly decodes a selector document. Unknown keys
// are rejected.
func ParseSelectorConfig(data []byte) (SelectorConfig, error) {
	var cfg SelectorConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return SelectorConfig{}, fmt.Errorf("YAML decode failed: %w", err)
	}
	return cfg, nil
}

// ReadSelectorConfig parses a selector file and inlines its effective-area
// file without building an engine.
func ReadSelectorConfig(path string) (SelectorConfig, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to read file: %w", err)
	}
	cfg, err := ParseSelectorConfig(data)
	if err != nil {
		return SelectorConfig{}, err
	}
	if err := InlineEffectiveArea(&cfg, filepath.Dir(cleanPath)); err != nil {
		return SelectorConfig{}, err
	}
	return cfg, nil
}

// LoadEffectiveAreaDefinition strictly decodes an effective-area file.
func LoadEffectiveAreaDefinition(path string) (domain.EffectiveAreaDefinition, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return domain.EffectiveAreaDefinition{}, domain.NewConfigError("effective_area.file", err)
	}

	var def domain.EffectiveAreaDefinition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return domain.EffectiveAreaDefinition{}, domain.NewConfigError("effective_area.file",
			fmt.Errorf("decode %s: %w", path, err))
	}
	return def, nil
}

// InlineEffectiveArea replaces a file reference with the table it names.
// An inline table wins over a file. The caller's EffectiveAreaConfig is
// never modified.
func InlineEffectiveArea(cfg *SelectorConfig, baseDir string) error {
	ea := cfg.EffectiveArea
	if ea == nil || ea.File == "" || len(ea.EtaEdges) > 0 {
		return nil
	}

	path := ea.File
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	def, err := LoadEffectiveAreaDefinition(path)
	if err != nil {
		return err
	}

	inlined := *ea
	inlined.EffectiveAreaDefinition = def
	cfg.EffectiveArea = &inlined
	return nil
}

// configHash computes the SHA256 of the re-encoded config, so documents
// that differ only in formatting share a cache entry.
func configHash(cfg *SelectorConfig) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(cfg); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

func (l *SelectorLoader) cached(hash string) (*Engine, bool) {
	l.cacheMu.RLock()
	defer l.cacheMu.RUnlock()

	engine, ok := l.cache[hash]
	return engine, ok
}

func (l *SelectorLoader) store(hash string, engine *Engine) {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()

	l.cache[hash] = engine
}

// ClearCache drops every cached engine.
func (l *SelectorLoader) ClearCache() {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()

	l.cache = make(map[string]*Engine)
}
