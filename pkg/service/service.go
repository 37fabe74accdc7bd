package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/unparse"
	"github.com/aretw0/unparse/internal/logging"
	"github.com/aretw0/unparse/pkg/domain"
	"github.com/aretw0/unparse/pkg/grammar"
	"github.com/aretw0/unparse/pkg/observability"
	"github.com/aretw0/unparse/pkg/ports"
	"github.com/aretw0/unparse/pkg/tree"
	"github.com/aretw0/unparse/pkg/walk"
)

// DefaultGrammar is used when a request names none.
const DefaultGrammar = "es5"

// MaxIndent is the longest indentation unit a request may set.
const MaxIndent = 8

// Resolver looks grammars up by name.
type Resolver interface {
	Resolve(name string) (*grammar.Grammar, error)
	Names() []string
}

type builtins struct{}

func (builtins) Resolve(name string) (*grammar.Grammar, error) { return grammar.Resolve(name) }
func (builtins) Names() []string                               { return grammar.Names() }

// Request is one render.
type Request struct {
	Grammar string     `json:"grammar"`
	Minify  bool       `json:"minify"`
	Indent  string     `json:"indent,omitempty"` // Overrides the grammar's indentation unit
	Tree    *tree.Node `json:"tree"`
}

// Result is a rendered request.
type Result struct {
	Text   string
	Cached bool   // Served from the render cache
	Key    string // Cache key; empty when no cache is configured
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

type unparserKey struct {
	grammar string
	minify  bool
	indent  string
}

// Service renders requests. Safe for concurrent use.
// It uses reference counting to garbage collect unused locks.
type Service struct {
	resolver Resolver
	cache    ports.RenderCache
	locker   ports.DistributedLocker
	lockTTL  time.Duration
	metrics  *observability.Metrics
	logger   *slog.Logger

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	umu       sync.Mutex
	unparsers map[unparserKey]*unparse.Unparser
}

// Option configures the Service.
type Option func(*Service)

// WithResolver replaces the built-in grammar lookup.
func WithResolver(r Resolver) Option {
	return func(s *Service) {
		s.resolver = r
	}
}

// WithCache enables render caching.
func WithCache(cache ports.RenderCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithLocker enables distributed locking of cache misses.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

// WithLockTTL bounds how long a distributed lock outlives a crashed holder.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.lockTTL = ttl
	}
}

// WithMetrics instruments renders and cache lookups.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger configures a logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a Service.
func New(opts ...Option) *Service {
	s := &Service{
		resolver:  builtins{},
		lockTTL:   30 * time.Second,
		logger:    logging.NewNop(), // Default to no-op
		locks:     make(map[string]*lockEntry),
		unparsers: make(map[unparserKey]*unparse.Unparser),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Grammars lists the grammar names the service resolves without a file path.
func (s *Service) Grammars() []string {
	return s.resolver.Names()
}

// Grammar resolves a grammar by name; empty means DefaultGrammar.
func (s *Service) Grammar(name string) (*grammar.Grammar, error) {
	if name == "" {
		name = DefaultGrammar
	}
	return s.resolver.Resolve(name)
}

// Render renders req.Tree, serving and filling the cache when one is set.
// Trees with node types the grammar lacks are rejected before rendering,
// with every missing type reported.
func (s *Service) Render(ctx context.Context, req Request) (Result, error) {
	u, g, err := s.prepare(req)
	if err != nil {
		return Result{}, err
	}

	if s.cache == nil {
		text, err := u.Render(req.Tree)
		return Result{Text: text}, err
	}

	key, err := Key(g, req, req.Tree)
	if err != nil {
		return Result{}, err
	}
	if text, ok := s.lookup(ctx, key); ok {
		return Result{Text: text, Cached: true, Key: key}, nil
	}

	var res Result
	err = s.WithLock(ctx, key, func(ctx context.Context) error {
		// Another holder may have filled the cache while we waited.
		if text, ok := s.lookup(ctx, key); ok {
			res = Result{Text: text, Cached: true, Key: key}
			return nil
		}
		text, err := u.Render(req.Tree)
		if err != nil {
			return err
		}
		if err := s.cache.Set(ctx, key, text); err != nil {
			s.logger.Warn("Failed to cache render", "key", key, "err", err)
		}
		res = Result{Text: text, Key: key}
		return nil
	})
	return res, err
}

// Stream validates req like Render and returns its chunks, uncached.
func (s *Service) Stream(req Request) (iter.Seq2[string, error], error) {
	u, _, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	return u.Unparse(req.Tree), nil
}

// Preview renders at most maxBytes of req, uncached. The walk stops as soon
// as the budget is spent.
func (s *Service) Preview(req Request, maxBytes int) (string, bool, error) {
	u, _, err := s.prepare(req)
	if err != nil {
		return "", false, err
	}
	return u.Preview(req.Tree, maxBytes)
}

func (s *Service) prepare(req Request) (*unparse.Unparser, *grammar.Grammar, error) {
	if req.Tree == nil {
		return nil, nil, &domain.ConfigError{Field: "tree", Reason: "is required"}
	}
	if err := req.Tree.Validate(); err != nil {
		return nil, nil, &domain.ConfigError{Field: "tree", Reason: err.Error()}
	}
	if err := checkIndent(req.Indent); err != nil {
		return nil, nil, err
	}
	g, err := s.Grammar(req.Grammar)
	if err != nil {
		return nil, nil, err
	}
	if err := g.Check(req.Tree); err != nil {
		return nil, nil, err
	}
	u, err := s.unparser(g, req.Minify, req.Indent)
	if err != nil {
		return nil, nil, err
	}
	return u, g, nil
}

// checkIndent accepts an empty unit (the grammar's own) or up to MaxIndent
// spaces or tabs, not mixed. Unparsers are memoized per unit, so the set of
// accepted units stays small.
func checkIndent(indent string) error {
	if indent == "" {
		return nil
	}
	if len(indent) > MaxIndent || (strings.Trim(indent, " ") != "" && strings.Trim(indent, "\t") != "") {
		return &domain.ConfigError{Field: "indent", Reason: fmt.Sprintf("must be 1 to %d spaces or tabs", MaxIndent)}
	}
	return nil
}

// lookup treats cache failures as misses.
func (s *Service) lookup(ctx context.Context, key string) (string, bool) {
	text, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Render cache lookup failed", "key", key, "err", err)
		ok = false
	}
	if s.metrics != nil {
		s.metrics.ObserveCache(ok)
	}
	return text, ok
}

func (s *Service) unparser(g *grammar.Grammar, minify bool, indent string) (*unparse.Unparser, error) {
	k := unparserKey{grammar: g.Digest(), minify: minify, indent: indent}

	s.umu.Lock()
	defer s.umu.Unlock()
	if u, ok := s.unparsers[k]; ok {
		return u, nil
	}

	opts := []unparse.Option{unparse.WithLogger(s.logger)}
	if indent != "" {
		opts = append(opts, unparse.WithIndent(indent))
	}
	if s.metrics != nil {
		opts = append(opts, unparse.WithWalk(s.metrics.Walk(walk.Walk)))
	}
	u, err := g.Unparser(minify, opts...)
	if err != nil {
		return nil, fmt.Errorf("grammar %s: %w", g.Name, err)
	}
	s.unparsers[k] = u
	return u, nil
}

// Key digests a request: the grammar content, the output settings and the
// tree. req.Grammar and req.Tree are ignored in favor of g and root.
func Key(g *grammar.Grammar, req Request, root *tree.Node) (string, error) {
	data, err := json.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("failed to encode tree: %w", err)
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s\n%t\n%q\n", g.Digest(), req.Minify, req.Indent)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (s *Service) acquire(key string) *lockEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.locks[key]
	if !exists {
		entry = &lockEntry{}
		s.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (s *Service) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(s.locks, key)
	}
}

// WithLock executes fn while holding the lock for key, in this process and,
// with a locker configured, across replicas.
func (s *Service) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := s.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		s.release(key)
	}()

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, key, s.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
