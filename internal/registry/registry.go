// Package registry bridges a diagnostic's analysis-time context to the
// diagnostic object the host materializes later.
//
// The host calls RecordContext while it still sees the tree path of a flagged
// program point, keyed by the pending diagnostic's description. Once the
// diagnostic exists, BindDiagnostic turns the recorded context into a
// signature stored under the diagnostic itself. A Registry belongs to one
// analysis session: it is not safe for concurrent use, and Clear must be
// called between independent runs sharing an instance.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/morozRed/sigtrack/internal/signature"
	"github.com/morozRed/sigtrack/internal/snapshot"
)

// Registry maps descriptions (S) to pending contexts and diagnostics (D) to
// finalized signatures.
type Registry[D, S any] struct {
	signatures *keyedMap[D, signature.Signature]
	pending    *keyedMap[S, snapshot.Snapshot]

	policy      signature.Policy
	evictOnBind bool
	logger      *slog.Logger
}

// Stats counts the entries of both mappings.
type Stats struct {
	Pending int `json:"pending"`
	Bound   int `json:"bound"`
}

type options struct {
	policy       signature.Policy
	pendingLimit int
	evictOnBind  bool
	logger       *slog.Logger
}

// Option configures a Registry.
type Option func(*options)

// WithPolicy sets the similarity policy of the signatures the registry builds.
func WithPolicy(policy signature.Policy) Option {
	return func(o *options) { o.policy = policy }
}

// WithPendingLimit caps the number of pending contexts, dropping the least
// recently used description first. Zero keeps the map unbounded.
func WithPendingLimit(n int) Option {
	return func(o *options) { o.pendingLimit = n }
}

// WithEvictOnBind removes a pending context once a diagnostic is bound to it.
// By default the context stays available for later diagnostics sharing the
// same description.
func WithEvictOnBind(evict bool) Option {
	return func(o *options) { o.evictOnBind = evict }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New creates an empty registry. diagnosticKey and descriptionKey fingerprint
// the two kinds of keys independently.
func New[D, S any](diagnosticKey Fingerprint[D], descriptionKey Fingerprint[S], opts ...Option) (*Registry[D, S], error) {
	if diagnosticKey == nil || descriptionKey == nil {
		return nil, fmt.Errorf("registry: both fingerprint functions are required")
	}

	o := options{policy: signature.DefaultPolicy()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.policy.Validate(); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if o.pendingLimit < 0 {
		return nil, fmt.Errorf("registry: pending limit must not be negative, got %d", o.pendingLimit)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	var pendingStore store[snapshot.Snapshot]
	if o.pendingLimit > 0 {
		bounded, err := newLRUStore[snapshot.Snapshot](o.pendingLimit)
		if err != nil {
			return nil, fmt.Errorf("registry: %w", err)
		}
		pendingStore = bounded
	}

	return &Registry[D, S]{
		signatures:  newKeyedMap[D, signature.Signature](diagnosticKey, nil),
		pending:     newKeyedMap[S, snapshot.Snapshot](descriptionKey, pendingStore),
		policy:      o.policy,
		evictOnBind: o.evictOnBind,
		logger:      o.logger,
	}, nil
}

// RecordContext stores snap for description, replacing any earlier context.
func (r *Registry[D, S]) RecordContext(description S, snap snapshot.Snapshot) {
	r.pending.put(description, snap)
	r.logger.Debug("recorded context",
		"description", r.pending.key(description),
		"depth", snap.Len())
}

// RecordCursor captures c immediately and records the result.
func (r *Registry[D, S]) RecordCursor(description S, c snapshot.Cursor) {
	r.RecordContext(description, snapshot.Capture(c))
}

// BindDiagnostic attaches the context recorded for description to diagnostic.
// It reports false, and changes nothing, when no context was recorded.
func (r *Registry[D, S]) BindDiagnostic(diagnostic D, description S) bool {
	var (
		snap snapshot.Snapshot
		ok   bool
	)
	if r.evictOnBind {
		snap, ok = r.pending.take(description)
	} else {
		snap, ok = r.pending.get(description)
	}
	if !ok {
		return false
	}

	r.signatures.put(diagnostic, signature.FromSnapshot(snap, r.policy))
	r.logger.Debug("bound diagnostic",
		"diagnostic", r.signatures.key(diagnostic),
		"description", r.pending.key(description))
	return true
}

// Signature returns the signature bound to diagnostic, if any.
func (r *Registry[D, S]) Signature(diagnostic D) (signature.Signature, bool) {
	return r.signatures.get(diagnostic)
}

// Clear drops every pending context and bound signature.
func (r *Registry[D, S]) Clear() {
	stats := r.Stats()
	r.pending.clear()
	r.signatures.clear()
	r.logger.Debug("cleared registry", "pending", stats.Pending, "bound", stats.Bound)
}

func (r *Registry[D, S]) Stats() Stats {
	return Stats{Pending: r.pending.len(), Bound: r.signatures.len()}
}

func (r *Registry[D, S]) Policy() signature.Policy {
	return r.policy
}
