package patterns

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/bidsift/internal/models"
)

// Registry holds the pattern sets for all registered trades. It is safe for
// concurrent use; registration replaces a trade's set atomically, so readers
// observe either the previous set or the new one, never a mix.
type Registry struct {
	mu     sync.RWMutex
	trades map[string]TradePatterns
	logger *zap.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger for the registry.
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty pattern registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		trades: make(map[string]TradePatterns),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register validates and installs the pattern set for a trade, replacing any
// previous set for the same code. On validation failure the previous set is
// left untouched and the error is an *InvalidPatternError.
func (r *Registry) Register(trade string, p TradePatterns) error {
	if err := Validate(trade, p); err != nil {
		return err
	}
	r.mu.Lock()
	r.trades[trade] = p
	r.mu.Unlock()
	r.logger.Debug("registered trade patterns",
		zap.String("trade", trade),
		zap.Int("content_patterns", len(p.Content)),
		zap.Int("sign_types", len(p.SignTypes)))
	return nil
}

// Unregister removes a trade's pattern set. Removing an unknown trade is a
// no-op.
func (r *Registry) Unregister(trade string) {
	r.mu.Lock()
	delete(r.trades, trade)
	r.mu.Unlock()
}

// Get returns the pattern set for a trade code. The second return value is
// false when the trade is not registered.
func (r *Registry) Get(trade string) (TradePatterns, bool) {
	r.mu.RLock()
	p, ok := r.trades[trade]
	r.mu.RUnlock()
	return p, ok
}

// Trades returns all registered trade codes ordered by priority, then by
// code. The order is deterministic for a given registry state.
func (r *Registry) Trades() []string {
	r.mu.RLock()
	codes := make([]string, 0, len(r.trades))
	prio := make(map[string]int, len(r.trades))
	for code, p := range r.trades {
		codes = append(codes, code)
		prio[code] = p.Priority
	}
	r.mu.RUnlock()
	sort.Slice(codes, func(i, j int) bool {
		if prio[codes[i]] != prio[codes[j]] {
			return prio[codes[i]] < prio[codes[j]]
		}
		return codes[i] < codes[j]
	})
	return codes
}

// Len returns the number of registered trades.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.trades)
}

// MatchTrade picks the trade whose filename or path keywords match the
// document, walking trades in priority order. It returns false when no
// registered trade matches. Content patterns do not participate; dispatch
// is intentionally cheap so it can run before any content sampling.
func (r *Registry) MatchTrade(doc models.DocumentInfo) (string, bool) {
	for _, code := range r.Trades() {
		p, ok := r.Get(code)
		if !ok {
			continue
		}
		if anyKeyword(doc.Filename, p.FilenameKeywords) || anyKeyword(doc.FolderPath, p.PathKeywords) {
			return code, true
		}
	}
	return "", false
}
