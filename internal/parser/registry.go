package parser

import (
	"sort"
	"sync"

	"ledgerline/statement-import/internal/logging"
)

// Registry resolves which parser handles a file. It is an explicitly
// constructed instance handed to the workflow orchestrator, never a
// process-wide singleton, so tests can build a fresh registry per case.
//
// Parsers are consulted in registration order and the first CanParse match
// wins; register more specific parsers before ones with overlapping
// extension claims.
type Registry struct {
	mu      sync.RWMutex
	parsers []Parser
	logger  logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Registry{logger: logger}
}

// Register appends a parser. A parser re-registered under an existing name
// replaces the old entry in place, keeping its priority position.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.parsers {
		if existing.Name() == p.Name() {
			r.parsers[i] = p
			return
		}
	}
	r.parsers = append(r.parsers, p)
	r.logger.Debug("Registered parser",
		logging.Field{Key: "parser", Value: p.Name()})
}

// Unregister removes the parser with the given name, reporting whether it
// was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.parsers {
		if p.Name() == name {
			r.parsers = append(r.parsers[:i], r.parsers[i+1:]...)
			return true
		}
	}
	return false
}

// FindParser returns the first registered parser claiming the file, or nil
// when the format is unsupported. Callers surface "unsupported format"
// themselves; a nil result is not an error condition.
func (r *Registry) FindParser(filename, mime string) Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.parsers {
		if p.CanParse(filename, mime) {
			return p
		}
	}
	return nil
}

// ListParsers returns the registered parser names in priority order.
func (r *Registry) ListParsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.parsers))
	for _, p := range r.parsers {
		names = append(names, p.Name())
	}
	return names
}

// SupportedExtensions returns the union of all registered extension claims,
// sorted and deduplicated.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, p := range r.parsers {
		for _, ext := range p.DefaultConfig().SupportedExtensions {
			seen[ext] = true
		}
	}
	return sortedKeys(seen)
}

// SupportedMimeTypes returns the union of all registered MIME claims.
func (r *Registry) SupportedMimeTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, p := range r.parsers {
		for _, mime := range p.DefaultConfig().MimeTypes {
			seen[mime] = true
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
