package authorization

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Policy selects how a Requirement is evaluated.
type Policy string

const (
	// PolicyPresence allows a caller holding at least one of the required
	// features with any flag set.
	PolicyPresence Policy = "presence"

	// PolicyLevel additionally requires the flag matching the HTTP method:
	// read for queries, write for mutations, admin for deletions.
	PolicyLevel Policy = "level"
)

// Requirement is the access requirement declared for an operation. Features
// are alternatives: holding any one of them is enough. An empty Features list
// only requires a valid session.
type Requirement struct {
	Features []string
	Policy   Policy
}

// Registry is the registration table of protected operations. The HTTP layer
// looks requirements up here by operation id instead of checking features
// inline.
type Registry struct {
	mu         sync.RWMutex
	operations map[string]Requirement
	logger     *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		operations: make(map[string]Requirement),
		logger:     logger,
	}
}

// Register declares the requirement of an operation. Registering the same id
// twice is an error.
func (r *Registry) Register(operationID string, req Requirement) error {
	if operationID == "" {
		return fmt.Errorf("operation id is required")
	}
	if req.Policy == "" {
		req.Policy = PolicyPresence
	}
	if req.Policy != PolicyPresence && req.Policy != PolicyLevel {
		return fmt.Errorf("operation %s: unknown policy %q", operationID, req.Policy)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.operations[operationID]; exists {
		return fmt.Errorf("operation %s already registered", operationID)
	}
	r.operations[operationID] = Requirement{
		Features: append([]string(nil), req.Features...),
		Policy:   req.Policy,
	}
	r.logger.Debug("registered operation", "operation", operationID, "features", req.Features, "policy", req.Policy)
	return nil
}

// MustRegister is Register for startup code; it panics on error.
func (r *Registry) MustRegister(operationID string, req Requirement) {
	if err := r.Register(operationID, req); err != nil {
		panic(err)
	}
}

// Requirement returns the declared requirement of an operation.
func (r *Registry) Requirement(operationID string) (Requirement, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.operations[operationID]
	return req, ok
}

// Operations returns the registered operation ids in sorted order.
func (r *Registry) Operations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.operations))
	for id := range r.operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
