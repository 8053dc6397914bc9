package throttle

import "sync"

// Registry hands out one Throttler per provider name, creating it lazily
// on first use from the tuning set by Configure (or Config's defaults when
// none was set), per spec.md §4.4's "each
// provider has a stable name used as the throttler key."
type Registry struct {
	mu      sync.Mutex
	configs map[string]Config
	ts      map[string]*Throttler
}

// NewRegistry creates an empty throttler registry.
func NewRegistry() *Registry {
	return &Registry{
		configs: make(map[string]Config),
		ts:      make(map[string]*Throttler),
	}
}

// Configure sets the AIMD tuning for a provider name, used before that
// provider's first Get so its initial/max/threshold match its tier.
func (r *Registry) Configure(name string, cfg Config) {
	cfg.Name = name
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[name] = cfg
}

// Get returns the Throttler for name, creating it from the configured (or
// default) tuning on first call.
func (r *Registry) Get(name string) *Throttler {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.ts[name]; ok {
		return t
	}
	cfg := r.configs[name]
	cfg.Name = name
	t := New(cfg)
	r.ts[name] = t
	return t
}

// States snapshots every throttler currently in the registry, for status reporting.
func (r *Registry) States() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	states := make([]State, 0, len(r.ts))
	for _, t := range r.ts {
		states = append(states, t.State())
	}
	return states
}
