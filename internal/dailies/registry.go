package dailies

import (
	"github.com/dailyforge/dailies-api/internal/errors"
)

// Registry is an explicitly constructed, read-only-after-setup
// catalog of daily definitions. Enumeration order is registration
// order.
type Registry struct {
	order   []string
	dailies map[string]*Daily
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{dailies: make(map[string]*Daily)}
}

// Register adds a daily definition to the registry.
func (r *Registry) Register(daily *Daily) error {
	if daily == nil {
		return errors.InvalidArgument("daily cannot be nil")
	}
	if daily.Key == "" {
		return errors.InvalidArgument("daily key cannot be empty")
	}
	if daily.Rows == nil {
		return errors.InvalidArgumentf("daily %s has no rows function", daily.Key)
	}
	if _, exists := r.dailies[daily.Key]; exists {
		return errors.AlreadyExistsf("daily %s already registered", daily.Key)
	}
	r.order = append(r.order, daily.Key)
	r.dailies[daily.Key] = daily
	return nil
}

// MustRegister registers a daily and panics on error. For use in
// catalog setup code.
func (r *Registry) MustRegister(daily *Daily) {
	if err := r.Register(daily); err != nil {
		panic(err)
	}
}

// Get returns the daily with the given key, or nil.
func (r *Registry) Get(key string) *Daily {
	return r.dailies[key]
}

// All returns every registered daily in registration order.
func (r *Registry) All() []*Daily {
	out := make([]*Daily, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.dailies[key])
	}
	return out
}

// Enabled returns every registered daily not present in the
// per-character disabled set, in registration order.
func (r *Registry) Enabled(disabled []string) []*Daily {
	skip := make(map[string]struct{}, len(disabled))
	for _, key := range disabled {
		skip[key] = struct{}{}
	}
	out := make([]*Daily, 0, len(r.order))
	for _, key := range r.order {
		if _, off := skip[key]; off {
			continue
		}
		out = append(out, r.dailies[key])
	}
	return out
}
