package mocktime

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrAlreadyDeclared is returned when a second artifact tries to override a
// namespace that is already overridden.
var ErrAlreadyDeclared = errors.New("namespace override already declared")

// Overrides resolves the clock a namespace should use. A namespace with an
// active override reads the register; every other namespace gets the real clock.
type Overrides struct {
	mu       sync.RWMutex
	mock     clockwork.Clock
	fallback clockwork.Clock
	active   map[string]string // namespace -> artifact path
}

// NewOverrides creates a resolver bound to r.
func NewOverrides(r *Register) *Overrides {
	return &Overrides{
		mock:     r.Clock(),
		fallback: r.source,
		active:   make(map[string]string),
	}
}

// Activate records that the artifact at path overrides namespace. Loading the
// same artifact again is a no-op.
func (o *Overrides) Activate(namespace, path string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if prev, ok := o.active[namespace]; ok {
		if prev == path {
			return nil
		}
		return fmt.Errorf("%w: %s (by %s)", ErrAlreadyDeclared, namespace, prev)
	}
	o.active[namespace] = path
	return nil
}

// Overridden reports whether namespace has an active override.
func (o *Overrides) Overridden(namespace string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	_, ok := o.active[namespace]
	return ok
}

// Clock returns the register-bound clock for an overridden namespace and the
// real clock otherwise.
func (o *Overrides) Clock(namespace string) clockwork.Clock {
	if o.Overridden(namespace) {
		return o.mock
	}
	return o.fallback
}

// Now is shorthand for Clock(namespace).Now().
func (o *Overrides) Now(namespace string) time.Time {
	return o.Clock(namespace).Now()
}

// Namespaces returns the overridden namespaces in sorted order.
func (o *Overrides) Namespaces() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]string, 0, len(o.active))
	for ns := range o.active {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

var defaultOverrides = NewOverrides(defaultRegister)

// DefaultOverrides returns the resolver bound to the default register.
func DefaultOverrides() *Overrides { return defaultOverrides }

// Resolve returns the clock for namespace from the default resolver.
func Resolve(namespace string) clockwork.Clock { return defaultOverrides.Clock(namespace) }
