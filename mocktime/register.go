package mocktime

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// EpochFloor is a lower bound for any value a Register reports without an
// explicit Set: 2001-09-09T01:46:40Z.
const EpochFloor int64 = 1000000000

// Register holds the mock time as Unix seconds.
type Register struct {
	mu     sync.Mutex
	source clockwork.Clock
	value  int64
}

// NewRegister creates a Register that reads real time from c. Pass nil to use
// the system clock.
func NewRegister(c clockwork.Clock) *Register {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	return &Register{source: c}
}

// Set stores ts verbatim. Zero substitutes the real current time.
func (r *Register) Set(ts int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ts == 0 {
		ts = r.source.Now().Unix()
	}
	r.value = ts
}

// SetTime stores t truncated to the second. The zero time substitutes the
// real current time.
func (r *Register) SetTime(t time.Time) {
	if t.IsZero() {
		r.Set(0)
		return
	}
	r.Set(t.Unix())
}

// Reset resynchronises the register to the real current time.
func (r *Register) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.value = r.source.Now().Unix()
}

// Get returns the mock time, initialising it to the real current time when
// nothing has been stored yet.
func (r *Register) Get() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// Advance moves the mock time by the whole seconds in d.
func (r *Register) Advance(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.value = r.load() + int64(d/time.Second)
}

// load must be called with mu held.
func (r *Register) load() int64 {
	if r.value == 0 {
		r.value = r.source.Now().Unix()
	}
	return r.value
}

var defaultRegister = NewRegister(nil)

// Default returns the process-wide register.
func Default() *Register { return defaultRegister }

// SetMockTime sets the default register. Zero means the real current time.
func SetMockTime(ts int64) { defaultRegister.Set(ts) }

// ResetMockTime resynchronises the default register to the real current time.
func ResetMockTime() { defaultRegister.Reset() }

// GetMockTime reads the default register.
func GetMockTime() int64 { return defaultRegister.Get() }
