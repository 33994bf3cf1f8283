package mocktime

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// registerClock reads Now from a Register. Timers, tickers and sleeps stay on
// the register's real-time source.
type registerClock struct {
	clockwork.Clock
	r *Register
}

// Clock returns a clockwork.Clock whose Now, Since and Until follow the register.
func (r *Register) Clock() clockwork.Clock {
	return registerClock{Clock: r.source, r: r}
}

func (c registerClock) Now() time.Time {
	return time.Unix(c.r.Get(), 0)
}

func (c registerClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

func (c registerClock) Until(t time.Time) time.Duration {
	return t.Sub(c.Now())
}
