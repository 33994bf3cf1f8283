package mocktime

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)

func TestRegister_GetLazilyInitialisesToRealTime(t *testing.T) {
	fake := clockwork.NewFakeClockAt(testNow)
	r := NewRegister(fake)

	first := r.Get()
	assert.Equal(t, testNow.Unix(), first)

	fake.Advance(time.Hour)
	assert.Equal(t, first, r.Get(), "value is captured once, not re-read")
}

func TestRegister_GetWithSystemClock(t *testing.T) {
	r := NewRegister(nil)

	first := r.Get()
	assert.GreaterOrEqual(t, first, EpochFloor)
	assert.InDelta(t, time.Now().Unix(), first, 5)
	assert.Equal(t, first, r.Get())
}

func TestRegister_SetStoresVerbatim(t *testing.T) {
	r := NewRegister(clockwork.NewFakeClockAt(testNow))

	r.Set(42)
	assert.Equal(t, int64(42), r.Get())

	r.Set(-7)
	assert.Equal(t, int64(-7), r.Get(), "callers are trusted, no range check")
}

func TestRegister_SetZeroMeansNow(t *testing.T) {
	fake := clockwork.NewFakeClockAt(testNow)
	r := NewRegister(fake)
	r.Set(42)

	fake.Advance(90 * time.Second)
	r.Set(0)

	assert.Equal(t, testNow.Add(90*time.Second).Unix(), r.Get())
}

func TestRegister_SetTime(t *testing.T) {
	fake := clockwork.NewFakeClockAt(testNow)
	r := NewRegister(fake)

	r.SetTime(time.Date(2030, time.January, 1, 0, 0, 0, 500, time.UTC))
	assert.Equal(t, time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC).Unix(), r.Get())

	r.SetTime(time.Time{})
	assert.Equal(t, testNow.Unix(), r.Get())
}

func TestRegister_ResetResynchronises(t *testing.T) {
	fake := clockwork.NewFakeClockAt(testNow)
	r := NewRegister(fake)
	r.Set(42)

	fake.Advance(time.Minute)
	r.Reset()

	assert.Equal(t, testNow.Add(time.Minute).Unix(), r.Get())
	assert.NotZero(t, r.Get())
}

func TestRegister_Advance(t *testing.T) {
	r := NewRegister(clockwork.NewFakeClockAt(testNow))

	r.Advance(2*time.Hour + 1500*time.Millisecond)
	assert.Equal(t, testNow.Unix()+7201, r.Get())

	r.Set(100)
	r.Advance(-time.Minute)
	assert.Equal(t, int64(40), r.Get())
}

func TestRegister_Clock(t *testing.T) {
	fake := clockwork.NewFakeClockAt(testNow)
	r := NewRegister(fake)
	c := r.Clock()

	r.Set(testNow.Add(24 * time.Hour).Unix())

	assert.Equal(t, testNow.Add(24*time.Hour), c.Now().UTC())
	assert.Equal(t, 24*time.Hour, c.Since(testNow))
	assert.Equal(t, -24*time.Hour, c.Until(testNow))

	r.Set(testNow.Unix())
	assert.Equal(t, testNow, c.Now().UTC(), "clock follows later writes")
}

func TestDefaultRegisterFunctions(t *testing.T) {
	t.Cleanup(ResetMockTime)

	SetMockTime(42)
	assert.Equal(t, int64(42), GetMockTime())
	assert.Equal(t, int64(42), Default().Get())

	SetMockTime(0)
	assert.InDelta(t, time.Now().Unix(), GetMockTime(), 5)

	SetMockTime(42)
	ResetMockTime()
	assert.InDelta(t, time.Now().Unix(), GetMockTime(), 5)
}
