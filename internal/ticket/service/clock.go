package service

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/allisson/ticketsentry/internal/errors"
)

// ErrInvalidClockRange indicates a random clock whose end year is not after its start year.
var ErrInvalidClockRange = errors.Wrap(errors.ErrInvalidInput, "invalid clock range")

type systemClock struct{}

// NewSystemClock returns a Clock reading the wall clock in UTC.
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed time.
func (c FixedClock) Now() time.Time {
	return c.T
}

// RandomClock returns uniformly random minute-resolution times between two years,
// the way an emulated printer with an unset real-time clock behaves.
type RandomClock struct {
	mu       sync.Mutex
	rng      *rand.Rand
	from     time.Time
	spanMins int64
}

// NewRandomClock returns a RandomClock over [fromYear, toYear) seeded with seed.
func NewRandomClock(seed uint64, fromYear, toYear int) (*RandomClock, error) {
	if toYear <= fromYear {
		return nil, errors.Wrapf(ErrInvalidClockRange, "%d..%d", fromYear, toYear)
	}
	from := time.Date(fromYear, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(toYear, 1, 1, 0, 0, 0, 0, time.UTC)
	return &RandomClock{
		rng:      rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)), //nolint:gosec // emulation only
		from:     from,
		spanMins: int64(to.Sub(from) / time.Minute),
	}, nil
}

// Now returns the next random time.
func (c *RandomClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.from.Add(time.Duration(c.rng.Int64N(c.spanMins)) * time.Minute)
}
