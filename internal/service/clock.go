package service

import (
	"time"

	"github.com/habitlog/internal/aggregate"
)

// Clock supplies "now". Views that depend on today read it from here.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in Location.
type SystemClock struct {
	Location *time.Location
}

// NewSystemClock returns a clock for the named IANA zone, falling back to UTC
// when the name is empty.
func NewSystemClock(zone string) (SystemClock, error) {
	if zone == "" {
		return SystemClock{Location: time.UTC}, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return SystemClock{}, err
	}
	return SystemClock{Location: loc}, nil
}

func (c SystemClock) Now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

// Today returns the clock's current calendar date.
func Today(clock Clock) time.Time {
	return aggregate.DateOf(clock.Now())
}
