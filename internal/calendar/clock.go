package calendar

import (
	"sync"
	"time"
)

// Clock answers "what day is it" for one user's calendar.
type Clock interface {
	Today() Date
}

// Local reads the wall clock in a fixed location.
type Local struct {
	Loc *time.Location
}

func (c Local) Today() Date {
	loc := c.Loc
	if loc == nil {
		loc = time.Local
	}
	return Of(time.Now().In(loc))
}

// LoadLocal resolves an IANA zone name; an empty name means the host zone.
func LoadLocal(name string) (Local, error) {
	if name == "" {
		return Local{Loc: time.Local}, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Local{}, err
	}
	return Local{Loc: loc}, nil
}

// Fixed is a settable clock for tests.
type Fixed struct {
	mu  sync.Mutex
	day Date
}

func NewFixed(d Date) *Fixed {
	return &Fixed{day: d}
}

func (f *Fixed) Today() Date {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.day
}

func (f *Fixed) Set(d Date) {
	f.mu.Lock()
	f.day = d
	f.mu.Unlock()
}

// Advance moves the clock by n days.
func (f *Fixed) Advance(n int) {
	f.mu.Lock()
	f.day = f.day.AddDays(n)
	f.mu.Unlock()
}
