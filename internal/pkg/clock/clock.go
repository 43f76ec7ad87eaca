// Package clock abstracts the current time so services can be tested
// against fixed instants.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System is the production Clock backed by time.Now.
type System struct{}

// New returns a System clock.
func New() System {
	return System{}
}

// Now returns the current UTC time.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant until moved with Advance.
type Fixed struct {
	At time.Time
}

// Now returns the stored instant.
func (f *Fixed) Now() time.Time {
	return f.At
}

// Advance moves the stored instant forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.At = f.At.Add(d)
}
