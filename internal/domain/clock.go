package domain

import "github.com/jonboulle/clockwork"

// clock stamps run metadata. Tests freeze it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock replaces the time source used for generated_at. Pass nil to go
// back to wall-clock time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
