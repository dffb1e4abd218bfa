package thumbq

import (
	"time"
)

const (
	defaultLingerInitial = 5 * time.Millisecond
	defaultLingerMax     = 100 * time.Millisecond
)

// LingerPolicy describes how long an idle worker waits for new jobs before
// it stops itself. Each empty poll sleeps for the next backoff interval.
// Zero Attempts disables lingering.
type LingerPolicy struct {
	// Attempts is the number of empty polls tolerated before stopping.
	Attempts int

	// Initial is the first backoff duration.
	Initial time.Duration

	// Max is the cap for backoff duration.
	Max time.Duration
}

func (lp *LingerPolicy) fillDefaults() {
	if lp.Attempts <= 0 {
		lp.Attempts = 0
		return
	}
	if lp.Initial <= 0 {
		lp.Initial = defaultLingerInitial
	}
	if lp.Max < lp.Initial {
		lp.Max = max(defaultLingerMax, lp.Initial)
	}
}

// GetDefaultLinger returns a linger policy suited to bursty producers.
func GetDefaultLinger() LingerPolicy {
	return LingerPolicy{
		Attempts: 4,
		Initial:  defaultLingerInitial,
		Max:      defaultLingerMax,
	}
}
