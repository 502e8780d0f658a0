package config

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ThrottleWindow is how long a reported configuration error stays quiet.
const ThrottleWindow = 10 * time.Second

// Throttle lets each distinct message through once per window.
type Throttle struct {
	window time.Duration
	seen   *gocache.Cache
}

func NewThrottle(window time.Duration) *Throttle {
	return &Throttle{
		window: window,
		seen:   gocache.New(window, 2*window),
	}
}

// Allow reports whether message may be shown now, and if so starts its
// quiet window.
func (t *Throttle) Allow(message string) bool {
	if err := t.seen.Add(message, struct{}{}, t.window); err != nil {
		log.Debugf("suppressed repeated message: %s", message)
		return false
	}
	return true
}
