package otp

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultCooldown is how long resend stays disabled after a code is sent.
const DefaultCooldown = 60 * time.Second

// Cooldown counts whole seconds down to zero on a ticker. The ticker is stopped when the count
// reaches zero, on Clear and on Stop; every one of those is safe to repeat.
type Cooldown struct {
	clock   clock.Clock
	seconds int

	mu        sync.Mutex
	remaining int
	ticker    *clock.Ticker
	done      chan struct{}
}

type CooldownOption func(*Cooldown)

func WithClock(c clock.Clock) CooldownOption {
	return func(cd *Cooldown) { cd.clock = c }
}

// NewCooldown returns an idle cooldown of d, rounded down to whole seconds.
func NewCooldown(d time.Duration, opts ...CooldownOption) *Cooldown {
	if d <= 0 {
		d = DefaultCooldown
	}
	c := &Cooldown{
		clock:   clock.New(),
		seconds: int(d / time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start sets the count back to the full duration and starts ticking, replacing any running
// countdown.
func (c *Cooldown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	c.remaining = c.seconds
	if c.remaining == 0 {
		return
	}
	c.ticker = c.clock.Ticker(time.Second)
	c.done = make(chan struct{})
	go c.run(c.ticker, c.done)
}

func (c *Cooldown) run(ticker *clock.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.done != done {
				c.mu.Unlock()
				return
			}
			if c.remaining > 0 {
				c.remaining--
			}
			if c.remaining == 0 {
				c.cancelLocked()
				c.mu.Unlock()
				return
			}
			c.mu.Unlock()
		}
	}
}

// Clear drops the count to zero so resend is available at once.
func (c *Cooldown) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remaining = 0
	c.cancelLocked()
}

// Stop cancels the ticker and leaves the count where it is. Used on teardown.
func (c *Cooldown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

func (c *Cooldown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Cooldown) Active() bool {
	return c.Remaining() > 0
}

// Running reports whether a ticker is still scheduled.
func (c *Cooldown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticker != nil
}

func (c *Cooldown) cancelLocked() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	close(c.done)
	c.ticker = nil
	c.done = nil
}
