package auction

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTickInterval is the countdown refresh period
const DefaultTickInterval = time.Second

// Remaining is the time left until a deadline, decomposed into whole units
type Remaining struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// NewRemaining truncates d to whole seconds and splits it into days, hours, minutes and seconds
func NewRemaining(d time.Duration) Remaining {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	return Remaining{
		Days:    int(total / 86400),
		Hours:   int(total % 86400 / 3600),
		Minutes: int(total % 3600 / 60),
		Seconds: int(total % 60),
	}
}

// String renders "HH:MM:SS", prefixed with "Nd " when at least a day is left
func (r Remaining) String() string {
	hms := fmt.Sprintf("%02d:%02d:%02d", r.Hours, r.Minutes, r.Seconds)
	if r.Days > 0 {
		return fmt.Sprintf("%dd %s", r.Days, hms)
	}
	return hms
}

// Countdown drives the clock of one auction. Each tick recomputes the time
// left until the deadline and reports it; once the deadline is reached the
// expire callback runs exactly once and the countdown stops for good.
//
// Callbacks run after the countdown is unlocked, so callers observing the
// expiry do not wait for a slow expire callback. Stop waits for callbacks in
// flight.
type Countdown struct {
	deadline *time.Time
	now      func() time.Time
	onTick   func(Remaining)
	onExpire func()

	mu       sync.Mutex
	expired  bool
	stopped  bool
	stopCh   chan struct{}
	done     chan struct{}
	inflight sync.WaitGroup
}

// NewCountdown creates a countdown towards deadline. A nil deadline means the
// auction can never run and is reported as expired on the first tick.
func NewCountdown(deadline *time.Time, now func() time.Time, onTick func(Remaining), onExpire func()) *Countdown {
	if now == nil {
		now = time.Now
	}
	if onTick == nil {
		onTick = func(Remaining) {}
	}
	if onExpire == nil {
		onExpire = func() {}
	}
	return &Countdown{
		deadline: deadline,
		now:      now,
		onTick:   onTick,
		onExpire: onExpire,
	}
}

// Tick recomputes the remaining time and notifies the observer. It reports
// whether the countdown has expired.
func (c *Countdown) Tick() bool {
	return c.advance(true)
}

// Expired fires the expiry if the deadline has passed, without emitting a
// countdown tick.
func (c *Countdown) Expired() bool {
	return c.advance(false)
}

func (c *Countdown) advance(emitTick bool) bool {
	c.mu.Lock()
	if c.expired {
		c.mu.Unlock()
		return true
	}
	if c.stopped {
		c.mu.Unlock()
		return false
	}

	left := c.left()
	if left <= 0 {
		// only the caller flipping expired runs onExpire
		c.expired = true
		c.inflight.Add(1)
		c.mu.Unlock()

		defer c.inflight.Done()
		c.onExpire()
		return true
	}
	if !emitTick {
		c.mu.Unlock()
		return false
	}
	c.inflight.Add(1)
	c.mu.Unlock()

	defer c.inflight.Done()
	c.onTick(NewRemaining(left))
	return false
}

// Remaining returns the time left without notifying anyone
func (c *Countdown) Remaining() Remaining {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expired {
		return Remaining{}
	}
	return NewRemaining(c.left())
}

func (c *Countdown) left() time.Duration {
	if c.deadline == nil {
		return 0
	}
	return c.deadline.Sub(c.now())
}

// Start ticks every interval on a background goroutine until the deadline is
// reached or Stop is called. A one-shot timer at the deadline makes expiry
// prompt even with coarse intervals.
func (c *Countdown) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	c.mu.Lock()
	if c.expired || c.stopped || c.stopCh != nil {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	c.stopCh, c.done = stop, done
	untilDeadline := c.left()
	c.mu.Unlock()

	go c.run(interval, untilDeadline, stop, done)
}

func (c *Countdown) run(interval, untilDeadline time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.NewTimer(untilDeadline)
	defer deadline.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		case <-deadline.C:
		}
		if c.Tick() {
			return
		}
	}
}

// Stop cancels the periodic tick and waits for the driver goroutine and any
// callback in flight. No callback fires after Stop returns. Stop is
// idempotent and must not be called from a callback.
func (c *Countdown) Stop() {
	c.mu.Lock()
	c.stopped = true
	stop, done := c.stopCh, c.done
	c.stopCh = nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	c.inflight.Wait()
}
