package pkg

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Clock is one side's countdown. A match owns a pair of them and
// switches which one runs on every turn flip. There is no flag-fall
// command on the wire; running out is only logged.
type Clock struct {
	mu        sync.Mutex
	Duration  time.Duration
	remaining time.Duration
	paused    bool
}

func NewClock(duration time.Duration) *Clock {
	cl := &Clock{
		Duration:  duration,
		remaining: duration,
		paused:    true,
	}
	go cl.Run()
	return cl
}

func (cl *Clock) Run() {
	tick := time.NewTicker(time.Second)
	for range tick.C {
		cl.mu.Lock()
		if !cl.paused && cl.remaining > 0 {
			cl.remaining -= time.Second
			if cl.remaining <= 0 {
				cl.paused = true
				log.Printf("Clock expired: %s", cl)
			}
		}
		cl.mu.Unlock()
	}
}

func (cl *Clock) Start() {
	cl.mu.Lock()
	cl.paused = false
	cl.mu.Unlock()
}

func (cl *Clock) Pause() {
	cl.mu.Lock()
	cl.paused = true
	cl.mu.Unlock()
}

func (cl *Clock) Reset() {
	cl.mu.Lock()
	cl.remaining = cl.Duration
	cl.paused = true
	cl.mu.Unlock()
}

func (cl *Clock) Remaining() time.Duration {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.remaining
}

func (cl *Clock) String() string {
	r := cl.Remaining()
	return fmt.Sprintf("%d:%02d", int(r.Minutes()), int(r.Seconds())%60)
}
