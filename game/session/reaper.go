package session

import (
	"log"
	"time"
)

const (
	DefaultReapInterval = 10 * time.Minute
	DefaultMaxInactive  = 60 * time.Minute
)

// Reaper periodically sweeps inactive sessions out of a store.
type Reaper struct {
	store       *Store
	interval    time.Duration
	maxInactive time.Duration
	stop        chan struct{}
	done        chan struct{}
}

// NewReaper creates a reaper over the store. Non-positive durations fall
// back to the defaults.
func NewReaper(store *Store, interval, maxInactive time.Duration) *Reaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	if maxInactive <= 0 {
		maxInactive = DefaultMaxInactive
	}
	return &Reaper{
		store:       store,
		interval:    interval,
		maxInactive: maxInactive,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (r *Reaper) Start() {
	go r.run()
}

func (r *Reaper) run() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := r.store.Sweep(r.maxInactive); len(removed) > 0 {
				log.Printf("[REAPER] Removed %d inactive sessions: %v", len(removed), removed)
			}
		case <-r.stop:
			return
		}
	}
}

// Stop terminates the sweep loop and waits for it to exit.
func (r *Reaper) Stop() {
	close(r.stop)
	<-r.done
}
