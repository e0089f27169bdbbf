// Package race implements the progress race: participants that advance a
// bounded counter on a fixed delay, and the controller that runs them
// concurrently with start/pause/reset semantics.
package race

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Construction-time validation errors.
var (
	ErrMaxProgress     = errors.New("max progress must be positive")
	ErrIncrement       = errors.New("increment must be positive")
	ErrDelay           = errors.New("delay must be positive")
	ErrInitialProgress = errors.New("initial progress out of bounds")
)

// Participant is a bounded counter that advances by Increment after each
// Delay until it reaches MaxProgress. Progress is monotonically
// non-decreasing while advancing; only Reset returns it to zero.
type Participant struct {
	Name        string
	MaxProgress int
	Increment   int
	Delay       time.Duration

	mu      sync.Mutex
	current int
}

// NewParticipant validates the configuration and returns a participant with
// its counter at initial.
func NewParticipant(name string, maxProgress, increment int, delay time.Duration, initial int) (*Participant, error) {
	if maxProgress <= 0 {
		return nil, fmt.Errorf("participant %q: %w (got %d)", name, ErrMaxProgress, maxProgress)
	}
	if increment <= 0 {
		return nil, fmt.Errorf("participant %q: %w (got %d)", name, ErrIncrement, increment)
	}
	if delay <= 0 {
		return nil, fmt.Errorf("participant %q: %w (got %s)", name, ErrDelay, delay)
	}
	if initial < 0 || initial > maxProgress {
		return nil, fmt.Errorf("participant %q: %w (got %d, max %d)", name, ErrInitialProgress, initial, maxProgress)
	}
	return &Participant{
		Name:        name,
		MaxProgress: maxProgress,
		Increment:   increment,
		Delay:       delay,
		current:     initial,
	}, nil
}

// Advance increases progress by Increment, clamped to MaxProgress.
// It returns the new value and whether the participant has finished.
func (p *Participant) Advance() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += p.Increment
	if p.current > p.MaxProgress {
		p.current = p.MaxProgress
	}
	return p.current, p.current >= p.MaxProgress
}

// Progress returns the current counter value.
func (p *Participant) Progress() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Finished reports whether the counter has reached MaxProgress.
func (p *Participant) Finished() bool {
	return p.Progress() >= p.MaxProgress
}

// Percent returns progress as a fraction in [0, 1].
func (p *Participant) Percent() float64 {
	return float64(p.Progress()) / float64(p.MaxProgress)
}

// Reset returns the counter to zero.
func (p *Participant) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = 0
}

// Run advances the participant until it finishes: wait Delay, advance,
// repeat. The loop is cancellable at the wait point; on cancellation it
// returns ctx.Err() so the caller observes the early exit. notify, if
// non-nil, is called after every advance.
func (p *Participant) Run(ctx context.Context, notify func(*Participant)) error {
	if p.Finished() {
		return nil
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		_, done := p.Advance()
		if notify != nil {
			notify(p)
		}
		if done {
			return nil
		}
		timer.Reset(p.Delay)
	}
}
