package race

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// State is a point-in-time copy of one participant, safe to hand to a
// renderer.
type State struct {
	Name     string
	Current  int
	Max      int
	Finished bool
}

// Event signals that the race changed: a participant advanced, the race
// started, paused, reset, or completed. Consumers should re-read Snapshot
// rather than trust the event payload alone, since sends are lossy.
type Event struct {
	Done bool
}

// Controller owns the participants and a running flag. Starting launches one
// advance loop per participant; pausing cancels them all. The loops share
// nothing but the cancellation signal.
type Controller struct {
	logger *zap.Logger
	events chan Event

	mu           sync.Mutex
	participants []*Participant
	running      bool
	cancel       context.CancelFunc
	done         chan struct{}
	winner       string
}

// NewController wraps the given participants. At least one is required.
func NewController(participants []*Participant, logger *zap.Logger) (*Controller, error) {
	if len(participants) == 0 {
		return nil, errors.New("race: at least one participant required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		logger:       logger,
		participants: participants,
		events:       make(chan Event, 16),
	}, nil
}

// Start launches the advance loops. It is a no-op while the race is already
// running. The loops stop when ctx is cancelled, Pause is called, or every
// participant finishes.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true
	done := make(chan struct{})
	c.done = done

	g, gctx := errgroup.WithContext(runCtx)
	for _, p := range c.participants {
		g.Go(func() error {
			return p.Run(gctx, c.onAdvance)
		})
	}
	c.mu.Unlock()

	c.logger.Info("race started", zap.Int("participants", len(c.participants)))
	c.publish(Event{})

	go func() {
		defer close(done)
		err := g.Wait()
		cancel()
		switch {
		case err == nil:
			c.mu.Lock()
			c.running = false
			winner := c.winner
			c.mu.Unlock()
			c.logger.Info("race finished", zap.String("winner", winner))
			c.publish(Event{Done: true})
		case errors.Is(err, context.Canceled):
			// Pause or outer-context shutdown, progress stays put.
			c.mu.Lock()
			c.running = false
			c.mu.Unlock()
			c.publish(Event{})
		default:
			c.logger.Error("advance loop failed", zap.Error(err))
		}
	}()
}

// Pause cancels the advance loops and clears the running flag. Progress is
// left wherever the loops had taken it.
func (c *Controller) Pause() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	c.logger.Info("race paused")
	c.publish(Event{})
}

// Toggle starts the race if idle and pauses it if running.
func (c *Controller) Toggle(ctx context.Context) {
	if c.Running() {
		c.Pause()
		return
	}
	c.Start(ctx)
}

// Reset pauses the race if needed and returns every participant to zero.
// It waits for the advance loops to exit first so a loop caught between its
// wait and its increment cannot advance a freshly zeroed counter.
func (c *Controller) Reset() {
	c.Close()

	c.mu.Lock()
	for _, p := range c.participants {
		p.Reset()
	}
	c.winner = ""
	c.mu.Unlock()

	c.logger.Info("race reset")
	c.publish(Event{})
}

// Close pauses the race and waits for the advance loops to exit. Safe to
// call more than once.
func (c *Controller) Close() {
	c.Pause()
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// SetParticipants replaces the participant set, for config reload. It
// refuses to swap while the race is running.
func (c *Controller) SetParticipants(participants []*Participant) error {
	if len(participants) == 0 {
		return errors.New("race: at least one participant required")
	}
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("race: cannot replace participants while running")
	}
	c.participants = participants
	c.winner = ""
	c.mu.Unlock()

	c.logger.Info("participants replaced", zap.Int("participants", len(participants)))
	c.publish(Event{})
	return nil
}

// Running reports whether the advance loops are active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Winner returns the name of the first participant to finish, or "" if
// nobody has.
func (c *Controller) Winner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.winner
}

// Snapshot returns a copy of every participant's state, in construction
// order.
func (c *Controller) Snapshot() []State {
	c.mu.Lock()
	participants := c.participants
	c.mu.Unlock()

	states := make([]State, len(participants))
	for i, p := range participants {
		cur := p.Progress()
		states[i] = State{
			Name:     p.Name,
			Current:  cur,
			Max:      p.MaxProgress,
			Finished: cur >= p.MaxProgress,
		}
	}
	return states
}

// Events returns the update channel. Sends are lossy under a slow consumer;
// pair every receive with a Snapshot read.
func (c *Controller) Events() <-chan Event {
	return c.events
}

func (c *Controller) onAdvance(p *Participant) {
	if p.Finished() {
		c.mu.Lock()
		if c.winner == "" {
			c.winner = p.Name
			c.logger.Info("participant finished first", zap.String("name", p.Name))
		}
		c.mu.Unlock()
	}
	c.publish(Event{})
}

func (c *Controller) publish(ev Event) {
	select {
	case c.events <- ev:
	default:
	}
}
