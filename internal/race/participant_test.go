package race

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParticipantValidation(t *testing.T) {
	tests := []struct {
		name    string
		max     int
		inc     int
		delay   time.Duration
		initial int
		wantErr error
	}{
		{"valid", 100, 2, 500 * time.Millisecond, 0, nil},
		{"valid initial at max", 100, 2, time.Millisecond, 100, nil},
		{"zero max", 0, 1, time.Millisecond, 0, ErrMaxProgress},
		{"negative max", -5, 1, time.Millisecond, 0, ErrMaxProgress},
		{"zero increment", 100, 0, time.Millisecond, 0, ErrIncrement},
		{"negative increment", 100, -1, time.Millisecond, 0, ErrIncrement},
		{"zero delay", 100, 1, 0, 0, ErrDelay},
		{"negative initial", 100, 1, time.Millisecond, -1, ErrInitialProgress},
		{"initial above max", 100, 1, time.Millisecond, 101, ErrInitialProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewParticipant("p", tt.max, tt.inc, tt.delay, tt.initial)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.initial, p.Progress())
		})
	}
}

func TestAdvanceClampsAtMax(t *testing.T) {
	p, err := NewParticipant("p", 10, 3, time.Millisecond, 0)
	require.NoError(t, err)

	prev := 0
	for i := 0; i < 10; i++ {
		cur, _ := p.Advance()
		assert.GreaterOrEqual(t, cur, prev, "progress must not decrease")
		assert.LessOrEqual(t, cur, p.MaxProgress, "progress must not exceed max")
		prev = cur
	}
	assert.Equal(t, 10, p.Progress())
	assert.True(t, p.Finished())
}

func TestResetZeroesAnyState(t *testing.T) {
	p, err := NewParticipant("p", 100, 7, time.Millisecond, 40)
	require.NoError(t, err)
	p.Advance()
	p.Advance()

	p.Reset()
	assert.Equal(t, 0, p.Progress())
	assert.False(t, p.Finished())

	// Reset while already at zero stays at zero.
	p.Reset()
	assert.Equal(t, 0, p.Progress())
}

func TestPercent(t *testing.T) {
	p, err := NewParticipant("p", 200, 1, time.Millisecond, 50)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, p.Percent(), 1e-9)
}

func TestRunCompletesAfterExpectedTicks(t *testing.T) {
	// maxProgress=100, increment=2 reaches the bound after exactly 50 ticks.
	p, err := NewParticipant("p", 100, 2, time.Millisecond, 0)
	require.NoError(t, err)

	ticks := 0
	err = p.Run(context.Background(), func(*Participant) { ticks++ })
	require.NoError(t, err)
	assert.Equal(t, 50, ticks)
	assert.Equal(t, 100, p.Progress())
}

func TestRunProportionalToIncrement(t *testing.T) {
	slow, err := NewParticipant("slow", 60, 1, time.Millisecond, 0)
	require.NoError(t, err)
	fast, err := NewParticipant("fast", 60, 3, time.Millisecond, 0)
	require.NoError(t, err)

	slowTicks, fastTicks := 0, 0
	require.NoError(t, slow.Run(context.Background(), func(*Participant) { slowTicks++ }))
	require.NoError(t, fast.Run(context.Background(), func(*Participant) { fastTicks++ }))

	assert.Equal(t, 60, slowTicks)
	assert.Equal(t, 20, fastTicks)
}

func TestRunCancelPropagatesAndKeepsProgress(t *testing.T) {
	p, err := NewParticipant("p", 1000, 1, time.Millisecond, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	advanced := make(chan struct{})
	var once bool
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Run(ctx, func(*Participant) {
			if !once {
				once = true
				close(advanced)
			}
		})
	}()

	<-advanced
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("advance loop did not observe cancellation")
	}

	// No rollback: progress stays where the loop left it.
	got := p.Progress()
	assert.Greater(t, got, 0)
	assert.Less(t, got, p.MaxProgress)
}

func TestRunAlreadyFinished(t *testing.T) {
	p, err := NewParticipant("p", 10, 1, time.Millisecond, 10)
	require.NoError(t, err)

	called := false
	require.NoError(t, p.Run(context.Background(), func(*Participant) { called = true }))
	assert.False(t, called, "no advance expected for a finished participant")
}
