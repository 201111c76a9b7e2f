package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubChannel records whether it was invoked and returns a fixed error.
type stubChannel struct {
	name   string
	err    error
	delay  time.Duration
	called atomic.Bool
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Send(ctx context.Context, msg Message) error {
	s.called.Store(true)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

func newTestDispatcher() *Dispatcher {
	return &Dispatcher{timeout: time.Second}
}

func TestDispatchPartialFailureTolerated(t *testing.T) {
	d := newTestDispatcher()
	pushCh := &stubChannel{name: ChannelPush}
	emailCh := &stubChannel{name: ChannelEmail, err: errors.New("smtp down")}

	results := d.Dispatch(context.Background(), []Channel{pushCh, emailCh}, Message{ReportID: 1})

	require.Len(t, results, 2)
	assert.NoError(t, results[ChannelPush])
	assert.Error(t, results[ChannelEmail])
	assert.True(t, pushCh.called.Load(), "push must still run when email fails")
	assert.Equal(t, []string{ChannelEmail}, results.Failed())
}

func TestDispatchJoinsAllChannels(t *testing.T) {
	d := newTestDispatcher()
	slow := &stubChannel{name: ChannelPush, delay: 50 * time.Millisecond}
	failFast := &stubChannel{name: ChannelFacebook, err: errors.New("boom")}

	start := time.Now()
	results := d.Dispatch(context.Background(), []Channel{slow, failFast}, Message{ReportID: 2})

	// The failing channel must not short-circuit the slow one.
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.NoError(t, results[ChannelPush])
	assert.Error(t, results[ChannelFacebook])
}

func TestDispatchTimeoutIsChannelFailure(t *testing.T) {
	d := newTestDispatcher()
	d.timeout = 20 * time.Millisecond
	hanging := &stubChannel{name: ChannelEmail, delay: time.Second}

	results := d.Dispatch(context.Background(), []Channel{hanging}, Message{ReportID: 3})

	require.Error(t, results[ChannelEmail])
	assert.ErrorIs(t, results[ChannelEmail], context.DeadlineExceeded)
}

func TestIsBroadcastChannel(t *testing.T) {
	assert.True(t, IsBroadcastChannel(ChannelPush))
	assert.True(t, IsBroadcastChannel(ChannelEmail))
	assert.True(t, IsBroadcastChannel(ChannelFacebook))
	assert.False(t, IsBroadcastChannel(ChannelInApp))
	assert.False(t, IsBroadcastChannel("pigeon"))
}
