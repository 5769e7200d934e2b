package listener

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpeerlabs/escrow-backend/internal/events"
	"github.com/openpeerlabs/escrow-backend/internal/types/environments"
	"github.com/openpeerlabs/escrow-backend/internal/utils/config"
	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

type fakeSource struct {
	mu         sync.Mutex
	name       string
	id         uint
	subscribes int
	subErr     error
	failNext   int
	evCh       chan events.Event
	errCh      chan error
}

func newFakeSource(name string, id uint) *fakeSource {
	return &fakeSource{name: name, id: id}
}

func (s *fakeSource) NetworkName() string { return s.name }
func (s *fakeSource) NetworkID() uint     { return s.id }
func (s *fakeSource) Close()              {}

func (s *fakeSource) Subscribe(ctx context.Context) (<-chan events.Event, <-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribes++
	if s.subErr != nil {
		return nil, nil, s.subErr
	}
	if s.failNext > 0 {
		s.failNext--
		return nil, nil, errors.New("dial failed")
	}
	s.evCh = make(chan events.Event, 16)
	s.errCh = make(chan error, 1)
	return s.evCh, s.errCh, nil
}

func (s *fakeSource) subscribeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribes
}

func (s *fakeSource) setFailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

func (s *fakeSource) emit(ev events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evCh <- ev
}

// fail raises a transport failure the way evmrpc and solanarpc do: the error
// lands on the error channel and the event channel is closed.
func (s *fakeSource) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errCh <- err
	close(s.evCh)
}

type fakeReconciler struct {
	mu      sync.Mutex
	applied []events.Event
	err     error
}

func (r *fakeReconciler) Apply(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, ev)
	return r.err
}

func (r *fakeReconciler) appliedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.applied)
}

func waitForState(t *testing.T, l *Listener, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if l.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("listener never reached state %s, still %s", want, l.State())
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestListenerLifecycle(t *testing.T) {
	source := newFakeSource("celo-test", 1)
	rec := &fakeReconciler{}
	l := NewListener(source, rec, config.ListenerConfig{EventBufferSize: 16}, logger.New(environments.Test))

	assert.Equal(t, StateStopped, l.State())

	require.NoError(t, l.Start(context.Background()))
	waitForState(t, l, StateRunning)

	source.emit(events.EscrowCancelled{M: events.Meta{NetworkID: 1, TxHash: "0xaaa", RawName: "EscrowCancelled"}, ID: "42"})
	waitFor(t, func() bool { return rec.appliedCount() == 1 })

	l.Stop()
	assert.Equal(t, StateStopped, l.State())
}

func TestListenerStartIsIdempotent(t *testing.T) {
	source := newFakeSource("celo-test", 1)
	l := NewListener(source, &fakeReconciler{}, config.ListenerConfig{}, logger.New(environments.Test))

	require.NoError(t, l.Start(context.Background()))
	waitForState(t, l, StateRunning)
	require.NoError(t, l.Start(context.Background()))

	assert.Equal(t, 1, source.subscribeCount())
	l.Stop()
}

func TestListenerSubscribeFailure(t *testing.T) {
	source := newFakeSource("celo-test", 1)
	source.subErr = errors.New("dial failed")
	l := NewListener(source, &fakeReconciler{}, config.ListenerConfig{}, logger.New(environments.Test))

	err := l.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, l.State())
}

func TestListenerTransportErrorWithoutReconnect(t *testing.T) {
	source := newFakeSource("celo-test", 1)
	l := NewListener(source, &fakeReconciler{}, config.ListenerConfig{}, logger.New(environments.Test))

	require.NoError(t, l.Start(context.Background()))
	waitForState(t, l, StateRunning)

	source.fail(errors.New("websocket closed"))
	waitForState(t, l, StateFailed)
	assert.Equal(t, 1, source.subscribeCount())
}

func TestListenerReconnects(t *testing.T) {
	source := newFakeSource("celo-test", 1)
	l := NewListener(source, &fakeReconciler{}, config.ListenerConfig{
		Reconnect:            true,
		ReconnectMaxAttempts: 3,
		ReconnectBackoff:     time.Millisecond,
	}, logger.New(environments.Test))

	require.NoError(t, l.Start(context.Background()))
	waitForState(t, l, StateRunning)

	source.fail(errors.New("websocket closed"))
	waitFor(t, func() bool { return source.subscribeCount() == 2 })
	waitForState(t, l, StateRunning)

	l.Stop()
}

func TestListenerReconnectRetriesAfterFailedAttempt(t *testing.T) {
	source := newFakeSource("celo-test", 1)
	l := NewListener(source, &fakeReconciler{}, config.ListenerConfig{
		Reconnect:            true,
		ReconnectMaxAttempts: 3,
		ReconnectBackoff:     time.Millisecond,
	}, logger.New(environments.Test))

	require.NoError(t, l.Start(context.Background()))
	waitForState(t, l, StateRunning)

	source.setFailNext(1)
	source.fail(errors.New("websocket closed"))

	// Initial subscribe, one failed attempt, then the successful one.
	waitFor(t, func() bool { return source.subscribeCount() == 3 })
	waitForState(t, l, StateRunning)
	l.Stop()
}

func TestListenerReconnectExhaustsAttempts(t *testing.T) {
	source := newFakeSource("celo-test", 1)
	l := NewListener(source, &fakeReconciler{}, config.ListenerConfig{
		Reconnect:            true,
		ReconnectMaxAttempts: 3,
		ReconnectBackoff:     time.Millisecond,
	}, logger.New(environments.Test))

	require.NoError(t, l.Start(context.Background()))
	waitForState(t, l, StateRunning)

	source.setFailNext(3)
	source.fail(errors.New("websocket closed"))

	waitForState(t, l, StateFailed)
	assert.Equal(t, 4, source.subscribeCount())
}

func TestListenerApplyErrorDoesNotStopPipeline(t *testing.T) {
	source := newFakeSource("celo-test", 1)
	rec := &fakeReconciler{err: errors.New("db unavailable")}
	l := NewListener(source, rec, config.ListenerConfig{}, logger.New(environments.Test))

	require.NoError(t, l.Start(context.Background()))
	waitForState(t, l, StateRunning)

	source.emit(events.EscrowCancelled{M: events.Meta{TxHash: "0xaaa"}, ID: "42"})
	source.emit(events.EscrowCancelled{M: events.Meta{TxHash: "0xbbb"}, ID: "43"})
	waitFor(t, func() bool { return rec.appliedCount() == 2 })

	assert.Equal(t, StateRunning, l.State())
	l.Stop()
}
