package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priku/tilitin/internal/store"
)

type fakeSession struct {
	mu                          sync.Mutex
	committed, rolledBack, shut bool
}

func (s *fakeSession) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = true
	return nil
}

func (s *fakeSession) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolledBack = true
	return nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.committed {
		s.rolledBack = true
	}
	s.shut = true
	return nil
}

type fakeStore struct {
	store.Store
	mu       sync.Mutex
	sessions []*fakeSession
	failOpen error
}

func (f *fakeStore) OpenSession(context.Context) (store.Session, error) {
	if f.failOpen != nil {
		return nil, f.failOpen
	}
	s := &fakeSession{}
	f.mu.Lock()
	f.sessions = append(f.sessions, s)
	f.mu.Unlock()
	return s, nil
}

func (f *fakeStore) last() *fakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[len(f.sessions)-1]
}

func newDispatcher(t *testing.T, st store.Store, opts Options) *Dispatcher {
	t.Helper()
	log, _ := test.NewNullLogger()
	opts.Logger = log
	d := New(st, opts)
	t.Cleanup(d.Shutdown)
	return d
}

func await[T any](t *testing.T, f *Future[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := f.Await(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "future never completed")
	return v, err
}

func TestRunOnStoreCommits(t *testing.T) {
	fs := &fakeStore{}
	d := newDispatcher(t, fs, Options{})

	v, err := await(t, RunOnStore(d, func(ctx context.Context, st store.Store, s store.Session) (int, error) {
		assert.Same(t, fs, st)
		return 42, nil
	}))
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	s := fs.last()
	assert.True(t, s.committed)
	assert.False(t, s.rolledBack)
	assert.True(t, s.shut)
}

func TestRunOnStoreRollsBackOnError(t *testing.T) {
	fs := &fakeStore{}
	d := newDispatcher(t, fs, Options{})
	boom := errors.New("boom")

	_, err := await(t, RunOnStore(d, func(context.Context, store.Store, store.Session) (string, error) {
		return "partial", boom
	}))
	assert.ErrorIs(t, err, boom)

	s := fs.last()
	assert.False(t, s.committed)
	assert.True(t, s.rolledBack)
	assert.True(t, s.shut)
}

func TestRunOnStoreRecoversPanic(t *testing.T) {
	fs := &fakeStore{}
	d := newDispatcher(t, fs, Options{})

	_, err := await(t, RunOnStore(d, func(context.Context, store.Store, store.Session) (int, error) {
		panic("nil map")
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil map")
	assert.True(t, fs.last().rolledBack)
	assert.True(t, fs.last().shut)
}

func TestRunOnStoreOpenFailure(t *testing.T) {
	cause := &store.DataAccessError{Op: "opening session", Err: errors.New("refused")}
	d := newDispatcher(t, &fakeStore{failOpen: cause}, Options{})
	_, err := await(t, RunOnStore(d, func(context.Context, store.Store, store.Session) (int, error) {
		t.Error("unit must not run")
		return 0, nil
	}))
	var dae *store.DataAccessError
	assert.ErrorAs(t, err, &dae)
}

func TestStorePoolBoundsConcurrency(t *testing.T) {
	fs := &fakeStore{}
	d := newDispatcher(t, fs, Options{StoreWorkers: 2})

	var running, peak atomic.Int32
	futures := make([]*Future[struct{}], 10)
	for i := range futures {
		futures[i] = RunOnStore(d, func(context.Context, store.Store, store.Session) (struct{}, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return struct{}{}, nil
		})
	}
	for _, f := range futures {
		_, err := await(t, f)
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestShutdownFailsFast(t *testing.T) {
	d := newDispatcher(t, &fakeStore{}, Options{})
	d.Shutdown()
	d.Shutdown()

	start := time.Now()
	_, err := await(t, RunOnStore(d, func(context.Context, store.Store, store.Session) (int, error) {
		t.Error("unit must not run")
		return 0, nil
	}))
	assert.ErrorIs(t, err, ErrShutdown)
	assert.Less(t, time.Since(start), time.Second)

	_, err = await(t, RunOnBackground(d, func(context.Context) (int, error) { return 1, nil }))
	assert.ErrorIs(t, err, ErrShutdown)

	_, err = await(t, RunOnInteractionThread(d, func() (int, error) { return 1, nil }))
	assert.ErrorIs(t, err, ErrShutdown)

	_, _, err = Parallel2(context.Background(), d,
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 2, nil })
	assert.ErrorIs(t, err, ErrShutdown)
}

func TestShutdownCancelsRunningUnit(t *testing.T) {
	d := newDispatcher(t, &fakeStore{}, Options{StoreWorkers: 1})
	started := make(chan struct{})
	running := RunOnStore(d, func(ctx context.Context, _ store.Store, _ store.Session) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	<-started
	queued := RunOnStore(d, func(context.Context, store.Store, store.Session) (int, error) {
		return 1, nil
	})
	d.Shutdown()

	_, err := await(t, running)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = await(t, queued)
	assert.ErrorIs(t, err, ErrShutdown)
}

func TestRunOnBackground(t *testing.T) {
	d := newDispatcher(t, &fakeStore{}, Options{BackgroundWorkers: 1})
	v, err := await(t, RunOnBackground(d, func(context.Context) (string, error) { return "ok", nil }))
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestRunOnInteractionThreadUsesLoop(t *testing.T) {
	loop := NewLoop()
	d := newDispatcher(t, &fakeStore{}, Options{Interactor: loop})

	f := RunOnInteractionThread(d, func() (int, error) { return 7, nil })
	select {
	case <-f.Done():
		t.Fatal("ran before the loop was started")
	case <-time.After(20 * time.Millisecond):
	}

	go loop.Run()
	defer loop.Stop()
	v, err := await(t, f)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestDeliver(t *testing.T) {
	d := newDispatcher(t, &fakeStore{}, Options{})
	got := make(chan int, 1)
	RunOnStore(d, func(context.Context, store.Store, store.Session) (int, error) {
		return 3, nil
	}).Deliver(d, func(v int, err error) {
		assert.NoError(t, err)
		got <- v
	})
	select {
	case v := <-got:
		assert.Equal(t, 3, v)
	case <-time.After(5 * time.Second):
		t.Fatal("result not delivered")
	}
}

func TestParallel(t *testing.T) {
	d := newDispatcher(t, &fakeStore{}, Options{})
	a, b, err := Parallel2(context.Background(), d,
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (string, error) { return "two", nil })
	require.NoError(t, err)
	assert.Equal(t, 1, a)
	assert.Equal(t, "two", b)

	x, y, z, err := Parallel3(context.Background(), d,
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 2, nil },
		func(context.Context) (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, []int{x, y, z})
}

func TestParallelInsideSaturatedBackgroundPool(t *testing.T) {
	d := newDispatcher(t, &fakeStore{}, Options{BackgroundWorkers: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sum, err := RunOnBackground(d, func(ctx context.Context) (int, error) {
		a, b, err := Parallel2(ctx, d,
			func(context.Context) (int, error) { return 1, nil },
			func(context.Context) (int, error) { return 2, nil })
		return a + b, err
	}).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sum)
}

func TestParallelFirstFailureCancelsOthers(t *testing.T) {
	d := newDispatcher(t, &fakeStore{}, Options{})
	boom := errors.New("boom")
	var sawCancel atomic.Bool
	_, _, err := Parallel2(context.Background(), d,
		func(context.Context) (int, error) { return 0, boom },
		func(ctx context.Context) (int, error) {
			select {
			case <-ctx.Done():
				sawCancel.Store(true)
				return 0, ctx.Err()
			case <-time.After(5 * time.Second):
				return 2, nil
			}
		})
	assert.ErrorIs(t, err, boom)
	assert.True(t, sawCancel.Load())
}

func TestParallelRecoversPanic(t *testing.T) {
	d := newDispatcher(t, &fakeStore{}, Options{})
	_, _, err := Parallel2(context.Background(), d,
		func(context.Context) (int, error) { panic("branch") },
		func(context.Context) (int, error) { return 2, nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "branch")
}

func TestAwaitHonoursContext(t *testing.T) {
	f := newFuture[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	f.complete(1, nil)
	f.complete(2, errors.New("ignored"))
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestLoopStop(t *testing.T) {
	l := NewLoop()
	l.Stop()
	l.Stop()
	assert.ErrorIs(t, l.Post(func() {}), ErrShutdown)
}
