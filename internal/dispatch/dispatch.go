// Package dispatch keeps store access off the interaction thread. A
// Dispatcher owns a small fixed pool of store workers, a bounded pool for
// background work, and a handle on the interaction thread; it is created once
// at startup and passed to whatever schedules work.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/priku/tilitin/internal/store"
)

// ErrShutdown is returned for work scheduled after Shutdown, and for queued
// work that Shutdown cancelled.
var ErrShutdown = errors.New("dispatcher is shut down")

// DefaultStoreWorkers bounds simultaneously open sessions.
const DefaultStoreWorkers = 4

// Interactor runs functions on the single interaction thread.
type Interactor interface {
	// Post queues fn; it returns an error when the thread no longer accepts
	// work.
	Post(fn func()) error
}

// Options configure a Dispatcher. Zero values select the defaults.
type Options struct {
	StoreWorkers      int
	BackgroundWorkers int
	// Interactor is the interaction thread. When nil the dispatcher runs its
	// own Loop on a dedicated goroutine.
	Interactor Interactor
	Logger     logrus.FieldLogger
}

// Dispatcher schedules units of work. It is safe for concurrent use.
type Dispatcher struct {
	store store.Store
	log   logrus.FieldLogger
	ui    Interactor
	owned *Loop

	ctx    context.Context
	cancel context.CancelFunc

	jobs    chan func()
	workers sync.WaitGroup
	bg      *semaphore.Weighted

	once sync.Once
}

// New starts the store workers. st must already be open; the dispatcher does
// not close it.
func New(st store.Store, opts Options) *Dispatcher {
	if opts.StoreWorkers <= 0 {
		opts.StoreWorkers = DefaultStoreWorkers
	}
	if opts.BackgroundWorkers <= 0 {
		opts.BackgroundWorkers = runtime.NumCPU()
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		store:  st,
		log:    log.WithField("component", "dispatch"),
		ui:     opts.Interactor,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(chan func()),
		bg:     semaphore.NewWeighted(int64(opts.BackgroundWorkers)),
	}
	if d.ui == nil {
		d.owned = NewLoop()
		d.ui = d.owned
		go d.owned.Run()
	}

	for range opts.StoreWorkers {
		d.workers.Add(1)
		go d.storeWorker()
	}
	d.log.WithFields(logrus.Fields{
		"store_workers":      opts.StoreWorkers,
		"background_workers": opts.BackgroundWorkers,
	}).Debug("dispatcher started")
	return d
}

func (d *Dispatcher) storeWorker() {
	defer d.workers.Done()
	for {
		select {
		case job := <-d.jobs:
			job()
		case <-d.ctx.Done():
			return
		}
	}
}

// Store returns the store units of work run against.
func (d *Dispatcher) Store() store.Store {
	return d.store
}

// Shutdown cancels queued and running work and stops the store workers. Work
// already applied by a running unit is not undone. Shutdown is idempotent.
func (d *Dispatcher) Shutdown() {
	d.once.Do(func() {
		d.cancel()
		d.workers.Wait()
		if d.owned != nil {
			d.owned.Stop()
		}
		d.log.Info("dispatcher shut down")
	})
}

func (d *Dispatcher) closed() bool {
	return d.ctx.Err() != nil
}

// enqueue hands job to a store worker without blocking the caller. If the
// dispatcher shuts down first, job runs on the enqueuing goroutine and is
// expected to notice the cancelled context.
func (d *Dispatcher) enqueue(job func()) {
	go func() {
		select {
		case d.jobs <- job:
		case <-d.ctx.Done():
			job()
		}
	}()
}

// StoreUnit is a unit of work against one session. Repositories are obtained
// from st with s; s must not escape the unit.
type StoreUnit[T any] func(ctx context.Context, st store.Store, s store.Session) (T, error)

// RunOnStore runs unit on the store pool inside its own session. The session
// is committed when unit returns nil and rolled back otherwise; it is closed
// on every path, including a panic.
func RunOnStore[T any](d *Dispatcher, unit StoreUnit[T]) *Future[T] {
	f := newFuture[T]()
	if d.closed() {
		f.fail(ErrShutdown)
		return f
	}
	d.enqueue(func() {
		if d.closed() {
			f.fail(ErrShutdown)
			return
		}
		f.complete(runInSession(d, unit))
	})
	return f
}

func runInSession[T any](d *Dispatcher, unit StoreUnit[T]) (v T, err error) {
	var zero T
	s, err := d.store.OpenSession(d.ctx)
	if err != nil {
		d.log.WithError(err).Debug("opening session failed")
		return zero, err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			v, err = zero, cerr
		}
	}()

	v, err = protect(d.log, func() (T, error) {
		return unit(d.ctx, d.store, s)
	})
	if err != nil {
		d.log.WithError(err).Debug("unit of work failed")
		return zero, err
	}
	if err := s.Commit(); err != nil {
		return zero, err
	}
	return v, nil
}

// RunOnBackground runs fn on the background pool. fn must not use the store.
func RunOnBackground[T any](d *Dispatcher, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	if d.closed() {
		f.fail(ErrShutdown)
		return f
	}
	go func() {
		if err := d.bg.Acquire(d.ctx, 1); err != nil {
			f.fail(ErrShutdown)
			return
		}
		defer d.bg.Release(1)
		f.complete(protect(d.log, func() (T, error) { return fn(d.ctx) }))
	}()
	return f
}

// RunOnInteractionThread marshals fn onto the interaction thread.
func RunOnInteractionThread[T any](d *Dispatcher, fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	if d.closed() {
		f.fail(ErrShutdown)
		return f
	}
	err := d.ui.Post(func() {
		f.complete(protect(d.log, fn))
	})
	if err != nil {
		f.fail(ErrShutdown)
	}
	return f
}

// protect turns a panic in fn into an error.
func protect[T any](log logrus.FieldLogger, fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("unit of work panicked")
			var zero T
			v, err = zero, fmt.Errorf("unit of work panicked: %v", r)
		}
	}()
	return fn()
}
