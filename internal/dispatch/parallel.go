package dispatch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Parallel2 runs a and b concurrently and waits for both. The first failure
// is returned and cancels the context of the other branch; side effects the
// other branch already made remain.
//
// Branches run on their own goroutines and are not limited by
// Options.BackgroundWorkers. This lets Parallel2 be called from a background
// unit without deadlocking a saturated pool.
func Parallel2[A, B any](ctx context.Context, d *Dispatcher, a func(context.Context) (A, error), b func(context.Context) (B, error)) (A, B, error) {
	var ra A
	var rb B
	if d.closed() {
		return ra, rb, ErrShutdown
	}
	g, gctx, release := d.group(ctx)
	defer release()
	g.Go(func() (err error) {
		ra, err = protect(d.log, func() (A, error) { return a(gctx) })
		return err
	})
	g.Go(func() (err error) {
		rb, err = protect(d.log, func() (B, error) { return b(gctx) })
		return err
	})
	if err := g.Wait(); err != nil {
		var za A
		var zb B
		return za, zb, err
	}
	return ra, rb, nil
}

// Parallel3 is Parallel2 with three branches.
func Parallel3[A, B, C any](ctx context.Context, d *Dispatcher, a func(context.Context) (A, error), b func(context.Context) (B, error), c func(context.Context) (C, error)) (A, B, C, error) {
	var ra A
	var rb B
	var rc C
	if d.closed() {
		return ra, rb, rc, ErrShutdown
	}
	g, gctx, release := d.group(ctx)
	defer release()
	g.Go(func() (err error) {
		ra, err = protect(d.log, func() (A, error) { return a(gctx) })
		return err
	})
	g.Go(func() (err error) {
		rb, err = protect(d.log, func() (B, error) { return b(gctx) })
		return err
	})
	g.Go(func() (err error) {
		rc, err = protect(d.log, func() (C, error) { return c(gctx) })
		return err
	})
	if err := g.Wait(); err != nil {
		var za A
		var zb B
		var zc C
		return za, zb, zc, err
	}
	return ra, rb, rc, nil
}

// group derives an errgroup whose context is also cancelled by Shutdown.
// release must be called once the group has been waited on.
func (d *Dispatcher) group(ctx context.Context) (g *errgroup.Group, gctx context.Context, release func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(d.ctx, cancel)
	g, gctx = errgroup.WithContext(ctx)
	return g, gctx, func() {
		stop()
		cancel()
	}
}
