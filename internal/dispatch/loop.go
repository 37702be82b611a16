package dispatch

import "sync"

// Loop is a minimal interaction thread: functions posted to it run one at a
// time on the goroutine that calls Run.
type Loop struct {
	queue chan func()
	stop  chan struct{}
	once  sync.Once
}

func NewLoop() *Loop {
	return &Loop{
		queue: make(chan func(), 64),
		stop:  make(chan struct{}),
	}
}

// Post queues fn. It blocks while the queue is full and fails once the loop
// is stopped.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.stop:
		return ErrShutdown
	default:
	}
	select {
	case l.queue <- fn:
		return nil
	case <-l.stop:
		return ErrShutdown
	}
}

// Run executes posted functions until Stop is called.
func (l *Loop) Run() {
	for {
		select {
		case fn := <-l.queue:
			fn()
		case <-l.stop:
			return
		}
	}
}

// Stop ends Run. Functions still queued are dropped.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.stop) })
}
