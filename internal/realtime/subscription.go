package realtime

import (
	"context"
	"sync"
)

// Subscription is the cancellation handle for a set of streams.
type Subscription struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	errCh  chan error
	done   chan struct{}
}

// size bounds how many streams can report; each reports at most once, so
// report never blocks.
func newSubscription(parent context.Context, size int) *Subscription {
	ctx, cancel := context.WithCancel(parent)
	return &Subscription{
		ctx:    ctx,
		cancel: cancel,
		errCh:  make(chan error, size),
		done:   make(chan struct{}),
	}
}

// seal must be called once every stream has been started.
func (s *Subscription) seal() {
	go func() {
		s.wg.Wait()
		close(s.errCh)
		close(s.done)
	}()
}

func (s *Subscription) abort() {
	s.seal()
	s.Cancel()
}

func (s *Subscription) report(err error) {
	s.errCh <- err
}

// Cancel stops every stream and returns once all of them have exited. It is
// safe to call more than once.
func (s *Subscription) Cancel() {
	s.cancel()
	<-s.done
}

// Errors delivers one error per failed stream. It is closed after all streams
// have exited.
func (s *Subscription) Errors() <-chan error { return s.errCh }

// Done is closed once every stream has exited.
func (s *Subscription) Done() <-chan struct{} { return s.done }
