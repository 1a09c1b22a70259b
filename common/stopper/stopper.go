package stopper

import "sync"

// Stopper eases the graceful termination of a group of goroutines.
type Stopper struct {
	wg   sync.WaitGroup
	stop chan struct{}
}

// NewStopper initializes a new Stopper instance.
func NewStopper() *Stopper {
	return &Stopper{stop: make(chan struct{})}
}

// Begin indicates that a new goroutine has started.
func (s *Stopper) Begin() {
	s.wg.Add(1)
}

// End indicates that a goroutine has stopped.
func (s *Stopper) End() {
	s.wg.Done()
}

// Chan returns the channel on which goroutines could listen to determine if
// they should stop.
func (s *Stopper) Chan() chan struct{} {
	return s.stop
}

// Stop asks every goroutine to end and waits for them.
func (s *Stopper) Stop() {
	close(s.stop)
	s.wg.Wait()
}
