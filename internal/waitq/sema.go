package waitq

// binarySemaphore is a semaphore with values 0 and 1, implemented over a
// buffered channel exactly as nsync's binarySemaphore is: blocking on a
// channel receive is cheaper than parking on a condition variable for the
// single-waiter case this type exists to serve.
type binarySemaphore struct {
	ch chan struct{}
}

func (s *binarySemaphore) init() {
	s.ch = make(chan struct{}, 1)
}

// p waits until the semaphore's count is 1 and decrements it to 0.
func (s *binarySemaphore) p() {
	<-s.ch
}

// v ensures the semaphore's count is 1, without blocking if it already is.
func (s *binarySemaphore) v() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}
