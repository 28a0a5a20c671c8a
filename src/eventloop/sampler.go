package eventloop

import (
	"sync"
	"time"
)

const defaultSampleInterval = 50 * time.Millisecond

// tickerSampler posts fast samples while subscribed. Samples are coalesced:
// if the loop has not consumed the previous one, the new one is dropped.
type tickerSampler struct {
	every time.Duration
	out   chan struct{}

	mu   sync.Mutex
	quit chan struct{}
}

func newTickerSampler(every time.Duration) *tickerSampler {
	if every <= 0 {
		every = defaultSampleInterval
	}
	return &tickerSampler{every: every, out: make(chan struct{}, 1)}
}

func (s *tickerSampler) C() <-chan struct{} { return s.out }

// Subscribe starts sampling. Subscribing again replaces the previous stream.
func (s *tickerSampler) Subscribe() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quit != nil {
		close(s.quit)
	}
	quit := make(chan struct{})
	s.quit = quit
	go s.run(quit)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.quit == quit {
				close(quit)
				s.quit = nil
			}
			s.drain()
		})
	}
}

func (s *tickerSampler) run(quit chan struct{}) {
	t := time.NewTicker(s.every)
	defer t.Stop()
	for {
		select {
		case <-quit:
			return
		case <-t.C:
			select {
			case s.out <- struct{}{}:
			default:
			}
		}
	}
}

// drain discards a sample queued before cancellation.
func (s *tickerSampler) drain() {
	select {
	case <-s.out:
	default:
	}
}

func (s *tickerSampler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quit != nil {
		close(s.quit)
		s.quit = nil
	}
}

func (s *tickerSampler) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quit != nil
}
