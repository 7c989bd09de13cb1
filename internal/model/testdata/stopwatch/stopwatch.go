package stopwatch

import "time"

//proxygen:binding timed
type Stopwatch struct {
	started time.Time
}

func NewStopwatch(start time.Time) *Stopwatch {
	return &Stopwatch{started: start}
}

func (s *Stopwatch) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.started)
}

func (s *Stopwatch) Reset(start time.Time) {
	s.started = start
}
