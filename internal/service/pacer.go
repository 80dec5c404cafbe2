package service

import "time"

// Pacer spaces out consecutive sends so a large batch cannot exceed the
// gateway rate limit. The fixed inter-message delay is part of the
// dispatch contract, not a tunable optimization.
type Pacer interface {
	Pause()
}

// FixedDelayPacer sleeps a fixed duration between messages.
type FixedDelayPacer struct {
	Delay time.Duration
}

func (p *FixedDelayPacer) Pause() {
	time.Sleep(p.Delay)
}

// NopPacer skips pacing entirely; used in tests.
type NopPacer struct{}

func (NopPacer) Pause() {}
