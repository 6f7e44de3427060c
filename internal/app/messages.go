package app

import (
	"time"

	"trigator.klederson.com/internal/sampler"
	"trigator.klederson.com/internal/trilat"
)

// TickMsg triggers a frame update.
type TickMsg time.Time

// SampleProgressMsg reports one iteration of a running sample.
type SampleProgressMsg struct {
	Anchor   int
	Progress sampler.Progress
}

// SampleDoneMsg ends a sampling run.
type SampleDoneMsg struct {
	Anchor      int
	Measurement trilat.Measurement
	Err         error
}
