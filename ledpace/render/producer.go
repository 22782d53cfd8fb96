package render

import (
	"context"
	"log/slog"
	"time"

	"github.com/aferraro/go-ledpace/ledpace/buffer"
	"github.com/aferraro/go-ledpace/ledpace/frame"
	"github.com/aferraro/go-ledpace/ledpace/timing"
)

// Producer generates pattern frames at a fixed rate and pushes them into a
// buffer manager, each scheduled a constant lead ahead of its generation
// time. It stands in for a real frame source feeding the pacing loop.
type Producer struct {
	gen     *Generator
	manager *buffer.Manager
	limiter timing.Limiter
	lead    time.Duration
}

// NewProducer creates a producer. lead is how far in the future each frame
// is scheduled; it must cover the producer's own jitter or frames arrive
// already overdue.
func NewProducer(gen *Generator, manager *buffer.Manager, limiter timing.Limiter, lead time.Duration) *Producer {
	return &Producer{
		gen:     gen,
		manager: manager,
		limiter: limiter,
		lead:    lead,
	}
}

// Run generates frames until ctx is cancelled. Typically run in its own
// goroutine next to the pacing loop.
func (p *Producer) Run(ctx context.Context) {
	slog.Info("Frame producer started", "lead", p.lead)
	frames := 0

	for ctx.Err() == nil {
		p.limiter.WaitForNextFrame()
		p.manager.Push(frame.New(p.gen.Next(), time.Now().Add(p.lead)))
		frames++
	}

	slog.Info("Frame producer stopped", "frames", frames)
}
