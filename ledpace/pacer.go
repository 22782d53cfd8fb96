// Package ledpace implements the frame-pacing loop: it drains timestamped
// pixel buffers from a source as they come due and presents each one to a
// fixed-resolution display surface, tracking the achieved frame rate.
package ledpace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aferraro/go-ledpace/ledpace/frame"
	"github.com/aferraro/go-ledpace/ledpace/surface"
	"github.com/aferraro/go-ledpace/ledpace/timing"
)

// ErrSizeMismatch indicates a frame whose pixel count does not match the
// surface dimensions. This is a producer/consumer configuration defect,
// not a transient condition, and stops the pacing loop.
var ErrSizeMismatch = errors.New("size mismatch between frame data and surface")

// Source supplies frames in nondecreasing due-time order. Both methods must
// be safe to call from the pacing goroutine concurrently with producers.
type Source interface {
	// AgeOfOldest returns the seconds until the earliest-due pending frame
	// is due. Non-positive means due or overdue; a large positive value
	// means nothing is pending.
	AgeOfOldest() float64

	// PopOldest removes and returns the earliest-due frame, or false when
	// none is pending.
	PopOldest() (*frame.Buffer, bool)
}

// DefaultMaxWait bounds a single sleep in the pacing loop. Deliberately
// short so a frame arriving with an earlier due time than the current head,
// or a cancellation, is noticed promptly.
const DefaultMaxWait = 10 * time.Millisecond

// Config holds the pacing policy.
type Config struct {
	// MaxWait is the upper bound on a single poll sleep. Zero or negative
	// selects DefaultMaxWait.
	MaxWait time.Duration

	// DiscardBacklog drops an overdue frame when the one behind it is
	// already due, catching up by dropping. When false (the default) every
	// due frame is presented as fast as possible to catch up by speed.
	DiscardBacklog bool
}

// Pacer runs the presentation loop. A single goroutine calls Run; FPS may
// be read from any goroutine.
type Pacer struct {
	cfg   Config
	meter *timing.FPSMeter

	// replaced in tests
	sleep func(time.Duration)
	now   func() time.Time
}

func New(cfg Config) *Pacer {
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	return &Pacer{
		cfg:   cfg,
		meter: timing.NewFPSMeter(),
		sleep: time.Sleep,
		now:   time.Now,
	}
}

// FPS returns the instantaneous frame rate: the reciprocal of the delta
// between the last two presentations, not an average.
func (p *Pacer) FPS() float64 {
	return p.meter.FPS()
}

// Run drains due frames from src and presents them on surf until ctx is
// cancelled. Cancellation is cooperative, checked once per iteration; the
// bounded sleep guarantees a check at least every MaxWait. Returns nil on
// cancellation and an error only for the fatal size mismatch.
func (p *Pacer) Run(ctx context.Context, src Source, surf surface.Surface) error {
	slog.Info("Pacing loop started",
		"width", surf.Width(),
		"height", surf.Height(),
		"max_wait", p.cfg.MaxWait,
		"discard_backlog", p.cfg.DiscardBacklog)

	for ctx.Err() == nil {
		for src.AgeOfOldest() <= 0 {
			buf, ok := src.PopOldest()
			if !ok {
				// The age check races benignly with the pop: a concurrent
				// consumer may have taken the frame. Re-poll.
				continue
			}

			if p.cfg.DiscardBacklog && src.AgeOfOldest() <= 0 {
				// The next frame is already due; drop this one to catch up.
				continue
			}

			if err := p.present(buf, surf); err != nil {
				return err
			}
		}

		delay := time.Duration(math.Min(float64(p.cfg.MaxWait), src.AgeOfOldest()*float64(time.Second)))
		if delay > 0 {
			p.sleep(delay)
		}
	}

	slog.Info("Pacing loop stopped")
	return nil
}

// present writes one frame to the surface, mirrored horizontally: the
// source pixel ordering and the physical column order are inverted, so
// row-major index y*width+x lands on surface column width-1-x. The frame
// becomes visible in a single Commit.
func (p *Pacer) present(buf *frame.Buffer, surf surface.Surface) error {
	width, height := surf.Width(), surf.Height()
	if buf.Len() != width*height {
		return fmt.Errorf("%w: frame has %d pixels, surface is %dx%d",
			ErrSizeMismatch, buf.Len(), width, height)
	}

	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			c := buf.At(y*width + x)
			surf.SetPixel(width-1-x, y, c.R, c.G, c.B)
		}
	}

	if err := surf.Commit(); err != nil {
		// A failed commit drops the frame; it does not stop the loop.
		slog.Warn("Frame dropped, commit failed", "error", err)
		return nil
	}

	p.meter.Update(p.now())
	return nil
}
