// Package surface provides display targets for the pacing loop: a shared,
// fixed-resolution grid of pixels with a commit operation that makes the
// most recently written frame visible atomically.
package surface

// Surface is a fixed-size display target. Exactly one pacing loop writes
// to a surface; implementations do not need to support concurrent writers.
type Surface interface {
	Width() int
	Height() int

	// SetPixel writes one sample. Writes are not visible until Commit.
	SetPixel(x, y int, r, g, b uint8)

	// Commit makes the written frame visible as one atomic unit, e.g. on
	// the next vertical-sync boundary. No partial frame is ever shown.
	Commit() error
}

// Config holds configuration shared by the window and terminal surfaces.
type Config struct {
	Title  string
	Scale  int
	VSync  bool
	OnQuit func() // surface requests shutdown (window close, ESC)
}
