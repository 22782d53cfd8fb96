package frame

import "time"

// Color is a single RGB pixel sample.
type Color struct {
	R, G, B uint8
}

// Buffer is an owned, row-major array of color samples with a scheduled
// presentation time. Buffers are created by a producer, handed off through
// a buffer.Manager and consumed exactly once by the pacing loop.
type Buffer struct {
	colors []Color
	due    time.Time
}

// New creates a buffer from row-major color data due at the given time.
// The buffer takes ownership of the slice; callers must not modify it after.
func New(colors []Color, due time.Time) *Buffer {
	return &Buffer{
		colors: colors,
		due:    due,
	}
}

// Len returns the pixel count of the buffer.
func (b *Buffer) Len() int {
	return len(b.colors)
}

// At returns the color at row-major index i.
func (b *Buffer) At(i int) Color {
	return b.colors[i]
}

// Due returns the scheduled presentation time.
func (b *Buffer) Due() time.Time {
	return b.due
}

// Age returns the number of seconds until the buffer is due, relative to
// now. Non-positive means due or overdue.
func (b *Buffer) Age(now time.Time) float64 {
	return b.due.Sub(now).Seconds()
}
