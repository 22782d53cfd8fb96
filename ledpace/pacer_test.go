package ledpace

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aferraro/go-ledpace/ledpace/frame"
	"github.com/aferraro/go-ledpace/ledpace/surface"
)

// scriptedSource replays a fixed sequence of AgeOfOldest results and hands
// out frames in order. Once the ages are exhausted it reports nothing
// pending.
type scriptedSource struct {
	ages     []float64
	frames   []*frame.Buffer
	popEmpty int // number of pops that return nothing before frames are served
	ageCalls int
	popCalls int
}

func (s *scriptedSource) AgeOfOldest() float64 {
	s.ageCalls++
	if len(s.ages) == 0 {
		return math.MaxFloat64
	}
	a := s.ages[0]
	s.ages = s.ages[1:]
	return a
}

func (s *scriptedSource) PopOldest() (*frame.Buffer, bool) {
	s.popCalls++
	if s.popEmpty > 0 {
		s.popEmpty--
		return nil, false
	}
	if len(s.frames) == 0 {
		return nil, false
	}
	b := s.frames[0]
	s.frames = s.frames[1:]
	return b, true
}

// recordingSurface counts pixel writes and commits.
type recordingSurface struct {
	width, height int
	pixels        map[[2]int]frame.Color
	setCalls      int
	commits       int
	commitErr     error
}

func newRecordingSurface(width, height int) *recordingSurface {
	return &recordingSurface{
		width:  width,
		height: height,
		pixels: make(map[[2]int]frame.Color),
	}
}

func (r *recordingSurface) Width() int  { return r.width }
func (r *recordingSurface) Height() int { return r.height }

func (r *recordingSurface) SetPixel(x, y int, red, g, b uint8) {
	r.setCalls++
	r.pixels[[2]int{x, y}] = frame.Color{R: red, G: g, B: b}
}

func (r *recordingSurface) Commit() error {
	if r.commitErr != nil {
		return r.commitErr
	}
	r.commits++
	return nil
}

func dueFrame(colors []frame.Color) *frame.Buffer {
	return frame.New(colors, time.Now())
}

func solidColors(n int, c frame.Color) []frame.Color {
	colors := make([]frame.Color, n)
	for i := range colors {
		colors[i] = c
	}
	return colors
}

func TestPresentMirrorsHorizontally(t *testing.T) {
	// Spec scenario: 2x2 buffer is flipped around the vertical axis.
	surf := newRecordingSurface(2, 2)
	buf := dueFrame([]frame.Color{
		{R: 255}, {G: 255},
		{B: 255}, {R: 255, G: 255},
	})

	p := New(Config{})
	require.NoError(t, p.present(buf, surf))

	assert.Equal(t, frame.Color{R: 255}, surf.pixels[[2]int{1, 0}])
	assert.Equal(t, frame.Color{G: 255}, surf.pixels[[2]int{0, 0}])
	assert.Equal(t, frame.Color{B: 255}, surf.pixels[[2]int{1, 1}])
	assert.Equal(t, frame.Color{R: 255, G: 255}, surf.pixels[[2]int{0, 1}])
	assert.Equal(t, 4, surf.setCalls, "present should write exactly width*height pixels")
	assert.Equal(t, 1, surf.commits, "present should commit exactly once")
}

func TestPresentSizeMismatchIsFatal(t *testing.T) {
	testCases := []struct {
		name       string
		pixelCount int
	}{
		{"too small", 3},
		{"too large", 5},
		{"empty", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			surf := newRecordingSurface(2, 2)
			buf := dueFrame(solidColors(tc.pixelCount, frame.Color{R: 1}))

			p := New(Config{})
			err := p.present(buf, surf)

			assert.ErrorIs(t, err, ErrSizeMismatch)
			assert.Zero(t, surf.setCalls, "no pixels should be written on size mismatch")
			assert.Zero(t, surf.commits, "no commit should happen on size mismatch")
		})
	}
}

func TestPresentCommitFailureDropsFrame(t *testing.T) {
	surf := newRecordingSurface(2, 2)
	surf.commitErr = errors.New("display unplugged")

	p := New(Config{})
	err := p.present(dueFrame(solidColors(4, frame.Color{})), surf)

	assert.NoError(t, err, "a failed commit drops the frame but does not stop the loop")
	assert.Zero(t, p.FPS(), "a dropped frame should not update the rate")
}

func TestFPSIsInstantaneous(t *testing.T) {
	surf := newRecordingSurface(1, 1)
	p := New(Config{})

	base := time.Now()
	times := []time.Time{
		base,
		base.Add(100 * time.Millisecond), // 10 fps
		base.Add(150 * time.Millisecond), // then 20 fps
	}
	p.now = func() time.Time {
		now := times[0]
		times = times[1:]
		return now
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, p.present(dueFrame(solidColors(1, frame.Color{})), surf))
	}

	// Only the last delta counts, not an average over history.
	assert.InDelta(t, 20.0, p.FPS(), 0.01)
}

func TestRunPresentsDueFramesThenSleepsBounded(t *testing.T) {
	testCases := []struct {
		name      string
		ages      []float64
		maxWait   time.Duration
		frames    int
		wantSleep time.Duration
	}{
		{
			// Two due frames drained, head is 5s out: sleep is capped.
			name:      "far-out head caps at max wait",
			ages:      []float64{-1, -1, 5, 5},
			maxWait:   10 * time.Millisecond,
			frames:    2,
			wantSleep: 10 * time.Millisecond,
		},
		{
			// Head is due sooner than the cap: sleep the remaining age.
			name:      "near head sleeps remaining age",
			ages:      []float64{0.002, 0.002},
			maxWait:   10 * time.Millisecond,
			frames:    0,
			wantSleep: 2 * time.Millisecond,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := &scriptedSource{ages: tc.ages}
			for i := 0; i < tc.frames; i++ {
				src.frames = append(src.frames, dueFrame(solidColors(1, frame.Color{})))
			}
			surf := newRecordingSurface(1, 1)

			ctx, cancel := context.WithCancel(context.Background())
			var sleeps []time.Duration
			p := New(Config{MaxWait: tc.maxWait})
			p.sleep = func(d time.Duration) {
				sleeps = append(sleeps, d)
				cancel()
			}

			require.NoError(t, p.Run(ctx, src, surf))
			assert.Equal(t, tc.frames, surf.commits)
			require.Len(t, sleeps, 1)
			assert.InDelta(t, tc.wantSleep.Nanoseconds(), sleeps[0].Nanoseconds(), 1)
		})
	}
}

func TestRunReturnsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &scriptedSource{ages: []float64{-1}}
	surf := newRecordingSurface(1, 1)

	p := New(Config{})
	err := p.Run(ctx, src, surf)

	assert.NoError(t, err)
	assert.Zero(t, src.popCalls, "no frame should be popped after cancellation")
}

func TestRunToleratesEmptyPopAfterDueAge(t *testing.T) {
	// The pop races benignly with the age check: an empty pop re-polls
	// instead of erroring out.
	src := &scriptedSource{
		ages:     []float64{-1, -1, 5, 5},
		popEmpty: 1,
	}
	src.frames = append(src.frames, dueFrame(solidColors(1, frame.Color{})))
	surf := newRecordingSurface(1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	p := New(Config{})
	p.sleep = func(time.Duration) { cancel() }

	require.NoError(t, p.Run(ctx, src, surf))
	assert.Equal(t, 1, surf.commits)
	assert.Equal(t, 2, src.popCalls)
}

func TestRunSizeMismatchStopsLoop(t *testing.T) {
	src := &scriptedSource{ages: []float64{-1}}
	src.frames = append(src.frames, dueFrame(solidColors(7, frame.Color{})))
	surf := newRecordingSurface(2, 2)

	p := New(Config{})
	err := p.Run(context.Background(), src, surf)

	assert.ErrorIs(t, err, ErrSizeMismatch)
	assert.Zero(t, surf.commits)
}

func TestRunDiscardBacklogDropsOverdueFrames(t *testing.T) {
	// Ages per call: drain check, post-pop backlog check, drain check,
	// post-pop backlog check, drain check, sleep computation.
	src := &scriptedSource{ages: []float64{-1, -1, -1, 5, 5, 5}}
	first := dueFrame(solidColors(1, frame.Color{R: 1}))
	second := dueFrame(solidColors(1, frame.Color{R: 2}))
	src.frames = append(src.frames, first, second)
	surf := newRecordingSurface(1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	p := New(Config{DiscardBacklog: true})
	p.sleep = func(time.Duration) { cancel() }

	require.NoError(t, p.Run(ctx, src, surf))
	assert.Equal(t, 1, surf.commits, "first frame should be dropped, second presented")
	assert.Equal(t, frame.Color{R: 2}, surf.pixels[[2]int{0, 0}])
}

func TestRunPresentsAllBacklogByDefault(t *testing.T) {
	src := &scriptedSource{ages: []float64{-1, -1, -1, 5, 5}}
	src.frames = append(src.frames,
		dueFrame(solidColors(1, frame.Color{R: 1})),
		dueFrame(solidColors(1, frame.Color{R: 2})),
		dueFrame(solidColors(1, frame.Color{R: 3})))
	surf := newRecordingSurface(1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	p := New(Config{})
	p.sleep = func(time.Duration) { cancel() }

	require.NoError(t, p.Run(ctx, src, surf))
	assert.Equal(t, 3, surf.commits, "catch-up-by-speed presents every due frame")
}

func TestRunAgainstHeadlessSurface(t *testing.T) {
	surf := surface.NewHeadless(2, 2, surface.SnapshotConfig{})
	src := &scriptedSource{ages: []float64{-1, 5, 5}}
	src.frames = append(src.frames, dueFrame([]frame.Color{
		{R: 255}, {G: 255},
		{B: 255}, {R: 255, G: 255},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	p := New(Config{})
	p.sleep = func(time.Duration) { cancel() }

	require.NoError(t, p.Run(ctx, src, surf))
	assert.Equal(t, 1, surf.Commits())
	assert.Equal(t, frame.Color{R: 255}, surf.Pixel(1, 0))
	assert.Equal(t, frame.Color{G: 255}, surf.Pixel(0, 0))
	assert.Equal(t, frame.Color{B: 255}, surf.Pixel(1, 1))
	assert.Equal(t, frame.Color{R: 255, G: 255}, surf.Pixel(0, 1))
}
