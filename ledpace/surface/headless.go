package surface

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/aferraro/go-ledpace/ledpace/frame"
)

// Headless is an in-memory surface for automated testing and batch runs.
// It holds the last committed frame and can optionally save PNG snapshots
// at a fixed commit interval.
type Headless struct {
	width, height  int
	back           []frame.Color
	front          []frame.Color
	commits        atomic.Int64
	snapshotConfig SnapshotConfig
}

// SnapshotConfig holds configuration for frame snapshots.
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N commits
	Directory string // Directory to save snapshots
	BaseName  string // Base name for snapshot filenames
}

func NewHeadless(width, height int, snapshotConfig SnapshotConfig) *Headless {
	return &Headless{
		width:          width,
		height:         height,
		back:           make([]frame.Color, width*height),
		front:          make([]frame.Color, width*height),
		snapshotConfig: snapshotConfig,
	}
}

func (h *Headless) Width() int  { return h.width }
func (h *Headless) Height() int { return h.height }

func (h *Headless) SetPixel(x, y int, r, g, b uint8) {
	h.back[y*h.width+x] = frame.Color{R: r, G: g, B: b}
}

func (h *Headless) Commit() error {
	copy(h.front, h.back)
	commits := int(h.commits.Add(1))

	if h.snapshotConfig.Enabled && commits%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot(commits)
	}
	return nil
}

// Commits returns the number of completed commits. Safe to call from any
// goroutine, though the frame contents themselves are single-writer.
func (h *Headless) Commits() int {
	return int(h.commits.Load())
}

// Pixel returns the color of the last committed frame at (x, y).
func (h *Headless) Pixel(x, y int) frame.Color {
	return h.front[y*h.width+x]
}

// CreateSnapshotConfig builds a snapshot configuration from CLI parameters,
// creating the output directory as needed.
func CreateSnapshotConfig(interval int, directory, baseName string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
		BaseName: baseName,
	}

	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "ledpace-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %v", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %v", err)
		}
		config.Directory = directory
	}

	return config, nil
}

// saveSnapshot saves a PNG of the last committed frame.
func (h *Headless) saveSnapshot(commits int) {
	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))
	for i, c := range h.front {
		idx := i * 4
		img.Pix[idx] = c.R
		img.Pix[idx+1] = c.G
		img.Pix[idx+2] = c.B
		img.Pix[idx+3] = 0xFF
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_commit_%d_%s.png", h.snapshotConfig.BaseName, commits, timestamp)
	filePath := filepath.Join(h.snapshotConfig.Directory, filename)

	file, err := os.Create(filePath)
	if err != nil {
		slog.Error("Failed to create snapshot file", "path", filePath, "error", err)
		return
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		slog.Error("Failed to encode PNG snapshot", "path", filePath, "error", err)
		return
	}

	slog.Info("Snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", h.width, h.height))
}
