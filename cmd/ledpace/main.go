package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/aferraro/go-ledpace/ledpace"
	"github.com/aferraro/go-ledpace/ledpace/buffer"
	"github.com/aferraro/go-ledpace/ledpace/render"
	"github.com/aferraro/go-ledpace/ledpace/surface"
	"github.com/aferraro/go-ledpace/ledpace/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "ledpace"
	app.Description = "Frame pacer for timestamped LED matrix buffers"
	app.Usage = "ledpace [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Usage: "Matrix width in pixels",
			Value: 64,
		},
		cli.IntFlag{
			Name:  "height",
			Usage: "Matrix height in pixels",
			Value: 32,
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Display backend: terminal, sdl2 or headless",
			Value: "terminal",
		},
		cli.Float64Flag{
			Name:  "fps",
			Usage: "Target frame rate of the test pattern producer",
			Value: 30,
		},
		cli.StringFlag{
			Name:  "pattern",
			Usage: "Test pattern: checkerboard, gradient, stripes or diagonal",
			Value: "checkerboard",
		},
		cli.IntFlag{
			Name:  "lead-ms",
			Usage: "How far in the future produced frames are scheduled, in milliseconds",
			Value: 100,
		},
		cli.IntFlag{
			Name:  "capacity",
			Usage: "Maximum number of buffered frames before the oldest is dropped",
			Value: 120,
		},
		cli.IntFlag{
			Name:  "max-wait-us",
			Usage: "Upper bound on a single pacing sleep, in microseconds",
			Value: 10000,
		},
		cli.BoolFlag{
			Name:  "discard-backlog",
			Usage: "Drop overdue frames instead of presenting them as fast as possible",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Pixel scale factor for the sdl2 backend",
			Value: 4,
		},
		cli.BoolFlag{
			Name:  "vsync",
			Usage: "Present on vertical sync (sdl2 backend)",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to present in headless mode (required for headless)",
			Value: 0,
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
	}
	app.Action = runPacer

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running pacer", "error", err)
		os.Exit(1)
	}
}

func runPacer(c *cli.Context) error {
	width := c.Int("width")
	height := c.Int("height")
	if width <= 0 || height <= 0 {
		return errors.New("width and height must be positive")
	}

	pattern, err := render.ParsePattern(c.String("pattern"))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	config := surface.Config{
		Title:  fmt.Sprintf("ledpace %dx%d", width, height),
		Scale:  c.Int("scale"),
		VSync:  c.Bool("vsync"),
		OnQuit: cancel,
	}

	var surf surface.Surface
	var headless *surface.Headless
	switch c.String("backend") {
	case "terminal":
		// The terminal surface owns the screen; drop log output.
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		term, err := surface.NewTerminal(width, height, config)
		if err != nil {
			return err
		}
		defer term.Cleanup()
		surf = term
	case "sdl2":
		sdl2, err := surface.NewSDL2(width, height, config)
		if err != nil {
			return err
		}
		defer sdl2.Cleanup()
		surf = sdl2
	case "headless":
		if c.Int("frames") <= 0 {
			return errors.New("headless mode requires --frames option with a positive value")
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		slog.SetDefault(slog.New(handler))

		snapshotConfig, err := surface.CreateSnapshotConfig(
			c.Int("snapshot-interval"), c.String("snapshot-dir"), pattern.String())
		if err != nil {
			return err
		}
		headless = surface.NewHeadless(width, height, snapshotConfig)
		surf = headless
	default:
		return fmt.Errorf("unknown backend: %q", c.String("backend"))
	}

	manager := buffer.NewManager(c.Int("capacity"))
	generator := render.NewGenerator(width, height, pattern)
	limiter := timing.NewAdaptiveLimiter(c.Float64("fps"))
	producer := render.NewProducer(generator, manager, limiter,
		time.Duration(c.Int("lead-ms"))*time.Millisecond)

	pacer := ledpace.New(ledpace.Config{
		MaxWait:        time.Duration(c.Int("max-wait-us")) * time.Microsecond,
		DiscardBacklog: c.Bool("discard-backlog"),
	})

	go producer.Run(ctx)
	go monitor(ctx, cancel, pacer, manager, headless, c.Int("frames"))

	return pacer.Run(ctx, manager, surf)
}

// monitor logs pacing stats periodically and, in headless mode, cancels the
// run once the requested number of frames has been presented.
func monitor(ctx context.Context, cancel context.CancelFunc, pacer *ledpace.Pacer,
	manager *buffer.Manager, headless *surface.Headless, maxFrames int) {

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()
	frameTicker := time.NewTicker(10 * time.Millisecond)
	defer frameTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-statsTicker.C:
			slog.Info("Pacing stats",
				"fps", fmt.Sprintf("%.1f", pacer.FPS()),
				"pending", manager.Len(),
				"dropped", manager.Dropped())
		case <-frameTicker.C:
			if headless != nil && headless.Commits() >= maxFrames {
				slog.Info("Headless execution completed", "frames", headless.Commits())
				cancel()
				return
			}
		}
	}
}
