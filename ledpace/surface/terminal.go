package surface

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/aferraro/go-ledpace/ledpace/frame"
)

// Terminal renders frames into a terminal using tcell. Each character cell
// shows two vertically stacked pixels via the upper-half-block rune, with
// the top pixel as foreground and the bottom pixel as background.
type Terminal struct {
	width, height int
	back          []frame.Color
	screen        tcell.Screen
	config        Config
	running       bool
}

// NewTerminal creates and initializes a terminal surface of the given pixel
// dimensions. The events goroutine reports ESC/Ctrl-C via config.OnQuit.
func NewTerminal(width, height int, config Config) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	t := &Terminal{
		width:   width,
		height:  height,
		back:    make([]frame.Color, width*height),
		screen:  screen,
		config:  config,
		running: true,
	}
	go t.pollEvents()

	slog.Info("Terminal surface initialized", "width", width, "height", height)
	return t, nil
}

func (t *Terminal) Width() int  { return t.width }
func (t *Terminal) Height() int { return t.height }

func (t *Terminal) SetPixel(x, y int, r, g, b uint8) {
	t.back[y*t.width+x] = frame.Color{R: r, G: g, B: b}
}

// Commit draws the written frame and flushes it to the terminal in one
// Show call, so the frame becomes visible atomically.
func (t *Terminal) Commit() error {
	for ty := 0; ty < (t.height+1)/2; ty++ {
		for x := 0; x < t.width; x++ {
			top := t.back[(ty*2)*t.width+x]
			bottom := frame.Color{}
			if ty*2+1 < t.height {
				bottom = t.back[(ty*2+1)*t.width+x]
			}

			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			t.screen.SetContent(x, ty, '▀', nil, style)
		}
	}

	if t.config.Title != "" {
		_, termHeight := t.screen.Size()
		style := tcell.StyleDefault.Foreground(tcell.ColorYellow)
		for i, ch := range t.config.Title + " - ESC to exit" {
			t.screen.SetContent(i, termHeight-1, ch, nil, style)
		}
	}

	t.screen.Show()
	return nil
}

// Cleanup restores the terminal.
func (t *Terminal) Cleanup() error {
	t.running = false
	t.screen.Fini()
	return nil
}

func (t *Terminal) pollEvents() {
	for t.running {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				if t.config.OnQuit != nil {
					t.config.OnQuit()
				}
				return
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}
