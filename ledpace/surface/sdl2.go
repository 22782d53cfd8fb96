//go:build sdl2

package surface

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
)

const bytesPerPixel = 4

// SDL2 renders frames into a desktop window, scaled up from the matrix
// resolution. Pixel writes go into a staging buffer that is uploaded to a
// streaming texture on Commit; with VSync enabled the present blocks until
// the next vertical-sync boundary.
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stub, see build tags (sdl2).
type SDL2 struct {
	width, height int
	pixels        []byte
	window        *sdl.Window
	renderer      *sdl.Renderer
	texture       *sdl.Texture
	config        Config
}

// NewSDL2 creates a window surface of the given pixel dimensions.
func NewSDL2(width, height int, config Config) (*SDL2, error) {
	if config.Scale <= 0 {
		config.Scale = 4
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL2: %v", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(width*config.Scale),
		int32(height*config.Scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("failed to create window: %v", err)
	}

	rendererFlags := uint32(sdl.RENDERER_ACCELERATED)
	if config.VSync {
		rendererFlags |= sdl.RENDERER_PRESENTVSYNC
	}
	renderer, err := sdl.CreateRenderer(window, -1, rendererFlags)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("failed to create renderer: %v", err)
	}

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(width),
		int32(height),
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("failed to create texture: %v", err)
	}

	slog.Info("SDL2 surface initialized", "width", width, "height", height, "scale", config.Scale, "vsync", config.VSync)

	return &SDL2{
		width:    width,
		height:   height,
		pixels:   make([]byte, width*height*bytesPerPixel),
		window:   window,
		renderer: renderer,
		texture:  texture,
		config:   config,
	}, nil
}

func (s *SDL2) Width() int  { return s.width }
func (s *SDL2) Height() int { return s.height }

func (s *SDL2) SetPixel(x, y int, r, g, b uint8) {
	idx := (y*s.width + x) * bytesPerPixel
	s.pixels[idx] = r
	s.pixels[idx+1] = g
	s.pixels[idx+2] = b
	s.pixels[idx+3] = 0xFF
}

func (s *SDL2) Commit() error {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		s.handleEvent(event)
	}

	if err := s.texture.Update(nil, unsafe.Pointer(&s.pixels[0]), s.width*bytesPerPixel); err != nil {
		return fmt.Errorf("failed to update texture: %v", err)
	}
	s.renderer.SetDrawColor(0, 0, 0, 0xFF)
	if err := s.renderer.Clear(); err != nil {
		return fmt.Errorf("failed to clear renderer: %v", err)
	}
	if err := s.renderer.Copy(s.texture, nil, nil); err != nil {
		return fmt.Errorf("failed to copy texture: %v", err)
	}
	s.renderer.Present()
	return nil
}

// Cleanup destroys the window and shuts SDL down.
func (s *SDL2) Cleanup() error {
	slog.Info("Cleaning up SDL2 surface")

	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}

func (s *SDL2) handleEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		if s.config.OnQuit != nil {
			s.config.OnQuit()
		}
	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN && e.Keysym.Sym == sdl.K_ESCAPE {
			if s.config.OnQuit != nil {
				s.config.OnQuit()
			}
		}
	}
}
