//go:build !sdl2

package surface

import "fmt"

// SDL2 stub for when SDL2 is not available
type SDL2 struct{}

func NewSDL2(width, height int, config Config) (*SDL2, error) {
	return nil, fmt.Errorf("SDL2 surface not available - compile with -tags sdl2 and install SDL2 development libraries")
}

func (s *SDL2) Width() int  { return 0 }
func (s *SDL2) Height() int { return 0 }

func (s *SDL2) SetPixel(x, y int, r, g, b uint8) {}

func (s *SDL2) Commit() error {
	return fmt.Errorf("SDL2 surface not available")
}

func (s *SDL2) Cleanup() error {
	return nil
}
