// Package render generates animated test-pattern frames for exercising the
// pacing pipeline without a real frame producer attached.
package render

import (
	"fmt"
	"strings"

	"github.com/aferraro/go-ledpace/ledpace/frame"
)

// Pattern selects a test pattern.
type Pattern int

const (
	PatternCheckerboard Pattern = iota
	PatternGradient
	PatternStripes
	PatternDiagonal

	patternCount
)

const (
	checkerboardTileSize = 8
	stripeWidth          = 4
	diagonalTileSize     = 8

	stripeAnimationSpeed   = 2
	diagonalAnimationSpeed = 4
)

func (p Pattern) String() string {
	switch p {
	case PatternCheckerboard:
		return "checkerboard"
	case PatternGradient:
		return "gradient"
	case PatternStripes:
		return "stripes"
	case PatternDiagonal:
		return "diagonal"
	}
	return "unknown"
}

// ParsePattern resolves a pattern by name.
func ParsePattern(name string) (Pattern, error) {
	for p := Pattern(0); p < patternCount; p++ {
		if strings.EqualFold(name, p.String()) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown test pattern: %q", name)
}

// Generator produces successive animated frames of a test pattern in
// row-major order.
type Generator struct {
	width, height int
	pattern       Pattern
	tick          int
}

func NewGenerator(width, height int, pattern Pattern) *Generator {
	return &Generator{
		width:   width,
		height:  height,
		pattern: pattern,
	}
}

// Next returns the next animation frame. Each call returns a fresh slice;
// the generator retains no reference to it.
func (g *Generator) Next() []frame.Color {
	colors := make([]frame.Color, g.width*g.height)

	switch g.pattern {
	case PatternCheckerboard:
		g.drawCheckerboard(colors)
	case PatternGradient:
		g.drawGradient(colors)
	case PatternStripes:
		g.drawStripes(colors)
	case PatternDiagonal:
		g.drawDiagonal(colors)
	}

	g.tick++
	return colors
}

func (g *Generator) drawCheckerboard(colors []frame.Color) {
	// Invert the board every tick so motion is visible.
	phase := g.tick % 2
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if ((x/checkerboardTileSize)+(y/checkerboardTileSize)+phase)%2 == 0 {
				colors[y*g.width+x] = frame.Color{R: 0xFF, G: 0xFF, B: 0xFF}
			}
		}
	}
}

func (g *Generator) drawGradient(colors []frame.Color) {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			r := uint8((x + g.tick) * 255 / g.width % 256)
			b := uint8(y * 255 / g.height % 256)
			colors[y*g.width+x] = frame.Color{R: r, G: 0, B: b}
		}
	}
}

func (g *Generator) drawStripes(colors []frame.Color) {
	offset := g.tick * stripeAnimationSpeed
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if ((x+offset)/stripeWidth)%2 == 0 {
				colors[y*g.width+x] = frame.Color{G: 0xFF}
			}
		}
	}
}

func (g *Generator) drawDiagonal(colors []frame.Color) {
	offset := g.tick * diagonalAnimationSpeed
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if ((x+y+offset)/diagonalTileSize)%2 == 0 {
				colors[y*g.width+x] = frame.Color{R: 0xFF, B: 0xFF}
			}
		}
	}
}
