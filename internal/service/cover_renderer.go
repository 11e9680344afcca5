package service

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// coverPalette holds the background colors a generated cover can pick from.
var coverPalette = [][3]float64{
	{0.16, 0.35, 0.60},
	{0.55, 0.24, 0.39},
	{0.20, 0.47, 0.37},
	{0.58, 0.42, 0.15},
	{0.36, 0.29, 0.55},
}

// CoverRenderer draws placeholder course covers for courses that have no
// uploaded image yet.
type CoverRenderer struct {
	width  int
	height int
}

func NewCoverRenderer(width, height int) *CoverRenderer {
	return &CoverRenderer{width: width, height: height}
}

// Render draws the title over a background color derived from the title
// itself, so the same course always gets the same cover.
func (r *CoverRenderer) Render(title string) *gg.Context {
	dc := gg.NewContext(r.width, r.height)

	color := coverPalette[titleHash(title)%uint32(len(coverPalette))]
	dc.SetRGB(color[0], color[1], color[2])
	dc.Clear()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(1, 1, 1)

	lines := wrapTitle(title, 28)
	lineHeight := 18.0
	startY := float64(r.height)/2 - lineHeight*float64(len(lines)-1)/2
	for i, line := range lines {
		dc.DrawStringAnchored(line, float64(r.width)/2, startY+lineHeight*float64(i), 0.5, 0.5)
	}
	return dc
}

// RenderToFile writes the generated cover as PNG.
func (r *CoverRenderer) RenderToFile(title, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("render cover: %w", err)
	}
	if err := r.Render(title).SavePNG(path); err != nil {
		return fmt.Errorf("render cover: %w", err)
	}
	return nil
}

func titleHash(title string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(title)))
	return h.Sum32()
}

// wrapTitle splits the title into lines no longer than limit runes, breaking
// on spaces.
func wrapTitle(title string, limit int) []string {
	words := strings.Fields(title)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > limit {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}
