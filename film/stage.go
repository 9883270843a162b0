// Package film turns carousel views into still frames.
//
// A Stage rasterises a terminal view into a PNG, Compare measures how far two
// frames drifted, and a ContactSheet lays exported frames out on one HTML
// page.
package film

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Config sets the frame geometry and palette.
type Config struct {
	Width      int        // columns
	Height     int        // rows
	Background color.RGBA
	Foreground color.RGBA
}

// DefaultConfig is an 80x24 white-on-black terminal.
func DefaultConfig() Config {
	return Config{
		Width:      80,
		Height:     24,
		Background: color.RGBA{0, 0, 0, 255},
		Foreground: color.RGBA{255, 255, 255, 255},
	}
}

// Stage holds one frame worth of terminal cells.
type Stage struct {
	config     Config
	buffer     [][]rune
	charWidth  int
	charHeight int
	face       font.Face
}

// NewStage returns an empty stage.
func NewStage(config Config) *Stage {
	buffer := make([][]rune, config.Height)
	for i := range buffer {
		buffer[i] = make([]rune, config.Width)
	}
	return &Stage{
		config:     config,
		buffer:     buffer,
		charWidth:  7,
		charHeight: 13,
		face:       basicfont.Face7x13,
	}
}

// Load replaces the cell buffer with a view. Styling is stripped; rows and
// columns beyond the configured size are clipped.
func (s *Stage) Load(view string) {
	for i := range s.buffer {
		for j := range s.buffer[i] {
			s.buffer[i][j] = ' '
		}
	}

	for row, line := range strings.Split(ansi.Strip(view), "\n") {
		if row >= s.config.Height {
			break
		}
		col := 0
		for _, r := range line {
			if col >= s.config.Width {
				break
			}
			s.buffer[row][col] = r
			col++
		}
	}
}

// Text returns the loaded cells as plain lines with trailing blanks trimmed.
func (s *Stage) Text() string {
	lines := make([]string, len(s.buffer))
	for i, row := range s.buffer {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// Image rasterises the buffer.
func (s *Stage) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.config.Width*s.charWidth, s.config.Height*s.charHeight))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = s.config.Background.R
		img.Pix[i+1] = s.config.Background.G
		img.Pix[i+2] = s.config.Background.B
		img.Pix[i+3] = s.config.Background.A
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(s.config.Foreground),
		Face: s.face,
	}
	ascent := s.face.Metrics().Ascent.Ceil()

	for row, line := range s.buffer {
		for col, r := range line {
			if r == ' ' || r == 0 {
				continue
			}
			drawer.Dot = fixed.P(col*s.charWidth, row*s.charHeight+ascent)
			drawer.DrawString(string(r))
		}
	}
	return img
}

// Capture writes the buffer as a PNG, creating parent directories.
func (s *Stage) Capture(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, s.Image())
}
