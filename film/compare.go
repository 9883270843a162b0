package film

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// DefaultTolerance is the share of differing pixels accepted as equal.
const DefaultTolerance = 0.05

// Compare returns the share of pixels that differ, in [0,1]. Frames of
// different sizes are fully different.
func Compare(a, b image.Image) float64 {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Size() != bb.Size() {
		return 1
	}
	total := ab.Dx() * ab.Dy()
	if total == 0 {
		return 0
	}

	diff := 0
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			if !sameColor(a.At(ab.Min.X+x, ab.Min.Y+y), b.At(bb.Min.X+x, bb.Min.Y+y)) {
				diff++
			}
		}
	}
	return float64(diff) / float64(total)
}

// DiffImage marks differing pixels red and dims the rest.
func DiffImage(baseline, current image.Image) *image.RGBA {
	bounds := baseline.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	cb := current.Bounds()

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			base := baseline.At(bounds.Min.X+x, bounds.Min.Y+y)
			if x >= cb.Dx() || y >= cb.Dy() || !sameColor(base, current.At(cb.Min.X+x, cb.Min.Y+y)) {
				out.Set(x, y, color.RGBA{255, 0, 0, 255})
				continue
			}
			r, g, b, a := base.RGBA()
			out.Set(x, y, color.RGBA{uint8(r >> 9), uint8(g >> 9), uint8(b >> 9), uint8(a >> 8)})
		}
	}
	return out
}

// CompareFiles checks current against baseline and writes diffPath when the
// difference exceeds tolerance. The returned error describes the drift.
func CompareFiles(baselinePath, currentPath, diffPath string, tolerance float64) (float64, error) {
	baseline, err := LoadPNG(baselinePath)
	if err != nil {
		return 1, fmt.Errorf("failed to load baseline: %w", err)
	}
	current, err := LoadPNG(currentPath)
	if err != nil {
		return 1, fmt.Errorf("failed to load current: %w", err)
	}

	ratio := Compare(baseline, current)
	if ratio <= tolerance {
		return ratio, nil
	}
	if diffPath != "" {
		if err := writePNG(diffPath, DiffImage(baseline, current)); err != nil {
			return ratio, fmt.Errorf("failed to write diff image: %w", err)
		}
	}
	return ratio, fmt.Errorf("visual drift %.2f%% exceeds tolerance %.2f%%", ratio*100, tolerance*100)
}

// LoadPNG decodes a PNG file.
func LoadPNG(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return png.Decode(file)
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}
