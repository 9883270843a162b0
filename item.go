package carousel

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Item is one displayable carousel entry.
type Item interface {
	// Caption is a short label shown under the frame.
	Caption() string
	// Render draws the item into exactly height lines of width cells.
	Render(width, height int) string
}

// TextItem is a centred text card.
type TextItem struct {
	caption string
	body    string
	style   lipgloss.Style
}

// NewTextItem returns a text card.
func NewTextItem(caption, body string) *TextItem {
	return &TextItem{
		caption: caption,
		body:    body,
		style:   lipgloss.NewStyle().Bold(true),
	}
}

func (t *TextItem) Caption() string { return t.caption }

func (t *TextItem) Render(width, height int) string {
	if width < 1 || height < 1 {
		return ""
	}
	body := lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(t.style.Render(t.body))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

// ImageItem draws a raster image with upper-half-block cells, two pixels per
// cell vertically.
type ImageItem struct {
	caption string
	img     image.Image

	mu     sync.Mutex
	cacheW int
	cacheH int
	cache  string
}

// NewImageItem wraps an already decoded image.
func NewImageItem(caption string, img image.Image) *ImageItem {
	return &ImageItem{caption: caption, img: img}
}

// DecodeImageItem decodes PNG, JPEG, GIF, WebP, BMP or TIFF data.
func DecodeImageItem(caption string, r io.Reader) (*ImageItem, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return NewImageItem(caption, img), nil
}

// LoadImageItem reads and decodes an image file.
func LoadImageItem(caption, path string) (*ImageItem, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	item, err := DecodeImageItem(caption, file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return item, nil
}

func (it *ImageItem) Caption() string { return it.caption }

// Bounds returns the source image size.
func (it *ImageItem) Bounds() image.Rectangle { return it.img.Bounds() }

func (it *ImageItem) Render(width, height int) string {
	if width < 1 || height < 1 {
		return ""
	}

	it.mu.Lock()
	defer it.mu.Unlock()
	if it.cache != "" && it.cacheW == width && it.cacheH == height {
		return it.cache
	}

	it.cache = renderHalfBlocks(scaleImage(it.img, width, height*2))
	it.cacheW, it.cacheH = width, height
	return it.cache
}

// scaleImage resamples src onto a w x h canvas.
func scaleImage(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// renderHalfBlocks maps pixel row pairs onto "▀" cells: top pixel in the
// foreground, bottom pixel in the background.
func renderHalfBlocks(img *image.RGBA) string {
	b := img.Bounds()
	var out strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			out.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			p := img.RGBAAt(x, y)
			top := hexColor(p.R, p.G, p.B)
			bottom := top
			if y+1 < b.Max.Y {
				q := img.RGBAAt(x, y+1)
				bottom = hexColor(q.R, q.G, q.B)
			}
			out.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render("▀"))
		}
	}
	return out.String()
}

func hexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
