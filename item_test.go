package carousel

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestTextItem_Render(t *testing.T) {
	item := NewTextItem("intro", "hello")
	assert.Equal(t, "intro", item.Caption())

	out := item.Render(20, 5)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, ansi.Strip(out), "hello")
	for _, l := range lines {
		assert.LessOrEqual(t, ansi.StringWidth(l), 20)
	}

	assert.Empty(t, item.Render(0, 5))
}

func TestImageItem_Render(t *testing.T) {
	item := NewImageItem("red", solidImage(8, 8, color.RGBA{R: 255, A: 255}))
	assert.Equal(t, image.Rect(0, 0, 8, 8), item.Bounds())

	out := item.Render(4, 2)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, strings.Repeat("▀", 4), ansi.Strip(l))
	}

	// Cached per size.
	assert.Equal(t, out, item.Render(4, 2))
	assert.Len(t, strings.Split(item.Render(6, 3), "\n"), 3)
}

func TestRenderHalfBlocks_OddHeight(t *testing.T) {
	img := solidImage(2, 3, color.White)
	out := renderHalfBlocks(img)
	assert.Len(t, strings.Split(out, "\n"), 2)
}

func TestDecodeImageItem(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(3, 2, color.Black)))

	item, err := DecodeImageItem("png", &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Bounds().Dx())

	_, err = DecodeImageItem("junk", strings.NewReader("not an image"))
	assert.Error(t, err)
}

func TestLoadImageItem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slide.png")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, solidImage(4, 4, color.White)))
	require.NoError(t, f.Close())

	item, err := LoadImageItem("slide", path)
	require.NoError(t, err)
	assert.Equal(t, "slide", item.Caption())

	_, err = LoadImageItem("missing", filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, "#ff0080", hexColor(255, 0, 128))
}
