package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/carousel/deck"
	"github.com/teranos/carousel/film"
	"github.com/teranos/carousel/showcase"
)

const testDeck = `
title = "Work"

[[sections]]
name = "intro"
title = "Introduction"
interval_ms = 10

[[sections.slides]]
text = "Hello"
caption = "first"

[[sections.slides]]
text = "World"
caption = "second"

[[sections]]
name = "outro"

[[sections.slides]]
text = "Bye"
caption = "last"
`

func writeDeck(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command with fresh flag state.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verbose, logFile = false, ""
	playSection, playPlain, playWatch = "", false, false
	exportOut, exportSection, exportBaseline, exportHTML = "", "", "", false
	exportWidth, exportHeight, exportSteps = 60, 22, 2
	exportTolerance = film.DefaultTolerance

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-file", filepath.Join(t.TempDir(), "test.log")))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSections(t *testing.T) {
	out, err := execute(t, "sections", writeDeck(t, testDeck))
	require.NoError(t, err)
	assert.Contains(t, out, "intro")
	assert.Contains(t, out, "Introduction")
	assert.Contains(t, out, "10ms")
	assert.Contains(t, out, "4s")
	assert.Contains(t, out, "landscape")
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", writeDeck(t, testDeck))
	require.NoError(t, err)
	assert.Contains(t, out, "2 sections, 3 slides OK")

	broken := writeDeck(t, `
[[sections]]
name = "x"
[[sections.slides]]
image = "missing.png"
`)
	_, err = execute(t, "validate", broken)
	assert.ErrorContains(t, err, `section "x" slide 1`)
}

func TestExport(t *testing.T) {
	path := writeDeck(t, testDeck)
	first := filepath.Join(t.TempDir(), "first")

	out, err := execute(t, "export", path, "--out", first, "--section", "intro", "--steps", "2", "--html")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 4 frames")
	assert.Contains(t, out, "contact sheet")

	for _, name := range []string{
		"frame_000_slide1.png",
		"frame_001_slide1-to-2.png",
		"frame_002_slide2.png",
		"frame_003_slide2-to-1.png",
	} {
		assert.FileExists(t, filepath.Join(first, "intro", name))
	}
	assert.FileExists(t, filepath.Join(first, "index.html"))
	assert.NoDirExists(t, filepath.Join(first, "outro"))

	second := filepath.Join(t.TempDir(), "second")
	_, err = execute(t, "export", path, "--out", second, "--section", "intro", "--steps", "2", "--baseline", first)
	assert.NoError(t, err)
}

func TestExport_Drift(t *testing.T) {
	path := writeDeck(t, testDeck)
	first := filepath.Join(t.TempDir(), "first")
	_, err := execute(t, "export", path, "--out", first, "--section", "outro")
	require.NoError(t, err)

	changed := writeDeck(t, strings.Replace(testDeck, `text = "Bye"`, `text = "Something else entirely, much longer"`, 1))
	second := filepath.Join(t.TempDir(), "second")
	_, err = execute(t, "export", changed, "--out", second, "--section", "outro", "--baseline", first, "--tolerance", "0")
	assert.ErrorContains(t, err, "drifted from baseline")
	assert.FileExists(t, filepath.Join(second, "outro", "diff_frame_000_slide1.png"))
}

func TestLoadDeck_UnknownSection(t *testing.T) {
	_, err := loadDeck(writeDeck(t, testDeck), "intr")
	assert.ErrorContains(t, err, `did you mean "intro"?`)

	d, err := loadDeck(writeDeck(t, testDeck), "outro")
	require.NoError(t, err)
	assert.Len(t, d.Sections, 1)
}

func TestImageDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[sections]]
name = "a"
[[sections.slides]]
image = "img/a.png"
[[sections.slides]]
image = "img/b.png"
[[sections.slides]]
image = "other/c.png"
[[sections.slides]]
text = "t"
`), 0o644))

	d, err := loadDeck(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "img"), filepath.Join(dir, "other")}, imageDirs(d))
}

func TestPlayHeadless(t *testing.T) {
	logger = zap.NewNop()
	playWatch = false

	d, err := loadDeck(writeDeck(t, testDeck), "")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	require.NoError(t, playHeadless(ctx, d.Path(), d, &buf))

	out := buf.String()
	assert.Contains(t, out, "intro\t1/2\tmounted\tfirst")
	assert.Contains(t, out, "outro\t1/1\tmounted\tlast")
	assert.Contains(t, out, "intro\t2/2\tforward\tsecond")
}

// syncBuffer lets a test read what playHeadless writes from its goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func encodePNG(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, encodePNG(path))
}

const picsDeck = `
[[sections]]
name = "pics"
interval_ms = 3600000

[[sections.slides]]
image = "a.png"
caption = "pic"

[[sections.slides]]
text = "words"
`

const moreDeck = picsDeck + `
[[sections]]
name = "more"
interval_ms = 3600000

[[sections.slides]]
image = "more/b.png"
caption = "later"
`

func TestReloadHeadless_BadImageKeepsCurrent(t *testing.T) {
	logger = zap.NewNop()
	playSection = ""

	dir := t.TempDir()
	path := filepath.Join(dir, "deck.toml")
	writeTestPNG(t, filepath.Join(dir, "a.png"))
	require.NoError(t, os.WriteFile(path, []byte(picsDeck), 0o644))

	d, err := loadDeck(path, "")
	require.NoError(t, err)
	sections, err := buildAll(context.Background(), d)
	require.NoError(t, err)

	var buf bytes.Buffer
	out := &lockedWriter{w: &buf}
	mounted, err := mountAll(sections, out)
	require.NoError(t, err)
	defer func() { unmountAll(mounted) }()
	require.NoError(t, mounted[0].Next())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("not an image"), 0o644))
	kept, keptCfg, next, err := reloadHeadless(context.Background(), path, mounted, sections, out)
	assert.Error(t, err)
	assert.Nil(t, next)
	require.Len(t, kept, 1)
	assert.Same(t, mounted[0], kept[0])
	assert.True(t, kept[0].Mounted())
	assert.Equal(t, 1, kept[0].Index())
	assert.Equal(t, sections, keptCfg)

	// A valid deck replaces the set and unmounts the old carousels.
	writeTestPNG(t, filepath.Join(dir, "a.png"))
	writeTestPNG(t, filepath.Join(dir, "more", "b.png"))
	require.NoError(t, os.WriteFile(path, []byte(moreDeck), 0o644))
	old := mounted
	mounted, _, next, err = reloadHeadless(context.Background(), path, mounted, sections, out)
	require.NoError(t, err)
	require.NotNil(t, next)
	require.Len(t, mounted, 2)
	assert.False(t, old[0].Mounted())
	assert.Contains(t, buf.String(), "more\t1/1\tmounted\tlater")
}

func TestPlayHeadless_WatchReload(t *testing.T) {
	logger = zap.NewNop()
	playSection = ""
	playWatch = true
	defer func() { playWatch = false }()

	dir := t.TempDir()
	path := filepath.Join(dir, "deck.toml")
	writeTestPNG(t, filepath.Join(dir, "a.png"))
	require.NoError(t, os.WriteFile(path, []byte(picsDeck), 0o644))
	d, err := loadDeck(path, "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- playHeadless(ctx, path, d, out) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "pics\t1/2\tmounted\tpic")
	}, 5*time.Second, 10*time.Millisecond)

	// The watcher starts after the first mount, so keep saving until a
	// reload shows up. The tick is longer than the debounce.
	writeTestPNG(t, filepath.Join(dir, "more", "b.png"))
	require.Eventually(t, func() bool {
		if strings.Contains(out.String(), "more\t1/1\tmounted") {
			return true
		}
		_ = os.WriteFile(path, []byte(moreDeck), 0o644)
		return false
	}, 10*time.Second, 500*time.Millisecond)

	// more/ only joined the deck on reload; edits there still reload.
	require.Eventually(t, func() bool {
		if strings.Count(out.String(), "more\t1/1\tmounted") >= 2 {
			return true
		}
		_ = encodePNG(filepath.Join(dir, "more", "b.png"))
		return false
	}, 10*time.Second, 500*time.Millisecond)

	// A corrupt image fails the reload; the player keeps running.
	mounts := strings.Count(out.String(), "pics\t1/2\tmounted")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("not an image"), 0o644))
	select {
	case err := <-done:
		t.Fatalf("player exited after a failed reload: %v", err)
	case <-time.After(time.Second):
	}
	assert.Equal(t, mounts, strings.Count(out.String(), "pics\t1/2\tmounted"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("player did not stop")
	}
}

func TestPlayer_ReloadsDeck(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger = zap.New(core)
	defer func() { logger = zap.NewNop() }()
	path := writeDeck(t, testDeck)

	d, err := loadDeck(path, "")
	require.NoError(t, err)
	page, err := showcase.FromDeck(context.Background(), d, logger)
	require.NoError(t, err)

	var reloaded []*deck.Deck
	p := player{page: page, path: path, ctx: context.Background(),
		onReload: func(d *deck.Deck) { reloaded = append(reloaded, d) }}
	assert.Len(t, p.page.Panels(), 2)

	require.NoError(t, os.WriteFile(path, []byte(`
[[sections]]
name = "only"
[[sections.slides]]
text = "x"
`), 0o644))

	next, cmd := p.Update(deckChangedMsg{})
	p = next.(player)
	assert.NotNil(t, cmd)
	require.Len(t, p.page.Panels(), 1)
	assert.Equal(t, "only", p.page.Panels()[0].Name)
	assert.False(t, p.page.Stopped())

	// The replaced page was stopped and the new deck handed on.
	closed := logs.FilterMessage("showcase closed").All()
	require.Len(t, closed, 1)
	assert.Equal(t, int64(2), closed[0].ContextMap()["panels"])
	require.Len(t, reloaded, 1)
	assert.Equal(t, "only", reloaded[0].Sections[0].Name)

	// A broken deck keeps the current page.
	require.NoError(t, os.WriteFile(path, []byte("title = ["), 0o644))
	next, cmd = p.Update(deckChangedMsg{})
	p = next.(player)
	assert.Nil(t, cmd)
	assert.Len(t, p.page.Panels(), 1)
	assert.Len(t, reloaded, 1)
	assert.Len(t, logs.FilterMessage("showcase closed").All(), 1)
}
