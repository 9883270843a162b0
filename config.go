package carousel

import (
	"fmt"
	"strings"
	"time"
)

// DefaultInterval is the auto-advance cadence used when Config.Interval is zero.
const DefaultInterval = 4000 * time.Millisecond

// Aspect is a display-variant hint. It only affects layout, never behaviour.
type Aspect string

const (
	AspectLandscape Aspect = "landscape" // 16:9
	AspectPortrait  Aspect = "portrait"  // 3:4
	AspectSquare    Aspect = "square"    // 1:1
)

// ParseAspect accepts the aspect names used in deck files. Empty means landscape.
func ParseAspect(s string) (Aspect, error) {
	switch a := Aspect(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return AspectLandscape, nil
	case AspectLandscape, AspectPortrait, AspectSquare:
		return a, nil
	default:
		return "", fmt.Errorf("unknown aspect %q (want landscape, portrait or square)", s)
	}
}

// ratio returns width:height in pixels.
func (a Aspect) ratio() (int, int) {
	switch a {
	case AspectPortrait:
		return 3, 4
	case AspectSquare:
		return 1, 1
	default:
		return 16, 9
	}
}

// FrameSize fits the aspect into maxWidth x maxHeight terminal cells.
//
// A cell is one pixel wide and two pixels tall, since items are drawn with
// half-block characters.
func (a Aspect) FrameSize(maxWidth, maxHeight int) (int, int) {
	if maxWidth < 1 || maxHeight < 1 {
		return 0, 0
	}
	rw, rh := a.ratio()

	w := maxWidth
	h := (w*rh/rw + 1) / 2
	if h > maxHeight {
		h = maxHeight
		w = h * 2 * rw / rh
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Config is everything a carousel instance needs. Items are fixed for the
// lifetime of the instance.
type Config struct {
	Items    []Item
	Interval time.Duration
	Aspect   Aspect
}

// Validate reports configuration mistakes.
func (c Config) Validate() error {
	if len(c.Items) == 0 {
		return ErrNoItems
	}
	for i, item := range c.Items {
		if item == nil {
			return fmt.Errorf("carousel: item %d is nil", i)
		}
	}
	if c.Interval < 0 {
		return fmt.Errorf("carousel: negative interval %v", c.Interval)
	}
	if _, err := ParseAspect(string(c.Aspect)); err != nil {
		return fmt.Errorf("carousel: %w", err)
	}
	return nil
}

// withDefaults fills zero values.
func (c Config) withDefaults() Config {
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.Aspect == "" {
		c.Aspect = AspectLandscape
	}
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}
