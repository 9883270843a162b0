package director

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/teranos/carousel/trip"
)

// PressNext sends the right arrow.
func (d *Director) PressNext() *Director {
	d.send(tea.KeyMsg{Type: tea.KeyRight})
	d.step("keypress", "right")
	d.capture("next")
	return d
}

// PressPrevious sends the left arrow.
func (d *Director) PressPrevious() *Director {
	d.send(tea.KeyMsg{Type: tea.KeyLeft})
	d.step("keypress", "left")
	d.capture("previous")
	return d
}

// PressKey sends a rune key such as "3" or "?".
func (d *Director) PressKey(k string) *Director {
	d.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	d.step("keypress", k)
	d.capture("key")
	return d
}

// Send delivers an arbitrary message, for example a tea.WindowSizeMsg.
func (d *Director) Send(msg tea.Msg) *Director {
	d.send(msg)
	d.step("send", fmt.Sprintf("%T", msg))
	return d
}

// Wait sleeps. Prefer WaitForIndex or WaitForCondition when possible.
func (d *Director) Wait(duration time.Duration) *Director {
	time.Sleep(duration)
	d.step("wait", duration)
	d.capture("wait")
	return d
}

// WaitForIndex waits until the model shows index.
func (d *Director) WaitForIndex(index int) *Director {
	if d.poll(func() bool { return d.Latest().CurrentIndex() == index }, d.config.Timeout) {
		d.step("wait", fmt.Sprintf("index=%d", index))
		d.capture("index_reached")
		return d
	}
	d.record(trip.New("timing", fmt.Sprintf("timeout waiting for index %d", index), trip.Context{
		"expected": index,
		"actual":   d.Latest().CurrentIndex(),
	}))
	return d
}

// WaitForCondition waits until the model reports condition.
func (d *Director) WaitForCondition(condition string) *Director {
	if d.poll(func() bool { return d.Latest().CheckCondition(condition) }, d.config.Timeout) {
		d.step("wait", "condition="+condition)
		return d
	}
	d.record(trip.New("timing", "timeout waiting for condition "+condition, trip.Context{"condition": condition}))
	return d
}

// AssertIndex checks the index on display.
func (d *Director) AssertIndex(expected int) *Director {
	if actual := d.Latest().CurrentIndex(); actual != expected {
		d.record(trip.New("assertion", fmt.Sprintf("expected index %d, got %d", expected, actual), trip.Context{
			"expected": expected,
			"actual":   actual,
		}))
		return d
	}
	d.step("assertion", fmt.Sprintf("index=%d", expected))
	return d
}

// AssertDirection checks the direction of the last navigation.
func (d *Director) AssertDirection(expected string) *Director {
	if actual := d.Latest().CurrentDirection(); actual != expected {
		d.record(trip.New("assertion", fmt.Sprintf("expected direction %s, got %s", expected, actual), trip.Context{
			"expected": expected,
			"actual":   actual,
		}))
		return d
	}
	d.step("assertion", "direction="+expected)
	return d
}

// AssertCondition checks a named condition right now.
func (d *Director) AssertCondition(condition string) *Director {
	if !d.Latest().CheckCondition(condition) {
		d.record(trip.New("assertion", "condition not met: "+condition, trip.Context{"condition": condition}))
		return d
	}
	d.step("assertion", "condition="+condition)
	return d
}

// AssertViewContains checks the rendered view for text.
func (d *Director) AssertViewContains(text string) *Director {
	view := d.View()
	if !strings.Contains(view, text) {
		d.record(trip.New("assertion", fmt.Sprintf("view does not contain %q", text), trip.Context{
			"expected": text,
			"view":     truncate(view, 200),
		}))
		return d
	}
	d.step("assertion", "contains="+text)
	return d
}

// AssertIndexStays checks that the index does not change for duration.
func (d *Director) AssertIndexStays(duration time.Duration) *Director {
	start := d.Latest().CurrentIndex()
	moved := d.poll(func() bool { return d.Latest().CurrentIndex() != start }, duration)
	if moved {
		d.record(trip.New("assertion", fmt.Sprintf("index moved from %d within %v", start, duration), trip.Context{
			"start":  start,
			"actual": d.Latest().CurrentIndex(),
		}))
		return d
	}
	d.step("assertion", fmt.Sprintf("index=%d held for %v", start, duration))
	return d
}
