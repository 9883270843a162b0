package carousel

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// DefaultTransitionSteps is the number of frames a slide takes.
const DefaultTransitionSteps = 8

// Transition slides the outgoing render out and the incoming render in.
//
// Forward enters from the right and exits to the left; Backward is the
// mirror. The outgoing render is dropped once Done reports true.
type Transition struct {
	From      string
	To        string
	Direction Direction
	Step      int
	Steps     int
}

// NewTransition starts a transition at step 0.
func NewTransition(from, to string, dir Direction, steps int) Transition {
	if steps < 1 {
		steps = 1
	}
	return Transition{From: from, To: to, Direction: dir, Steps: steps}
}

// Done reports whether only the incoming render remains.
func (t Transition) Done() bool { return t.Step >= t.Steps }

// Advance moves one frame ahead.
func (t Transition) Advance() Transition {
	if !t.Done() {
		t.Step++
	}
	return t
}

// Offset returns how many cells the incoming render has entered.
func (t Transition) Offset(width int) int {
	if t.Steps < 1 || t.Done() {
		return width
	}
	return (width*t.Step*2 + t.Steps) / (t.Steps * 2)
}

// Frame composes the current frame, width x height cells.
func (t Transition) Frame(width, height int) string {
	in := fitLines(t.To, width, height)
	if t.Done() {
		return strings.Join(in, "\n")
	}
	out := fitLines(t.From, width, height)
	off := t.Offset(width)

	lines := make([]string, height)
	for i := range lines {
		if t.Direction == Backward {
			lines[i] = ansi.TruncateLeft(in[i], width-off, "") + ansi.Truncate(out[i], width-off, "")
		} else {
			lines[i] = ansi.TruncateLeft(out[i], off, "") + ansi.Truncate(in[i], off, "")
		}
	}
	return strings.Join(lines, "\n")
}

// fitLines returns exactly height lines, each exactly width cells wide.
func fitLines(block string, width, height int) []string {
	src := strings.Split(block, "\n")
	lines := make([]string, height)
	for i := range lines {
		line := ""
		if i < len(src) {
			line = src[i]
		}
		if w := ansi.StringWidth(line); w > width {
			line = ansi.Truncate(line, width, "")
		} else if w < width {
			line += strings.Repeat(" ", width-w)
		}
		lines[i] = line
	}
	return lines
}
