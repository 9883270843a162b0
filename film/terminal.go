package film

import (
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"
)

// basicPalette is the 16-colour table used for SGR 30-37, 90-97 and the
// first sixteen 256-colour indexes.
var basicPalette = [16]string{
	"#000000", "#cd3131", "#0dbc79", "#e5e510", "#2472c8", "#bc3fbc", "#11a8cd", "#e5e5e5",
	"#666666", "#f14c4c", "#23d18b", "#f5f543", "#3b8eea", "#d670d6", "#29b8db", "#ffffff",
}

// sgrState is the text style in effect while converting.
type sgrState struct {
	fg, bg string
	bold   bool
	faint  bool
	italic bool
}

func (s sgrState) css() string {
	var parts []string
	if s.fg != "" {
		parts = append(parts, "color:"+s.fg)
	}
	if s.bg != "" {
		parts = append(parts, "background:"+s.bg)
	}
	if s.bold {
		parts = append(parts, "font-weight:bold")
	}
	if s.italic {
		parts = append(parts, "font-style:italic")
	}
	if s.faint {
		parts = append(parts, "opacity:0.6")
	}
	return strings.Join(parts, ";")
}

// TerminalHTML converts a styled terminal view into escaped HTML with one
// span per run of identical style. Non-SGR escape sequences are dropped.
// The result is meant for a <pre> block.
func TerminalHTML(view string) template.HTML {
	var (
		out   strings.Builder
		state sgrState
		open  bool
		text  strings.Builder
	)

	flush := func() {
		if text.Len() == 0 {
			return
		}
		out.WriteString(html.EscapeString(text.String()))
		text.Reset()
	}
	restyle := func(next sgrState) {
		flush()
		if next == state {
			return
		}
		if open {
			out.WriteString("</span>")
			open = false
		}
		state = next
		if css := state.css(); css != "" {
			fmt.Fprintf(&out, `<span style="%s">`, css)
			open = true
		}
	}

	for i := 0; i < len(view); {
		c := view[i]
		switch {
		case c == '\r':
			i++
		case c == 0x1b && i+1 < len(view) && view[i+1] == '[':
			j := i + 2
			for j < len(view) && (view[j] < 0x40 || view[j] > 0x7e) {
				j++
			}
			if j < len(view) && view[j] == 'm' {
				restyle(applySGR(state, view[i+2:j]))
			}
			i = j + 1
		case c == 0x1b && i+1 < len(view) && view[i+1] == ']':
			// OSC, terminated by BEL or ST.
			j := i + 2
			for j < len(view) && view[j] != 0x07 && view[j] != 0x1b {
				j++
			}
			if j < len(view) && view[j] == 0x1b {
				j++
			}
			i = j + 1
		case c == 0x1b:
			i += 2
		default:
			text.WriteByte(c)
			i++
		}
	}
	flush()
	if open {
		out.WriteString("</span>")
	}
	return template.HTML(out.String())
}

// applySGR returns state updated by the semicolon-separated params.
func applySGR(state sgrState, params string) sgrState {
	if params == "" {
		return sgrState{}
	}
	codes := strings.Split(params, ";")
	for k := 0; k < len(codes); k++ {
		n, err := strconv.Atoi(codes[k])
		if err != nil {
			continue
		}
		switch {
		case n == 0:
			state = sgrState{}
		case n == 1:
			state.bold = true
		case n == 2:
			state.faint = true
		case n == 3:
			state.italic = true
		case n == 22:
			state.bold, state.faint = false, false
		case n == 23:
			state.italic = false
		case n >= 30 && n <= 37:
			state.fg = basicPalette[n-30]
		case n >= 90 && n <= 97:
			state.fg = basicPalette[n-90+8]
		case n == 39:
			state.fg = ""
		case n >= 40 && n <= 47:
			state.bg = basicPalette[n-40]
		case n >= 100 && n <= 107:
			state.bg = basicPalette[n-100+8]
		case n == 49:
			state.bg = ""
		case n == 38 || n == 48:
			color, used := extendedColor(codes[k+1:])
			k += used
			if n == 38 {
				state.fg = color
			} else {
				state.bg = color
			}
		}
	}
	return state
}

// extendedColor parses "5;N" or "2;R;G;B" and reports how many params it used.
func extendedColor(codes []string) (string, int) {
	if len(codes) == 0 {
		return "", 0
	}
	switch codes[0] {
	case "5":
		if len(codes) < 2 {
			return "", 1
		}
		n, err := strconv.Atoi(codes[1])
		if err != nil || n < 0 || n > 255 {
			return "", 2
		}
		return xterm256(n), 2
	case "2":
		if len(codes) < 4 {
			return "", len(codes)
		}
		var rgb [3]int
		for i := range rgb {
			v, err := strconv.Atoi(codes[1+i])
			if err != nil || v < 0 || v > 255 {
				return "", 4
			}
			rgb[i] = v
		}
		return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2]), 4
	default:
		return "", 1
	}
}

func xterm256(n int) string {
	switch {
	case n < 16:
		return basicPalette[n]
	case n < 232:
		levels := [6]int{0, 95, 135, 175, 215, 255}
		n -= 16
		return fmt.Sprintf("#%02x%02x%02x", levels[n/36], levels[n%36/6], levels[n%6])
	default:
		g := 8 + (n-232)*10
		return fmt.Sprintf("#%02x%02x%02x", g, g, g)
	}
}
