// Package showcase is the case-study page: one independent carousel per deck
// section, stacked vertically, with a focus cursor choosing which carousel
// receives key input.
package showcase

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/teranos/carousel"
	"github.com/teranos/carousel/deck"
)

// minPanelHeight keeps tiny terminals from collapsing a carousel to nothing.
const minPanelHeight = 8

// Panel is one section of the page.
type Panel struct {
	Name    string
	Heading string
	Model   carousel.Model
}

// KeyMap holds page-level bindings. Carousel keys live in carousel.KeyMap.
type KeyMap struct {
	NextPanel key.Binding
	PrevPanel key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns tab focus cycling and q to quit.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextPanel: key.NewBinding(key.WithKeys("tab", "down", "j"), key.WithHelp("tab", "next section")),
		PrevPanel: key.NewBinding(key.WithKeys("shift+tab", "up", "k"), key.WithHelp("shift+tab", "previous section")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// Page is the Bubble Tea model for the whole showcase.
type Page struct {
	title  string
	panels []Panel
	focus  int

	width  int
	height int

	keys         KeyMap
	titleStyle   lipgloss.Style
	headingStyle lipgloss.Style
	activeStyle  lipgloss.Style

	stopped bool
	logger  *zap.Logger
}

// New builds a page. The first panel starts focused, the rest blurred.
func New(title string, panels []Panel, logger *zap.Logger) (Page, error) {
	if len(panels) == 0 {
		return Page{}, fmt.Errorf("showcase: %w", carousel.ErrNoItems)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := Page{
		title:        title,
		panels:       make([]Panel, len(panels)),
		keys:         DefaultKeyMap(),
		titleStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1),
		headingStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		activeStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true),
		logger:       logger,
	}
	copy(p.panels, panels)
	for i := range p.panels {
		if i == 0 {
			p.panels[i].Model = p.panels[i].Model.Focus()
		} else {
			p.panels[i].Model = p.panels[i].Model.Blur()
		}
	}
	return p, nil
}

// FromDeck builds one panel per deck section.
func FromDeck(ctx context.Context, d *deck.Deck, logger *zap.Logger, opts ...carousel.ModelOption) (Page, error) {
	panels := make([]Panel, 0, len(d.Sections))
	for _, s := range d.Sections {
		cfg, err := deck.Build(ctx, s)
		if err != nil {
			return Page{}, err
		}
		m, err := carousel.NewModel(cfg, opts...)
		if err != nil {
			return Page{}, fmt.Errorf("section %q: %w", s.Name, err)
		}
		panels = append(panels, Panel{Name: s.Name, Heading: s.Heading(), Model: m})
	}
	return New(d.Title, panels, logger)
}

// Panels returns the page's sections.
func (p Page) Panels() []Panel { return p.panels }

// Focus returns the focused panel index.
func (p Page) Focus() int { return p.focus }

// Stopped reports whether the page was closed.
func (p Page) Stopped() bool { return p.stopped }

// Stop unmounts every carousel.
func (p Page) Stop() Page {
	for i := range p.panels {
		p.panels[i].Model = p.panels[i].Model.Stop()
	}
	p.stopped = true
	p.logger.Debug("showcase closed", zap.Int("panels", len(p.panels)))
	return p
}

func (p Page) Init() tea.Cmd {
	cmds := make([]tea.Cmd, len(p.panels))
	for i, panel := range p.panels {
		cmds[i] = panel.Model.Init()
	}
	return tea.Batch(cmds...)
}

func (p Page) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.stopped {
		return p, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Quit):
			return p.Stop(), tea.Quit
		case key.Matches(msg, p.keys.NextPanel):
			return p.setFocus((p.focus + 1) % len(p.panels)), nil
		case key.Matches(msg, p.keys.PrevPanel):
			return p.setFocus((p.focus - 1 + len(p.panels)) % len(p.panels)), nil
		}
		return p.route(p.focus, msg)

	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height
		h := p.panelHeight()
		for i := range p.panels {
			p.panels[i].Model = p.panels[i].Model.SetSize(msg.Width, h)
		}
		return p, nil

	case carousel.TickMsg:
		return p.route(p.indexOf(msg.ID), msg)

	case carousel.FrameMsg:
		return p.route(p.indexOf(msg.ID), msg)
	}
	return p, nil
}

func (p Page) route(i int, msg tea.Msg) (tea.Model, tea.Cmd) {
	if i < 0 {
		return p, nil
	}
	var cmd tea.Cmd
	p.panels[i].Model, cmd = p.panels[i].Model.Update(msg)
	return p, cmd
}

func (p Page) indexOf(id int) int {
	for i, panel := range p.panels {
		if panel.Model.ID() == id {
			return i
		}
	}
	return -1
}

func (p Page) setFocus(i int) Page {
	p.panels[p.focus].Model = p.panels[p.focus].Model.Blur()
	p.focus = i
	p.panels[i].Model = p.panels[i].Model.Focus()
	return p
}

// panelHeight splits the terminal between panels, minus title and headings.
func (p Page) panelHeight() int {
	h := (p.height - 1) / len(p.panels)
	h-- // heading
	if h < minPanelHeight {
		h = minPanelHeight
	}
	return h
}

func (p Page) View() string {
	if p.stopped {
		return ""
	}

	var b strings.Builder
	b.WriteString(p.titleStyle.Render(p.title))
	for i, panel := range p.panels {
		b.WriteString("\n")
		heading := panel.Heading
		if heading == "" {
			heading = panel.Name
		}
		if i == p.focus {
			b.WriteString(p.activeStyle.Render("▸ " + heading))
		} else {
			b.WriteString(p.headingStyle.Render("  " + heading))
		}
		b.WriteString("\n")
		b.WriteString(panel.Model.View())
	}
	return b.String()
}

// CurrentIndex reports the focused carousel's index.
func (p Page) CurrentIndex() int { return p.panels[p.focus].Model.Index() }

// CurrentDirection reports the focused carousel's direction.
func (p Page) CurrentDirection() string { return p.panels[p.focus].Model.CurrentDirection() }

// CheckCondition answers "stopped", "focus:<name>" or any condition of the
// focused carousel.
func (p Page) CheckCondition(condition string) bool {
	switch {
	case condition == "stopped":
		return p.stopped
	case strings.HasPrefix(condition, "focus:"):
		return p.panels[p.focus].Name == strings.TrimPrefix(condition, "focus:")
	default:
		return p.panels[p.focus].Model.CheckCondition(condition)
	}
}
