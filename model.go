package carousel

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const (
	defaultWidth     = 60
	defaultHeight    = 22
	defaultFrameRate = 30 * time.Millisecond
)

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// TickMsg drives auto-advance. Ticks carry the carousel id and the tag that
// was current when they were scheduled; anything else is ignored.
type TickMsg struct {
	ID   int
	Time time.Time
	tag  int
}

// FrameMsg steps the slide transition.
type FrameMsg struct {
	ID  int
	seq int
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithKeyMap replaces the default bindings.
func WithKeyMap(keys KeyMap) ModelOption {
	return func(m *Model) { m.keys = keys }
}

// WithStyles replaces the default palette.
func WithStyles(styles Styles) ModelOption {
	return func(m *Model) { m.styles = styles }
}

// WithTransition sets the number of slide frames and the delay between them.
// Zero steps disables the animation.
func WithTransition(steps int, frameRate time.Duration) ModelOption {
	return func(m *Model) {
		m.steps = steps
		m.frameRate = frameRate
	}
}

// WithSize sets the outer size in cells.
func WithSize(width, height int) ModelOption {
	return func(m *Model) { m.width, m.height = width, height }
}

// WithModelLogger attaches a logger.
func WithModelLogger(logger *zap.Logger) ModelOption {
	return func(m *Model) { m.logger = logger }
}

// Model is the Bubble Tea carousel component.
//
// Hosts forward messages to Update and render View. Stop ends the instance:
// a stopped model ignores every pending tick and frame.
type Model struct {
	id  int
	tag int
	seq int

	items    []Item
	state    State
	interval time.Duration
	aspect   Aspect

	// transition state; From/To are rendered lazily in View
	transition Transition
	fromIndex  int
	animating  bool
	steps      int
	frameRate  time.Duration

	width    int
	height   int
	focused  bool
	showHelp bool
	stopped  bool

	keys   KeyMap
	help   help.Model
	styles Styles
	logger *zap.Logger
}

// NewModel validates cfg and returns a focused model showing item 0.
func NewModel(cfg Config, opts ...ModelOption) (Model, error) {
	if err := cfg.Validate(); err != nil {
		return Model{}, err
	}
	cfg = cfg.withDefaults()

	state, err := NewState(len(cfg.Items))
	if err != nil {
		return Model{}, err
	}

	m := Model{
		id:        nextID(),
		items:     cfg.Items,
		state:     state,
		interval:  cfg.Interval,
		aspect:    cfg.Aspect,
		steps:     DefaultTransitionSteps,
		frameRate: defaultFrameRate,
		width:     defaultWidth,
		height:    defaultHeight,
		focused:   true,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		styles:    DefaultStyles(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m, nil
}

// ID returns the instance id carried by this model's messages.
func (m Model) ID() int { return m.id }

// Len returns the number of items.
func (m Model) Len() int { return m.state.Len() }

// Index returns the current item index.
func (m Model) Index() int { return m.state.Index() }

// Direction returns the direction of the last navigation.
func (m Model) Direction() Direction { return m.state.Direction() }

// Current returns the item on display.
func (m Model) Current() Item { return m.items[m.state.Index()] }

// Interval returns the auto-advance cadence.
func (m Model) Interval() time.Duration { return m.interval }

// Animating reports whether a transition is in progress.
func (m Model) Animating() bool { return m.animating }

// Stopped reports whether Stop was called.
func (m Model) Stopped() bool { return m.stopped }

// Focused reports whether key input is handled.
func (m Model) Focused() bool { return m.focused }

// Focus enables key handling.
func (m Model) Focus() Model {
	m.focused = true
	return m
}

// Blur disables key handling. Auto-advance keeps running.
func (m Model) Blur() Model {
	m.focused = false
	return m
}

// SetSize sets the outer size in cells.
func (m Model) SetSize(width, height int) Model {
	m.width, m.height = width, height
	m.help.Width = width
	return m
}

// Stop unmounts the model. Pending ticks and frames become no-ops.
func (m Model) Stop() Model {
	m.stopped = true
	m.animating = false
	m.tag++
	m.seq++
	m.logger.Debug("carousel model stopped", zap.Int("carousel", m.id))
	return m
}

// Init arms the first auto-advance tick.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles ticks, transition frames and key input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.stopped {
		return m, nil
	}

	switch msg := msg.(type) {
	case TickMsg:
		if msg.ID != m.id || msg.tag != m.tag {
			return m, nil
		}
		return m.Next()

	case FrameMsg:
		if msg.ID != m.id || msg.seq != m.seq || !m.animating {
			return m, nil
		}
		m = m.StepTransition()
		if !m.animating {
			return m, nil
		}
		return m, m.frame()

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Next):
			return m.Next()
		case key.Matches(msg, m.keys.Previous):
			return m.Previous()
		case key.Matches(msg, m.keys.Select):
			s := msg.String()
			index := int(s[len(s)-1] - '1')
			next, cmd, err := m.SelectDirect(index)
			if err != nil {
				m.logger.Debug("indicator ignored", zap.Int("carousel", m.id), zap.Error(err))
				return m, nil
			}
			return next, cmd
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		}
	}
	return m, nil
}

// Next moves one item forward and re-arms the timer.
func (m Model) Next() (Model, tea.Cmd) {
	next, cmd, _ := m.navigate(func(s *State) error {
		s.Next()
		return nil
	})
	return next, cmd
}

// Previous moves one item backward and re-arms the timer.
func (m Model) Previous() (Model, tea.Cmd) {
	next, cmd, _ := m.navigate(func(s *State) error {
		s.Previous()
		return nil
	})
	return next, cmd
}

// Advance jumps to index. Out-of-range targets return ErrIndexOutOfRange
// and leave the model and its timer untouched.
func (m Model) Advance(index int) (Model, tea.Cmd, error) {
	return m.navigate(func(s *State) error {
		return s.Advance(index)
	})
}

// SelectDirect is the indicator entry point; it behaves like Advance.
func (m Model) SelectDirect(index int) (Model, tea.Cmd, error) {
	return m.navigate(func(s *State) error {
		return s.SelectDirect(index)
	})
}

// StepTransition applies one transition frame synchronously.
func (m Model) StepTransition() Model {
	if !m.animating {
		return m
	}
	m.transition = m.transition.Advance()
	if m.transition.Done() {
		m.animating = false
	}
	return m
}

func (m Model) navigate(apply func(*State) error) (Model, tea.Cmd, error) {
	if m.stopped {
		return m, nil, ErrUnmounted
	}

	prev := m.state.Index()
	if err := apply(&m.state); err != nil {
		return m, nil, err
	}

	// Bumping the tag invalidates the tick that is still in flight.
	m.tag++
	cmds := []tea.Cmd{m.tick()}

	if m.steps > 0 && prev != m.state.Index() {
		m.seq++
		m.fromIndex = prev
		m.transition = NewTransition("", "", m.state.Direction(), m.steps)
		m.animating = true
		cmds = append(cmds, m.frame())
	} else {
		m.animating = false
	}

	m.logger.Debug("carousel advanced",
		zap.Int("carousel", m.id),
		zap.Int("from", prev),
		zap.Int("to", m.state.Index()),
		zap.String("direction", string(m.state.Direction())))
	return m, tea.Batch(cmds...), nil
}

func (m Model) tick() tea.Cmd {
	id, tag := m.id, m.tag
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return TickMsg{ID: id, Time: t, tag: tag}
	})
}

func (m Model) frame() tea.Cmd {
	id, seq := m.id, m.seq
	return tea.Tick(m.frameRate, func(time.Time) tea.Msg {
		return FrameMsg{ID: id, seq: seq}
	})
}

// frameSize is the item area inside the border, caption and dots.
func (m Model) frameSize() (int, int) {
	chrome := 4 // border top/bottom, caption, dots
	if m.showHelp {
		chrome++
	}
	return m.aspect.FrameSize(m.width-2, m.height-chrome)
}

// View renders the current frame with its caption and indicator dots.
func (m Model) View() string {
	w, h := m.frameSize()
	if w < 1 || h < 1 {
		return ""
	}

	var body string
	if m.animating {
		t := m.transition
		t.From = m.items[m.fromIndex].Render(w, h)
		t.To = m.Current().Render(w, h)
		body = t.Frame(w, h)
	} else {
		body = strings.Join(fitLines(m.Current().Render(w, h), w, h), "\n")
	}

	border := m.styles.BlurBorder
	if m.focused {
		border = m.styles.FocusBorder
	}
	frame := m.styles.Frame.BorderForeground(border).Render(body)

	caption := m.styles.Caption.Render(m.Current().Caption()) + " " +
		m.styles.Counter.Render(fmt.Sprintf("%d/%d", m.Index()+1, m.Len()))

	parts := []string{frame, caption, m.dots()}
	if m.showHelp {
		parts = append(parts, m.styles.Help.Render(m.help.View(m.keys)))
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (m Model) dots() string {
	dots := make([]string, m.Len())
	for i := range dots {
		if i == m.Index() {
			dots[i] = m.styles.ActiveDot.Render("●")
		} else {
			dots[i] = m.styles.Dot.Render("○")
		}
	}
	return strings.Join(dots, " ")
}

// CurrentIndex reports the index for test directors.
func (m Model) CurrentIndex() int { return m.Index() }

// CurrentDirection reports the direction for test directors.
func (m Model) CurrentDirection() string { return string(m.Direction()) }

// CheckCondition answers named conditions for test directors.
func (m Model) CheckCondition(condition string) bool {
	switch condition {
	case "animating":
		return m.animating
	case "steady":
		return !m.animating
	case "stopped":
		return m.stopped
	case "focused":
		return m.focused
	case "help":
		return m.showHelp
	default:
		return false
	}
}
