package carousel

import tea "github.com/charmbracelet/bubbletea"

// Standalone runs a single carousel as a full Bubble Tea program. It adds
// quit keys and window sizing on top of Model.
type Standalone struct {
	Model
}

// NewStandalone wraps m.
func NewStandalone(m Model) Standalone {
	return Standalone{Model: m}
}

func (s Standalone) Init() tea.Cmd {
	return s.Model.Init()
}

func (s Standalone) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			s.Model = s.Model.Stop()
			return s, tea.Quit
		}
	case tea.WindowSizeMsg:
		s.Model = s.Model.SetSize(msg.Width, msg.Height)
		return s, nil
	}

	var cmd tea.Cmd
	s.Model, cmd = s.Model.Update(msg)
	return s, cmd
}

func (s Standalone) View() string {
	return s.Model.View()
}
