package director

import (
	"path/filepath"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type autoMsg struct{}

// mockCarousel counts through n slots; it advances on its own when auto > 0.
type mockCarousel struct {
	n         int
	index     int
	direction string
	auto      time.Duration
}

func (m mockCarousel) Init() tea.Cmd { return m.schedule() }

func (m mockCarousel) schedule() tea.Cmd {
	if m.auto <= 0 {
		return nil
	}
	return tea.Tick(m.auto, func(time.Time) tea.Msg { return autoMsg{} })
}

func (m mockCarousel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case autoMsg:
		m.index = (m.index + 1) % m.n
		m.direction = "forward"
		return m, m.schedule()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyRight:
			m.index = (m.index + 1) % m.n
			m.direction = "forward"
		case tea.KeyLeft:
			m.index = (m.index - 1 + m.n) % m.n
			m.direction = "backward"
		}
	}
	return m, nil
}

func (m mockCarousel) View() string {
	return "slot " + string(rune('A'+m.index))
}

func (m mockCarousel) CurrentIndex() int        { return m.index }
func (m mockCarousel) CurrentDirection() string { return m.direction }
func (m mockCarousel) CheckCondition(condition string) bool {
	return condition == "ready"
}

func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Timeout = 2 * time.Second
	return cfg
}

func TestDirector_BasicFlow(t *testing.T) {
	result := NewWithConfig(t, mockCarousel{n: 3}, quietConfig()).
		Start().
		AssertIndex(0).
		AssertViewContains("slot A").
		PressNext().
		AssertIndex(1).
		AssertDirection("forward").
		PressPrevious().
		PressPrevious().
		AssertIndex(2).
		AssertDirection("backward").
		AssertViewContains("slot C").
		AssertCondition("ready").
		Stop()

	assert.True(t, result.Success)
	assert.Empty(t, result.Trips)
	assert.Greater(t, len(result.Steps), 5)
	assert.NotEmpty(t, result.Snapshots)
	assert.Equal(t, "initial", result.Snapshots[0].Reason)
}

func TestDirector_WaitForIndexFollowsOwnTicks(t *testing.T) {
	result := NewWithConfig(t, mockCarousel{n: 4, auto: 20 * time.Millisecond}, quietConfig()).
		Start().
		WaitForIndex(3).
		WaitForCondition("ready").
		Stop()

	assert.True(t, result.Success)
}

func TestDirector_FailuresAreCollected(t *testing.T) {
	cfg := quietConfig()
	cfg.Timeout = 200 * time.Millisecond
	cfg.AutoReportErrors = false

	d := NewWithConfig(t, mockCarousel{n: 2}, cfg).Start()
	d.AssertIndex(1).
		AssertDirection("backward").
		AssertViewContains("nope").
		AssertCondition("missing").
		WaitForIndex(1)
	assert.True(t, d.Failed())

	result := d.Stop()
	require.False(t, result.Success)
	assert.Len(t, result.Trips, 5)
	assert.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "timeout waiting for index 1")
}

func TestDirector_AssertIndexStays(t *testing.T) {
	result := NewWithConfig(t, mockCarousel{n: 2}, quietConfig()).
		Start().
		AssertIndexStays(50 * time.Millisecond).
		Stop()
	assert.True(t, result.Success)
}

func TestDirector_StopWithoutStart(t *testing.T) {
	result := New(t, mockCarousel{n: 1}).Stop()
	assert.False(t, result.Success)
	assert.Error(t, result.Error)
}

func TestDirector_ViewCaptureDisabled(t *testing.T) {
	result := NewWithConfig(t, mockCarousel{n: 2}, quietConfig()).
		WithViewCapture(false).
		Start().
		PressNext().
		Stop()

	assert.True(t, result.Success)
	assert.Empty(t, result.Snapshots)
}

func TestOperator_CapturesFrames(t *testing.T) {
	dir := t.TempDir()
	op := NewOperator(t, mockCarousel{n: 2}, dir).
		Start().
		Capture("first").
		PressNext().
		Capture("second")
	result := op.Stop()

	assert.True(t, result.Success)
	require.Len(t, op.Frames(), 2)
	assert.Equal(t, filepath.Join(dir, "frame_000_first.png"), op.Frames()[0])
	assert.FileExists(t, op.Frames()[1])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "a⏎b", truncate("a\nb", 10))
	assert.Equal(t, "●●...", truncate("●●●●", 2))
	assert.Equal(t, "●●●●", truncate("●●●●", 4))

	styled := truncate("\x1b[31m●●●●●●\x1b[0m", 3)
	assert.True(t, utf8.ValidString(styled))
	assert.Equal(t, "●●●...", ansi.Strip(styled))
}
