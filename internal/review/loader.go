package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/leadradar/internal/pipeline"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ErrCancelled is returned when the user aborts the loader.
var ErrCancelled = errors.New("cancelled")

type collectDoneMsg struct {
	batch *pipeline.Batch
	err   error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	ctx       context.Context
	label     string
	collectFn func(ctx context.Context) (*pipeline.Batch, error)
	frame     int
	result    *pipeline.Batch
	err       error
	done      bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doCollect(), m.tick())
}

func (m loaderModel) doCollect() tea.Cmd {
	ctx, fn := m.ctx, m.collectFn
	return func() tea.Msg {
		batch, err := fn(ctx)
		return collectDoneMsg{batch: batch, err: err}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case collectDoneMsg:
		m.result = msg.batch
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render(spinnerFrames[m.frame])
	return fmt.Sprintf("%s %s...\n", spinner, m.label)
}

// RunLoader shows a spinner while collectFn runs. It renders inline (no alt
// screen).
func RunLoader(ctx context.Context, label string, collectFn func(ctx context.Context) (*pipeline.Batch, error)) (*pipeline.Batch, error) {
	m := loaderModel{
		ctx:       ctx,
		label:     label,
		collectFn: collectFn,
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
