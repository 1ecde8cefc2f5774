package remote

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mdouchement/eyectl"
	"github.com/mdouchement/eyectl/eyes"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00af5f"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaf00"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff005f"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

type sentMsg struct {
	animation eyes.Animation
	ack       string
	err       error
}

type model struct {
	ctx     context.Context
	display eyectl.Display
	reset   eyes.Animation
	table   table.Model
	busy    bool
	status  string
}

func newTUI(ctx context.Context, display eyectl.Display, reset eyes.Animation) *model {
	columns := []table.Column{
		{Title: "ID", Width: 4},
		{Title: "Frame", Width: 6},
		{Title: "Animation", Width: 20},
	}

	animations := eyes.Animations()
	rows := make([]table.Row, 0, len(animations))
	for _, a := range animations {
		rows = append(rows, table.Row{strconv.Itoa(int(a)), string(a.Frame()), a.String()})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		Foreground(lipgloss.Color("#00afff")).
		BorderForeground(lipgloss.Color("#00afff")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffff")).
		Background(lipgloss.Color("#005f87")).
		Bold(false)
	t.SetStyles(s)

	return &model{
		ctx:     ctx,
		display: display,
		reset:   reset,
		table:   t,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case sentMsg:
		m.busy = false
		m.status = status(msg)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter", " ":
			row := m.table.SelectedRow()
			if row == nil {
				return m, nil
			}
			id, _ := strconv.Atoi(row[0])
			return m, m.send(eyes.Animation(id))
		case "r":
			return m, m.send(m.reset)
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(m.table.View())
	b.WriteString("\n\n")
	if m.busy {
		b.WriteString("Sending...")
	} else {
		b.WriteString(m.status)
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter send • r reset • q quit"))
	return b.String()
}

// send is a no-op while a previous frame is still waiting for its acknowledgment.
func (m *model) send(a eyes.Animation) tea.Cmd {
	if m.busy {
		return nil
	}
	m.busy = true

	return func() tea.Msg {
		ack, err := m.display.Send(m.ctx, a)
		return sentMsg{animation: a, ack: ack, err: err}
	}
}

func status(msg sentMsg) string {
	sent := fmt.Sprintf("%s %s", msg.animation.Frame(), msg.animation)

	switch {
	case errors.Is(msg.err, eyes.ErrInvalidAck):
		return warnStyle.Render(sent + ": received non-UTF-8 acknowledgment")
	case msg.err != nil:
		return errStyle.Render(sent + ": " + msg.err.Error())
	case msg.ack == "":
		return okStyle.Render(sent + ": sent")
	default:
		return okStyle.Render(sent + ": " + strconv.Quote(msg.ack))
	}
}
