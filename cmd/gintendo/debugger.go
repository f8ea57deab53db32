package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/bdwalton/gintendo-core"
)

var registerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))

type debuggerModel struct {
	console *gintendo.Console
	steps   int
	quit    bool
}

func (m debuggerModel) Init() tea.Cmd { return nil }

func (m debuggerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		case " ", "s":
			m.console.Step()
			m.steps++
		case "r":
			for i := 0; i < 559; i++ { // 559 Steps, i.e. 559 CPU cycles
				m.console.Step()
				m.steps++
			}
		}
	}
	return m, nil
}

func (m debuggerModel) View() string {
	c := m.console.CPU
	regs := fmt.Sprintf("PC=$%04X  A=$%02X  X=$%02X  Y=$%02X  SP=$%02X  cycles=%d",
		c.PC, c.A, c.X, c.Y, c.SP, c.Cycles())
	flags := fmt.Sprintf("C=%v Z=%v I=%v D=%v V=%v N=%v", c.C, c.Z, c.I, c.D, c.V, c.N)

	return lipgloss.JoinVertical(lipgloss.Left,
		registerStyle.Render(regs),
		flags,
		fmt.Sprintf("steps taken: %d", m.steps),
		"",
		spew.Sdump(c),
		"",
		"space/s: step one cycle   r: run 559 cycles   q: quit",
	)
}

// runDebugger starts an interactive step debugger over console,
// grounded on the pack's bubbletea+lipgloss+go-spew register-state TUI
// in place of the teacher's blocking fmt.Scanf REPL.
func runDebugger(console *gintendo.Console) {
	if _, err := tea.NewProgram(debuggerModel{console: console}).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
