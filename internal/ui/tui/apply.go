package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ibraheemcisse/ekstack/internal/provisioning"
)

// sender is the slice of tea.Program the observer needs, narrowed for
// test fakes.
type sender interface {
	Send(tea.Msg)
}

// ProgramObserver forwards provisioning events into a running Bubble Tea
// program.
type ProgramObserver struct {
	program sender
}

var _ provisioning.Observer = (*ProgramObserver)(nil)

// NewProgramObserver creates an observer that sends messages to the given
// program.
func NewProgramObserver(p *tea.Program) *ProgramObserver {
	return &ProgramObserver{program: p}
}

// Printf implements provisioning.Observer.
func (o *ProgramObserver) Printf(format string, v ...any) {
	o.program.Send(LogMsg{Line: fmt.Sprintf(format, v...)})
}

// Event implements provisioning.Observer.
func (o *ProgramObserver) Event(event provisioning.Event) {
	o.program.Send(EventMsg{Event: event})
}

// Progress implements provisioning.Observer.
func (o *ProgramObserver) Progress(phase string, current, total int) {
	o.program.Send(ProgressMsg{Phase: phase, Current: current, Total: total})
}

// RunApply wraps an apply run with the TUI dashboard. applyFn runs the
// actual work in the background against an observer that feeds the
// dashboard; sequence is the expected phase order for this run.
func RunApply(clusterName, region string, sequence []string, applyFn func(provisioning.Observer) error) error {
	m := NewApplyModel(clusterName, region, sequence)

	p := tea.NewProgram(m, tea.WithAltScreen())

	go func() {
		if err := applyFn(NewProgramObserver(p)); err != nil {
			p.Send(ErrMsg{Err: err})
			return
		}
		p.Send(DoneMsg{})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	fm := finalModel.(Model)
	if fm.Err != nil {
		return fm.Err
	}
	return nil
}
