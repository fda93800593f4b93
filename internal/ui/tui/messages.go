// Package tui provides a Bubble Tea-based terminal UI for cluster provisioning.
package tui

import "github.com/ibraheemcisse/ekstack/internal/provisioning"

// EventMsg wraps one provisioning event for the dashboard.
type EventMsg struct {
	Event provisioning.Event
}

// ProgressMsg reports within-phase progress counts.
type ProgressMsg struct {
	Phase   string
	Current int
	Total   int
}

// LogMsg carries a free-form progress line.
type LogMsg struct {
	Line string
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that the operation is complete.
type DoneMsg struct{}
