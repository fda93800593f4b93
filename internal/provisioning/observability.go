package provisioning

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"
)

// Observer receives structured events while provisioning runs. The UI
// renders them as progress; the console observer logs them.
type Observer interface {
	// Printf emits a free-form message.
	Printf(format string, v ...any)

	// Event emits a structured event.
	Event(event Event)

	// Progress reports progress within a phase.
	Progress(phase string, current, total int)
}

// Event is one structured provisioning event.
type Event struct {
	Type      EventType
	Phase     string
	Message   string
	Resource  string
	Timestamp time.Time
}

// EventType classifies provisioning events.
type EventType string

const (
	// EventPhaseStarted indicates a phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a phase failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceReady indicates a resource exists and matches the
	// configuration, whether it was just created or adopted.
	EventResourceReady EventType = "resource.ready"
	// EventResourceDeleted indicates a resource was removed.
	EventResourceDeleted EventType = "resource.deleted"

	// EventWarning indicates a condition worth surfacing that does not
	// stop provisioning.
	EventWarning EventType = "warning"
)

// ConsoleObserver logs events through a structured logger.
type ConsoleObserver struct {
	log logr.Logger
}

// NewConsoleObserver creates an observer that writes to the given logger.
func NewConsoleObserver(log logr.Logger) *ConsoleObserver {
	return &ConsoleObserver{log: log}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...any) {
	o.log.Info(fmt.Sprintf(format, v...))
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	keysAndValues := []any{"type", string(event.Type)}
	if event.Phase != "" {
		keysAndValues = append(keysAndValues, "phase", event.Phase)
	}
	if event.Resource != "" {
		keysAndValues = append(keysAndValues, "resource", event.Resource)
	}
	o.log.Info(event.Message, keysAndValues...)
}

// Progress implements Observer.
func (o *ConsoleObserver) Progress(phase string, current, total int) {
	o.log.Info("progress", "phase", phase, "current", current, "total", total)
}

// NopObserver discards all events.
type NopObserver struct{}

// Printf implements Observer.
func (NopObserver) Printf(string, ...any) {}

// Event implements Observer.
func (NopObserver) Event(Event) {}

// Progress implements Observer.
func (NopObserver) Progress(string, int, int) {}

// logPhaseStart emits a phase start event.
func logPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:      EventPhaseStarted,
		Phase:     phase,
		Message:   "starting",
		Timestamp: time.Now(),
	})
}

// logPhaseComplete emits a phase completion event.
func logPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:      EventPhaseCompleted,
		Phase:     phase,
		Message:   fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
		Timestamp: time.Now(),
	})
}

// logPhaseFailed emits a phase failure event.
func logPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:      EventPhaseFailed,
		Phase:     phase,
		Message:   fmt.Sprintf("failed: %v", err),
		Timestamp: time.Now(),
	})
}

// logResourceReady emits a resource ready event.
func logResourceReady(observer Observer, phase, resource, message string) {
	observer.Event(Event{
		Type:      EventResourceReady,
		Phase:     phase,
		Resource:  resource,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// logResourceDeleted emits a resource deleted event.
func logResourceDeleted(observer Observer, phase, resource string) {
	observer.Event(Event{
		Type:      EventResourceDeleted,
		Phase:     phase,
		Resource:  resource,
		Message:   "deleted",
		Timestamp: time.Now(),
	})
}

// logWarning emits a warning event.
func logWarning(observer Observer, phase, message string) {
	observer.Event(Event{
		Type:      EventWarning,
		Phase:     phase,
		Message:   message,
		Timestamp: time.Now(),
	})
}
