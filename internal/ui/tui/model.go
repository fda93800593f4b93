package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ibraheemcisse/ekstack/internal/provisioning"
	"github.com/ibraheemcisse/ekstack/internal/ui/benchmarks"
)

// PhaseStatus tracks one apply phase for display.
type PhaseStatus struct {
	Name      string
	Key       string
	Active    bool
	Done      bool
	Failed    bool
	Message   string
	StartedAt time.Time
	EndedAt   time.Time
}

// ResourceLine is one recent resource event for display.
type ResourceLine struct {
	Resource string
	Message  string
	Deleted  bool
}

const (
	maxResourceLines = 6
	maxWarningLines  = 3
	maxLogLines      = 2
)

// Model is the Bubble Tea model for the apply dashboard.
type Model struct {
	// Cluster info
	ClusterName string
	Region      string

	// Phase tracking, fed by provisioning events
	Phases       []PhaseStatus
	Sequence     []string
	CurrentPhase string

	// Within-phase progress counts
	ProgressCurrent int
	ProgressTotal   int

	// Recent resource events, warnings and progress lines
	Resources []ResourceLine
	Warnings  []string
	LogLines  []string

	// ETA
	EstimatedRemaining time.Duration
	PerformanceScale   float64
	StartTime          time.Time

	// Animation
	SpinnerFrame int

	// UI state
	Width  int
	Height int
	Err    error
	Done   bool
}

// phaseNames maps phase keys to display names.
var phaseNames = map[string]string{
	"validation":      "Validation",
	"network":         "Network",
	"encryption":      "Encryption",
	"logging":         "Logging",
	"registry":        "Registry",
	"iam":             "IAM",
	"cluster":         "Control Plane",
	"irsa":            "IRSA",
	"nodegroup":       "Node Groups",
	"coreaddons":      "Core Addons",
	"database":        "Database",
	"workloads":       "Nodes",
	"database-secret": "Database Secret",
	"addons":          "Addons",
	"gitops":          "GitOps",
}

func displayName(key string) string {
	if name, ok := phaseNames[key]; ok {
		return name
	}
	return key
}

// NewApplyModel creates a model for the apply command TUI. sequence is the
// phase sequence for this run, usually from benchmarks.ApplySequence.
func NewApplyModel(clusterName, region string, sequence []string) Model {
	if len(sequence) == 0 {
		sequence = benchmarks.PhaseOrder
	}
	phases := make([]PhaseStatus, 0, len(sequence))
	for _, key := range sequence {
		phases = append(phases, PhaseStatus{Name: displayName(key), Key: key})
	}
	return Model{
		ClusterName:      clusterName,
		Region:           region,
		Phases:           phases,
		Sequence:         sequence,
		StartTime:        time.Now(),
		PerformanceScale: 1.0,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case EventMsg:
		m.applyEvent(msg.Event)

	case ProgressMsg:
		if msg.Phase == m.CurrentPhase {
			m.ProgressCurrent = msg.Current
			m.ProgressTotal = msg.Total
		}

	case LogMsg:
		m.LogLines = appendCapped(m.LogLines, msg.Line, maxLogLines)

	case TickMsg:
		m.SpinnerFrame++
		m.updateETA()
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) applyEvent(event provisioning.Event) {
	switch event.Type {
	case provisioning.EventPhaseStarted:
		m.startPhase(event)
	case provisioning.EventPhaseCompleted:
		m.endPhase(event, false)
	case provisioning.EventPhaseFailed:
		m.endPhase(event, true)
	case provisioning.EventResourceReady:
		m.Resources = appendCapped(m.Resources, ResourceLine{Resource: event.Resource, Message: event.Message}, maxResourceLines)
	case provisioning.EventResourceDeleted:
		m.Resources = appendCapped(m.Resources, ResourceLine{Resource: event.Resource, Deleted: true}, maxResourceLines)
	case provisioning.EventWarning:
		m.Warnings = appendCapped(m.Warnings, event.Message, maxWarningLines)
	}
}

func (m *Model) startPhase(event provisioning.Event) {
	idx := m.phaseIndex(event.Phase)
	if idx < 0 {
		m.Phases = append(m.Phases, PhaseStatus{Name: displayName(event.Phase), Key: event.Phase})
		idx = len(m.Phases) - 1
	}

	// Catch up phases whose completion event was missed
	for i := 0; i < idx; i++ {
		m.Phases[i].Active = false
		if !m.Phases[i].Failed {
			m.Phases[i].Done = true
		}
	}

	m.Phases[idx].Active = true
	m.Phases[idx].StartedAt = event.Timestamp
	m.CurrentPhase = event.Phase
	m.ProgressCurrent = 0
	m.ProgressTotal = 0
}

func (m *Model) endPhase(event provisioning.Event, failed bool) {
	idx := m.phaseIndex(event.Phase)
	if idx < 0 {
		return
	}
	m.Phases[idx].Active = false
	m.Phases[idx].Done = !failed
	m.Phases[idx].Failed = failed
	m.Phases[idx].Message = event.Message
	if m.Phases[idx].EndedAt.IsZero() {
		m.Phases[idx].EndedAt = event.Timestamp
	}
	if m.CurrentPhase == event.Phase {
		m.CurrentPhase = ""
	}
}

func (m Model) phaseIndex(key string) int {
	for i, phase := range m.Phases {
		if phase.Key == key {
			return i
		}
	}
	return -1
}

// phaseHistory converts tracked phases into benchmark records.
func (m Model) phaseHistory() []benchmarks.PhaseRecord {
	records := make([]benchmarks.PhaseRecord, 0, len(m.Phases))
	for _, phase := range m.Phases {
		if phase.StartedAt.IsZero() {
			continue
		}
		records = append(records, benchmarks.PhaseRecord{
			Phase:     phase.Key,
			StartedAt: phase.StartedAt,
			EndedAt:   phase.EndedAt,
		})
	}
	return records
}

func (m *Model) updateETA() {
	if m.Done {
		m.EstimatedRemaining = 0
		return
	}
	if m.CurrentPhase == "" {
		return
	}

	var phaseElapsed time.Duration
	if idx := m.phaseIndex(m.CurrentPhase); idx >= 0 && !m.Phases[idx].StartedAt.IsZero() {
		phaseElapsed = time.Since(m.Phases[idx].StartedAt)
	}

	history := m.phaseHistory()
	m.PerformanceScale = benchmarks.PerformanceScale(m.CurrentPhase, phaseElapsed, history)
	m.EstimatedRemaining = benchmarks.EstimateRemainingWithScale(m.Sequence, m.CurrentPhase, phaseElapsed, history, m.PerformanceScale)
}

func appendCapped[T any](items []T, item T, limit int) []T {
	items = append(items, item)
	if len(items) > limit {
		items = items[len(items)-limit:]
	}
	return items
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
