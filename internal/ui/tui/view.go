package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ibraheemcisse/ekstack/internal/ui/benchmarks"
)

// styleFunc is a single-string styling function.
type styleFunc func(string) string

// sf wraps a lipgloss.Style into a styleFunc.
func sf(s lipgloss.Style) styleFunc {
	return func(str string) string { return s.Render(str) }
}

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)
	renderProgressBar(&b, m)
	renderPhases(&b, m)
	if len(m.Resources) > 0 {
		renderResources(&b, m)
	}
	if len(m.Warnings) > 0 {
		renderWarnings(&b, m)
	}
	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	title := fmt.Sprintf("ekstack: %s", m.ClusterName)
	if m.Region != "" {
		title += fmt.Sprintf(" (%s)", m.Region)
	}
	b.WriteString(titleStyle.Render(title))

	status := " "
	switch {
	case m.Err != nil:
		status += failedStyle.Render(fmt.Sprintf("Error: %v", m.Err))
	case m.Done:
		status += readyStyle.Render("Ready")
	case m.CurrentPhase != "":
		status += activeStyle.Render(currentSpinner(m.SpinnerFrame)+" ") + warningStyle.Render(displayName(m.CurrentPhase))
	default:
		status += dimStyle.Render("Starting...")
	}
	b.WriteString(status)
	b.WriteString("\n")
}

func renderProgressBar(b *strings.Builder, m Model) {
	progress := calculateProgress(m)
	barWidth := 40
	if m.Width > 0 && m.Width < 80 {
		barWidth = m.Width - 30
		if barWidth < 10 {
			barWidth = 10
		}
	}
	filled := int(float64(barWidth) * progress)
	if filled > barWidth {
		filled = barWidth
	}

	bar := progressBarFull.Render(strings.Repeat("█", filled)) +
		progressBarEmpty.Render(strings.Repeat("░", barWidth-filled))

	pct := int(progress * 100)
	eta := ""
	if m.EstimatedRemaining > 0 {
		eta = fmt.Sprintf(" ETA %s", formatDuration(m.EstimatedRemaining))
	}
	if m.PerformanceScale != 0 && m.PerformanceScale != 1.0 {
		eta += fmt.Sprintf("  speed x%.2f", m.PerformanceScale)
	}

	fmt.Fprintf(b, "  %s %d%%%s\n", bar, pct, eta)
}

func renderPhases(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Phases"))
	b.WriteString("\n")

	for _, phase := range m.Phases {
		var icon string
		var style styleFunc
		switch {
		case phase.Failed:
			icon = crossMark
			style = sf(failedStyle)
		case phase.Done:
			icon = checkMark
			style = sf(readyStyle)
		case phase.Active:
			icon = currentSpinner(m.SpinnerFrame)
			style = sf(activeStyle)
		default:
			icon = pending
			style = sf(dimStyle)
		}

		detail := ""
		switch {
		case phase.Failed:
			detail = failedStyle.Render(phase.Message)
		case phase.Done && !phase.StartedAt.IsZero() && !phase.EndedAt.IsZero():
			detail = dimStyle.Render(formatDuration(phase.EndedAt.Sub(phase.StartedAt)))
		case phase.Active && !phase.StartedAt.IsZero():
			detail = dimStyle.Render(formatDuration(time.Since(phase.StartedAt)))
			if phase.Key == m.CurrentPhase && m.ProgressTotal > 0 {
				detail += activeStyle.Render(fmt.Sprintf("  %d/%d", m.ProgressCurrent, m.ProgressTotal))
			}
		}

		fmt.Fprintf(b, "    %s %-18s %s\n", style(icon), style(phase.Name), detail)
	}
}

func renderResources(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Resources"))
	b.WriteString("\n")

	for _, r := range m.Resources {
		icon := checkMark
		style := sf(readyStyle)
		message := r.Message
		if r.Deleted {
			icon = crossMark
			style = sf(dimStyle)
			message = "deleted"
		}
		fmt.Fprintf(b, "    %s %-28s %s\n", style(icon), r.Resource, dimStyle.Render(message))
	}
}

func renderWarnings(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Warnings"))
	b.WriteString("\n")

	for _, warning := range m.Warnings {
		fmt.Fprintf(b, "    %s %s\n", warningStyle.Render(warnMark), dimStyle.Render(warning))
	}
}

func renderFooter(b *strings.Builder, m Model) {
	for _, line := range m.LogLines {
		b.WriteString(dimStyle.Render("  " + line))
		b.WriteString("\n")
	}

	elapsed := formatDuration(time.Since(m.StartTime))
	pulse := ""
	if !m.Done && m.Err == nil {
		pulse = "  |  " + currentSpinner(m.SpinnerFrame) + " provisioning"
	}
	b.WriteString(footerStyle.Render(fmt.Sprintf("  elapsed: %s%s  |  q: quit", elapsed, pulse)))
	b.WriteString("\n")
}

// Helper functions

func currentSpinner(frame int) string {
	if len(spinnerFrames) == 0 {
		return spinner
	}
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

// calculateProgress weights each phase by its benchmark duration, with
// partial credit for the running phase by elapsed time.
func calculateProgress(m Model) float64 {
	if m.Done {
		return 1.0
	}

	var total, completed float64
	for _, phase := range m.Phases {
		weight := float64(benchmarks.DefaultTimings[phase.Key])
		total += weight
		switch {
		case phase.Done:
			completed += weight
		case phase.Active && !phase.StartedAt.IsZero() && weight > 0:
			frac := time.Since(phase.StartedAt).Seconds() / weight
			if frac > 1 {
				frac = 1
			}
			completed += weight * frac
		}
	}
	if total == 0 {
		return 0
	}

	progress := completed / total
	if progress > 1.0 {
		progress = 1.0
	}
	return progress
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
