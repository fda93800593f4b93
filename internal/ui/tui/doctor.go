package tui

import (
	"fmt"
	"strings"
)

// CheckStatus classifies one doctor finding.
type CheckStatus string

const (
	// CheckOK means the check passed.
	CheckOK CheckStatus = "ok"
	// CheckWarn means the check passed with a caveat.
	CheckWarn CheckStatus = "warn"
	// CheckFail means the check failed.
	CheckFail CheckStatus = "fail"
)

// Check is one doctor finding.
type Check struct {
	Name   string      `json:"name"`
	Status CheckStatus `json:"status"`
	Detail string      `json:"detail,omitempty"`
}

// RenderDoctor renders doctor findings with terminal styling. clusterName
// may be empty when no configuration was found.
func RenderDoctor(clusterName string, checks []Check) string {
	var b strings.Builder

	title := "ekstack doctor"
	if clusterName != "" {
		title += fmt.Sprintf(": %s", clusterName)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	failed := 0
	warned := 0
	for _, check := range checks {
		var icon string
		var style styleFunc
		switch check.Status {
		case CheckFail:
			icon, style = crossMark, sf(failedStyle)
			failed++
		case CheckWarn:
			icon, style = warnMark, sf(warningStyle)
			warned++
		default:
			icon, style = checkMark, sf(readyStyle)
		}

		detail := ""
		if check.Detail != "" {
			detail = dimStyle.Render(check.Detail)
		}
		fmt.Fprintf(&b, "  %s %-26s %s\n", style(icon), style(check.Name), detail)
	}

	b.WriteString("\n")
	switch {
	case failed > 0:
		b.WriteString(failedStyle.Render(fmt.Sprintf("  %d check(s) failed", failed)))
	case warned > 0:
		b.WriteString(warningStyle.Render(fmt.Sprintf("  %d warning(s)", warned)))
	default:
		b.WriteString(readyStyle.Render("  all checks passed"))
	}
	b.WriteString("\n")

	return b.String()
}
