package pricing

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Formatter formats cost estimates for display.
type Formatter struct{}

// NewFormatter creates a new formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format returns a detailed, formatted cost estimate for terminal display.
func (f *Formatter) Format(e *Estimate) string {
	var sb strings.Builder

	width := 64

	sb.WriteString(boxTop(width))
	sb.WriteString(boxLine("ekstack Cost Estimate", width))
	sb.WriteString(boxLine(fmt.Sprintf("Cluster: %s", e.ClusterName), width))
	sb.WriteString(boxLine(fmt.Sprintf("Region:  %s", e.Region.String()), width))
	sb.WriteString(boxSep(width))

	sb.WriteString(boxEmpty(width))
	for _, item := range e.Items {
		line := fmt.Sprintf("%-26s %3d x %-13s %9.2f/mo",
			item.Description, item.Quantity, item.UnitType, item.Total)
		sb.WriteString(boxLine(line, width))
	}

	sb.WriteString(boxDash(width))
	sb.WriteString(boxLine(fmt.Sprintf("%-28s %8.2f/mo", "Monthly total", e.Monthly), width))
	sb.WriteString(boxLine(fmt.Sprintf("%-28s %8.2f/yr", "Annual estimate", e.AnnualCost()), width))
	sb.WriteString(boxEmpty(width))

	for _, unknown := range e.UnknownTypes {
		sb.WriteString(boxLine(fmt.Sprintf("Note: no rate for %s; totals are a floor", unknown), width))
	}

	sb.WriteString(boxBottom(width))

	sb.WriteString("\n  On-demand rates (USD). Excludes tax, data transfer, and LCU charges.\n")
	return sb.String()
}

// FormatCompact returns a single-line cost summary.
func (f *Formatter) FormatCompact(e *Estimate) string {
	return fmt.Sprintf("%s (%s): $%.2f/mo ($%.2f/yr)",
		e.ClusterName, e.Region, e.Monthly, e.AnnualCost())
}

// FormatJSON returns the estimate as JSON.
func (f *Formatter) FormatJSON(e *Estimate) string {
	type jsonEstimate struct {
		ClusterName  string     `json:"clusterName"`
		Region       string     `json:"region"`
		Items        []LineItem `json:"items"`
		Monthly      float64    `json:"monthly"`
		Annual       float64    `json:"annual"`
		UnknownTypes []string   `json:"unknownTypes,omitempty"`
	}

	je := jsonEstimate{
		ClusterName:  e.ClusterName,
		Region:       string(e.Region),
		Items:        e.Items,
		Monthly:      e.Monthly,
		Annual:       e.AnnualCost(),
		UnknownTypes: e.UnknownTypes,
	}

	data, _ := json.MarshalIndent(je, "", "  ")
	return string(data)
}

// Helper functions for box drawing. Box content stays ASCII so the
// len-based padding lines up.

func boxTop(width int) string {
	return fmt.Sprintf("┌%s┐\n", strings.Repeat("─", width-2))
}

func boxBottom(width int) string {
	return fmt.Sprintf("└%s┘\n", strings.Repeat("─", width-2))
}

func boxSep(width int) string {
	return fmt.Sprintf("├%s┤\n", strings.Repeat("─", width-2))
}

func boxDash(width int) string {
	return fmt.Sprintf("│ %s │\n", strings.Repeat("─", width-4))
}

func boxLine(text string, width int) string {
	padding := width - 4 - len(text)
	if padding < 0 {
		padding = 0
		text = text[:width-4]
	}
	return fmt.Sprintf("│ %s%s │\n", text, strings.Repeat(" ", padding))
}

func boxEmpty(width int) string {
	return fmt.Sprintf("│%s│\n", strings.Repeat(" ", width-2))
}
