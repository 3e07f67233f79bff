package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/stabcalc/internal/airframe"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(16)

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	stableStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	unstableStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
	undecidedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
)

// VerdictStyle colours a stability verdict.
func VerdictStyle(v airframe.Verdict) lipgloss.Style {
	switch v {
	case airframe.Stable:
		return stableStyle
	case airframe.Unstable:
		return unstableStyle
	default:
		return undecidedStyle
	}
}

func metric(label, value string) string {
	return MetricLabel.Render(label) + MetricValue.Render(value) + "\n"
}

func optional(v float64, ok bool, unit string) string {
	if !ok {
		return "unavailable"
	}
	return fmt.Sprintf("%.4f %s", v, unit)
}

// Report renders the static stability summary of p.
func Report(p *airframe.Plane) string {
	var s strings.Builder

	name := p.ProjectName()
	if name == "" {
		name = "untitled"
	}
	s.WriteString(Title.Render(strings.ToUpper(name)) + "\n\n")

	s.WriteString(metric("Centerline", fmt.Sprintf("%.4f m", p.Centerline())))
	s.WriteString(metric("Fuselage mass", fmt.Sprintf("%.4f kg", p.FuselageMass())))
	s.WriteString(metric("Total mass", fmt.Sprintf("%.4f kg", p.TotalMass())))
	s.WriteString(metric("CG", fmt.Sprintf("%.4f m", p.CG())))

	np, ok := p.NeutralPoint()
	s.WriteString(metric("NP", optional(np, ok, "m")))
	npp, ok := p.NeutralPointPolar()
	s.WriteString(metric("NP (polars)", optional(npp, ok, "m")))
	sm, ok := p.StaticMargin()
	s.WriteString(metric("Static margin", optional(sm, ok, "m")))

	v := p.Verdict()
	s.WriteString(MetricLabel.Render("Verdict") + VerdictStyle(v).Render(v.String()) + "\n\n")

	s.WriteString(Subtle.Render(fmt.Sprintf("%-12s %-10s %8s %8s %8s", "NAME", "KIND", "BEGIN", "END", "MASS")) + "\n")
	for _, pl := range p.Layout().All() {
		s.WriteString(fmt.Sprintf("%-12s %-10s %8.4f %8.4f %8.4f\n",
			pl.Name, pl.Item.Kind(), pl.Begin, pl.End, pl.Mass()))
	}
	return Panel.Render(s.String())
}
