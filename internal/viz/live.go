package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/stabcalc/internal/aero"
	"github.com/san-kum/stabcalc/internal/airframe"
	"github.com/san-kum/stabcalc/internal/sim"
)

const (
	width           = 60
	height          = 16
	historyCapacity = 600
	thrustStep      = 0.5
	maxThrust       = 20.0 // N
	gustForce       = 1.0
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(48)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model ticks a plane in real time. It owns its plane; pass a clone to
// keep the original untouched.
type Model struct {
	plane    *airframe.Plane
	canvas   *Canvas
	t        float64
	running  bool
	gust     bool
	showHelp bool
	airspeed []float64
	pitch    []float64
	last     sim.State
}

func NewModel(p *airframe.Plane) Model {
	return Model{
		plane:    p,
		canvas:   NewCanvas(width, height),
		running:  true,
		airspeed: make([]float64, 0, historyCapacity),
		pitch:    make([]float64, 0, historyCapacity),
		last:     sim.Sample(p),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Duration(airframe.TickInterval*float64(time.Second)), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "up", "k":
			m.plane.SetThrust(aero.Clamp(m.plane.Flight().Thrust+thrustStep, 0, maxThrust))
		case "down", "j":
			m.plane.SetThrust(aero.Clamp(m.plane.Flight().Thrust-thrustStep, 0, maxThrust))
		case "g":
			m.toggleGust()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	m.plane.Tick()
	m.t += airframe.TickInterval
	m.last = sim.Sample(m.plane)
	m.airspeed = appendCapped(m.airspeed, m.last[sim.Airspeed])
	m.pitch = appendCapped(m.pitch, m.last[sim.Pitch])
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) reset() {
	m.t = 0
	m.plane.ResetMotion()
	m.airspeed = m.airspeed[:0]
	m.pitch = m.pitch[:0]
	m.last = sim.Sample(m.plane)
}

func (m *Model) toggleGust() {
	m.gust = !m.gust
	if m.gust {
		m.plane.SetGust(0, gustForce)
	} else {
		m.plane.ClearGust()
	}
}

// draw renders the side view: the centerline pitched about the CG, a tick
// per placement boundary, and marks for the CG and neutral point.
func (m *Model) draw() {
	m.canvas.Clear()
	p := m.plane
	cw, ch := m.canvas.Dots()
	margin := 4
	scale := float64(cw-2*margin) / p.Centerline()
	cg := p.CG()
	theta := p.Flight().Pitch * math.Pi / 180

	at := func(x float64) (int, int) {
		dx := (x - cg) * scale
		px := float64(cw)/2 + dx*math.Cos(theta)
		py := float64(ch)/2 + dx*math.Sin(theta)
		return int(math.Round(px)), int(math.Round(py))
	}

	x0, y0 := at(0)
	x1, y1 := at(p.Centerline())
	m.canvas.DrawLine(x0, y0, x1, y1)

	for _, pl := range p.Layout().All() {
		h := 2
		if pl.Item.Kind() == airframe.KindWing {
			h = 6
		}
		bx, by := at(pl.Begin)
		ex, ey := at(pl.End)
		m.canvas.Tick(bx, by, h)
		m.canvas.Tick(ex, ey, h)
	}

	gx, gy := at(cg)
	m.canvas.Tick(gx, gy, ch/2-1)
	if np, ok := p.NeutralPoint(); ok {
		nx, ny := at(np)
		m.canvas.Tick(nx, ny, ch/4)
	}
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	name := m.plane.ProjectName()
	if name == "" {
		name = "untitled"
	}
	s.WriteString(Title.Render(strings.ToUpper(name)) + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.airspeed) > 1 {
		chart := asciigraph.Plot(m.airspeed, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Airspeed (m/s)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.pitch) > 1 {
		chart := asciigraph.Plot(m.pitch, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Pitch (deg)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	f := m.plane.Flight()
	s.WriteString(metric("Time", fmt.Sprintf("%.2fs", m.t)))
	s.WriteString(metric("Airspeed", fmt.Sprintf("%.2f m/s", f.Airspeed)))
	s.WriteString(metric("Pitch", fmt.Sprintf("%.2f deg", f.Pitch)))
	s.WriteString(metric("Pitch rate", fmt.Sprintf("%.2f deg/s", m.last[sim.AngularVelocity])))
	s.WriteString(metric("Thrust", fmt.Sprintf("%.2f N", f.Thrust)))
	s.WriteString(metric("Drag", fmt.Sprintf("%.3f N", m.last[sim.Drag])))
	s.WriteString(metric("Lift", fmt.Sprintf("%.3f N", m.last[sim.Lift])))
	gust := "off"
	if m.gust {
		gust = fmt.Sprintf("%.1f N at nose", gustForce)
	}
	s.WriteString(metric("Gust", gust))
	v := m.plane.Verdict()
	s.WriteString(MetricLabel.Render("Verdict") + VerdictStyle(v).Render(v.String()) + "\n")

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\n↑↓:Thrust G:Gust ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset motion             ║
║  Q        - Quit                     ║
║  Up/K     - Increase thrust          ║
║  Down/J   - Decrease thrust          ║
║  G        - Toggle gust at the nose  ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
