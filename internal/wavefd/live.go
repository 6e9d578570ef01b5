package wavefd

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/geoforge/internal/plot"
)

var (
	liveHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	liveFieldStyle  = lipgloss.NewStyle().Padding(0, 2)
	liveLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	liveValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	liveGraphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	liveHelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type liveTickMsg time.Time

// LiveModel animates the propagating field in the terminal.
type LiveModel struct {
	cfg   Config
	model *Model

	prev, cur, next []float64
	src             []float64
	step            int
	running         bool
	err             error

	trace  []float64 // center-receiver history
	maxAmp float64
}

// NewLiveModel prepares an interactive run. The configuration is
// validated the same way Run validates it.
func NewLiveModel(cfg Config) (*LiveModel, error) {
	cfg = cfg.withDefaults()
	m := NewCircularAnomalyModel(cfg.NX, cfg.NZ, cfg.DX, cfg.V0, cfg.V1)
	dt := cfg.DTms / 1000
	if err := CheckCFL(m, dt); err != nil {
		return nil, err
	}
	src, err := RickerSource(cfg.F0, dt)
	if err != nil {
		return nil, err
	}
	lm := &LiveModel{cfg: cfg, model: m, src: src, running: true}
	lm.reset()
	return lm, nil
}

func (m *LiveModel) reset() {
	n := m.model.NX * m.model.NZ
	m.prev = make([]float64, n)
	m.cur = make([]float64, n)
	m.next = make([]float64, n)
	m.step = 0
	m.trace = m.trace[:0]
	m.maxAmp = 0
	m.err = nil
}

func (m *LiveModel) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return liveTickMsg(t) })
}

func (m *LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		}
	case liveTickMsg:
		if m.running && m.err == nil && m.step < m.cfg.NT {
			// A few solver steps per frame keeps the animation fluid.
			for i := 0; i < 4 && m.step < m.cfg.NT; i++ {
				m.advance()
				if m.err != nil {
					break
				}
			}
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return liveTickMsg(t) })
	}
	return m, nil
}

func (m *LiveModel) advance() {
	nx := m.model.NX
	dt := m.cfg.DTms / 1000
	stepField(m.model, m.prev, m.cur, m.next, dt)
	m.step++
	if n := m.step - 1; n < len(m.src) {
		i := 2*nx + nx/2
		v := m.model.Vel[i]
		m.next[i] += m.src[n] * dt * dt * v * v
	}

	center := m.next[2*nx+nx/2]
	if math.IsNaN(center) || math.IsInf(center, 0) {
		m.err = fmt.Errorf("%w at step %d", ErrDiverged, m.step)
		return
	}
	m.trace = append(m.trace, center)
	if len(m.trace) > 240 {
		m.trace = m.trace[1:]
	}
	for _, v := range m.next {
		m.maxAmp = math.Max(m.maxAmp, math.Abs(v))
	}
	m.prev, m.cur, m.next = m.cur, m.next, m.prev
}

func (m *LiveModel) View() string {
	var s strings.Builder
	s.WriteString(liveHeaderStyle.Render("ACOUSTIC WAVEFIELD") + "\n")

	status := "RUNNING"
	switch {
	case m.err != nil:
		status = "DIVERGED"
	case m.step >= m.cfg.NT:
		status = "DONE"
	case !m.running:
		status = "PAUSED"
	}
	s.WriteString(status + "\n")

	field := liveFieldStyle.Render(plot.HeatASCII(m.cur, m.model.NX, m.model.NZ))
	s.WriteString(field + "\n")

	if len(m.trace) > 1 {
		chart := asciigraph.Plot(m.trace, asciigraph.Height(4), asciigraph.Width(40),
			asciigraph.Caption("Center receiver"))
		s.WriteString(liveGraphStyle.Render(chart) + "\n")
	}
	s.WriteString(liveLabelStyle.Render("Time") +
		liveValueStyle.Render(fmt.Sprintf("%.1f ms", float64(m.step)*m.cfg.DTms)) + "\n")
	s.WriteString(liveLabelStyle.Render("Step") +
		liveValueStyle.Render(fmt.Sprintf("%d / %d", m.step, m.cfg.NT)) + "\n")
	s.WriteString(liveLabelStyle.Render("Max amp") +
		liveValueStyle.Render(fmt.Sprintf("%.3e", m.maxAmp)) + "\n")
	if m.err != nil {
		s.WriteString(liveValueStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString(liveHelpStyle.Render("SP:Pause R:Reset Q:Quit"))
	return s.String()
}
