package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	"seqcore/internal/miditime"
	"seqcore/internal/pattern"
	"seqcore/internal/setmapper"
)

// tickMsg drives the simulated transport; a real embedder would instead
// feed ticks from whatever clock drives its MIDI I/O.
type tickMsg time.Time

// monitorStyles mirrors the teacher's per-view ViewStyles grouping: one
// style per semantic cell state, built once and reused every render.
type monitorStyles struct {
	armed     lipgloss.Style
	muted     lipgloss.Style
	empty     lipgloss.Style
	label     lipgloss.Style
	playing   lipgloss.Style
	termColor termenv.Color
}

func newMonitorStyles() monitorStyles {
	armedColor, _ := colorful.Hex("#3ddc84")
	profile := termenv.ColorProfile()
	return monitorStyles{
		armed:     lipgloss.NewStyle().Foreground(lipgloss.Color(armedColor.Hex())),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		empty:     lipgloss.NewStyle().Foreground(lipgloss.Color("237")),
		label:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		playing:   lipgloss.NewStyle().Background(lipgloss.Color("2")).Foreground(lipgloss.Color("0")),
		termColor: profile.Color(armedColor.Hex()),
	}
}

// model is a read-only live view over a SetMapper: it never calls any
// mutating method other than Play (advancing the transport), matching
// spec.md's "performer" callback contract rather than an editor.
type model struct {
	mapper *setmapper.SetMapper
	timing miditime.Timing

	tick       miditime.Pulse
	stepSize   miditime.Pulse
	loopLength miditime.Pulse

	styles    monitorStyles
	transport progress.Model
	quit      bool
	firing    bool // an edge fired on the most recent tick
}

func newModel(mapper *setmapper.SetMapper, timing miditime.Timing) model {
	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40
	return model{
		mapper:     mapper,
		timing:     timing,
		stepSize:   miditime.Pulse(timing.Ppqn / 4),
		loopLength: miditime.PulsesPerMeasure(timing.Ppqn) * 4,
		styles:     newMonitorStyles(),
		transport:  p,
	}
}

func tickEvery(timing miditime.Timing, stepSize miditime.Pulse) tea.Cmd {
	us := miditime.PulseLengthUs(timing.Bpm, timing.Ppqn) * float64(stepSize)
	interval := time.Duration(us) * time.Microsecond
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd {
	return tickEvery(m.timing, m.stepSize)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quit = true
			return m, tea.Quit
		}
	case tickMsg:
		next := m.tick + m.stepSize
		edges := m.mapper.Play(m.tick, next, false)
		m.firing = len(edges) > 0
		m.tick = next
		percent := 0.0
		if m.loopLength > 0 {
			percent = float64(m.tick%m.loopLength) / float64(m.loopLength)
		}
		progressCmd := m.transport.SetPercent(percent)
		return m, tea.Batch(tickEvery(m.timing, m.stepSize), progressCmd)

	case progress.FrameMsg:
		updated, cmd := m.transport.Update(msg)
		m.transport = updated.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.quit {
		return ""
	}
	var b strings.Builder
	header := fmt.Sprintf(
		"seqcoremon  playscreen=%d  bpm=%.1f  %s",
		m.mapper.Playscreen(), m.timing.Bpm,
		miditime.PulsesToStringBBT(m.tick, m.timing),
	)
	b.WriteString(termenv.String(header).Foreground(m.styles.termColor).Bold().String())
	if m.firing {
		b.WriteString(" " + m.styles.playing.Render(" ▶ "))
	}
	b.WriteString("\n")
	b.WriteString(m.transport.View())
	b.WriteString("\n\n")

	s := m.mapper.Master().Set(m.mapper.Playscreen())
	if s == nil {
		b.WriteString(m.styles.muted.Render("(no play-screen set)\n"))
		return b.String()
	}

	for slot := 0; slot < s.Capacity(); slot++ {
		p := s.Slot(slot)
		cell := m.renderSlot(p)
		b.WriteString(cell)
		if (slot+1)%8 == 0 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\ngroup-selected=")
	g := m.mapper.Mutes().GroupSelected()
	b.WriteString(fmt.Sprintf("%d\n", g))
	b.WriteString(m.styles.label.Render("q to quit"))
	b.WriteString("\n")
	return b.String()
}

func (m model) renderSlot(p *pattern.Pattern) string {
	if p == nil {
		return m.styles.empty.Render(" -- ")
	}
	text := fmt.Sprintf(" %02d ", int(p.Number))
	switch {
	case p.Armed && !p.Muted:
		return m.styles.armed.Render(text)
	case p.Muted:
		return m.styles.muted.Render(text)
	default:
		return m.styles.label.Render(text)
	}
}
