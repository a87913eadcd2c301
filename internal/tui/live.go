package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/flightdyn/internal/config"
	"github.com/san-kum/flightdyn/internal/sim"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

const historyLen = 600

// feed forwards every step to the live view. The send is blocking, so the
// simulation runs no faster than the view drains it.
type feed struct {
	ch chan<- sim.Sample
}

func (f feed) OnStep(s sim.Sample) { f.ch <- s }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type liveModel struct {
	samples  <-chan sim.Sample
	perFrame int

	latest    sim.Sample
	altHist   []float64
	touchdown float64
	landed    bool
	paused    bool
	done      bool

	width  int
	height int
}

func newLiveModel(samples <-chan sim.Sample, perFrame int) liveModel {
	return liveModel{
		samples:  samples,
		perFrame: perFrame,
		altHist:  make([]float64, 0, historyLen),
		width:    80,
		height:   24,
	}
}

func (m liveModel) Init() tea.Cmd { return tick() }

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "escape":
			return m, tea.Quit
		case " ", "p":
			m.paused = !m.paused
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if !m.paused && !m.done {
			m.drain()
		}
		return m, tick()
	}
	return m, nil
}

// drain pulls at most one frame's worth of samples so playback tracks
// wall-clock time.
func (m *liveModel) drain() {
	for i := 0; i < m.perFrame; i++ {
		select {
		case s, ok := <-m.samples:
			if !ok {
				m.done = true
				return
			}
			if !m.landed && s.Contacts > 0 {
				m.landed = true
				m.touchdown = s.T
			}
			m.latest = s
			m.altHist = append(m.altHist, s.Altitude)
			if len(m.altHist) > historyLen {
				m.altHist = m.altHist[1:]
			}
		default:
			return
		}
	}
}

func (m liveModel) View() string {
	var b strings.Builder

	status := green.Render("● running")
	switch {
	case m.done:
		status = dim.Render("○ finished")
	case m.paused:
		status = yellow.Render("○ paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s  %s  %s\n\n",
		cyan.Render("flightdyn"), dim.Render("touchdown view"), status))

	gw := m.width - 14
	if gw < 40 {
		gw = 40
	}
	gh := m.height - 12
	if gh < 8 {
		gh = 8
	}
	if len(m.altHist) > 1 {
		graph := asciigraph.Plot(m.altHist,
			asciigraph.Height(gh),
			asciigraph.Width(gw),
			asciigraph.Caption("altitude (m)"),
		)
		b.WriteString("   " + strings.ReplaceAll(graph, "\n", "\n   ") + "\n\n")
	} else {
		b.WriteString(dimmer.Render("   waiting for samples...") + "\n\n")
	}

	s := m.latest
	b.WriteString(fmt.Sprintf("   %s %s   %s %s   %s %s\n",
		dim.Render("t"), white.Render(fmt.Sprintf("%6.2fs", s.T)),
		dim.Render("alt"), white.Render(fmt.Sprintf("%7.2fm", s.Altitude)),
		dim.Render("sink"), white.Render(fmt.Sprintf("%6.2fm/s", s.UVW[2]))))

	contacts := dim.Render("airborne")
	if s.Contacts > 0 {
		contacts = green.Render(fmt.Sprintf("%d gears down", s.Contacts))
	}
	b.WriteString(fmt.Sprintf("   %s %s   %s %s   %s %s\n",
		dim.Render("contact"), contacts,
		dim.Render("solver"), white.Render(fmt.Sprintf("%d it", s.SolverIterations)),
		dim.Render("reaction"), white.Render(fmt.Sprintf("%8.0fN", -s.GearForce[2]))))

	if m.landed {
		b.WriteString(fmt.Sprintf("   %s %s\n",
			dim.Render("touchdown"), green.Render(fmt.Sprintf("t=%.2fs", m.touchdown))))
	}

	b.WriteString("\n" + dim.Render("   space pause   q quit") + "\n")
	return b.String()
}

// RunLive runs the simulation in the background and presents a live terminal
// view of the descent. The returned result is the full run outcome; it is nil
// when the view was quit before the run finished.
func RunLive(s *sim.Simulator, cfg *config.Config, fps int) (*sim.Result, error) {
	if fps < 1 {
		fps = 30
	}
	perFrame := int(1.0 / (cfg.Dt * float64(fps)))
	if perFrame < 1 {
		perFrame = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := make(chan sim.Sample, 512)
	s.AddObserver(feed{ch: ch})

	var (
		result *sim.Result
		runErr error
	)
	go func() {
		result, runErr = s.Run(ctx)
		close(ch)
	}()

	p := tea.NewProgram(newLiveModel(ch, perFrame), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		cancel()
		for range ch {
		}
		return nil, err
	}

	cancel()
	for range ch {
	}
	return result, runErr
}
