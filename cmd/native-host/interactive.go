package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/native-host/clock"
	"github.com/wippyai/native-host/concurrency"
	"github.com/wippyai/native-host/handle"
	"github.com/wippyai/native-host/host"
	"github.com/wippyai/native-host/sysinfo"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type monitorState int

const (
	stateMonitor monitorState = iota
	stateSpawnInput
)

type monitorModel struct {
	err      error
	h        *host.Host
	timers   *clock.Timers
	input    textinput.Model
	state    monitorState
	buffers  []handle.Handle
	ticking  []handle.Handle
	fired    *atomic.Int64
	lastTick time.Time
	cpuPct   float64
}

type tickMsg time.Time

func newMonitorModel(h *host.Host, timers *clock.Timers) *monitorModel {
	ti := textinput.New()
	ti.Placeholder = "worker count"
	ti.Prompt = "spawn: "
	ti.Width = 20
	return &monitorModel{h: h, timers: timers, input: ti, state: stateMonitor, fired: &atomic.Int64{}}
}

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *monitorModel) Init() tea.Cmd {
	sysinfo.Usage() // seed the usage baseline
	return tick()
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.lastTick = time.Time(msg)
		m.cpuPct = sysinfo.Usage()
		return m, tick()

	case tea.KeyMsg:
		if m.state == stateSpawnInput {
			switch msg.String() {
			case "enter":
				n, err := strconv.Atoi(m.input.Value())
				if err != nil || n <= 0 {
					m.err = fmt.Errorf("worker count must be a positive integer")
				} else {
					m.err = m.spawnWorkers(n)
				}
				m.input.SetValue("")
				m.input.Blur()
				m.state = stateMonitor
				return m, nil
			case "esc":
				m.input.SetValue("")
				m.input.Blur()
				m.state = stateMonitor
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "t":
			m.state = stateSpawnInput
			m.input.Focus()
			return m, textinput.Blink
		case "m":
			_, m.err = m.h.Sync.Mutexes().Create(false)
		case "s":
			_, m.err = m.h.Sync.Semaphores().Create(1, 4)
		case "b":
			var h handle.Handle
			h, m.err = m.h.Memory.Allocate(1 << 16)
			if m.err == nil {
				m.buffers = append(m.buffers, h)
			}
		case "f":
			if len(m.buffers) > 0 {
				h := m.buffers[len(m.buffers)-1]
				m.buffers = m.buffers[:len(m.buffers)-1]
				m.err = m.h.Memory.Free(h)
			}
		case "c":
			var h handle.Handle
			h, m.err = m.timers.Start(time.Second, func() { m.fired.Add(1) })
			if m.err == nil {
				m.ticking = append(m.ticking, h)
			}
		case "x":
			if len(m.ticking) > 0 {
				h := m.ticking[len(m.ticking)-1]
				m.ticking = m.ticking[:len(m.ticking)-1]
				m.err = m.timers.Stop(h)
			}
		}
	}
	return m, nil
}

// spawnWorkers starts n detached threads that hold a mutex briefly so
// the monitor has something to show.
func (m *monitorModel) spawnWorkers(n int) error {
	mu, err := m.h.Sync.Mutexes().Create(false)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		th, err := m.h.Sync.Threads().Spawn(func() int32 {
			for j := 0; j < 50; j++ {
				if _, err := m.h.Sync.Mutexes().Lock(mu, concurrency.Blocking); err != nil {
					return 1
				}
				clock.Sleep(2)
				if err := m.h.Sync.Mutexes().Unlock(mu); err != nil {
					return 1
				}
			}
			return 0
		})
		if err != nil {
			return err
		}
		if err := m.h.Sync.Threads().Detach(th); err != nil {
			return err
		}
	}
	return nil
}

func (m *monitorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("native-host monitor"))
	b.WriteString("\n\n")

	stats := m.h.Sync.Stats()
	mem := m.h.Memory.Usage()

	row := func(label string, value any) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-16s", label)))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%v", value)))
		b.WriteString("\n")
	}

	row("threads", stats.Threads)
	row("mutexes", stats.Mutexes)
	row("semaphores", stats.Semaphores)
	row("buffers", mem.Buffers)
	row("live bytes", mem.LiveBytes)
	row("peak bytes", mem.PeakBytes)
	row("timers", m.timers.Len())
	row("timer fires", m.fired.Load())
	row("handles issued", stats.Issued)
	row("uptime", m.h.Clock.Elapsed().Round(time.Second))
	row("cpu", fmt.Sprintf("%.1f%%", m.cpuPct))

	if m.state == stateSpawnInput {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter spawn • esc cancel"))
		return b.String()
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("t spawn workers • m mutex • s semaphore • b alloc • f free • c timer • x stop timer • q quit"))
	return b.String()
}

func runInteractive(log *zap.Logger) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}

	h := newHost(log)
	defer h.Sync.Close()
	defer h.Memory.Close()

	timers := clock.NewTimers(&handle.Allocator{}, log.Named("timer"))
	defer timers.Close()

	p := tea.NewProgram(newMonitorModel(h, timers), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
