// Command teleop is a keyboard driver station: it connects to the robot
// dashboard, streams field-oriented drive commands over the drive
// websocket, and shows the telemetry stream coming back.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gorilla/websocket"

	"github.com/hightide-robotics/reefbot/pkg/telemetry"
)

const (
	sendPeriod = 50 * time.Millisecond
	step       = 0.1 // command change per keypress, fraction of max
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type model struct {
	driveConn *websocket.Conn
	states    chan telemetry.State

	cmd      telemetry.DriveCommand
	state    telemetry.State
	sendErr  error
	quitting bool
}

type tickMsg time.Time
type stateMsg telemetry.State
type stateClosedMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(sendPeriod, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForState(states chan telemetry.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-states
		if !ok {
			return stateClosedMsg{}
		}
		return stateMsg(s)
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(tick(), waitForState(m.states))
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.cmd = telemetry.DriveCommand{}
			m.send()
			return m, tea.Quit
		case "w":
			m.cmd.VX = clamp(m.cmd.VX + step)
		case "s":
			m.cmd.VX = clamp(m.cmd.VX - step)
		case "a":
			m.cmd.VY = clamp(m.cmd.VY + step)
		case "d":
			m.cmd.VY = clamp(m.cmd.VY - step)
		case "q":
			m.cmd.Omega = clamp(m.cmd.Omega + step)
		case "e":
			m.cmd.Omega = clamp(m.cmd.Omega - step)
		case " ":
			m.cmd = telemetry.DriveCommand{}
		}
		return m, nil

	case tickMsg:
		m.send()
		return m, tick()

	case stateMsg:
		m.state = telemetry.State(msg)
		return m, waitForState(m.states)

	case stateClosedMsg:
		m.sendErr = fmt.Errorf("telemetry stream closed")
		return m, nil
	}
	return m, nil
}

func (m *model) send() {
	data, err := json.Marshal(m.cmd)
	if err != nil {
		m.sendErr = err
		return
	}
	m.sendErr = m.driveConn.WriteMessage(websocket.TextMessage, data)
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func (m *model) View() string {
	if m.quitting {
		return "stopped\n"
	}

	var b []byte
	b = append(b, titleStyle.Render("reefbot teleop")...)
	b = append(b, '\n', '\n')
	b = fmt.Appendf(b, "command  %s\n",
		valueStyle.Render(fmt.Sprintf("vx %+0.1f  vy %+0.1f  omega %+0.1f", m.cmd.VX, m.cmd.VY, m.cmd.Omega)))
	b = fmt.Appendf(b, "pose     %s\n",
		valueStyle.Render(fmt.Sprintf("x %6.2f m  y %6.2f m  heading %6.1f deg",
			m.state.Pose.X, m.state.Pose.Y, m.state.Pose.HeadingDeg)))
	b = fmt.Appendf(b, "speeds   %s\n",
		valueStyle.Render(fmt.Sprintf("vx %5.2f  vy %5.2f  omega %5.2f", m.state.Speeds.VX, m.state.Speeds.VY, m.state.Speeds.Omega)))
	if m.sendErr != nil {
		b = fmt.Appendf(b, "%s\n", errorStyle.Render("error: "+m.sendErr.Error()))
	}
	b = append(b, '\n')
	b = append(b, statusStyle.Render("w/s fwd  a/d strafe  q/e rotate  space stop  esc quit")...)
	b = append(b, '\n')
	return string(b)
}

func main() {
	addr := flag.String("addr", "127.0.0.1:5800", "Robot dashboard address")
	flag.Parse()

	driveConn, _, err := websocket.DefaultDialer.Dial("ws://"+*addr+"/ws/drive", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect drive socket: %v\n", err)
		os.Exit(1)
	}
	defer driveConn.Close()

	stateConn, _, err := websocket.DefaultDialer.Dial("ws://"+*addr+"/ws/state", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect state socket: %v\n", err)
		os.Exit(1)
	}
	defer stateConn.Close()

	states := make(chan telemetry.State, 8)
	go func() {
		defer close(states)
		for {
			_, data, err := stateConn.ReadMessage()
			if err != nil {
				return
			}
			var s telemetry.State
			if err := json.Unmarshal(data, &s); err != nil {
				continue
			}
			select {
			case states <- s:
			default:
			}
		}
	}()

	p := tea.NewProgram(&model{driveConn: driveConn, states: states})
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "teleop: %v\n", err)
		os.Exit(1)
	}
}
