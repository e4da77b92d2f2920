package tui

import (
	"context"
	"time"

	"nftdash/pkg/config"
	"nftdash/pkg/dashboard"
	"nftdash/pkg/format"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Version is set by Start()
var Version = "dev"

// --- Messages ---

type clearStatusMsg struct{}
type uiTickMsg time.Time

// actionDoneMsg reports the result of a controller call. State changes
// arrive separately as dashboard events.
type actionDoneMsg struct {
	action string
	err    error
}

// ownedDoneMsg carries the result of a wallet lookup.
type ownedDoneMsg struct {
	panel *dashboard.OwnedPanel
	err   error
}

// --- Model ---

type model struct {
	ctx           context.Context
	ctrl          *dashboard.Controller
	sub           dashboard.Subscriber
	msgs          dashboard.Messages
	format        *format.Formatter
	config        config.GlobalConfig
	configPath    string
	active        dashboard.ViewID
	states        map[dashboard.ViewID]dashboard.ViewState
	width         int
	height        int
	spinner       spinner.Model
	statusMessage string
	lastUpdate    time.Time
	showHelp      bool
	enteringToken bool
	tokenInput    textinput.Model
	enteringOwned bool
	ownedInput    textinput.Model
	viewport      viewport.Model
	cursor        int
	ownedCursor   int
}

func initialModel(ctx context.Context, ctrl *dashboard.Controller, globalCfg config.GlobalConfig, configPath string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "0 - 9999"
	ti.CharLimit = 4
	ti.Width = 10

	oi := textinput.New()
	oi.Placeholder = "0x..."
	oi.CharLimit = 42
	oi.Width = 44

	active, err := dashboard.ParseView(globalCfg.DefaultView)
	if err != nil {
		active = dashboard.ViewTimeBased
	}

	states := make(map[dashboard.ViewID]dashboard.ViewState, len(dashboard.Views))
	for _, st := range ctrl.Snapshots() {
		states[st.View] = st
	}

	return model{
		ctx:        ctx,
		ctrl:       ctrl,
		sub:        ctrl.Subscribe(),
		msgs:       ctrl.Messages(),
		format:     format.NewFormatter(globalCfg.Locale),
		config:     globalCfg,
		configPath: configPath,
		active:     active,
		states:     states,
		spinner:    s,
		tokenInput: ti,
		ownedInput: oi,
		viewport:   viewport.New(0, 0),
	}
}

func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd

	// Subscribe to controller events
	cmds = append(cmds, listenForEvents(m.sub))
	cmds = append(cmds, m.spinner.Tick)
	cmds = append(cmds, m.activate(m.active))
	cmds = append(cmds, tea.Tick(time.Second, func(t time.Time) tea.Msg { return uiTickMsg(t) }))
	return tea.Batch(cmds...)
}

// listenForEvents waits for the next controller event. It returns nil once
// the subscription is closed.
func listenForEvents(sub dashboard.Subscriber) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return nil
		}
		return ev
	}
}

func (m model) state() dashboard.ViewState {
	return m.states[m.active]
}
