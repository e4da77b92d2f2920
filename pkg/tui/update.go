package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"nftdash/pkg/dashboard"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func clearStatusAfter() tea.Cmd {
	return tea.Tick(time.Second*2, func(t time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case dashboard.Event:
		// Wait for the next event
		cmds = append(cmds, listenForEvents(m.sub))

		switch msg.Type {
		case dashboard.EventViewUpdated:
			if st, ok := msg.Data.(dashboard.ViewState); ok {
				m.states[st.View] = st
				if st.View == m.active {
					m.cursor = clampCursor(m.cursor, len(copyTargets(st)))
					m.updateResaleViewport()
				}
			}
		case dashboard.EventActiveChanged:
			if id, ok := msg.Data.(dashboard.ViewID); ok && id != m.active {
				m.active = id
				m.cursor = 0
				m.viewport.GotoTop()
			}
		}
		m.lastUpdate = time.Now()

	case actionDoneMsg:
		if msg.err != nil {
			var vErr *dashboard.ValidationError
			switch {
			case errors.As(msg.err, &vErr):
				m.statusMessage = vErr.Message
			case errors.Is(msg.err, dashboard.ErrCacheUninitialized):
				m.statusMessage = m.msgs.NoData
			default:
				m.statusMessage = fmt.Sprintf("%s: %v", msg.action, msg.err)
			}
			cmds = append(cmds, clearStatusAfter())
		}

	case ownedDoneMsg:
		m.ownedCursor = 0
		if msg.err != nil {
			m.statusMessage = m.msgs.InvalidAddress
			cmds = append(cmds, clearStatusAfter())
		}

	case clearStatusMsg:
		m.statusMessage = ""

	case uiTickMsg:
		cmds = append(cmds, tea.Tick(time.Second, func(t time.Time) tea.Msg { return uiTickMsg(t) }))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 6
		m.viewport.Height = msg.Height - 10
		if m.viewport.Height < resaleCardHeight {
			m.viewport.Height = resaleCardHeight
		}
		m.updateResaleViewport()

	case tea.KeyMsg:
		if m.enteringToken || m.enteringOwned {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}

	return m, tea.Batch(cmds...)
}

// updateInput handles keys while a prompt is open.
func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.ctrl.Unsubscribe(m.sub)
		return m, tea.Quit
	case "esc":
		m.enteringToken = false
		m.enteringOwned = false
		m.tokenInput.Blur()
		m.ownedInput.Blur()
		return m, nil
	case "enter":
		if m.enteringToken {
			raw := strings.TrimSpace(m.tokenInput.Value())
			m.enteringToken = false
			m.tokenInput.Blur()
			m.tokenInput.SetValue("")
			if m.active != dashboard.ViewToken {
				m.active = dashboard.ViewToken
				return m, tea.Sequence(m.activate(dashboard.ViewToken), m.lookupToken(raw))
			}
			return m, m.lookupToken(raw)
		}
		addr := strings.TrimSpace(m.ownedInput.Value())
		m.enteringOwned = false
		m.ownedInput.Blur()
		m.ownedInput.SetValue("")
		return m, m.lookupOwned(addr)
	}

	var cmd tea.Cmd
	if m.enteringToken {
		m.tokenInput, cmd = m.tokenInput.Update(msg)
	} else {
		m.ownedInput, cmd = m.ownedInput.Update(msg)
	}
	return m, cmd
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.showHelp {
		switch key {
		case "?", "q", "esc":
			m.showHelp = false
		case "ctrl+c":
			m.ctrl.Unsubscribe(m.sub)
			return m, tea.Quit
		}
		return m, nil
	}

	st := m.state()

	switch key {
	case "ctrl+c", "q":
		m.ctrl.Unsubscribe(m.sub)
		return m, tea.Quit

	case "?":
		m.showHelp = true

	case "1", "2", "3", "4", "5":
		id, err := dashboard.ParseView(key)
		if err == nil {
			m.active = id
			m.cursor = 0
			return m, m.activate(id)
		}

	case "tab", "shift+tab":
		delta := 1
		if key == "shift+tab" {
			delta = -1
		}
		m.active = nextView(m.active, delta)
		m.cursor = 0
		return m, m.activate(m.active)

	case "]", "[":
		delta := 1
		if key == "[" {
			delta = -1
		}
		return m, m.setInterval(shiftInterval(st.Interval, delta, m.config.IntervalCount))

	case "m":
		if m.active == dashboard.ViewMarketplace && st.Status == dashboard.StatusPopulated {
			return m, m.toggleMetric(otherMetric(st.Metric))
		}

	case "r":
		m.statusMessage = "Refreshing..."
		return m, tea.Batch(m.refresh(), clearStatusAfter())

	case "/", "t":
		m.enteringToken = true
		m.tokenInput.SetValue("")
		return m, m.tokenInput.Focus()

	case "w":
		if m.active == dashboard.ViewToken {
			m.enteringOwned = true
			m.ownedInput.SetValue("")
			return m, m.ownedInput.Focus()
		}

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.updateResaleViewport()
		}

	case "down", "j":
		if m.cursor < len(copyTargets(st))-1 {
			m.cursor++
			m.updateResaleViewport()
		}

	case "left", "h", "right", "l":
		if ids := ownedTokens(st); len(ids) > 0 {
			delta := 1
			if key == "left" || key == "h" {
				delta = -1
			}
			m.ownedCursor = clampCursor(m.ownedCursor+delta, len(ids))
		}

	case "enter":
		if ids := ownedTokens(st); len(ids) > 0 {
			return m, m.lookupToken(ids[clampCursor(m.ownedCursor, len(ids))])
		}

	case "c":
		targets := copyTargets(st)
		if len(targets) > 0 {
			addr := targets[clampCursor(m.cursor, len(targets))]
			if err := clipboard.WriteAll(addr); err != nil {
				m.statusMessage = fmt.Sprintf("Clipboard error: %v", err)
			} else {
				m.statusMessage = "Address copied to clipboard!"
			}
			return m, clearStatusAfter()
		}

	case "o":
		if url := imageTarget(st, m.cursor); url != "" {
			if err := openBrowser(url); err != nil {
				m.statusMessage = fmt.Sprintf("Failed to open browser: %v", err)
			} else {
				m.statusMessage = "Opened image in browser"
			}
			return m, clearStatusAfter()
		}
	}

	return m, nil
}

func (m *model) updateResaleViewport() {
	st := m.states[dashboard.ViewResale]
	m.viewport.SetContent(resaleContent(st.Resale, m.cursor, m.msgs, m.format))
	if m.active == dashboard.ViewResale {
		m.viewport.SetYOffset(cursorOffset(m.cursor, m.viewport.YOffset, m.viewport.Height))
	}
}
