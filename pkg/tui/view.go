package tui

import (
	"fmt"
	"strings"

	"nftdash/pkg/dashboard"
	"nftdash/pkg/format"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var viewNames = map[dashboard.ViewID]string{
	dashboard.ViewTimeBased:     "Overview",
	dashboard.ViewBuyersSellers: "Buyers/Sellers",
	dashboard.ViewMarketplace:   "Marketplaces",
	dashboard.ViewResale:        "Resale",
	dashboard.ViewToken:         "Token",
}

func (m model) View() string {
	if m.showHelp {
		return m.viewHelp()
	}

	if m.enteringToken {
		return m.viewPrompt("Token Lookup", "Token ID (0-9999):", m.tokenInput.View())
	}

	if m.enteringOwned {
		return m.viewPrompt("Wallet Tokens", "Wallet address:", m.ownedInput.View())
	}

	content := m.viewContent()

	footerText := "1-5/tab: views • [/]: interval • r: refresh • t: token • ?: help • q: quit"
	footerText += fmt.Sprintf(" • v%s", Version)
	var footer string
	if m.width > 0 {
		footer = subtleStyle.Width(m.width).Align(lipgloss.Center).Render(footerText)
	} else {
		footer = subtleStyle.Render(footerText)
	}
	if m.statusMessage != "" {
		footer = lipgloss.JoinVertical(lipgloss.Center, infoStyle.Render(m.statusMessage), footer)
	}

	topBar := m.viewTopBar()

	h := m.height - 1
	if h < 0 {
		h = 0
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		topBar,
		lipgloss.Place(
			m.width,
			h,
			lipgloss.Center,
			lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center, content, "\n", footer),
		),
	)
}

func (m model) viewTopBar() string {
	var tabs []string
	for i, id := range dashboard.Views {
		label := fmt.Sprintf("%d %s", i+1, viewNames[id])
		if id == m.active {
			tabs = append(tabs, titleStyle.Render(label))
		} else {
			tabs = append(tabs, subtleStyle.Render(" "+label+" "))
		}
	}
	leftBlock := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	lastUpd := "never"
	if !m.lastUpdate.IsZero() {
		lastUpd = m.lastUpdate.Format("15:04:05")
	}
	rightBlock := subtleStyle.Render(fmt.Sprintf("%s • %s ", m.state().Interval.Label(), lastUpd))

	gap := m.width - lipgloss.Width(leftBlock) - lipgloss.Width(rightBlock)
	if gap < 0 {
		gap = 0
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, leftBlock, strings.Repeat(" ", gap), rightBlock)
}

func (m model) viewPrompt(title, label, input string) string {
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(title),
			"\n",
			label,
			input,
			"\n",
			subtleStyle.Render("Enter to submit • Esc to cancel"),
		)),
	)
}

func (m model) viewContent() string {
	st := m.state()

	switch st.Status {
	case dashboard.StatusLoading:
		return boxStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.msgs.Loading))
	case dashboard.StatusErrored:
		body := errStyle.Render(st.Message)
		if st.View == dashboard.ViewToken && st.Token != nil {
			body = lipgloss.JoinVertical(lipgloss.Left, m.viewTokenHeader(st.Token), "", body)
		}
		return boxStyle.Render(body)
	case dashboard.StatusInactive:
		if st.View == dashboard.ViewToken {
			return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
				subtleStyle.Render("Press t to look up a token ID."),
				m.viewOwned(st.Owned),
			))
		}
		return ""
	}

	switch st.View {
	case dashboard.ViewTimeBased:
		return m.viewTimeBased(st)
	case dashboard.ViewBuyersSellers:
		return m.viewBuyersSellers(st)
	case dashboard.ViewMarketplace:
		return m.viewMarketplace(st)
	case dashboard.ViewResale:
		return m.viewResale(st)
	case dashboard.ViewToken:
		return m.viewToken(st)
	}
	return ""
}

func (m model) viewTimeBased(st dashboard.ViewState) string {
	s := st.Summary
	if s == nil {
		return boxStyle.Render(subtleStyle.Render(m.msgs.NoData))
	}
	rows := [][2]string{
		{m.msgs.TotalVolume, s.TotalVolume},
		{m.msgs.AveragePrice, s.AveragePrice},
		{m.msgs.TradeCount, s.TransactionCount},
		{m.msgs.HighestPrice, s.HighestPrice},
		{m.msgs.HighestPriceToken, s.HighestPriceTokenID},
	}
	if s.Details != nil {
		rows = append(rows, [2]string{m.msgs.RarityRank, s.Details.RarityRank})
	}

	labelStyle := lipgloss.NewStyle().Width(24)
	var lines []string
	for _, r := range rows {
		lines = append(lines, labelStyle.Render(r[0])+" "+infoStyle.Render(r[1]))
	}
	if s.Details != nil {
		lines = append(lines, subtleStyle.Render(format.TruncateString(s.Details.ImageURL, 60)))
	}
	if st.Status == dashboard.StatusEmpty {
		lines = append(lines, "", subtleStyle.Render(m.msgs.NoData))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m model) chartWidth(columns int) int {
	w := m.width
	if w <= 0 {
		w = 100
	}
	return w/columns - 6
}

func (m model) viewBuyersSellers(st dashboard.ViewState) string {
	if st.Status == dashboard.StatusEmpty {
		return boxStyle.Render(subtleStyle.Render(m.msgs.NoData))
	}
	width := m.chartWidth(2)
	currency := m.format.Currency
	left := renderBars(st.Buyers, width, currency)
	right := renderBars(st.Sellers, width, currency)
	if left == "" {
		left = subtleStyle.Render(m.msgs.NoData)
	}
	if right == "" {
		right = subtleStyle.Render(m.msgs.NoData)
	}

	var selected string
	if targets := copyTargets(st); len(targets) > 0 {
		selected = subtleStyle.Render("> " + targets[clampCursor(m.cursor, len(targets))] + "  (c: copy)")
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.JoinHorizontal(lipgloss.Top, boxStyle.Render(left), boxStyle.Render(right)),
		selected,
	)
}

func (m model) viewMarketplace(st dashboard.ViewState) string {
	if st.Status == dashboard.StatusEmpty || st.Marketplace == nil {
		return boxStyle.Render(subtleStyle.Render(m.msgs.NoData))
	}
	value := m.format.Currency
	if st.Metric == dashboard.MetricTradeCount {
		value = func(v float64) string { return m.format.Count(int64(v)) }
	}
	chart := renderShares(st.Marketplace, m.chartWidth(1), m.format, value)
	return lipgloss.JoinVertical(lipgloss.Center,
		boxStyle.Render(chart),
		subtleStyle.Render(fmt.Sprintf("m: show %s", m.metricTitle(otherMetric(st.Metric)))),
	)
}

func (m model) metricTitle(metric dashboard.Metric) string {
	if metric == dashboard.MetricTradeCount {
		return m.msgs.TradeComparison
	}
	return m.msgs.VolumeComparison
}

func (m model) viewResale(st dashboard.ViewState) string {
	if st.Status == dashboard.StatusEmpty || len(st.Resale) == 0 {
		return boxStyle.Render(subtleStyle.Render(m.msgs.NoData))
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		boxStyle.Render(m.viewport.View()),
		subtleStyle.Render("↑/↓: select • c: copy seller • o: open image"),
	)
}

func (m model) viewTokenHeader(p *dashboard.TokenPanel) string {
	rank := p.Details.RarityRank
	if p.Enrichment == dashboard.OutcomeDegraded {
		rank = errStyle.Render(rank)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Token ID %d", p.TokenID)),
		fmt.Sprintf("%s: %s", m.msgs.RarityRank, rank),
		subtleStyle.Render(format.TruncateString(p.Details.ImageURL, 60)),
	)
}

func (m model) viewToken(st dashboard.ViewState) string {
	p := st.Token
	if p == nil {
		return boxStyle.Render(subtleStyle.Render(m.msgs.NoData))
	}
	sections := []string{m.viewTokenHeader(p), ""}

	if p.Chart.Len() == 0 {
		sections = append(sections, subtleStyle.Render(m.msgs.NoData))
	} else {
		height := m.height - 20
		if height < 5 {
			height = 5
		}
		graph := asciigraph.Plot(p.Chart.Series.Values,
			asciigraph.Height(height),
			asciigraph.Width(m.chartWidth(1)-12),
			asciigraph.Caption(p.Chart.Title),
		)
		lineStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Chart.ColorAt(0)))
		sections = append(sections, lineStyle.Render(graph), "")

		targets := copyTargets(st)
		cursor := clampCursor(m.cursor, len(targets))
		if labels := p.Chart.Series.Labels; len(labels) > 0 {
			sections = append(sections, subtleStyle.Render(fmt.Sprintf("%s: %s → %s", m.msgs.SoldDate, labels[0], labels[len(labels)-1])))
		}
		if cursor < len(p.Transactions) {
			tx := p.Transactions[cursor]
			line := fmt.Sprintf("> %s  %s  %s", tx.SoldDate, m.format.Currency(tx.Price), format.Address(tx.BuyerAddress))
			if tx.TransactionHash != "" {
				line += "  " + subtleStyle.Render(format.TruncateString(tx.TransactionHash, 20))
			}
			sections = append(sections, line)
		}
	}

	sections = append(sections, m.viewOwned(st.Owned))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m model) viewOwned(p *dashboard.OwnedPanel) string {
	if p == nil {
		return subtleStyle.Render("w: list tokens held by a wallet")
	}
	head := format.Address(p.Address)
	switch p.Status {
	case dashboard.StatusLoading:
		return fmt.Sprintf("%s %s %s", head, m.spinner.View(), m.msgs.Loading)
	case dashboard.StatusErrored:
		return fmt.Sprintf("%s %s", head, errStyle.Render(p.Message))
	case dashboard.StatusEmpty:
		return fmt.Sprintf("%s %s", head, subtleStyle.Render(p.Message))
	}
	ids := make([]string, len(p.TokenIDs))
	selected := clampCursor(m.ownedCursor, len(p.TokenIDs))
	for i, id := range p.TokenIDs {
		if i == selected {
			ids[i] = titleStyle.Render(id)
		} else {
			ids[i] = infoStyle.Render(id)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s: %s", head, strings.Join(ids, " ")),
		subtleStyle.Render("←/→: select • enter: look up token"),
	)
}

func (m model) viewHelp() string {
	shortcuts := []string{
		"1-5: Switch view",
		"tab/shift+tab: Next/Previous view",
		"[/]: Previous/Next interval",
		"r: Refresh active view",
		"t or /: Look up a token ID",
		"w: Tokens held by a wallet (token view)",
		"←/→ enter: Pick a wallet token (token view)",
		"m: Toggle volume/trade count (marketplace view)",
		"↑/k ↓/j: Select row",
		"c: Copy selected address",
		"o: Open image in browser",
		"?: Toggle help",
		"q/ctrl+c: Quit",
	}
	if m.configPath != "" {
		shortcuts = append(shortcuts, "", subtleStyle.Render("Config: "+m.configPath))
	}
	content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Keyboard Shortcuts"),
		"\n",
		strings.Join(shortcuts, "\n"),
	))
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, content, "\n", subtleStyle.Render("?/q/esc: back")),
	)
}
