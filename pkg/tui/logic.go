package tui

import (
	"fmt"
	"math"
	"strings"

	"nftdash/pkg/dashboard"
	"nftdash/pkg/format"
	"nftdash/pkg/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// resaleCardHeight is the number of lines one resale card takes in the viewport.
const resaleCardHeight = 5

// --- Controller commands ---

func (m model) activate(id dashboard.ViewID) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		_, err := ctrl.Activate(ctx, id)
		return actionDoneMsg{action: "activate", err: err}
	}
}

func (m model) setInterval(interval models.Interval) tea.Cmd {
	ctx, ctrl, id := m.ctx, m.ctrl, m.active
	return func() tea.Msg {
		_, err := ctrl.SetInterval(ctx, id, interval)
		return actionDoneMsg{action: "interval", err: err}
	}
}

func (m model) refresh() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		_, err := ctrl.Refresh(ctx)
		return actionDoneMsg{action: "refresh", err: err}
	}
}

func (m model) toggleMetric(metric dashboard.Metric) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		_, err := ctrl.ToggleMarketplace(metric)
		return actionDoneMsg{action: "metric", err: err}
	}
}

func (m model) lookupToken(raw string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		_, err := ctrl.LookupToken(ctx, raw)
		return actionDoneMsg{action: "token", err: err}
	}
}

func (m model) lookupOwned(address string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		panel, err := ctrl.LookupOwned(ctx, address)
		return ownedDoneMsg{panel: panel, err: err}
	}
}

// --- Navigation ---

// nextView returns the view delta positions away from current, wrapping.
func nextView(current dashboard.ViewID, delta int) dashboard.ViewID {
	n := len(dashboard.Views)
	idx := current.Index()
	if idx < 0 {
		idx = 0
	}
	return dashboard.Views[((idx+delta)%n+n)%n]
}

// shiftInterval moves through the first count intervals, wrapping.
func shiftInterval(current models.Interval, delta, count int) models.Interval {
	if count <= 0 {
		return current
	}
	return models.Interval(((int(current)+delta)%count + count) % count)
}

func otherMetric(metric dashboard.Metric) dashboard.Metric {
	if metric == dashboard.MetricTradeCount {
		return dashboard.MetricVolume
	}
	return dashboard.MetricTradeCount
}

// copyTargets lists the addresses the cursor can select in st.
func copyTargets(st dashboard.ViewState) []string {
	var out []string
	switch st.View {
	case dashboard.ViewBuyersSellers:
		for _, b := range st.TopBuyers {
			out = append(out, format.CanonicalAddress(b.Address))
		}
		for _, s := range st.TopSellers {
			out = append(out, format.CanonicalAddress(s.Address))
		}
	case dashboard.ViewResale:
		for _, r := range st.Resale {
			out = append(out, r.SellerAddress)
		}
	case dashboard.ViewToken:
		if st.Token != nil {
			for _, tx := range st.Token.Transactions {
				out = append(out, format.CanonicalAddress(tx.BuyerAddress))
			}
		}
	}
	return out
}

// ownedTokens returns the token ids listed by a completed wallet lookup on
// the token view.
func ownedTokens(st dashboard.ViewState) []string {
	if st.View != dashboard.ViewToken || st.Owned == nil || st.Owned.Status != dashboard.StatusPopulated {
		return nil
	}
	return st.Owned.TokenIDs
}

// imageTarget returns the image URL the "open" key should launch, or "".
func imageTarget(st dashboard.ViewState, cursor int) string {
	var url string
	switch st.View {
	case dashboard.ViewTimeBased:
		if st.Summary != nil && st.Summary.Details != nil {
			url = st.Summary.Details.ImageURL
		}
	case dashboard.ViewResale:
		if cursor >= 0 && cursor < len(st.Resale) {
			url = st.Resale[cursor].ImageURL
		}
	case dashboard.ViewToken:
		if st.Token != nil {
			url = st.Token.Details.ImageURL
		}
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return ""
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

// --- Chart rendering ---

// barLength scales value against max into at most width cells. Any positive
// value gets at least one cell.
func barLength(value, max float64, width int) int {
	if value <= 0 || max <= 0 || width <= 0 {
		return 0
	}
	n := int(math.Round(value / max * float64(width)))
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return n
}

func maxValue(values []float64) float64 {
	var max float64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}

// renderBars draws a horizontal bar chart of desc.
func renderBars(desc *dashboard.ChartDescriptor, width int, value func(float64) string) string {
	if desc.Len() == 0 {
		return ""
	}
	labelWidth := 0
	for _, l := range desc.Series.Labels {
		if w := lipgloss.Width(l); w > labelWidth {
			labelWidth = w
		}
	}
	barWidth := width - labelWidth - 18
	if barWidth < 5 {
		barWidth = 5
	}
	max := maxValue(desc.Series.Values)

	var b strings.Builder
	b.WriteString(tableHeaderStyle.Render(desc.Title) + "\n")
	for i, v := range desc.Series.Values {
		label := ""
		if i < len(desc.Series.Labels) {
			label = desc.Series.Labels[i]
		}
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(desc.ColorAt(i))).
			Render(strings.Repeat("█", barLength(v, max, barWidth)))
		fmt.Fprintf(&b, "%-*s %s %s\n", labelWidth, label, bar, subtleStyle.Render(value(v)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderShares draws a pie chart as one percentage bar per slice.
func renderShares(desc *dashboard.ChartDescriptor, width int, f *format.Formatter, value func(float64) string) string {
	if desc.Len() == 0 {
		return ""
	}
	total := desc.Total()
	labelWidth := 0
	for _, l := range desc.Series.Labels {
		if w := lipgloss.Width(l); w > labelWidth {
			labelWidth = w
		}
	}
	barWidth := width - labelWidth - 28
	if barWidth < 5 {
		barWidth = 5
	}

	var b strings.Builder
	b.WriteString(tableHeaderStyle.Render(desc.Title) + "\n")
	for i, v := range desc.Series.Values {
		label := ""
		if i < len(desc.Series.Labels) {
			label = desc.Series.Labels[i]
		}
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(desc.ColorAt(i))).
			Render(strings.Repeat("●", barLength(v, total, barWidth)))
		fmt.Fprintf(&b, "%-*s %6s %s %s\n", labelWidth, label, f.Percent(v, total), bar, subtleStyle.Render(value(v)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// resaleContent renders one card per resale entry for the viewport.
func resaleContent(entries []models.ResaleEntry, cursor int, msgs dashboard.Messages, f *format.Formatter) string {
	var cards []string
	for i, e := range entries {
		marker := "  "
		style := lipgloss.NewStyle()
		if i == cursor {
			marker = "> "
			style = style.Bold(true)
		}
		rank := e.RarityRank
		if e.Degraded {
			rank = errStyle.Render(rank)
		}
		lines := []string{
			style.Render(fmt.Sprintf("%s#%d  Token ID %s", marker, i+1, e.TokenID)),
			fmt.Sprintf("    %s: %s   %s: %s", msgs.TotalProfit, f.Currency(e.TotalProfit), msgs.AverageProfit, f.Currency(e.AverageProfit)),
			fmt.Sprintf("    %s: %s   %s: %s", msgs.ResaleCount, f.Count(e.ResaleCount), msgs.RarityRank, rank),
			fmt.Sprintf("    %s: %s", msgs.Seller, format.Address(e.SellerAddress)),
			subtleStyle.Render("    " + format.TruncateString(e.ImageURL, 60)),
		}
		cards = append(cards, strings.Join(lines, "\n"))
	}
	return strings.Join(cards, "\n")
}

// cursorOffset returns the viewport offset that keeps card cursor visible.
func cursorOffset(cursor, current, height int) int {
	top := cursor * resaleCardHeight
	bottom := top + resaleCardHeight
	switch {
	case top < current:
		return top
	case height > 0 && bottom > current+height:
		return bottom - height
	}
	return current
}
