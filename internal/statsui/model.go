// Package statsui provides the Bubble Tea race report browser.
package statsui

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/tuirace/internal/dataset"
	"github.com/verte-zerg/tuirace/internal/stats"
)

const (
	tabOverview = iota
	tabStandings
	tabReigns
)

const (
	plotHeight = 10
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#7D56F4"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#3C3C5A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#3C3C5A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(1, 2)
)

// Model implements the Bubble Tea report browser.
type Model struct {
	report    stats.Report
	standings [][]string
	entities  map[string]dataset.Entity

	tabs      []string
	activeTab int
	viewports []viewport.Model
	table     table.Model
	label     int

	width  int
	height int

	keySelection []string

	keyInputMode  bool
	keyInput      textinput.Model
	keyInputError string
}

// NewModel constructs a browser for an analysed dataset. maxCount bounds the
// standings table.
func NewModel(report stats.Report, maxCount int) *Model {
	ds := report.Dataset
	m := &Model{
		report:       report,
		standings:    stats.Standings(ds, maxCount),
		entities:     make(map[string]dataset.Entity, ds.EntityCount()),
		tabs:         []string{"Overview", "Standings", "Reigns"},
		keySelection: append([]string(nil), report.TopKeys...),
	}
	for _, e := range ds.Entities() {
		m.entities[e.Key] = e
	}
	m.initKeyInput()
	m.table = table.New(
		table.WithColumns(standingsColumns()),
		table.WithHeight(1),
	)
	m.table.SetStyles(standingsTableStyles())
	m.initViewports()
	m.refreshStandings()
	m.renderTabContents()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.keyInputMode {
			return m.updateKeyInput(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "[":
			m.moveLabel(-1)
			return m, nil
		case "]":
			m.moveLabel(1)
			return m, nil
		case "enter":
			if m.activeTab == tabOverview {
				return m.startKeyInput()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabStandings {
				m.table.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabStandings {
				m.table.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabStandings {
				var cmd tea.Cmd
				m.table, cmd = m.table.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.keyInputMode {
		return fitLines(m.renderKeyModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initKeyInput() {
	input := textinput.New()
	input.Prompt = "Keys: "
	input.Placeholder = "A, B, C"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	m.keyInput = input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(1, vpHeight-2))
	promptWidth := lipgloss.Width(m.keyInput.Prompt)
	m.keyInput.Width = max(10, modalInnerWidth(m.width)-promptWidth)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabStandings {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

func (m *Model) moveLabel(delta int) {
	next := min(max(0, m.label+delta), len(m.standings)-1)
	if next == m.label {
		return
	}
	m.label = next
	m.refreshStandings()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	ds := m.report.Dataset
	summary := fmt.Sprintf("Dataset: %s  labels=%d  entities=%d  label=%s",
		ds.Name(), ds.Len(), ds.EntityCount(), ds.Label(m.label))
	return tabs + "\n" + padLines(headerStyle.Render(truncateLine(summary, m.width)), m.width)
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Quit: q"
	switch m.activeTab {
	case tabOverview:
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Chart keys: enter  Quit: q"
	case tabStandings:
		help = "Nav: left/right  Label: [/]  Rows: up/down  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabStandings {
		title := cardTitleStyle.Render(fmt.Sprintf("Standings at %s", m.report.Dataset.Label(m.label)))
		if len(m.table.Rows()) == 0 {
			return fitLines(title+"\n\nNo entities.", m.width, height)
		}
		return fitLines(title+"\n\n"+tableMutedStyle.Render(m.table.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshStandings() {
	var keys []string
	if m.label < len(m.standings) {
		keys = m.standings[m.label]
	}
	rows := make([]table.Row, 0, len(keys))
	for i, key := range keys {
		e := m.entities[key]
		prev := ""
		if m.label > 0 {
			prev = movement(m.standings[m.label-1], key, i)
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			key,
			formatValue(e.Values[m.label]),
			prev,
		})
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// movement describes how key moved into rank since the previous standings.
func movement(previous []string, key string, rank int) string {
	for i, k := range previous {
		if k != key {
			continue
		}
		switch {
		case i > rank:
			return fmt.Sprintf("up %d", i-rank)
		case i < rank:
			return fmt.Sprintf("down %d", rank-i)
		default:
			return ""
		}
	}
	return "new"
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(m.renderOverview(width))
	m.viewports[tabReigns].SetContent(m.renderReigns())
}

func (m *Model) renderOverview(width int) string {
	summary := m.renderSummaryCards(width)
	if len(m.keySelection) == 0 {
		return summary + "\n\nNo keys selected. Press Enter to set keys."
	}
	var buf bytes.Buffer
	if err := stats.RenderHistory(&buf, m.report.Dataset, m.keySelection, width, plotHeight, true); err != nil {
		return summary + "\n\n" + errorStyle.Render(fmt.Sprintf("Failed to render history: %v", err))
	}
	header := headerStyle.Render("Keys: " + strings.Join(m.keySelection, ", "))
	return strings.TrimRight(summary+"\n\n"+header+"\n"+buf.String(), "\n")
}

func (m *Model) renderSummaryCards(width int) string {
	longest := stats.Reign{}
	for _, r := range m.report.Reigns {
		if r.Keyframes > longest.Keyframes {
			longest = r
		}
	}
	top := stats.Peak{}
	if len(m.report.Peaks) > 0 {
		top = m.report.Peaks[0]
	}
	ds := m.report.Dataset
	cards := []string{
		metricCard("Labels", strconv.Itoa(ds.Len())),
		metricCard("Entities", strconv.Itoa(ds.EntityCount())),
		metricCard("Lead changes", strconv.Itoa(m.report.LeadChanges)),
		metricCard("Longest reign", fmt.Sprintf("%s (%d)", longest.Key, longest.Keyframes)),
		metricCard("Top peak", fmt.Sprintf("%s %s", top.Key, formatValue(top.Value))),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func (m *Model) renderReigns() string {
	lines := []string{cardValueStyle.Render("Leaders")}
	for _, r := range m.report.Reigns {
		lines = append(lines, fmt.Sprintf("  %-16s %s .. %s  (%d)", r.Key, r.FromLabel, r.ToLabel, r.Keyframes))
	}
	lines = append(lines, "", cardValueStyle.Render("Peaks"))
	for _, p := range m.report.Peaks {
		spark := stats.Sparkline(m.entities[p.Key].Values)
		lines = append(lines, fmt.Sprintf("  %-16s %12s at %-8s %s", p.Key, formatValue(p.Value), p.Label, spark))
	}
	return strings.Join(lines, "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func standingsColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Key", Width: 18},
		{Title: "Value", Width: 14},
		{Title: "Change", Width: 8},
	}
}

func standingsTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#3C3C5A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startKeyInput() (tea.Model, tea.Cmd) {
	m.keyInputMode = true
	m.keyInputError = ""
	m.keyInput.SetValue(strings.Join(m.keySelection, ", "))
	return m, m.keyInput.Focus()
}

func (m *Model) updateKeyInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.keyInputMode = false
		m.keyInputError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyKeyInput(); err != nil {
			m.keyInputError = err.Error()
			return m, nil
		}
		m.keyInputMode = false
		m.keyInputError = ""
		m.renderTabContents()
		return m, nil
	}
	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m *Model) applyKeyInput() error {
	keys := parseKeys(m.keyInput.Value())
	if len(keys) == 0 {
		m.keySelection = append([]string(nil), m.report.TopKeys...)
		return nil
	}
	for _, k := range keys {
		if _, ok := m.entities[k]; !ok {
			return fmt.Errorf("unknown key %q", k)
		}
	}
	m.keySelection = keys
	return nil
}

func (m *Model) renderKeyModal() string {
	body := []string{
		cardValueStyle.Render("Select Keys"),
		m.keyInput.View(),
		headerStyle.Render("Comma separated entity keys. Empty restores the top peaks."),
		headerStyle.Render("Enter to apply / Esc to cancel"),
	}
	if m.keyInputError != "" {
		body = append(body, errorStyle.Render(m.keyInputError))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func parseKeys(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		part = strings.TrimFunc(part, unicode.IsSpace)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}

func formatValue(v float64) string {
	return humanize.CommafWithDigits(math.Round(v*100)/100, 2)
}

func modalWidth(width int) int {
	return max(40, min(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
