// Package tui provides a Bubble Tea TUI for browsing run statistics.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/stride/internal/format"
	"github.com/fakeyudi/stride/internal/report"
	"github.com/fakeyudi/stride/internal/session"
	"github.com/fakeyudi/stride/internal/stats"
	"github.com/fakeyudi/stride/internal/tracker"
)

// Palette. Orange accents for effort, green for anything earned.
const (
	colAccent  = lipgloss.Color("208")
	colText    = lipgloss.Color("231")
	colMuted   = lipgloss.Color("244")
	colBar     = lipgloss.Color("236")
	colEarned  = lipgloss.Color("71")
	colHeading = lipgloss.Color("215")
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

var (
	titleStyle       = fg(colText).Background(colAccent).Bold(true).Padding(0, 2)
	activeTabStyle   = fg(colText).Background(colAccent).Bold(true).Padding(0, 1)
	inactiveTabStyle = fg(colMuted).Background(colBar).Padding(0, 1)
	tabSepStyle      = fg(colMuted).Background(colBar)
	statusBarStyle   = fg(colMuted).Background(colBar).Padding(0, 1)
	selectedRowStyle = fg(colText).Background(lipgloss.Color("238")).Bold(true)

	sectionHeader = fg(colHeading).Bold(true).Underline(true)
	labelStyle    = fg(lipgloss.Color("180"))
	dimStyle      = fg(colMuted)
	timeStyle     = fg(lipgloss.Color("222"))
	barStyle      = fg(colAccent)
	unlockStyle   = fg(colEarned).Bold(true)
)

type tabID int

const (
	tabOverview tabID = iota
	tabRecords
	tabWeekly
	tabMonthly
	tabHistory
	tabAchievements
	tabCount
)

var tabNames = [tabCount]string{
	"Overview", "Records", "Weekly", "Monthly", "History", "Achievements",
}

// barWidth is the widest distance bar in the Weekly and Monthly tabs.
const barWidth = 30

// Data is everything the viewer shows. Runs are newest first.
type Data struct {
	Stats        stats.RunStatistics
	Runs         []session.Run
	Achievements []tracker.Progress
	Units        string
	Location     *time.Location
	Now          time.Time
}

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	data      Data
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
	sortAsc   bool
	// History tab only.
	runCursor    int
	expandedRuns map[int]bool
}

// New creates a new TUI model over d.
func New(d Data) Model {
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Now.IsZero() {
		d.Now = time.Now()
	}
	return Model{
		data:         d,
		expandedRuns: make(map[int]bool),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1", "2", "3", "4", "5", "6":
			m.activeTab = tabID(msg.String()[0] - '1')
		case "s":
			if m.activeTab == tabWeekly || m.activeTab == tabMonthly {
				m.sortAsc = !m.sortAsc
				m.rebuild(tabWeekly, tabMonthly)
			}
		case "up", "k":
			if m.activeTab == tabHistory && m.runCursor > 0 {
				m.runCursor--
				m.rebuild(tabHistory)
				return m, nil
			}
		case "down", "j":
			if m.activeTab == tabHistory && m.runCursor < len(m.data.Runs)-1 {
				m.runCursor++
				m.rebuild(tabHistory)
				return m, nil
			}
		case "enter", " ":
			if m.activeTab == tabHistory && len(m.data.Runs) > 0 {
				if m.expandedRuns[m.runCursor] {
					delete(m.expandedRuns, m.runCursor)
				} else {
					m.expandedRuns[m.runCursor] = true
				}
				m.rebuild(tabHistory)
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Width(m.width).Render(fmt.Sprintf("  stride  %d runs", m.data.Stats.TotalRuns)),
		m.tabBar(),
		m.viewports[m.activeTab].View(),
		m.footer(),
	)
}

func (m Model) tabBar() string {
	parts := make([]string, 0, 2*int(tabCount))
	for t := range tabCount {
		style := inactiveTabStyle
		if t == m.activeTab {
			style = activeTabStyle
		}
		if t > 0 {
			parts = append(parts, tabSepStyle.Render("│"))
		}
		parts = append(parts, style.Render(fmt.Sprintf(" %d %s ", t+1, tabNames[t])))
	}
	return lipgloss.NewStyle().Background(colBar).Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
}

func (m Model) footer() string {
	keys := []string{"←/→ tab", "↑/↓ scroll", "1-6 jump", "q quit"}
	switch m.activeTab {
	case tabWeekly, tabMonthly:
		order := "newest first"
		if m.sortAsc {
			order = "oldest first"
		}
		keys = append(keys, "s sort ("+order+")")
	case tabHistory:
		keys = append(keys, "↑/↓ select", "enter splits")
	}
	left := "  " + strings.Join(keys, "  ")
	right := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	gap := max(1, m.width-lipgloss.Width(left)-len(right)-2)
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) initViewports() {
	// Title, tab bar and footer take one row each.
	h := max(1, m.height-3)
	for t := range tabCount {
		m.viewports[t] = viewport.New(m.width, h)
		m.viewports[t].SetContent(m.renderTab(t))
	}
}

func (m *Model) rebuild(tabs ...tabID) {
	if !m.ready {
		return
	}
	for _, t := range tabs {
		m.viewports[t].SetContent(m.renderTab(t))
	}
}

func (m *Model) renderTab(t tabID) string {
	switch t {
	case tabOverview:
		return m.renderOverview()
	case tabRecords:
		return m.renderRecords()
	case tabWeekly:
		return m.renderWeekly()
	case tabMonthly:
		return m.renderMonthly()
	case tabHistory:
		return m.renderHistory()
	case tabAchievements:
		return m.renderAchievements()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func row(sb *strings.Builder, label, value string) {
	sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-18s", label)) + "  " + value + "\n")
}

func (m *Model) renderOverview() string {
	st := m.data.Stats
	u := m.data.Units
	var sb strings.Builder
	sb.WriteString(heading("Totals"))
	row(&sb, "Runs:", fmt.Sprintf("%d", st.TotalRuns))
	row(&sb, "Distance:", format.Distance(st.TotalDistanceKm, u))
	row(&sb, "Time:", format.DurationWords(st.TotalDurationSeconds))
	row(&sb, "Calories:", format.Calories(st.TotalCaloriesKcal))
	row(&sb, "Average pace:", format.PaceIn(st.AveragePaceMinPerKm, u))
	row(&sb, "Runs per week:", fmt.Sprintf("%.1f", st.AverageRunsPerWeek))

	sb.WriteString(heading("Consistency"))
	row(&sb, "Current streak:", fmt.Sprintf("%d days", st.CurrentStreakDays))
	row(&sb, "Longest streak:", fmt.Sprintf("%d days", st.LongestStreakDays))
	if st.LastRunDate != nil {
		row(&sb, "Last run:", format.Relative(*st.LastRunDate, m.data.Now))
	}
	if d, ok := st.MostActiveWeekday(); ok {
		row(&sb, "Favourite day:", d.String())
	}
	if h, ok := st.MostActiveHour(); ok {
		row(&sb, "Favourite hour:", fmt.Sprintf("%02d:00", h))
	}
	return sb.String()
}

func (m *Model) renderRecords() string {
	st := m.data.Stats
	u := m.data.Units
	var sb strings.Builder
	sb.WriteString(heading("Personal Bests"))
	if st.TotalRuns == 0 {
		sb.WriteString(dimStyle.Render("  (no runs yet)") + "\n")
		return sb.String()
	}
	record := func(label, value, runID string) {
		row(&sb, label, value+"  "+dimStyle.Render(m.runDate(runID)))
	}
	record("Best pace:", format.PaceIn(st.BestPaceMinPerKm, u), st.BestPaceRunID)
	record("Longest run:", format.Distance(st.LongestDistanceKm, u), st.LongestDistanceRunID)
	record("Longest time:", format.Duration(st.LongestDurationSeconds), st.LongestDurationRunID)
	return sb.String()
}

func (m *Model) runDate(id string) string {
	for _, r := range m.data.Runs {
		if r.ID == id {
			return r.StartedAt.In(m.data.Location).Format("2006-01-02")
		}
	}
	return ""
}

// bar renders km as a bar scaled against top.
func bar(km, top float64) string {
	n := 0
	if top > 0 {
		n = int(km / top * barWidth)
	}
	if km > 0 && n == 0 {
		n = 1
	}
	return barStyle.Render(strings.Repeat("█", n)) + strings.Repeat(" ", barWidth-n)
}

func bucketRows[K interface {
	comparable
	fmt.Stringer
}](sb *strings.Builder, keys []K, buckets map[K]stats.Bucket, asc bool, units string) {
	if len(keys) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return
	}
	var top float64
	for _, b := range buckets {
		if b.DistanceKm > top {
			top = b.DistanceKm
		}
	}
	for i := range keys {
		k := keys[i]
		if !asc {
			k = keys[len(keys)-1-i]
		}
		b := buckets[k]
		fmt.Fprintf(sb, "  %s  %s  %s  %s\n",
			timeStyle.Render(k.String()),
			bar(b.DistanceKm, top),
			format.Distance(b.DistanceKm, units),
			dimStyle.Render(fmt.Sprintf("%d runs", b.Runs)))
	}
}

func (m *Model) renderWeekly() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Weekly (%d)", len(m.data.Stats.Weekly))))
	bucketRows(&sb, m.data.Stats.Weeks(), m.data.Stats.Weekly, m.sortAsc, m.data.Units)
	return sb.String()
}

func (m *Model) renderMonthly() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Monthly (%d)", len(m.data.Stats.Monthly))))
	bucketRows(&sb, m.data.Stats.Months(), m.data.Stats.Monthly, m.sortAsc, m.data.Units)
	return sb.String()
}

func (m *Model) renderHistory() string {
	var sb strings.Builder
	u := m.data.Units
	sb.WriteString(heading(fmt.Sprintf("History (%d)", len(m.data.Runs))))
	if len(m.data.Runs) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for i, r := range m.data.Runs {
		toggle := dimStyle.Render("  ▶ ")
		expanded := m.expandedRuns[i]
		if expanded {
			toggle = dimStyle.Render("  ▼ ")
		}
		line := fmt.Sprintf("%s%s  %s  %s  %s", toggle,
			timeStyle.Render(r.StartedAt.In(m.data.Location).Format("2006-01-02 15:04")),
			format.Distance(r.TotalDistanceKm, u),
			format.Duration(r.ActiveDurationSeconds),
			format.PaceIn(r.PaceMinPerKm, u))
		if i == m.runCursor {
			line = selectedRowStyle.Width(m.width - 2).Render(line)
		}
		sb.WriteString(line + "\n")

		if expanded {
			splits := report.Splits(r)
			if len(splits) == 0 {
				sb.WriteString(dimStyle.Render("        no full kilometre recorded") + "\n")
			}
			for _, s := range splits {
				fmt.Fprintf(&sb, "        km %-3d %s  %s\n", s.Km, format.Duration(s.DurationSeconds), format.Pace(s.PaceMinPerKm))
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (m *Model) renderAchievements() string {
	var sb strings.Builder
	unlocked := 0
	for _, a := range m.data.Achievements {
		if a.Unlocked {
			unlocked++
		}
	}
	sb.WriteString(heading(fmt.Sprintf("Achievements (%d/%d)", unlocked, len(m.data.Achievements))))
	for _, a := range m.data.Achievements {
		mark := dimStyle.Render("  ○ ")
		status := fmt.Sprintf("%3d%%", a.Percent)
		if a.Unlocked {
			mark = unlockStyle.Render("  ● ")
			status = unlockStyle.Render("done")
			if a.UnlockedAt != nil {
				status += dimStyle.Render(" " + a.UnlockedAt.In(m.data.Location).Format("2006-01-02"))
			}
		}
		fmt.Fprintf(&sb, "%s%-16s %-8s %s  %s\n", mark, a.Title, a.Tier, status, dimStyle.Render(a.Description))
	}
	return sb.String()
}

// Plain renders every tab one after another, for terminals that cannot
// host the interactive viewer.
func Plain(d Data) string {
	m := New(d)
	m.width = 80
	var sb strings.Builder
	for t := tabID(0); t < tabCount; t++ {
		if t == tabHistory {
			continue
		}
		sb.WriteString(m.renderTab(t))
	}
	return sb.String()
}

// Run starts the TUI over d.
func Run(d Data) error {
	p := tea.NewProgram(New(d), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
