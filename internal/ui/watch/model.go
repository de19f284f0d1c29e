// Package watch implements the live branch divergence view.
//
// The model renders one row per local branch with its ahead/behind
// counts relative to the checked out branch. Counts arrive
// asynchronously: the command layer bridges scheduler events into
// the program as messages, and the model re-reads the shared cache
// on every render.
package watch

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/sahilm/fuzzy"

	"github.com/raphi011/drift/internal/divergence"
	"github.com/raphi011/drift/internal/events"
	"github.com/raphi011/drift/internal/ui/styles"
)

// BranchesMsg carries a fresh branch listing into the view. The
// command layer sends it after every poll, alongside publishing the
// scheduling request on the bus.
type BranchesMsg struct {
	Request divergence.ScheduleRequest
	Rows    []divergence.Branch
}

// UpdatedMsg signals that the comparison cache gained entries and the
// view should re-render.
type UpdatedMsg struct{}

// branchSource adapts branch rows for fuzzy matching on their names.
type branchSource []divergence.Branch

func (s branchSource) String(i int) string { return s[i].Name }
func (s branchSource) Len() int            { return len(s) }

// Options configures a watch model.
type Options struct {
	RepoName string
	Broker   *events.Broker
	Cache    *divergence.Cache
	RangeKey divergence.RangeKeyFunc

	// Pending reports how many comparisons are still queued.
	Pending func() int
}

// Model is the bubbletea model for the watch view.
type Model struct {
	repoName string
	broker   *events.Broker
	cache    *divergence.Cache
	rangeKey divergence.RangeKeyFunc
	pending  func() int

	current divergence.Branch
	rows    []divergence.Branch
	lastReq divergence.ScheduleRequest
	haveReq bool

	spinner spinner.Model
	filter  textinput.Model
	cursor  int
	paused  bool
	note    string

	width  int
	height int
}

// New creates a watch model. The first BranchesMsg populates the rows.
func New(opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Placeholder = "filter branches"
	ti.CharLimit = 64
	ti.SetWidth(32)

	return Model{
		repoName: opts.RepoName,
		broker:   opts.Broker,
		cache:    opts.Cache,
		rangeKey: opts.RangeKey,
		pending:  opts.Pending,
		spinner:  sp,
		filter:   ti,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case BranchesMsg:
		m.current = msg.Request.Current
		m.rows = msg.Rows
		m.lastReq = msg.Request
		m.haveReq = true
		m.clampCursor()
		return m, nil

	case UpdatedMsg:
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	m.note = ""

	if m.filter.Focused() {
		switch msg.String() {
		case "esc":
			m.filter.SetValue("")
			m.filter.Blur()
			m.clampCursor()
			return m, nil
		case "enter":
			m.filter.Blur()
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.clampCursor()
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "/":
		return m, m.filter.Focus()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "y":
		if row, ok := m.selected(); ok {
			if err := clipboard.WriteAll(row.Name); err != nil {
				m.note = styles.ErrorStyle.Render("clipboard unavailable")
			} else {
				m.note = styles.MutedStyle.Render("copied " + row.Name)
			}
		}
	case "r":
		if !m.paused {
			m.republish()
			m.note = styles.MutedStyle.Render("refreshing")
		}
	case "p":
		if m.paused {
			m.paused = false
			m.republish()
		} else {
			m.paused = true
			m.broker.Publish(events.Event{Type: divergence.EventPause})
		}
	}
	return m, nil
}

// republish resends the last scheduling request so abandoned or
// missing comparisons are queued again.
func (m Model) republish() {
	if !m.haveReq {
		return
	}
	m.broker.Publish(events.Event{Type: divergence.EventSchedule, Payload: m.lastReq})
}

// visible returns fuzzy matches over the rows for the current filter.
// An empty filter matches every row in listing order.
func (m Model) visible() []fuzzy.Match {
	query := m.filter.Value()
	if query == "" {
		all := make([]fuzzy.Match, len(m.rows))
		for i, row := range m.rows {
			all[i] = fuzzy.Match{Str: row.Name, Index: i}
		}
		return all
	}
	return fuzzy.FindFrom(query, branchSource(m.rows))
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if n == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
}

func (m Model) selected() (divergence.Branch, bool) {
	matches := m.visible()
	if m.cursor >= len(matches) {
		return divergence.Branch{}, false
	}
	return m.rows[matches[m.cursor].Index], true
}

func (m Model) View() tea.View {
	var b strings.Builder

	b.WriteString(m.titleLine())
	b.WriteString("\n\n")

	if m.filter.Focused() || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	matches := m.visible()
	if len(matches) == 0 {
		if len(m.rows) == 0 {
			b.WriteString(styles.MutedStyle.Render("waiting for branches"))
		} else {
			b.WriteString(styles.MutedStyle.Render("no branches match"))
		}
		b.WriteString("\n")
	}

	for i, match := range matches {
		row := m.rows[match.Index]

		marker := "  "
		name := highlight(row.Name, match.MatchedIndexes)
		if i == m.cursor {
			marker = styles.AccentStyle.Render("> ")
			name = styles.AccentStyle.Render(row.Name)
		}

		b.WriteString(marker)
		b.WriteString(name)
		b.WriteString("  ")
		b.WriteString(m.counts(row))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(styles.InfoStyle.Render("up/down move • / filter • y copy • p pause • r refresh • q quit"))
	if m.note != "" {
		b.WriteString("\n")
		b.WriteString(m.note)
	}

	return tea.NewView(b.String())
}

func (m Model) titleLine() string {
	title := styles.TitleStyle.Render(m.repoName)
	branch := m.current.Name
	if branch == "" {
		branch = "..."
	}
	line := fmt.Sprintf("%s  on %s", title, styles.Bold.Render(branch))
	if m.paused {
		line += "  " + styles.BehindStyle.Render("[paused]")
	}
	return line
}

// counts renders the cached divergence for a row, or a placeholder
// while the comparison is outstanding.
func (m Model) counts(row divergence.Branch) string {
	if row.Tip == "" {
		return styles.MutedStyle.Render("no tip")
	}
	result, ok := m.cache.Get(m.rangeKey(m.current.Tip, row.Tip))
	if !ok {
		if m.paused {
			return styles.MutedStyle.Render("-")
		}
		return m.spinner.View()
	}
	return fmt.Sprintf("%s %s",
		styles.AheadStyle.Render(fmt.Sprintf("↑%d", result.Ahead)),
		styles.BehindStyle.Render(fmt.Sprintf("↓%d", result.Behind)))
}

func (m Model) statusLine() string {
	if m.paused {
		return styles.MutedStyle.Render("paused, press p to resume")
	}
	if n := m.pending(); n > 0 {
		return fmt.Sprintf("%s %s", m.spinner.View(),
			styles.MutedStyle.Render(fmt.Sprintf("comparing %d branches", n)))
	}
	return styles.MutedStyle.Render("up to date")
}

// highlight emphasizes the runes matched by the filter.
func highlight(name string, matched []int) string {
	if len(matched) == 0 {
		return name
	}
	set := make(map[int]bool, len(matched))
	for _, idx := range matched {
		set[idx] = true
	}
	var b strings.Builder
	for i, r := range []rune(name) {
		if set[i] {
			b.WriteString(styles.HighlightStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
