package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"dayboard/internal/config"
	"dayboard/internal/group"
	"dayboard/internal/store"
	"dayboard/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
)

type field int

const (
	fieldTitle field = iota
	fieldDescription
)

// row is one selectable line of the list: a day header or a task inside an
// expanded day.
type row struct {
	group  int
	task   *task.Task
	header bool
}

type Model struct {
	store      *store.Store
	cfg        config.Config
	loc        *time.Location
	logger     *log.Logger
	groups     []group.Group
	expanded   map[string]bool
	rows       []row
	cursor     int
	mode       mode
	focus      field
	title      textinput.Model
	desc       textarea.Model
	status     string
	confirmDel bool
	pendingDel *task.Task
}

// New builds the list model over an already loaded store.
func New(s *store.Store, cfg config.Config, loc *time.Location, logger *log.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	ta := textarea.New()
	ta.Placeholder = "Task description (optional)"
	ta.ShowLineNumbers = false
	ta.SetWidth(42)
	ta.SetHeight(3)

	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.Default()
	}

	m := Model{
		store:    s,
		cfg:      cfg,
		loc:      loc,
		logger:   logger,
		expanded: map[string]bool{},
		title:    ti,
		desc:     ta,
		mode:     modeList,
		status:   fmt.Sprintf("Press '%s' to add, '%s' to open a day.", cfg.Keys.Add, cfg.Keys.Fold),
	}
	m.refresh()
	if cfg.ExpandLatest && len(m.groups) > 0 {
		m.expanded[m.groups[0].Label] = true
		m.rebuildRows()
	}
	return m
}

// Run loads the store and drives the terminal UI until the user quits.
func Run(s *store.Store, cfg config.Config, logger *log.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	s.Load()
	program := tea.NewProgram(New(s, cfg, loc, logger), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		if m.mode == modeAdd {
			return m.updateAddMode(msg.String(), msg)
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		if msg.Width > 12 {
			m.title.Width = msg.Width - 10
			m.desc.SetWidth(msg.Width - 8)
		}
	}
	return m, nil
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case m.cfg.Keys.Cancel:
		m = m.closeForm()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Submit:
		return m.submit()
	case m.cfg.Keys.NextField, "shift+tab":
		return m.switchField()
	}
	if m.focus == fieldTitle && key == m.cfg.Keys.Confirm {
		return m.switchField()
	}

	var cmd tea.Cmd
	if m.focus == fieldTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.desc, cmd = m.desc.Update(msg)
	}
	return m, cmd
}

func (m Model) switchField() (tea.Model, tea.Cmd) {
	if m.focus == fieldTitle {
		m.focus = fieldDescription
		m.title.Blur()
		return m, m.desc.Focus()
	}
	m.focus = fieldTitle
	m.desc.Blur()
	return m, m.title.Focus()
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	added, err := m.store.Add(m.title.Value(), strings.TrimSpace(m.desc.Value()))
	if errors.Is(err, task.ErrEmptyTitle) {
		m.status = "Title cannot be empty"
		return m, nil
	}
	if err != nil {
		m.logger.Error("add failed", "err", err)
		m.status = fmt.Sprintf("save failed: %v", err)
	} else {
		m.status = "Added task"
	}
	m = m.closeForm()
	m.refresh()
	m.focusTask(added.ID)
	return m, nil
}

func (m Model) closeForm() Model {
	m.mode = modeList
	m.focus = fieldTitle
	m.title.SetValue("")
	m.title.Blur()
	m.desc.SetValue("")
	m.desc.Blur()
	return m
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.rows))
	case m.cfg.Keys.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(m.rows))
	case m.cfg.Keys.Add:
		m.mode = modeAdd
		m.focus = fieldTitle
		m.status = "New task: tab switches field, " + m.cfg.Keys.Submit + " saves, " + m.cfg.Keys.Cancel + " cancels"
		return m, m.title.Focus()
	case m.cfg.Keys.Fold:
		m.fold()
	case m.cfg.Keys.ExpandAll:
		for _, g := range m.groups {
			m.expanded[g.Label] = true
		}
		m.rebuildRows()
	case m.cfg.Keys.CollapseAll:
		m.expanded = map[string]bool{}
		m.rebuildRows()
		m.cursor = clampCursor(m.cursor, len(m.rows))
	case m.cfg.Keys.Toggle:
		r, ok := m.current()
		if !ok {
			return m, nil
		}
		if r.header {
			m.fold()
			return m, nil
		}
		id := r.task.ID
		if err := m.store.Toggle(id); err != nil {
			m.logger.Error("toggle failed", "id", id, "err", err)
			m.status = fmt.Sprintf("toggle failed: %v", err)
		} else {
			m.status = "Toggled task"
		}
		m.refresh()
		m.focusTask(id)
	case m.cfg.Keys.Delete:
		r, ok := m.current()
		if !ok || r.header {
			return m, nil
		}
		t := *r.task
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		if err := m.store.Delete(m.pendingDel.ID); err != nil {
			m.logger.Error("delete failed", "id", m.pendingDel.ID, "err", err)
			m.status = fmt.Sprintf("delete failed: %v", err)
		} else {
			m.status = "Deleted task"
		}
		m.refresh()
		m.cursor = clampCursor(m.cursor, len(m.rows))
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	default:
		return m, nil
	}
}

// fold opens or closes the day under the cursor. On a task row the cursor
// moves back to its header.
func (m *Model) fold() {
	r, ok := m.current()
	if !ok {
		return
	}
	label := m.groups[r.group].Label
	m.expanded[label] = !m.expanded[label]
	m.rebuildRows()
	for i, rr := range m.rows {
		if rr.header && rr.group == r.group {
			m.cursor = i
			return
		}
	}
}

// refresh recomputes the day groups from the store.
func (m *Model) refresh() {
	groups, err := group.ByDate(m.store.Tasks(), m.loc)
	if err != nil {
		m.logger.Error("grouping failed", "err", err)
		m.status = fmt.Sprintf("cannot group tasks: %v", err)
		groups = nil
	}
	m.groups = groups
	m.rebuildRows()
}

func (m *Model) rebuildRows() {
	m.rows = nil
	for gi, g := range m.groups {
		m.rows = append(m.rows, row{group: gi, header: true})
		if !m.expanded[g.Label] {
			continue
		}
		for ti := range g.Tasks {
			m.rows = append(m.rows, row{group: gi, task: &m.groups[gi].Tasks[ti]})
		}
	}
	m.cursor = clampCursor(m.cursor, len(m.rows))
}

// focusTask expands the day holding id and puts the cursor on it.
func (m *Model) focusTask(id string) {
	for _, g := range m.groups {
		for _, t := range g.Tasks {
			if t.ID == id {
				m.expanded[g.Label] = true
			}
		}
	}
	m.rebuildRows()
	for i, r := range m.rows {
		if !r.header && r.task.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m Model) current() (row, bool) {
	if len(m.rows) == 0 {
		return row{}, false
	}
	return m.rows[clampCursor(m.cursor, len(m.rows))], true
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Todo List"))
	b.WriteString("\n")
	tasks := m.store.Tasks()
	done, _ := group.Counts(tasks)
	b.WriteString(mutedStyle.Render(progressBar(done, len(tasks), 24)))
	b.WriteString("\n\n")

	if m.mode == modeAdd {
		b.WriteString(m.renderForm())
		b.WriteString("\n\n")
	}

	if len(m.groups) == 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("No tasks yet. Press '%s' to add one.", m.cfg.Keys.Add)))
	} else {
		b.WriteString(m.renderRows())
	}

	b.WriteString("\n\n")
	if strings.Contains(m.status, "failed") || strings.Contains(m.status, "cannot") {
		b.WriteString(errorStyle.Render(m.status))
	} else {
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func (m Model) renderForm() string {
	var b strings.Builder
	b.WriteString("Title\n")
	b.WriteString(m.title.View())
	b.WriteString("\n\nDescription\n")
	b.WriteString(m.desc.View())
	return formStyle.Render(b.String())
}

func (m Model) renderRows() string {
	var b strings.Builder
	for i, r := range m.rows {
		cursor := " "
		if i == m.cursor && m.mode == modeList {
			cursor = ">"
		}
		g := m.groups[r.group]
		if r.header {
			arrow := "▸"
			if m.expanded[g.Label] {
				arrow = "▾"
			}
			done, pending := group.Counts(g.Tasks)
			line := fmt.Sprintf("%s %s %s", cursor, arrow, headerStyle.Render(g.Label))
			line += mutedStyle.Render(fmt.Sprintf("  %d pending, %d done", pending, done))
			b.WriteString(line)
			b.WriteString("\n")
			continue
		}
		title := r.task.Title
		if i == m.cursor && m.mode == modeList {
			title = selectedStyle.Render(title)
		}
		b.WriteString(fmt.Sprintf("%s     %s %s\n", cursor, badge(r.task.IsDone), title))
		if r.task.Description != "" {
			for _, line := range strings.Split(r.task.Description, "\n") {
				b.WriteString("       " + mutedStyle.Render(line) + "\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s open/close day • %s toggle • %s delete • %s/%s expand/collapse all • %s quit",
		k.Up, k.Down, k.Add, k.Fold, keyName(k.Toggle), k.Delete, k.ExpandAll, k.CollapseAll, k.Quit)
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
