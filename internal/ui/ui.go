package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
	"taskdeck/internal/editor"
	"taskdeck/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeEditor
	modeSettings
)

type Model struct {
	ctrl   *app.Controller
	cfg    config.Config
	logger *log.Logger
	styles styles

	tasks   []task.Task
	buckets []task.Bucket
	cursor  int
	mode    mode
	status  string

	search textinput.Model
	query  string

	editor        *editor.Editor
	title         textinput.Model
	desc          textinput.Model
	field         editorField
	gridCursor    int
	projectCursor int

	settingsCursor int

	confirmDel bool
	pendingDel *task.Task

	copy func(string) error
}

func New(ctrl *app.Controller, cfg config.Config, logger *log.Logger) Model {
	search := textinput.New()
	search.Placeholder = "Search tasks"
	search.Prompt = "/ "
	search.CharLimit = 128
	search.Width = 40

	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 256
	title.Width = 40

	desc := textinput.New()
	desc.Placeholder = "Description (optional)"
	desc.CharLimit = 512
	desc.Width = 40

	m := Model{
		ctrl:   ctrl,
		cfg:    cfg,
		logger: logger,
		styles: newStyles(ctrl.State().Profile.Preferences.DarkMode),
		mode:   modeList,
		status: "Press 'a' to add, space to toggle, 'd' to delete.",
		search: search,
		editor: editor.New(ctrl.Now),
		title:  title,
		desc:   desc,
		copy:   clipboard.WriteAll,
	}
	m.refresh()
	return m
}

func Run(ctrl *app.Controller, cfg config.Config, logger *log.Logger) error {
	program := tea.NewProgram(New(ctrl, cfg, logger), tea.WithAltScreen())
	_, err := program.Run()
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
		switch m.mode {
		case modeEditor:
			return m.updateEditorMode(msg)
		case modeSearch:
			return m.updateSearchMode(msg)
		case modeSettings:
			return m.updateSettingsMode(msg.String())
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		w := msg.Width/2 - 10
		if w < 20 {
			w = 20
		}
		m.search.Width = w
		m.title.Width = w
		m.desc.Width = w
	}
	return m, nil
}

// refresh recomputes the visible list from the controller.
func (m *Model) refresh() {
	view := m.ctrl.State().ActiveView
	m.buckets = nil
	if view == task.ViewUpcoming {
		m.buckets = m.ctrl.Upcoming(m.query)
		m.tasks = make([]task.Task, 0, len(m.buckets))
		for _, b := range m.buckets {
			m.tasks = append(m.tasks, b.Tasks...)
		}
	} else {
		m.tasks = m.ctrl.Visible(m.query)
	}
	m.cursor = clampCursor(m.cursor, len(m.tasks))
}

func (m Model) views() []task.View {
	views := append([]task.View{}, task.BuiltinViews...)
	for _, p := range m.ctrl.State().Projects {
		views = append(views, task.ProjectView(p.ID))
	}
	return views
}

func (m Model) shiftView(delta int) (tea.Model, tea.Cmd) {
	views := m.views()
	current := m.ctrl.State().ActiveView
	idx := 0
	for i, v := range views {
		if v == current {
			idx = i
			break
		}
	}
	next := views[wrapIndex(idx+delta, len(views))]
	if err := m.ctrl.SelectView(next); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	m.cursor = 0
	m.refresh()
	m.status = next.Title(m.ctrl.State().Projects)
	return m, nil
}

func (m Model) selected() (task.Task, bool) {
	if len(m.tasks) == 0 {
		return task.Task{}, false
	}
	return m.tasks[clampCursor(m.cursor, len(m.tasks))], true
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if len(m.tasks) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.tasks))
		}
	case m.cfg.Keys.NextView:
		return m.shiftView(1)
	case m.cfg.Keys.PrevView:
		return m.shiftView(-1)
	case m.cfg.Keys.Add:
		m.editor.OpenCreate()
		return m.openEditor("New task: tab to move between fields, ctrl+s to save, esc to cancel")
	case m.cfg.Keys.Edit:
		t, ok := m.selected()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		m.editor.OpenEdit(t)
		return m.openEditor("Editing task: tab to move between fields, ctrl+s to save, esc to cancel")
	case m.cfg.Keys.Toggle, "space":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.ctrl.ToggleCompleted(t.ID); err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		m.refresh()
		m.status = "Toggled task"
	case m.cfg.Keys.Important:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.ctrl.ToggleImportant(t.ID); err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		m.refresh()
		m.status = "Toggled importance"
	case m.cfg.Keys.Delete:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
	case m.cfg.Keys.Search:
		m.mode = modeSearch
		m.search.SetValue(m.query)
		m.status = "Search: type to filter, enter to keep, esc to clear"
		return m, m.search.Focus()
	case m.cfg.Keys.Settings:
		m.mode = modeSettings
		m.settingsCursor = 0
		m.status = "Settings: space to toggle, esc to return"
	case m.cfg.Keys.Copy:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.copy(t.Title); err != nil {
			m.status = fmt.Sprintf("copy failed: %v", err)
			return m, nil
		}
		m.status = "Copied title"
	}
	return m, nil
}

func (m Model) updateSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.cfg.Keys.Cancel, "esc":
		m.query = ""
		m.search.SetValue("")
		m.search.Blur()
		m.mode = modeList
		m.refresh()
		m.status = "Search cleared"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.search.Blur()
		m.mode = modeList
		m.status = fmt.Sprintf("%d matching", len(m.tasks))
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query = m.search.Value()
	m.cursor = 0
	m.refresh()
	return m, cmd
}

func (m Model) updateSettingsMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case m.cfg.Keys.Cancel, "esc", m.cfg.Keys.Settings:
		m.mode = modeList
		m.status = "Settings closed"
	case m.cfg.Keys.Down, "down":
		m.settingsCursor = clampCursor(m.settingsCursor+1, len(preferenceLabels))
	case m.cfg.Keys.Up, "up":
		m.settingsCursor = clampCursor(m.settingsCursor-1, len(preferenceLabels))
	case m.cfg.Keys.Toggle, "space", m.cfg.Keys.Confirm, "enter":
		p := m.ctrl.State().Profile
		togglePreference(&p.Preferences, m.settingsCursor)
		if err := m.ctrl.UpdateProfile(p); err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
			return m, nil
		}
		m.styles = newStyles(p.Preferences.DarkMode)
		m.status = "Changes saved"
	}
	return m, nil
}

var preferenceLabels = []string{"Dark mode", "Email notifications", "Sound effects"}

func togglePreference(p *task.Preferences, idx int) {
	switch idx {
	case 0:
		p.DarkMode = !p.DarkMode
	case 1:
		p.EmailNotifications = !p.EmailNotifications
	case 2:
		p.SoundEffects = !p.SoundEffects
	}
}

func preferenceValue(p task.Preferences, idx int) bool {
	switch idx {
	case 0:
		return p.DarkMode
	case 1:
		return p.EmailNotifications
	default:
		return p.SoundEffects
	}
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
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
		if err := m.ctrl.DeleteTask(m.pendingDel.ID); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
		} else {
			m.status = "Deleted task"
		}
		m.refresh()
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("taskdeck"))
	b.WriteString("\n\n")

	var main string
	switch m.mode {
	case modeEditor:
		main = m.renderEditor()
	case modeSettings:
		main = m.renderSettings()
	default:
		main = m.renderTaskList() + "\n" + m.renderDetail()
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.sidebar.Render(m.renderSidebar()),
		m.styles.main.Render(main),
	))

	b.WriteString("\n\n")
	if m.mode == modeSearch {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	if m.confirmDel {
		b.WriteString(m.styles.danger.Render(m.status))
	} else {
		b.WriteString(m.styles.status.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render(renderHelp(m.cfg.Keys)))
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s/%s view • %s add • %s edit • space toggle • %s important • %s delete • %s search • %s settings • %s copy • %s quit",
		k.Up, k.Down, k.NextView, k.PrevView, k.Add, k.Edit, k.Important, k.Delete, k.Search, k.Settings, k.Copy, k.Quit)
}

func (m Model) renderSidebar() string {
	s := m.ctrl.State()
	var b strings.Builder
	b.WriteString(m.styles.muted.Render(s.Profile.Username))
	b.WriteString("\n\n")
	for _, v := range task.BuiltinViews {
		count := len(m.ctrl.VisibleIn(v, ""))
		b.WriteString(m.sidebarLine(v.Title(s.Projects), count, v == s.ActiveView))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render("Projects"))
	b.WriteString("\n")
	for _, p := range s.Projects {
		v := task.ProjectView(p.ID)
		b.WriteString(m.sidebarLine("# "+p.Name, p.Count, v == s.ActiveView))
	}
	stats := m.ctrl.Stats()
	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render(fmt.Sprintf("Done %d/%d", stats.Completed, stats.Total)))
	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render(fmt.Sprintf("Left %d", stats.Remaining)))
	return b.String()
}

func (m Model) sidebarLine(label string, count int, active bool) string {
	line := fmt.Sprintf("%-14s %3d", label, count)
	if active {
		return m.styles.active.Render("> "+line) + "\n"
	}
	return "  " + line + "\n"
}

func (m Model) renderTaskList() string {
	s := m.ctrl.State()
	var b strings.Builder
	b.WriteString(m.styles.title.Render(s.ActiveView.Title(s.Projects)))
	if m.query != "" {
		b.WriteString(m.styles.muted.Render(fmt.Sprintf("  matching %q", m.query)))
	}
	b.WriteString("\n")
	pending := 0
	for _, t := range m.tasks {
		if !t.Completed {
			pending++
		}
	}
	b.WriteString(m.styles.muted.Render(fmt.Sprintf("To do (%d)", pending)))
	b.WriteString("\n")

	if len(m.tasks) == 0 {
		b.WriteString("\nNo tasks found. Press 'a' to add one.\n")
		return b.String()
	}

	if m.buckets != nil {
		i := 0
		for _, bucket := range m.buckets {
			b.WriteString(m.styles.header.Render(bucket.Label))
			b.WriteString("\n")
			for _, t := range bucket.Tasks {
				b.WriteString(m.renderTaskLine(i, t))
				i++
			}
		}
		return b.String()
	}
	for i, t := range m.tasks {
		b.WriteString(m.renderTaskLine(i, t))
	}
	return b.String()
}

func (m Model) renderTaskLine(i int, t task.Task) string {
	cursor := " "
	if m.cursor == i && m.mode != modeEditor {
		cursor = ">"
	}
	checkbox := "[ ]"
	if t.Completed {
		checkbox = "[x]"
	}
	title := t.Title
	if t.Completed {
		title = m.styles.done.Render(title)
	}
	body := fmt.Sprintf("%s %s %s", cursor, checkbox, title)
	if t.Important {
		body += " " + m.styles.important.Render("★")
	}
	extras := make([]string, 0, 2)
	if p, ok := task.FindProject(m.ctrl.State().Projects, t.ProjectID()); ok {
		extras = append(extras, m.styles.badge.Render("#"+p.Name))
	}
	if due := m.dueText(t); due != "" {
		extras = append(extras, m.styles.muted.Render(due))
	}
	if len(extras) > 0 {
		body += "  " + strings.Join(extras, " ")
	}
	return body + "\n"
}

func (m Model) dueText(t task.Task) string {
	if t.DueDate == nil {
		return ""
	}
	due := task.DateLabel(*t.DueDate, m.ctrl.Now())
	if t.DueTime != nil {
		due += " " + *t.DueTime
	}
	return due
}

func (m Model) renderDetail() string {
	t, ok := m.selected()
	if !ok {
		return m.styles.muted.Render("No task selected")
	}
	var b strings.Builder
	b.WriteString(m.styles.muted.Render("Details"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Title       : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Description : %s\n", emptyPlaceholder(t.DescriptionText())))
	project := t.ProjectID()
	if p, ok := task.FindProject(m.ctrl.State().Projects, project); ok {
		project = p.Name
	}
	b.WriteString(fmt.Sprintf("Project     : %s\n", emptyPlaceholder(project)))
	b.WriteString(fmt.Sprintf("Due         : %s\n", emptyPlaceholder(m.dueText(t))))
	b.WriteString(fmt.Sprintf("Important   : %t\n", t.Important))
	b.WriteString(fmt.Sprintf("Done        : %s\n", humanDone(t.Completed)))
	if t.CreatedAt != nil {
		b.WriteString(fmt.Sprintf("Created     : %s\n", humanize.RelTime(*t.CreatedAt, m.ctrl.Now(), "ago", "from now")))
	}
	return b.String()
}

func (m Model) renderSettings() string {
	p := m.ctrl.State().Profile
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Settings"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Username : %s\n", emptyPlaceholder(p.Username)))
	b.WriteString(fmt.Sprintf("Email    : %s\n\n", emptyPlaceholder(p.Email)))
	b.WriteString(m.styles.muted.Render("Preferences"))
	b.WriteString("\n")
	for i, label := range preferenceLabels {
		box := "[ ]"
		if preferenceValue(p.Preferences, i) {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, label)
		if i == m.settingsCursor {
			line = m.styles.selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
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

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}
