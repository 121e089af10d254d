package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/editor"
	"taskdeck/internal/task"
)

type editorField int

const (
	fieldTitle editorField = iota
	fieldDescription
	fieldDate
	fieldProject
	fieldImportant
	fieldCount
)

func (f editorField) label() string {
	switch f {
	case fieldTitle:
		return "Title"
	case fieldDescription:
		return "Description"
	case fieldDate:
		return "Due"
	case fieldProject:
		return "Project"
	default:
		return "Important"
	}
}

// openEditor syncs the inputs from the freshly opened editor draft.
func (m Model) openEditor(status string) (tea.Model, tea.Cmd) {
	d := m.editor.Draft()
	m.mode = modeEditor
	m.field = fieldTitle
	m.title.SetValue(d.Title)
	m.title.CursorEnd()
	m.desc.SetValue(d.Description)
	m.desc.Blur()
	m.gridCursor = m.initialCell()
	m.projectCursor = 0
	for i, p := range m.ctrl.State().Projects {
		if p.ID == d.Project {
			m.projectCursor = i + 1
		}
	}
	m.status = status
	return m, m.title.Focus()
}

// initialCell picks the highlighted grid cell for the cursor month: the
// due date, then today, then the first of the month.
func (m Model) initialCell() int {
	month, year := m.editor.Cursor()
	day := 1
	if due := m.editor.Draft().DueDate; due != nil && due.Month() == month && due.Year() == year {
		day = due.Day()
	} else if now := m.ctrl.Now(); now.Month() == month && now.Year() == year {
		day = now.Day()
	}
	return cellOf(m.editor.Grid(), day)
}

// cellOf returns the grid index of day within the displayed month.
func cellOf(grid []editor.Cell, day int) int {
	for i, c := range grid {
		if c.InMonth && c.Day == day {
			return i
		}
	}
	return 0
}

func (m Model) closeEditor(status string) (tea.Model, tea.Cmd) {
	m.title.Blur()
	m.desc.Blur()
	m.title.SetValue("")
	m.desc.SetValue("")
	m.mode = modeList
	m.status = status
	return m, nil
}

func (m Model) focusField(f editorField) (tea.Model, tea.Cmd) {
	m.field = f
	m.title.Blur()
	m.desc.Blur()
	switch f {
	case fieldTitle:
		return m, m.title.Focus()
	case fieldDescription:
		return m, m.desc.Focus()
	}
	return m, nil
}

func (m Model) updateEditorMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case m.cfg.Keys.Cancel, "esc":
		m.editor.Cancel()
		return m.closeEditor("Cancelled")
	case m.cfg.Keys.Commit:
		return m.commitEditor()
	case m.cfg.Keys.NextField:
		return m.focusField((m.field + 1) % fieldCount)
	case m.cfg.Keys.PrevField:
		return m.focusField((m.field + fieldCount - 1) % fieldCount)
	}

	switch m.field {
	case fieldTitle, fieldDescription:
		if key == m.cfg.Keys.Confirm || key == "enter" {
			return m.focusField(m.field + 1)
		}
		var cmd tea.Cmd
		if m.field == fieldTitle {
			m.title, cmd = m.title.Update(msg)
			m.editor.SetTitle(m.title.Value())
		} else {
			m.desc, cmd = m.desc.Update(msg)
			m.editor.SetDescription(m.desc.Value())
		}
		return m, cmd
	case fieldDate:
		m.updateDateField(key)
	case fieldProject:
		m.updateProjectField(key)
	case fieldImportant:
		if isToggleKey(key, m.cfg.Keys.Toggle) || key == m.cfg.Keys.Confirm || key == "enter" {
			m.editor.ToggleImportant()
		}
	}
	return m, nil
}

func isToggleKey(key, binding string) bool {
	return key == binding || key == " " || key == "space"
}

func (m *Model) updateDateField(key string) {
	if isToggleKey(key, m.cfg.Keys.Toggle) {
		m.editor.ToggleDatePanel()
		return
	}
	k := m.cfg.Keys
	switch key {
	case k.HourUp:
		m.editor.HourUp()
	case k.HourDown:
		m.editor.HourDown()
	case k.MinuteUp:
		m.editor.MinuteUp()
	case k.MinuteDown:
		m.editor.MinuteDown()
	case k.Period:
		m.editor.TogglePeriod()
	case "x":
		m.editor.ClearDate()
	}
	if !m.editor.DatePanelOpen() {
		return
	}
	grid := m.editor.Grid()
	switch key {
	case k.NextMonth:
		m.editor.NextMonth()
		m.gridCursor = cellOf(m.editor.Grid(), 1)
	case k.PrevMonth:
		m.editor.PrevMonth()
		m.gridCursor = cellOf(m.editor.Grid(), 1)
	case "left":
		m.gridCursor = clampCursor(m.gridCursor-1, len(grid))
	case "right":
		m.gridCursor = clampCursor(m.gridCursor+1, len(grid))
	case "up":
		m.gridCursor = clampCursor(m.gridCursor-7, len(grid))
	case "down":
		m.gridCursor = clampCursor(m.gridCursor+7, len(grid))
	case k.Confirm, "enter":
		if m.editor.SelectCell(grid[clampCursor(m.gridCursor, len(grid))]) {
			m.status = "Due " + task.DateLabel(*m.editor.Draft().DueDate, m.ctrl.Now())
		} else {
			month, _ := m.editor.Cursor()
			m.status = "Pick a day in " + month.String()
		}
	}
}

// updateProjectField moves through "No project" followed by every project.
func (m *Model) updateProjectField(key string) {
	if isToggleKey(key, m.cfg.Keys.Toggle) {
		m.editor.ToggleProjectPanel()
		return
	}
	if !m.editor.ProjectPanelOpen() {
		return
	}
	projects := m.ctrl.State().Projects
	switch key {
	case m.cfg.Keys.Down, "down":
		m.projectCursor = clampCursor(m.projectCursor+1, len(projects)+1)
	case m.cfg.Keys.Up, "up":
		m.projectCursor = clampCursor(m.projectCursor-1, len(projects)+1)
	case m.cfg.Keys.Confirm, "enter":
		id := ""
		if m.projectCursor > 0 {
			id = projects[m.projectCursor-1].ID
		}
		m.editor.SelectProject(id)
	}
}

func (m Model) commitEditor() (tea.Model, tea.Cmd) {
	editing := m.editor.State() == editor.OpenEdit
	t, ok := m.editor.Build()
	if !ok {
		m.status = "Title cannot be empty"
		return m.focusField(fieldTitle)
	}
	if err := m.ctrl.SaveTask(t); err != nil {
		m.logger.Error("save task failed", "err", err)
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	m.editor.Close()
	m.refresh()
	for i, v := range m.tasks {
		if v.ID == t.ID {
			m.cursor = i
		}
	}
	if editing {
		return m.closeEditor("Task updated")
	}
	return m.closeEditor("Task added")
}

func (m Model) renderEditor() string {
	d := m.editor.Draft()
	var b strings.Builder
	heading := "New task"
	if m.editor.State() == editor.OpenEdit {
		heading = "Edit task"
	}
	b.WriteString(m.styles.title.Render(heading))
	b.WriteString("\n\n")

	for f := fieldTitle; f < fieldCount; f++ {
		label := fmt.Sprintf("%-12s", f.label())
		if f == m.field {
			label = m.styles.focused.Render("> " + label)
		} else {
			label = "  " + label
		}
		b.WriteString(label)
		b.WriteString(" ")
		switch f {
		case fieldTitle:
			b.WriteString(m.title.View())
		case fieldDescription:
			b.WriteString(m.desc.View())
		case fieldDate:
			b.WriteString(m.draftDue(d))
		case fieldProject:
			b.WriteString(emptyPlaceholder(m.projectName(d.Project)))
		case fieldImportant:
			if d.Important {
				b.WriteString(m.styles.important.Render("★ yes"))
			} else {
				b.WriteString("no")
			}
		}
		b.WriteString("\n")
		if f == fieldDate && m.editor.DatePanelOpen() {
			b.WriteString(m.renderCalendar())
		}
		if f == fieldProject && m.editor.ProjectPanelOpen() {
			b.WriteString(m.renderProjectPicker(d.Project))
		}
	}
	b.WriteString("\n")
	hint := "ctrl+s save • esc cancel • tab next field"
	if m.field == fieldDate {
		k := m.cfg.Keys
		hint = fmt.Sprintf("space calendar • arrows move • %s/%s month • enter pick • %s/%s hour • %s/%s minute • %s am/pm • x clear",
			k.PrevMonth, k.NextMonth, k.HourUp, k.HourDown, k.MinuteUp, k.MinuteDown, k.Period)
	}
	b.WriteString(m.styles.muted.Render(hint))
	return m.styles.modal.Render(b.String())
}

func (m Model) draftDue(d editor.Draft) string {
	clock := m.editor.Clock()
	if d.DueDate == nil {
		return m.styles.muted.Render("No date") + "  " + clock
	}
	return d.DueDate.Format("Mon, Jan 2 2006") + "  " + clock
}

func (m Model) projectName(id string) string {
	if p, ok := task.FindProject(m.ctrl.State().Projects, id); ok {
		return p.Name
	}
	return id
}

func (m Model) renderCalendar() string {
	month, year := m.editor.Cursor()
	due := m.editor.Draft().DueDate
	var b strings.Builder
	b.WriteString(fmt.Sprintf("    %s %d\n", month, year))
	b.WriteString("    Su Mo Tu We Th Fr Sa\n")
	for i, c := range m.editor.Grid() {
		if i%7 == 0 {
			b.WriteString("    ")
		}
		cell := fmt.Sprintf("%2d", c.Day)
		switch {
		case i == m.gridCursor:
			cell = m.styles.selected.Render(cell)
		case !c.InMonth:
			cell = m.styles.filler.Render(cell)
		case isDue(due, year, month, c.Day):
			cell = m.styles.chosen.Render(cell)
		}
		b.WriteString(cell)
		if i%7 == 6 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

func isDue(due *time.Time, year int, month time.Month, day int) bool {
	return due != nil && due.Year() == year && due.Month() == month && due.Day() == day
}

func (m Model) renderProjectPicker(selected string) string {
	var b strings.Builder
	options := []task.Project{{Name: "No project"}}
	options = append(options, m.ctrl.State().Projects...)
	for i, p := range options {
		mark := "( )"
		if p.ID == selected {
			mark = "(•)"
		}
		line := fmt.Sprintf("%s %s", mark, p.Name)
		if i == m.projectCursor {
			line = m.styles.selected.Render(line)
		}
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
