// Package editor implements the create/edit task dialog as a plain state
// machine. It holds the draft, the calendar cursor and the time picker;
// rendering is left to the caller.
package editor

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/task"
)

type State int

const (
	Closed State = iota
	OpenCreate
	OpenEdit
)

func (s State) String() string {
	switch s {
	case OpenCreate:
		return "open-create"
	case OpenEdit:
		return "open-edit"
	default:
		return "closed"
	}
}

type Period int

const (
	AM Period = iota
	PM
)

func (p Period) String() string {
	if p == PM {
		return "PM"
	}
	return "AM"
}

const (
	defaultHour   = 9
	minuteStep    = 5
	minutesInHour = 60
)

// Draft mirrors the editable task fields.
type Draft struct {
	Title       string
	Description string
	Project     string
	DueDate     *time.Time
	Important   bool
}

type Editor struct {
	state State
	draft Draft

	// carried over from the task being edited
	editID    string
	completed bool
	createdAt *time.Time

	cursorMonth time.Month
	cursorYear  int

	hour    int
	minute  int
	period  Period
	timeSet bool

	datePanel    bool
	projectPanel bool

	now   func() time.Time
	newID func() string
}

type Option func(*Editor)

// WithIDGenerator replaces uuid generation for new tasks.
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) { e.newID = fn }
}

func New(now func() time.Time, opts ...Option) *Editor {
	if now == nil {
		now = time.Now
	}
	e := &Editor{now: now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(e)
	}
	e.reset()
	return e
}

func (e *Editor) State() State { return e.state }
func (e *Editor) IsOpen() bool { return e.state != Closed }
func (e *Editor) Draft() Draft { return e.draft }
func (e *Editor) DatePanelOpen() bool { return e.datePanel }
func (e *Editor) ProjectPanelOpen() bool { return e.projectPanel }

// Cursor is the month shown by the calendar.
func (e *Editor) Cursor() (time.Month, int) { return e.cursorMonth, e.cursorYear }

// Time returns the time picker value.
func (e *Editor) Time() (hour, minute int, period Period) { return e.hour, e.minute, e.period }

func (e *Editor) reset() {
	now := e.now()
	e.draft = Draft{}
	e.editID = ""
	e.completed = false
	e.createdAt = nil
	e.cursorMonth = now.Month()
	e.cursorYear = now.Year()
	e.hour = defaultHour
	e.minute = 0
	e.period = AM
	e.timeSet = false
	e.datePanel = false
	e.projectPanel = false
}

func (e *Editor) OpenCreate() {
	e.reset()
	e.state = OpenCreate
}

func (e *Editor) OpenEdit(t task.Task) {
	e.reset()
	e.state = OpenEdit
	e.editID = t.ID
	e.completed = t.Completed
	if t.CreatedAt != nil {
		c := *t.CreatedAt
		e.createdAt = &c
	}
	e.draft = Draft{
		Title:       t.Title,
		Description: t.DescriptionText(),
		Project:     t.ProjectID(),
		Important:   t.Important,
	}
	if t.DueDate != nil {
		d := task.Midnight(*t.DueDate, e.now().Location())
		e.draft.DueDate = &d
		e.cursorMonth = d.Month()
		e.cursorYear = d.Year()
	}
	if h, m, p, ok := ParseClock(t.DueTimeText()); ok {
		e.hour, e.minute, e.period = h, m, p
		e.timeSet = true
	}
}

// Cancel discards the draft.
func (e *Editor) Cancel() {
	e.Close()
}

// Close returns the editor to Closed, for use once a built task has been
// saved.
func (e *Editor) Close() {
	e.reset()
	e.state = Closed
}

func (e *Editor) SetTitle(s string) { e.draft.Title = s }
func (e *Editor) SetDescription(s string) { e.draft.Description = s }

func (e *Editor) ToggleImportant() {
	e.draft.Important = !e.draft.Important
}

func (e *Editor) ToggleDatePanel() { e.datePanel = !e.datePanel }
func (e *Editor) ToggleProjectPanel() { e.projectPanel = !e.projectPanel }

// SelectProject sets the project reference and closes the picker. An
// empty id clears the reference.
func (e *Editor) SelectProject(id string) {
	e.draft.Project = id
	e.projectPanel = false
}

func (e *Editor) NextMonth() {
	if e.cursorMonth == time.December {
		e.cursorMonth = time.January
		e.cursorYear++
		return
	}
	e.cursorMonth++
}

func (e *Editor) PrevMonth() {
	if e.cursorMonth == time.January {
		e.cursorMonth = time.December
		e.cursorYear--
		return
	}
	e.cursorMonth--
}

// SelectDay sets the due date to day of the displayed month. Days outside
// the month are ignored and false is returned.
func (e *Editor) SelectDay(day int) bool {
	if day < 1 || day > DaysIn(e.cursorMonth, e.cursorYear) {
		return false
	}
	e.draft.DueDate = task.Date(e.cursorYear, e.cursorMonth, day, e.now().Location())
	return true
}

// SelectCell selects a calendar cell; filler cells from adjacent months
// are no-ops.
func (e *Editor) SelectCell(c Cell) bool {
	if !c.InMonth {
		return false
	}
	return e.SelectDay(c.Day)
}

func (e *Editor) ClearDate() {
	e.draft.DueDate = nil
}

func (e *Editor) HourUp() {
	e.hour = e.hour%12 + 1
	e.timeSet = true
}

func (e *Editor) HourDown() {
	e.hour = (e.hour+10)%12 + 1
	e.timeSet = true
}

func (e *Editor) MinuteUp() {
	e.minute = (e.minute + minuteStep) % minutesInHour
	e.timeSet = true
}

func (e *Editor) MinuteDown() {
	e.minute = (e.minute - minuteStep + minutesInHour) % minutesInHour
	e.timeSet = true
}

func (e *Editor) SetPeriod(p Period) {
	e.period = p
	e.timeSet = true
}

func (e *Editor) TogglePeriod() {
	if e.period == AM {
		e.SetPeriod(PM)
		return
	}
	e.SetPeriod(AM)
}

// Clock renders the time picker value as "h:mm AM".
func (e *Editor) Clock() string {
	return FormatClock(e.hour, e.minute, e.period)
}

func (e *Editor) CanCommit() bool {
	return e.IsOpen() && strings.TrimSpace(e.draft.Title) != ""
}

// Build assembles the task from the draft without closing the editor, so
// a failed save can be retried. It returns false when the title is blank.
// A new task keeps the same id and creation time across repeated builds.
func (e *Editor) Build() (task.Task, bool) {
	if !e.CanCommit() {
		return task.Task{}, false
	}
	if e.state == OpenCreate && e.editID == "" {
		e.editID = e.newID()
		now := e.now()
		e.createdAt = &now
	}
	t := task.Task{
		ID:          e.editID,
		Title:       strings.TrimSpace(e.draft.Title),
		Description: task.StringPtr(strings.TrimSpace(e.draft.Description)),
		Project:     task.StringPtr(e.draft.Project),
		Important:   e.draft.Important,
		Completed:   e.completed,
	}
	if e.createdAt != nil {
		created := *e.createdAt
		t.CreatedAt = &created
	}
	if e.draft.DueDate != nil {
		d := *e.draft.DueDate
		t.DueDate = &d
		if e.timeSet {
			clock := e.Clock()
			t.DueTime = &clock
		}
	}
	return t, true
}

// Commit builds the task and closes the editor. It returns false, leaving
// the editor open, when the title is blank.
func (e *Editor) Commit() (task.Task, bool) {
	t, ok := e.Build()
	if !ok {
		return task.Task{}, false
	}
	e.Close()
	return t, true
}

func FormatClock(hour, minute int, p Period) string {
	return fmt.Sprintf("%d:%02d %s", hour, minute, p)
}

// ParseClock parses "h:mm AM" as produced by FormatClock.
func ParseClock(s string) (hour, minute int, p Period, ok bool) {
	var period string
	n, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d %s", &hour, &minute, &period)
	if err != nil || n != 3 {
		return 0, 0, AM, false
	}
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return 0, 0, AM, false
	}
	switch strings.ToUpper(period) {
	case "AM":
		p = AM
	case "PM":
		p = PM
	default:
		return 0, 0, AM, false
	}
	return hour, minute, p, true
}
