package task

import (
	"sort"
	"strings"
	"time"
)

// View identifies a named filter over the task collection. Project views
// are spelled "project-<id>".
type View string

const (
	ViewInbox     View = "inbox"
	ViewToday     View = "today"
	ViewUpcoming  View = "upcoming"
	ViewImportant View = "important"
	ViewCompleted View = "completed"

	projectViewPrefix = "project-"
)

// BuiltinViews lists the fixed views in sidebar order.
var BuiltinViews = []View{ViewInbox, ViewToday, ViewUpcoming, ViewImportant, ViewCompleted}

func ProjectView(id string) View {
	return View(projectViewPrefix + id)
}

// ProjectID returns the project id of a project view.
func (v View) ProjectID() (string, bool) {
	s := string(v)
	if !strings.HasPrefix(s, projectViewPrefix) {
		return "", false
	}
	return strings.TrimPrefix(s, projectViewPrefix), true
}

// Title is the heading shown above the task list.
func (v View) Title(projects []Project) string {
	switch v {
	case ViewInbox:
		return "Inbox"
	case ViewToday:
		return "Today"
	case ViewUpcoming:
		return "Upcoming"
	case ViewImportant:
		return "Important"
	case ViewCompleted:
		return "Completed"
	}
	if id, ok := v.ProjectID(); ok {
		for _, p := range projects {
			if p.ID == id {
				return p.Name
			}
		}
		return "Project"
	}
	return "Tasks"
}

// Matches reports whether a task satisfies the view predicate. today is
// compared by calendar day in now's location.
func (v View) Matches(t Task, now time.Time) bool {
	switch v {
	case ViewToday:
		return !t.Completed && t.DueDate != nil && dayOf(*t.DueDate, now).Equal(dayOf(now, now))
	case ViewUpcoming:
		return !t.Completed && t.DueDate != nil && dayOf(*t.DueDate, now).After(dayOf(now, now))
	case ViewCompleted:
		return t.Completed
	case ViewImportant:
		return t.Important && !t.Completed
	}
	if id, ok := v.ProjectID(); ok {
		return t.HasProject(id) && !t.Completed
	}
	return !t.Completed
}

// MatchesQuery is a case-insensitive substring match on title or
// description. An empty query matches everything.
func MatchesQuery(t Task, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), q)
}

// Filter returns the tasks to display for view, in collection order.
// tasks is not modified.
func Filter(tasks []Task, view View, query string, now time.Time) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !MatchesQuery(t, query) {
			continue
		}
		if view.Matches(t, now) {
			out = append(out, t)
		}
	}
	return out
}

// Bucket is a group of tasks sharing a due date.
type Bucket struct {
	Date  time.Time
	Label string
	Tasks []Task
}

// Group partitions tasks by due date, buckets in ascending date order and
// tasks within a bucket in input order. Tasks without a due date are
// skipped.
func Group(tasks []Task, now time.Time) []Bucket {
	index := map[time.Time]int{}
	var buckets []Bucket
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		day := dayOf(*t.DueDate, now)
		i, ok := index[day]
		if !ok {
			i = len(buckets)
			index[day] = i
			buckets = append(buckets, Bucket{Date: day, Label: DateLabel(day, now)})
		}
		buckets[i].Tasks = append(buckets[i].Tasks, t)
	}
	sort.SliceStable(buckets, func(a, b int) bool {
		return buckets[a].Date.Before(buckets[b].Date)
	})
	return buckets
}

// DateLabel renders a day as "Today", "Tomorrow" or "Monday, January 2".
func DateLabel(day, now time.Time) string {
	d := dayOf(day, now)
	today := dayOf(now, now)
	switch {
	case d.Equal(today):
		return "Today"
	case d.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	default:
		return d.Format("Monday, January 2")
	}
}

func dayOf(t, now time.Time) time.Time {
	return Midnight(t, now.Location())
}
