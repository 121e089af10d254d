// Package task holds the task and project records and the pure logic
// that derives views and project counts from them.
package task

import (
	"strings"
	"time"
)

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Project     *string    `json:"project,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	DueTime     *string    `json:"dueTime,omitempty"`
	Important   bool       `json:"important"`
	Completed   bool       `json:"completed"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

type Project struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Preferences struct {
	DarkMode           bool `json:"darkMode"`
	EmailNotifications bool `json:"emailNotifications"`
	SoundEffects       bool `json:"soundEffects"`
}

type Profile struct {
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Avatar      *string     `json:"avatar,omitempty"`
	Preferences Preferences `json:"preferences"`
}

func DefaultProfile(username string) Profile {
	return Profile{
		Username:    username,
		Preferences: Preferences{EmailNotifications: true},
	}
}

// Valid reports whether the task may be persisted.
func (t Task) Valid() bool {
	return strings.TrimSpace(t.Title) != ""
}

func (t Task) HasProject(id string) bool {
	return t.Project != nil && *t.Project == id
}

func (t Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

func (t Task) ProjectID() string {
	if t.Project == nil {
		return ""
	}
	return *t.Project
}

func (t Task) DueTimeText() string {
	if t.DueTime == nil {
		return ""
	}
	return *t.DueTime
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	c := t
	c.Description = cloneString(t.Description)
	c.Project = cloneString(t.Project)
	c.DueTime = cloneString(t.DueTime)
	c.DueDate = cloneTime(t.DueDate)
	c.CreatedAt = cloneTime(t.CreatedAt)
	return c
}

// StringPtr returns nil for a blank string.
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Midnight returns the start of t's calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Date builds a due date at local midnight.
func Date(year int, month time.Month, day int, loc *time.Location) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, loc)
	return &d
}

// Stats are the sidebar progress counters.
type Stats struct {
	Completed int
	Total     int
	Remaining int
}

func Summarize(tasks []Task) Stats {
	var s Stats
	for _, t := range tasks {
		s.Total++
		if t.Completed {
			s.Completed++
		}
	}
	s.Remaining = s.Total - s.Completed
	return s
}
