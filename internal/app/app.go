// Package app owns the application state. Every change goes through a
// command on Controller, which computes the next snapshot, persists the
// keys it touched in one write and only then makes the snapshot current.
package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"taskdeck/internal/logging"
	"taskdeck/internal/storage"
	"taskdeck/internal/task"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrEmptyTitle   = errors.New("task title is empty")
)

// State is an immutable snapshot; callers get copies.
type State struct {
	Tasks      []task.Task
	Projects   []task.Project
	ActiveView task.View
	Profile    task.Profile
}

func (s State) clone() State {
	c := s
	c.Tasks = make([]task.Task, len(s.Tasks))
	for i, t := range s.Tasks {
		c.Tasks[i] = t.Clone()
	}
	c.Projects = append([]task.Project(nil), s.Projects...)
	return c
}

type Controller struct {
	store  storage.KV
	logger *log.Logger
	now    func() time.Time
	state  State
}

type Option func(*Controller)

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithDefaultView sets the view used when none has been persisted yet.
func WithDefaultView(v task.View) Option {
	return func(c *Controller) { c.state.ActiveView = v }
}

// WithProfileName sets the username of a profile created on first run.
func WithProfileName(name string) Option {
	return func(c *Controller) { c.state.Profile.Username = name }
}

// New loads state from store. Missing or malformed entries fall back to
// empty tasks, the default project set and the default view.
func New(store storage.KV, opts ...Option) (*Controller, error) {
	c := &Controller{
		store: store,
		now:   time.Now,
		state: State{ActiveView: task.ViewToday},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) load() error {
	next := State{
		ActiveView: c.state.ActiveView,
		Profile:    task.DefaultProfile(c.state.Profile.Username),
	}

	raw, ok, err := c.store.Get(storage.KeyTasks)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	if ok {
		tasks, rejected, err := task.DecodeTasks(raw)
		if err != nil {
			c.logger.Warn("stored tasks unreadable, starting empty", "err", err)
		}
		for _, r := range rejected {
			c.logger.Warn("dropped stored task", "err", r)
		}
		next.Tasks = tasks
	}
	if next.Tasks == nil {
		next.Tasks = []task.Task{}
	}

	seeded := false
	raw, ok, err = c.store.Get(storage.KeyProjects)
	if err != nil {
		return fmt.Errorf("load projects: %w", err)
	}
	if ok {
		projects, rejected, err := task.DecodeProjects(raw)
		if err != nil {
			c.logger.Warn("stored projects unreadable, using defaults", "err", err)
		}
		for _, r := range rejected {
			c.logger.Warn("dropped stored project", "err", r)
		}
		next.Projects = projects
	}
	if len(next.Projects) == 0 {
		next.Projects = task.DefaultProjects()
		seeded = true
	}
	next.Projects = task.Aggregate(next.Tasks, next.Projects)

	raw, ok, err = c.store.Get(storage.KeyActiveTab)
	if err != nil {
		return fmt.Errorf("load active tab: %w", err)
	}
	if ok && strings.TrimSpace(raw) != "" {
		next.ActiveView = task.View(strings.TrimSpace(raw))
	}

	raw, ok, err = c.store.Get(storage.KeyProfile)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if ok {
		p, err := task.DecodeProfile(raw)
		if err != nil {
			c.logger.Warn("stored profile unreadable, using defaults", "err", err)
		} else {
			next.Profile = p
		}
	}

	c.state = next
	c.logger.Info("state loaded", "tasks", len(next.Tasks), "projects", len(next.Projects), "view", next.ActiveView)

	if seeded {
		c.seedProjects()
	}
	return nil
}

// seedProjects persists the default projects. A failed write is logged and
// the in-memory defaults stay in use; the next task command writes them.
func (c *Controller) seedProjects() {
	data, err := task.EncodeProjects(c.state.Projects)
	if err == nil {
		err = c.store.SetMany(map[string]string{storage.KeyProjects: data})
	}
	if err != nil {
		c.logger.Warn("seed default projects failed", "err", err)
		return
	}
	c.logger.Info("seeded default projects")
}

// State returns a copy of the current snapshot.
func (c *Controller) State() State {
	return c.state.clone()
}

func (c *Controller) Now() time.Time {
	return c.now()
}

func (c *Controller) Task(id string) (task.Task, bool) {
	for _, t := range c.state.Tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return task.Task{}, false
}

// Visible is the task list for the active view.
func (c *Controller) Visible(query string) []task.Task {
	return c.VisibleIn(c.state.ActiveView, query)
}

func (c *Controller) VisibleIn(view task.View, query string) []task.Task {
	return task.Filter(c.State().Tasks, view, query, c.now())
}

// Upcoming returns the upcoming view grouped by due date.
func (c *Controller) Upcoming(query string) []task.Bucket {
	now := c.now()
	return task.Group(task.Filter(c.State().Tasks, task.ViewUpcoming, query, now), now)
}

func (c *Controller) Stats() task.Stats {
	return task.Summarize(c.state.Tasks)
}

// SaveTask inserts t, or replaces the task with the same id.
func (c *Controller) SaveTask(t task.Task) error {
	if !t.Valid() {
		return ErrEmptyTitle
	}
	if t.ID == "" {
		return errors.New("task id is empty")
	}
	t = t.Clone()
	t.Title = strings.TrimSpace(t.Title)
	if t.DueDate == nil {
		t.DueTime = nil
	}

	next := c.state.clone()
	replaced := false
	for i := range next.Tasks {
		if next.Tasks[i].ID == t.ID {
			next.Tasks[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		next.Tasks = append(next.Tasks, t)
	}
	if err := c.commitTasks(next); err != nil {
		return err
	}
	c.logger.Info("task saved", "id", t.ID, "created", !replaced)
	return nil
}

func (c *Controller) DeleteTask(id string) error {
	next := c.state.clone()
	kept := next.Tasks[:0]
	found := false
	for _, t := range next.Tasks {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	next.Tasks = kept
	if err := c.commitTasks(next); err != nil {
		return err
	}
	c.logger.Info("task deleted", "id", id)
	return nil
}

func (c *Controller) ToggleCompleted(id string) error {
	return c.updateTask(id, func(t *task.Task) { t.Completed = !t.Completed })
}

func (c *Controller) ToggleImportant(id string) error {
	return c.updateTask(id, func(t *task.Task) { t.Important = !t.Important })
}

func (c *Controller) updateTask(id string, fn func(*task.Task)) error {
	next := c.state.clone()
	for i := range next.Tasks {
		if next.Tasks[i].ID == id {
			fn(&next.Tasks[i])
			if err := c.commitTasks(next); err != nil {
				return err
			}
			c.logger.Debug("task updated", "id", id)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

// commitTasks recounts projects for next, writes tasks and projects
// together and swaps the snapshot.
func (c *Controller) commitTasks(next State) error {
	next.Projects = task.Aggregate(next.Tasks, next.Projects)
	tasksJSON, err := task.EncodeTasks(next.Tasks)
	if err != nil {
		return err
	}
	projectsJSON, err := task.EncodeProjects(next.Projects)
	if err != nil {
		return err
	}
	err = c.store.SetMany(map[string]string{
		storage.KeyTasks:    tasksJSON,
		storage.KeyProjects: projectsJSON,
	})
	if err != nil {
		c.logger.Error("persist tasks failed", "err", err)
		return fmt.Errorf("persist tasks: %w", err)
	}
	c.state = next
	return nil
}

func (c *Controller) SelectView(v task.View) error {
	if err := c.store.Set(storage.KeyActiveTab, string(v)); err != nil {
		c.logger.Error("persist active tab failed", "err", err)
		return fmt.Errorf("persist active tab: %w", err)
	}
	c.state.ActiveView = v
	c.logger.Debug("view selected", "view", v)
	return nil
}

func (c *Controller) UpdateProfile(p task.Profile) error {
	data, err := task.EncodeProfile(p)
	if err != nil {
		return err
	}
	if err := c.store.Set(storage.KeyProfile, data); err != nil {
		c.logger.Error("persist profile failed", "err", err)
		return fmt.Errorf("persist profile: %w", err)
	}
	c.state.Profile = p
	c.logger.Info("profile updated")
	return nil
}
