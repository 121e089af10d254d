package app

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskdeck/internal/editor"
	"taskdeck/internal/storage"
	"taskdeck/internal/task"
)

var fixedNow = time.Date(2026, time.October, 18, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newController(t *testing.T, store storage.KV) *Controller {
	t.Helper()
	c, err := New(store, WithClock(clock))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func countFor(c *Controller, id string) int {
	p, ok := task.FindProject(c.State().Projects, id)
	if !ok {
		return -1
	}
	return p.Count
}

func recount(t *testing.T, c *Controller) {
	t.Helper()
	s := c.State()
	for _, p := range s.Projects {
		want := 0
		for _, tk := range s.Tasks {
			if tk.HasProject(p.ID) && !tk.Completed {
				want++
			}
		}
		if p.Count != want {
			t.Errorf("project %s drifted: count %d, live %d", p.ID, p.Count, want)
		}
	}
}

func TestFirstRunSeedsProjects(t *testing.T) {
	store := storage.NewMemory()
	c := newController(t, store)
	s := c.State()
	if len(s.Tasks) != 0 {
		t.Errorf("tasks: got %d, want 0", len(s.Tasks))
	}
	if len(s.Projects) != 4 {
		t.Errorf("projects: got %d, want 4", len(s.Projects))
	}
	if s.ActiveView != task.ViewToday {
		t.Errorf("view: got %s, want today", s.ActiveView)
	}
	if _, ok, _ := store.Get(storage.KeyProjects); !ok {
		t.Error("default projects not persisted")
	}
}

func TestCountsFollowMutations(t *testing.T) {
	c := newController(t, storage.NewMemory())
	for i, title := range []string{"a", "b", "c"} {
		err := c.SaveTask(task.Task{ID: string(rune('1' + i)), Title: title, Project: task.StringPtr("home")})
		if err != nil {
			t.Fatalf("SaveTask failed: %v", err)
		}
	}
	if err := c.SaveTask(task.Task{ID: "f", Title: "Call John", Project: task.StringPtr("friends")}); err != nil {
		t.Fatal(err)
	}
	if err := c.ToggleCompleted("3"); err != nil {
		t.Fatal(err)
	}
	if got := countFor(c, "home"); got != 2 {
		t.Errorf("home: got %d, want 2", got)
	}
	recount(t, c)

	if err := c.DeleteTask("f"); err != nil {
		t.Fatal(err)
	}
	if got := countFor(c, "friends"); got != 0 {
		t.Errorf("friends after delete: got %d, want 0", got)
	}
	recount(t, c)

	if err := c.ToggleCompleted("3"); err != nil {
		t.Fatal(err)
	}
	if got := countFor(c, "home"); got != 3 {
		t.Errorf("home after reopening: got %d, want 3", got)
	}
	recount(t, c)
}

func TestSaveTaskReplacesByID(t *testing.T) {
	c := newController(t, storage.NewMemory())
	if err := c.SaveTask(task.Task{ID: "x", Title: "first", Project: task.StringPtr("home")}); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveTask(task.Task{ID: "x", Title: "second", Project: task.StringPtr("school")}); err != nil {
		t.Fatal(err)
	}
	s := c.State()
	if len(s.Tasks) != 1 || s.Tasks[0].Title != "second" {
		t.Fatalf("tasks: %+v", s.Tasks)
	}
	if countFor(c, "home") != 0 || countFor(c, "school") != 1 {
		t.Errorf("counts not moved with project change")
	}
}

func TestSaveTaskValidation(t *testing.T) {
	c := newController(t, storage.NewMemory())
	if err := c.SaveTask(task.Task{ID: "x", Title: "  "}); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("blank title: got %v", err)
	}
	if err := c.SaveTask(task.Task{Title: "no id"}); err == nil {
		t.Error("missing id accepted")
	}
	if len(c.State().Tasks) != 0 {
		t.Error("invalid task stored")
	}
}

func TestUnknownTask(t *testing.T) {
	c := newController(t, storage.NewMemory())
	for name, fn := range map[string]func(string) error{
		"delete":    c.DeleteTask,
		"complete":  c.ToggleCompleted,
		"important": c.ToggleImportant,
	} {
		if err := fn("missing"); !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("%s: got %v, want ErrTaskNotFound", name, err)
		}
	}
}

func TestWriteFailureLeavesStateUnchanged(t *testing.T) {
	store := storage.NewMemory()
	c := newController(t, store)
	if err := c.SaveTask(task.Task{ID: "1", Title: "keep", Project: task.StringPtr("home")}); err != nil {
		t.Fatal(err)
	}
	store.FailWrites = errors.New("quota exceeded")

	if err := c.SaveTask(task.Task{ID: "2", Title: "lost", Project: task.StringPtr("home")}); err == nil {
		t.Fatal("expected write error")
	}
	if err := c.ToggleCompleted("1"); err == nil {
		t.Fatal("expected write error")
	}
	if err := c.SelectView(task.ViewCompleted); err == nil {
		t.Fatal("expected write error")
	}
	s := c.State()
	if len(s.Tasks) != 1 || s.Tasks[0].Completed {
		t.Errorf("state changed despite failed write: %+v", s.Tasks)
	}
	if countFor(c, "home") != 1 {
		t.Errorf("count changed despite failed write")
	}
	if s.ActiveView != task.ViewToday {
		t.Errorf("view changed despite failed write: %s", s.ActiveView)
	}
}

func TestStateIsACopy(t *testing.T) {
	c := newController(t, storage.NewMemory())
	if err := c.SaveTask(task.Task{ID: "1", Title: "orig", Description: task.StringPtr("d")}); err != nil {
		t.Fatal(err)
	}
	s := c.State()
	s.Tasks[0].Title = "mutated"
	*s.Tasks[0].Description = "mutated"
	s.Projects[0].Count = 99

	got, _ := c.Task("1")
	if got.Title != "orig" || got.DescriptionText() != "d" {
		t.Errorf("snapshot shared memory with caller: %+v", got)
	}
	recount(t, c)
}

func TestPersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdeck.db")
	store, err := storage.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	c := newController(t, store)
	due := task.Date(2026, time.October, 19, time.UTC)
	err = c.SaveTask(task.Task{ID: "b", Title: "B", DueDate: due, DueTime: task.StringPtr("9:00 AM"), Project: task.StringPtr("school")})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SelectView(task.ViewUpcoming); err != nil {
		t.Fatal(err)
	}
	p := c.State().Profile
	p.Preferences.DarkMode = true
	if err := c.UpdateProfile(p); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = storage.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	c = newController(t, store)
	s := c.State()
	if s.ActiveView != task.ViewUpcoming {
		t.Errorf("view: got %s", s.ActiveView)
	}
	if len(s.Tasks) != 1 || s.Tasks[0].DueDate == nil || !s.Tasks[0].DueDate.Equal(*due) {
		t.Fatalf("tasks: %+v", s.Tasks)
	}
	if !s.Profile.Preferences.DarkMode {
		t.Error("profile not persisted")
	}
	if countFor(c, "school") != 1 {
		t.Errorf("school count: %d", countFor(c, "school"))
	}
	buckets := c.Upcoming("")
	if len(buckets) != 1 || buckets[0].Label != "Tomorrow" {
		t.Errorf("upcoming buckets: %+v", buckets)
	}
}

func TestLoadFailsClosedOnMalformedStore(t *testing.T) {
	store := storage.NewMemory()
	_ = store.SetMany(map[string]string{
		storage.KeyTasks:     `{not json`,
		storage.KeyProjects:  `"also not"`,
		storage.KeyActiveTab: "  ",
		storage.KeyProfile:   `[]`,
	})
	c, err := New(store, WithClock(clock), WithDefaultView(task.ViewInbox), WithProfileName("kei"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s := c.State()
	if len(s.Tasks) != 0 {
		t.Errorf("tasks: %+v", s.Tasks)
	}
	if len(s.Projects) != len(task.DefaultProjects()) {
		t.Errorf("projects: %+v", s.Projects)
	}
	if s.ActiveView != task.ViewInbox {
		t.Errorf("view: %s", s.ActiveView)
	}
	if s.Profile.Username != "kei" {
		t.Errorf("profile: %+v", s.Profile)
	}
}

func TestLoadFallsBackToDefaultProjects(t *testing.T) {
	cases := map[string]string{
		"not an array":     `"also not"`,
		"null":             `null`,
		"empty array":      `[]`,
		"all rejected":     `[{"id":"","name":"x"},{"name":"no id"}]`,
		"malformed syntax": `[{"id":`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			store := storage.NewMemory()
			_ = store.Set(storage.KeyProjects, raw)
			c := newController(t, store)
			if got := len(c.State().Projects); got != len(task.DefaultProjects()) {
				t.Fatalf("projects: got %d, want defaults", got)
			}
			stored, _, _ := store.Get(storage.KeyProjects)
			projects, _, err := task.DecodeProjects(stored)
			if err != nil || len(projects) != len(task.DefaultProjects()) {
				t.Errorf("defaults not re-seeded: %q", stored)
			}
		})
	}
}

func TestSeedFailureDoesNotFailLoad(t *testing.T) {
	store := storage.NewMemory()
	store.FailWrites = errors.New("read-only")
	c, err := New(store, WithClock(clock))
	if err != nil {
		t.Fatalf("New failed on seed write: %v", err)
	}
	if len(c.State().Projects) != len(task.DefaultProjects()) {
		t.Errorf("projects: %+v", c.State().Projects)
	}
	if _, ok, _ := store.Get(storage.KeyProjects); ok {
		t.Error("projects written despite failing store")
	}

	store.FailWrites = nil
	if err := c.SaveTask(task.Task{ID: "1", Title: "x", Project: task.StringPtr("home")}); err != nil {
		t.Fatal(err)
	}
	stored, ok, _ := store.Get(storage.KeyProjects)
	if !ok || !strings.Contains(stored, `"home"`) {
		t.Errorf("projects not persisted by next command: %q", stored)
	}
}

func TestLoadRecountsStaleProjectCounts(t *testing.T) {
	store := storage.NewMemory()
	_ = store.SetMany(map[string]string{
		storage.KeyTasks:    `[{"id":"1","title":"x","project":"home","completed":false},{"id":"2","title":"y","project":"ghost"}]`,
		storage.KeyProjects: `[{"id":"home","name":"Home","count":12}]`,
	})
	c := newController(t, store)
	if got := countFor(c, "home"); got != 1 {
		t.Errorf("home: got %d, want 1", got)
	}
	if len(c.State().Projects) != 1 {
		t.Error("phantom project created for dangling reference")
	}
}

func TestEditorCommitFlowsIntoController(t *testing.T) {
	c := newController(t, storage.NewMemory())
	e := editor.New(clock)
	e.OpenCreate()
	e.SetTitle("Buy Cat Food")
	e.SelectProject("home")
	e.SelectDay(18)
	tk, ok := e.Commit()
	if !ok {
		t.Fatal("commit rejected")
	}
	if err := c.SaveTask(tk); err != nil {
		t.Fatal(err)
	}
	today := c.Visible("")
	if len(today) != 1 || today[0].Title != "Buy Cat Food" {
		t.Errorf("today view: %+v", today)
	}
	if countFor(c, "home") != 1 {
		t.Error("home count not updated")
	}
	if c.Stats() != (task.Stats{Total: 1, Remaining: 1}) {
		t.Errorf("stats: %+v", c.Stats())
	}
	if got := c.VisibleIn(task.ProjectView("home"), "CAT"); len(got) != 1 {
		t.Errorf("project view search: %+v", got)
	}
	if !strings.HasPrefix(c.State().ActiveView.Title(c.State().Projects), "Today") {
		t.Error("title for today view")
	}
}
