package task

import "testing"

func countOf(projects []Project, id string) int {
	p, ok := FindProject(projects, id)
	if !ok {
		return -1
	}
	return p.Count
}

func TestAggregateCountsIncompleteTasks(t *testing.T) {
	tasks := []Task{
		{ID: "1", Title: "a", Project: StringPtr("home")},
		{ID: "2", Title: "b", Project: StringPtr("home")},
		{ID: "3", Title: "c", Project: StringPtr("home"), Completed: true},
		{ID: "4", Title: "d", Project: StringPtr("ghost")},
		{ID: "5", Title: "e"},
	}
	projects := Aggregate(tasks, DefaultProjects())
	if got := countOf(projects, "home"); got != 2 {
		t.Errorf("home count: got %d, want 2", got)
	}
	if got := countOf(projects, "school"); got != 0 {
		t.Errorf("school count: got %d, want 0", got)
	}
	if _, ok := FindProject(projects, "ghost"); ok {
		t.Error("unknown project id created a phantom project")
	}
	if len(projects) != len(DefaultProjects()) {
		t.Errorf("project count changed: got %d", len(projects))
	}
}

func TestAggregateMatchesLiveRecount(t *testing.T) {
	tasks := sampleTasks()
	projects := Aggregate(tasks, DefaultProjects())
	for _, p := range projects {
		want := 0
		for _, task := range tasks {
			if task.HasProject(p.ID) && !task.Completed {
				want++
			}
		}
		if p.Count != want {
			t.Errorf("%s: got %d, want %d", p.ID, p.Count, want)
		}
	}
}

func TestAggregateAfterDeletingLastReference(t *testing.T) {
	tasks := []Task{
		{ID: "1", Title: "Call John", Project: StringPtr("friends")},
		{ID: "2", Title: "Other", Project: StringPtr("home")},
	}
	if got := countOf(Aggregate(tasks, DefaultProjects()), "friends"); got != 1 {
		t.Fatalf("friends before delete: got %d, want 1", got)
	}
	remaining := tasks[1:]
	if got := countOf(Aggregate(remaining, DefaultProjects()), "friends"); got != 0 {
		t.Errorf("friends after delete: got %d, want 0", got)
	}
}

func TestAggregateOverwritesStaleCounts(t *testing.T) {
	stale := []Project{{ID: "home", Name: "Home", Count: 42}}
	out := Aggregate(nil, stale)
	if out[0].Count != 0 {
		t.Errorf("stale count kept: %d", out[0].Count)
	}
	if stale[0].Count != 42 {
		t.Error("Aggregate modified its input")
	}
}
