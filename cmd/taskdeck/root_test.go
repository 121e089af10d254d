package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskdeck/internal/task"
)

type cli struct {
	t      *testing.T
	config string
}

func newCLI(t *testing.T) cli {
	return cli{t: t, config: filepath.Join(t.TempDir(), "config.toml")}
}

func (c cli) run(args ...string) (string, string, int) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(append(args, "--config", c.config), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func (c cli) mustRun(args ...string) string {
	c.t.Helper()
	out, errOut, code := c.run(args...)
	if code != 0 {
		c.t.Fatalf("%v exited %d: %s", args, code, errOut)
	}
	return out
}

func (c cli) tasks(view string) []task.Task {
	c.t.Helper()
	out := c.mustRun("list", "--view", view, "--json")
	tasks, rejected, err := task.DecodeTasks(strings.TrimSpace(out))
	if err != nil || len(rejected) > 0 {
		c.t.Fatalf("decode list output: %v %v", err, rejected)
	}
	return tasks
}

func TestAddAndList(t *testing.T) {
	c := newCLI(t)
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	out := c.mustRun("add", "Buy", "cat", "food", "--project", "home", "--due", tomorrow, "--time", "9:05 pm", "-i")
	if !strings.HasPrefix(out, "Added Buy cat food") {
		t.Errorf("add output: %q", out)
	}

	tasks := c.tasks("upcoming")
	if len(tasks) != 1 {
		t.Fatalf("upcoming: %+v", tasks)
	}
	got := tasks[0]
	if got.ProjectID() != "home" || !got.Important || got.DueTimeText() != "9:05 PM" {
		t.Errorf("task: %+v", got)
	}
	if got.CreatedAt == nil {
		t.Error("created time not recorded")
	}

	out = c.mustRun("list", "--view", "upcoming")
	for _, want := range []string{"Upcoming", "Tomorrow", "Buy cat food *", "#Home"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestDoneAndRemove(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "Call John", "--project", "friends")
	id := c.tasks("inbox")[0].ID

	if out := c.mustRun("done", id); !strings.Contains(out, "is done") {
		t.Errorf("done output: %q", out)
	}
	if got := c.tasks("completed"); len(got) != 1 {
		t.Errorf("completed: %+v", got)
	}
	out := c.mustRun("projects")
	if !strings.Contains(out, "1 of 1 done, 0 remaining") {
		t.Errorf("projects output: %q", out)
	}

	c.mustRun("rm", id)
	if got := c.tasks("completed"); len(got) != 0 {
		t.Errorf("task survived rm: %+v", got)
	}
	if _, errOut, code := c.run("rm", id); code != 1 || !strings.Contains(errOut, "task not found") {
		t.Errorf("second rm: code %d, stderr %q", code, errOut)
	}
}

func TestProjectCountsJSON(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "a", "-p", "home")
	c.mustRun("add", "b", "-p", "home")
	out := c.mustRun("projects", "--json")
	projects, _, err := task.DecodeProjects(strings.TrimSpace(out))
	if err != nil {
		t.Fatal(err)
	}
	p, ok := task.FindProject(projects, "home")
	if !ok || p.Count != 2 {
		t.Errorf("home: %+v", p)
	}
	if len(projects) != 4 {
		t.Errorf("projects: %+v", projects)
	}
}

func TestSearch(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "Buy milk")
	c.mustRun("add", "Walk dog", "-d", "and buy treats")
	c.mustRun("add", "Read")
	out := c.mustRun("list", "--view", "inbox", "--search", "BUY")
	if !strings.Contains(out, "Buy milk") || !strings.Contains(out, "Walk dog") || strings.Contains(out, "Read") {
		t.Errorf("search output:\n%s", out)
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"blank title", []string{"add", "  "}, "title is empty"},
		{"unknown project", []string{"add", "x", "-p", "work"}, "unknown project"},
		{"bad date", []string{"add", "x", "--due", "18/10/2026"}, "invalid --due"},
		{"time without date", []string{"add", "x", "--time", "9:00 AM"}, "--time needs --due"},
		{"bad time", []string{"add", "x", "--due", "2026-10-18", "--time", "25:00"}, "invalid --time"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newCLI(t)
			_, errOut, code := c.run(tc.args...)
			if code != 1 || !strings.Contains(errOut, tc.want) {
				t.Errorf("code %d, stderr %q, want %q", code, errOut, tc.want)
			}
			if got := c.tasks("inbox"); len(got) != 0 {
				t.Errorf("task saved: %+v", got)
			}
		})
	}
}

func TestEmptyList(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("list")
	if !strings.Contains(out, "Today") || !strings.Contains(out, "No tasks") {
		t.Errorf("list output: %q", out)
	}
}
