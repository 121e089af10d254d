package task

// DefaultProjects is the project set seeded on first run.
func DefaultProjects() []Project {
	return []Project{
		{ID: "school", Name: "School"},
		{ID: "home", Name: "Home"},
		{ID: "random", Name: "Random"},
		{ID: "friends", Name: "Friends"},
	}
}

// Aggregate returns projects with Count set to the number of incomplete
// tasks referencing each one. Tasks naming unknown projects are ignored.
// The input slice is left untouched.
func Aggregate(tasks []Task, projects []Project) []Project {
	counts := make(map[string]int, len(projects))
	for _, t := range tasks {
		if t.Completed || t.Project == nil {
			continue
		}
		counts[*t.Project]++
	}
	out := make([]Project, len(projects))
	for i, p := range projects {
		p.Count = counts[p.ID]
		out[i] = p
	}
	return out
}

func FindProject(projects []Project, id string) (Project, bool) {
	for _, p := range projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}
