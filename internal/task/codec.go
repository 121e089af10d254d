package task

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const taskSchemaJSON = `{
	"type": "object",
	"required": ["id", "title"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"title": {"type": "string", "pattern": "\\S"},
		"description": {"type": ["string", "null"]},
		"project": {"type": ["string", "null"]},
		"dueDate": {"type": ["string", "null"], "format": "date-time"},
		"dueTime": {"type": ["string", "null"]},
		"important": {"type": "boolean"},
		"completed": {"type": "boolean"},
		"createdAt": {"type": ["string", "null"], "format": "date-time"}
	}
}`

const projectSchemaJSON = `{
	"type": "object",
	"required": ["id", "name"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"name": {"type": "string"},
		"count": {"type": "integer"}
	}
}`

const profileSchemaJSON = `{
	"type": "object",
	"required": ["username"],
	"properties": {
		"username": {"type": "string"},
		"email": {"type": "string"},
		"avatar": {"type": ["string", "null"]},
		"preferences": {
			"type": "object",
			"properties": {
				"darkMode": {"type": "boolean"},
				"emailNotifications": {"type": "boolean"},
				"soundEffects": {"type": "boolean"}
			}
		}
	}
}`

var (
	taskSchema    = mustCompile("mem://task.json", taskSchemaJSON)
	projectSchema = mustCompile("mem://project.json", projectSchemaJSON)
	profileSchema = mustCompile("mem://profile.json", profileSchemaJSON)
)

func mustCompile(url, schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(url, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", url, err))
	}
	s, err := compiler.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", url, err))
	}
	return s
}

// RecordError describes one persisted record that was dropped on load.
type RecordError struct {
	Path string
	Err  error
}

func (e *RecordError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// DecodeTasks parses the persisted task array. A document that is not a
// JSON array is an error; individual records that fail validation are
// dropped and reported in rejected.
func DecodeTasks(data string) (tasks []Task, rejected []error, err error) {
	raw, err := decodeArray(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse tasks: %w", err)
	}
	seen := make(map[string]struct{}, len(raw))
	tasks = make([]Task, 0, len(raw))
	for i, r := range raw {
		path := fmt.Sprintf("tasks[%d]", i)
		if err := validate(taskSchema, r, path); err != nil {
			rejected = append(rejected, err)
			continue
		}
		var t Task
		if err := json.Unmarshal(r, &t); err != nil {
			rejected = append(rejected, &RecordError{Path: path, Err: err})
			continue
		}
		if _, dup := seen[t.ID]; dup {
			rejected = append(rejected, &RecordError{Path: path + ".id", Err: fmt.Errorf("duplicate id %q", t.ID)})
			continue
		}
		seen[t.ID] = struct{}{}
		tasks = append(tasks, normalize(t))
	}
	return tasks, rejected, nil
}

// DecodeProjects parses the persisted project array. Counts are kept as
// stored; callers recompute them with Aggregate.
func DecodeProjects(data string) (projects []Project, rejected []error, err error) {
	raw, err := decodeArray(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse projects: %w", err)
	}
	projects = make([]Project, 0, len(raw))
	for i, r := range raw {
		path := fmt.Sprintf("projects[%d]", i)
		if err := validate(projectSchema, r, path); err != nil {
			rejected = append(rejected, err)
			continue
		}
		var p Project
		if err := json.Unmarshal(r, &p); err != nil {
			rejected = append(rejected, &RecordError{Path: path, Err: err})
			continue
		}
		projects = append(projects, p)
	}
	return projects, rejected, nil
}

func DecodeProfile(data string) (Profile, error) {
	var p Profile
	raw := json.RawMessage(data)
	if err := validate(profileSchema, raw, "profile"); err != nil {
		return p, err
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("parse profile: %w", err)
	}
	return p, nil
}

func EncodeTasks(tasks []Task) (string, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	return string(data), nil
}

func EncodeProjects(projects []Project) (string, error) {
	if projects == nil {
		projects = []Project{}
	}
	data, err := json.Marshal(projects)
	if err != nil {
		return "", fmt.Errorf("marshal projects: %w", err)
	}
	return string(data), nil
}

func EncodeProfile(p Profile) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}
	return string(data), nil
}

func decodeArray(data string) ([]json.RawMessage, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// normalize drops a due time that has no date to attach to and blank
// optional strings.
func normalize(t Task) Task {
	if t.DueDate == nil {
		t.DueTime = nil
	}
	if t.Description != nil {
		t.Description = StringPtr(*t.Description)
	}
	if t.Project != nil {
		t.Project = StringPtr(*t.Project)
	}
	if t.DueTime != nil {
		t.DueTime = StringPtr(*t.DueTime)
	}
	return t
}

func validate(schema *jsonschema.Schema, raw json.RawMessage, path string) error {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &RecordError{Path: path, Err: err}
	}
	err := schema.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &RecordError{Path: path, Err: err}
	}
	leaf := firstLeaf(ve)
	return &RecordError{
		Path: joinPath(path, leaf.InstanceLocation),
		Err:  fmt.Errorf("%s", leaf.Message),
	}
}

func firstLeaf(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}

func joinPath(base, ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return base
	}
	path := base
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		path += "." + part
	}
	return path
}
