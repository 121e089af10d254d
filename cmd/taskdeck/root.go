package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"taskdeck/internal/app"
	"taskdeck/internal/config"
	"taskdeck/internal/editor"
	"taskdeck/internal/logging"
	"taskdeck/internal/storage"
	"taskdeck/internal/task"
	"taskdeck/internal/ui"
)

// Execute runs the CLI with the given arguments and writers and returns the
// process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRoot(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// session is everything a command needs, opened from the config file.
type session struct {
	cfg    config.Config
	logger *log.Logger
	store  *storage.Store
	ctrl   *app.Controller
	logs   io.Closer
}

func openSession(cmd *cobra.Command) (*session, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, logs, err := logging.Open(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		_ = logs.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	ctrl, err := app.New(store,
		app.WithLogger(logger),
		app.WithDefaultView(task.View(cfg.DefaultView)),
		app.WithProfileName(cfg.ProfileName),
	)
	if err != nil {
		_ = store.Close()
		_ = logs.Close()
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, store: store, ctrl: ctrl, logs: logs}, nil
}

func (s *session) Close() error {
	return errors.Join(s.store.Close(), s.logs.Close())
}

// withSession opens a session around fn.
func withSession(fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		return fn(cmd, args, s)
	}
}

// NewRoot creates the root command. Without a subcommand it starts the
// terminal UI.
func NewRoot(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taskdeck",
		Short: "A personal task manager",
		Long:  "taskdeck keeps your tasks, projects and due dates in a local database.",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			return ui.Run(s.ctrl, s.cfg, s.logger)
		}),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("config", "", "Path to config file (default $TASKDECK_CONFIG or the user config dir)")

	cmd.AddCommand(newListCmd(stdout))
	cmd.AddCommand(newAddCmd(stdout))
	cmd.AddCommand(newDoneCmd(stdout))
	cmd.AddCommand(newRemoveCmd(stdout))
	cmd.AddCommand(newProjectsCmd(stdout))
	return cmd
}

func newListCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in a view",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			view := s.ctrl.State().ActiveView
			if v, _ := cmd.Flags().GetString("view"); v != "" {
				view = task.View(v)
			}
			query, _ := cmd.Flags().GetString("search")
			tasks := s.ctrl.VisibleIn(view, query)

			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				data, err := task.EncodeTasks(tasks)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(stdout, data)
				return err
			}

			projects := s.ctrl.State().Projects
			now := s.ctrl.Now()
			_, _ = fmt.Fprintln(stdout, view.Title(projects))
			if len(tasks) == 0 {
				_, _ = fmt.Fprintln(stdout, "No tasks")
				return nil
			}
			if view == task.ViewUpcoming {
				for _, b := range task.Group(tasks, now) {
					_, _ = fmt.Fprintf(stdout, "\n%s\n", b.Label)
					printTasks(stdout, b.Tasks, projects, now)
				}
				return nil
			}
			printTasks(stdout, tasks, projects, now)
			return nil
		}),
		SilenceUsage: true,
	}
	cmd.Flags().StringP("view", "v", "", "View to list (inbox, today, upcoming, important, completed, project-<id>)")
	cmd.Flags().StringP("search", "s", "", "Only tasks whose title or description contains this text")
	cmd.Flags().Bool("json", false, "Output in JSON format")
	return cmd
}

func printTasks(w io.Writer, tasks []task.Task, projects []task.Project, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		title := t.Title
		if t.Important {
			title += " *"
		}
		project := ""
		if p, ok := task.FindProject(projects, t.ProjectID()); ok {
			project = "#" + p.Name
		}
		due := ""
		if t.DueDate != nil {
			due = strings.TrimSpace(task.DateLabel(*t.DueDate, now) + " " + t.DueTimeText())
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", box, title, project, due, t.ID)
	}
	_ = tw.Flush()
}

func newAddCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			now := s.ctrl.Now()
			t := task.Task{
				ID:        uuid.NewString(),
				Title:     strings.TrimSpace(strings.Join(args, " ")),
				CreatedAt: &now,
			}
			if t.Title == "" {
				return app.ErrEmptyTitle
			}
			t.Important, _ = cmd.Flags().GetBool("important")
			desc, _ := cmd.Flags().GetString("description")
			t.Description = task.StringPtr(desc)

			if project, _ := cmd.Flags().GetString("project"); project != "" {
				if _, ok := task.FindProject(s.ctrl.State().Projects, project); !ok {
					return fmt.Errorf("unknown project: %s", project)
				}
				t.Project = &project
			}

			due, _ := cmd.Flags().GetString("due")
			clock, _ := cmd.Flags().GetString("time")
			if due != "" {
				d, err := time.ParseInLocation("2006-01-02", due, now.Location())
				if err != nil {
					return fmt.Errorf("invalid --due %q: want YYYY-MM-DD", due)
				}
				t.DueDate = &d
			}
			if clock != "" {
				if t.DueDate == nil {
					return errors.New("--time needs --due")
				}
				h, m, p, ok := editor.ParseClock(clock)
				if !ok {
					return fmt.Errorf("invalid --time %q: want h:mm AM", clock)
				}
				formatted := editor.FormatClock(h, m, p)
				t.DueTime = &formatted
			}

			if err := s.ctrl.SaveTask(t); err != nil {
				return err
			}
			_, err := fmt.Fprintf(stdout, "Added %s (%s)\n", t.Title, t.ID)
			return err
		}),
		SilenceUsage: true,
	}
	cmd.Flags().String("due", "", "Due date in YYYY-MM-DD format")
	cmd.Flags().String("time", "", "Due time like \"9:30 AM\" (requires --due)")
	cmd.Flags().StringP("project", "p", "", "Project id")
	cmd.Flags().BoolP("important", "i", false, "Mark the task important")
	cmd.Flags().StringP("description", "d", "", "Task description")
	return cmd
}

func newDoneCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between done and pending",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			if err := s.ctrl.ToggleCompleted(args[0]); err != nil {
				return err
			}
			t, _ := s.ctrl.Task(args[0])
			state := "pending"
			if t.Completed {
				state = "done"
			}
			_, err := fmt.Fprintf(stdout, "%s is %s\n", t.Title, state)
			return err
		}),
		SilenceUsage: true,
	}
}

func newRemoveCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			if err := s.ctrl.DeleteTask(args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(stdout, "Deleted %s\n", args[0])
			return err
		}),
		SilenceUsage: true,
	}
}

func newProjectsCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Show projects with their open task counts",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			projects := s.ctrl.State().Projects
			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				data, err := task.EncodeProjects(projects)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(stdout, data)
				return err
			}
			tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
			for _, p := range projects {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", p.ID, p.Name, p.Count)
			}
			_ = tw.Flush()
			stats := s.ctrl.Stats()
			_, err := fmt.Fprintf(stdout, "\n%d of %d done, %d remaining\n", stats.Completed, stats.Total, stats.Remaining)
			return err
		}),
		SilenceUsage: true,
	}
	cmd.Flags().Bool("json", false, "Output in JSON format")
	return cmd
}
