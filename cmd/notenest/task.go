package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/notenest/pkg/core"
	"github.com/aretw0/notenest/pkg/query"
	"github.com/aretw0/notenest/pkg/store"
)

var (
	taskSearch string
	taskFilter string
	taskJSON   bool
	taskYes    bool
	remindAt   string
	remindHigh bool
)

var errEmptySubtask = errors.New("subtask text cannot be empty")

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := joinArgs(args)
		if text == "" {
			return errors.New("task text cannot be empty")
		}
		st, err := openStore(cmd)
		if err != nil {
			return err
		}

		state := st.Dispatch(cmd.Context(), store.AddTask{Text: text})
		done(cmd, "%s", state.Tasks[len(state.Tasks)-1].ID)
		return nil
	},
}

// updateTask loads a task, applies fn and dispatches the result.
func updateTask(cmd *cobra.Command, id string, fn func(t core.Task, env store.Env) (core.Task, error)) (core.Task, error) {
	st, err := openStore(cmd)
	if err != nil {
		return core.Task{}, err
	}
	task, ok := st.Snapshot().FindTask(id)
	if !ok {
		return core.Task{}, notFound("task", id)
	}
	task, err = fn(task, st.Env())
	if err != nil {
		return core.Task{}, err
	}
	st.Dispatch(cmd.Context(), store.UpdateTask{Task: task})
	return task, nil
}

func setCompleted(completed bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		task, err := updateTask(cmd, args[0], func(t core.Task, env store.Env) (core.Task, error) {
			if t.Completed != completed {
				t = t.Toggle(core.Millis(env.Clock))
			}
			return t, nil
		})
		if err != nil {
			return err
		}
		done(cmd, "%s %s", checkbox(task.Completed), task.Text)
		return nil
	}
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE:  setCompleted(true),
}

var taskUndoCmd = &cobra.Command{
	Use:   "undo <id>",
	Short: "Mark a task active again",
	Args:  cobra.ExactArgs(1),
	RunE:  setCompleted(false),
}

var taskSubtaskCmd = &cobra.Command{
	Use:   "subtask <id> <text>",
	Short: "Add a subtask",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := joinArgs(args[1:])
		if text == "" {
			return errEmptySubtask
		}
		var sub core.Subtask
		_, err := updateTask(cmd, args[0], func(t core.Task, env store.Env) (core.Task, error) {
			sub = core.Subtask{ID: env.IDs.Next(core.PrefixSubtask), Text: text}
			t = t.WithSubtask(sub)
			t.ModifiedAt = core.Millis(env.Clock)
			return t, nil
		})
		if err != nil {
			return err
		}
		done(cmd, "%s", sub.ID)
		return nil
	},
}

var taskSubtaskDoneCmd = &cobra.Command{
	Use:   "subtask-done <id> <subtask-id>",
	Short: "Toggle a subtask",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := updateTask(cmd, args[0], func(t core.Task, env store.Env) (core.Task, error) {
			t, ok := t.ToggleSubtask(args[1], core.Millis(env.Clock))
			if !ok {
				return t, notFound("subtask", args[1])
			}
			return t, nil
		})
		if err != nil {
			return err
		}
		done(cmd, "toggled %s", args[1])
		return nil
	},
}

var taskRemindCmd = &cobra.Command{
	Use:   "remind <id>",
	Short: "Set or clear a task reminder",
	Long: `Set the reminder time of a task (RFC 3339 or "2006-01-02 15:04" in local
time), or clear it with --at none. Reminders are stored, not scheduled.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reminder, err := parseReminder(remindAt)
		if err != nil {
			return err
		}
		task, err := updateTask(cmd, args[0], func(t core.Task, env store.Env) (core.Task, error) {
			t.Reminder = reminder
			t.HighPriorityReminder = reminder != nil && remindHigh
			t.ModifiedAt = core.Millis(env.Clock)
			return t, nil
		})
		if err != nil {
			return err
		}
		if task.Reminder == nil {
			done(cmd, "cleared reminder for %s", task.ID)
			return nil
		}
		done(cmd, "reminder for %s at %s", task.ID, formatMillis(*task.Reminder))
		return nil
	},
}

func parseReminder(s string) (*int64, error) {
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			ms := t.UnixMilli()
			return &ms, nil
		}
	}
	return nil, fmt.Errorf("invalid reminder time %q", s)
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks (active first)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}

		active, completed := query.SplitTasks(query.SearchTasks(st.Snapshot().Tasks, taskSearch))
		var tasks []core.Task
		switch taskFilter {
		case "active":
			tasks = active
		case "completed":
			tasks = completed
		case "", "all":
			tasks = append(active, completed...)
		default:
			return fmt.Errorf("unknown filter %q (all, active, completed)", taskFilter)
		}

		if taskJSON {
			return writeJSON(cmd, tasks)
		}
		tw := newTable(cmd.OutOrStdout())
		for _, t := range tasks {
			remind := ""
			if t.Reminder != nil {
				remind = "@ " + formatMillis(*t.Reminder)
				if t.HighPriorityReminder {
					remind += " !"
				}
			}
			fmt.Fprintf(tw, "%s\t%s %s\t%s\n", t.ID, checkbox(t.Completed), t.Text, remind)
			for _, s := range t.Subtasks {
				fmt.Fprintf(tw, "\t    %s %s (%s)\t\n", checkbox(s.Completed), s.Text, s.ID)
			}
		}
		return tw.Flush()
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		task, ok := st.Snapshot().FindTask(args[0])
		if !ok {
			return notFound("task", args[0])
		}
		ok, err = confirm(cmd, taskYes, fmt.Sprintf("Delete task %q?", task.Text))
		if err != nil || !ok {
			return err
		}

		st.Dispatch(cmd.Context(), store.DeleteTask{ID: task.ID})
		done(cmd, "deleted %s", task.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskAddCmd, taskDoneCmd, taskUndoCmd, taskSubtaskCmd, taskSubtaskDoneCmd, taskRemindCmd, taskListCmd, taskDeleteCmd)

	taskListCmd.Flags().StringVarP(&taskSearch, "search", "s", "", "Case-insensitive text search")
	taskListCmd.Flags().StringVar(&taskFilter, "filter", "all", "Which tasks: all, active, completed")
	taskListCmd.Flags().BoolVar(&taskJSON, "json", false, "Output in JSON format")
	taskRemindCmd.Flags().StringVar(&remindAt, "at", "", `Reminder time, or "none" to clear`)
	taskRemindCmd.Flags().BoolVar(&remindHigh, "high", false, "High-priority reminder")
	taskRemindCmd.MarkFlagRequired("at")
	taskDeleteCmd.Flags().BoolVarP(&taskYes, "yes", "y", false, "Do not ask for confirmation")
}
