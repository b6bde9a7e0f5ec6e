package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/taskflow/internal/api"
	"github.com/nhle/taskflow/internal/client"
	"github.com/nhle/taskflow/internal/model"
)

const dueDateLayout = "2006-01-02"

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var (
	flagListCreated  bool
	flagListAssigned bool
	flagListAll      bool
	flagListPage     int
)

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your tasks (or all tasks with --all, admins only)",
	Args:  cobra.NoArgs,
	RunE:  runTaskList,
}

var (
	flagTaskTitle    string
	flagTaskDesc     string
	flagTaskStatus   string
	flagTaskPriority string
	flagTaskDue      string
	flagTaskAssign   []string
)

var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a task and assign users to it",
	Args:  cobra.NoArgs,
	RunE:  runTaskCreate,
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Edit a task you created",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskUpdate,
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <task-id> <status>",
	Short: "Change the status of a task you are assigned to",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskStatus,
}

var taskPriorityCmd = &cobra.Command{
	Use:   "priority <task-id> <priority>",
	Short: "Change the priority of a task you created",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskPriority,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task you created",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

func init() {
	taskListCmd.Flags().BoolVar(&flagListCreated, "created", false, "only tasks you created")
	taskListCmd.Flags().BoolVar(&flagListAssigned, "assigned", false, "only tasks assigned to you")
	taskListCmd.Flags().BoolVar(&flagListAll, "all", false, "every task in the system (admins only)")
	taskListCmd.Flags().IntVar(&flagListPage, "page", 1, "page of the --all listing")

	taskCreateCmd.Flags().StringVar(&flagTaskTitle, "title", "", "task title")
	taskCreateCmd.Flags().StringVar(&flagTaskDesc, "description", "", "task description")
	taskCreateCmd.Flags().StringVar(&flagTaskStatus, "status", "", "initial status")
	taskCreateCmd.Flags().StringVar(&flagTaskPriority, "priority", "", "initial priority")
	taskCreateCmd.Flags().StringVar(&flagTaskDue, "due", "", "due date (YYYY-MM-DD)")
	taskCreateCmd.Flags().StringSliceVar(&flagTaskAssign, "assign", nil, "assignee user IDs")

	taskUpdateCmd.Flags().StringVar(&flagTaskTitle, "title", "", "new title")
	taskUpdateCmd.Flags().StringVar(&flagTaskDesc, "description", "", "new description")
	taskUpdateCmd.Flags().StringVar(&flagTaskStatus, "status", "", "new status")
	taskUpdateCmd.Flags().StringVar(&flagTaskPriority, "priority", "", "new priority")
	taskUpdateCmd.Flags().StringVar(&flagTaskDue, "due", "", "new due date (YYYY-MM-DD)")
	taskUpdateCmd.Flags().StringSliceVar(&flagTaskAssign, "assign", nil, "replacement assignee user IDs")

	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskStatusCmd)
	taskCmd.AddCommand(taskPriorityCmd)
	taskCmd.AddCommand(taskDeleteCmd)
}

func runTaskList(cmd *cobra.Command, args []string) error {
	c, user, err := newSession()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if flagListAll {
		page, err := c.AllTasks(ctx, flagListPage)
		if err != nil {
			return sessionErr(err)
		}
		state := client.Apply(client.State{User: user}, client.AllTasksFetched{Page: *page})
		printTasks(state.AllTasks)
		fmt.Printf("page %d of %d (%d tasks)\n", state.Page, state.TotalPages, state.Total)
		return nil
	}

	created, err := c.CreatedTasks(ctx)
	if err != nil {
		return sessionErr(err)
	}
	assigned, err := c.AssignedTasks(ctx)
	if err != nil {
		return sessionErr(err)
	}

	state := client.Apply(client.State{User: user},
		client.TasksFetched{Created: created, Assigned: assigned})

	switch {
	case flagListCreated:
		printTasks(state.CreatedTasks())
	case flagListAssigned:
		printTasks(state.AssignedTasks())
	default:
		printTasks(state.Tasks)
	}
	return nil
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	c, _, err := newSession()
	if err != nil {
		return err
	}

	title := flagTaskTitle
	description := flagTaskDesc
	due := flagTaskDue
	priority := flagTaskPriority

	if title == "" {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Title").Value(&title),
			huh.NewInput().Title("Description").Value(&description),
			huh.NewInput().Title("Due date (YYYY-MM-DD)").Value(&due),
			huh.NewSelect[string]().
				Title("Priority").
				Options(huh.NewOptions(model.PriorityLow, model.PriorityMedium, model.PriorityHigh)...).
				Value(&priority),
		))
		if err := form.Run(); err != nil {
			return err
		}
	}

	dueDate, err := parseDueDate(due)
	if err != nil {
		return err
	}

	task, err := c.CreateTask(cmd.Context(), api.CreateTaskRequest{
		Title:       title,
		Description: description,
		Status:      flagTaskStatus,
		Priority:    priority,
		DueDate:     dueDate,
		AssignedTo:  flagTaskAssign,
	})
	if err != nil {
		return sessionErr(err)
	}

	fmt.Printf("created task %s\n", task.ID)
	return nil
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	c, _, err := newSession()
	if err != nil {
		return err
	}

	var req api.UpdateTaskRequest
	if cmd.Flags().Changed("title") {
		req.Title = &flagTaskTitle
	}
	if cmd.Flags().Changed("description") {
		req.Description = &flagTaskDesc
	}
	if cmd.Flags().Changed("status") {
		req.Status = &flagTaskStatus
	}
	if cmd.Flags().Changed("priority") {
		req.Priority = &flagTaskPriority
	}
	if cmd.Flags().Changed("due") {
		dueDate, err := parseDueDate(flagTaskDue)
		if err != nil {
			return err
		}
		req.DueDate = &dueDate
	}
	if cmd.Flags().Changed("assign") {
		req.AssignedTo = &flagTaskAssign
	}

	task, err := c.UpdateTask(cmd.Context(), args[0], req)
	if err != nil {
		return sessionErr(err)
	}

	fmt.Printf("updated task %s\n", task.ID)
	return nil
}

func runTaskStatus(cmd *cobra.Command, args []string) error {
	c, _, err := newSession()
	if err != nil {
		return err
	}

	task, err := c.UpdateStatus(cmd.Context(), args[0], args[1])
	if err != nil {
		return sessionErr(err)
	}

	fmt.Printf("task %s is now %q\n", task.ID, task.Status)
	return nil
}

func runTaskPriority(cmd *cobra.Command, args []string) error {
	c, _, err := newSession()
	if err != nil {
		return err
	}

	task, err := c.UpdateTask(cmd.Context(), args[0], api.UpdateTaskRequest{Priority: &args[1]})
	if err != nil {
		return sessionErr(err)
	}

	fmt.Printf("task %s priority is now %q\n", task.ID, task.Priority)
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	c, _, err := newSession()
	if err != nil {
		return err
	}

	if err := c.DeleteTask(cmd.Context(), args[0]); err != nil {
		return sessionErr(err)
	}

	fmt.Printf("deleted task %s\n", args[0])
	return nil
}

func parseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("due date is required (YYYY-MM-DD)")
	}
	dueDate, err := time.Parse(dueDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad due date %q: expected YYYY-MM-DD", raw)
	}
	return dueDate, nil
}

func printTasks(tasks []api.TaskView) {
	if len(tasks) == 0 {
		fmt.Println("no tasks")
		return
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		assignees := make([]string, 0, len(t.AssignedTo))
		for _, a := range t.AssignedTo {
			assignees = append(assignees, a.Username)
		}
		rows = append(rows, []string{
			t.ID,
			t.Title,
			t.Status,
			t.Priority,
			t.DueDate.Format(dueDateLayout),
			t.CreatedBy.Username,
			strings.Join(assignees, ", "),
		})
	}

	fmt.Print(renderTable(
		[]string{"ID", "TITLE", "STATUS", "PRIORITY", "DUE", "CREATOR", "ASSIGNEES"},
		rows,
	))
}
