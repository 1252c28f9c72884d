package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

var taskHeaders = []string{"ID", "Name", "Status", "Priority", "Due", "Action", "Assignee"}

// NewTasksCommand creates the tasks command group.
func NewTasksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Manage tasks",
		Long:    "List, inspect and delete tasks on actions",
	}

	cmd.AddCommand(newTasksListCommand())
	cmd.AddCommand(newTasksGetCommand())
	cmd.AddCommand(newTasksDeleteCommand())

	return cmd
}

func newTasksListCommand() *cobra.Command {
	var (
		flags    pageFlags
		actionID string
		status   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long:  "List tasks, optionally for one action and with one status (Incomplete or Complete)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var terms []string
			if actionID != "" {
				terms = append(terms, caseapi.Eq("action", caseapi.ID(actionID)))
			}

			if status != "" {
				terms = append(terms, caseapi.Eq("status", status))
			}

			params, err := flags.queryParams(terms...)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			tasks, err := client.Tasks().List(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}

			rows := make([][]string, 0, tasks.Len())
			for _, task := range tasks.Primary {
				rows = append(rows, taskRow(task))
			}

			err = renderOutput(cmd, tasks, taskHeaders, rows)
			if err != nil {
				return err
			}

			return printPaging(cmd, params, tasks.Paging)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&actionID, "action", "", "filter by action ID")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")

	return cmd
}

func newTasksGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get TASK_ID",
		Short: "Get task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			task, err := client.Tasks().Get(cmd.Context(), caseapi.ID(args[0]), nil)
			if err != nil {
				return fmt.Errorf("failed to get task: %w", err)
			}

			values := taskRow(task.Record)

			rows := make([][]string, 0, len(taskHeaders)+1)
			for i, h := range taskHeaders {
				rows = append(rows, []string{h, values[i]})
			}

			rows = append(rows, []string{"Description", orNA(task.Record.Description)})

			return renderOutput(cmd, task, []string{"Property", "Value"}, rows)
		},
	}
}

func newTasksDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete TASK_ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			err = client.Tasks().Delete(cmd.Context(), caseapi.ID(args[0]))
			if err != nil {
				return fmt.Errorf("failed to delete task: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Task %s deleted\n", args[0])

			return nil
		},
	}
}

func taskRow(task caseapi.Task) []string {
	return []string{
		task.ID.String(),
		task.Name,
		orNA(task.Status),
		orNA(task.Priority),
		orNA(task.DueTimestamp),
		orNA(task.Links.Action.String()),
		orNA(task.Links.Assignee.String()),
	}
}
