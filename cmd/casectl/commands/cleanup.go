package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/caseapi-client/internal/constants"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// NewCleanupCommand creates the cleanup command group.
func NewCleanupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove records in bulk",
	}

	var status string

	tasks := &cobra.Command{
		Use:   "tasks ACTION_ID",
		Short: "Delete every task on an action with a given status",
		Long:  "Delete tasks one at a time, stopping at the first failure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if status == "" {
				return constants.ErrStatusRequired
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			deleted, err := client.Cleanup().DeleteTasksByStatus(cmd.Context(), caseapi.ID(args[0]), status)
			if err != nil {
				return fmt.Errorf("deleted %d tasks before failing: %w", deleted, err)
			}

			result := map[string]int{"deleted": deleted}

			return renderOutput(cmd, result, []string{"Action", "Status", "Deleted"},
				[][]string{{args[0], status, strconv.Itoa(deleted)}})
		},
	}
	tasks.Flags().StringVar(&status, "status", "", "task status to delete, e.g. Incomplete (required)")

	cmd.AddCommand(tasks)

	return cmd
}
