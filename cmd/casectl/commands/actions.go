package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

var actionHeaders = []string{"ID", "Name", "Reference", "Status", "Action Type", "Step", "Assigned To"}

// NewActionsCommand creates the actions command group.
func NewActionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "actions",
		Aliases: []string{"action", "matters"},
		Short:   "Manage actions",
		Long:    "List and inspect actions (matters)",
	}

	cmd.AddCommand(newActionsListCommand())
	cmd.AddCommand(newActionsGetCommand())

	return cmd
}

func newActionsListCommand() *cobra.Command {
	var (
		flags      pageFlags
		actionType string
		assignedTo string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List actions",
		Long:  "List actions, optionally filtered by action type or assignee",
		RunE: func(cmd *cobra.Command, args []string) error {
			var terms []string
			if actionType != "" {
				terms = append(terms, caseapi.Eq("actionType", caseapi.ID(actionType)))
			}

			if assignedTo != "" {
				terms = append(terms, caseapi.Eq("assignedTo", caseapi.ID(assignedTo)))
			}

			params, err := flags.queryParams(terms...)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			actions, err := client.Actions().List(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("failed to list actions: %w", err)
			}

			rows := make([][]string, 0, actions.Len())
			for _, action := range actions.Primary {
				rows = append(rows, actionRow(action))
			}

			err = renderOutput(cmd, actions, actionHeaders, rows)
			if err != nil {
				return err
			}

			return printPaging(cmd, params, actions.Paging)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&actionType, "action-type", "", "filter by action type ID")
	cmd.Flags().StringVar(&assignedTo, "assigned-to", "", "filter by assigned user ID")

	return cmd
}

func newActionsGetCommand() *cobra.Command {
	var include []string

	cmd := &cobra.Command{
		Use:   "get ACTION_ID",
		Short: "Get action details",
		Long:  "Display a single action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			params := caseapi.NewQueryParams().WithInclude(include...)

			action, err := client.Actions().Get(cmd.Context(), caseapi.ID(args[0]), params)
			if err != nil {
				return fmt.Errorf("failed to get action: %w", err)
			}

			values := actionRow(action.Record)

			rows := make([][]string, 0, len(actionHeaders))
			for i, h := range actionHeaders {
				rows = append(rows, []string{h, values[i]})
			}

			for name, linked := range action.Linked {
				rows = append(rows, []string{"Linked " + name, strconv.Itoa(len(linked))})
			}

			return renderOutput(cmd, action, []string{"Property", "Value"}, rows)
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "related entities to side-load")

	return cmd
}

func actionRow(action caseapi.Action) []string {
	return []string{
		action.ID.String(),
		action.Name,
		orNA(action.Reference),
		orNA(action.Status),
		orNA(action.Links.ActionType.String()),
		orNA(action.Links.Step.String()),
		orNA(action.Links.AssignedTo.String()),
	}
}

// printPaging notes when more pages exist. Only table output gets the note so
// structured output stays parseable.
func printPaging(cmd *cobra.Command, params *caseapi.QueryParams, paging caseapi.Paging) error {
	if !isTableOutput() || params.WantsAll() || !paging.HasMorePages() || paging.Page >= paging.PageCount {
		return nil
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d (%d records). Use --page or --all for more.\n",
		paging.Page, paging.PageCount, paging.RecordCount)

	return err
}
