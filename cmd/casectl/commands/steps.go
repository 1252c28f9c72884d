package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// NewStepsCommand creates the steps command group.
func NewStepsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "steps",
		Aliases: []string{"step"},
		Short:   "Inspect and change workflow steps",
		Long:    "Show the current step of an action and move it through Cancellation, Archived and Closed",
	}

	cmd.AddCommand(newStepsListCommand())
	cmd.AddCommand(newStepsCurrentCommand())
	cmd.AddCommand(newStepTransitionCommand("cancel", caseapi.StepCancellation,
		func(c caseapi.TransitionsClient) func(context.Context, caseapi.ID) error { return c.Cancel }))
	cmd.AddCommand(newStepTransitionCommand("archive", caseapi.StepArchived,
		func(c caseapi.TransitionsClient) func(context.Context, caseapi.ID) error { return c.Archive }))
	cmd.AddCommand(newStepTransitionCommand("close", caseapi.StepClosed,
		func(c caseapi.TransitionsClient) func(context.Context, caseapi.ID) error { return c.Close }))

	return cmd
}

func newStepsListCommand() *cobra.Command {
	var (
		flags      pageFlags
		actionType string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workflow steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			var terms []string
			if actionType != "" {
				terms = append(terms, caseapi.Eq("actionType", caseapi.ID(actionType)))
			}

			params, err := flags.queryParams(terms...)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			steps, err := client.Steps().List(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("failed to list steps: %w", err)
			}

			rows := make([][]string, 0, steps.Len())
			for _, step := range steps.Primary {
				rows = append(rows, stepRow(&step))
			}

			err = renderOutput(cmd, steps, stepHeaders, rows)
			if err != nil {
				return err
			}

			return printPaging(cmd, params, steps.Paging)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&actionType, "action-type", "", "filter by action type ID")

	return cmd
}

var stepHeaders = []string{"ID", "Number", "Name", "Active", "Action Type"}

func newStepsCurrentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current ACTION_ID",
		Short: "Show the current step of an action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			step, err := client.Transitions().CurrentStep(cmd.Context(), caseapi.ID(args[0]))
			if err != nil {
				return fmt.Errorf("failed to get current step: %w", err)
			}

			return renderOutput(cmd, step, stepHeaders, [][]string{stepRow(step)})
		},
	}
}

func newStepTransitionCommand(
	use, target string,
	transition func(caseapi.TransitionsClient) func(context.Context, caseapi.ID) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ACTION_ID",
		Short: "Move an action to the " + target + " step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			err = transition(client.Transitions())(cmd.Context(), caseapi.ID(args[0]))
			if err != nil {
				return fmt.Errorf("failed to %s action %s: %w", use, args[0], err)
			}

			result := map[string]string{"action": args[0], "step": target}

			return renderOutput(cmd, result, []string{"Action", "Step"}, [][]string{{args[0], target}})
		},
	}
}

func stepRow(step *caseapi.Step) []string {
	return []string{
		step.ID.String(),
		strconv.Itoa(step.StepNumber),
		step.StepName,
		orNA(step.IsActive),
		orNA(step.Links.ActionType.String()),
	}
}
