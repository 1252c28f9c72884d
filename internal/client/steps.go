package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// StepsClient implements caseapi.StepsClient.
type StepsClient struct {
	*ResourceClient[caseapi.Step]
}

// NewStepsClient creates a new steps client.
func NewStepsClient(base *resourceBase) *StepsClient {
	return &StepsClient{NewResourceClient[caseapi.Step](base, caseapi.ResourceSteps, nil)}
}

// StepChangeLogsClient implements caseapi.StepChangeLogsClient.
type StepChangeLogsClient struct {
	*ResourceClient[caseapi.StepChangeLog]
}

// NewStepChangeLogsClient creates a new step change logs client.
func NewStepChangeLogsClient(base *resourceBase) *StepChangeLogsClient {
	return &StepChangeLogsClient{
		NewResourceClient[caseapi.StepChangeLog](base, caseapi.ResourceStepChangeLogs, nil),
	}
}

// FindNode returns the workflow node an action moves to when entering
// stepName.
func (c *StepChangeLogsClient) FindNode(ctx context.Context, actionID caseapi.ID, stepName string) (caseapi.ID, error) {
	params := caseapi.NewQueryParams().
		WithFilter(caseapi.And(
			caseapi.Eq("action", actionID),
			caseapi.Eq("stepName", stepName),
		))

	logs, err := c.List(ctx, params)
	if err != nil {
		return "", err
	}

	entry, ok := logs.First()
	if !ok {
		return "", caseapi.NewPreconditionError("step change log",
			fmt.Sprintf("no %q node for action %s", stepName, actionID))
	}

	return entry.NodeID, nil
}

// TransitionsClient implements caseapi.TransitionsClient.
type TransitionsClient struct {
	base       *resourceBase
	actions    *ActionsClient
	steps      *StepsClient
	changeLogs *StepChangeLogsClient
}

// NewTransitionsClient creates a new transitions client.
func NewTransitionsClient(base *resourceBase, actions *ActionsClient, steps *StepsClient, changeLogs *StepChangeLogsClient) *TransitionsClient {
	return &TransitionsClient{
		base:       base,
		actions:    actions,
		steps:      steps,
		changeLogs: changeLogs,
	}
}

// CurrentStep returns the step an action is in. The step is read from the
// side-loaded records when the server includes it and listed otherwise.
func (c *TransitionsClient) CurrentStep(ctx context.Context, actionID caseapi.ID) (*caseapi.Step, error) {
	action, err := c.actions.Get(ctx, actionID, caseapi.NewQueryParams().WithInclude("step"))
	if err != nil {
		return nil, err
	}

	stepID := action.Record.Links.Step
	if stepID.IsZero() {
		return nil, caseapi.NewPreconditionError("current step", fmt.Sprintf("action %s has no step", actionID))
	}

	for _, linked := range action.Linked[caseapi.ResourceSteps] {
		if linked.ID != stepID.String() {
			continue
		}

		var step caseapi.Step

		err = linked.Decode(&step)
		if err != nil {
			return nil, caseapi.NewValidationError(caseapi.ResourceSteps, err)
		}

		return &step, nil
	}

	steps, err := c.steps.List(ctx, caseapi.NewQueryParams().WithFilter(caseapi.Eq("id", stepID.String())))
	if err != nil {
		return nil, err
	}

	step, ok := steps.First()
	if !ok {
		return nil, caseapi.NewPreconditionError("current step", fmt.Sprintf("step %s not found", stepID))
	}

	return &step, nil
}

// Cancel moves an active action to Cancellation.
func (c *TransitionsClient) Cancel(ctx context.Context, actionID caseapi.ID) error {
	return c.transition(ctx, actionID, "active", caseapi.StepCancellation, func(current string) bool {
		return !isClosingStep(current)
	})
}

// Archive moves a cancelled action to Archived.
func (c *TransitionsClient) Archive(ctx context.Context, actionID caseapi.ID) error {
	return c.transition(ctx, actionID, caseapi.StepCancellation, caseapi.StepArchived, func(current string) bool {
		return strings.EqualFold(current, caseapi.StepCancellation)
	})
}

// Close moves an archived action to Closed.
func (c *TransitionsClient) Close(ctx context.Context, actionID caseapi.ID) error {
	return c.transition(ctx, actionID, caseapi.StepArchived, caseapi.StepClosed, func(current string) bool {
		return strings.EqualFold(current, caseapi.StepArchived)
	})
}

func (c *TransitionsClient) transition(ctx context.Context, actionID caseapi.ID, from, to string, allowed func(string) bool) error {
	current, err := c.CurrentStep(ctx, actionID)
	if err != nil {
		return fmt.Errorf("reading current step of action %s: %w", actionID, err)
	}

	if !allowed(current.StepName) {
		return &caseapi.TransitionError{
			ActionID: actionID,
			From:     from,
			To:       to,
			Current:  current.StepName,
		}
	}

	// Node ids are per action and change as the workflow is edited.
	node, err := c.changeLogs.FindNode(ctx, actionID, to)
	if err != nil {
		return fmt.Errorf("resolving %s node for action %s: %w", to, actionID, err)
	}

	body := map[string]interface{}{
		caseapi.ResourceActionChangeStep: caseapi.ActionChangeStep{
			Links: caseapi.ActionChangeStepLinks{Action: actionID, Node: node},
		},
	}

	_, err = c.base.httpClient.Post(ctx, "/"+caseapi.ResourceActionChangeStep, body)
	if err != nil {
		return fmt.Errorf("moving action %s to %s: %w", actionID, to, err)
	}

	c.base.logger.Info("action step changed", map[string]interface{}{
		"action_id": actionID.String(),
		"from":      current.StepName,
		"to":        to,
		"node_id":   node.String(),
	})

	return nil
}

func isClosingStep(name string) bool {
	for _, closing := range []string{caseapi.StepCancellation, caseapi.StepArchived, caseapi.StepClosed} {
		if strings.EqualFold(name, closing) {
			return true
		}
	}

	return false
}
