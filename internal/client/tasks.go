package client

import (
	"context"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// TasksClient implements caseapi.TasksClient.
type TasksClient struct {
	*ResourceClient[caseapi.Task]
}

// NewTasksClient creates a new tasks client.
func NewTasksClient(base *resourceBase) *TasksClient {
	return &TasksClient{NewResourceClient[caseapi.Task](base, caseapi.ResourceTasks, nil)}
}

// ListByStatus lists every task of an action in the given status.
func (c *TasksClient) ListByStatus(ctx context.Context, actionID caseapi.ID, status string) (*caseapi.PagedCollection[caseapi.Task], error) {
	params := caseapi.NewQueryParams().
		WithFilter(caseapi.And(
			caseapi.Eq("action", actionID),
			caseapi.Eq("status", status),
		)).
		All()

	return c.List(ctx, params)
}
