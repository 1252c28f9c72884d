package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// CleanupClient implements caseapi.CleanupClient.
type CleanupClient struct {
	base  *resourceBase
	tasks *TasksClient
}

// NewCleanupClient creates a new cleanup client.
func NewCleanupClient(base *resourceBase, tasks *TasksClient) *CleanupClient {
	return &CleanupClient{base: base, tasks: tasks}
}

// DeleteTasksByStatus deletes every task of an action in status, one at a
// time. It stops at the first failed delete and reports how many were
// deleted before it.
func (c *CleanupClient) DeleteTasksByStatus(ctx context.Context, actionID caseapi.ID, status string) (int, error) {
	tasks, err := c.tasks.ListByStatus(ctx, actionID, status)
	if err != nil {
		return 0, fmt.Errorf("listing %s tasks of action %s: %w", status, actionID, err)
	}

	deleted := 0

	for _, task := range tasks.Primary {
		err = c.tasks.Delete(ctx, task.ID)
		if err != nil {
			return deleted, err
		}

		deleted++

		c.base.logger.Info("task deleted", map[string]interface{}{
			"action_id": actionID.String(),
			"task_id":   task.ID.String(),
			"status":    status,
		})
	}

	return deleted, nil
}
