package client

import (
	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// ActionsClient implements caseapi.ActionsClient.
type ActionsClient struct {
	*ResourceClient[caseapi.Action]
}

// NewActionsClient creates a new actions client.
func NewActionsClient(base *resourceBase) *ActionsClient {
	return &ActionsClient{NewResourceClient[caseapi.Action](base, caseapi.ResourceActions, nil)}
}

// ActionTypesClient implements caseapi.ActionTypesClient.
type ActionTypesClient struct {
	*ResourceClient[caseapi.ActionType]
}

// NewActionTypesClient creates a new action types client.
func NewActionTypesClient(base *resourceBase) *ActionTypesClient {
	return &ActionTypesClient{NewResourceClient[caseapi.ActionType](base, caseapi.ResourceActionTypes, nil)}
}

// UsersClient implements caseapi.UsersClient.
type UsersClient struct {
	*ResourceClient[caseapi.User]
}

// NewUsersClient creates a new users client.
func NewUsersClient(base *resourceBase) *UsersClient {
	return &UsersClient{NewResourceClient[caseapi.User](base, caseapi.ResourceUsers, nil)}
}
