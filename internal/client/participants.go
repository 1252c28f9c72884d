package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// ActionParticipantsClient implements caseapi.ActionParticipantsClient.
type ActionParticipantsClient struct {
	*ResourceClient[caseapi.ActionParticipant]
}

// NewActionParticipantsClient creates a new action participants client.
func NewActionParticipantsClient(base *resourceBase) *ActionParticipantsClient {
	return &ActionParticipantsClient{
		NewResourceClient[caseapi.ActionParticipant](base, caseapi.ResourceActionParticipants, nil),
	}
}

// ListForAction lists every participant of an action.
func (c *ActionParticipantsClient) ListForAction(ctx context.Context, actionID caseapi.ID) (*caseapi.PagedCollection[caseapi.ActionParticipant], error) {
	params := caseapi.NewQueryParams().
		WithFilter(caseapi.Eq("action", actionID)).
		All()

	return c.List(ctx, params)
}

// ParticipantsClient implements caseapi.ParticipantsClient.
type ParticipantsClient struct {
	*ResourceClient[caseapi.Participant]
}

// NewParticipantsClient creates a new participants client.
func NewParticipantsClient(base *resourceBase) *ParticipantsClient {
	return &ParticipantsClient{NewResourceClient[caseapi.Participant](base, caseapi.ResourceParticipants, nil)}
}

// ParticipantTypesClient implements caseapi.ParticipantTypesClient.
type ParticipantTypesClient struct {
	*ResourceClient[caseapi.ParticipantType]
}

// NewParticipantTypesClient creates a new participant types client.
func NewParticipantTypesClient(base *resourceBase) *ParticipantTypesClient {
	return &ParticipantTypesClient{
		NewResourceClient[caseapi.ParticipantType](base, caseapi.ResourceParticipantTypes, nil),
	}
}

// ParticipantDefaultTypesClient implements caseapi.ParticipantDefaultTypesClient.
type ParticipantDefaultTypesClient struct {
	*ResourceClient[caseapi.ParticipantDefaultType]
}

// NewParticipantDefaultTypesClient creates a new participant default types client.
func NewParticipantDefaultTypesClient(base *resourceBase) *ParticipantDefaultTypesClient {
	return &ParticipantDefaultTypesClient{
		NewResourceClient[caseapi.ParticipantDefaultType](base, caseapi.ResourceParticipantDefaultTypes, nil),
	}
}

// GetByTypes fetches the default for an action type and participant type,
// addressed as "{actionType}--{participantType}".
func (c *ParticipantDefaultTypesClient) GetByTypes(ctx context.Context, actionTypeID, participantTypeID caseapi.ID) (*caseapi.Single[caseapi.ParticipantDefaultType], error) {
	id, err := caseapi.NewCompositeID(actionTypeID.String(), participantTypeID.String())
	if err != nil {
		return nil, fmt.Errorf("building participant default type id: %w", err)
	}

	return c.Get(ctx, id.ID(), nil)
}
