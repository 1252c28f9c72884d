package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// FieldValuesClient implements caseapi.FieldValuesClient on top of the
// data collection resources.
type FieldValuesClient struct {
	base        *resourceBase
	actions     *ActionsClient
	collections *DataCollectionsClient
	values      *DataCollectionRecordValuesClient

	// records accepts a created record without an id so a missing id can be
	// reported as a failed precondition rather than a malformed response.
	records *ResourceClient[caseapi.DataCollectionRecord]
}

// NewFieldValuesClient creates a new field values client.
func NewFieldValuesClient(base *resourceBase, actions *ActionsClient, collections *DataCollectionsClient, values *DataCollectionRecordValuesClient) *FieldValuesClient {
	return &FieldValuesClient{
		base:        base,
		actions:     actions,
		collections: collections,
		values:      values,
		records: NewResourceClient[caseapi.DataCollectionRecord](base, caseapi.ResourceDataCollectionRecords,
			func(*caseapi.DataCollectionRecord) error { return nil }),
	}
}

// Find returns the value of field in group on an action, or nil when it has
// never been set. When several values match, the first one wins.
func (c *FieldValuesClient) Find(ctx context.Context, actionID caseapi.ID, group, field string) (*caseapi.DataCollectionRecordValue, error) {
	params := caseapi.NewQueryParams().
		WithFilter(caseapi.And(
			caseapi.Eq("action", actionID),
			caseapi.Eq("dataCollection.name", group),
			caseapi.Eq("dataCollectionField.name", field),
		))

	values, err := c.values.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("finding %s/%s on action %s: %w", group, field, actionID, err)
	}

	value, ok := values.First()
	if !ok {
		return nil, nil
	}

	if values.Len() > 1 {
		c.base.logger.Warn("multiple field values matched, using the first", map[string]interface{}{
			"action_id": actionID.String(),
			"group":     group,
			"field":     field,
			"matches":   values.Len(),
			"value_id":  value.ID.String(),
		})
	}

	return &value, nil
}

// Upsert sets field in group on an action. An existing value is updated in
// place. Otherwise the action's data collection for group is looked up, a
// record is created in it, and the value is written into that record. Steps
// are not retried and nothing is rolled back when a later step fails.
func (c *FieldValuesClient) Upsert(ctx context.Context, actionID caseapi.ID, group, field, value string) (*caseapi.DataCollectionRecordValue, error) {
	existing, err := c.Find(ctx, actionID, group, field)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		body := *existing
		body.StringValue = value

		updated, err := c.values.Update(ctx, existing.ID, &body)
		if err != nil {
			return nil, fmt.Errorf("updating %s/%s on action %s: %w", group, field, actionID, err)
		}

		return &updated.Record, nil
	}

	action, err := c.actions.Get(ctx, actionID, nil)
	if err != nil {
		return nil, fmt.Errorf("getting action %s: %w", actionID, err)
	}

	actionType := action.Record.Links.ActionType
	if actionType.IsZero() {
		return nil, caseapi.NewPreconditionError("action type", fmt.Sprintf("action %s has no action type", actionID))
	}

	collection, err := c.collections.FindByName(ctx, actionType, group)
	if err != nil {
		return nil, fmt.Errorf("finding data collection %q: %w", group, err)
	}

	if collection == nil {
		return nil, caseapi.NewPreconditionError("data collection",
			fmt.Sprintf("%q on action type %s", group, actionType))
	}

	record, err := c.records.Create(ctx, &caseapi.DataCollectionRecord{
		Links: caseapi.DataCollectionRecordLinks{
			Action:         actionID,
			DataCollection: collection.ID,
		},
	})
	if err != nil && !errors.Is(err, ErrNoRecord) {
		return nil, fmt.Errorf("creating %q record on action %s: %w", group, actionID, err)
	}

	if record == nil || record.Record.ID.IsZero() {
		return nil, caseapi.NewPreconditionError("data collection record",
			fmt.Sprintf("no id returned for %q on action %s", group, actionID))
	}

	valueID, err := caseapi.NewCompositeID(record.Record.ID.String(), field)
	if err != nil {
		return nil, caseapi.NewValidationError(caseapi.ResourceDataCollectionRecordValues, err)
	}

	fieldID, err := caseapi.NewCompositeID(collection.ID.String(), field)
	if err != nil {
		return nil, caseapi.NewValidationError(caseapi.ResourceDataCollectionFields, err)
	}

	written, err := c.values.Update(ctx, valueID.ID(), &caseapi.DataCollectionRecordValue{
		StringValue: value,
		Links: caseapi.DataCollectionRecordValueLinks{
			Action:               actionID,
			DataCollectionRecord: record.Record.ID,
			DataCollection:       collection.ID,
			DataCollectionField:  fieldID.ID(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("writing %s/%s on action %s: %w", group, field, actionID, err)
	}

	c.base.logger.Info("field value created", map[string]interface{}{
		"action_id": actionID.String(),
		"group":     group,
		"field":     field,
		"value_id":  valueID.String(),
	})

	return &written.Record, nil
}
