package client

import (
	"context"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// DataCollectionsClient implements caseapi.DataCollectionsClient.
type DataCollectionsClient struct {
	*ResourceClient[caseapi.DataCollection]
}

// NewDataCollectionsClient creates a new data collections client.
func NewDataCollectionsClient(base *resourceBase) *DataCollectionsClient {
	return &DataCollectionsClient{
		NewResourceClient[caseapi.DataCollection](base, caseapi.ResourceDataCollections, nil),
	}
}

// FindByName returns the named data collection of an action type, or nil
// when there is none.
func (c *DataCollectionsClient) FindByName(ctx context.Context, actionTypeID caseapi.ID, name string) (*caseapi.DataCollection, error) {
	params := caseapi.NewQueryParams().
		WithFilter(caseapi.And(
			caseapi.Eq("actionType", actionTypeID),
			caseapi.Eq("name", name),
		))

	collections, err := c.List(ctx, params)
	if err != nil {
		return nil, err
	}

	collection, ok := collections.First()
	if !ok {
		return nil, nil
	}

	return &collection, nil
}

// DataCollectionFieldsClient implements caseapi.DataCollectionFieldsClient.
type DataCollectionFieldsClient struct {
	*ResourceClient[caseapi.DataCollectionField]
}

// NewDataCollectionFieldsClient creates a new data collection fields client.
func NewDataCollectionFieldsClient(base *resourceBase) *DataCollectionFieldsClient {
	return &DataCollectionFieldsClient{
		NewResourceClient[caseapi.DataCollectionField](base, caseapi.ResourceDataCollectionFields, nil),
	}
}

// DataCollectionRecordsClient implements caseapi.DataCollectionRecordsClient.
type DataCollectionRecordsClient struct {
	*ResourceClient[caseapi.DataCollectionRecord]
}

// NewDataCollectionRecordsClient creates a new data collection records client.
func NewDataCollectionRecordsClient(base *resourceBase) *DataCollectionRecordsClient {
	return &DataCollectionRecordsClient{
		NewResourceClient[caseapi.DataCollectionRecord](base, caseapi.ResourceDataCollectionRecords, nil),
	}
}

// DataCollectionRecordValuesClient implements caseapi.DataCollectionRecordValuesClient.
type DataCollectionRecordValuesClient struct {
	*ResourceClient[caseapi.DataCollectionRecordValue]
}

// NewDataCollectionRecordValuesClient creates a new field values client.
func NewDataCollectionRecordValuesClient(base *resourceBase) *DataCollectionRecordValuesClient {
	return &DataCollectionRecordValuesClient{
		NewResourceClient[caseapi.DataCollectionRecordValue](base, caseapi.ResourceDataCollectionRecordValues, nil),
	}
}
