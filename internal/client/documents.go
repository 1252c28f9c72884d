package client

import (
	"context"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// ActionDocumentsClient implements caseapi.ActionDocumentsClient.
type ActionDocumentsClient struct {
	*ResourceClient[caseapi.ActionDocument]
}

// NewActionDocumentsClient creates a new action documents client.
func NewActionDocumentsClient(base *resourceBase) *ActionDocumentsClient {
	return &ActionDocumentsClient{
		NewResourceClient[caseapi.ActionDocument](base, caseapi.ResourceActionDocuments, nil),
	}
}

// Attach files an uploaded document under an action's folder.
func (c *ActionDocumentsClient) Attach(ctx context.Context, actionID, folderID caseapi.ID, fileID caseapi.ID, name string) (*caseapi.Single[caseapi.ActionDocument], error) {
	return c.Create(ctx, &caseapi.ActionDocument{
		Name: name,
		File: fileID.String(),
		Links: caseapi.ActionDocumentLinks{
			Action: actionID,
			Folder: folderID,
		},
	})
}

// ActionFoldersClient implements caseapi.ActionFoldersClient.
type ActionFoldersClient struct {
	*ResourceClient[caseapi.ActionFolder]
}

// NewActionFoldersClient creates a new action folders client.
func NewActionFoldersClient(base *resourceBase) *ActionFoldersClient {
	return &ActionFoldersClient{NewResourceClient[caseapi.ActionFolder](base, caseapi.ResourceActionFolders, nil)}
}

// FileNotesClient implements caseapi.FileNotesClient.
type FileNotesClient struct {
	*ResourceClient[caseapi.FileNote]
}

// NewFileNotesClient creates a new file notes client.
func NewFileNotesClient(base *resourceBase) *FileNotesClient {
	return &FileNotesClient{NewResourceClient[caseapi.FileNote](base, caseapi.ResourceFileNotes, nil)}
}
