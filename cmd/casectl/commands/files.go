package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// NewFilesCommand creates the files command group.
func NewFilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"documents", "docs"},
		Short:   "Upload and list documents",
		Long:    "Upload files and attach them to actions as documents",
	}

	cmd.AddCommand(newFilesUploadCommand())
	cmd.AddCommand(newFilesListCommand())

	return cmd
}

func newFilesUploadCommand() *cobra.Command {
	var (
		actionID string
		folderID string
		name     string
	)

	cmd := &cobra.Command{
		Use:   "upload PATH",
		Short: "Upload a file",
		Long:  "Upload a file in parts and, with --action and --folder, attach it to the action as a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(filepath.Clean(args[0]))
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			if len(data) == 0 {
				return fmt.Errorf("%w: %s", ErrEmptyFile, args[0])
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			upload, err := client.Files().Upload(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("failed to upload file: %w", err)
			}

			result := map[string]string{
				"file_id": upload.ID.String(),
				"status":  upload.Status,
			}
			rows := [][]string{
				{"File ID", upload.ID.String()},
				{"Status", orNA(upload.Status)},
			}

			if actionID != "" && folderID != "" {
				if name == "" {
					name = filepath.Base(args[0])
				}

				document, err := client.ActionDocuments().Attach(cmd.Context(),
					caseapi.ID(actionID), caseapi.ID(folderID), upload.ID, name)
				if err != nil {
					return fmt.Errorf("failed to attach document: %w", err)
				}

				result["document_id"] = document.Record.ID.String()
				rows = append(rows, []string{"Document ID", document.Record.ID.String()})
			}

			return renderOutput(cmd, result, []string{"Property", "Value"}, rows)
		},
	}

	cmd.Flags().StringVar(&actionID, "action", "", "action to attach the document to")
	cmd.Flags().StringVar(&folderID, "folder", "", "folder to file the document under")
	cmd.Flags().StringVar(&name, "name", "", "document name (defaults to the file name)")
	cmd.MarkFlagsRequiredTogether("action", "folder")

	return cmd
}

func newFilesListCommand() *cobra.Command {
	var (
		flags    pageFlags
		actionID string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List action documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			var terms []string
			if actionID != "" {
				terms = append(terms, caseapi.Eq("action", caseapi.ID(actionID)))
			}

			params, err := flags.queryParams(terms...)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}

			documents, err := client.ActionDocuments().List(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("failed to list documents: %w", err)
			}

			rows := make([][]string, 0, documents.Len())
			for _, doc := range documents.Primary {
				rows = append(rows, []string{
					doc.ID.String(),
					doc.Name,
					orNA(doc.Links.Action.String()),
					orNA(doc.Links.Folder.String()),
				})
			}

			err = renderOutput(cmd, documents, []string{"ID", "Name", "Action", "Folder"}, rows)
			if err != nil {
				return err
			}

			return printPaging(cmd, params, documents.Paging)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&actionID, "action", "", "filter by action ID")

	return cmd
}
