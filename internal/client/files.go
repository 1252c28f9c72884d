package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/caseapi-client/internal/constants"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// FilesClient implements caseapi.FilesClient.
type FilesClient struct {
	base     *resourceBase
	partSize int
}

// NewFilesClient creates a new files client. A partSize of zero uses the
// default.
func NewFilesClient(base *resourceBase, partSize int) *FilesClient {
	if partSize <= 0 {
		partSize = constants.DefaultUploadPartSize
	}

	return &FilesClient{base: base, partSize: partSize}
}

// Upload sends data in parts. The first part creates the upload; the rest
// are appended to it by id. The returned upload is the server's view after
// the last part.
func (c *FilesClient) Upload(ctx context.Context, data []byte) (*caseapi.FileUpload, error) {
	parts := splitParts(data, c.partSize)
	partCount := strconv.Itoa(len(parts))

	var upload *caseapi.FileUpload

	for i, part := range parts {
		path := "/" + caseapi.ResourceFiles
		if upload != nil {
			path += "/" + url.PathEscape(upload.ID.String())
		}

		query := url.Values{}
		query.Set("part_count", partCount)
		query.Set("part_number", strconv.Itoa(i+1))

		resp, err := c.base.httpClient.PostRaw(ctx, path, query, part)
		if err != nil {
			return nil, fmt.Errorf("uploading part %d of %s: %w", i+1, partCount, err)
		}

		single, err := decodeSingle(caseapi.ResourceFiles, resp, ValidatableValidator[caseapi.FileUpload]())
		if err != nil {
			return nil, fmt.Errorf("decoding part %d of %s: %w", i+1, partCount, err)
		}

		upload = &single.Record

		c.base.logger.Debug("uploaded file part", map[string]interface{}{
			"file_id":     upload.ID.String(),
			"part_number": i + 1,
			"part_count":  len(parts),
			"bytes":       len(part),
		})
	}

	return upload, nil
}

// splitParts returns at least one part, even for empty data.
func splitParts(data []byte, size int) [][]byte {
	if len(data) == 0 {
		return [][]byte{{}}
	}

	parts := make([][]byte, 0, (len(data)+size-1)/size)
	for start := 0; start < len(data); start += size {
		end := min(start+size, len(data))
		parts = append(parts, data[start:end])
	}

	return parts
}
