package smartsheet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/tillfield/propsheet/internal/ezhttp"
)

// AttachFileToRow uploads the file read from r as a row attachment. Smartsheet
// takes the raw file bytes as the request body, not a multipart form.
func (c *Client) AttachFileToRow(ctx context.Context, sheetID int64, rowID int64, filename string, contentType string, size int64, r io.Reader) (Attachment, error) {
	rq, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/sheets/%d/rows/%d/attachments", c.baseURL, sheetID, rowID), r)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to create request: %w", err)
	}
	rq.Header.Set(ezhttp.HeaderContentType, contentType)
	rq.Header.Set(ezhttp.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	rq.Header.Set(ezhttp.HeaderContentLength, strconv.FormatInt(size, 10))
	rq.ContentLength = size

	var result Result[Attachment]
	if err = c.do(rq, &result); err != nil {
		return Attachment{}, err
	}
	return result.Result, nil
}
