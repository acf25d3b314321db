package smartsheet

import (
	"context"
	"fmt"
	"net/http"
)

// GetSheet fetches the full sheet including all columns and rows.
func (c *Client) GetSheet(ctx context.Context, sheetID int64) (Sheet, error) {
	var sheet Sheet
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/sheets/%d", sheetID), nil, &sheet); err != nil {
		return Sheet{}, err
	}
	return sheet, nil
}
