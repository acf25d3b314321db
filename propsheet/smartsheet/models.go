package smartsheet

type Sheet struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	TotalRowCount int      `json:"totalRowCount"`
	Columns       []Column `json:"columns"`
	Rows          []Row    `json:"rows"`
}

type Column struct {
	ID    int64  `json:"id"`
	Index int    `json:"index"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

type Row struct {
	ID        int64  `json:"id"`
	RowNumber int    `json:"rowNumber"`
	Cells     []Cell `json:"cells"`
}

// Cell values are untyped on the wire: text cells arrive as strings, checkbox
// cells as booleans and empty cells with no value field at all.
type Cell struct {
	ColumnID     int64  `json:"columnId"`
	Value        any    `json:"value,omitempty"`
	DisplayValue string `json:"displayValue,omitempty"`
}

type Attachment struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	URL      string `json:"url,omitempty"`
}

type Webhook struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	CallbackURL   string   `json:"callbackUrl"`
	Scope         string   `json:"scope"`
	ScopeObjectID int64    `json:"scopeObjectId"`
	Events        []string `json:"events"`
	Enabled       bool     `json:"enabled"`
	Status        string   `json:"status"`
	Version       int      `json:"version"`
}

// Result is the envelope Smartsheet wraps around mutating responses.
type Result[T any] struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	Result     T      `json:"result"`
}

type IndexResult[T any] struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	Data       []T `json:"data"`
}
