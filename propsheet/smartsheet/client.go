// Package smartsheet is a minimal client for the parts of the Smartsheet REST API
// this service needs: reading sheets and rows, attaching files to rows and managing
// webhook subscriptions.
package smartsheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tillfield/propsheet/internal/ezhttp"
)

const DefaultBaseURL = "https://api.smartsheet.com/2.0"

func NewClient(token string, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	return &Client{
		token:   token,
		baseURL: baseURL,
		client:  httpClient,
	}
}

type Client struct {
	token   string
	baseURL string
	client  *http.Client
}

type APIError struct {
	ErrorCode  int    `json:"errorCode"`
	Message    string `json:"message"`
	RefID      string `json:"refId"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("smartsheet: %s (error code %d, ref %s)", e.Message, e.ErrorCode, e.RefID)
}

func (c *Client) doJSON(ctx context.Context, method string, path string, body any, v any) error {
	var rqBody io.Reader
	if body != nil {
		buff := new(bytes.Buffer)
		if err := json.NewEncoder(buff).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		rqBody = buff
	}

	rq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		rq.Header.Set(ezhttp.HeaderContentType, ezhttp.ContentTypeJSON)
	}

	return c.do(rq, v)
}

func (c *Client) do(rq *http.Request, v any) error {
	rq.Header.Set(ezhttp.HeaderAuthorization, "Bearer "+c.token)
	rq.Header.Set(ezhttp.HeaderUserAgent, "propsheet")

	rs, err := c.client.Do(rq)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = rs.Body.Close()
	}()

	if rs.StatusCode < 200 || rs.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: rs.StatusCode}
		if err = json.NewDecoder(rs.Body).Decode(apiErr); err != nil {
			apiErr.Message = rs.Status
		}
		return apiErr
	}

	if v == nil {
		return nil
	}
	if err = json.NewDecoder(rs.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
