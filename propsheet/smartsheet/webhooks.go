package smartsheet

import (
	"context"
	"fmt"
	"net/http"
)

type CreateWebhookRequest struct {
	Name          string   `json:"name"`
	CallbackURL   string   `json:"callbackUrl"`
	Scope         string   `json:"scope"`
	ScopeObjectID int64    `json:"scopeObjectId"`
	Events        []string `json:"events"`
	Version       int      `json:"version"`
}

type UpdateWebhookRequest struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// ListWebhooks returns all webhook subscriptions owned by the token's user.
func (c *Client) ListWebhooks(ctx context.Context) ([]Webhook, error) {
	var result IndexResult[Webhook]
	if err := c.doJSON(ctx, http.MethodGet, "/webhooks?includeAll=true", nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *Client) CreateWebhook(ctx context.Context, create CreateWebhookRequest) (Webhook, error) {
	var result Result[Webhook]
	if err := c.doJSON(ctx, http.MethodPost, "/webhooks", create, &result); err != nil {
		return Webhook{}, err
	}
	return result.Result, nil
}

func (c *Client) UpdateWebhook(ctx context.Context, webhookID int64, update UpdateWebhookRequest) (Webhook, error) {
	var result Result[Webhook]
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/webhooks/%d", webhookID), update, &result); err != nil {
		return Webhook{}, err
	}
	return result.Result, nil
}
