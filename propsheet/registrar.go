package propsheet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tillfield/propsheet/propsheet/smartsheet"
)

// webhookEvents subscribes to all change events on the sheet, which covers row
// updates, additions and deletions. Smartsheet accepts no narrower scope.
var webhookEvents = []string{"*.*"}

func NewRegistrar(client *smartsheet.Client, sheetID int64) *Registrar {
	return &Registrar{
		client:  client,
		sheetID: sheetID,
	}
}

type Registrar struct {
	client  *smartsheet.Client
	sheetID int64
}

// EnsureWebhook makes sure exactly one enabled webhook subscription points at
// callbackURL: an existing subscription with the same callback URL is
// re-enabled, otherwise a new one is created and then enabled.
func (r *Registrar) EnsureWebhook(ctx context.Context, name string, callbackURL string) (smartsheet.Webhook, error) {
	webhooks, err := r.client.ListWebhooks(ctx)
	if err != nil {
		return smartsheet.Webhook{}, fmt.Errorf("failed to list webhooks: %w", err)
	}

	enabled := true
	for _, webhook := range webhooks {
		if webhook.CallbackURL != callbackURL {
			continue
		}
		slog.InfoContext(ctx, "found existing webhook subscription, enabling",
			slog.Int64("webhook_id", webhook.ID),
			slog.String("callback_url", callbackURL),
		)
		return r.client.UpdateWebhook(ctx, webhook.ID, smartsheet.UpdateWebhookRequest{Enabled: &enabled})
	}

	webhook, err := r.client.CreateWebhook(ctx, smartsheet.CreateWebhookRequest{
		Name:          name,
		CallbackURL:   callbackURL,
		Scope:         "sheet",
		ScopeObjectID: r.sheetID,
		Events:        webhookEvents,
		Version:       1,
	})
	if err != nil {
		return smartsheet.Webhook{}, fmt.Errorf("failed to create webhook: %w", err)
	}
	slog.InfoContext(ctx, "created webhook subscription",
		slog.Int64("webhook_id", webhook.ID),
		slog.String("callback_url", callbackURL),
	)

	// New subscriptions start disabled; enabling triggers Smartsheet's
	// verification callback against our endpoint.
	return r.client.UpdateWebhook(ctx, webhook.ID, smartsheet.UpdateWebhookRequest{Enabled: &enabled})
}
