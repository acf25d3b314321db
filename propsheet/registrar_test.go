package propsheet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillfield/propsheet/propsheet/smartsheet"
)

type webhookAPI struct {
	mu       sync.Mutex
	webhooks []smartsheet.Webhook
	creates  int
	updates  int
	nextID   int64
}

func (a *webhookAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/webhooks":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"pageNumber": 1,
				"pageSize":   100,
				"totalCount": len(a.webhooks),
				"data":       a.webhooks,
			})
		case r.Method == http.MethodPost && r.URL.Path == "/webhooks":
			a.creates++
			var create smartsheet.CreateWebhookRequest
			_ = json.NewDecoder(r.Body).Decode(&create)
			a.nextID++
			webhook := smartsheet.Webhook{
				ID:            a.nextID,
				Name:          create.Name,
				CallbackURL:   create.CallbackURL,
				Scope:         create.Scope,
				ScopeObjectID: create.ScopeObjectID,
				Events:        create.Events,
				Version:       create.Version,
				Status:        "NEW_NOT_VERIFIED",
			}
			a.webhooks = append(a.webhooks, webhook)
			_ = json.NewEncoder(w).Encode(map[string]any{"resultCode": 0, "message": "SUCCESS", "result": webhook})
		case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/webhooks/"):
			a.updates++
			var update smartsheet.UpdateWebhookRequest
			_ = json.NewDecoder(r.Body).Decode(&update)
			var id int64
			_, _ = fmt.Sscanf(r.URL.Path, "/webhooks/%d", &id)
			for i := range a.webhooks {
				if a.webhooks[i].ID != id {
					continue
				}
				if update.Enabled != nil {
					a.webhooks[i].Enabled = *update.Enabled
					a.webhooks[i].Status = "ENABLED"
				}
				_ = json.NewEncoder(w).Encode(map[string]any{"resultCode": 0, "message": "SUCCESS", "result": a.webhooks[i]})
				return
			}
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errorCode": 1006, "message": "Not Found", "refId": "x"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errorCode": 1006, "message": "Not Found", "refId": "x"}`))
		}
	})
}

func TestRegistrar_EnsureWebhook(t *testing.T) {
	api := &webhookAPI{}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	client := smartsheet.NewClient("test-token", server.URL, server.Client())
	registrar := NewRegistrar(client, 42)

	webhook, err := registrar.EnsureWebhook(context.Background(), "propsheet", "https://example.com/webhook")
	require.NoError(t, err)
	assert.True(t, webhook.Enabled)
	assert.Equal(t, "sheet", webhook.Scope)
	assert.Equal(t, int64(42), webhook.ScopeObjectID)
	assert.Equal(t, 1, api.creates)

	// Second run finds the existing subscription and never creates another.
	webhook, err = registrar.EnsureWebhook(context.Background(), "propsheet", "https://example.com/webhook")
	require.NoError(t, err)
	assert.True(t, webhook.Enabled)
	assert.Equal(t, 1, api.creates)
	assert.Len(t, api.webhooks, 1)
}

func TestRegistrar_EnsureWebhookOtherCallbackURL(t *testing.T) {
	api := &webhookAPI{
		webhooks: []smartsheet.Webhook{
			{ID: 7, CallbackURL: "https://elsewhere.example.com/hook", Enabled: true},
		},
		nextID: 7,
	}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	client := smartsheet.NewClient("test-token", server.URL, server.Client())
	registrar := NewRegistrar(client, 42)

	webhook, err := registrar.EnsureWebhook(context.Background(), "propsheet", "https://example.com/webhook")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/webhook", webhook.CallbackURL)
	assert.Equal(t, 1, api.creates)
	assert.Len(t, api.webhooks, 2)
}

func TestRegistrar_EnsureWebhookListError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorCode": 1002, "message": "Your Access Token is invalid", "refId": "x"}`))
	}))
	defer server.Close()

	client := smartsheet.NewClient("bad-token", server.URL, server.Client())
	registrar := NewRegistrar(client, 42)

	_, err := registrar.EnsureWebhook(context.Background(), "propsheet", "https://example.com/webhook")
	require.Error(t, err)

	var apiErr *smartsheet.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 1002, apiErr.ErrorCode)
}
