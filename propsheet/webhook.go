package propsheet

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tillfield/propsheet/internal/ezhttp"
	"github.com/tillfield/propsheet/internal/httperr"
)

// challengeParam carries Smartsheet's subscription verification token.
const challengeParam = "smartsheetHookChallenge"

type (
	WebhookPayload struct {
		Nonce  string         `json:"nonce"`
		Events []WebhookEvent `json:"events"`
	}

	WebhookEvent struct {
		ObjectType     string          `json:"objectType"`
		EventType      string          `json:"eventType"`
		RowID          int64           `json:"rowId"`
		ChangedColumns []ChangedColumn `json:"changedColumns"`
	}

	// NewValue is any: checkbox changes arrive as the string "TRUE" through
	// some transports and as boolean true through others.
	ChangedColumn struct {
		ColumnTitle string `json:"columnTitle"`
		NewValue    any    `json:"newValue"`
	}
)

// GetWebhook answers Smartsheet's subscription verification handshake by
// echoing the challenge token, and doubles as a liveness check without one.
func (s *Server) GetWebhook(w http.ResponseWriter, r *http.Request) {
	if challenge := r.URL.Query().Get(challengeParam); challenge != "" {
		slog.InfoContext(r.Context(), "answering webhook verification challenge")
		s.text(w, r, challenge)
		return
	}
	s.text(w, r, "Webhook is running!")
}

// PostWebhook handles change notifications. A notification that checked the
// activation checkbox triggers a full re-scan of the sheet: every active row
// is regenerated and re-attached, not just the row named in the event.
func (s *Server) PostWebhook(w http.ResponseWriter, r *http.Request) {
	var payload WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.error(w, r, httperr.BadRequest(ErrNoRelevantEvents))
		return
	}

	if !s.triggered(r, payload) {
		s.error(w, r, httperr.BadRequest(ErrNoRelevantEvents))
		return
	}

	generated, active, err := s.processActiveRows(r.Context())
	if err != nil {
		s.error(w, r, httperr.InternalServerError(err))
		return
	}
	if active == 0 {
		s.error(w, r, httperr.BadRequest(ErrNoActiveRows))
		return
	}

	s.ok(w, r, ezhttp.MessageResponse{
		Message: fmt.Sprintf("generated and attached files for %d of %d active rows", generated, active),
	})
}

func (s *Server) triggered(r *http.Request, payload WebhookPayload) bool {
	for _, event := range payload.Events {
		for _, column := range event.ChangedColumns {
			if column.ColumnTitle != s.fetcher.checkboxColumn {
				continue
			}
			if checkedValue(column.NewValue) {
				slog.InfoContext(r.Context(), "activation checkbox checked",
					slog.Int64("row_id", event.RowID),
					slog.String("column", column.ColumnTitle),
				)
				return true
			}
		}
	}
	return false
}

func checkedValue(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		return strings.EqualFold(value, "true")
	default:
		return false
	}
}
