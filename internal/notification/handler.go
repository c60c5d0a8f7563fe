package notification

import (
	"net/http"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Renderer *Renderer
}

func NewHandler(baseHandler *transport.BaseHandler, renderer *Renderer) *Handler {
	return &Handler{BaseHandler: baseHandler, Renderer: renderer}
}

// Preview handles GET /dev/email-preview?outcome=ACCEPT&name=..&reason=..
// and is only mounted in development mode.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	raw := q.Get("outcome")
	if raw == "" {
		raw = string(OutcomeAccept)
	}
	outcome, err := ParseOutcome(raw)
	if err != nil {
		h.HandleError(w, r, internal.NewValidationFieldError("outcome", "must be ACCEPT or REJECT", internal.ErrCodeValidationFailed))
		return
	}

	name := q.Get("name")
	if name == "" {
		name = "Jane Doe"
	}

	msg, err := h.Renderer.Render(outcome, q.Get("reason"), name)
	if err != nil {
		h.HandleError(w, r, internal.NewInternalError("failed to render preview", err))
		return
	}

	if q.Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(msg.Text))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(msg.HTML))
}
