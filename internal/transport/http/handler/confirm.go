package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-storefront-gateway/internal/application/confirmation"
	"github.com/go-storefront-gateway/internal/domain"
)

type confirmRunner interface {
	Run(ctx context.Context, fragment string, sess confirmation.SessionWriter) *domain.ConfirmationAttempt
}

// ConfirmHandler runs the email-confirmation flow for the fragment the browser posts.
type ConfirmHandler struct {
	flow     confirmRunner
	sessions SessionFactory
}

func NewConfirmHandler(flow confirmRunner, sessions SessionFactory) *ConfirmHandler {
	return &ConfirmHandler{flow: flow, sessions: sessions}
}

type confirmRequest struct {
	Fragment string `json:"fragment"`
}

// Confirm always answers 200 with the attempt. A failed attempt also carries a Refresh header
// pointing at the redirect target.
func (h *ConfirmHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess := h.sessions(w, r)
	attempt := h.flow.Run(r.Context(), req.Fragment, sess)
	if attempt.Status == domain.ConfirmationFailed && attempt.RedirectTo != "" {
		w.Header().Set("Refresh", refreshValue(attempt))
	}
	writeJSON(w, http.StatusOK, toConfirmationEnvelope(attempt))
}

func refreshValue(a *domain.ConfirmationAttempt) string {
	secs := strconv.FormatFloat(a.RedirectAfter.Seconds(), 'f', -1, 64)
	return fmt.Sprintf("%s; url=%s", secs, a.RedirectTo)
}
