package httpadapter

import (
	"net/http"

	"viral-reward/internal/core/port"
)

// handleRegister provisions the caller's account. The role comes from the
// token, the payout key from the body.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	acc, err := h.svc.RegisterAccount(r.Context(), actorFrom(r.Context()), port.RegisterAccountReq{PayoutKey: req.PayoutKey})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toAccountResp(acc))
}

func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.GetAccount(r.Context(), actorFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toAccountResp(acc))
}

// handleLedger returns the caller's transaction history, newest first.
func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListLedgerEntries(r.Context(), actorFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toLedgerResp(entries))
}
