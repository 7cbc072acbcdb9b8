package httpadapter

import (
	"net/http"
)

func (h *Handler) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	f, err := submissionFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	subs, err := h.svc.ListSubmissions(r.Context(), actorFrom(r.Context()), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSubmissionsResp(subs))
}

// handleSettle applies an audit decision. The body is either
// {"decision":"approve","audited_views":N} or
// {"decision":"reject","reason":"..."}. On success it returns the final
// submission; business refusals map to 4xx and leave nothing changed.
func (h *Handler) handleSettle(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body settleReq
	if err = decodeJSON(w, r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	decision, err := body.toDecision()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sub, err := h.svc.Settle(r.Context(), actorFrom(r.Context()), id, decision)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSubmissionResp(sub))
}
