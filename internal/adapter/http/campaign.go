package httpadapter

import (
	"net/http"

	"viral-reward/internal/core/port"
)

// handleCreateCampaign funds a new campaign for the calling advertiser.
// `rpm` and `total_budget` are decimal strings, e.g. "10.00".
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body createCampaignReq
	if err := decodeJSON(w, r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := body.toPort()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	camp, err := h.svc.CreateCampaign(r.Context(), actorFrom(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toCampaignResp(camp))
}

func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	f, err := campaignFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	camps, err := h.svc.ListCampaigns(r.Context(), actorFrom(r.Context()), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignsResp(camps))
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	camp, err := h.svc.GetCampaign(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignResp(camp))
}

// handleCreateSubmission records the calling clipper's claim against the
// campaign in the path.
func (h *Handler) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	campaignID, err := pathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body createSubmissionReq
	if err = decodeJSON(w, r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	sub, err := h.svc.CreateSubmission(r.Context(), actorFrom(r.Context()), port.CreateSubmissionReq{
		CampaignID:    campaignID,
		VideoLink:     body.VideoLink,
		DeclaredViews: body.DeclaredViews,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toSubmissionResp(sub))
}
