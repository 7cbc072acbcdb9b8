package httpadapter

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"viral-reward/internal/core/domain"
	"viral-reward/internal/core/port"
)

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", domain.ErrInvalidArgument, name)
	}
	return id, nil
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid limit", domain.ErrInvalidArgument)
	}
	return n, nil
}

// campaignFilter reads `advertiser_id`, `status` and `limit`.
func campaignFilter(r *http.Request) (port.CampaignFilter, error) {
	q := r.URL.Query()
	f := port.CampaignFilter{
		AdvertiserID: q.Get("advertiser_id"),
		Status:       domain.CampaignStatus(q.Get("status")),
	}
	var err error
	f.Limit, err = queryLimit(r)
	return f, err
}

// submissionFilter reads `campaign_id`, `clipper_id`, `advertiser_id`,
// `status` and `limit`. Scoping to the caller happens in the use case.
func submissionFilter(r *http.Request) (port.SubmissionFilter, error) {
	q := r.URL.Query()
	f := port.SubmissionFilter{
		ClipperID:    q.Get("clipper_id"),
		AdvertiserID: q.Get("advertiser_id"),
		Status:       domain.SubmissionStatus(q.Get("status")),
	}
	if cid := q.Get("campaign_id"); cid != "" {
		id, err := uuid.Parse(cid)
		if err != nil {
			return f, fmt.Errorf("%w: invalid campaign_id", domain.ErrInvalidArgument)
		}
		f.CampaignID = &id
	}
	var err error
	f.Limit, err = queryLimit(r)
	return f, err
}

func (req createCampaignReq) toPort() (port.CreateCampaignReq, error) {
	rpm, err := domain.ParseAmount(req.RPM)
	if err != nil {
		return port.CreateCampaignReq{}, fmt.Errorf("rpm: %w", err)
	}
	total, err := domain.ParseAmount(req.TotalBudget)
	if err != nil {
		return port.CreateCampaignReq{}, fmt.Errorf("total_budget: %w", err)
	}
	return port.CreateCampaignReq{Name: req.Name, RPM: rpm, TotalBudget: total, Rules: req.Rules}, nil
}

func (req settleReq) toDecision() (domain.Decision, error) {
	switch domain.DecisionKind(req.Decision) {
	case domain.DecisionApprove:
		if req.AuditedViews == nil {
			return domain.Decision{}, fmt.Errorf("%w: audited_views is required to approve", domain.ErrInvalidArgument)
		}
		return domain.Approve(*req.AuditedViews), nil
	case domain.DecisionReject:
		return domain.Reject(req.Reason), nil
	default:
		return domain.Decision{}, fmt.Errorf("%w: decision must be approve or reject", domain.ErrInvalidArgument)
	}
}
