package httpadapter

import (
	"time"

	"github.com/google/uuid"

	"viral-reward/internal/core/domain"
)

// Amounts travel as fixed two-decimal strings so clients never see
// floating point money.

type accountResp struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Balance   string    `json:"balance"`
	PayoutKey string    `json:"payout_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toAccountResp(a *domain.Account) accountResp {
	return accountResp{
		ID:        a.ID,
		Role:      string(a.Role),
		Balance:   domain.FormatAmount(a.Balance),
		PayoutKey: a.PayoutKey,
		CreatedAt: a.CreatedAt,
	}
}

type ledgerEntryResp struct {
	ID          uuid.UUID `json:"id"`
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	ReferenceID uuid.UUID `json:"reference_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func toLedgerResp(entries []domain.LedgerEntry) []ledgerEntryResp {
	out := make([]ledgerEntryResp, len(entries))
	for i, e := range entries {
		amount := domain.FormatAmount(e.Amount)
		if e.Amount < 0 {
			amount = "-" + domain.FormatAmount(-e.Amount)
		}
		out[i] = ledgerEntryResp{
			ID:          e.ID,
			Amount:      amount,
			Category:    string(e.Category),
			ReferenceID: e.ReferenceID,
			CreatedAt:   e.CreatedAt,
		}
	}
	return out
}

type campaignResp struct {
	ID           uuid.UUID `json:"id"`
	AdvertiserID string    `json:"advertiser_id"`
	Name         string    `json:"name"`
	RPM          string    `json:"rpm"`
	TotalBudget  string    `json:"total_budget"`
	Spent        string    `json:"spent"`
	Remaining    string    `json:"remaining"`
	Status       string    `json:"status"`
	Rules        string    `json:"rules,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toCampaignResp(c *domain.Campaign) campaignResp {
	return campaignResp{
		ID:           c.ID,
		AdvertiserID: c.AdvertiserID,
		Name:         c.Name,
		RPM:          domain.FormatAmount(c.RPM),
		TotalBudget:  domain.FormatAmount(c.TotalBudget),
		Spent:        domain.FormatAmount(c.Spent),
		Remaining:    domain.FormatAmount(c.Remaining()),
		Status:       string(c.Status),
		Rules:        c.Rules,
		CreatedAt:    c.CreatedAt,
	}
}

func toCampaignsResp(camps []domain.Campaign) []campaignResp {
	out := make([]campaignResp, len(camps))
	for i := range camps {
		out[i] = toCampaignResp(&camps[i])
	}
	return out
}

type submissionResp struct {
	ID              uuid.UUID  `json:"id"`
	CampaignID      uuid.UUID  `json:"campaign_id"`
	ClipperID       string     `json:"clipper_id"`
	AdvertiserID    string     `json:"advertiser_id"`
	VideoLink       string     `json:"video_link"`
	DeclaredViews   int64      `json:"declared_views"`
	RPMSnapshot     string     `json:"rpm_snapshot"`
	AuditedViews    *int64     `json:"audited_views,omitempty"`
	Reward          string     `json:"reward"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
}

func toSubmissionResp(s *domain.Submission) submissionResp {
	return submissionResp{
		ID:              s.ID,
		CampaignID:      s.CampaignID,
		ClipperID:       s.ClipperID,
		AdvertiserID:    s.AdvertiserID,
		VideoLink:       s.VideoLink,
		DeclaredViews:   s.DeclaredViews,
		RPMSnapshot:     domain.FormatAmount(s.RPMSnapshot),
		AuditedViews:    s.AuditedViews,
		Reward:          domain.FormatAmount(s.Reward),
		Status:          string(s.Status),
		RejectionReason: s.RejectionReason,
		CreatedAt:       s.CreatedAt,
		DecidedAt:       s.DecidedAt,
	}
}

func toSubmissionsResp(subs []domain.Submission) []submissionResp {
	out := make([]submissionResp, len(subs))
	for i := range subs {
		out[i] = toSubmissionResp(&subs[i])
	}
	return out
}

type registerReq struct {
	PayoutKey string `json:"payout_key"`
}

type createCampaignReq struct {
	Name        string `json:"name"`
	RPM         string `json:"rpm"`
	TotalBudget string `json:"total_budget"`
	Rules       string `json:"rules"`
}

type createSubmissionReq struct {
	VideoLink     string `json:"video_link"`
	DeclaredViews int64  `json:"declared_views"`
}

type settleReq struct {
	Decision     string `json:"decision"`
	AuditedViews *int64 `json:"audited_views"`
	Reason       string `json:"reason"`
}
