package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"viral-reward/internal/core/domain"
)

// MarketplaceUseCase defines the business operations exposed by the
// marketplace. It is the primary port into the application domain and is
// what the HTTP adapter drives. Every method acts on behalf of an
// authenticated actor.
type MarketplaceUseCase interface {
	// RegisterAccount provisions the actor's account, crediting the
	// configured initial bonus for its role.
	RegisterAccount(ctx context.Context, actor domain.Actor, req RegisterAccountReq) (*domain.Account, error)
	GetAccount(ctx context.Context, actor domain.Actor) (*domain.Account, error)
	ListLedgerEntries(ctx context.Context, actor domain.Actor) ([]domain.LedgerEntry, error)

	CreateCampaign(ctx context.Context, actor domain.Actor, req CreateCampaignReq) (*domain.Campaign, error)
	GetCampaign(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Campaign, error)
	ListCampaigns(ctx context.Context, actor domain.Actor, f CampaignFilter) ([]domain.Campaign, error)

	// CreateSubmission records a pending claim, snapshotting the
	// campaign's current RPM.
	CreateSubmission(ctx context.Context, actor domain.Actor, req CreateSubmissionReq) (*domain.Submission, error)
	// ListSubmissions is scoped to the actor: advertisers see claims on
	// their campaigns, clippers see their own.
	ListSubmissions(ctx context.Context, actor domain.Actor, f SubmissionFilter) ([]domain.Submission, error)

	// Settle applies an audit decision atomically and returns the final
	// submission. See SettlementEngine.
	Settle(ctx context.Context, actor domain.Actor, submissionID uuid.UUID, d domain.Decision) (*domain.Submission, error)

	// WatchSubmissions opens a live subscription matching what
	// ListSubmissions with the same filter would return.
	WatchSubmissions(ctx context.Context, actor domain.Actor, f SubmissionFilter) (Subscription, error)
	// WatchAccount opens a live subscription on the actor's account.
	WatchAccount(ctx context.Context, actor domain.Actor) (Subscription, error)
}

// RegisterAccountReq carries the registration input.
type RegisterAccountReq struct {
	PayoutKey string
}

// CreateCampaignReq carries a new campaign. Amounts are in cents.
type CreateCampaignReq struct {
	Name        string
	RPM         int64
	TotalBudget int64
	Rules       string
}

// CreateSubmissionReq carries a clipper's claim.
type CreateSubmissionReq struct {
	CampaignID    uuid.UUID
	VideoLink     string
	DeclaredViews int64
}

// SettlementObserver is told about every settle attempt, e.g. for metrics.
// err is nil on success.
type SettlementObserver interface {
	ObserveSettlement(kind domain.DecisionKind, err error, elapsed time.Duration)
}
