package port

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"viral-reward/internal/core/domain"
)

// ErrConflictRetryExhausted is returned when the store could not serialize a
// transaction within its retry budget. It is transient; the request may be
// repeated as is.
var ErrConflictRetryExhausted = errors.New("transaction conflict: retries exhausted")

// Store is the persistence layer of the marketplace. It is an outbound port
// in hexagonal architecture. Every mutation goes through WithinTx; reads
// outside a transaction observe committed state only.
type Store interface {
	Reader

	// WithinTx runs fn in one atomic, serializable transaction. If fn
	// returns an error nothing it did is kept. Conflicting concurrent
	// transactions are retried by the store; fn must therefore be safe to
	// run more than once and must not have effects outside tx.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of operations available inside a transaction. Lock*
// methods return fresh rows and hold them until the transaction ends;
// callers lock in the order submission, campaign, accounts.
type Tx interface {
	LockSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	LockCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	// LockAccounts returns every requested account keyed by id, or
	// domain.ErrNotFound if any is missing.
	LockAccounts(ctx context.Context, ids ...string) (map[string]*domain.Account, error)

	// Debit fails with domain.ErrInsufficientFunds if the balance would go
	// negative.
	Debit(ctx context.Context, accountID string, amount int64) error
	Credit(ctx context.Context, accountID string, amount int64) error
	// ReserveSpend adds amount to the campaign's spent counter, failing
	// with domain.ErrBudgetExceeded if it would pass the total budget.
	ReserveSpend(ctx context.Context, campaignID uuid.UUID, amount int64) error
	AppendEntries(ctx context.Context, entries ...domain.LedgerEntry) error
	// UpdateSubmission persists the audit outcome fields of sub.
	UpdateSubmission(ctx context.Context, sub *domain.Submission) error

	// InsertAccount fails with domain.ErrAccountExists on a duplicate id.
	InsertAccount(ctx context.Context, acc *domain.Account) error
	InsertCampaign(ctx context.Context, camp *domain.Campaign) error
	// InsertSubmission fails with domain.ErrDuplicateSubmission if the
	// video was already claimed against the campaign.
	InsertSubmission(ctx context.Context, sub *domain.Submission) error
}

// Reader serves the dashboards. Missing rows yield domain.ErrNotFound.
type Reader interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	// ListCampaigns returns matching campaigns, newest first.
	ListCampaigns(ctx context.Context, f CampaignFilter) ([]domain.Campaign, error)
	// ListSubmissions returns matching submissions ordered by creation
	// time descending, ties broken by id.
	ListSubmissions(ctx context.Context, f SubmissionFilter) ([]domain.Submission, error)
	// ListLedgerEntries returns an account's entries, newest first.
	ListLedgerEntries(ctx context.Context, accountID string, limit int) ([]domain.LedgerEntry, error)
}

// CampaignFilter narrows ListCampaigns. Zero values match everything.
type CampaignFilter struct {
	AdvertiserID string
	Status       domain.CampaignStatus
	Limit        int
}

// SubmissionFilter narrows ListSubmissions. Zero values match everything.
type SubmissionFilter struct {
	CampaignID   *uuid.UUID
	ClipperID    string
	AdvertiserID string
	Status       domain.SubmissionStatus
	Limit        int
}
