package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"viral-reward/internal/core/domain"
	"viral-reward/internal/core/port"
)

// Bonuses configures the registration credit per role, in cents.
type Bonuses struct {
	Advertiser int64
	Clipper    int64
}

func (b Bonuses) forRole(r domain.Role) int64 {
	if r == domain.RoleAdvertiser {
		return b.Advertiser
	}
	return b.Clipper
}

// Options tunes a MarketplaceService. Zero values are usable.
type Options struct {
	Bonuses   Bonuses
	ListLimit int
	Observer  port.SettlementObserver
}

// MarketplaceService implements port.MarketplaceUseCase. It wraps the
// settlement engine with the creation-side operations, read scoping and
// change notification.
type MarketplaceService struct {
	store    port.Store
	feed     port.ChangeFeed
	engine   *SettlementEngine
	logger   *slog.Logger
	bonuses  Bonuses
	limit    int
	observer port.SettlementObserver
	now      func() time.Time
}

var _ port.MarketplaceUseCase = (*MarketplaceService)(nil)

const defaultListLimit = 100

// NewMarketplaceService wires the service. feed receives a notice after
// each committed write.
func NewMarketplaceService(store port.Store, feed port.ChangeFeed, logger *slog.Logger, opts Options) *MarketplaceService {
	if opts.ListLimit <= 0 {
		opts.ListLimit = defaultListLimit
	}
	now := func() time.Time { return time.Now().UTC() }
	engine := NewSettlementEngine(store)
	engine.now = now
	return &MarketplaceService{
		store:    store,
		feed:     feed,
		engine:   engine,
		logger:   logger,
		bonuses:  opts.Bonuses,
		limit:    opts.ListLimit,
		observer: opts.Observer,
		now:      now,
	}
}

// RegisterAccount creates the actor's account. A configured bonus is
// credited in the same transaction and logged as an initial-bonus entry.
func (s *MarketplaceService) RegisterAccount(ctx context.Context, actor domain.Actor, req port.RegisterAccountReq) (*domain.Account, error) {
	if actor.ID == "" || !actor.Role.Valid() {
		return nil, fmt.Errorf("%w: actor must carry an id and a known role", domain.ErrInvalidArgument)
	}
	at := s.now()
	acc := &domain.Account{
		ID:        actor.ID,
		Role:      actor.Role,
		PayoutKey: req.PayoutKey,
		CreatedAt: at,
		UpdatedAt: at,
	}
	bonus := s.bonuses.forRole(actor.Role)

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		if err := tx.InsertAccount(ctx, acc); err != nil {
			return err
		}
		if bonus == 0 {
			return nil
		}
		if err := tx.Credit(ctx, acc.ID, bonus); err != nil {
			return err
		}
		return tx.AppendEntries(ctx, domain.BonusEntry(acc.ID, bonus, at))
	})
	if err != nil {
		return nil, err
	}
	acc.Balance = bonus
	s.logger.Info("account registered",
		slog.String("account_id", acc.ID),
		slog.String("role", string(acc.Role)),
		slog.String("bonus", domain.FormatAmount(bonus)))
	s.notify(ctx, port.AccountTopic(acc.ID))
	return acc, nil
}

// GetAccount returns the actor's own account.
func (s *MarketplaceService) GetAccount(ctx context.Context, actor domain.Actor) (*domain.Account, error) {
	return s.store.GetAccount(ctx, actor.ID)
}

// ListLedgerEntries returns the actor's transaction history.
func (s *MarketplaceService) ListLedgerEntries(ctx context.Context, actor domain.Actor) ([]domain.LedgerEntry, error) {
	return s.store.ListLedgerEntries(ctx, actor.ID, s.limit)
}

// CreateCampaign registers a campaign funded by the acting advertiser.
func (s *MarketplaceService) CreateCampaign(ctx context.Context, actor domain.Actor, req port.CreateCampaignReq) (*domain.Campaign, error) {
	if actor.Role != domain.RoleAdvertiser {
		return nil, fmt.Errorf("%w: only advertisers fund campaigns", domain.ErrRoleMismatch)
	}
	camp, err := domain.NewCampaign(actor.ID, req.Name, req.RPM, req.TotalBudget, req.Rules, s.now())
	if err != nil {
		return nil, err
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		accounts, err := tx.LockAccounts(ctx, actor.ID)
		if err != nil {
			return err
		}
		if err = storedRole(accounts[actor.ID], domain.RoleAdvertiser); err != nil {
			return err
		}
		return tx.InsertCampaign(ctx, camp)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("campaign created",
		slog.String("campaign_id", camp.ID.String()),
		slog.String("advertiser_id", camp.AdvertiserID),
		slog.String("total_budget", domain.FormatAmount(camp.TotalBudget)))
	s.notify(ctx, port.AccountTopic(actor.ID))
	return camp, nil
}

// GetCampaign returns any campaign; campaigns are public listings.
func (s *MarketplaceService) GetCampaign(ctx context.Context, _ domain.Actor, id uuid.UUID) (*domain.Campaign, error) {
	return s.store.GetCampaign(ctx, id)
}

// ListCampaigns lists public campaigns.
func (s *MarketplaceService) ListCampaigns(ctx context.Context, _ domain.Actor, f port.CampaignFilter) ([]domain.Campaign, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: campaign status %q", domain.ErrInvalidArgument, f.Status)
	}
	f.Limit = s.clampLimit(f.Limit)
	return s.store.ListCampaigns(ctx, f)
}

// CreateSubmission records the acting clipper's claim against a campaign.
func (s *MarketplaceService) CreateSubmission(ctx context.Context, actor domain.Actor, req port.CreateSubmissionReq) (*domain.Submission, error) {
	if actor.Role != domain.RoleClipper {
		return nil, fmt.Errorf("%w: only clippers submit videos", domain.ErrRoleMismatch)
	}
	var sub *domain.Submission
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		camp, err := tx.LockCampaign(ctx, req.CampaignID)
		if err != nil {
			return err
		}
		accounts, err := tx.LockAccounts(ctx, actor.ID)
		if err != nil {
			return err
		}
		if err = storedRole(accounts[actor.ID], domain.RoleClipper); err != nil {
			return err
		}
		sub, err = domain.NewSubmission(camp, actor.ID, req.VideoLink, req.DeclaredViews, s.now())
		if err != nil {
			return err
		}
		return tx.InsertSubmission(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("submission created",
		slog.String("submission_id", sub.ID.String()),
		slog.String("campaign_id", sub.CampaignID.String()),
		slog.String("clipper_id", sub.ClipperID),
		slog.Int64("declared_views", sub.DeclaredViews))
	s.notify(ctx,
		port.AccountTopic(sub.ClipperID),
		port.AccountTopic(sub.AdvertiserID),
		port.CampaignTopic(sub.CampaignID))
	return sub, nil
}

// ListSubmissions scopes f to what actor may see and runs it.
func (s *MarketplaceService) ListSubmissions(ctx context.Context, actor domain.Actor, f port.SubmissionFilter) ([]domain.Submission, error) {
	f, err := s.scopeSubmissions(actor, f)
	if err != nil {
		return nil, err
	}
	return s.store.ListSubmissions(ctx, f)
}

func (s *MarketplaceService) scopeSubmissions(actor domain.Actor, f port.SubmissionFilter) (port.SubmissionFilter, error) {
	if f.Status != "" && !f.Status.Valid() {
		return f, fmt.Errorf("%w: submission status %q", domain.ErrInvalidArgument, f.Status)
	}
	switch actor.Role {
	case domain.RoleAdvertiser:
		if f.AdvertiserID != "" && f.AdvertiserID != actor.ID {
			return f, fmt.Errorf("%w: submissions of advertiser %s", domain.ErrUnauthorized, f.AdvertiserID)
		}
		f.AdvertiserID = actor.ID
	case domain.RoleClipper:
		if f.ClipperID != "" && f.ClipperID != actor.ID {
			return f, fmt.Errorf("%w: submissions of clipper %s", domain.ErrUnauthorized, f.ClipperID)
		}
		f.ClipperID = actor.ID
	default:
		return f, fmt.Errorf("%w: unknown role %q", domain.ErrUnauthorized, actor.Role)
	}
	f.Limit = s.clampLimit(f.Limit)
	return f, nil
}

// Settle runs the settlement engine and announces the outcome.
func (s *MarketplaceService) Settle(ctx context.Context, actor domain.Actor, submissionID uuid.UUID, d domain.Decision) (*domain.Submission, error) {
	start := time.Now()
	sub, err := s.engine.Settle(ctx, actor, submissionID, d)
	if s.observer != nil {
		s.observer.ObserveSettlement(d.Kind, err, time.Since(start))
	}

	attrs := []any{
		slog.String("submission_id", submissionID.String()),
		slog.String("actor_id", actor.ID),
		slog.String("decision", string(d.Kind)),
	}
	if err != nil {
		if isBusinessError(err) {
			s.logger.Warn("settlement refused", append(attrs, slog.Any("error", err))...)
		} else {
			s.logger.Error("settlement failed", append(attrs, slog.Any("error", err))...)
		}
		return nil, err
	}
	s.logger.Info("settlement committed", append(attrs,
		slog.String("status", string(sub.Status)),
		slog.String("reward", domain.FormatAmount(sub.Reward)))...)

	s.notify(ctx,
		port.AccountTopic(sub.AdvertiserID),
		port.AccountTopic(sub.ClipperID),
		port.CampaignTopic(sub.CampaignID))
	return sub, nil
}

// WatchSubmissions subscribes to the topics that cover f once scoped.
func (s *MarketplaceService) WatchSubmissions(ctx context.Context, actor domain.Actor, f port.SubmissionFilter) (port.Subscription, error) {
	f, err := s.scopeSubmissions(actor, f)
	if err != nil {
		return nil, err
	}
	if f.CampaignID != nil {
		camp, err := s.store.GetCampaign(ctx, *f.CampaignID)
		if err != nil {
			return nil, err
		}
		if actor.Role == domain.RoleAdvertiser && camp.AdvertiserID != actor.ID {
			return nil, fmt.Errorf("%w: campaign %s", domain.ErrUnauthorized, camp.ID)
		}
	}
	// Every submission an actor can see touches the actor's own account
	// topic, so that one topic covers any scoped filter.
	return s.feed.Subscribe(ctx, port.AccountTopic(actor.ID))
}

// WatchAccount subscribes to the actor's account topic.
func (s *MarketplaceService) WatchAccount(ctx context.Context, actor domain.Actor) (port.Subscription, error) {
	if _, err := s.store.GetAccount(ctx, actor.ID); err != nil {
		return nil, err
	}
	return s.feed.Subscribe(ctx, port.AccountTopic(actor.ID))
}

// notify publishes after commit. A lost notice only delays live views, so
// failures are logged and swallowed.
func (s *MarketplaceService) notify(ctx context.Context, topics ...string) {
	if err := s.feed.Publish(context.WithoutCancel(ctx), topics...); err != nil {
		s.logger.Error("publish change notice", slog.Any("topics", topics), slog.Any("error", err))
	}
}

func (s *MarketplaceService) clampLimit(limit int) int {
	if limit <= 0 || limit > s.limit {
		return s.limit
	}
	return limit
}

// storedRole checks the registered role, which outranks the token's claim.
func storedRole(acc *domain.Account, want domain.Role) error {
	if acc.Role != want {
		return fmt.Errorf("%w: account %s is registered as %s", domain.ErrRoleMismatch, acc.ID, acc.Role)
	}
	return nil
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		domain.ErrInsufficientFunds,
		domain.ErrBudgetExceeded,
		domain.ErrInvalidTransition,
		domain.ErrUnauthorized,
		domain.ErrNotFound,
		domain.ErrInvalidArgument,
		domain.ErrRoleMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
