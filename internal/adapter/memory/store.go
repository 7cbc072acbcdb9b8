// Package memory provides in-process implementations of the store and
// change feed ports. They back STORE_DRIVER=memory and the tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"viral-reward/internal/core/domain"
	"viral-reward/internal/core/port"
)

type videoKey struct {
	campaignID uuid.UUID
	link       string
}

type state struct {
	accounts    map[string]domain.Account
	campaigns   map[uuid.UUID]domain.Campaign
	submissions map[uuid.UUID]domain.Submission
	videos      map[videoKey]uuid.UUID
	entries     []domain.LedgerEntry
}

// Store implements port.Store in memory. Transactions hold the store-wide
// write lock for their whole duration, which makes them trivially
// serializable; their writes are staged and merged on commit only.
type Store struct {
	mu    sync.RWMutex
	state state
	now   func() time.Time
}

var _ port.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		state: state{
			accounts:    map[string]domain.Account{},
			campaigns:   map[uuid.UUID]domain.Campaign{},
			submissions: map[uuid.UUID]domain.Submission{},
			videos:      map[videoKey]uuid.UUID{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithinTx implements port.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		base:        &s.state,
		now:         s.now,
		accounts:    map[string]domain.Account{},
		campaigns:   map[uuid.UUID]domain.Campaign{},
		submissions: map[uuid.UUID]domain.Submission{},
		videos:      map[videoKey]uuid.UUID{},
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// memTx overlays staged rows on the committed state.
type memTx struct {
	base *state
	now  func() time.Time

	accounts    map[string]domain.Account
	campaigns   map[uuid.UUID]domain.Campaign
	submissions map[uuid.UUID]domain.Submission
	videos      map[videoKey]uuid.UUID
	entries     []domain.LedgerEntry
}

func (t *memTx) commit() {
	for id, a := range t.accounts {
		t.base.accounts[id] = a
	}
	for id, c := range t.campaigns {
		t.base.campaigns[id] = c
	}
	for id, sub := range t.submissions {
		t.base.submissions[id] = sub
	}
	for k, id := range t.videos {
		t.base.videos[k] = id
	}
	t.base.entries = append(t.base.entries, t.entries...)
}

func (t *memTx) account(id string) (domain.Account, bool) {
	if a, ok := t.accounts[id]; ok {
		return a, true
	}
	a, ok := t.base.accounts[id]
	return a, ok
}

func (t *memTx) campaign(id uuid.UUID) (domain.Campaign, bool) {
	if c, ok := t.campaigns[id]; ok {
		return c, true
	}
	c, ok := t.base.campaigns[id]
	return c, ok
}

func (t *memTx) submission(id uuid.UUID) (domain.Submission, bool) {
	if sub, ok := t.submissions[id]; ok {
		return sub, true
	}
	sub, ok := t.base.submissions[id]
	return sub, ok
}

func (t *memTx) LockSubmission(_ context.Context, id uuid.UUID) (*domain.Submission, error) {
	sub, ok := t.submission(id)
	if !ok {
		return nil, fmt.Errorf("submission %s: %w", id, domain.ErrNotFound)
	}
	return cloneSubmission(sub), nil
}

func (t *memTx) LockCampaign(_ context.Context, id uuid.UUID) (*domain.Campaign, error) {
	c, ok := t.campaign(id)
	if !ok {
		return nil, fmt.Errorf("campaign %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

func (t *memTx) LockAccounts(_ context.Context, ids ...string) (map[string]*domain.Account, error) {
	out := make(map[string]*domain.Account, len(ids))
	for _, id := range ids {
		a, ok := t.account(id)
		if !ok {
			return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
		}
		out[id] = &a
	}
	return out, nil
}

func (t *memTx) Debit(_ context.Context, accountID string, amount int64) error {
	return t.mutateAccount(accountID, func(a *domain.Account) error { return a.Debit(amount) })
}

func (t *memTx) Credit(_ context.Context, accountID string, amount int64) error {
	return t.mutateAccount(accountID, func(a *domain.Account) error { return a.Credit(amount) })
}

func (t *memTx) mutateAccount(id string, apply func(a *domain.Account) error) error {
	a, ok := t.account(id)
	if !ok {
		return fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	if err := apply(&a); err != nil {
		return err
	}
	a.UpdatedAt = t.now()
	t.accounts[id] = a
	return nil
}

func (t *memTx) ReserveSpend(_ context.Context, campaignID uuid.UUID, amount int64) error {
	c, ok := t.campaign(campaignID)
	if !ok {
		return fmt.Errorf("campaign %s: %w", campaignID, domain.ErrNotFound)
	}
	if err := c.ReserveSpend(amount); err != nil {
		return err
	}
	c.UpdatedAt = t.now()
	t.campaigns[campaignID] = c
	return nil
}

func (t *memTx) AppendEntries(_ context.Context, entries ...domain.LedgerEntry) error {
	for _, e := range entries {
		if _, ok := t.account(e.AccountID); !ok {
			return fmt.Errorf("ledger entry for account %s: %w", e.AccountID, domain.ErrNotFound)
		}
	}
	t.entries = append(t.entries, entries...)
	return nil
}

func (t *memTx) UpdateSubmission(_ context.Context, sub *domain.Submission) error {
	cur, ok := t.submission(sub.ID)
	if !ok {
		return fmt.Errorf("submission %s: %w", sub.ID, domain.ErrNotFound)
	}
	cur.AuditedViews = sub.AuditedViews
	cur.Reward = sub.Reward
	cur.Status = sub.Status
	cur.RejectionReason = sub.RejectionReason
	cur.DecidedAt = sub.DecidedAt
	t.submissions[sub.ID] = *cloneSubmission(cur)
	return nil
}

func (t *memTx) InsertAccount(_ context.Context, acc *domain.Account) error {
	if _, ok := t.account(acc.ID); ok {
		return fmt.Errorf("account %s: %w", acc.ID, domain.ErrAccountExists)
	}
	t.accounts[acc.ID] = *acc
	return nil
}

func (t *memTx) InsertCampaign(_ context.Context, camp *domain.Campaign) error {
	t.campaigns[camp.ID] = *camp
	return nil
}

func (t *memTx) InsertSubmission(_ context.Context, sub *domain.Submission) error {
	key := videoKey{campaignID: sub.CampaignID, link: sub.VideoLink}
	_, staged := t.videos[key]
	_, committed := t.base.videos[key]
	if staged || committed {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateSubmission, sub.VideoLink)
	}
	t.videos[key] = sub.ID
	t.submissions[sub.ID] = *cloneSubmission(*sub)
	return nil
}

// GetAccount implements port.Reader.
func (s *Store) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	return &a, nil
}

// GetCampaign implements port.Reader.
func (s *Store) GetCampaign(_ context.Context, id uuid.UUID) (*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.campaigns[id]
	if !ok {
		return nil, fmt.Errorf("campaign %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

// GetSubmission implements port.Reader.
func (s *Store) GetSubmission(_ context.Context, id uuid.UUID) (*domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.state.submissions[id]
	if !ok {
		return nil, fmt.Errorf("submission %s: %w", id, domain.ErrNotFound)
	}
	return cloneSubmission(sub), nil
}

// ListCampaigns implements port.Reader.
func (s *Store) ListCampaigns(_ context.Context, f port.CampaignFilter) ([]domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Campaign, 0)
	for _, c := range s.state.campaigns {
		if f.AdvertiserID != "" && c.AdvertiserID != f.AdvertiserID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return truncate(out, f.Limit), nil
}

// ListSubmissions implements port.Reader.
func (s *Store) ListSubmissions(_ context.Context, f port.SubmissionFilter) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Submission, 0)
	for _, sub := range s.state.submissions {
		if f.CampaignID != nil && sub.CampaignID != *f.CampaignID {
			continue
		}
		if f.ClipperID != "" && sub.ClipperID != f.ClipperID {
			continue
		}
		if f.AdvertiserID != "" && sub.AdvertiserID != f.AdvertiserID {
			continue
		}
		if f.Status != "" && sub.Status != f.Status {
			continue
		}
		out = append(out, *cloneSubmission(sub))
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return truncate(out, f.Limit), nil
}

// ListLedgerEntries implements port.Reader.
func (s *Store) ListLedgerEntries(_ context.Context, accountID string, limit int) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.LedgerEntry, 0)
	// entries are appended in commit order; walk backwards for newest first
	for i := len(s.state.entries) - 1; i >= 0; i-- {
		if e := s.state.entries[i]; e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return truncate(out, limit), nil
}

func newerFirst(a, b time.Time, idA, idB uuid.UUID) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return idA.String() < idB.String()
}

func truncate[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func cloneSubmission(sub domain.Submission) *domain.Submission {
	if sub.AuditedViews != nil {
		v := *sub.AuditedViews
		sub.AuditedViews = &v
	}
	if sub.DecidedAt != nil {
		at := *sub.DecidedAt
		sub.DecidedAt = &at
	}
	return &sub
}
