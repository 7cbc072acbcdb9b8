package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"viral-reward/internal/core/domain"
	"viral-reward/internal/core/port"
)

const (
	constraintAccountPK       = "accounts_pkey"
	constraintSubmissionVideo = "submissions_campaign_video_key"
)

// pgTx implements port.Tx on top of a serializable pgx transaction.
type pgTx struct {
	tx pgx.Tx
}

var _ port.Tx = (*pgTx)(nil)

func (t *pgTx) LockSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1 FOR UPDATE`, id)
	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: submission %s", domain.ErrNotFound, id)
	}
	return sub, err
}

func (t *pgTx) LockCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, id)
	camp, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: campaign %s", domain.ErrNotFound, id)
	}
	return camp, err
}

// LockAccounts locks rows in id order so two settlements touching the same
// pair never deadlock on each other.
func (t *pgTx) LockAccounts(ctx context.Context, ids ...string) (map[string]*domain.Account, error) {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	rows, err := t.tx.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	accounts, err := collect(rows, scanAccount)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*domain.Account, len(accounts))
	for i := range accounts {
		out[accounts[i].ID] = &accounts[i]
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("%w: account %s", domain.ErrNotFound, id)
		}
	}
	return out, nil
}

func (t *pgTx) Debit(ctx context.Context, accountID string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative debit", domain.ErrInvalidArgument)
	}
	tag, err := t.tx.Exec(ctx, `
        UPDATE accounts SET balance = balance - $2, updated_at = now()
        WHERE id = $1 AND balance >= $2`, accountID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var balance int64
	err = t.tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: account %s holds %s, needs %s",
		domain.ErrInsufficientFunds, accountID, domain.FormatAmount(balance), domain.FormatAmount(amount))
}

func (t *pgTx) Credit(ctx context.Context, accountID string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative credit", domain.ErrInvalidArgument)
	}
	tag, err := t.tx.Exec(ctx, `
        UPDATE accounts SET balance = balance + $2, updated_at = now()
        WHERE id = $1`, accountID, amount)
	if isOutOfRange(err) {
		return fmt.Errorf("%w: credit of %s overflows account %s",
			domain.ErrInvalidArgument, domain.FormatAmount(amount), accountID)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
	}
	return nil
}

func (t *pgTx) ReserveSpend(ctx context.Context, campaignID uuid.UUID, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative spend", domain.ErrInvalidArgument)
	}
	tag, err := t.tx.Exec(ctx, `
        UPDATE campaigns SET spent = spent + $2, updated_at = now()
        WHERE id = $1 AND $2 <= total_budget - spent`, campaignID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var total, spent int64
	err = t.tx.QueryRow(ctx, `SELECT total_budget, spent FROM campaigns WHERE id = $1`, campaignID).
		Scan(&total, &spent)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: campaign %s", domain.ErrNotFound, campaignID)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: campaign %s has %s left, needs %s",
		domain.ErrBudgetExceeded, campaignID, domain.FormatAmount(total-spent), domain.FormatAmount(amount))
}

func (t *pgTx) AppendEntries(ctx context.Context, entries ...domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{"ledger_entries"},
		[]string{"id", "account_id", "amount", "category", "reference_id", "created_at"},
		pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
			e := entries[i]
			return []any{e.ID, e.AccountID, e.Amount, string(e.Category), e.ReferenceID, e.CreatedAt}, nil
		}),
	)
	return err
}

func (t *pgTx) UpdateSubmission(ctx context.Context, sub *domain.Submission) error {
	tag, err := t.tx.Exec(ctx, `
        UPDATE submissions
        SET audited_views = $2, reward = $3, status = $4, rejection_reason = $5, decided_at = $6
        WHERE id = $1`,
		sub.ID, sub.AuditedViews, sub.Reward, string(sub.Status), sub.RejectionReason, sub.DecidedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: submission %s", domain.ErrNotFound, sub.ID)
	}
	return nil
}

func (t *pgTx) InsertAccount(ctx context.Context, acc *domain.Account) error {
	_, err := t.tx.Exec(ctx, `
        INSERT INTO accounts (id, role, balance, payout_key, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		acc.ID, string(acc.Role), acc.Balance, acc.PayoutKey, acc.CreatedAt, acc.UpdatedAt)
	if isUniqueViolation(err, constraintAccountPK) {
		return fmt.Errorf("%w: %s", domain.ErrAccountExists, acc.ID)
	}
	return err
}

func (t *pgTx) InsertCampaign(ctx context.Context, camp *domain.Campaign) error {
	_, err := t.tx.Exec(ctx, `
        INSERT INTO campaigns (id, advertiser_id, name, rpm, total_budget, spent, status, rules, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		camp.ID, camp.AdvertiserID, camp.Name, camp.RPM, camp.TotalBudget, camp.Spent,
		string(camp.Status), camp.Rules, camp.CreatedAt, camp.UpdatedAt)
	return err
}

func (t *pgTx) InsertSubmission(ctx context.Context, sub *domain.Submission) error {
	_, err := t.tx.Exec(ctx, `
        INSERT INTO submissions (id, campaign_id, clipper_id, advertiser_id, video_link, declared_views,
            rpm_snapshot, audited_views, reward, status, rejection_reason, created_at, decided_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		sub.ID, sub.CampaignID, sub.ClipperID, sub.AdvertiserID, sub.VideoLink, sub.DeclaredViews,
		sub.RPMSnapshot, sub.AuditedViews, sub.Reward, string(sub.Status), sub.RejectionReason,
		sub.CreatedAt, sub.DecidedAt)
	if isUniqueViolation(err, constraintSubmissionVideo) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateSubmission, sub.VideoLink)
	}
	return err
}
