package postgres

import (
	"github.com/jackc/pgx/v5"

	"viral-reward/internal/core/domain"
)

const (
	accountColumns    = `id, role, balance, payout_key, created_at, updated_at`
	campaignColumns   = `id, advertiser_id, name, rpm, total_budget, spent, status, rules, created_at, updated_at`
	submissionColumns = `id, campaign_id, clipper_id, advertiser_id, video_link, declared_views, rpm_snapshot,
        audited_views, reward, status, rejection_reason, created_at, decided_at`
	entryColumns = `id, account_id, amount, category, reference_id, created_at`
)

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Role, &a.Balance, &a.PayoutKey, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(&c.ID, &c.AdvertiserID, &c.Name, &c.RPM, &c.TotalBudget, &c.Spent,
		&c.Status, &c.Rules, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var s domain.Submission
	err := row.Scan(&s.ID, &s.CampaignID, &s.ClipperID, &s.AdvertiserID, &s.VideoLink,
		&s.DeclaredViews, &s.RPMSnapshot, &s.AuditedViews, &s.Reward, &s.Status,
		&s.RejectionReason, &s.CreatedAt, &s.DecidedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := row.Scan(&e.ID, &e.AccountID, &e.Amount, &e.Category, &e.ReferenceID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// collect scans every row with scan, the way pgx.CollectRows does, but
// through the row scanners above.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]T, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		v, err := scan(row)
		if err != nil {
			var zero T
			return zero, err
		}
		return *v, nil
	})
}
