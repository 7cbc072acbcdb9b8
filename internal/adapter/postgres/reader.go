package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"viral-reward/internal/core/domain"
	"viral-reward/internal/core/port"
)

// GetAccount returns an account by id.
func (s *Store) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	acc, err := scanAccount(s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %s", domain.ErrNotFound, id)
	}
	return acc, err
}

// GetCampaign returns a campaign by id.
func (s *Store) GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	camp, err := scanCampaign(s.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: campaign %s", domain.ErrNotFound, id)
	}
	return camp, err
}

// GetSubmission returns a submission by id.
func (s *Store) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	sub, err := scanSubmission(s.pool.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: submission %s", domain.ErrNotFound, id)
	}
	return sub, err
}

// ListCampaigns returns campaigns matching f, newest first.
func (s *Store) ListCampaigns(ctx context.Context, f port.CampaignFilter) ([]domain.Campaign, error) {
	query, args := campaignQuery(f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCampaign)
}

// ListSubmissions returns submissions matching f, newest first.
func (s *Store) ListSubmissions(ctx context.Context, f port.SubmissionFilter) ([]domain.Submission, error) {
	query, args := submissionQuery(f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSubmission)
}

// ListLedgerEntries returns an account's entries, newest first.
func (s *Store) ListLedgerEntries(ctx context.Context, accountID string, limit int) ([]domain.LedgerEntry, error) {
	var w where
	w.add("account_id", accountID)
	query := `SELECT ` + entryColumns + ` FROM ledger_entries` + w.String() +
		` ORDER BY created_at DESC, seq DESC` + w.limit(limit)
	rows, err := s.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEntry)
}

func campaignQuery(f port.CampaignFilter) (string, []any) {
	var w where
	if f.AdvertiserID != "" {
		w.add("advertiser_id", f.AdvertiserID)
	}
	if f.Status != "" {
		w.add("status", string(f.Status))
	}
	query := `SELECT ` + campaignColumns + ` FROM campaigns` + w.String() +
		` ORDER BY created_at DESC, id` + w.limit(f.Limit)
	return query, w.args
}

func submissionQuery(f port.SubmissionFilter) (string, []any) {
	var w where
	if f.CampaignID != nil {
		w.add("campaign_id", *f.CampaignID)
	}
	if f.ClipperID != "" {
		w.add("clipper_id", f.ClipperID)
	}
	if f.AdvertiserID != "" {
		w.add("advertiser_id", f.AdvertiserID)
	}
	if f.Status != "" {
		w.add("status", string(f.Status))
	}
	query := `SELECT ` + submissionColumns + ` FROM submissions` + w.String() +
		` ORDER BY created_at DESC, id` + w.limit(f.Limit)
	return query, w.args
}

// where accumulates equality predicates and their positional arguments.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(column string, value any) {
	w.args = append(w.args, value)
	w.conds = append(w.conds, fmt.Sprintf("%s = $%d", column, len(w.args)))
}

func (w *where) limit(n int) string {
	if n <= 0 {
		return ""
	}
	w.args = append(w.args, n)
	return fmt.Sprintf(" LIMIT $%d", len(w.args))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
