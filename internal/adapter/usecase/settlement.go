package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"viral-reward/internal/core/domain"
	"viral-reward/internal/core/port"
)

// SettlementEngine applies audit decisions to submissions. Every decision
// runs as one store transaction touching the submission, its campaign and
// the two accounts involved, so a decision is either fully applied or not
// at all. The engine keeps no state of its own; concurrent callers are
// serialized by the store.
type SettlementEngine struct {
	store port.Store
	now   func() time.Time
}

// NewSettlementEngine returns an engine writing through store.
func NewSettlementEngine(store port.Store) *SettlementEngine {
	return &SettlementEngine{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Settle validates d and applies it to the submission on behalf of actor.
// It returns the submission as committed.
func (e *SettlementEngine) Settle(ctx context.Context, actor domain.Actor, submissionID uuid.UUID, d domain.Decision) (*domain.Submission, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var settled *domain.Submission
	err := e.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		sub, err := tx.LockSubmission(ctx, submissionID)
		if err != nil {
			return err
		}
		if err = sub.Authorize(actor); err != nil {
			return err
		}
		// A concurrent decision that committed first shows up here as a
		// terminal status.
		if sub.Status.Terminal() {
			return fmt.Errorf("%w: submission %s is already %s", domain.ErrInvalidTransition, sub.ID, sub.Status)
		}

		switch d.Kind {
		case domain.DecisionReject:
			err = e.reject(ctx, tx, sub, d.Reason)
		default:
			err = e.approve(ctx, tx, sub, d.AuditedViews)
		}
		if err != nil {
			return err
		}
		settled = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

func (e *SettlementEngine) reject(ctx context.Context, tx port.Tx, sub *domain.Submission, reason string) error {
	if err := sub.Reject(reason, e.now()); err != nil {
		return err
	}
	return tx.UpdateSubmission(ctx, sub)
}

// approve pays the reward for auditedViews from the advertiser to the
// clipper and closes the submission. Any error aborts the transaction.
func (e *SettlementEngine) approve(ctx context.Context, tx port.Tx, sub *domain.Submission, auditedViews int64) error {
	camp, err := tx.LockCampaign(ctx, sub.CampaignID)
	if err != nil {
		return fmt.Errorf("campaign of submission %s: %w", sub.ID, err)
	}
	accounts, err := tx.LockAccounts(ctx, sub.AdvertiserID, sub.ClipperID)
	if err != nil {
		return fmt.Errorf("accounts of submission %s: %w", sub.ID, err)
	}
	if acc := accounts[sub.AdvertiserID]; acc.Role != domain.RoleAdvertiser {
		return fmt.Errorf("%w: payer %s is a %s", domain.ErrRoleMismatch, acc.ID, acc.Role)
	}

	reward, err := domain.Reward(auditedViews, sub.RPMSnapshot)
	if err != nil {
		return err
	}
	at := e.now()

	if err = tx.ReserveSpend(ctx, camp.ID, reward); err != nil {
		return err
	}
	if err = tx.Debit(ctx, sub.AdvertiserID, reward); err != nil {
		return err
	}
	if err = tx.Credit(ctx, sub.ClipperID, reward); err != nil {
		return err
	}
	entries := domain.SettlementEntries(sub.ID, sub.AdvertiserID, sub.ClipperID, reward, at)
	if err = tx.AppendEntries(ctx, entries...); err != nil {
		return err
	}
	if err = sub.Approve(auditedViews, reward, at); err != nil {
		return err
	}
	return tx.UpdateSubmission(ctx, sub)
}
