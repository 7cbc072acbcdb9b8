package db

import (
	"context"
	"errors"
	"time"

	"viral-reward/internal/core/domain"
	"viral-reward/internal/core/port"
)

// Demo identities created by Seed.
const (
	DemoAdvertiserID = "demo-advertiser"
	DemoClipperID    = "demo-clipper"
)

const (
	demoAdvertiserFunds = 50_000  // 500.00
	demoRPM             = 1_000   // 10.00 per 1,000 views
	demoBudget          = 100_000 // 1,000.00
)

// Seed provisions a funded advertiser, a clipper and one active campaign.
// It works against any port.Store and is a no-op when the demo advertiser
// already exists.
func Seed(ctx context.Context, store port.Store) error {
	now := time.Now().UTC()
	err := store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		adv := &domain.Account{
			ID:        DemoAdvertiserID,
			Role:      domain.RoleAdvertiser,
			Balance:   demoAdvertiserFunds,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.InsertAccount(ctx, adv); err != nil {
			return err
		}
		clip := &domain.Account{
			ID:        DemoClipperID,
			Role:      domain.RoleClipper,
			PayoutKey: "demo-payout-key",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.InsertAccount(ctx, clip); err != nil {
			return err
		}
		if err := tx.AppendEntries(ctx, domain.BonusEntry(adv.ID, demoAdvertiserFunds, now)); err != nil {
			return err
		}
		camp, err := domain.NewCampaign(adv.ID, "Demo launch clips", demoRPM, demoBudget,
			"Vertical video, 15-60s, brand mention in the first 5s.", now)
		if err != nil {
			return err
		}
		return tx.InsertCampaign(ctx, camp)
	})
	if errors.Is(err, domain.ErrAccountExists) {
		return nil
	}
	return err
}
