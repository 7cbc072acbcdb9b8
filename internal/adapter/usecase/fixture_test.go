package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"viral-reward/internal/adapter/memory"
	"viral-reward/internal/core/domain"
	"viral-reward/internal/core/port"
)

var (
	advertiser = domain.Actor{ID: "adv-1", Role: domain.RoleAdvertiser}
	rival      = domain.Actor{ID: "adv-2", Role: domain.RoleAdvertiser}
	clipper    = domain.Actor{ID: "clip-1", Role: domain.RoleClipper}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	store *memory.Store
	feed  *memory.Feed
	svc   *MarketplaceService
}

// newFixture registers advertiser, rival and clipper; advertisers receive
// advertiserBonus cents.
func newFixture(t *testing.T, advertiserBonus int64) *fixture {
	t.Helper()
	store := memory.NewStore()
	feed := memory.NewFeed()
	svc := NewMarketplaceService(store, feed, discardLogger(), Options{
		Bonuses: Bonuses{Advertiser: advertiserBonus},
	})
	for _, a := range []domain.Actor{advertiser, rival, clipper} {
		_, err := svc.RegisterAccount(context.Background(), a, port.RegisterAccountReq{PayoutKey: "pix-" + a.ID})
		require.NoError(t, err)
	}
	return &fixture{store: store, feed: feed, svc: svc}
}

func (f *fixture) campaign(t *testing.T, rpm, total int64) *domain.Campaign {
	t.Helper()
	camp, err := f.svc.CreateCampaign(context.Background(), advertiser, port.CreateCampaignReq{
		Name:        "launch",
		RPM:         rpm,
		TotalBudget: total,
	})
	require.NoError(t, err)
	return camp
}

func (f *fixture) submission(t *testing.T, camp *domain.Campaign, link string, views int64) *domain.Submission {
	t.Helper()
	sub, err := f.svc.CreateSubmission(context.Background(), clipper, port.CreateSubmissionReq{
		CampaignID:    camp.ID,
		VideoLink:     link,
		DeclaredViews: views,
	})
	require.NoError(t, err)
	return sub
}

func (f *fixture) balance(t *testing.T, id string) int64 {
	t.Helper()
	acc, err := f.store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance
}

func (f *fixture) spent(t *testing.T, camp *domain.Campaign) int64 {
	t.Helper()
	got, err := f.store.GetCampaign(context.Background(), camp.ID)
	require.NoError(t, err)
	return got.Spent
}

func (f *fixture) status(t *testing.T, sub *domain.Submission) domain.SubmissionStatus {
	t.Helper()
	got, err := f.store.GetSubmission(context.Background(), sub.ID)
	require.NoError(t, err)
	return got.Status
}
