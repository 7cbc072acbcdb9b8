package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viral-reward/internal/adapter/memory"
	"viral-reward/internal/adapter/usecase"
	"viral-reward/internal/config/configs"
	"viral-reward/internal/core/domain"
	"viral-reward/internal/core/port"
	"viral-reward/internal/db"
)

// newIntegrationStore connects to the database named by PSQL_TEST_ADDRESS,
// migrates it and empties every table. Tests are skipped without it.
func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("PSQL_TEST_ADDRESS")
	if addr == "" {
		t.Skip("PSQL_TEST_ADDRESS not set")
	}
	u, err := url.Parse(addr)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(addr))

	ctx := context.Background()
	pool, err := db.NewPostgresPool(ctx, configs.Postgres{Addr: *u})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE ledger_entries, submissions, campaigns, accounts`)
	require.NoError(t, err)
	return NewStore(pool, Options{MaxRetries: 30, Backoff: 5 * time.Millisecond})
}

func newIntegrationService(t *testing.T, store *Store, bonus int64) *usecase.MarketplaceService {
	t.Helper()
	svc := usecase.NewMarketplaceService(store, memory.NewFeed(), slog.New(slog.NewTextHandler(io.Discard, nil)),
		usecase.Options{Bonuses: usecase.Bonuses{Advertiser: bonus}})
	for _, a := range []domain.Actor{
		{ID: "adv-1", Role: domain.RoleAdvertiser},
		{ID: "clip-1", Role: domain.RoleClipper},
	} {
		_, err := svc.RegisterAccount(context.Background(), a, port.RegisterAccountReq{})
		require.NoError(t, err)
	}
	return svc
}

func TestIntegrationSettlement(t *testing.T) {
	store := newIntegrationStore(t)
	svc := newIntegrationService(t, store, 100_000)
	ctx := context.Background()
	adv := domain.Actor{ID: "adv-1", Role: domain.RoleAdvertiser}
	clip := domain.Actor{ID: "clip-1", Role: domain.RoleClipper}

	camp, err := svc.CreateCampaign(ctx, adv, port.CreateCampaignReq{Name: "launch", RPM: 1_000, TotalBudget: 50_000})
	require.NoError(t, err)
	sub, err := svc.CreateSubmission(ctx, clip, port.CreateSubmissionReq{
		CampaignID: camp.ID, VideoLink: "https://video.example/a", DeclaredViews: 30_000,
	})
	require.NoError(t, err)

	_, err = svc.CreateSubmission(ctx, clip, port.CreateSubmissionReq{
		CampaignID: camp.ID, VideoLink: "https://video.example/a", DeclaredViews: 1,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateSubmission)

	got, err := svc.Settle(ctx, adv, sub.ID, domain.Approve(20_000))
	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionPaid, got.Status)
	assert.EqualValues(t, 20_000, got.Reward)

	advAcc, err := store.GetAccount(ctx, adv.ID)
	require.NoError(t, err)
	clipAcc, err := store.GetAccount(ctx, clip.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 80_000, advAcc.Balance)
	assert.EqualValues(t, 20_000, clipAcc.Balance)

	entries, err := store.ListLedgerEntries(ctx, clip.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, sub.ID, entries[0].ReferenceID)

	_, err = svc.Settle(ctx, adv, sub.ID, domain.Approve(20_000))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestIntegrationConcurrentBudget(t *testing.T) {
	store := newIntegrationStore(t)
	svc := newIntegrationService(t, store, 1_000_000)
	ctx := context.Background()
	adv := domain.Actor{ID: "adv-1", Role: domain.RoleAdvertiser}
	clip := domain.Actor{ID: "clip-1", Role: domain.RoleClipper}

	camp, err := svc.CreateCampaign(ctx, adv, port.CreateCampaignReq{Name: "cap", RPM: 1_000, TotalBudget: 1_000})
	require.NoError(t, err)

	const n = 10
	subs := make([]*domain.Submission, n)
	for i := range subs {
		subs[i], err = svc.CreateSubmission(ctx, clip, port.CreateSubmissionReq{
			CampaignID: camp.ID, VideoLink: fmt.Sprintf("https://video.example/%d", i), DeclaredViews: 200,
		})
		require.NoError(t, err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, over int
	)
	for _, sub := range subs {
		sub := sub
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Settle(ctx, adv, sub.ID, domain.Approve(200))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrBudgetExceeded):
				over++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, 5, over)
	got, err := store.GetCampaign(ctx, camp.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1_000, got.Spent)
}
