package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viral-reward/internal/core/domain"
	"viral-reward/internal/core/port"
)

// TestApproveScenario follows a campaign of 1000.00 at 10.00 per mille
// funded by an advertiser holding 500.00.
func TestApproveScenario(t *testing.T) {
	f := newFixture(t, 50000)
	camp := f.campaign(t, 1000, 100000)
	first := f.submission(t, camp, "https://tiktok.com/@c/video/1", 25000)

	got, err := f.svc.Settle(context.Background(), advertiser, first.ID, domain.Approve(20000))
	require.NoError(t, err)

	assert.Equal(t, domain.SubmissionPaid, got.Status)
	assert.Equal(t, int64(20000), got.Reward)
	require.NotNil(t, got.AuditedViews)
	assert.Equal(t, int64(20000), *got.AuditedViews)
	assert.Equal(t, int64(25000), got.DeclaredViews)
	assert.NotNil(t, got.DecidedAt)

	assert.Equal(t, int64(30000), f.balance(t, advertiser.ID))
	assert.Equal(t, int64(20000), f.balance(t, clipper.ID))
	assert.Equal(t, int64(20000), f.spent(t, camp))
	assert.Equal(t, domain.SubmissionPaid, f.status(t, first))

	// Second claim would take spent to 1100.00.
	second := f.submission(t, camp, "https://tiktok.com/@c/video/2", 90000)
	_, err = f.svc.Settle(context.Background(), advertiser, second.ID, domain.Approve(90000))
	require.ErrorIs(t, err, domain.ErrBudgetExceeded)

	assert.Equal(t, int64(20000), f.spent(t, camp))
	assert.Equal(t, int64(30000), f.balance(t, advertiser.ID))
	assert.Equal(t, int64(20000), f.balance(t, clipper.ID))
	assert.Equal(t, domain.SubmissionPending, f.status(t, second))
}

// TestApproveRewardOutOfRange approves a view count whose reward does not
// fit in int64 cents; it must be refused as over budget, not wrapped into a
// small payout.
func TestApproveRewardOutOfRange(t *testing.T) {
	f := newFixture(t, 50000)
	camp := f.campaign(t, 4000, 100000)
	sub := f.submission(t, camp, "https://tiktok.com/@c/video/huge", 1000)

	for _, views := range []int64{4611686018427388929, math.MaxInt64} {
		_, err := f.svc.Settle(context.Background(), advertiser, sub.ID, domain.Approve(views))
		require.ErrorIs(t, err, domain.ErrBudgetExceeded, views)
	}

	assert.Zero(t, f.spent(t, camp))
	assert.Equal(t, int64(50000), f.balance(t, advertiser.ID))
	assert.Zero(t, f.balance(t, clipper.ID))
	assert.Equal(t, domain.SubmissionPending, f.status(t, sub))

	entries, err := f.store.ListLedgerEntries(context.Background(), clipper.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApproveWritesBalancedLedger(t *testing.T) {
	f := newFixture(t, 50000)
	camp := f.campaign(t, 1000, 100000)
	sub := f.submission(t, camp, "https://example.com/v", 20000)

	_, err := f.svc.Settle(context.Background(), advertiser, sub.ID, domain.Approve(12345))
	require.NoError(t, err)

	advEntries, err := f.store.ListLedgerEntries(context.Background(), advertiser.ID, 0)
	require.NoError(t, err)
	clipEntries, err := f.store.ListLedgerEntries(context.Background(), clipper.ID, 0)
	require.NoError(t, err)

	var sum int64
	var n int
	for _, e := range append(advEntries, clipEntries...) {
		if e.ReferenceID != sub.ID {
			continue
		}
		n++
		sum += e.Amount
	}
	assert.Equal(t, 2, n)
	assert.Zero(t, sum)

	// 12345 views at 10.00 per mille is 123.45
	assert.Equal(t, int64(50000-12345), f.balance(t, advertiser.ID))
	require.Len(t, clipEntries, 1)
	assert.Equal(t, domain.EntryCreditSettlement, clipEntries[0].Category)
	assert.Equal(t, int64(12345), clipEntries[0].Amount)
}

func TestApproveInsufficientFundsLeavesNoTrace(t *testing.T) {
	f := newFixture(t, 50000)
	camp := f.campaign(t, 1000, 1000000)
	sub := f.submission(t, camp, "https://example.com/v", 60000)

	_, err := f.svc.Settle(context.Background(), advertiser, sub.ID, domain.Approve(60000))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.Equal(t, int64(50000), f.balance(t, advertiser.ID))
	assert.Zero(t, f.balance(t, clipper.ID))
	assert.Zero(t, f.spent(t, camp))
	assert.Equal(t, domain.SubmissionPending, f.status(t, sub))

	entries, err := f.store.ListLedgerEntries(context.Background(), clipper.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRejectHasNoMonetaryEffect(t *testing.T) {
	f := newFixture(t, 50000)
	camp := f.campaign(t, 1000, 100000)
	sub := f.submission(t, camp, "https://example.com/v", 20000)

	got, err := f.svc.Settle(context.Background(), advertiser, sub.ID, domain.Reject("views bought"))
	require.NoError(t, err)

	assert.Equal(t, domain.SubmissionRejected, got.Status)
	assert.Equal(t, "views bought", got.RejectionReason)
	assert.Nil(t, got.AuditedViews)
	assert.Zero(t, got.Reward)
	assert.Equal(t, int64(50000), f.balance(t, advertiser.ID))
	assert.Zero(t, f.spent(t, camp))
}

func TestTerminalStatesRefuseFurtherDecisions(t *testing.T) {
	f := newFixture(t, 50000)
	camp := f.campaign(t, 1000, 100000)
	paid := f.submission(t, camp, "https://example.com/paid", 10)
	rejected := f.submission(t, camp, "https://example.com/rejected", 10)

	_, err := f.svc.Settle(context.Background(), advertiser, paid.ID, domain.Approve(1000))
	require.NoError(t, err)
	_, err = f.svc.Settle(context.Background(), advertiser, rejected.ID, domain.Reject("dup"))
	require.NoError(t, err)

	advBefore, clipBefore, spentBefore := f.balance(t, advertiser.ID), f.balance(t, clipper.ID), f.spent(t, camp)

	for _, tc := range []struct {
		sub *domain.Submission
		d   domain.Decision
	}{
		{paid, domain.Approve(1000)},
		{paid, domain.Reject("changed my mind")},
		{rejected, domain.Approve(1000)},
		{rejected, domain.Reject("again")},
	} {
		_, err = f.svc.Settle(context.Background(), advertiser, tc.sub.ID, tc.d)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}

	assert.Equal(t, advBefore, f.balance(t, advertiser.ID))
	assert.Equal(t, clipBefore, f.balance(t, clipper.ID))
	assert.Equal(t, spentBefore, f.spent(t, camp))
	assert.Equal(t, domain.SubmissionPaid, f.status(t, paid))
	assert.Equal(t, domain.SubmissionRejected, f.status(t, rejected))
}

func TestSettleAuthorization(t *testing.T) {
	f := newFixture(t, 50000)
	camp := f.campaign(t, 1000, 100000)
	sub := f.submission(t, camp, "https://example.com/v", 10)

	for _, actor := range []domain.Actor{rival, clipper} {
		_, err := f.svc.Settle(context.Background(), actor, sub.ID, domain.Approve(10))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		_, err = f.svc.Settle(context.Background(), actor, sub.ID, domain.Reject("no"))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	}
	assert.Equal(t, domain.SubmissionPending, f.status(t, sub))
}

func TestSettleUnknownSubmission(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.svc.Settle(context.Background(), advertiser, uuid.New(), domain.Approve(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSettleRejectsMalformedDecision(t *testing.T) {
	f := newFixture(t, 0)
	camp := f.campaign(t, 1000, 100000)
	sub := f.submission(t, camp, "https://example.com/v", 10)

	_, err := f.svc.Settle(context.Background(), advertiser, sub.ID, domain.Approve(-5))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = f.svc.Settle(context.Background(), advertiser, sub.ID, domain.Reject(""))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, domain.SubmissionPending, f.status(t, sub))
}

// TestConcurrentDoubleApproval races many approvals of one claim.
func TestConcurrentDoubleApproval(t *testing.T) {
	f := newFixture(t, 50000)
	camp := f.campaign(t, 1000, 100000)
	sub := f.submission(t, camp, "https://example.com/v", 20000)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Settle(context.Background(), advertiser, sub.ID, domain.Approve(20000))
		}(i)
	}
	wg.Wait()

	var ok, invalid int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInvalidTransition):
			invalid++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, invalid)
	assert.Equal(t, int64(20000), f.spent(t, camp))
	assert.Equal(t, int64(30000), f.balance(t, advertiser.ID))
	assert.Equal(t, int64(20000), f.balance(t, clipper.ID))
}

// TestConcurrentApprovalsRespectBudget approves ten 200.00 claims at once
// against a 1000.00 cap.
func TestConcurrentApprovalsRespectBudget(t *testing.T) {
	f := newFixture(t, 1000000)
	camp := f.campaign(t, 1000, 100000)

	const n = 10
	subs := make([]*domain.Submission, n)
	for i := range subs {
		subs[i] = f.submission(t, camp, fmt.Sprintf("https://example.com/v/%d", i), 20000)
	}

	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range subs {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Settle(context.Background(), advertiser, subs[i].ID, domain.Approve(20000))
		}(i)
	}
	wg.Wait()

	var ok, exceeded int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrBudgetExceeded):
			exceeded++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 5, ok)
	assert.Equal(t, 5, exceeded)
	assert.Equal(t, int64(100000), f.spent(t, camp))
	assert.Equal(t, int64(1000000-100000), f.balance(t, advertiser.ID))
	assert.Equal(t, int64(100000), f.balance(t, clipper.ID))
}

func TestApprovalUsesRateSnapshot(t *testing.T) {
	f := newFixture(t, 50000)
	camp := f.campaign(t, 1000, 100000)
	sub := f.submission(t, camp, "https://example.com/v", 1000)

	// The stored campaign rate changes after the claim was made.
	err := f.store.WithinTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		c, err := tx.LockCampaign(ctx, camp.ID)
		if err != nil {
			return err
		}
		c.RPM = 5000
		return tx.InsertCampaign(ctx, c)
	})
	require.NoError(t, err)

	got, err := f.svc.Settle(context.Background(), advertiser, sub.ID, domain.Approve(1000))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.Reward)
}
