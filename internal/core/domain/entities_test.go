package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestAccountDebitCredit(t *testing.T) {
	acc := &Account{ID: "adv", Balance: 500}

	require.NoError(t, acc.Debit(200))
	assert.Equal(t, int64(300), acc.Balance)

	err := acc.Debit(301)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(300), acc.Balance)

	require.NoError(t, acc.Credit(50))
	assert.Equal(t, int64(350), acc.Balance)

	assert.ErrorIs(t, acc.Credit(-1), ErrInvalidArgument)
}

func TestAccountCreditOverflow(t *testing.T) {
	acc := &Account{ID: "clip", Balance: math.MaxInt64 - 10}

	require.NoError(t, acc.Credit(10))
	assert.Equal(t, int64(math.MaxInt64), acc.Balance)

	assert.ErrorIs(t, acc.Credit(1), ErrInvalidArgument)
	assert.Equal(t, int64(math.MaxInt64), acc.Balance)
}

func TestCampaignReserveSpend(t *testing.T) {
	camp, err := NewCampaign("adv", "summer", 1000, 100000, "no reuploads", now)
	require.NoError(t, err)
	assert.Equal(t, CampaignActive, camp.Status)

	require.NoError(t, camp.ReserveSpend(20000))
	assert.Equal(t, int64(20000), camp.Spent)

	err = camp.ReserveSpend(90000)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Equal(t, int64(20000), camp.Spent)

	require.NoError(t, camp.ReserveSpend(80000))
	assert.Zero(t, camp.Remaining())
}

func TestCampaignReserveSpendNearInt64Max(t *testing.T) {
	camp, err := NewCampaign("adv", "huge", 1000, math.MaxInt64, "", now)
	require.NoError(t, err)
	require.NoError(t, camp.ReserveSpend(math.MaxInt64-5))

	// Spent+amount would wrap negative and slip under the cap.
	err = camp.ReserveSpend(math.MaxInt64)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	err = camp.ReserveSpend(6)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Equal(t, int64(math.MaxInt64-5), camp.Spent)

	require.NoError(t, camp.ReserveSpend(5))
	assert.Zero(t, camp.Remaining())
}

func TestNewCampaignValidation(t *testing.T) {
	_, err := NewCampaign("", "x", 1, 1, "", now)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewCampaign("adv", "x", 0, 1, "", now)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewCampaign("adv", "x", 1, 0, "", now)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func newPending(t *testing.T) *Submission {
	t.Helper()
	camp, err := NewCampaign("adv", "c", 1000, 100000, "", now)
	require.NoError(t, err)
	sub, err := NewSubmission(camp, "clip", " HTTPS://TikTok.com/@me/video/1#t=3 ", 25000, now)
	require.NoError(t, err)
	return sub
}

func TestNewSubmissionSnapshotsCampaign(t *testing.T) {
	sub := newPending(t)

	assert.Equal(t, SubmissionPending, sub.Status)
	assert.Equal(t, int64(1000), sub.RPMSnapshot)
	assert.Equal(t, "adv", sub.AdvertiserID)
	assert.Equal(t, "https://tiktok.com/@me/video/1", sub.VideoLink)
	assert.Nil(t, sub.AuditedViews)
}

func TestNewSubmissionValidation(t *testing.T) {
	camp, err := NewCampaign("adv", "c", 1000, 100000, "", now)
	require.NoError(t, err)

	_, err = NewSubmission(camp, "clip", "not a link", 10, now)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewSubmission(camp, "clip", "ftp://x/y", 10, now)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewSubmission(camp, "clip", "https://x/y", 0, now)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	camp.Status = CampaignPaused
	_, err = NewSubmission(camp, "clip", "https://x/y", 10, now)
	assert.ErrorIs(t, err, ErrCampaignInactive)
}

func TestSubmissionTransitions(t *testing.T) {
	sub := newPending(t)
	require.NoError(t, sub.Approve(20000, 20000, now))
	assert.Equal(t, SubmissionPaid, sub.Status)
	assert.Equal(t, int64(20000), *sub.AuditedViews)
	assert.Equal(t, int64(25000), sub.DeclaredViews)
	require.NotNil(t, sub.DecidedAt)

	assert.ErrorIs(t, sub.Approve(1, 1, now), ErrInvalidTransition)
	assert.ErrorIs(t, sub.Reject("late", now), ErrInvalidTransition)
	assert.Equal(t, int64(20000), sub.Reward)

	rejected := newPending(t)
	require.NoError(t, rejected.Reject("reupload", now))
	assert.Equal(t, SubmissionRejected, rejected.Status)
	assert.ErrorIs(t, rejected.Approve(1, 1, now), ErrInvalidTransition)
	assert.ErrorIs(t, rejected.Reject("again", now), ErrInvalidTransition)
	assert.Equal(t, "reupload", rejected.RejectionReason)

	legacy := newPending(t)
	legacy.Status = SubmissionApproved
	assert.ErrorIs(t, legacy.Reject("x", now), ErrInvalidTransition)
}

func TestSubmissionAuthorize(t *testing.T) {
	sub := newPending(t)

	assert.NoError(t, sub.Authorize(Actor{ID: "adv", Role: RoleAdvertiser}))
	assert.ErrorIs(t, sub.Authorize(Actor{ID: "other", Role: RoleAdvertiser}), ErrUnauthorized)
	assert.ErrorIs(t, sub.Authorize(Actor{ID: "adv", Role: RoleClipper}), ErrUnauthorized)
}

func TestDecisionValidate(t *testing.T) {
	d := Reject("  fake views ")
	require.NoError(t, d.Validate())
	assert.Equal(t, "fake views", d.Reason)

	d = Reject("   ")
	assert.ErrorIs(t, d.Validate(), ErrInvalidArgument)

	d = Approve(-1)
	assert.ErrorIs(t, d.Validate(), ErrInvalidArgument)

	d = Decision{Kind: "escalate"}
	assert.ErrorIs(t, d.Validate(), ErrInvalidArgument)
}

func TestSettlementEntriesBalance(t *testing.T) {
	sub := newPending(t)
	entries := SettlementEntries(sub.ID, "adv", "clip", 20000, now)

	require.Len(t, entries, 2)
	var sum int64
	for _, e := range entries {
		sum += e.Amount
		assert.Equal(t, sub.ID, e.ReferenceID)
	}
	assert.Zero(t, sum)
	assert.Equal(t, EntryDebitSettlement, entries[0].Category)
	assert.Equal(t, "adv", entries[0].AccountID)
	assert.Equal(t, EntryCreditSettlement, entries[1].Category)
}
