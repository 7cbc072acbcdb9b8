package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntryCategory classifies a ledger movement.
type EntryCategory string

const (
	EntryCreditSettlement EntryCategory = "credit-settlement"
	EntryDebitSettlement  EntryCategory = "debit-settlement"
	EntryInitialBonus     EntryCategory = "initial-bonus"
)

// LedgerEntry is one append-only row of the transaction log. Amount is
// signed: debits are negative. ReferenceID correlates the entry: the
// submission for settlement entries, a registration id for the bonus.
type LedgerEntry struct {
	ID          uuid.UUID
	AccountID   string
	Amount      int64
	Category    EntryCategory
	ReferenceID uuid.UUID
	CreatedAt   time.Time
}

// SettlementEntries returns the debit/credit pair for paying reward from
// advertiserID to clipperID for the given submission. The pair sums to zero.
func SettlementEntries(submissionID uuid.UUID, advertiserID, clipperID string, reward int64, at time.Time) []LedgerEntry {
	return []LedgerEntry{
		{
			ID:          uuid.New(),
			AccountID:   advertiserID,
			Amount:      -reward,
			Category:    EntryDebitSettlement,
			ReferenceID: submissionID,
			CreatedAt:   at,
		},
		{
			ID:          uuid.New(),
			AccountID:   clipperID,
			Amount:      reward,
			Category:    EntryCreditSettlement,
			ReferenceID: submissionID,
			CreatedAt:   at,
		},
	}
}

// BonusEntry records the one-off registration credit. Its reference is a
// fresh id since no submission is involved.
func BonusEntry(accountID string, amount int64, at time.Time) LedgerEntry {
	return LedgerEntry{
		ID:          uuid.New(),
		AccountID:   accountID,
		Amount:      amount,
		Category:    EntryInitialBonus,
		ReferenceID: uuid.New(),
		CreatedAt:   at,
	}
}
