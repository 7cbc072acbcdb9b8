package port

import (
	"context"

	"github.com/google/uuid"
)

// ChangeFeed fans out "something changed" notices to live queries. A
// notice carries no state: subscribers re-read the store, so a notice is
// only published after the write it announces has committed.
type ChangeFeed interface {
	Publish(ctx context.Context, topics ...string) error
	// Subscribe listens on topics until the subscription is closed or ctx
	// is done.
	Subscribe(ctx context.Context, topics ...string) (Subscription, error)
}

// Subscription delivers notices for the topics it was opened with. Slow
// readers may miss notices; each one only means "re-read now".
type Subscription interface {
	Changes() <-chan Change
	Close() error
}

// Change names the topic that was touched.
type Change struct {
	Topic string
}

// AccountTopic is touched whenever the account's balance, ledger or
// submissions change.
func AccountTopic(accountID string) string {
	return "account:" + accountID
}

// CampaignTopic is touched whenever the campaign or one of its
// submissions changes.
func CampaignTopic(campaignID uuid.UUID) string {
	return "campaign:" + campaignID.String()
}
