package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignActive CampaignStatus = "active"
	CampaignPaused CampaignStatus = "paused"
)

// Valid reports whether s is a known status.
func (s CampaignStatus) Valid() bool {
	return s == CampaignActive || s == CampaignPaused
}

// Campaign is funded by exactly one advertiser. Budgets are stored in
// integer units (cents) and Spent never exceeds TotalBudget.
type Campaign struct {
	ID           uuid.UUID
	AdvertiserID string
	Name         string
	RPM          int64 // cents per 1,000 verified views
	TotalBudget  int64
	Spent        int64
	Status       CampaignStatus
	Rules        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Remaining is the unspent part of the budget.
func (c *Campaign) Remaining() int64 {
	return c.TotalBudget - c.Spent
}

// ReserveSpend adds amount to Spent if the cap allows it, otherwise it
// returns ErrBudgetExceeded and leaves the campaign untouched.
func (c *Campaign) ReserveSpend(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative spend", ErrInvalidArgument)
	}
	if amount > c.Remaining() {
		return fmt.Errorf("%w: campaign %s has %s left, needs %s",
			ErrBudgetExceeded, c.ID, FormatAmount(c.Remaining()), FormatAmount(amount))
	}
	c.Spent += amount
	return nil
}

// NewCampaign validates the advertiser's input and returns an active
// campaign with nothing spent.
func NewCampaign(advertiserID, name string, rpm, totalBudget int64, rules string, now time.Time) (*Campaign, error) {
	switch {
	case advertiserID == "":
		return nil, fmt.Errorf("%w: advertiser id is required", ErrInvalidArgument)
	case rpm <= 0:
		return nil, fmt.Errorf("%w: rpm must be positive", ErrInvalidArgument)
	case totalBudget <= 0:
		return nil, fmt.Errorf("%w: total budget must be positive", ErrInvalidArgument)
	}
	return &Campaign{
		ID:           uuid.New(),
		AdvertiserID: advertiserID,
		Name:         name,
		RPM:          rpm,
		TotalBudget:  totalBudget,
		Status:       CampaignActive,
		Rules:        rules,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
