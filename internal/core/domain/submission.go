package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus is the audit state of a clipper's claim.
//
//	pending ──approve──> paid
//	   └─────reject───> rejected
//
// approved is kept for claims settled before payouts were folded into the
// approval; it is terminal like paid.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionPaid     SubmissionStatus = "paid"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionApproved, SubmissionPaid, SubmissionRejected:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s SubmissionStatus) Terminal() bool {
	return s != SubmissionPending
}

const maxReasonLen = 500

// Submission is a clipper's claim of views against a campaign. RPMSnapshot
// is copied from the campaign at creation and never changes afterwards.
// DeclaredViews is kept as the clipper sent it; AuditedViews and Reward
// are set on approval only.
type Submission struct {
	ID              uuid.UUID
	CampaignID      uuid.UUID
	ClipperID       string
	AdvertiserID    string
	VideoLink       string
	DeclaredViews   int64
	RPMSnapshot     int64
	AuditedViews    *int64
	Reward          int64
	Status          SubmissionStatus
	RejectionReason string
	CreatedAt       time.Time
	DecidedAt       *time.Time
}

// NewSubmission builds a pending claim against camp for clipperID.
func NewSubmission(camp *Campaign, clipperID, videoLink string, declaredViews int64, now time.Time) (*Submission, error) {
	if clipperID == "" {
		return nil, fmt.Errorf("%w: clipper id is required", ErrInvalidArgument)
	}
	if declaredViews <= 0 {
		return nil, fmt.Errorf("%w: declared views must be positive", ErrInvalidArgument)
	}
	link, err := normalizeVideoLink(videoLink)
	if err != nil {
		return nil, err
	}
	if camp.Status != CampaignActive {
		return nil, fmt.Errorf("%w: %s", ErrCampaignInactive, camp.ID)
	}
	return &Submission{
		ID:            uuid.New(),
		CampaignID:    camp.ID,
		ClipperID:     clipperID,
		AdvertiserID:  camp.AdvertiserID,
		VideoLink:     link,
		DeclaredViews: declaredViews,
		RPMSnapshot:   camp.RPM,
		Status:        SubmissionPending,
		CreatedAt:     now,
	}, nil
}

func normalizeVideoLink(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: video link must be an absolute http(s) URL", ErrInvalidArgument)
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return u.String(), nil
}

// Authorize checks that actor may audit s.
func (s *Submission) Authorize(actor Actor) error {
	if actor.Role != RoleAdvertiser || actor.ID != s.AdvertiserID {
		return fmt.Errorf("%w: %s cannot audit submission %s", ErrUnauthorized, actor.ID, s.ID)
	}
	return nil
}

// Approve finalises the claim with the audited view count and the reward
// computed from them. It fails with ErrInvalidTransition unless pending.
func (s *Submission) Approve(auditedViews, reward int64, at time.Time) error {
	if s.Status.Terminal() {
		return s.transitionErr(SubmissionPaid)
	}
	views := auditedViews
	s.AuditedViews = &views
	s.Reward = reward
	s.Status = SubmissionPaid
	s.DecidedAt = &at
	return nil
}

// Reject closes the claim without any monetary effect.
func (s *Submission) Reject(reason string, at time.Time) error {
	if s.Status.Terminal() {
		return s.transitionErr(SubmissionRejected)
	}
	s.Status = SubmissionRejected
	s.RejectionReason = reason
	s.DecidedAt = &at
	return nil
}

func (s *Submission) transitionErr(to SubmissionStatus) error {
	return fmt.Errorf("%w: submission %s is %s, cannot become %s", ErrInvalidTransition, s.ID, s.Status, to)
}
