package domain

import (
	"fmt"
	"strings"
)

// DecisionKind is the outcome an advertiser picks when auditing a claim.
type DecisionKind string

const (
	DecisionApprove DecisionKind = "approve"
	DecisionReject  DecisionKind = "reject"
)

// Decision is an audit verdict. AuditedViews is meaningful for approvals,
// Reason for rejections.
type Decision struct {
	Kind         DecisionKind
	AuditedViews int64
	Reason       string
}

// Approve returns an approval with the advertiser's verified view count.
func Approve(auditedViews int64) Decision {
	return Decision{Kind: DecisionApprove, AuditedViews: auditedViews}
}

// Reject returns a rejection carrying reason.
func Reject(reason string) Decision {
	return Decision{Kind: DecisionReject, Reason: reason}
}

// Validate checks the decision is well formed and normalises the reason.
func (d *Decision) Validate() error {
	switch d.Kind {
	case DecisionApprove:
		if d.AuditedViews < 0 {
			return fmt.Errorf("%w: audited views must not be negative", ErrInvalidArgument)
		}
	case DecisionReject:
		d.Reason = strings.TrimSpace(d.Reason)
		if d.Reason == "" {
			return fmt.Errorf("%w: rejection reason is required", ErrInvalidArgument)
		}
		if len(d.Reason) > maxReasonLen {
			return fmt.Errorf("%w: rejection reason longer than %d bytes", ErrInvalidArgument, maxReasonLen)
		}
	default:
		return fmt.Errorf("%w: unknown decision %q", ErrInvalidArgument, d.Kind)
	}
	return nil
}
