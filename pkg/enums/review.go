package enums

import (
	"fmt"
	"strings"
)

// ReviewAction is a reviewer verdict on a store or a product.
type ReviewAction string

const (
	ReviewActionApprove ReviewAction = "approve"
	ReviewActionReject  ReviewAction = "reject"
)

// String implements fmt.Stringer.
func (r ReviewAction) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReviewAction.
func (r ReviewAction) IsValid() bool {
	return r == ReviewActionApprove || r == ReviewActionReject
}

// ParseReviewAction converts raw input into a ReviewAction.
func ParseReviewAction(value string) (ReviewAction, error) {
	action := ReviewAction(strings.ToLower(strings.TrimSpace(value)))
	if !action.IsValid() {
		return "", fmt.Errorf("invalid review action %q", value)
	}
	return action, nil
}

// ApprovalStatus maps the action to the verdict it records on a product.
func (r ReviewAction) ApprovalStatus() ApprovalStatus {
	if r == ReviewActionApprove {
		return ApprovalStatusApproved
	}
	return ApprovalStatusRejected
}
