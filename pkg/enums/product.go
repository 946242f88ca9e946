package enums

import "fmt"

// ApprovalStatus is the moderation verdict on a product.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

var validApprovalStatuses = []ApprovalStatus{
	ApprovalStatusPending,
	ApprovalStatusApproved,
	ApprovalStatusRejected,
}

// String implements fmt.Stringer.
func (a ApprovalStatus) String() string {
	return string(a)
}

// IsValid reports whether the value matches the approval_status enum.
func (a ApprovalStatus) IsValid() bool {
	for _, candidate := range validApprovalStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseApprovalStatus converts raw input into an ApprovalStatus.
func ParseApprovalStatus(value string) (ApprovalStatus, error) {
	for _, candidate := range validApprovalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval status %q", value)
}

// LifecycleStatus is the legacy active/inactive flag kept in lockstep with ApprovalStatus.
type LifecycleStatus string

const (
	LifecycleStatusActive   LifecycleStatus = "active"
	LifecycleStatusInactive LifecycleStatus = "inactive"
)

// String implements fmt.Stringer.
func (l LifecycleStatus) String() string {
	return string(l)
}

// IsValid reports whether the value matches the lifecycle_status enum.
func (l LifecycleStatus) IsValid() bool {
	return l == LifecycleStatusActive || l == LifecycleStatusInactive
}

// LifecycleFor derives the lifecycle flag paired with an approval verdict.
// Pending products stay active so they remain in the review queue.
func LifecycleFor(status ApprovalStatus) LifecycleStatus {
	if status == ApprovalStatusRejected {
		return LifecycleStatusInactive
	}
	return LifecycleStatusActive
}
