package enums

import "fmt"

// ManualOrderStatus marks the settlement state of a commissionable order.
type ManualOrderStatus string

const (
	ManualOrderStatusPending   ManualOrderStatus = "pending"
	ManualOrderStatusCompleted ManualOrderStatus = "completed"
	ManualOrderStatusRefunded  ManualOrderStatus = "refunded"
)

var validManualOrderStatuses = []ManualOrderStatus{
	ManualOrderStatusPending,
	ManualOrderStatusCompleted,
	ManualOrderStatusRefunded,
}

// String implements fmt.Stringer.
func (s ManualOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ManualOrderStatus.
func (s ManualOrderStatus) IsValid() bool {
	for _, candidate := range validManualOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseManualOrderStatus converts raw input into a ManualOrderStatus.
func ParseManualOrderStatus(value string) (ManualOrderStatus, error) {
	for _, candidate := range validManualOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid manual order status %q", value)
}
