package enums

import "fmt"

// ProformaStatus tracks the delivery state of a proforma invoice.
type ProformaStatus string

const (
	ProformaStatusDraft     ProformaStatus = "draft"
	ProformaStatusSent      ProformaStatus = "sent"
	ProformaStatusConfirmed ProformaStatus = "confirmed"
	ProformaStatusCancelled ProformaStatus = "cancelled"
)

var validProformaStatuses = []ProformaStatus{
	ProformaStatusDraft,
	ProformaStatusSent,
	ProformaStatusConfirmed,
	ProformaStatusCancelled,
}

// String implements fmt.Stringer.
func (s ProformaStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProformaStatus.
func (s ProformaStatus) IsValid() bool {
	for _, candidate := range validProformaStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProformaStatus converts raw input into a ProformaStatus.
func ParseProformaStatus(value string) (ProformaStatus, error) {
	for _, candidate := range validProformaStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid proforma status %q", value)
}
