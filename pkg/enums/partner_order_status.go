package enums

import "fmt"

// PartnerOrderStatus tracks the lifecycle of a partner order.
type PartnerOrderStatus string

const (
	PartnerOrderStatusDraft             PartnerOrderStatus = "draft"
	PartnerOrderStatusSubmitted         PartnerOrderStatus = "submitted"
	PartnerOrderStatusUnderReview       PartnerOrderStatus = "under_review"
	PartnerOrderStatusApproved          PartnerOrderStatus = "approved"
	PartnerOrderStatusConfirmedSigned   PartnerOrderStatus = "confirmed_signed"
	PartnerOrderStatusProformaGenerated PartnerOrderStatus = "proforma_generated"
	PartnerOrderStatusPaid              PartnerOrderStatus = "paid"
	PartnerOrderStatusInProduction      PartnerOrderStatus = "in_production"
	PartnerOrderStatusShipped           PartnerOrderStatus = "shipped"
	PartnerOrderStatusDelivered         PartnerOrderStatus = "delivered"
	PartnerOrderStatusCancelled         PartnerOrderStatus = "cancelled"
)

var validPartnerOrderStatuses = []PartnerOrderStatus{
	PartnerOrderStatusDraft,
	PartnerOrderStatusSubmitted,
	PartnerOrderStatusUnderReview,
	PartnerOrderStatusApproved,
	PartnerOrderStatusConfirmedSigned,
	PartnerOrderStatusProformaGenerated,
	PartnerOrderStatusPaid,
	PartnerOrderStatusInProduction,
	PartnerOrderStatusShipped,
	PartnerOrderStatusDelivered,
	PartnerOrderStatusCancelled,
}

// partnerOrderTransitions declares the allowed predecessor -> successor pairs.
// Cancellation is reachable from every non-terminal state except shipped.
var partnerOrderTransitions = map[PartnerOrderStatus][]PartnerOrderStatus{
	PartnerOrderStatusDraft:             {PartnerOrderStatusSubmitted, PartnerOrderStatusCancelled},
	PartnerOrderStatusSubmitted:         {PartnerOrderStatusUnderReview, PartnerOrderStatusCancelled},
	PartnerOrderStatusUnderReview:       {PartnerOrderStatusApproved, PartnerOrderStatusSubmitted, PartnerOrderStatusCancelled},
	PartnerOrderStatusApproved:          {PartnerOrderStatusConfirmedSigned, PartnerOrderStatusCancelled},
	PartnerOrderStatusConfirmedSigned:   {PartnerOrderStatusProformaGenerated, PartnerOrderStatusCancelled},
	PartnerOrderStatusProformaGenerated: {PartnerOrderStatusPaid, PartnerOrderStatusCancelled},
	PartnerOrderStatusPaid:              {PartnerOrderStatusInProduction, PartnerOrderStatusCancelled},
	PartnerOrderStatusInProduction:      {PartnerOrderStatusShipped, PartnerOrderStatusCancelled},
	PartnerOrderStatusShipped:           {PartnerOrderStatusDelivered},
	PartnerOrderStatusDelivered:         {},
	PartnerOrderStatusCancelled:         {},
}

// String implements fmt.Stringer.
func (s PartnerOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PartnerOrderStatus.
func (s PartnerOrderStatus) IsValid() bool {
	for _, candidate := range validPartnerOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from this state.
func (s PartnerOrderStatus) IsTerminal() bool {
	return s.IsValid() && len(partnerOrderTransitions[s]) == 0
}

// CanTransitionTo reports whether target is a legal successor of this state.
func (s PartnerOrderStatus) CanTransitionTo(target PartnerOrderStatus) bool {
	for _, candidate := range partnerOrderTransitions[s] {
		if candidate == target {
			return true
		}
	}
	return false
}

// ParsePartnerOrderStatus converts raw input into a PartnerOrderStatus.
func ParsePartnerOrderStatus(value string) (PartnerOrderStatus, error) {
	for _, candidate := range validPartnerOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid partner order status %q", value)
}
