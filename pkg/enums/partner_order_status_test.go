package enums

import "testing"

func TestPartnerOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    PartnerOrderStatus
		to      PartnerOrderStatus
		allowed bool
	}{
		{PartnerOrderStatusDraft, PartnerOrderStatusSubmitted, true},
		{PartnerOrderStatusDraft, PartnerOrderStatusCancelled, true},
		{PartnerOrderStatusDraft, PartnerOrderStatusApproved, false},
		{PartnerOrderStatusSubmitted, PartnerOrderStatusUnderReview, true},
		{PartnerOrderStatusSubmitted, PartnerOrderStatusDraft, false},
		{PartnerOrderStatusUnderReview, PartnerOrderStatusSubmitted, true},
		{PartnerOrderStatusUnderReview, PartnerOrderStatusApproved, true},
		{PartnerOrderStatusApproved, PartnerOrderStatusConfirmedSigned, true},
		{PartnerOrderStatusApproved, PartnerOrderStatusPaid, false},
		{PartnerOrderStatusConfirmedSigned, PartnerOrderStatusProformaGenerated, true},
		{PartnerOrderStatusProformaGenerated, PartnerOrderStatusPaid, true},
		{PartnerOrderStatusPaid, PartnerOrderStatusInProduction, true},
		{PartnerOrderStatusInProduction, PartnerOrderStatusShipped, true},
		{PartnerOrderStatusShipped, PartnerOrderStatusDelivered, true},
		{PartnerOrderStatusShipped, PartnerOrderStatusCancelled, false},
		{PartnerOrderStatusDelivered, PartnerOrderStatusCancelled, false},
		{PartnerOrderStatusCancelled, PartnerOrderStatusDraft, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestPartnerOrderStatusTerminalStates(t *testing.T) {
	for _, status := range validPartnerOrderStatuses {
		wantTerminal := status == PartnerOrderStatusDelivered || status == PartnerOrderStatusCancelled
		if got := status.IsTerminal(); got != wantTerminal {
			t.Errorf("%s terminal: got %v, want %v", status, got, wantTerminal)
		}
	}
	if PartnerOrderStatus("bogus").IsTerminal() {
		t.Errorf("unknown status must not be terminal")
	}
}

func TestPartnerOrderStatusEveryTargetIsValid(t *testing.T) {
	for from, targets := range partnerOrderTransitions {
		for _, to := range targets {
			if !to.IsValid() {
				t.Errorf("transition table references unknown status %q from %q", to, from)
			}
		}
	}
}

func TestParsePartnerOrderStatus(t *testing.T) {
	status, err := ParsePartnerOrderStatus("under_review")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != PartnerOrderStatusUnderReview {
		t.Fatalf("unexpected status: %s", status)
	}
	if _, err := ParsePartnerOrderStatus("UNDER_REVIEW"); err == nil {
		t.Fatalf("expected error for wrong case")
	}
	if _, err := ParsePartnerOrderStatus(""); err == nil {
		t.Fatalf("expected error for empty input")
	}
}
