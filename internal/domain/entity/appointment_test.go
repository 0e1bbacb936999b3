package entity

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{StatusPending, StatusScheduled, true},
		{StatusScheduled, StatusConfirmed, true},
		{StatusConfirmed, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusPending, StatusConfirmed, true},
		{StatusScheduled, StatusCompleted, true},

		// Same status re-writes are allowed
		{StatusConfirmed, StatusConfirmed, true},
		{StatusCompleted, StatusCompleted, true},

		// Cancellation and no-show from any non-terminal state
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusInProgress, StatusNoShow, true},

		// Terminal states admit nothing
		{StatusCompleted, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusNoShow, StatusCancelled, false},

		// No backward moves
		{StatusConfirmed, StatusScheduled, false},
		{StatusInProgress, StatusPending, false},

		// Unknown legacy statuses behave like pending
		{"booked", StatusScheduled, true},
		{"booked", StatusCancelled, true},
		{StatusScheduled, "booked", false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestIsTerminalStatus(t *testing.T) {
	for _, s := range []string{StatusCompleted, StatusCancelled, StatusNoShow} {
		if !IsTerminalStatus(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []string{StatusPending, StatusScheduled, StatusConfirmed, StatusInProgress} {
		if IsTerminalStatus(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestDocumentVariant(t *testing.T) {
	pairs := &AppointmentDocument{ServiceStylistPairs: []ServiceStylistPair{{ServiceID: "s", StylistID: "st"}}}
	if pairs.Variant() != VariantPairs {
		t.Errorf("variant = %s, want pairs", pairs.Variant())
	}

	legacyArray := &AppointmentDocument{Services: []LegacyServiceEntry{{ID: "s"}}}
	if legacyArray.Variant() != VariantLegacyArray {
		t.Errorf("variant = %s, want legacy_array", legacyArray.Variant())
	}

	direct := &AppointmentDocument{StylistID: "st", ServiceID: "s"}
	if direct.Variant() != VariantLegacyDirect {
		t.Errorf("variant = %s, want legacy_direct", direct.Variant())
	}
}

func TestOwnedByStylist(t *testing.T) {
	doc := &AppointmentDocument{
		EmployeeID:          "s2",
		Stylists:            []string{"s3"},
		ServiceStylistPairs: []ServiceStylistPair{{StylistID: "s4"}},
	}

	for _, id := range []string{"s2", "s3", "s4"} {
		if !doc.OwnedByStylist(id) {
			t.Errorf("document should be owned by stylist %s", id)
		}
	}
	if doc.OwnedByStylist("other") {
		t.Error("document should not match an unrelated stylist")
	}
	if doc.OwnedByStylist("") {
		t.Error("empty stylist id must never match")
	}
}

func TestOwnedByClient(t *testing.T) {
	doc := &AppointmentDocument{
		UserID:     "c2",
		ClientInfo: &EmbeddedClientInfo{ID: "c3"},
	}

	for _, id := range []string{"c2", "c3"} {
		if !doc.OwnedByClient(id) {
			t.Errorf("document should be owned by client %s", id)
		}
	}
	if doc.OwnedByClient("other") {
		t.Error("document should not match an unrelated client")
	}
	if doc.OwnedByClient("") {
		t.Error("empty client id must never match")
	}
}
