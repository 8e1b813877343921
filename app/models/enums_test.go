package models

import "testing"

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role       Role
		capability Capability
		want       bool
	}{
		{RoleAdmin, CanView, true},
		{RoleAdmin, CanDelete, true},
		{RoleAdmin, CanManageUsers, true},
		{RoleAccountant, CanCreate, true},
		{RoleAccountant, CanEdit, true},
		{RoleAccountant, CanDelete, false},
		{RoleAccountant, CanManageUsers, false},
		{RoleViewer, CanView, true},
		{RoleViewer, CanCreate, false},
		{RoleViewer, CanDelete, false},
		{Role("headteacher"), CanView, false},
	}

	for _, tt := range tests {
		if got := tt.role.Can(tt.capability); got != tt.want {
			t.Errorf("Role(%q).Can(%q) = %v, want %v", tt.role, tt.capability, got, tt.want)
		}
	}
}

func TestRoleIsValid(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleAccountant, RoleViewer} {
		if !role.IsValid() {
			t.Errorf("Role(%q).IsValid() = false, want true", role)
		}
	}
	for _, role := range []Role{"", "superuser", "Admin"} {
		if role.IsValid() {
			t.Errorf("Role(%q).IsValid() = true, want false", role)
		}
	}
}

func TestPaymentMethodIsValid(t *testing.T) {
	for _, m := range PaymentMethods {
		if !m.IsValid() {
			t.Errorf("PaymentMethod(%q).IsValid() = false, want true", m)
		}
	}
	for _, m := range []PaymentMethod{"", "cash", "Mpesa", "Bitcoin"} {
		if m.IsValid() {
			t.Errorf("PaymentMethod(%q).IsValid() = true, want false", m)
		}
	}
}

func TestTermIsValid(t *testing.T) {
	for _, term := range []Term{Term1, Term2, Term3, TermAnnual} {
		if !term.IsValid() {
			t.Errorf("Term(%q).IsValid() = false, want true", term)
		}
	}
	if Term("Term 4").IsValid() {
		t.Error("Term(\"Term 4\").IsValid() = true, want false")
	}
}

func TestGenerateReceiptNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		rn := GenerateReceiptNumber()
		if len(rn) != len("RCP-20060102-ABCDEF") {
			t.Fatalf("unexpected receipt number format: %q", rn)
		}
		if rn[:4] != "RCP-" {
			t.Fatalf("receipt number missing prefix: %q", rn)
		}
		if seen[rn] {
			t.Fatalf("duplicate receipt number generated: %q", rn)
		}
		seen[rn] = true
	}
}
