package domain

import "testing"

func TestRoleName(t *testing.T) {
	cases := []struct {
		name     string
		id       uint
		expected string
	}{
		{"admin id", RoleIDAdmin, RoleAdmin},
		{"customer id", RoleIDCustomer, RoleCustomer},
		{"unknown id defaults to customer", 99, RoleCustomer},
		{"zero id defaults to customer", 0, RoleCustomer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RoleName(tc.id); got != tc.expected {
				t.Errorf("RoleName(%d): expected %q, got %q", tc.id, tc.expected, got)
			}
		})
	}
}

func TestRoleID(t *testing.T) {
	cases := []struct {
		name     string
		role     string
		expected uint
	}{
		{"admin", RoleAdmin, RoleIDAdmin},
		{"customer", RoleCustomer, RoleIDCustomer},
		{"unknown defaults to customer", "SUPERUSER", RoleIDCustomer},
		{"empty defaults to customer", "", RoleIDCustomer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RoleID(tc.role); got != tc.expected {
				t.Errorf("RoleID(%q): expected %d, got %d", tc.role, tc.expected, got)
			}
		})
	}
}

func TestIsKnownRole(t *testing.T) {
	if !IsKnownRole(RoleAdmin) || !IsKnownRole(RoleCustomer) {
		t.Error("expected ADMIN and CUSTOMER to be known roles")
	}
	if IsKnownRole("SUPERUSER") {
		t.Error("expected SUPERUSER to be unknown")
	}
	if IsKnownRole("admin") {
		t.Error("role names are case sensitive")
	}
}
