package domain

import "testing"

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"admin", "employee"} {
		role, err := ParseRole(valid)
		if err != nil {
			t.Fatalf("ParseRole(%q) returned error: %v", valid, err)
		}
		if role.String() != valid {
			t.Fatalf("ParseRole(%q) = %q", valid, role)
		}
	}

	for _, invalid := range []string{"", "root", "Admin", "superuser"} {
		if _, err := ParseRole(invalid); err == nil {
			t.Fatalf("ParseRole(%q) should fail", invalid)
		}
	}
}

func TestRoleAtLeast(t *testing.T) {
	cases := []struct {
		role     Role
		required Role
		want     bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleEmployee, true},
		{RoleEmployee, RoleEmployee, true},
		{RoleEmployee, RoleAdmin, false},
		{Role("unknown"), RoleEmployee, false},
	}
	for _, tc := range cases {
		if got := tc.role.AtLeast(tc.required); got != tc.want {
			t.Fatalf("%s.AtLeast(%s) = %v, want %v", tc.role, tc.required, got, tc.want)
		}
	}
}
