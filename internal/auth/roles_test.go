package auth

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		raw     string
		want    Role
		wantErr bool
	}{
		{"super_admin", RoleSuperAdmin, false},
		{"agency_admin", RoleAgencyAdmin, false},
		{" Team_Member ", RoleTeamMember, false},
		{"CUSTOMER", RoleCustomer, false},
		{"owner", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseRole(%q): expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRole(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

// The allow-sets nest: every platform operator passes the agency check and
// every agency admin passes the team check. Customers pass none of them.
func TestRoleAllowSetsNest(t *testing.T) {
	cases := []struct {
		role     Role
		platform bool
		agency   bool
		team     bool
		customer bool
	}{
		{RoleSuperAdmin, true, true, true, false},
		{RoleAgencyAdmin, false, true, true, false},
		{RoleTeamMember, false, false, true, false},
		{RoleCustomer, false, false, false, true},
		{Role("made_up"), false, false, false, false},
	}
	for _, tc := range cases {
		if got := tc.role.ManagesPlatform(); got != tc.platform {
			t.Errorf("%s.ManagesPlatform() = %v, want %v", tc.role, got, tc.platform)
		}
		if got := tc.role.ManagesAgency(); got != tc.agency {
			t.Errorf("%s.ManagesAgency() = %v, want %v", tc.role, got, tc.agency)
		}
		if got := tc.role.TeamAccess(); got != tc.team {
			t.Errorf("%s.TeamAccess() = %v, want %v", tc.role, got, tc.team)
		}
		if got := tc.role.IsCustomer(); got != tc.customer {
			t.Errorf("%s.IsCustomer() = %v, want %v", tc.role, got, tc.customer)
		}
	}
}

func TestUnknownRoleFailsClosed(t *testing.T) {
	r := Role("superadmin") // close-but-wrong spelling
	if r.Valid() {
		t.Fatal("unknown role must not be valid")
	}
	if r.ManagesPlatform() || r.ManagesAgency() || r.TeamAccess() {
		t.Fatal("unknown role must not pass any guard")
	}
}
