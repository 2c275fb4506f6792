package auth

import "testing"

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"admin":   RoleAdmin,
		"staff":   RoleStaff,
		"client":  RoleClient,
		"":        RoleClient,
		"root":    RoleClient,
		"Admin":   RoleClient, // stored roles are lowercase; anything else demotes
		"manager": RoleClient,
	}
	for in, want := range cases {
		if got := ParseRole(in); got != want {
			t.Errorf("ParseRole(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPredicates(t *testing.T) {
	admin := Principal{Role: RoleAdmin}
	staff := Principal{Role: RoleStaff}
	client := Principal{Role: RoleClient}

	if !admin.IsStaff() || !admin.IsAdmin() {
		t.Error("admin should pass both predicates")
	}
	if !staff.IsStaff() || staff.IsAdmin() {
		t.Error("staff should be staff but not admin")
	}
	if client.IsStaff() || client.IsAdmin() {
		t.Error("client should pass neither predicate")
	}
	var anonymous Principal
	if anonymous.IsStaff() {
		t.Error("zero principal should not be staff")
	}
}
