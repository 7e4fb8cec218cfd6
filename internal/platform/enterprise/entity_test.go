package enterprise

import "testing"

func TestAdminRoleName(t *testing.T) {
	tests := []struct {
		tenant string
		want   string
	}{
		{"Acme", "ACME_ADMIN"},
		{"acme", "ACME_ADMIN"},
		{"  Acme  ", "ACME_ADMIN"},
		{"Blue Whale Venues", "BLUE_WHALE_VENUES_ADMIN"},
		{"Joe's Bar & Grill", "JOE_S_BAR_GRILL_ADMIN"},
		{"Café 21", "CAFÉ_21_ADMIN"},
	}
	for _, tt := range tests {
		t.Run(tt.tenant, func(t *testing.T) {
			if got := AdminRoleName(tt.tenant); got != tt.want {
				t.Errorf("AdminRoleName(%q) = %q, want %q", tt.tenant, got, tt.want)
			}
		})
	}
}

func TestTenantKey_Empty(t *testing.T) {
	if got := TenantKey(" -- "); got != "" {
		t.Errorf("expected empty key, got %q", got)
	}
}

func TestScopedRoleName(t *testing.T) {
	got := ScopedRoleName("ACME_ADMIN", "0hzx")
	if got != "ACME_USER_0HZX" {
		t.Errorf("unexpected scoped role name %q", got)
	}
	if ScopedRoleName("ACME_ADMIN", "a") == ScopedRoleName("ACME_ADMIN", "b") {
		t.Error("different suffixes must give different names")
	}
}
