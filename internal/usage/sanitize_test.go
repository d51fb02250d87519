package usage

import "testing"

func TestSanitizeLabel(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Main Panel Mains", "main_panel_mains"},
		{"Main Panel-7", "main_panel_7"},
		{"Dryer", "dryer"},
		{"A/C  (Upstairs)", "a_c_upstairs_"},
		{"already_safe_123", "already_safe_123"},
		{"double__underscore", "double_underscore"},
		{"", ""},
		{"!!!", "_"},
		{"Héat Pump", "h_at_pump"},
	}
	for _, c := range cases {
		if got := SanitizeLabel(c.in); got != c.want {
			t.Errorf("SanitizeLabel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// TestSanitizeLabel_Idempotent verifies sanitize(sanitize(x)) == sanitize(x)
// across representative inputs, including empty and all-symbol strings.
func TestSanitizeLabel_Idempotent(t *testing.T) {
	inputs := []string{
		"", "!!!", "Main Panel Mains", "already_safe", "__", "A/C (Upstairs)",
		"1,2,3", "mixed CASE & symbols #42",
	}
	for _, in := range inputs {
		once := SanitizeLabel(in)
		twice := SanitizeLabel(once)
		if once != twice {
			t.Errorf("SanitizeLabel not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
