package config

import (
	"reflect"
	"testing"
)

func TestSplitList(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"http://localhost:3000", []string{"http://localhost:3000"}},
		{"a, b ,c", []string{"a", "b", "c"}},
		{" , ,", nil},
	}
	for _, tc := range cases {
		if got := splitList(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitList(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_STR", "value")
	t.Setenv("X_BOOL", "yes")
	t.Setenv("X_BOOL_BAD", "maybe")
	t.Setenv("X_INT", "42")
	t.Setenv("X_INT_BAD", "forty")

	if got := envStr("X_STR", "d"); got != "value" {
		t.Errorf("envStr = %q", got)
	}
	if got := envStr("X_MISSING", "d"); got != "d" {
		t.Errorf("envStr default = %q", got)
	}
	if !envBool("X_BOOL", false) {
		t.Error("envBool(yes) = false")
	}
	if envBool("X_BOOL_BAD", false) {
		t.Error("unparseable bool did not fall back to default")
	}
	if !envBool("X_MISSING", true) {
		t.Error("missing bool did not fall back to default")
	}
	if got := envInt("X_INT", 0); got != 42 {
		t.Errorf("envInt = %d", got)
	}
	if got := envInt("X_INT_BAD", 7); got != 7 {
		t.Errorf("unparseable int = %d, want default 7", got)
	}
}
