package shellerr

import "testing"

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindParse, 2},
		{KindNotFound, 127},
		{KindInvalidName, 1},
		{KindRedirFailure, 1},
		{KindForkFailure, 1},
		{KindJobNotFound, 1},
		{KindIO, 1},
	}
	for _, c := range cases {
		if got := c.kind.ExitCode(); got != c.want {
			t.Errorf("Kind(%d).ExitCode() = %d, want %d", c.kind, got, c.want)
		}
	}
}

func TestNewFormatsMessage(t *testing.T) {
	err := New(KindNotFound, "%s: command not found", "frobnicate")
	if err.Error() != "frobnicate: command not found" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if err.Kind != KindNotFound {
		t.Fatalf("Kind = %v, want KindNotFound", err.Kind)
	}
}
