package identity

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0xAbCdEf", "0xabcdef"},
		{"  teacher@school  ", "teacher@school"},
		{"", ""},
		{"ALREADY", "already"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEqualIgnoresCase(t *testing.T) {
	if !Equal("0xABC123", "0xabc123") {
		t.Fatalf("expected case-insensitive equality")
	}
	if Equal("0xabc", "0xdef") {
		t.Fatalf("distinct identities compared equal")
	}
}

func TestIsZero(t *testing.T) {
	if !IsZero("   ") {
		t.Fatalf("whitespace-only identity should be zero")
	}
	if IsZero("x") {
		t.Fatalf("non-empty identity reported zero")
	}
}
