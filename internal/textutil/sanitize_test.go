package textutil

import "testing"

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"C0001", "C0001"},
		{"clip one", "clip_one"},
		{"  A001_C002 ", "A001_C002"},
		{"../etc/passwd", "etc_passwd"},
		{"Überclip", "berclip"},
		{"???", "fallback"},
		{"", "fallback"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.in, "fallback"); got != tt.want {
			t.Fatalf("SanitizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
