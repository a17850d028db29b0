package classifier

import "testing"

func TestParseDecision(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{"YES", true},
		{"YES\n", true},
		{"  YES  ", true},
		{"YES.", true},
		{"YES, this is an introduction", true},
		{"NO", false},
		{"NO.", false},
		{"yes", false},
		{"Yes", false},
		{"YESSIR", false},
		{"", false},
		{"maybe", false},
	}

	for _, tc := range cases {
		if got := parseDecision(tc.raw); got != tc.want {
			t.Errorf("parseDecision(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`I'm "Alex"`, "I'm 'Alex'"},
		{"line one\nline two", "line one line two"},
		{"windows\r\nnewline", "windows  newline"},
		{"plain text", "plain text"},
	}

	for _, tc := range cases {
		if got := sanitizeText(tc.in); got != tc.want {
			t.Errorf("sanitizeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
