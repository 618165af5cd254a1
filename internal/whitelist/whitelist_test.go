package whitelist

import "testing"

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{"user@Example.COM", "example.com"},
		{"Jane Doe <jane@mail.example.org>", "mail.example.org"},
		{"\"Support, Team\" <help@bank.example>", "bank.example"},
		{"broken <x@half.example", "half.example"},
		{"no-address", ""},
		{"trailing@", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractDomain(tt.from); got != tt.want {
			t.Errorf("ExtractDomain(%q) = %q, want %q", tt.from, got, tt.want)
		}
	}
}

func TestIsWhitelisted(t *testing.T) {
	c := NewChecker([]string{" Example.com ", "", "corp.example"}, nil)

	tests := []struct {
		from string
		want bool
	}{
		{"alice@example.com", true},
		{"Bob <bob@EXAMPLE.COM>", true},
		{"ops@corp.example", true},
		{"alice@sub.example.com", false},
		{"alice@example.co", false},
		{"not an address", false},
	}
	for _, tt := range tests {
		if got := c.IsWhitelisted(tt.from); got != tt.want {
			t.Errorf("IsWhitelisted(%q) = %v, want %v", tt.from, got, tt.want)
		}
	}

	var nilChecker *Checker
	if nilChecker.IsWhitelisted("alice@example.com") {
		t.Error("nil checker must not whitelist")
	}
	if NewChecker(nil, nil).IsWhitelisted("alice@example.com") {
		t.Error("empty checker must not whitelist")
	}
}
