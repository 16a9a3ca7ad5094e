package inventory

import "testing"

func TestCheckInput(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"   ", false},
		{"\t\n", false},
		{"a-b", false},
		{"abc", true},
		{" padded ", true},
	}
	for _, tt := range tests {
		if got := CheckInput(tt.input); got != tt.want {
			t.Errorf("CheckInput(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCheckPhoneNum(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"2025551234", true},
		{"6502530000", true},
		{"123", false},
		{"not a phone", false},
		{"202555123!", false},
		{"20255512345", false},
		{"0000000000", false},
	}
	for _, tt := range tests {
		if got := CheckPhoneNum(tt.input); got != tt.want {
			t.Errorf("CheckPhoneNum(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCheckPassword(t *testing.T) {
	if !CheckPassword("p1", "p1") {
		t.Error("expected equal passwords to match")
	}
	if CheckPassword("p1", "P1") {
		t.Error("expected comparison to be case-sensitive")
	}
}

func TestGetDifference(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{5, 3, 2},
		{3, 5, 2},
		{4, 4, 0},
		{-2, 3, 5},
	}
	for _, tt := range tests {
		if got := GetDifference(tt.a, tt.b); got != tt.want {
			t.Errorf("GetDifference(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"0", true},
		{"42", true},
		{"abc", false},
		{"-1", false},
		{"1.5", false},
		{"١٢", false},
	}
	for _, tt := range tests {
		if got := IsNumeric(tt.input); got != tt.want {
			t.Errorf("IsNumeric(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2025551234", "202-555-1234"},
		{"6502530000", "650-253-0000"},
		{"1234", "1234"},
		{"12345", "1-2345"},
		{"ABCDEFGHIJ", "ABCDEFGHIJ"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FormatPhone(tt.input); got != tt.want {
			t.Errorf("FormatPhone(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
