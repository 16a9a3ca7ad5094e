package inventory

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

var phonePattern = regexp.MustCompile(`(?i)^[0-9A-Z]{10}$`)

// CheckInput reports whether s is non-empty, not only whitespace and free of '-'
func CheckInput(s string) bool {
	if s == "" || strings.ContainsRune(s, '-') {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) >= 0
}

// CheckPhoneNum reports whether s is ten alphanumerics forming a valid +1 number
func CheckPhoneNum(s string) bool {
	if !phonePattern.MatchString(s) {
		return false
	}
	num, err := phonenumbers.Parse("+1"+s, "US")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

// CheckPassword reports whether the password and its confirmation match
func CheckPassword(password, confPassword string) bool {
	return password == confPassword
}

// GetDifference returns |a - b|
func GetDifference(a, b int) int {
	if a >= b {
		return a - b
	}
	return b - a
}

// IsNumeric reports whether s is a non-empty run of ASCII digits
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatPhone groups every digit but the last in threes from the right and
// appends the last digit, so 2025551234 becomes 202-555-1234. Input that is
// not all digits is returned unchanged.
func FormatPhone(s string) string {
	if len(s) < 2 || !IsNumeric(s) {
		return s
	}

	head := strings.TrimLeft(s[:len(s)-1], "0")
	if head == "" {
		head = "0"
	}

	var b strings.Builder
	for i, r := range head {
		if i > 0 && (len(head)-i)%3 == 0 {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	b.WriteByte(s[len(s)-1])
	return b.String()
}
