package logger

import "strings"

// RedactPhone masks a phone number for safe logging, keeping the country
// prefix and the last two digits visible.
// "254712345678" → "2547*****78"
// Numbers shorter than 8 digits are fully masked.
func RedactPhone(phone string) string {
	if phone == "" {
		return ""
	}
	if len(phone) < 8 {
		return strings.Repeat("*", len(phone))
	}
	return phone[:4] + strings.Repeat("*", len(phone)-6) + phone[len(phone)-2:]
}
