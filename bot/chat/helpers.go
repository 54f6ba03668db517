package chat

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizePhone strips non-digit characters and prepends "+".
func NormalizePhone(phone string) string {
	digits := ""
	for _, ch := range phone {
		if ch >= '0' && ch <= '9' {
			digits += string(ch)
		}
	}
	if len(digits) > 0 {
		digits = "+" + digits
	}
	return digits
}

// ParseChoice parses trimmed input as a 1-based selection into a list of
// count options. ok is false for non-numeric or out-of-range input.
func ParseChoice(text string, count int) (int, bool) {
	num, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || num < 1 || num > count {
		return 0, false
	}
	return num, true
}

// FormatNumberedList renders a header, a numbered option list and an
// optional footer into one WhatsApp-ready message.
func FormatNumberedList(header string, items []string, footer string) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, item))
	}
	if footer != "" {
		sb.WriteString("\n")
		sb.WriteString(footer)
	}
	return strings.TrimRight(sb.String(), "\n")
}
