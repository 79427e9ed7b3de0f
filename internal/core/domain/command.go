package domain

import (
	"strings"
	"unicode"
)

// Help holds the listing summary and the detailed text of a command.
type Help struct {
	Short string
	Full  string
}

func NewHelp(short string) *Help {
	return &Help{Short: short, Full: short}
}

func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// SplitCommand returns the first whitespace-delimited token and the trimmed remainder.
func SplitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}

	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return text, ""
	}

	return text[:i], strings.TrimSpace(text[i:])
}

// RequireArgument trims raw and reports false if nothing is left.
func RequireArgument(raw string) (string, bool) {
	arg := strings.TrimSpace(raw)
	return arg, arg != ""
}

func ParseOnOff(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, ErrInvalidToggle
	}
}

// SplitCredentials splits "<username> <password>"; the password keeps any inner whitespace.
func SplitCredentials(raw string) (Credentials, bool) {
	username, password := SplitCommand(raw)
	if username == "" || password == "" {
		return Credentials{}, false
	}

	return Credentials{Username: username, Password: password}, true
}
