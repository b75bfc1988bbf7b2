package template

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// funcNow returns the current time in RFC3339 format
func funcNow() string {
	return time.Now().Format(time.RFC3339)
}

// funcUUIDShort returns the first 8 characters of a UUID v4
func funcUUIDShort() string {
	return uuid.NewString()[:8]
}

func funcTimestampMilli() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// funcDefault returns value if non-empty, otherwise returns fallback
func funcDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// parseStringArg removes surrounding quotes from a string argument if present.
func parseStringArg(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// splitFuncArgs splits function arguments separated by commas,
// respecting quoted strings.
func splitFuncArgs(s string) []string {
	var args []string
	var current strings.Builder
	quote := byte(0)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			current.WriteByte(ch)
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
			current.WriteByte(ch)
		case ch == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	if current.Len() > 0 {
		args = append(args, strings.TrimSpace(current.String()))
	}
	return args
}
