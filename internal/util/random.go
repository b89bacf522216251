// Package util provides utility functions for the Gezgin application.
package util

import (
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// GenerateRandomID generates a random ID with the specified prefix and hex length.
// The returned ID will be in the format: "{prefix}{hex_string}".
// Uses math/rand/v2 for optimal performance with modern best practices.
func GenerateRandomID(prefix string, hexLength int) string {
	return prefix + GenerateRandomHex(hexLength)
}

// GenerateRandomHex generates a random hexadecimal string of the specified length.
// Uses math/rand/v2 with optimal entropy utilization for non-cryptographic purposes.
func GenerateRandomHex(length int) string {
	if length <= 0 {
		return ""
	}

	const hexChars = "0123456789abcdef"
	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		builder.WriteByte(hexChars[rand.IntN(16)])
	}

	return builder.String()
}

// GeneratePlanID generates a unique trip plan ID. Plan IDs must be unique
// among existing drafts, so these are full UUIDs with a "plan_" prefix.
func GeneratePlanID() string {
	return "plan_" + uuid.NewString()
}

// GenerateActivityID generates a unique activity ID with "act_" prefix.
func GenerateActivityID() string {
	return "act_" + uuid.NewString()
}

// GenerateMessageID generates a conversation message ID with "msg_" prefix.
func GenerateMessageID() string {
	return GenerateRandomID("msg_", 16)
}

// GenerateStampID generates a digital stamp ID with "stamp_" prefix.
func GenerateStampID() string {
	return GenerateRandomID("stamp_", 16)
}
