package builtin

import (
	"math/rand"

	"github.com/google/uuid"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomString returns length random alphanumeric characters.
func RandomString(length int) string {
	return randomString(length, alphanumeric)
}

// RandomText returns prefix, a space and length random characters, the
// shape used for summaries, descriptions and comments.
func RandomText(prefix string, length int) string {
	return prefix + " " + RandomString(length)
}

// RandomInt returns a random integer in [min, max].
func RandomInt(min, max int) int {
	if max <= min {
		return min
	}
	return rand.Intn(max-min+1) + min
}

// NewRunID returns a fresh identifier for a load test run.
func NewRunID() string {
	return uuid.New().String()
}

func randomString(length int, charset string) string {
	if length <= 0 {
		return ""
	}
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
