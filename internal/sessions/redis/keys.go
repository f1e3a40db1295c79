package redis

import "fmt"

// Key prefix for all session data
const keyPrefix = "flagchase"

// guestKey returns the Redis key for a guest profile
func guestKey(token string) string {
	return fmt.Sprintf("%s:guest:%s", keyPrefix, token)
}

// verificationKey returns the Redis key for an email verification ticket
func verificationKey(email string) string {
	return fmt.Sprintf("%s:verify:%s", keyPrefix, email)
}

// resetKey returns the Redis key for a password reset ticket
func resetKey(email string) string {
	return fmt.Sprintf("%s:password_reset:%s", keyPrefix, email)
}
