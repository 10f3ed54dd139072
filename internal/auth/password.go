package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost keeps login latency acceptable while staying expensive
// enough to resist offline brute force.
const DefaultBcryptCost = 12

// Password length bounds.  The upper bound also keeps input under bcrypt's
// 72-byte truncation point with room to spare for multibyte runes.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 128
)

// passwordSymbols is the punctuation set that satisfies the "at least one
// special character" rule.
const passwordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// weakPasswords is a fixed deny-list of passwords rejected regardless of the
// character-class rules, compared case-insensitively.
var weakPasswords = map[string]struct{}{
	"password": {}, "password123": {}, "123456": {}, "123456789": {},
	"qwerty": {}, "abc123": {}, "password1": {}, "admin": {},
	"root": {}, "user": {}, "test": {},
}

// HashPassword returns the bcrypt digest of plain using the given cost.
// A failure here means bcrypt itself failed, which should never happen in
// normal operation; the error never includes the plaintext.
func HashPassword(plain string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt digest against a candidate plaintext.
// A mismatch is a plain false, never an error.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// PasswordValidation is the result of checking a candidate password against
// the policy.  Reasons holds one entry per violated rule.
type PasswordValidation struct {
	Valid   bool
	Reasons []string
}

// Err converts a failed validation into a *PasswordPolicyError, or nil when
// the password passed.
func (v PasswordValidation) Err() error {
	if v.Valid {
		return nil
	}
	return &PasswordPolicyError{Reasons: v.Reasons}
}

// ValidatePassword checks a candidate password against the account password
// policy.  Every rule is evaluated independently so the caller can report
// all violations in one response.  The function is pure: no I/O, no
// randomness.
func ValidatePassword(candidate string) PasswordValidation {
	var reasons []string

	if candidate == "" {
		return PasswordValidation{Valid: false, Reasons: []string{"password is required"}}
	}
	if len(candidate) < MinPasswordLen {
		reasons = append(reasons, "password must be at least 8 characters long")
	}
	if len(candidate) > MaxPasswordLen {
		reasons = append(reasons, "password must be at most 128 characters long")
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range candidate {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	if !hasLower {
		reasons = append(reasons, "password must contain at least one lowercase letter")
	}
	if !hasUpper {
		reasons = append(reasons, "password must contain at least one uppercase letter")
	}
	if !hasDigit {
		reasons = append(reasons, "password must contain at least one number")
	}
	if !hasSymbol {
		reasons = append(reasons, "password must contain at least one special character")
	}

	if _, weak := weakPasswords[strings.ToLower(candidate)]; weak {
		reasons = append(reasons, "password is too common, please choose a stronger password")
	}

	return PasswordValidation{Valid: len(reasons) == 0, Reasons: reasons}
}
