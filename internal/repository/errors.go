// Package repository implements persistence over MySQL.  Failure kinds that
// callers must react to are sentinel errors so the service and handler
// layers can branch with errors.Is instead of inspecting driver messages.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when an insert trips the unique index on
// users.email.  Concurrent registrations with the same address race at this
// constraint and both the pre-check and the constraint-violation path
// surface this same value.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a lookup or update references a row that does
// not exist (or is not owned by the requesting user).
var ErrNotFound = errors.New("record not found")

// isDuplicateKey reports whether err is a MySQL duplicate-entry violation
// (error 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
