package service

import (
	"fmt"

	"github.com/bloodcare/donation-system/internal/core/domain"
)

// Authorization rules as pure functions over the caller's directory record.
// Every mutating use case resolves the caller from the user directory and
// runs these checks; role or status claims carried by the client are never
// consulted. Deny reasons are wrapped around domain.ErrForbidden so the
// transport layer maps them all to 403.

// ensureActive rejects blocked accounts. Blocked accounts keep read access
// but lose create, update, delete, and pledge.
func ensureActive(u *domain.UserRecord) error {
	if !u.Active() {
		return fmt.Errorf("%w: account is blocked", domain.ErrForbidden)
	}
	return nil
}

// ensureModerator requires the admin or volunteer role.
func ensureModerator(u *domain.UserRecord) error {
	if !u.CanModerate() {
		return fmt.Errorf("%w: requires admin or volunteer role", domain.ErrForbidden)
	}
	return nil
}

// ensureAdmin requires the admin role.
func ensureAdmin(u *domain.UserRecord) error {
	if u.Role != domain.RoleAdmin {
		return fmt.Errorf("%w: requires admin role", domain.ErrForbidden)
	}
	return nil
}

// ensureNotSelf denies self-targeting role/status changes. The rule is
// absolute: it applies before any role check, so even an admin cannot
// change their own role or status.
func ensureNotSelf(callerEmail, targetEmail string) error {
	if callerEmail == targetEmail {
		return fmt.Errorf("%w: cannot change own role or status", domain.ErrForbidden)
	}
	return nil
}

// ensureOwner requires the caller to match the resource owner's email.
func ensureOwner(callerEmail, ownerEmail string) error {
	if callerEmail != ownerEmail {
		return fmt.Errorf("%w: not the requester", domain.ErrForbidden)
	}
	return nil
}
