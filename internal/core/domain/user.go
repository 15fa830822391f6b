package domain

import (
	"errors"
	"time"
)

// Role is the closed set of account roles. Free-form role strings are never
// accepted past the boundary.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether r is one of the recognized roles.
func ValidRole(r Role) bool {
	return r == RoleDonor || r == RoleVolunteer || r == RoleAdmin
}

// UserStatus is the account status. Blocked accounts keep read access but
// lose every mutating operation; blocking is the deactivation mechanism;
// user records are never hard-deleted.
type UserStatus string

const (
	UserActive  UserStatus = "active"
	UserBlocked UserStatus = "blocked"
)

// ValidUserStatus reports whether s is one of the recognized statuses.
func ValidUserStatus(s UserStatus) bool {
	return s == UserActive || s == UserBlocked
}

var bloodGroups = map[string]struct{}{
	"A+": {}, "A-": {}, "B+": {}, "B-": {},
	"AB+": {}, "AB-": {}, "O+": {}, "O-": {},
}

// ValidBloodGroup reports whether g is one of the eight recognized groups.
func ValidBloodGroup(g string) bool {
	_, ok := bloodGroups[g]
	return ok
}

var ErrInvalidBloodGroup = errors.New("unrecognized blood group")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRecord is the directory entry for one identity, keyed by email.
// Role and status are only ever mutated by an admin acting on a different
// identity; profile fields are mutable by the owner.
type UserRecord struct {
	Email      string     `json:"email" bson:"_id"`
	Name       string     `json:"name" bson:"name"`
	AvatarURL  string     `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	BloodGroup string     `json:"blood_group" bson:"blood_group"`
	District   string     `json:"district" bson:"district"`
	Upazila    string     `json:"upazila" bson:"upazila"`
	Role       Role       `json:"role" bson:"role"`
	Status     UserStatus `json:"status" bson:"status"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
}

// CanModerate reports whether the record grants cross-resource read and
// moderation rights over donation requests.
func (u *UserRecord) CanModerate() bool {
	return u.Role == RoleAdmin || u.Role == RoleVolunteer
}

// Active reports whether the account may perform mutating operations.
func (u *UserRecord) Active() bool {
	return u.Status == UserActive
}
