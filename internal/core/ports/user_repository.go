package ports

import (
	"context"

	"github.com/bloodcare/donation-system/internal/core/domain"
)

// ListUsersFilter carries query parameters for the admin user listing.
type ListUsersFilter struct {
	Status string // optional: filter by account status
	Page   int    // 1-based; out-of-range pages yield an empty page
	Limit  int
}

// ProfilePatch holds the owner-mutable profile fields. Nil fields are left
// untouched. Role and status are deliberately absent: they have dedicated
// guarded operations.
type ProfilePatch struct {
	Name       *string
	AvatarURL  *string
	BloodGroup *string
	District   *string
	Upazila    *string
}

// DonorSearchFilter carries the public donor search parameters.
type DonorSearchFilter struct {
	BloodGroup string
	District   string
	Upazila    string
}

// UserRepository defines persistence operations for the user directory.
type UserRepository interface {
	// Create inserts a new record; returns domain.ErrUserExists when the
	// email is already registered.
	Create(ctx context.Context, u *domain.UserRecord) error
	FindByEmail(ctx context.Context, email string) (*domain.UserRecord, error)
	// List returns a page of records ordered by creation time ascending,
	// and the total count of records matching the filter.
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.UserRecord, int64, error)
	UpdateProfile(ctx context.Context, email string, patch ProfilePatch) error
	SetRole(ctx context.Context, email string, role domain.Role) error
	SetStatus(ctx context.Context, email string, status domain.UserStatus) error
	// SearchDonors returns active accounts matching the filter.
	SearchDonors(ctx context.Context, filter DonorSearchFilter) ([]*domain.UserRecord, error)
}
