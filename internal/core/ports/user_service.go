package ports

import (
	"context"

	"github.com/bloodcare/donation-system/internal/core/domain"
)

// RegisterUserInput carries the profile captured at registration. Role and
// status are not part of the input: every new account starts as an active
// donor.
type RegisterUserInput struct {
	Email      string
	Name       string
	AvatarURL  string
	BloodGroup string
	District   string
	Upazila    string
}

// UpdateProfileInput holds the optional profile field updates.
type UpdateProfileInput struct {
	Name       *string
	AvatarURL  *string
	BloodGroup *string
	District   *string
	Upazila    *string
}

// ListUsersInput carries parameters for the admin user listing.
type ListUsersInput struct {
	Status string
	Page   int
	Limit  int
}

// ListUsersResult is returned by List.
type ListUsersResult struct {
	Items      []*domain.UserRecord
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// DonorSearchInput carries the public donor search parameters.
type DonorSearchInput struct {
	BloodGroup string
	District   string
	Upazila    string
}

// UserService defines use-case operations on the user directory.
type UserService interface {
	// Register creates the directory record for a new identity.
	Register(ctx context.Context, input RegisterUserInput) (*domain.UserRecord, error)
	// Get returns one record; visible to the owner and to moderators.
	Get(ctx context.Context, caller Identity, email string) (*domain.UserRecord, error)
	// List is the admin-only paginated listing.
	List(ctx context.Context, caller Identity, input ListUsersInput) (*ListUsersResult, error)
	// UpdateProfile edits the caller's own profile fields.
	UpdateProfile(ctx context.Context, caller Identity, email string, input UpdateProfileInput) (*domain.UserRecord, error)
	// SetRole promotes/demotes a different identity; admin only, never self.
	SetRole(ctx context.Context, caller Identity, targetEmail string, role domain.Role) error
	// SetStatus blocks/unblocks a different identity; admin only, never self.
	SetStatus(ctx context.Context, caller Identity, targetEmail string, status domain.UserStatus) error
	// SearchDonors is the public donor search over active accounts.
	SearchDonors(ctx context.Context, input DonorSearchInput) ([]*domain.UserRecord, error)
}
