package ports

import (
	"context"

	"github.com/bloodcare/donation-system/internal/core/domain"
)

// RegisterInput carries the full registration payload: credential plus the
// initial directory profile.
type RegisterInput struct {
	Email      string
	Password   string
	Name       string
	AvatarURL  string
	BloodGroup string
	District   string
	Upazila    string
}

// AuthRepository persists login credentials, kept separate from the user
// directory so profile reads never touch password hashes.
type AuthRepository interface {
	CreateCredential(ctx context.Context, c *domain.Credential) error
	FindCredential(ctx context.Context, email string) (*domain.Credential, error)
}

// AuthService implements the identity gateway adapter: registration and
// token issuance.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.UserRecord, error)
	// Login verifies the credential and returns a signed token plus the
	// directory record.
	Login(ctx context.Context, email, password string) (string, *domain.UserRecord, error)
}
