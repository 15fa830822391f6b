package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bloodcare/donation-system/internal/core/domain"
	"github.com/bloodcare/donation-system/internal/core/ports"
)

const minPasswordLength = 6

// AuthService is the identity gateway adapter: it stores bcrypt credentials
// and issues HS256 tokens. Tokens carry only the identity (email, name);
// role and status always come from the user directory at call time.
type AuthService struct {
	repo      ports.AuthRepository
	users     ports.UserService
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(repo ports.AuthRepository, users ports.UserService, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, users: users, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Register creates the directory record and the credential in one flow,
// mirroring the original sign-up sequence (identity first, then profile).
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.UserRecord, error) {
	if input.Email == "" || len(input.Password) < minPasswordLength {
		return nil, domain.ErrInvalidCredentials
	}

	record, err := s.users.Register(ctx, ports.RegisterUserInput{
		Email:      input.Email,
		Name:       input.Name,
		AvatarURL:  input.AvatarURL,
		BloodGroup: input.BloodGroup,
		District:   input.District,
		Upazila:    input.Upazila,
	})
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateCredential(ctx, &domain.Credential{
		Email:        input.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	return record, nil
}

// Login verifies the credential and returns a signed token plus the
// directory record.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.UserRecord, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	cred, err := s.repo.FindCredential(ctx, email)
	if err != nil {
		// Unknown email and wrong password are indistinguishable to the caller.
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	record, err := s.users.Get(ctx, ports.Identity{Email: email}, email)
	if err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(record)
	if err != nil {
		return "", nil, err
	}
	return token, record, nil
}

func (s *AuthService) generateToken(u *domain.UserRecord) (string, error) {
	claims := jwt.MapClaims{
		"email": u.Email,
		"name":  u.Name,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
