package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bloodcare/donation-system/internal/core/domain"
	"github.com/bloodcare/donation-system/internal/core/ports"
)

type UserService struct {
	repo ports.UserRepository
	geo  ports.GeoDirectory
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, geo ports.GeoDirectory, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, geo: geo, log: log}
}

func (s *UserService) callerRecord(ctx context.Context, caller ports.Identity) (*domain.UserRecord, error) {
	u, err := s.repo.FindByEmail(ctx, caller.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown caller identity", domain.ErrForbidden)
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) validateLocation(district, upazila string) error {
	if !s.geo.DistrictExists(district) {
		return fmt.Errorf("%w: district %q", domain.ErrInvalidLocation, district)
	}
	if !s.geo.UpazilaInDistrict(district, upazila) {
		return fmt.Errorf("%w: upazila %q does not belong to district %q", domain.ErrInvalidLocation, upazila, district)
	}
	return nil
}

// Register creates the directory record for a new identity. Every account
// starts as an active donor; role and status are never taken from input.
func (s *UserService) Register(ctx context.Context, input ports.RegisterUserInput) (*domain.UserRecord, error) {
	if !domain.ValidBloodGroup(input.BloodGroup) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidBloodGroup, input.BloodGroup)
	}
	if err := s.validateLocation(input.District, input.Upazila); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &domain.UserRecord{
		Email:      input.Email,
		Name:       input.Name,
		AvatarURL:  input.AvatarURL,
		BloodGroup: input.BloodGroup,
		District:   input.District,
		Upazila:    input.Upazila,
		Role:       domain.RoleDonor,
		Status:     domain.UserActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info().Str("email", u.Email).Msg("user registered")
	return u, nil
}

// Get returns one record, visible to the owner and to moderators. Anyone
// else sees not-found, so unauthorized callers cannot probe for existence.
func (s *UserService) Get(ctx context.Context, caller ports.Identity, email string) (*domain.UserRecord, error) {
	if caller.Email != email {
		record, err := s.callerRecord(ctx, caller)
		if err != nil {
			return nil, err
		}
		if !record.CanModerate() {
			return nil, domain.ErrUserNotFound
		}
	}
	return s.repo.FindByEmail(ctx, email)
}

// List is the admin-only paginated listing, ordered by creation time
// ascending. Out-of-range pages return an empty page, not an error.
func (s *UserService) List(ctx context.Context, caller ports.Identity, input ports.ListUsersInput) (*ports.ListUsersResult, error) {
	record, err := s.callerRecord(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := ensureAdmin(record); err != nil {
		return nil, err
	}

	page, limit := normalizePage(input.Page, input.Limit)
	items, total, err := s.repo.List(ctx, ports.ListUsersFilter{
		Status: input.Status,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	return &ports.ListUsersResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// UpdateProfile edits the owner's profile fields. Role and status cannot
// travel through this path at all.
func (s *UserService) UpdateProfile(ctx context.Context, caller ports.Identity, email string, input ports.UpdateProfileInput) (*domain.UserRecord, error) {
	if caller.Email != email {
		return nil, fmt.Errorf("%w: profile belongs to another identity", domain.ErrForbidden)
	}
	record, err := s.callerRecord(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := ensureActive(record); err != nil {
		return nil, err
	}

	if input.BloodGroup != nil && !domain.ValidBloodGroup(*input.BloodGroup) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidBloodGroup, *input.BloodGroup)
	}
	if input.District != nil || input.Upazila != nil {
		district, upazila := record.District, record.Upazila
		if input.District != nil {
			district = *input.District
		}
		if input.Upazila != nil {
			upazila = *input.Upazila
		}
		if err := s.validateLocation(district, upazila); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateProfile(ctx, email, ports.ProfilePatch(input)); err != nil {
		return nil, err
	}
	return s.repo.FindByEmail(ctx, email)
}

// SetRole changes another identity's role. Self-targeting is denied before
// the admin check, so the rule holds regardless of the caller's role.
func (s *UserService) SetRole(ctx context.Context, caller ports.Identity, targetEmail string, role domain.Role) error {
	if err := ensureNotSelf(caller.Email, targetEmail); err != nil {
		return err
	}
	record, err := s.callerRecord(ctx, caller)
	if err != nil {
		return err
	}
	if err := ensureActive(record); err != nil {
		return err
	}
	if err := ensureAdmin(record); err != nil {
		return err
	}
	if !domain.ValidRole(role) {
		return fmt.Errorf("unrecognized role %q", role)
	}

	if err := s.repo.SetRole(ctx, targetEmail, role); err != nil {
		return err
	}
	s.log.Info().Str("target", targetEmail).Str("role", string(role)).Str("admin", caller.Email).Msg("user role changed")
	return nil
}

// SetStatus blocks or unblocks another identity. Existing inprogress
// assignments of a freshly blocked user are left untouched.
func (s *UserService) SetStatus(ctx context.Context, caller ports.Identity, targetEmail string, status domain.UserStatus) error {
	if err := ensureNotSelf(caller.Email, targetEmail); err != nil {
		return err
	}
	record, err := s.callerRecord(ctx, caller)
	if err != nil {
		return err
	}
	if err := ensureActive(record); err != nil {
		return err
	}
	if err := ensureAdmin(record); err != nil {
		return err
	}
	if !domain.ValidUserStatus(status) {
		return fmt.Errorf("unrecognized status %q", status)
	}

	if err := s.repo.SetStatus(ctx, targetEmail, status); err != nil {
		return err
	}
	s.log.Info().Str("target", targetEmail).Str("status", string(status)).Str("admin", caller.Email).Msg("user status changed")
	return nil
}

// SearchDonors is the public donor search over active accounts.
func (s *UserService) SearchDonors(ctx context.Context, input ports.DonorSearchInput) ([]*domain.UserRecord, error) {
	return s.repo.SearchDonors(ctx, ports.DonorSearchFilter{
		BloodGroup: input.BloodGroup,
		District:   input.District,
		Upazila:    input.Upazila,
	})
}
