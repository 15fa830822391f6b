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

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// PendingCache caches the public pending-requests listing. Implementations
// must treat every failure as a miss: the cache is an optimization, never a
// source of truth.
type PendingCache interface {
	Get(ctx context.Context) ([]*domain.DonationRequest, bool)
	Set(ctx context.Context, items []*domain.DonationRequest)
	Invalidate(ctx context.Context)
}

type RequestService struct {
	repo  ports.RequestRepository
	users ports.UserRepository
	geo   ports.GeoDirectory
	cache PendingCache // optional
	log   zerolog.Logger
}

func NewRequestService(
	repo ports.RequestRepository,
	users ports.UserRepository,
	geo ports.GeoDirectory,
	cache PendingCache,
	log zerolog.Logger,
) *RequestService {
	return &RequestService{repo: repo, users: users, geo: geo, cache: cache, log: log}
}

// callerRecord resolves the caller's directory record. An authenticated
// identity without a directory record gets no access at all.
func (s *RequestService) callerRecord(ctx context.Context, caller ports.Identity) (*domain.UserRecord, error) {
	u, err := s.users.FindByEmail(ctx, caller.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown caller identity", domain.ErrForbidden)
		}
		return nil, err
	}
	return u, nil
}

// validateLocation checks the district/upazila pair against the lookup
// dataset; the upazila must belong to the chosen district.
func (s *RequestService) validateLocation(district, upazila string) error {
	if !s.geo.DistrictExists(district) {
		return fmt.Errorf("%w: district %q", domain.ErrInvalidLocation, district)
	}
	if !s.geo.UpazilaInDistrict(district, upazila) {
		return fmt.Errorf("%w: upazila %q does not belong to district %q", domain.ErrInvalidLocation, upazila, district)
	}
	return nil
}

func (s *RequestService) invalidatePending(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

// Create registers a new pending request for the caller. The requester name
// is snapshotted from the directory record, not from the client payload.
func (s *RequestService) Create(ctx context.Context, input ports.CreateRequestInput) (*domain.DonationRequest, error) {
	caller, err := s.callerRecord(ctx, input.Caller)
	if err != nil {
		return nil, err
	}
	if err := ensureActive(caller); err != nil {
		return nil, err
	}
	if !domain.ValidBloodGroup(input.BloodGroup) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidBloodGroup, input.BloodGroup)
	}
	if err := s.validateLocation(input.District, input.Upazila); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r := &domain.DonationRequest{
		RequesterName:  caller.Name,
		RequesterEmail: caller.Email,
		RecipientName:  input.RecipientName,
		BloodGroup:     input.BloodGroup,
		District:       input.District,
		Upazila:        input.Upazila,
		HospitalName:   input.HospitalName,
		FullAddress:    input.FullAddress,
		DonationDate:   input.DonationDate,
		DonationTime:   input.DonationTime,
		RequestMessage: input.RequestMessage,
		Status:         domain.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		s.log.Error().Err(err).Str("requester", caller.Email).Msg("failed to create donation request")
		return nil, err
	}
	s.invalidatePending(ctx)

	s.log.Info().Str("request_id", r.ID).Str("requester", caller.Email).Str("blood_group", r.BloodGroup).Msg("donation request created")
	return r, nil
}

// Get returns a single request. Reads are public.
func (s *RequestService) Get(ctx context.Context, id string) (*domain.DonationRequest, error) {
	return s.repo.FindByID(ctx, id)
}

// ListPending serves the public "available requests" view through the cache.
func (s *RequestService) ListPending(ctx context.Context) ([]*domain.DonationRequest, error) {
	if s.cache != nil {
		if items, ok := s.cache.Get(ctx); ok {
			return items, nil
		}
	}
	items, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, items)
	}
	return items, nil
}

// ListByRequester returns the target's requests, newest first. Readable by
// the target itself or a moderator; blocked accounts keep read access.
func (s *RequestService) ListByRequester(ctx context.Context, caller ports.Identity, email string, limit int) ([]*domain.DonationRequest, error) {
	if caller.Email != email {
		record, err := s.callerRecord(ctx, caller)
		if err != nil {
			return nil, err
		}
		if err := ensureModerator(record); err != nil {
			return nil, err
		}
	}
	return s.repo.ListByRequester(ctx, email, limit)
}

// List is the moderated, filtered, paginated listing. District matching is
// a case-insensitive exact match.
func (s *RequestService) List(ctx context.Context, caller ports.Identity, input ports.ListRequestsInput) (*ports.ListRequestsResult, error) {
	record, err := s.callerRecord(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := ensureModerator(record); err != nil {
		return nil, err
	}

	page, limit := normalizePage(input.Page, input.Limit)
	items, total, err := s.repo.List(ctx, ports.ListRequestsFilter{
		Status:     input.Status,
		BloodGroup: input.BloodGroup,
		District:   input.District,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	return &ports.ListRequestsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Update edits a still-pending request. The pending precondition is part of
// the write itself, so an edit racing a pledge loses with a conflict rather
// than silently overwriting donor state.
func (s *RequestService) Update(ctx context.Context, caller ports.Identity, id string, input ports.UpdateRequestInput) (*domain.DonationRequest, error) {
	record, err := s.callerRecord(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := ensureActive(record); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(caller.Email, current.RequesterEmail); err != nil {
		return nil, err
	}

	if input.BloodGroup != nil && !domain.ValidBloodGroup(*input.BloodGroup) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidBloodGroup, *input.BloodGroup)
	}
	if input.District != nil || input.Upazila != nil {
		district, upazila := current.District, current.Upazila
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

	if err := s.repo.UpdatePending(ctx, id, ports.RequestPatch(input)); err != nil {
		return nil, err
	}
	s.invalidatePending(ctx)
	return s.repo.FindByID(ctx, id)
}

// Pledge commits the caller as donor on a pending request. The repository
// performs the pending→inprogress check-and-set as one conditional write;
// of two concurrent pledges exactly one succeeds and the other observes a
// conflict.
func (s *RequestService) Pledge(ctx context.Context, caller ports.Identity, id string) (*domain.DonationRequest, error) {
	record, err := s.callerRecord(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := ensureActive(record); err != nil {
		return nil, err
	}

	r, err := s.repo.Pledge(ctx, id, record.Name, record.Email)
	if err != nil {
		if errors.Is(err, domain.ErrRequestConflict) {
			s.log.Info().Str("request_id", id).Str("donor", record.Email).Msg("pledge lost race")
		}
		return nil, err
	}
	s.invalidatePending(ctx)

	s.log.Info().Str("request_id", id).Str("donor", record.Email).Msg("donation pledged")
	return r, nil
}

// Transition moves a request to done or canceled, per the state machine.
// Allowed for moderators and for the requester.
func (s *RequestService) Transition(ctx context.Context, caller ports.Identity, id string, to domain.RequestStatus) error {
	if to != domain.StatusDone && to != domain.StatusCanceled {
		return fmt.Errorf("%w: cannot set status to %q", domain.ErrInvalidTransition, to)
	}

	record, err := s.callerRecord(ctx, caller)
	if err != nil {
		return err
	}
	if err := ensureActive(record); err != nil {
		return err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current.RequesterEmail != caller.Email {
		if err := ensureModerator(record); err != nil {
			return err
		}
	}
	if !current.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: from %s to %s", domain.ErrInvalidTransition, current.Status, to)
	}

	if err := s.repo.Transition(ctx, id, current.Status, to); err != nil {
		return err
	}
	s.invalidatePending(ctx)

	s.log.Info().Str("request_id", id).Str("from", string(current.Status)).Str("to", string(to)).Str("caller", caller.Email).Msg("request status changed")
	return nil
}

// Delete removes a request. Owners may delete only while pending; admins
// may delete any request as a moderation override.
func (s *RequestService) Delete(ctx context.Context, caller ports.Identity, id string) error {
	record, err := s.callerRecord(ctx, caller)
	if err != nil {
		return err
	}
	if err := ensureActive(record); err != nil {
		return err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if record.Role == domain.RoleAdmin {
		err = s.repo.Delete(ctx, id)
	} else {
		if err := ensureOwner(caller.Email, current.RequesterEmail); err != nil {
			return err
		}
		err = s.repo.DeletePending(ctx, id)
	}
	if err != nil {
		return err
	}
	s.invalidatePending(ctx)

	s.log.Info().Str("request_id", id).Str("caller", caller.Email).Msg("donation request deleted")
	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
